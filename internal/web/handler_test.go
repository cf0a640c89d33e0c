package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/menottiRicardo/blazestack/pkg/client"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI - подменный клиент API, заданный функциями
type fakeAPI struct {
	create func(ctx context.Context, input client.CreateIncidentInput) (*client.Incident, error)
	list   func(ctx context.Context, page, limit int) (*client.IncidentsList, error)
	get    func(ctx context.Context, id string) (*client.Incident, error)
}

func (f *fakeAPI) Create(ctx context.Context, input client.CreateIncidentInput) (*client.Incident, error) {
	return f.create(ctx, input)
}

func (f *fakeAPI) List(ctx context.Context, page, limit int) (*client.IncidentsList, error) {
	return f.list(ctx, page, limit)
}

func (f *fakeAPI) Get(ctx context.Context, id string) (*client.Incident, error) {
	return f.get(ctx, id)
}

// newTestRouter собирает роутер с шаблонами из каталога web/templates
func newTestRouter(t *testing.T, api IncidentsAPI) *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.LoadHTMLGlob("../../web/templates/*.html")

	handler := NewHandler(api, logger, "http://localhost:8000/uploads")
	handler.RegisterRoutes(router)
	return router
}

func TestDashboard_RendersIncidents(t *testing.T) {
	api := &fakeAPI{
		list: func(_ context.Context, page, limit int) (*client.IncidentsList, error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, pageSize, limit)
			return &client.IncidentsList{
				Incidents: []client.Incident{
					{ID: "id-1", Title: "Warehouse fire", IncidentType: "fire", Image: "incident-1-2.png"},
				},
				Total:      1,
				Page:       1,
				Limit:      pageSize,
				TotalPages: 1,
			}, nil
		},
	}
	router := newTestRouter(t, api)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Warehouse fire")
	assert.Contains(t, body, "/incidents/id-1")
	assert.Contains(t, body, "http://localhost:8000/uploads/incident-1-2.png")
}

func TestDashboard_EmptyState(t *testing.T) {
	api := &fakeAPI{
		list: func(_ context.Context, _, _ int) (*client.IncidentsList, error) {
			return &client.IncidentsList{Page: 1, TotalPages: 0}, nil
		},
	}
	router := newTestRouter(t, api)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No incidents yet")
}

func TestDashboard_APIUnavailable(t *testing.T) {
	api := &fakeAPI{
		list: func(_ context.Context, _, _ int) (*client.IncidentsList, error) {
			return nil, &client.APIError{Status: 0, Message: "connection refused"}
		},
	}
	router := newTestRouter(t, api)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Failed to load incidents")
	assert.NotContains(t, body, "<no value>")
}

func TestNewIncidentForm_Renders(t *testing.T) {
	router := newTestRouter(t, &fakeAPI{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/incidents/new", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `name="title"`)
	assert.Contains(t, body, `name="incident_type"`)
	assert.Contains(t, body, `name="image"`)
}

func TestCreateIncident_SuccessRedirects(t *testing.T) {
	var gotInput client.CreateIncidentInput
	api := &fakeAPI{
		create: func(_ context.Context, input client.CreateIncidentInput) (*client.Incident, error) {
			gotInput = input
			return &client.Incident{ID: "id-1", Title: input.Title}, nil
		},
	}
	router := newTestRouter(t, api)

	form := url.Values{}
	form.Set("title", "Warehouse fire")
	form.Set("incident_type", "fire")
	form.Set("location", "Dock 4")

	req := httptest.NewRequest("POST", "/incidents", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?created=1", w.Header().Get("Location"))
	assert.Equal(t, "Warehouse fire", gotInput.Title)
	assert.Equal(t, "fire", gotInput.IncidentType)
	assert.Equal(t, "Dock 4", gotInput.Location)
}

func TestCreateIncident_ValidationErrorRerendersForm(t *testing.T) {
	api := &fakeAPI{
		create: func(_ context.Context, _ client.CreateIncidentInput) (*client.Incident, error) {
			t.Fatal("API не должен вызываться при невалидной форме")
			return nil, nil
		},
	}
	router := newTestRouter(t, api)

	form := url.Values{}
	form.Set("title", "")
	form.Set("incident_type", "fire")

	req := httptest.NewRequest("POST", "/incidents", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Please check your input")
	assert.Contains(t, body, "This field is required")
}

func TestCreateIncident_APIErrorRerendersForm(t *testing.T) {
	api := &fakeAPI{
		create: func(_ context.Context, _ client.CreateIncidentInput) (*client.Incident, error) {
			return nil, &client.APIError{Status: 0, Message: "connection refused"}
		},
	}
	router := newTestRouter(t, api)

	form := url.Values{}
	form.Set("title", "Warehouse fire")
	form.Set("incident_type", "fire")

	req := httptest.NewRequest("POST", "/incidents", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to create incident")
}

func TestIncidentDetail_Renders(t *testing.T) {
	api := &fakeAPI{
		get: func(_ context.Context, id string) (*client.Incident, error) {
			assert.Equal(t, "id-1", id)
			return &client.Incident{
				ID:           "id-1",
				Title:        "Warehouse fire",
				IncidentType: "fire",
				Location:     "Dock 4",
				Image:        "incident-1-2.png",
			}, nil
		},
	}
	router := newTestRouter(t, api)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/incidents/id-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Warehouse fire")
	assert.Contains(t, body, "Dock 4")
	assert.Contains(t, body, "http://localhost:8000/uploads/incident-1-2.png")
}

func TestIncidentDetail_NotFound(t *testing.T) {
	api := &fakeAPI{
		get: func(_ context.Context, _ string) (*client.Incident, error) {
			return nil, &client.APIError{Status: http.StatusNotFound, Message: "Incident not found"}
		},
	}
	router := newTestRouter(t, api)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/incidents/missing", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Incident not found")
}

func TestIncidentDetail_APIFailure(t *testing.T) {
	api := &fakeAPI{
		get: func(_ context.Context, _ string) (*client.Incident, error) {
			return nil, fmt.Errorf("boom")
		},
	}
	router := newTestRouter(t, api)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/incidents/id-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load incident")
}
