package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/menottiRicardo/blazestack/pkg/client"
)

const pageSize = 10

// IncidentsAPI - контракт клиента incidents API, нужен для подмены в тестах
type IncidentsAPI interface {
	Create(ctx context.Context, input client.CreateIncidentInput) (*client.Incident, error)
	List(ctx context.Context, page, limit int) (*client.IncidentsList, error)
	Get(ctx context.Context, id string) (*client.Incident, error)
}

// Handler рендерит веб-интерфейс: дашборд со списком инцидентов и форму создания
type Handler struct {
	api        IncidentsAPI
	logger     *logrus.Logger
	validate   *validator.Validate
	uploadsURL string
}

// NewHandler создает хэндлер веб-интерфейса. uploadsURL - базовый адрес,
// по которому сервер API раздает загруженные изображения.
func NewHandler(api IncidentsAPI, logger *logrus.Logger, uploadsURL string) *Handler {
	return &Handler{
		api:        api,
		logger:     logger,
		validate:   validator.New(),
		uploadsURL: strings.TrimRight(uploadsURL, "/"),
	}
}

// RegisterRoutes регистрирует маршруты веб-интерфейса
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.dashboard)
	router.GET("/incidents/new", h.newIncidentForm)
	router.POST("/incidents", h.createIncident)
	router.GET("/incidents/:id", h.incidentDetail)
}

// incidentForm - поля формы создания, правила повторяют серверные
type incidentForm struct {
	Title        string `form:"title" validate:"required,max=200"`
	Description  string `form:"description" validate:"omitempty,max=1000"`
	IncidentType string `form:"incident_type" validate:"required,oneof=fire medical security other"`
	Location     string `form:"location" validate:"omitempty,max=200"`
}

func (h *Handler) dashboard(c *gin.Context) {
	log := h.logger.WithField("method", "dashboard")

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	list, err := h.api.List(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to load incidents")
		c.HTML(http.StatusOK, "dashboard.html", gin.H{
			"Error": "Failed to load incidents. Is the API server running?",
		})
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Incidents":  list.Incidents,
		"Total":      list.Total,
		"Page":       list.Page,
		"TotalPages": list.TotalPages,
		"HasPrev":    list.Page > 1,
		"HasNext":    list.Page < list.TotalPages,
		"PrevPage":   list.Page - 1,
		"NextPage":   list.Page + 1,
		"UploadsURL": h.uploadsURL,
		"Created":    c.Query("created") == "1",
	})
}

func (h *Handler) newIncidentForm(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", gin.H{
		"Form":        incidentForm{},
		"FieldErrors": map[string]string{},
	})
}

func (h *Handler) createIncident(c *gin.Context) {
	log := h.logger.WithField("method", "createIncident")

	var form incidentForm
	if err := c.ShouldBind(&form); err != nil {
		log.WithError(err).Warn("Failed to bind form")
		h.renderFormError(c, form, map[string]string{}, "Please check your input")
		return
	}

	// Опциональные поля триммятся и не отправляются, если остались пустыми
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	form.Location = strings.TrimSpace(form.Location)

	// Валидация на стороне клиента повторяет серверные правила
	if err := h.validate.Struct(form); err != nil {
		fieldErrors := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fieldErrors[strings.ToLower(fe.StructField())] = validationMessage(fe)
			}
		}
		h.renderFormError(c, form, fieldErrors, "Please check your input")
		return
	}

	input := client.CreateIncidentInput{
		Title:        form.Title,
		Description:  form.Description,
		IncidentType: form.IncidentType,
		Location:     form.Location,
	}

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		file, openErr := fh.Open()
		if openErr != nil {
			log.WithError(openErr).Error("Failed to open uploaded file")
			h.renderFormError(c, form, map[string]string{}, "Failed to read the attached file")
			return
		}
		defer file.Close()

		input.File = file
		input.FileName = fh.Filename
		input.FileContentType = fh.Header.Get("Content-Type")
	}

	if _, err := h.api.Create(c.Request.Context(), input); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			log.WithError(err).Warn("Incident rejected by the API")
			h.renderFormError(c, form, map[string]string{}, "Please check your input")
			return
		}
		log.WithError(err).Error("Failed to create incident")
		h.renderFormError(c, form, map[string]string{}, "Failed to create incident, try again later")
		return
	}

	// Успех: форма очищается редиректом на дашборд со свежим списком
	c.Redirect(http.StatusSeeOther, "/?created=1")
}

func (h *Handler) incidentDetail(c *gin.Context) {
	log := h.logger.WithField("method", "incidentDetail").WithField("id", c.Param("id"))

	incident, err := h.api.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			c.HTML(http.StatusNotFound, "detail.html", gin.H{"NotFound": true})
			return
		}
		log.WithError(err).Error("Failed to load incident")
		c.HTML(http.StatusOK, "detail.html", gin.H{"Error": "Failed to load incident"})
		return
	}

	c.HTML(http.StatusOK, "detail.html", gin.H{
		"Incident":   incident,
		"UploadsURL": h.uploadsURL,
	})
}

func (h *Handler) renderFormError(c *gin.Context, form incidentForm, fieldErrors map[string]string, notice string) {
	c.HTML(http.StatusOK, "form.html", gin.H{
		"Form":        form,
		"FieldErrors": fieldErrors,
		"Notice":      notice,
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "Invalid value"
	}
}
