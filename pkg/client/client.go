// Package client предоставляет типизированный HTTP-клиент для incidents API.
// Любая неуспешная попытка - ошибка транспорта или неуспешный статус -
// нормализуется в *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FieldError - нарушение валидации по одному полю, как его отдает сервер
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError - единая форма ошибки клиента
type APIError struct {
	Message string
	Status  int // 0 означает сетевую ошибку без ответа сервера
	Errors  []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Incident - публичное представление инцидента
type Incident struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	IncidentType string    `json:"incident_type"`
	Location     string    `json:"location,omitempty"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IncidentsList - страница инцидентов
type IncidentsList struct {
	Incidents  []Incident `json:"incidents"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

// CreateIncidentInput - входные данные создания инцидента.
// Если File задан, запрос уходит как multipart/form-data, иначе как JSON.
type CreateIncidentInput struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	IncidentType string `json:"incident_type"`
	Location     string `json:"location,omitempty"`
	Image        string `json:"image,omitempty"`

	File            io.Reader `json:"-"`
	FileName        string    `json:"-"`
	FileContentType string    `json:"-"`
}

// Client - клиент incidents API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает клиент для указанного базового URL (например http://localhost:8000/api/v1)
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Create создает инцидент
func (c *Client) Create(ctx context.Context, input CreateIncidentInput) (*Incident, error) {
	var (
		body        io.Reader
		contentType string
	)

	if input.File != nil {
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)

		fields := map[string]string{
			"title":         input.Title,
			"incident_type": input.IncidentType,
		}
		if input.Description != "" {
			fields["description"] = input.Description
		}
		if input.Location != "" {
			fields["location"] = input.Location
		}
		for name, value := range fields {
			if err := mw.WriteField(name, value); err != nil {
				return nil, &APIError{Status: 0, Message: err.Error()}
			}
		}

		part, err := mw.CreatePart(fileHeader("image", input.FileName, input.FileContentType))
		if err != nil {
			return nil, &APIError{Status: 0, Message: err.Error()}
		}
		if _, err := io.Copy(part, input.File); err != nil {
			return nil, &APIError{Status: 0, Message: err.Error()}
		}
		if err := mw.Close(); err != nil {
			return nil, &APIError{Status: 0, Message: err.Error()}
		}

		body = buf
		contentType = mw.FormDataContentType()
	} else {
		payload, err := json.Marshal(input)
		if err != nil {
			return nil, &APIError{Status: 0, Message: err.Error()}
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	incident := &Incident{}
	if err := c.do(ctx, http.MethodPost, "/incidents", body, contentType, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// List возвращает страницу инцидентов
func (c *Client) List(ctx context.Context, page, limit int) (*IncidentsList, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	list := &IncidentsList{}
	if err := c.do(ctx, http.MethodGet, "/incidents?"+query.Encode(), nil, "", list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get возвращает инцидент по идентификатору
func (c *Client) Get(ctx context.Context, id string) (*Incident, error) {
	incident := &Incident{}
	if err := c.do(ctx, http.MethodGet, "/incidents/"+url.PathEscape(id), nil, "", incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// do выполняет запрос и декодирует ответ либо нормализует ошибку
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Status: 0, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Сетевая ошибка: ответа нет, статус 0
		return &APIError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("failed to decode response: %v", err)}
		}
	}
	return nil
}

// decodeAPIError разбирает тело ошибки, нечитаемое тело заменяется пустым
func decodeAPIError(resp *http.Response) *APIError {
	var body struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	message := body.Message
	if message == "" {
		message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	return &APIError{
		Message: message,
		Status:  resp.StatusCode,
		Errors:  body.Errors,
	}
}

func fileHeader(field, filename, contentType string) textproto.MIMEHeader {
	if filename == "" {
		filename = "upload"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	return h
}
