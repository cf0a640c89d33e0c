package v1

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menottiRicardo/blazestack/internal/models"
)

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description,omitempty" validate:"omitempty,max=1000"`
	IncidentType string `json:"incident_type" validate:"required,oneof=fire medical security other"`
	Location     string `json:"location,omitempty" validate:"omitempty,max=200"`
	// Image - свободная текстовая ссылка (JSON) или имя сохраненного файла (multipart)
	Image string `json:"image,omitempty" validate:"omitempty"`
}

// trimSpace очищает текстовые поля от краевых пробелов до валидации,
// иначе заголовок из одних пробелов проходит required
func (r *CreateIncidentRequest) trimSpace() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.IncidentType = strings.TrimSpace(r.IncidentType)
	r.Location = strings.TrimSpace(r.Location)
	r.Image = strings.TrimSpace(r.Image)
}

// ListIncidentsQuery параметры пагинации списка инцидентов
type ListIncidentsQuery struct {
	Page  int `json:"page" validate:"min=1"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	IncidentType string    `json:"incident_type"`
	Location     string    `json:"location,omitempty"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IncidentsListResponse DTO для ответа со страницей инцидентов
// @Description DTO для ответа со страницей инцидентов
type IncidentsListResponse struct {
	Incidents  []*IncidentResponse `json:"incidents"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

// ErrorResponse DTO для ответа с ошибкой
// @Description DTO для ответа с ошибкой
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors,omitempty"`
}
