package v1

import (
	"github.com/menottiRicardo/blazestack/internal/models"
)

// DTOToIncidentModel преобразует DTO создания в доменную модель.
// Текстовые поля уже очищены от краевых пробелов при валидации.
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		Title:        dto.Title,
		Description:  dto.Description,
		IncidentType: models.IncidentType(dto.IncidentType),
		Location:     dto.Location,
		Image:        dto.Image,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		IncidentType: string(model.IncidentType),
		Location:     model.Location,
		Image:        model.Image,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}
