package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentType - тип инцидента
type IncidentType string

const (
	IncidentTypeFire     IncidentType = "fire"
	IncidentTypeMedical  IncidentType = "medical"
	IncidentTypeSecurity IncidentType = "security"
	IncidentTypeOther    IncidentType = "other"
)

// IsValid проверяет, что тип входит в список допустимых
func (t IncidentType) IsValid() bool {
	switch t {
	case IncidentTypeFire, IncidentTypeMedical, IncidentTypeSecurity, IncidentTypeOther:
		return true
	}
	return false
}

// Incident представляет сообщение об инциденте
type Incident struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	IncidentType IncidentType `json:"incident_type"`
	Location     string       `json:"location,omitempty"`
	Image        string       `json:"image,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
