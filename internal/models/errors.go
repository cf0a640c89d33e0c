package models

import "errors"

// Сентинельные ошибки доменного слоя, хэндлеры маппят их в статус-коды через errors.Is
var (
	ErrNotFound = errors.New("incident not found")
	ErrInternal = errors.New("internal error")
)

// FieldError - одно нарушение валидации на уровне поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError - ошибка валидации запроса со списком нарушений по полям
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	return "validation error: " + e.Fields[0].Field + ": " + e.Fields[0].Message
}

// NewValidationError создает ошибку валидации для одного поля
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
