package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menottiRicardo/blazestack/internal/models"
	"github.com/menottiRicardo/blazestack/internal/webhook"
	"github.com/sirupsen/logrus"
)

// IncidentRepository определяет контракт для работы с хранилищем инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	CountIncidents(ctx context.Context) (int64, error)
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
}

// IncidentService определяет контракт для бизнес-логики работы с инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, int64, error)
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
}

type incidentService struct {
	repo             IncidentRepository
	logger           *logrus.Logger
	webhookPublisher webhook.WebhookPublisher
}

func NewIncidentService(repo IncidentRepository, logger *logrus.Logger, webhookPublisher webhook.WebhookPublisher) IncidentService {
	return &incidentService{
		repo:             repo,
		logger:           logger,
		webhookPublisher: webhookPublisher,
	}
}

// CreateIncident сохраняет инцидент и публикует событие incident.created.
// Ошибки кеша и очереди вебхуков не считаются ошибкой создания.
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"title":   incident.Title,
	})
	log.Info("Attempting to create a new incident")

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to prime incident cache")
	}

	if err := s.webhookPublisher.Publish(ctx, webhook.WebhookEvent{
		Event:     webhook.EventIncidentCreated,
		Incident:  incident,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		log.WithError(err).Warn("Failed to publish incident.created webhook event")
	}

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return nil
}

// ListIncidents возвращает страницу инцидентов и общее количество записей.
// Параметры пагинации валидируются на границе хэндлера.
func (s *incidentService) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, int64, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      page,
		"page_size": pageSize,
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.ListIncidents(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, 0, fmt.Errorf("service: could not list incidents: %w", err)
	}

	total, err := s.repo.CountIncidents(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to count incidents in repository")
		return nil, 0, fmt.Errorf("service: could not count incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, total, nil
}

// GetIncident получает инцидент по ID, сначала из кеша, потом из бд.
// Некорректный формат идентификатора отдается как внутренняя ошибка,
// предварительной проверки формы нет.
func (s *incidentService) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})

	incidentID, err := uuid.Parse(id)
	if err != nil {
		log.WithError(err).Error("Malformed incident id")
		return nil, fmt.Errorf("service: malformed incident id %q: %w", id, models.ErrInternal)
	}

	log.Info("Fetching incident by ID")

	cached, err := s.repo.GetIncidentFromCache(ctx, incidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Info("Incident fetched from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to set incident cache")
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}
