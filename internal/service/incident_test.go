package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/menottiRicardo/blazestack/internal/models"
	"github.com/menottiRicardo/blazestack/internal/service/mocks"
	"github.com/menottiRicardo/blazestack/internal/webhook"
	webhook_mocks "github.com/menottiRicardo/blazestack/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestIncidentService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (*incidentService, *mocks.MockIncidentRepository, *webhook_mocks.MockWebhookPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)
	webhookMock := webhook_mocks.NewMockWebhookPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	service := NewIncidentService(repoMock, logger, webhookMock)
	return service.(*incidentService), repoMock, webhookMock
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	service, repoMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	incident := &models.Incident{
		Title:        "Пожар на складе",
		IncidentType: models.IncidentTypeFire,
		Location:     "Downtown",
	}

	// Ожидания
	repoMock.EXPECT().
		Create(ctx, incident).
		Return(nil).
		Times(1)

	repoMock.EXPECT().
		SetIncidentCache(ctx, incident).
		Return(nil).
		Times(1)

	webhookMock.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.WebhookEvent) error {
			assert.Equal(t, webhook.EventIncidentCreated, event.Event)
			assert.Equal(t, incident, event.Incident)
			assert.False(t, event.Timestamp.IsZero())
			return nil
		}).
		Times(1)

	// Действие
	err := service.CreateIncident(ctx, incident)

	// Проверки
	require.NoError(t, err)
}

func TestCreateIncident_RepositoryError(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	incident := &models.Incident{
		Title:        "Авария",
		IncidentType: models.IncidentTypeOther,
	}
	dbError := fmt.Errorf("ошибка базы данных")

	// Ожидания: запись не удалась, кеш и вебхук не трогаются
	repoMock.EXPECT().
		Create(ctx, incident).
		Return(dbError).
		Times(1)

	// Действие
	err := service.CreateIncident(ctx, incident)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, dbError)
}

func TestCreateIncident_WebhookFailureDoesNotFailCreate(t *testing.T) {
	// Подготовка
	service, repoMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	incident := &models.Incident{
		Title:        "Задымление",
		IncidentType: models.IncidentTypeFire,
	}

	// Ожидания: ошибки кеша и очереди не отменяют создание
	repoMock.EXPECT().
		Create(ctx, incident).
		Return(nil).
		Times(1)

	repoMock.EXPECT().
		SetIncidentCache(ctx, incident).
		Return(fmt.Errorf("redis недоступен")).
		Times(1)

	webhookMock.EXPECT().
		Publish(ctx, gomock.Any()).
		Return(fmt.Errorf("очередь недоступна")).
		Times(1)

	// Действие
	err := service.CreateIncident(ctx, incident)

	// Проверки
	require.NoError(t, err)
}

func TestGetIncident_Success_FromCache(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:    incidentID,
		Title: "Тестовый инцидент из кеша",
	}

	// Ожидания
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID.String())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_Success_FromDB(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:    incidentID,
		Title: "Тестовый инцидент из БД",
	}

	// Ожидания
	// 1. Промах кеша
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(nil, nil).
		Times(1)

	// 2. Попадание в БД
	repoMock.EXPECT().
		GetByID(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// 3. Запись в кеш
	repoMock.EXPECT().
		SetIncidentCache(ctx, expectedIncident).
		Return(nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID.String())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	// Ожидания
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(nil, nil).
		Times(1)

	repoMock.EXPECT().
		GetByID(ctx, incidentID).
		Return(nil, models.ErrNotFound).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID.String())

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestGetIncident_MalformedID(t *testing.T) {
	// Подготовка
	service, _, _ := newTestIncidentService(t)
	ctx := context.Background()

	// Действие: репозиторий не вызывается вовсе
	incident, err := service.GetIncident(ctx, "not-a-uuid")

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.True(t, errors.Is(err, models.ErrInternal))
}

func TestGetIncident_CacheFailureFallsThroughToDB(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:    incidentID,
		Title: "Инцидент при недоступном кеше",
	}

	// Ожидания: ошибка кеша не фатальна
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(nil, fmt.Errorf("redis недоступен")).
		Times(1)

	repoMock.EXPECT().
		GetByID(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	repoMock.EXPECT().
		SetIncidentCache(ctx, expectedIncident).
		Return(fmt.Errorf("redis недоступен")).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID.String())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestListIncidents_Success(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	expectedIncidents := []*models.Incident{
		{ID: uuid.New(), Title: "Первый"},
		{ID: uuid.New(), Title: "Второй"},
	}

	// Ожидания
	repoMock.EXPECT().
		ListIncidents(ctx, 2, 10).
		Return(expectedIncidents, nil).
		Times(1)

	repoMock.EXPECT().
		CountIncidents(ctx).
		Return(int64(25), nil).
		Times(1)

	// Действие
	incidents, total, err := service.ListIncidents(ctx, 2, 10)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncidents, incidents)
	assert.Equal(t, int64(25), total)
}

func TestListIncidents_RepositoryError(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	dbError := fmt.Errorf("ошибка базы данных")

	// Ожидания
	repoMock.EXPECT().
		ListIncidents(ctx, 1, 10).
		Return(nil, dbError).
		Times(1)

	// Действие
	incidents, total, err := service.ListIncidents(ctx, 1, 10)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incidents)
	assert.Equal(t, int64(0), total)
	assert.ErrorIs(t, err, dbError)
}

func TestListIncidents_CountError(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	dbError := fmt.Errorf("ошибка базы данных")

	// Ожидания
	repoMock.EXPECT().
		ListIncidents(ctx, 1, 10).
		Return([]*models.Incident{}, nil).
		Times(1)

	repoMock.EXPECT().
		CountIncidents(ctx).
		Return(int64(0), dbError).
		Times(1)

	// Действие
	incidents, total, err := service.ListIncidents(ctx, 1, 10)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incidents)
	assert.Equal(t, int64(0), total)
	assert.ErrorIs(t, err, dbError)
}
