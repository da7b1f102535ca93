package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/firechain/internal/config"
	"github.com/shenikar/firechain/internal/ledger"
	"github.com/shenikar/firechain/internal/models"
	"github.com/shenikar/firechain/internal/service/mocks"
	"github.com/shenikar/firechain/internal/webhook"
	webhook_mocks "github.com/shenikar/firechain/internal/webhook/mocks"
)

// newTestIncidentService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (*incidentService, *mocks.MockLedgerRepository, *webhook_mocks.MockWebhookPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockLedgerRepository(ctrl)
	webhookMock := webhook_mocks.NewMockWebhookPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		ConfirmationTimeout: time.Second,
		CASRetries:          3,
	}

	service := NewIncidentService(repoMock, logger, cfg, webhookMock, nil)
	return service.(*incidentService), repoMock, webhookMock
}

func validReport() models.IncidentReport {
	return models.IncidentReport{
		Location:    "Ridge Rd",
		Description: "smoke visible",
		Latitude:    44.428012,
		Longitude:   -110.588512,
		Severity:    models.SeverityHigh,
		Reporter:    "alice",
	}
}

func TestGetIncident_Success_FromCache(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	expectedIncident := &models.Incident{ID: 1, Location: "Тестовый инцидент из кеша"}

	// Ожидания
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, int64(1)).
		Return(expectedIncident, nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, 1)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_Success_FromLedger(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	expectedIncident := &models.Incident{ID: 2, Location: "Тестовый инцидент из журнала"}

	// Ожидания
	// 1. Промах кеша
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, int64(2)).
		Return(nil, nil).
		Times(1)

	// 2. Чтение из журнала и повторная сверка версии после записи в кеш
	repoMock.EXPECT().
		GetIncident(gomock.Any(), int64(2)).
		Return(expectedIncident, int64(3), nil).
		Times(2)

	// 3. Запись в кеш вместе с версией
	repoMock.EXPECT().
		SetIncidentCache(gomock.Any(), expectedIncident, int64(3)).
		Return(true, nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, 2)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_LedgerMovedDuringCacheFill(t *testing.T) {
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	stale := &models.Incident{ID: 4, Status: models.StatusReported}
	fresh := &models.Incident{ID: 4, Status: models.StatusVerified}

	repoMock.EXPECT().GetIncidentFromCache(ctx, int64(4)).Return(nil, nil)
	gomock.InOrder(
		repoMock.EXPECT().GetIncident(gomock.Any(), int64(4)).Return(stale, int64(1), nil),
		repoMock.EXPECT().SetIncidentCache(gomock.Any(), stale, int64(1)).Return(true, nil),
		repoMock.EXPECT().GetIncident(gomock.Any(), int64(4)).Return(fresh, int64(3), nil),
		// снятая с устаревшей версии запись убирается из кеша
		repoMock.EXPECT().InvalidateIncidentCache(gomock.Any(), int64(4)).Return(nil),
	)

	incident, err := service.GetIncident(ctx, 4)

	require.NoError(t, err)
	assert.Equal(t, stale, incident)
}

func TestGetIncident_NewerCacheEntryNotRechecked(t *testing.T) {
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	expectedIncident := &models.Incident{ID: 5}

	repoMock.EXPECT().GetIncidentFromCache(ctx, int64(5)).Return(nil, nil)
	repoMock.EXPECT().GetIncident(gomock.Any(), int64(5)).Return(expectedIncident, int64(1), nil).Times(1)
	repoMock.EXPECT().SetIncidentCache(gomock.Any(), expectedIncident, int64(1)).Return(false, nil)

	incident, err := service.GetIncident(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_CacheErrorFallsBackToLedger(t *testing.T) {
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	expectedIncident := &models.Incident{ID: 3}

	repoMock.EXPECT().GetIncidentFromCache(ctx, int64(3)).Return(nil, errors.New("redis down"))
	repoMock.EXPECT().GetIncident(gomock.Any(), int64(3)).Return(expectedIncident, int64(1), nil)
	repoMock.EXPECT().SetIncidentCache(gomock.Any(), expectedIncident, int64(1)).Return(false, errors.New("redis down"))

	incident, err := service.GetIncident(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания
	repoMock.EXPECT().GetIncidentFromCache(ctx, int64(9)).Return(nil, nil)
	repoMock.EXPECT().
		GetIncident(gomock.Any(), int64(9)).
		Return(nil, int64(0), fmt.Errorf("read: %w", ledger.ErrNotFound))

	// Действие
	incident, err := service.GetIncident(ctx, 9)

	// Проверки
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetIncident_CancelledCallerDoesNotBreakSharedRead(t *testing.T) {
	service, repoMock, _ := newTestIncidentService(t)
	expectedIncident := &models.Incident{ID: 6, Location: "Ridge Rd"}

	started := make(chan struct{})
	release := make(chan struct{})
	var (
		once    sync.Once
		readCtx context.Context
	)

	repoMock.EXPECT().GetIncidentFromCache(gomock.Any(), int64(6)).Return(nil, nil).Times(2)
	repoMock.EXPECT().
		GetIncident(gomock.Any(), int64(6)).
		DoAndReturn(func(ctx context.Context, _ int64) (*models.Incident, int64, error) {
			once.Do(func() {
				readCtx = ctx
				close(started)
			})
			<-release
			return expectedIncident, int64(2), nil
		}).
		MinTimes(1).MaxTimes(2) // второй вызывающий мог не успеть присоединиться к общему чтению
	repoMock.EXPECT().SetIncidentCache(gomock.Any(), expectedIncident, int64(2)).Return(false, nil).MinTimes(1).MaxTimes(2)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := service.GetIncident(firstCtx, 6)
		firstErr <- err
	}()
	<-started

	type result struct {
		incident *models.Incident
		err      error
	}
	second := make(chan result, 1)
	go func() {
		incident, err := service.GetIncident(context.Background(), 6)
		second <- result{incident, err}
	}()

	// первый вызывающий уходит, не дожидаясь журнала
	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}
	require.NoError(t, readCtx.Err())

	close(release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, expectedIncident, res.incident)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
}

func TestGetIncident_InvalidID(t *testing.T) {
	service, _, _ := newTestIncidentService(t)

	_, err := service.GetIncident(context.Background(), 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	service, repoMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	confirmedAt := time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)

	// Ожидания
	repoMock.EXPECT().
		Commit(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, entry ledger.Entry) (ledger.Receipt, error) {
			require.Len(t, entry.Mutations, 1)
			assert.True(t, entry.Mutations[0].Sequence)
			assert.Equal(t, ledger.Kind("incident"), entry.Mutations[0].Kind)
			return ledger.Receipt{Seq: 1, Keys: []string{"7"}, Versions: []int64{1}, ConfirmedAt: confirmedAt}, nil
		})

	webhookMock.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.IncidentEvent) error {
			assert.Equal(t, int64(7), event.IncidentID)
			assert.Equal(t, "alice", event.Reporter)
			assert.Equal(t, "Ridge Rd", event.Location)
			assert.Equal(t, "High", event.Severity)
			assert.Equal(t, webhook.EventIncidentReported, event.Type)
			assert.InDelta(t, 44.428012, event.Latitude, 1e-6)
			return nil
		})

	// Действие
	incident, err := service.CreateIncident(ctx, validReport())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, int64(7), incident.ID)
	assert.Equal(t, int64(44428012), incident.Latitude)
	assert.Equal(t, int64(-110588512), incident.Longitude)
	assert.Equal(t, models.StatusReported, incident.Status)
	assert.False(t, incident.RewardClaimed)
	assert.Equal(t, confirmedAt, incident.CreatedAt)
}

func TestCreateIncident_PublishFailureDoesNotFail(t *testing.T) {
	service, repoMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()

	repoMock.EXPECT().Commit(ctx, gomock.Any()).Return(ledger.Receipt{Keys: []string{"1"}}, nil)
	webhookMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	incident, err := service.CreateIncident(ctx, validReport())

	require.NoError(t, err)
	assert.Equal(t, int64(1), incident.ID)
}

func TestCreateIncident_LedgerErrors(t *testing.T) {
	tests := []struct {
		name      string
		ledgerErr error
		want      error
	}{
		{"rejected", fmt.Errorf("%w: disk full", ledger.ErrRejected), ErrLedgerRejected},
		{"closed", ledger.ErrClosed, ErrLedgerRejected},
		{"timeout", fmt.Errorf("%w after 1s", ledger.ErrTimeout), ErrConfirmationTimeout},
		{"conflict", ledger.ErrVersionConflict, ErrLedgerRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repoMock, _ := newTestIncidentService(t)
			ctx := context.Background()

			// уведомление не отправляется для неподтвержденного инцидента
			repoMock.EXPECT().Commit(ctx, gomock.Any()).Return(ledger.Receipt{}, tt.ledgerErr)

			incident, err := service.CreateIncident(ctx, validReport())

			assert.Nil(t, incident)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateIncident_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *models.IncidentReport)
	}{
		{"empty location", func(r *models.IncidentReport) { r.Location = "  " }},
		{"empty description", func(r *models.IncidentReport) { r.Description = "" }},
		{"empty reporter", func(r *models.IncidentReport) { r.Reporter = "" }},
		{"unknown severity", func(r *models.IncidentReport) { r.Severity = models.Severity(7) }},
		{"latitude out of range", func(r *models.IncidentReport) { r.Latitude = 90.5 }},
		{"longitude out of range", func(r *models.IncidentReport) { r.Longitude = -181 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestIncidentService(t)
			report := validReport()
			tt.modify(&report)

			_, err := service.CreateIncident(context.Background(), report)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCountIncidents_Error(t *testing.T) {
	service, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()

	repoMock.EXPECT().CountIncidents(ctx).Return(int64(0), errors.New("db down"))

	_, err := service.CountIncidents(ctx)
	assert.Error(t, err)
}
