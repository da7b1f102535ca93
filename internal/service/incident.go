package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/shenikar/firechain/internal/config"
	"github.com/shenikar/firechain/internal/geo"
	"github.com/shenikar/firechain/internal/metrics"
	"github.com/shenikar/firechain/internal/models"
	"github.com/shenikar/firechain/internal/repository"
	"github.com/shenikar/firechain/internal/webhook"
)

const (
	notifyTimeout = 2 * time.Second
	// sharedReadTimeout ограничивает общее чтение, которое не зависит от отмены первого вызывающего
	sharedReadTimeout = 5 * time.Second
)

// IncidentService определяет контракт реестра инцидентов
type IncidentService interface {
	CreateIncident(ctx context.Context, report models.IncidentReport) (*models.Incident, error)
	GetIncident(ctx context.Context, id int64) (*models.Incident, error)
	CountIncidents(ctx context.Context) (int64, error)
	ListIncidentsByReporter(ctx context.Context, reporter string) iter.Seq2[int64, error]
}

type incidentService struct {
	repo      LedgerRepository
	logger    *logrus.Logger
	cfg       *config.Config
	publisher webhook.WebhookPublisher
	metrics   *metrics.Metrics
	reads     singleflight.Group
}

// NewIncidentService; publisher == nil отключает уведомления
func NewIncidentService(repo LedgerRepository, logger *logrus.Logger, cfg *config.Config, publisher webhook.WebhookPublisher, m *metrics.Metrics) IncidentService {
	return &incidentService{
		repo:      repo,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		metrics:   m,
	}
}

func normalizeReport(in *models.IncidentReport) error {
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.Reporter = strings.TrimSpace(in.Reporter)

	switch {
	case in.Location == "":
		return validationError("location is required")
	case in.Description == "":
		return validationError("description is required")
	case in.Reporter == "":
		return validationError("reporter is required")
	case !in.Severity.Valid():
		return validationError("unknown severity %d", in.Severity)
	}
	return nil
}

// CreateIncident создает инцидент. Номер выдается только подтвержденной записи.
func (s *incidentService) CreateIncident(ctx context.Context, input models.IncidentReport) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "CreateIncident",
		"reporter": input.Reporter,
	})
	log.Info("Attempting to create a new incident")

	if err := normalizeReport(&input); err != nil {
		log.WithError(err).Warn("Invalid incident input")
		return nil, err
	}
	latInt, lngInt, err := geo.Encode(input.Latitude, input.Longitude)
	if err != nil {
		log.WithError(err).Warn("Invalid incident coordinates")
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	incident := &models.Incident{
		Location:    input.Location,
		Description: input.Description,
		Latitude:    latInt,
		Longitude:   lngInt,
		Reporter:    input.Reporter,
		Severity:    input.Severity,
		Status:      models.StatusReported,
	}
	mutation, err := repository.NewIncidentMutation(incident)
	if err != nil {
		return nil, fmt.Errorf("service: could not encode incident: %w", err)
	}

	receipt, err := commit(ctx, s.repo, mutation)
	if err != nil {
		if errors.Is(err, errConflict) {
			err = fmt.Errorf("%w: %w", ErrLedgerRejected, err)
		}
		log.WithError(err).Error("Ledger did not confirm incident")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}
	id, err := repository.KeyID(receipt.Keys[0])
	if err != nil {
		return nil, fmt.Errorf("service: ledger returned bad incident key: %w", err)
	}
	incident.ID = id
	incident.CreatedAt = receipt.ConfirmedAt

	s.metrics.IncidentCreated(incident.Severity.String())
	log.WithField("incident_id", incident.ID).Info("Incident created successfully")

	s.notify(ctx, incident, log)
	return incident, nil
}

// notify - fire-and-forget: ошибка публикации не отменяет созданный инцидент
func (s *incidentService) notify(ctx context.Context, incident *models.Incident, log *logrus.Entry) {
	if s.publisher == nil {
		return
	}
	lat, lng := geo.Decode(incident.Latitude, incident.Longitude)
	event := webhook.IncidentEvent{
		EventID:    uuid.New(),
		Type:       webhook.EventIncidentReported,
		IncidentID: incident.ID,
		Reporter:   incident.Reporter,
		Location:   incident.Location,
		Severity:   incident.Severity.String(),
		Latitude:   lat,
		Longitude:  lng,
		Timestamp:  incident.CreatedAt,
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		log.WithError(err).Warn("Failed to publish incident notification")
	}
}

// GetIncident получает инцидент по ID: сначала кэш, затем журнал
func (s *incidentService) GetIncident(ctx context.Context, id int64) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	if id <= 0 {
		return nil, validationError("incident id must be positive")
	}

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from cache")
	}
	if cached != nil {
		log.Debug("Incident fetched from cache")
		return cached, nil
	}

	// одновременные промахи по одному id идут в журнал одним чтением
	ch := s.reads.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		return s.readThrough(readCtx, id, log)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("service: could not get incident %d: %w", id, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		log.WithError(res.Err).Debug("Failed to get incident from ledger")
		return nil, fmt.Errorf("service: could not get incident %d: %w", id, readError(res.Err))
	}

	incident := *res.Val.(*models.Incident)
	return &incident, nil
}

// readThrough читает инцидент из журнала и кладет в кэш вместе с версией.
// Если пока шло чтение журнал ушел вперед, запись из кэша снимается.
func (s *incidentService) readThrough(ctx context.Context, id int64, log *logrus.Entry) (*models.Incident, error) {
	incident, version, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.SetIncidentCache(ctx, incident, version)
	if err != nil {
		log.WithError(err).Warn("Failed to set incident cache")
		return incident, nil
	}
	if !stored {
		return incident, nil
	}

	_, current, err := s.repo.GetIncident(ctx, id)
	if err == nil && current == version {
		return incident, nil
	}
	log.WithField("cached_version", version).Debug("Incident changed while filling cache")
	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate stale incident cache")
	}
	return incident, nil
}

// CountIncidents - наибольший подтвержденный id
func (s *incidentService) CountIncidents(ctx context.Context) (int64, error) {
	count, err := s.repo.CountIncidents(ctx)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "incident",
			"method":  "CountIncidents",
		}).WithError(err).Error("Failed to count incidents")
		return 0, fmt.Errorf("service: could not count incidents: %w", err)
	}
	return count, nil
}

// ListIncidentsByReporter лениво перебирает id инцидентов репортера по возрастанию.
// Верхняя граница фиксируется при старте перебора; каждый новый вызов range начинает заново.
// Ошибка чтения передается вторым значением и завершает перебор.
func (s *incidentService) ListIncidentsByReporter(ctx context.Context, reporter string) iter.Seq2[int64, error] {
	return func(yield func(int64, error) bool) {
		if strings.TrimSpace(reporter) == "" {
			yield(0, validationError("reporter is required"))
			return
		}
		head, err := s.CountIncidents(ctx)
		if err != nil {
			yield(0, err)
			return
		}
		for id := int64(1); id <= head; id++ {
			if err := ctx.Err(); err != nil {
				yield(0, err)
				return
			}
			incident, err := s.GetIncident(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				yield(0, err)
				return
			}
			if incident.Reporter != reporter {
				continue
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}
