package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/firechain/internal/config"
	"github.com/shenikar/firechain/internal/metrics"
	"github.com/shenikar/firechain/internal/models"
)

// ProjectionService - выборки и сводки поверх реестра
type ProjectionService interface {
	ListIncidents(ctx context.Context, fromID, toID int64) ([]*models.Incident, int, error)
	Stats(ctx context.Context) (*models.IncidentStats, error)
}

type projectionService struct {
	incidents IncidentService
	logger    *logrus.Logger
	cfg       *config.Config
	metrics   *metrics.Metrics
}

func NewProjectionService(incidents IncidentService, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) ProjectionService {
	return &projectionService{
		incidents: incidents,
		logger:    logger,
		cfg:       cfg,
		metrics:   m,
	}
}

// ListIncidents читает инциденты [fromID, toID] через GetIncident.
// Нечитаемый id логируется и пропускается; выборку прерывает только отмена ctx.
// Широкий диапазон обрезается по числу инцидентов и читается окнами по ListMaxRange.
// Порядок результата - по id; второе значение - сколько инцидентов прочитано.
func (s *projectionService) ListIncidents(ctx context.Context, fromID, toID int64) ([]*models.Incident, int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "projection",
		"method":  "ListIncidents",
		"from_id": fromID,
		"to_id":   toID,
	})

	switch {
	case fromID < 1:
		return nil, 0, validationError("from id must be positive")
	case toID < fromID:
		return nil, 0, validationError("to id %d is less than from id %d", toID, fromID)
	}

	window := int64(max(s.cfg.ListMaxRange, 1))
	if toID-fromID >= window {
		// id выдаются подряд, за пределами счетчика читать нечего
		total, err := s.incidents.CountIncidents(ctx)
		if err != nil {
			return nil, 0, err
		}
		toID = min(toID, total)
	}

	incidents := make([]*models.Incident, 0, min(toID-fromID+1, window))
	for from := fromID; from <= toID; {
		to := toID
		if to-from >= window {
			to = from + window - 1
		}
		if err := s.listWindow(ctx, from, to, &incidents, log); err != nil {
			return nil, 0, err
		}
		if to == toID {
			break
		}
		from = to + 1
	}

	log.WithField("count", len(incidents)).Debug("Incidents listed")
	return incidents, len(incidents), nil
}

// listWindow читает [fromID, toID] параллельно, не больше ListConcurrency чтений сразу
func (s *projectionService) listWindow(ctx context.Context, fromID, toID int64, out *[]*models.Incident, log *logrus.Entry) error {
	slots := make([]*models.Incident, toID-fromID+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.ListConcurrency, 1))

	for id := fromID; id <= toID; id++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			incident, err := s.incidents.GetIncident(gctx, id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WithError(err).WithField("incident_id", id).Warn("Skipping unreadable incident")
				s.metrics.ProjectionSkip()
				return nil
			}
			slots[id-fromID] = incident
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("service: listing interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("service: listing interrupted: %w", err)
	}

	for _, incident := range slots {
		if incident != nil {
			*out = append(*out, incident)
		}
	}
	return nil
}

// Stats собирает сводку по всем инцидентам, читая их окнами по ListMaxRange
func (s *projectionService) Stats(ctx context.Context) (*models.IncidentStats, error) {
	total, err := s.incidents.CountIncidents(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.IncidentStats{
		Total:      total,
		BySeverity: make(map[string]int, 4),
	}
	window := int64(s.cfg.ListMaxRange)
	for from := int64(1); from <= total; from += window {
		to := min(from+window-1, total)
		incidents, _, err := s.ListIncidents(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for _, incident := range incidents {
			stats.Read++
			stats.BySeverity[incident.Severity.String()]++
			if incident.Active() {
				stats.Active++
			}
			switch incident.Status {
			case models.StatusVerified:
				stats.Verified++
			case models.StatusResolved:
				stats.Resolved++
			case models.StatusFalseReport:
				stats.FalseReports++
			}
			if incident.RewardClaimed {
				stats.RewardsClaimed++
			}
		}
	}
	return stats, nil
}
