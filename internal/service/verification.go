package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/firechain/internal/config"
	"github.com/shenikar/firechain/internal/metrics"
	"github.com/shenikar/firechain/internal/models"
	"github.com/shenikar/firechain/internal/repository"
)

// VerificationService - машина состояний проверки инцидентов
type VerificationService interface {
	Verify(ctx context.Context, incidentID int64, target models.Status, verifier string) (*models.Incident, error)
}

type verificationService struct {
	repo      LedgerRepository
	rewards   RewardService
	logger    *logrus.Logger
	cfg       *config.Config
	metrics   *metrics.Metrics
	verifiers map[string]struct{}
	now       func() time.Time
}

func NewVerificationService(repo LedgerRepository, rewards RewardService, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) VerificationService {
	return &verificationService{
		repo:      repo,
		rewards:   rewards,
		logger:    logger,
		cfg:       cfg,
		metrics:   m,
		verifiers: allowList(cfg.Verifiers),
		now:       time.Now,
	}
}

// Verify переводит инцидент в target.
// Повтор уже примененного перехода - успешный no-op. Если инцидент в Verified/Resolved,
// а награда еще не выдана (прошлый вызов оборвался после перехода), награда начисляется.
func (s *verificationService) Verify(ctx context.Context, incidentID int64, target models.Status, verifier string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "verification",
		"method":      "Verify",
		"incident_id": incidentID,
		"target":      target.String(),
		"verifier":    verifier,
	})

	verifier = strings.TrimSpace(verifier)
	switch {
	case incidentID <= 0:
		return nil, validationError("incident id must be positive")
	case verifier == "":
		return nil, validationError("verifier is required")
	case !target.Valid():
		return nil, validationError("unknown status %d", target)
	case target == models.StatusReported:
		return nil, fmt.Errorf("%w: cannot move an incident back to %s", ErrIllegalTransition, target)
	}
	if !allowed(s.verifiers, verifier) {
		log.Warn("Verifier is not on the allow-list")
		return nil, fmt.Errorf("%w: %s may not verify incidents", ErrUnauthorized, verifier)
	}

	var (
		result     *models.Incident
		from       models.Status
		transition bool
	)
	err := withCAS(ctx, s.cfg.CASRetries, s.metrics, "verify", func() error {
		incident, version, err := s.repo.GetIncident(ctx, incidentID)
		if err != nil {
			return readError(err)
		}
		if incident.Reporter == verifier {
			return fmt.Errorf("%w: reporter cannot verify own incident", ErrUnauthorized)
		}
		if incident.Status == target {
			result, transition = incident, false
			return nil
		}
		if !models.CanTransition(incident.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, incident.Status, target)
		}

		from = incident.Status
		verifiedAt := s.now().UTC()
		incident.Status = target
		incident.Verifier = verifier
		incident.VerifiedAt = &verifiedAt

		mutation, err := repository.IncidentUpdateMutation(incident, version)
		if err != nil {
			return err
		}
		if _, err := commit(ctx, s.repo, mutation); err != nil {
			return err
		}
		result, transition = incident, true
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Verification not applied")
		return nil, fmt.Errorf("service: could not verify incident: %w", err)
	}

	if transition {
		s.metrics.StatusTransition(from.String(), target.String())
		if err := s.repo.InvalidateIncidentCache(ctx, incidentID); err != nil {
			log.WithError(err).Warn("Failed to invalidate incident cache")
		}
		log.WithField("from", from.String()).Info("Incident status changed")
	} else {
		log.Info("Incident already in target status")
	}

	if err := s.settleReward(ctx, result); err != nil {
		log.WithError(err).Error("Status applied but reward not credited")
		return nil, fmt.Errorf("service: incident %d is %s but reward is pending: %w", incidentID, result.Status, err)
	}
	return result, nil
}

// settleReward начисляет награду репортеру ровно один раз
func (s *verificationService) settleReward(ctx context.Context, incident *models.Incident) error {
	if !incident.Rewardable() || incident.RewardClaimed {
		return nil
	}
	_, err := s.rewards.Credit(ctx, incident.Reporter, incident.ID, s.cfg.RewardAmount)
	switch {
	case err == nil, errors.Is(err, ErrAlreadyClaimed):
		incident.RewardClaimed = true
		return nil
	default:
		return err
	}
}
