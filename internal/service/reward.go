package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/firechain/internal/config"
	"github.com/shenikar/firechain/internal/metrics"
	"github.com/shenikar/firechain/internal/models"
	"github.com/shenikar/firechain/internal/repository"
)

// RewardService - начисление наград репортерам и балансы
type RewardService interface {
	Credit(ctx context.Context, actor string, incidentID int64, amount decimal.Decimal) (*models.RewardBalance, error)
	BalanceOf(ctx context.Context, actor string) (*models.RewardBalance, error)
}

type rewardService struct {
	repo    LedgerRepository
	logger  *logrus.Logger
	cfg     *config.Config
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewRewardService(repo LedgerRepository, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) RewardService {
	return &rewardService{
		repo:    repo,
		logger:  logger,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
	}
}

// Credit начисляет награду за инцидент. Флаг rewardClaimed и баланс меняются
// одной пачкой с CAS по обеим записям, поэтому награда за инцидент выдается один раз.
func (s *rewardService) Credit(ctx context.Context, actor string, incidentID int64, amount decimal.Decimal) (*models.RewardBalance, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "reward",
		"method":      "Credit",
		"actor":       actor,
		"incident_id": incidentID,
		"amount":      amount.String(),
	})

	actor = strings.TrimSpace(actor)
	switch {
	case actor == "":
		return nil, validationError("actor is required")
	case incidentID <= 0:
		return nil, validationError("incident id must be positive")
	case amount.IsNegative():
		return nil, validationError("reward amount must not be negative")
	}

	var credited *models.RewardBalance
	err := withCAS(ctx, s.cfg.CASRetries, s.metrics, "credit", func() error {
		incident, incidentVersion, err := s.repo.GetIncident(ctx, incidentID)
		if err != nil {
			return readError(err)
		}
		if !incident.Rewardable() {
			return fmt.Errorf("%w: incident %d is %s", ErrIllegalTransition, incidentID, incident.Status)
		}
		if incident.Reporter != actor {
			return fmt.Errorf("%w: %s did not report incident %d", ErrUnauthorized, actor, incidentID)
		}
		if incident.RewardClaimed {
			return fmt.Errorf("%w: incident %d", ErrAlreadyClaimed, incidentID)
		}

		balance, balanceVersion, err := s.repo.GetBalance(ctx, actor)
		if err != nil {
			return err
		}

		incident.RewardClaimed = true
		balance.Amount = balance.Amount.Add(amount)
		balance.RewardsClaimed++
		balance.UpdatedAt = s.now().UTC()

		incidentMutation, err := repository.IncidentUpdateMutation(incident, incidentVersion)
		if err != nil {
			return err
		}
		balanceMutation, err := repository.BalanceMutation(balance, balanceVersion)
		if err != nil {
			return err
		}
		if _, err := commit(ctx, s.repo, incidentMutation, balanceMutation); err != nil {
			return err
		}
		credited = balance
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Reward not credited")
		return nil, fmt.Errorf("service: could not credit reward: %w", err)
	}

	if err := s.repo.InvalidateIncidentCache(ctx, incidentID); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
	s.metrics.RewardCredited()
	log.WithField("balance", credited.Amount.String()).Info("Reward credited")
	return credited, nil
}

// BalanceOf возвращает баланс участника (нулевой для неизвестного)
func (s *rewardService) BalanceOf(ctx context.Context, actor string) (*models.RewardBalance, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, validationError("actor is required")
	}
	balance, _, err := s.repo.GetBalance(ctx, actor)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "reward",
			"method":  "BalanceOf",
			"actor":   actor,
		}).WithError(err).Error("Failed to read balance")
		return nil, fmt.Errorf("service: could not read balance: %w", err)
	}
	return balance, nil
}
