package service

import (
	"context"
	"errors"
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

// FundService - заявки на экстренное финансирование и общий фонд
type FundService interface {
	RequestFunds(ctx context.Context, incidentID int64, amount decimal.Decimal, justification, requester string) (*models.FundRequest, error)
	Approve(ctx context.Context, requestID int64, approver string) (*models.FundRequest, error)
	Disburse(ctx context.Context, requestID int64) (*models.FundRequest, error)
	GetFundRequest(ctx context.Context, requestID int64) (*models.FundRequest, error)
	CountFundRequests(ctx context.Context) (int64, error)
	Deposit(ctx context.Context, amount decimal.Decimal, depositor string) (*models.FundPool, error)
	PoolBalance(ctx context.Context) (*models.FundPool, error)
	SeedPool(ctx context.Context, amount decimal.Decimal) (bool, error)
}

type fundService struct {
	repo      LedgerRepository
	logger    *logrus.Logger
	cfg       *config.Config
	metrics   *metrics.Metrics
	approvers map[string]struct{}
	now       func() time.Time
}

func NewFundService(repo LedgerRepository, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) FundService {
	return &fundService{
		repo:      repo,
		logger:    logger,
		cfg:       cfg,
		metrics:   m,
		approvers: allowList(cfg.Approvers),
		now:       time.Now,
	}
}

func fundResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return "invalid"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal_transition"
	default:
		return "error"
	}
}

// RequestFunds создает заявку в состоянии Requested для существующего инцидента
func (s *fundService) RequestFunds(ctx context.Context, incidentID int64, amount decimal.Decimal, justification, requester string) (req *models.FundRequest, err error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "fund",
		"method":      "RequestFunds",
		"incident_id": incidentID,
		"requester":   requester,
		"amount":      amount.String(),
	})
	defer func() { s.metrics.FundOperation("request", fundResult(err)) }()

	justification = strings.TrimSpace(justification)
	requester = strings.TrimSpace(requester)
	switch {
	case incidentID <= 0:
		return nil, validationError("incident id must be positive")
	case !amount.IsPositive():
		return nil, validationError("requested amount must be positive")
	case justification == "":
		return nil, validationError("justification is required")
	case requester == "":
		return nil, validationError("requester is required")
	}

	if _, _, err := s.repo.GetIncident(ctx, incidentID); err != nil {
		log.WithError(err).Warn("Fund request for unknown incident")
		return nil, fmt.Errorf("service: could not request funds: %w", readError(err))
	}

	req = &models.FundRequest{
		IncidentID:      incidentID,
		RequestedAmount: amount,
		Requester:       requester,
		Justification:   justification,
	}
	mutation, err := repository.NewFundRequestMutation(req)
	if err != nil {
		return nil, fmt.Errorf("service: could not encode fund request: %w", err)
	}
	receipt, err := commit(ctx, s.repo, mutation)
	if err != nil {
		if errors.Is(err, errConflict) {
			err = fmt.Errorf("%w: %w", ErrLedgerRejected, err)
		}
		log.WithError(err).Error("Ledger did not confirm fund request")
		return nil, fmt.Errorf("service: could not request funds: %w", err)
	}
	if req.ID, err = repository.KeyID(receipt.Keys[0]); err != nil {
		return nil, fmt.Errorf("service: ledger returned bad fund request key: %w", err)
	}
	req.CreatedAt = receipt.ConfirmedAt

	log.WithField("request_id", req.ID).Info("Fund request created")
	return req, nil
}

// Approve: только из Requested, одобряющий не может быть заявителем
func (s *fundService) Approve(ctx context.Context, requestID int64, approver string) (approved *models.FundRequest, err error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "fund",
		"method":     "Approve",
		"request_id": requestID,
		"approver":   approver,
	})
	defer func() { s.metrics.FundOperation("approve", fundResult(err)) }()

	approver = strings.TrimSpace(approver)
	switch {
	case requestID <= 0:
		return nil, validationError("request id must be positive")
	case approver == "":
		return nil, validationError("approver is required")
	}
	if !allowed(s.approvers, approver) {
		log.Warn("Approver is not on the allow-list")
		return nil, fmt.Errorf("%w: %s may not approve fund requests", ErrUnauthorized, approver)
	}

	err = withCAS(ctx, s.cfg.CASRetries, s.metrics, "approve", func() error {
		req, version, err := s.repo.GetFundRequest(ctx, requestID)
		if err != nil {
			return readError(err)
		}
		if req.Requester == approver {
			return fmt.Errorf("%w: requester cannot approve own request", ErrUnauthorized)
		}
		if req.Status() != models.FundStatusRequested {
			return fmt.Errorf("%w: request %d is %s", ErrIllegalTransition, requestID, req.Status())
		}

		approvedAt := s.now().UTC()
		req.Approved = true
		req.Approver = approver
		req.ApprovedAt = &approvedAt

		mutation, err := repository.FundRequestUpdateMutation(req, version)
		if err != nil {
			return err
		}
		if _, err := commit(ctx, s.repo, mutation); err != nil {
			return err
		}
		approved = req
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Fund request not approved")
		return nil, fmt.Errorf("service: could not approve fund request: %w", err)
	}

	log.Info("Fund request approved")
	return approved, nil
}

// Disburse выплачивает одобренную заявку: списание с фонда и флаг disbursed - одна пачка.
// Повтор для уже выплаченной заявки возвращает ее без изменений.
func (s *fundService) Disburse(ctx context.Context, requestID int64) (disbursed *models.FundRequest, err error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "fund",
		"method":     "Disburse",
		"request_id": requestID,
	})
	defer func() { s.metrics.FundOperation("disburse", fundResult(err)) }()

	if requestID <= 0 {
		return nil, validationError("request id must be positive")
	}

	err = withCAS(ctx, s.cfg.CASRetries, s.metrics, "disburse", func() error {
		req, reqVersion, err := s.repo.GetFundRequest(ctx, requestID)
		if err != nil {
			return readError(err)
		}
		if req.Disbursed {
			disbursed = req
			return nil
		}
		if !req.Approved {
			return fmt.Errorf("%w: request %d is not approved", ErrIllegalTransition, requestID)
		}

		pool, poolVersion, err := s.repo.GetFundPool(ctx)
		if err != nil {
			return err
		}
		if req.RequestedAmount.GreaterThan(pool.Balance) {
			return fmt.Errorf("%w: requested %s, pool holds %s", ErrInsufficientFunds, req.RequestedAmount, pool.Balance)
		}

		now := s.now().UTC()
		req.Disbursed = true
		req.DisbursedAt = &now
		pool.Balance = pool.Balance.Sub(req.RequestedAmount)
		pool.TotalDisbursed = pool.TotalDisbursed.Add(req.RequestedAmount)
		pool.UpdatedAt = now

		reqMutation, err := repository.FundRequestUpdateMutation(req, reqVersion)
		if err != nil {
			return err
		}
		poolMutation, err := repository.FundPoolMutation(pool, poolVersion)
		if err != nil {
			return err
		}
		if _, err := commit(ctx, s.repo, reqMutation, poolMutation); err != nil {
			return err
		}
		disbursed = req
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Fund request not disbursed")
		return nil, fmt.Errorf("service: could not disburse fund request: %w", err)
	}

	log.WithField("amount", disbursed.RequestedAmount.String()).Info("Fund request disbursed")
	return disbursed, nil
}

func (s *fundService) GetFundRequest(ctx context.Context, requestID int64) (*models.FundRequest, error) {
	if requestID <= 0 {
		return nil, validationError("request id must be positive")
	}
	req, _, err := s.repo.GetFundRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get fund request %d: %w", requestID, readError(err))
	}
	return req, nil
}

func (s *fundService) CountFundRequests(ctx context.Context) (int64, error) {
	count, err := s.repo.CountFundRequests(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: could not count fund requests: %w", err)
	}
	return count, nil
}

// Deposit пополняет фонд
func (s *fundService) Deposit(ctx context.Context, amount decimal.Decimal, depositor string) (pool *models.FundPool, err error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "fund",
		"method":    "Deposit",
		"depositor": depositor,
		"amount":    amount.String(),
	})
	defer func() { s.metrics.FundOperation("deposit", fundResult(err)) }()

	depositor = strings.TrimSpace(depositor)
	switch {
	case !amount.IsPositive():
		return nil, validationError("deposit amount must be positive")
	case depositor == "":
		return nil, validationError("depositor is required")
	}

	err = withCAS(ctx, s.cfg.CASRetries, s.metrics, "deposit", func() error {
		current, version, err := s.repo.GetFundPool(ctx)
		if err != nil {
			return err
		}
		current.Balance = current.Balance.Add(amount)
		current.TotalDeposited = current.TotalDeposited.Add(amount)
		current.UpdatedAt = s.now().UTC()

		mutation, err := repository.FundPoolMutation(current, version)
		if err != nil {
			return err
		}
		if _, err := commit(ctx, s.repo, mutation); err != nil {
			return err
		}
		pool = current
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Deposit not applied")
		return nil, fmt.Errorf("service: could not deposit: %w", err)
	}

	log.WithField("balance", pool.Balance.String()).Info("Fund pool topped up")
	return pool, nil
}

func (s *fundService) PoolBalance(ctx context.Context) (*models.FundPool, error) {
	pool, _, err := s.repo.GetFundPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not read fund pool: %w", err)
	}
	return pool, nil
}

// SeedPool создает фонд с начальным балансом, если записи фонда еще нет.
// Возвращает false, если фонд уже существует.
func (s *fundService) SeedPool(ctx context.Context, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, nil
	}
	pool, version, err := s.repo.GetFundPool(ctx)
	if err != nil {
		return false, fmt.Errorf("service: could not read fund pool: %w", err)
	}
	if version != 0 {
		return false, nil
	}

	pool.Balance = amount
	pool.TotalDeposited = amount
	pool.UpdatedAt = s.now().UTC()
	mutation, err := repository.FundPoolMutation(pool, 0)
	if err != nil {
		return false, err
	}
	if _, err := commit(ctx, s.repo, mutation); err != nil {
		// другой экземпляр успел создать фонд первым
		if errors.Is(err, errConflict) {
			return false, nil
		}
		return false, fmt.Errorf("service: could not seed fund pool: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"service": "fund",
		"method":  "SeedPool",
		"amount":  amount.String(),
	}).Info("Fund pool seeded")
	return true, nil
}
