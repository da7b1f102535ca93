package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shenikar/firechain/internal/ledger"
	"github.com/shenikar/firechain/internal/models"
)

func (r *LedgerRepository) GetFundRequest(ctx context.Context, id int64) (*models.FundRequest, int64, error) {
	rec, err := r.read(ctx, KindFundRequest, idKey(id))
	if err != nil {
		return nil, 0, err
	}
	req, err := DecodeFundRequest(rec)
	if err != nil {
		return nil, 0, err
	}
	return req, rec.Version, nil
}

func (r *LedgerRepository) CountFundRequests(ctx context.Context) (int64, error) {
	return r.Head(ctx, KindFundRequest)
}

func NewFundRequestMutation(req *models.FundRequest) (ledger.Mutation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return ledger.Mutation{}, fmt.Errorf("failed to marshal fund request: %w", err)
	}
	return ledger.Mutation{Kind: KindFundRequest, Sequence: true, Payload: payload}, nil
}

func FundRequestUpdateMutation(req *models.FundRequest, version int64) (ledger.Mutation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return ledger.Mutation{}, fmt.Errorf("failed to marshal fund request: %w", err)
	}
	return ledger.Mutation{
		Kind:          KindFundRequest,
		Key:           idKey(req.ID),
		ExpectVersion: version,
		Payload:       payload,
	}, nil
}

func DecodeFundRequest(rec *ledger.Record) (*models.FundRequest, error) {
	id, err := KeyID(rec.Key)
	if err != nil {
		return nil, err
	}
	req := &models.FundRequest{}
	if err := json.Unmarshal(rec.Payload, req); err != nil {
		return nil, fmt.Errorf("%w: fund request %d: %v", ErrCorruptRecord, id, err)
	}
	req.ID = id
	req.CreatedAt = rec.CreatedAt
	return req, nil
}

// GetBalance возвращает баланс участника; для нового участника - нулевой баланс с версией 0
func (r *LedgerRepository) GetBalance(ctx context.Context, actor string) (*models.RewardBalance, int64, error) {
	rec, err := r.read(ctx, KindBalance, actor)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return &models.RewardBalance{Actor: actor, Amount: decimal.Zero}, 0, nil
		}
		return nil, 0, err
	}
	balance := &models.RewardBalance{}
	if err := json.Unmarshal(rec.Payload, balance); err != nil {
		return nil, 0, fmt.Errorf("%w: balance %s: %v", ErrCorruptRecord, actor, err)
	}
	balance.Actor = actor
	balance.UpdatedAt = rec.UpdatedAt
	return balance, rec.Version, nil
}

// BalanceMutation; version == 0 создает запись баланса
func BalanceMutation(balance *models.RewardBalance, version int64) (ledger.Mutation, error) {
	payload, err := json.Marshal(balance)
	if err != nil {
		return ledger.Mutation{}, fmt.Errorf("failed to marshal balance: %w", err)
	}
	return ledger.Mutation{
		Kind:          KindBalance,
		Key:           balance.Actor,
		ExpectVersion: version,
		Payload:       payload,
	}, nil
}

// GetFundPool возвращает фонд; пустой фонд до первого пополнения - версия 0
func (r *LedgerRepository) GetFundPool(ctx context.Context) (*models.FundPool, int64, error) {
	rec, err := r.read(ctx, KindFundPool, fundPoolKey)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return &models.FundPool{
				Balance:        decimal.Zero,
				TotalDeposited: decimal.Zero,
				TotalDisbursed: decimal.Zero,
				UpdatedAt:      time.Time{},
			}, 0, nil
		}
		return nil, 0, err
	}
	pool := &models.FundPool{}
	if err := json.Unmarshal(rec.Payload, pool); err != nil {
		return nil, 0, fmt.Errorf("%w: fund pool: %v", ErrCorruptRecord, err)
	}
	pool.UpdatedAt = rec.UpdatedAt
	return pool, rec.Version, nil
}

func FundPoolMutation(pool *models.FundPool, version int64) (ledger.Mutation, error) {
	payload, err := json.Marshal(pool)
	if err != nil {
		return ledger.Mutation{}, fmt.Errorf("failed to marshal fund pool: %w", err)
	}
	return ledger.Mutation{
		Kind:          KindFundPool,
		Key:           fundPoolKey,
		ExpectVersion: version,
		Payload:       payload,
	}, nil
}
