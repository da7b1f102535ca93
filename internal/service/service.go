package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shenikar/firechain/internal/ledger"
	"github.com/shenikar/firechain/internal/metrics"
	"github.com/shenikar/firechain/internal/models"
)

// LedgerRepository определяет контракт доступа к записям журнала
type LedgerRepository interface {
	Commit(ctx context.Context, entry ledger.Entry) (ledger.Receipt, error)

	GetIncident(ctx context.Context, id int64) (*models.Incident, int64, error)
	CountIncidents(ctx context.Context) (int64, error)
	GetIncidentFromCache(ctx context.Context, id int64) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident, version int64) (bool, error)
	InvalidateIncidentCache(ctx context.Context, id int64) error

	GetFundRequest(ctx context.Context, id int64) (*models.FundRequest, int64, error)
	CountFundRequests(ctx context.Context) (int64, error)
	GetBalance(ctx context.Context, actor string) (*models.RewardBalance, int64, error)
	GetFundPool(ctx context.Context) (*models.FundPool, int64, error)
}

func commit(ctx context.Context, repo LedgerRepository, mutations ...ledger.Mutation) (ledger.Receipt, error) {
	receipt, err := repo.Commit(ctx, ledger.Entry{Mutations: mutations})
	if err != nil {
		return ledger.Receipt{}, commitError(err)
	}
	return receipt, nil
}

// withCAS повторяет read-modify-commit, пока журнал отвечает конфликтом версий.
// Каждая попытка перечитывает запись, поэтому проигравший гонку видит новое состояние.
func withCAS(ctx context.Context, attempts int, m *metrics.Metrics, operation string, op func() error) error {
	var err error
	for attempt := 0; attempt < max(attempts, 1); attempt++ {
		if attempt > 0 {
			m.CASRetry(operation)
		}
		if err = op(); !errors.Is(err, errConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrConfirmationTimeout, ctxErr)
		}
	}
	return fmt.Errorf("%w: %s: still conflicting after %d attempts: %w", ErrLedgerRejected, operation, max(attempts, 1), err)
}

func allowList(actors []string) map[string]struct{} {
	if len(actors) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(actors))
	for _, a := range actors {
		set[a] = struct{}{}
	}
	return set
}

// allowed: пустой список разрешает всех
func allowed(set map[string]struct{}, actor string) bool {
	if set == nil {
		return true
	}
	_, ok := set[actor]
	return ok
}
