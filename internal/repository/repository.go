package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/firechain/internal/ledger"
)

// Типы записей в журнале
const (
	KindIncident    ledger.Kind = "incident"
	KindFundRequest ledger.Kind = "fund_request"
	KindBalance     ledger.Kind = "balance"
	KindFundPool    ledger.Kind = "fund_pool"

	fundPoolKey = "main"
)

// ErrCorruptRecord - полезная нагрузка записи не разбирается
var ErrCorruptRecord = errors.New("repository: corrupt record")

// LedgerRepository - типизированный доступ к записям журнала и кэш инцидентов в Redis
type LedgerRepository struct {
	ledger              ledger.Client
	redisClient         *redis.Client
	cacheTTL            time.Duration
	confirmationTimeout time.Duration
}

// NewLedgerRepository; redisClient == nil выключает кэш
func NewLedgerRepository(client ledger.Client, redisClient *redis.Client, cacheTTL, confirmationTimeout time.Duration) *LedgerRepository {
	return &LedgerRepository{
		ledger:              client,
		redisClient:         redisClient,
		cacheTTL:            cacheTTL,
		confirmationTimeout: confirmationTimeout,
	}
}

// Commit отправляет пачку в журнал и ждет подтверждения не дольше confirmationTimeout.
// Ошибки журнала возвращаются как есть (ledger.ErrVersionConflict, ledger.ErrTimeout, ...).
func (r *LedgerRepository) Commit(ctx context.Context, entry ledger.Entry) (ledger.Receipt, error) {
	handle, err := r.ledger.SubmitAppend(ctx, entry)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("failed to submit ledger entry: %w", err)
	}
	receipt, err := r.ledger.AwaitConfirmation(ctx, handle, r.confirmationTimeout)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("ledger entry %s not confirmed: %w", handle.ID, err)
	}
	return receipt, nil
}

// Head возвращает последний выданный номер последовательности для kind
func (r *LedgerRepository) Head(ctx context.Context, kind ledger.Kind) (int64, error) {
	head, err := r.ledger.Head(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s head: %w", kind, err)
	}
	return head, nil
}

func (r *LedgerRepository) read(ctx context.Context, kind ledger.Kind, key string) (*ledger.Record, error) {
	rec, err := r.ledger.ReadRecord(ctx, kind, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", kind, key, err)
	}
	return rec, nil
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// KeyID разбирает ключ записи из последовательности
func KeyID(key string) (int64, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad sequence key %q", ErrCorruptRecord, key)
	}
	return id, nil
}
