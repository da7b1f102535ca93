package service

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/firechain/internal/config"
	"github.com/shenikar/firechain/internal/ledger"
	"github.com/shenikar/firechain/internal/models"
	"github.com/shenikar/firechain/internal/repository"
)

// testEnv - все сервисы поверх настоящего журнала в памяти
type testEnv struct {
	cfg          *config.Config
	repo         *repository.LedgerRepository
	incidents    IncidentService
	verification VerificationService
	rewards      RewardService
	funds        FundService
	projection   ProjectionService
}

func testConfig() *config.Config {
	return &config.Config{
		ConfirmationTimeout: 5 * time.Second,
		CASRetries:          20,
		RewardAmount:        decimal.NewFromInt(10),
		ListMaxRange:        100,
		ListConcurrency:     4,
	}
}

func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	return newTestEnvWithStore(t, ledger.NewMemoryStore(), opts...)
}

func newTestEnvWithStore(t *testing.T, store ledger.Store, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	committer := ledger.NewCommitter(store, logger)
	t.Cleanup(func() { _ = committer.Close() })
	repo := repository.NewLedgerRepository(committer, nil, time.Minute, cfg.ConfirmationTimeout)

	incidents := NewIncidentService(repo, logger, cfg, nil, nil)
	rewards := NewRewardService(repo, logger, cfg, nil)
	return &testEnv{
		cfg:          cfg,
		repo:         repo,
		incidents:    incidents,
		verification: NewVerificationService(repo, rewards, logger, cfg, nil),
		rewards:      rewards,
		funds:        NewFundService(repo, logger, cfg, nil),
		projection:   NewProjectionService(incidents, logger, cfg, nil),
	}
}

func (e *testEnv) report(t *testing.T, reporter string) *models.Incident {
	t.Helper()
	r := validReport()
	r.Reporter = reporter
	incident, err := e.incidents.CreateIncident(context.Background(), r)
	require.NoError(t, err)
	return incident
}

// forceIncident записывает состояние инцидента в обход сервисов
func (e *testEnv) forceIncident(t *testing.T, id int64, modify func(*models.Incident)) {
	t.Helper()
	ctx := context.Background()
	incident, version, err := e.repo.GetIncident(ctx, id)
	require.NoError(t, err)
	modify(incident)
	mutation, err := repository.IncidentUpdateMutation(incident, version)
	require.NoError(t, err)
	_, err = e.repo.Commit(ctx, ledger.Entry{Mutations: []ledger.Mutation{mutation}})
	require.NoError(t, err)
}

func (e *testEnv) balance(t *testing.T, actor string) decimal.Decimal {
	t.Helper()
	b, err := e.rewards.BalanceOf(context.Background(), actor)
	require.NoError(t, err)
	return b.Amount
}

// failingStore отклоняет очередную пачку, пока взведен failNext
type failingStore struct {
	*ledger.MemoryStore
	failNext atomic.Bool
}

func (s *failingStore) Apply(ctx context.Context, handle ledger.Handle, entry ledger.Entry, now time.Time) (ledger.Receipt, error) {
	if s.failNext.CompareAndSwap(true, false) {
		return ledger.Receipt{}, errors.New("node unavailable")
	}
	return s.MemoryStore.Apply(ctx, handle, entry, now)
}
