//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shenikar/firechain/internal/models"
)

func newRedisTestClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestCache_RoundTrip(t *testing.T) {
	client := newRedisTestClient(t)
	repo := NewLedgerRepository(nil, client, time.Minute, time.Second)
	ctx := context.Background()

	incident := &models.Incident{
		ID:       5,
		Location: "Pine Valley",
		Reporter: "alice",
		Severity: models.SeverityCritical,
		Status:   models.StatusVerified,
	}

	miss, err := repo.GetIncidentFromCache(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, miss)

	stored, err := repo.SetIncidentCache(ctx, incident, 2)
	require.NoError(t, err)
	assert.True(t, stored)
	hit, err := repo.GetIncidentFromCache(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, incident.Location, hit.Location)
	assert.Equal(t, models.SeverityCritical, hit.Severity)

	ttl, err := client.TTL(ctx, "incident:5").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	require.NoError(t, repo.InvalidateIncidentCache(ctx, 5))
	miss, err = repo.GetIncidentFromCache(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCache_OlderVersionDoesNotOverwrite(t *testing.T) {
	client := newRedisTestClient(t)
	repo := NewLedgerRepository(nil, client, time.Minute, time.Second)
	ctx := context.Background()

	verified := &models.Incident{ID: 8, Reporter: "alice", Status: models.StatusVerified, RewardClaimed: true}
	stored, err := repo.SetIncidentCache(ctx, verified, 3)
	require.NoError(t, err)
	require.True(t, stored)

	// запоздавшее чтение версии 1 не должно затереть версию 3
	reported := &models.Incident{ID: 8, Reporter: "alice", Status: models.StatusReported}
	stored, err = repo.SetIncidentCache(ctx, reported, 1)
	require.NoError(t, err)
	assert.False(t, stored)

	hit, err := repo.GetIncidentFromCache(ctx, 8)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, models.StatusVerified, hit.Status)

	// та же версия перезаписывается
	stored, err = repo.SetIncidentCache(ctx, verified, 3)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestCache_NoTTL(t *testing.T) {
	client := newRedisTestClient(t)
	repo := NewLedgerRepository(nil, client, 0, time.Second)
	ctx := context.Background()

	stored, err := repo.SetIncidentCache(ctx, &models.Incident{ID: 4}, 1)
	require.NoError(t, err)
	assert.True(t, stored)

	ttl, err := client.TTL(ctx, "incident:4").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}
