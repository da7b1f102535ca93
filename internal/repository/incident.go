package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/firechain/internal/ledger"
	"github.com/shenikar/firechain/internal/models"
)

// GetIncident читает инцидент и версию его записи прямо из журнала
func (r *LedgerRepository) GetIncident(ctx context.Context, id int64) (*models.Incident, int64, error) {
	rec, err := r.read(ctx, KindIncident, idKey(id))
	if err != nil {
		return nil, 0, err
	}
	incident, err := DecodeIncident(rec)
	if err != nil {
		return nil, 0, err
	}
	return incident, rec.Version, nil
}

// CountIncidents - наибольший подтвержденный id (0, если инцидентов нет)
func (r *LedgerRepository) CountIncidents(ctx context.Context) (int64, error) {
	return r.Head(ctx, KindIncident)
}

// NewIncidentMutation - создание: id выдает журнал при коммите
func NewIncidentMutation(incident *models.Incident) (ledger.Mutation, error) {
	payload, err := json.Marshal(incident)
	if err != nil {
		return ledger.Mutation{}, fmt.Errorf("failed to marshal incident: %w", err)
	}
	return ledger.Mutation{Kind: KindIncident, Sequence: true, Payload: payload}, nil
}

// IncidentUpdateMutation - новая версия существующего инцидента (CAS по version)
func IncidentUpdateMutation(incident *models.Incident, version int64) (ledger.Mutation, error) {
	payload, err := json.Marshal(incident)
	if err != nil {
		return ledger.Mutation{}, fmt.Errorf("failed to marshal incident: %w", err)
	}
	return ledger.Mutation{
		Kind:          KindIncident,
		Key:           idKey(incident.ID),
		ExpectVersion: version,
		Payload:       payload,
	}, nil
}

// DecodeIncident: id берется из ключа, createdAt - из времени подтверждения записи
func DecodeIncident(rec *ledger.Record) (*models.Incident, error) {
	id, err := KeyID(rec.Key)
	if err != nil {
		return nil, err
	}
	incident := &models.Incident{}
	if err := json.Unmarshal(rec.Payload, incident); err != nil {
		return nil, fmt.Errorf("%w: incident %d: %v", ErrCorruptRecord, id, err)
	}
	if !incident.Severity.Valid() || !incident.Status.Valid() {
		return nil, fmt.Errorf("%w: incident %d has unknown severity or status", ErrCorruptRecord, id)
	}
	incident.ID = id
	incident.CreatedAt = rec.CreatedAt
	return incident, nil
}

func incidentCacheKey(id int64) string {
	return fmt.Sprintf("incident:%d", id)
}

// cachedIncident - запись кэша; version - версия записи в журнале, с которой она снята
type cachedIncident struct {
	Version  int64            `json:"version"`
	Incident *models.Incident `json:"incident"`
}

// setIfNotOlder записывает значение, только если в кэше нет записи с большей версией.
// KEYS[1] - ключ, ARGV: значение, версия, TTL в миллисекундах (0 - без срока).
var setIfNotOlder = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local ok, entry = pcall(cjson.decode, current)
	if ok and type(entry) == 'table' and tonumber(entry.version) and tonumber(entry.version) > tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// GetIncidentFromCache пытается получить инцидент из Redis; промах - (nil, nil)
func (r *LedgerRepository) GetIncidentFromCache(ctx context.Context, id int64) (*models.Incident, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	val, err := r.redisClient.Get(ctx, incidentCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	var entry cachedIncident
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	if entry.Incident == nil {
		return nil, nil
	}
	return entry.Incident, nil
}

// SetIncidentCache сохраняет инцидент версии version в Redis.
// Запись с большей версией не перезаписывается; false - кэш выключен или уже свежее.
func (r *LedgerRepository) SetIncidentCache(ctx context.Context, incident *models.Incident, version int64) (bool, error) {
	if r.redisClient == nil {
		return false, nil
	}
	val, err := json.Marshal(cachedIncident{Version: version, Incident: incident})
	if err != nil {
		return false, fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	stored, err := setIfNotOlder.Run(ctx, r.redisClient,
		[]string{incidentCacheKey(incident.ID)},
		val, version, r.cacheTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return stored == 1, nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *LedgerRepository) InvalidateIncidentCache(ctx context.Context, id int64) error {
	if r.redisClient == nil {
		return nil
	}
	if err := r.redisClient.Del(ctx, incidentCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
