package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore - журнал в PostgreSQL; схема создается миграциями (migrations/)
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore не владеет пулом: его закрывает тот, кто создал
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Apply(ctx context.Context, handle Handle, entry Entry, now time.Time) (Receipt, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var seq int64
	err = tx.QueryRow(ctx,
		`INSERT INTO ledger_entries (handle, committed_at) VALUES ($1, $2) RETURNING seq`,
		handle.ID.String(), now,
	).Scan(&seq)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	receipt := Receipt{
		Seq:         seq,
		Keys:        make([]string, len(entry.Mutations)),
		Versions:    make([]int64, len(entry.Mutations)),
		ConfirmedAt: now,
	}
	for i, m := range entry.Mutations {
		key := m.Key
		if m.Sequence {
			var next int64
			err := tx.QueryRow(ctx, `
				INSERT INTO ledger_sequences (kind, last_value) VALUES ($1, 1)
				ON CONFLICT (kind) DO UPDATE SET last_value = ledger_sequences.last_value + 1
				RETURNING last_value`,
				string(m.Kind),
			).Scan(&next)
			if err != nil {
				return Receipt{}, fmt.Errorf("failed to allocate %s sequence: %w", m.Kind, err)
			}
			key = strconv.FormatInt(next, 10)
		}

		version, err := s.write(ctx, tx, m, key, now)
		if err != nil {
			return Receipt{}, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_journal (entry_seq, position, kind, record_key, version, payload)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			seq, i, string(m.Kind), key, version, m.Payload,
		)
		if err != nil {
			return Receipt{}, fmt.Errorf("failed to write ledger journal: %w", err)
		}
		receipt.Keys[i] = key
		receipt.Versions[i] = version
	}

	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, fmt.Errorf("failed to commit ledger entry: %w", err)
	}
	return receipt, nil
}

func (s *PostgresStore) write(ctx context.Context, tx pgx.Tx, m Mutation, key string, now time.Time) (int64, error) {
	if m.ExpectVersion == 0 {
		cmdTag, err := tx.Exec(ctx, `
			INSERT INTO ledger_records (kind, record_key, version, payload, created_at, updated_at)
			VALUES ($1, $2, 1, $3, $4, $4)
			ON CONFLICT (kind, record_key) DO NOTHING`,
			string(m.Kind), key, m.Payload, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert ledger record: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return 0, fmt.Errorf("%w: %s/%s already exists", ErrVersionConflict, m.Kind, key)
		}
		return 1, nil
	}

	cmdTag, err := tx.Exec(ctx, `
		UPDATE ledger_records SET version = version + 1, payload = $1, updated_at = $2
		WHERE kind = $3 AND record_key = $4 AND version = $5`,
		m.Payload, now, string(m.Kind), key, m.ExpectVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update ledger record: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return 0, fmt.Errorf("%w: %s/%s is not at version %d", ErrVersionConflict, m.Kind, key, m.ExpectVersion)
	}
	return m.ExpectVersion + 1, nil
}

func (s *PostgresStore) Read(ctx context.Context, kind Kind, key string) (*Record, error) {
	rec := &Record{Kind: kind, Key: key}
	err := s.db.QueryRow(ctx, `
		SELECT version, payload, created_at, updated_at
		FROM ledger_records
		WHERE kind = $1 AND record_key = $2`,
		string(kind), key,
	).Scan(&rec.Version, &rec.Payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, key)
		}
		return nil, fmt.Errorf("failed to read ledger record: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (s *PostgresStore) Head(ctx context.Context, kind Kind) (int64, error) {
	var last int64
	err := s.db.QueryRow(ctx,
		`SELECT last_value FROM ledger_sequences WHERE kind = $1`, string(kind),
	).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s sequence: %w", kind, err)
	}
	return last, nil
}

func (s *PostgresStore) Close() error {
	return nil
}
