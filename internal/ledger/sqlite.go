package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore - локальное транзакционное хранилище журнала (один файл или ":memory:")
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening ledger database: %w", err)
	}
	// один писатель; для ":memory:" каждое соединение - отдельная база
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while pinging ledger database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating ledger database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS ledger_records (
			kind TEXT NOT NULL,
			record_key TEXT NOT NULL,
			version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (kind, record_key)
		);

		CREATE TABLE IF NOT EXISTS ledger_sequences (
			kind TEXT PRIMARY KEY,
			last_value INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS ledger_entries (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			handle TEXT NOT NULL,
			committed_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS ledger_journal (
			entry_seq INTEGER NOT NULL REFERENCES ledger_entries(seq),
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			record_key TEXT NOT NULL,
			version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (entry_seq, position)
		);

		CREATE INDEX IF NOT EXISTS idx_ledger_journal_record ON ledger_journal(kind, record_key);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Apply(ctx context.Context, handle Handle, entry Entry, now time.Time) (Receipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (handle, committed_at) VALUES (?, ?)`,
		handle.ID.String(), now.UnixNano(),
	)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to read ledger entry seq: %w", err)
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
			err := tx.QueryRowContext(ctx, `
				INSERT INTO ledger_sequences (kind, last_value) VALUES (?, 1)
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

		_, err = tx.ExecContext(ctx, `
			INSERT INTO ledger_journal (entry_seq, position, kind, record_key, version, payload)
			VALUES (?, ?, ?, ?, ?, ?)`,
			seq, i, string(m.Kind), key, version, m.Payload,
		)
		if err != nil {
			return Receipt{}, fmt.Errorf("failed to write ledger journal: %w", err)
		}
		receipt.Keys[i] = key
		receipt.Versions[i] = version
	}

	if err := tx.Commit(); err != nil {
		return Receipt{}, fmt.Errorf("failed to commit ledger entry: %w", err)
	}
	return receipt, nil
}

func (s *SQLiteStore) write(ctx context.Context, tx *sql.Tx, m Mutation, key string, now time.Time) (int64, error) {
	if m.ExpectVersion == 0 {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_records (kind, record_key, version, payload, created_at, updated_at)
			VALUES (?, ?, 1, ?, ?, ?)
			ON CONFLICT (kind, record_key) DO NOTHING`,
			string(m.Kind), key, m.Payload, now.UnixNano(), now.UnixNano(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert ledger record: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, fmt.Errorf("%w: %s/%s already exists", ErrVersionConflict, m.Kind, key)
		}
		return 1, nil
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE ledger_records SET version = version + 1, payload = ?, updated_at = ?
		WHERE kind = ? AND record_key = ? AND version = ?`,
		m.Payload, now.UnixNano(), string(m.Kind), key, m.ExpectVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update ledger record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: %s/%s is not at version %d", ErrVersionConflict, m.Kind, key, m.ExpectVersion)
	}
	return m.ExpectVersion + 1, nil
}

func (s *SQLiteStore) Read(ctx context.Context, kind Kind, key string) (*Record, error) {
	rec := &Record{Kind: kind, Key: key}
	var created, updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT version, payload, created_at, updated_at
		FROM ledger_records
		WHERE kind = ? AND record_key = ?`,
		string(kind), key,
	).Scan(&rec.Version, &rec.Payload, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, key)
		}
		return nil, fmt.Errorf("failed to read ledger record: %w", err)
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	return rec, nil
}

func (s *SQLiteStore) Head(ctx context.Context, kind Kind) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_value FROM ledger_sequences WHERE kind = ?`, string(kind),
	).Scan(&last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s sequence: %w", kind, err)
	}
	return last, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
