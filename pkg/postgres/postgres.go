package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 5 * time.Second

// NewPostgresDB создает пул соединений PostgreSQL для журнала
func NewPostgresDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfgPool, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе конфигурации postgres: %w", err)
	}
	// записи идут через один коммиттер, остальное - чтения
	if cfgPool.MaxConns < 4 {
		cfgPool.MaxConns = 4
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, cfgPool)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}

	// Проверяем соединение с базой данных
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := dbpool.Ping(pingCtx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("не удалось выполнить ping к postgres: %w", err)
	}

	return dbpool, nil
}

// Migrate применяет миграции из sourceURL (например, file://migrations).
// Возвращает false, если схема уже актуальна.
func Migrate(databaseURL, sourceURL string) (bool, error) {
	migrationURL := databaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
		migrationURL = strings.Replace(migrationURL, "postgresql://", "pgx5://", 1)
	}

	m, err := migrate.New(sourceURL, migrationURL)
	if err != nil {
		return false, fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("failed to run migrations: %w", err)
	}
	return true, nil
}
