package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workforce-ai/roster-import/internal/config"
)

// ApplicationName tags the service's sessions in pg_stat_activity.
const ApplicationName = "roster-import"

//go:embed migrations/*.sql
var migrations embed.FS

// Pool is a type alias for pgxpool.Pool for use in other packages.
type Pool = pgxpool.Pool

// Connect creates a connection pool to Postgres and checks it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	slog.Info("connected to database",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DBName,
		"max_conns", poolCfg.MaxConns,
		"min_conns", poolCfg.MinConns,
		"statement_timeout", cfg.StatementTimeout.String(),
	)

	return pool, nil
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.MaxConns = int32(max(cfg.MaxConns, 1))
	poolCfg.MinConns = int32(min(max(cfg.MinConns, 0), int(poolCfg.MaxConns)))
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	params := poolCfg.ConnConfig.RuntimeParams
	params["application_name"] = ApplicationName
	if cfg.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	return poolCfg, nil
}

// RunMigrations executes the embedded SQL migrations in file name order. Every
// statement is idempotent, so the full set runs on each start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := migrationFiles()
	if err != nil {
		return err
	}

	for _, name := range names {
		sqlBytes, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		slog.Info("migration applied", "file", name)
	}

	slog.Info("database migrations applied successfully", "count", len(names))
	return nil
}

func migrationFiles() ([]string, error) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
