package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bigfive-insight/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Trafico bajo: una escritura por test evaluado.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS personality_results (
	id          UUID PRIMARY KEY,
	scores      JSONB NOT NULL,
	percentiles JSONB NOT NULL,
	raw_scores  JSONB NOT NULL,
	narrative   TEXT NOT NULL,
	provenance  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS personality_results_created_at_idx ON personality_results (created_at);
`

// EnsureSchema crea la tabla de resultados si no existe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}
