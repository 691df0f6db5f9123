// Package postgis shifts coordinates between datums and grids with a PostGIS
// database's ST_Transform.
package postgis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tzneal/ausgrid"
	"github.com/tzneal/ausgrid/internal/config"
	"github.com/tzneal/ausgrid/internal/metrics"
)

// Config configures the database connection.
type Config struct {
	DatabaseURL string
	MaxConns    int
}

// ConfigFromEnv reads AUSGRID_DATABASE_URL (required) and
// AUSGRID_DB_MAX_CONNS (default 4), after loading an optional .env file.
func ConfigFromEnv() (Config, error) {
	config.Load()
	cfg := Config{DatabaseURL: strings.TrimSpace(config.String("AUSGRID_DATABASE_URL", ""))}
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("AUSGRID_DATABASE_URL is required")
	}
	n, err := config.Int("AUSGRID_DB_MAX_CONNS", 4)
	if err != nil {
		return cfg, err
	}
	if n < 1 {
		return cfg, fmt.Errorf("AUSGRID_DB_MAX_CONNS must be positive, got %d", n)
	}
	cfg.MaxConns = n
	return cfg, nil
}

// Transformer implements ausgrid.Transformer. It is safe for concurrent use.
type Transformer struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Transformer, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgis database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify postgis connection: %w", err)
	}
	return NewTransformer(db, logger), nil
}

// NewTransformer wraps an open database handle.
func NewTransformer(db *sql.DB, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Transformer{db: db, logger: logger}
}

// Close closes the database handle.
func (t *Transformer) Close() error {
	return t.db.Close()
}

const transformSQL = `
SELECT ST_X(g), ST_Y(g)
FROM (
	SELECT ST_Transform(ST_SetSRID(ST_MakePoint(x, y), $3), $4) AS g, ord
	FROM unnest($1::float8[], $2::float8[]) WITH ORDINALITY AS u(x, y, ord)
) s
ORDER BY ord`

// Transform shifts coords from sourceEPSG to targetEPSG in one round trip.
func (t *Transformer) Transform(ctx context.Context, coords []ausgrid.Coordinate, sourceEPSG, targetEPSG int) ([]ausgrid.Coordinate, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	if sourceEPSG == targetEPSG {
		return append([]ausgrid.Coordinate(nil), coords...), nil
	}

	xs := make([]float64, len(coords))
	ys := make([]float64, len(coords))
	for i, c := range coords {
		xs[i], ys[i] = c.X, c.Y
	}

	start := time.Now()
	out, err := t.query(ctx, xs, ys, sourceEPSG, targetEPSG)
	metrics.ObserveCollaborator("postgis", start, err)
	if err != nil {
		t.logger.Warn("st_transform failed", "source", sourceEPSG, "target", targetEPSG, "error", err)
		return nil, fmt.Errorf("transform EPSG:%d to EPSG:%d: %w", sourceEPSG, targetEPSG, err)
	}
	if len(out) != len(coords) {
		return nil, fmt.Errorf("transform EPSG:%d to EPSG:%d: expected %d coordinates, got %d", sourceEPSG, targetEPSG, len(coords), len(out))
	}
	t.logger.Debug("st_transform", "source", sourceEPSG, "target", targetEPSG, "count", len(out), "elapsed", time.Since(start))
	return out, nil
}

func (t *Transformer) query(ctx context.Context, xs, ys []float64, src, dst int) ([]ausgrid.Coordinate, error) {
	rows, err := t.db.QueryContext(ctx, transformSQL, xs, ys, src, dst)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ausgrid.Coordinate, 0, len(xs))
	for rows.Next() {
		var c ausgrid.Coordinate
		if err := rows.Scan(&c.X, &c.Y); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
