package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"knowledge-rag/internal/config"
)

const (
	DriverPG = "pgdriver"
	DriverPQ = "pq"
)

// ConnectDB opens a database/sql handle for the configured driver. The
// connection itself is established lazily.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "", DriverPG:
		return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.URL))), nil
	case DriverPQ:
		sqldb, err := sql.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return sqldb, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Open connects and pings the store.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*bun.DB, error) {
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	db := NewDB(sqldb, cfg.Debug)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info().Str("driver", cfg.Driver).Msg("Connected to database")
	return db, nil
}

// InitDB creates the chunk table when it does not exist. The full-text index
// is managed outside this program.
func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*ChunkRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}
