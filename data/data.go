package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	// Database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
)

// driverNames maps config driver names to database/sql driver names
var driverNames = map[string]string{
	"postgres": "pgx",
	"pgx":      "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite3",
	"sqlite3":  "sqlite3",
}

// Data bundles the shared external collaborators handed to modules
// through the module context: a relational pool, a search-index client
// and a redis client. All fields may be nil when unconfigured; modules
// must treat them as optional.
type Data struct {
	DB     *sql.DB
	Search *SearchClient
	Redis  *redis.Client
}

// New builds the data layer from configuration. Unconfigured sections are
// skipped rather than treated as errors.
func New(cfg *Config) (*Data, func() []error, error) {
	d := &Data{}

	if cfg != nil && cfg.Database != nil && cfg.Database.Source != "" {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		d.DB = db
	}

	if cfg != nil && cfg.Search != nil && cfg.Search.Host != "" {
		d.Search = NewSearchClient(cfg.Search.Host, cfg.Search.APIKey)
	}

	if cfg != nil && cfg.Redis != nil && cfg.Redis.Addr != "" {
		d.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	return d, d.Close, nil
}

// openDatabase opens and verifies a database/sql pool
func openDatabase(cfg *DatabaseConfig) (*sql.DB, error) {
	driver, ok := driverNames[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Ping verifies the configured connections
func (d *Data) Ping(ctx context.Context) error {
	if d.DB != nil {
		if err := d.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

// Close closes all connections and collects the errors
func (d *Data) Close() []error {
	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if len(errs) > 0 {
		logger.Errorf(nil, "errors closing data connections: %v", errs)
	}
	return errs
}
