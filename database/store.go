package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/config"
	"gorm.io/gorm"
)

// ErrNotReady is returned while the store has no live connection pool.
var ErrNotReady = errors.New("database not ready")

// Storage defines what handlers and jobs need from the database layer
type Storage interface {
	Conn() (*gorm.DB, error)
	Ready() bool
	HealthCheck(ctx context.Context) error
	PoolStats() map[string]interface{}
	Close() error
}

// Options controls how a Store connects and bootstraps.
type Options struct {
	Pool       PoolConfig
	Retries    int
	RetryDelay time.Duration
	// Production keeps the process alive without a database.
	Production bool
	// Seeds is nil when bootstrap should only create tables.
	Seeds *SeedConfig
}

// Store owns the connection pool. It is built once at process start and
// passed to everything that talks to the database.
type Store struct {
	target *config.DatabaseTarget
	opts   Options

	mu      sync.RWMutex
	db      *gorm.DB
	lastErr error
	report  *BootstrapReport
}

// NewStore returns a Store that has not connected yet.
func NewStore(target *config.DatabaseTarget, opts Options) *Store {
	return &Store{target: target, opts: opts}
}

// NewStoreFromConfig resolves the connection target and store options
// from the environment.
func NewStoreFromConfig(cfg *config.EnvironmentVariable, withSeeds bool) (*Store, error) {
	target, err := config.ResolveDatabase(cfg)
	if err != nil {
		return nil, err
	}

	opts := OptionsFromConfig(cfg)
	if !withSeeds {
		opts.Seeds = nil
	}
	return NewStore(target, opts), nil
}

// OptionsFromConfig maps environment variables onto store options.
func OptionsFromConfig(cfg *config.EnvironmentVariable) Options {
	return Options{
		Pool: PoolConfig{
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		},
		Retries:    cfg.DB_CONNECT_RETRIES,
		RetryDelay: cfg.DB_CONNECT_RETRY_DELAY,
		Production: cfg.IsProduction(),
		Seeds:      SeedConfigFromEnv(cfg),
	}
}

// NewStoreWithDB wraps an already open connection.
func NewStoreWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Start connects with retries and bootstraps the schema. In production a
// failure is logged and Start returns nil, leaving the store degraded until
// Reconnect succeeds. Elsewhere the failure is returned.
func (s *Store) Start(ctx context.Context) error {
	attempts := s.opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	var err error
retry:
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = s.connect(ctx); err == nil {
			return nil
		}

		log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Str("target", s.target.Redacted()).
			Msg("database connection attempt failed")

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break retry
		case <-time.After(s.opts.RetryDelay):
		}
	}

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if s.opts.Production {
		log.Error().Err(err).Msg("database unavailable, serving in degraded mode")
		return nil
	}
	return fmt.Errorf("failed to connect to database %s: %w", s.target.Redacted(), err)
}

// Reconnect makes a single connection attempt when the store is degraded.
func (s *Store) Reconnect(ctx context.Context) error {
	if s.Ready() {
		return nil
	}
	if err := s.connect(ctx); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	log.Info().Msg("database connection restored")
	return nil
}

func (s *Store) connect(ctx context.Context) error {
	if s.target == nil {
		return fmt.Errorf("%w: no connection target", ErrNotReady)
	}

	db, err := Open(ctx, s.target, s.opts.Pool, s.opts.Production)
	if err != nil {
		return err
	}

	report, err := Bootstrap(ctx, db, s.opts.Seeds)
	if err != nil {
		closePool(db)
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	if !s.adopt(db, report) {
		closePool(db)
	}
	return nil
}

// adopt installs db as the shared pool unless another connect already
// installed one. The caller closes db when adopt returns false.
func (s *Store) adopt(db *gorm.DB, report *BootstrapReport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return false
	}
	s.db = db
	s.lastErr = nil
	s.report = report
	return true
}

func closePool(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// Conn returns the pool or ErrNotReady.
func (s *Store) Conn() (*gorm.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotReady
	}
	return s.db, nil
}

// DB returns the pool, nil while degraded.
func (s *Store) DB() *gorm.DB {
	db, _ := s.Conn()
	return db
}

func (s *Store) Ready() bool {
	return s.DB() != nil
}

// LastError is the most recent connection failure, if any.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Report returns the result of the last successful bootstrap.
func (s *Store) Report() *BootstrapReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

func (s *Store) Target() *config.DatabaseTarget {
	return s.target
}

// HealthCheck verifies the database connection is alive
func (s *Store) HealthCheck(ctx context.Context) error {
	db, err := s.Conn()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// PoolStats exposes database/sql pool statistics.
func (s *Store) PoolStats() map[string]interface{} {
	db, err := s.Conn()
	if err != nil {
		return map[string]interface{}{"status": "unavailable"}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return map[string]interface{}{"status": "unavailable"}
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	log.Info().Msg("closing database connection pool")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}
