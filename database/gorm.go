package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig bounds the connection pool shared by every request.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects GORM to target, sizes the pool and pings the server.
func Open(ctx context.Context, target *config.DatabaseTarget, pool PoolConfig, production bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch target.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(target.DSN())
	case config.DriverMySQL:
		dialector = mysql.Open(target.DSN())
	default:
		return nil, fmt.Errorf("unsupported driver %q", target.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(production),
		TranslateError: true, // duplicate key / FK violations become gorm sentinel errors
		PrepareStmt:    true,
	})
	if err != nil {
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Info().
		Str("driver", target.Driver).
		Str("target", target.Redacted()).
		Int("max_open_conns", pool.MaxOpenConns).
		Msg("connected to database")

	return db, nil
}
