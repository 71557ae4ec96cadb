package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/model"
	"gorm.io/gorm"
)

// EnsureDatabase creates the application database when it does not exist.
func EnsureDatabase(ctx context.Context, target *config.DatabaseTarget) (bool, error) {
	switch target.Driver {
	case config.DriverMySQL:
		connector, err := mysql.NewConnector(target.MySQLConfig(false))
		if err != nil {
			return false, err
		}
		db := sql.OpenDB(connector)
		defer db.Close()

		var existing string
		err = db.QueryRowContext(ctx,
			"SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?", target.Name).Scan(&existing)
		if err == nil {
			return false, nil
		}
		if err != sql.ErrNoRows {
			return false, err
		}

		stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci",
			quoteMySQLIdentifier(target.Name))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return false, err
		}

	case config.DriverPostgres:
		db, err := sql.Open("postgres", target.ServerDSN())
		if err != nil {
			return false, err
		}
		defer db.Close()

		var exists bool
		if err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", target.Name).Scan(&exists); err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
		if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(target.Name)); err != nil {
			return false, err
		}

	default:
		return false, fmt.Errorf("unsupported driver %q", target.Driver)
	}

	log.Info().Str("database", target.Name).Msg("created database")
	return true, nil
}

func quoteMySQLIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ImportSQL executes a SQL script against the application database. The
// whole script runs as one multi-statement batch.
func ImportSQL(ctx context.Context, target *config.DatabaseTarget, r io.Reader) (int, error) {
	script, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read sql script: %w", err)
	}
	if strings.TrimSpace(string(script)) == "" {
		return 0, nil
	}

	var db *sql.DB
	switch target.Driver {
	case config.DriverMySQL:
		cfg := target.MySQLConfig(true)
		cfg.MultiStatements = true
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return 0, err
		}
		db = sql.OpenDB(connector)
	case config.DriverPostgres:
		// lib/pq runs parameterless scripts through the simple query protocol
		db, err = sql.Open("postgres", target.DSN())
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unsupported driver %q", target.Driver)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, string(script)); err != nil {
		return 0, fmt.Errorf("failed to execute sql script: %w", err)
	}
	return len(script), nil
}

// redactedColumns never leave the database through a snapshot.
var redactedColumns = map[string]bool{
	"password":           true,
	"verification_token": true,
	"reset_token":        true,
	"token":              true,
}

// DatabaseInfo identifies the server a snapshot was taken from.
type DatabaseInfo struct {
	Driver     string    `json:"driver"`
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	ServerTime time.Time `json:"server_time"`
}

// TableDump holds the row count and (up to the row limit) the rows of a table.
type TableDump struct {
	Count int64                    `json:"count"`
	Rows  []map[string]interface{} `json:"rows"`
}

// Snapshot is a JSON friendly dump of the schema tables.
type Snapshot struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Database    DatabaseInfo         `json:"database"`
	Tables      TableStatus          `json:"tables"`
	Data        map[string]TableDump `json:"data"`
}

// TakeSnapshot dumps every schema table. rowLimit caps rows per table; a
// value <= 0 only collects counts.
func TakeSnapshot(ctx context.Context, db *gorm.DB, rowLimit int) (*Snapshot, error) {
	db = db.WithContext(ctx)
	snap := &Snapshot{
		GeneratedAt: time.Now().UTC(),
		Data:        map[string]TableDump{},
	}

	info := DatabaseInfo{Driver: db.Dialector.Name()}
	query := "SELECT DATABASE(), VERSION(), NOW()"
	if info.Driver == config.DriverPostgres {
		query = "SELECT current_database(), version(), now()"
	}
	if err := db.Raw(query).Row().Scan(&info.Name, &info.Version, &info.ServerTime); err != nil {
		return nil, fmt.Errorf("failed to read database info: %w", err)
	}
	snap.Database = info

	snap.Tables = CheckTables(ctx, db)
	missing := map[string]bool{}
	for _, name := range snap.Tables.Missing {
		missing[name] = true
	}

	for _, name := range model.TableNames() {
		if missing[name] {
			continue
		}
		dump := TableDump{Rows: []map[string]interface{}{}}
		if err := db.Table(name).Count(&dump.Count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		if rowLimit > 0 && dump.Count > 0 {
			var rows []map[string]interface{}
			if err := db.Table(name).Order("id").Limit(rowLimit).Find(&rows).Error; err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", name, err)
			}
			for _, row := range rows {
				dump.Rows = append(dump.Rows, cleanRow(row))
			}
		}
		snap.Data[name] = dump
	}

	return snap, nil
}

func cleanRow(row map[string]interface{}) map[string]interface{} {
	for k, v := range row {
		if redactedColumns[k] {
			delete(row, k)
			continue
		}
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}
