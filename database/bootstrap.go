package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/model"
	"gorm.io/gorm"
)

// BootstrapReport describes what a bootstrap run changed.
type BootstrapReport struct {
	Created  []string `json:"created"`
	Existing []string `json:"existing"`
	Seeded   []string `json:"seeded"`
}

// Bootstrap creates every missing table and then runs the seeds. Existing
// tables are never altered, so running it twice is a no-op.
func Bootstrap(ctx context.Context, db *gorm.DB, seeds *SeedConfig) (*BootstrapReport, error) {
	report := &BootstrapReport{}
	tx := db.WithContext(ctx)
	migrator := tx.Migrator()

	names := model.TableNames()
	for i, m := range model.Models() {
		if migrator.HasTable(m) {
			report.Existing = append(report.Existing, names[i])
			continue
		}
		if err := migrator.CreateTable(m); err != nil {
			return report, fmt.Errorf("failed to create table %s: %w", names[i], err)
		}
		report.Created = append(report.Created, names[i])
		log.Info().Str("table", names[i]).Msg("created table")
	}

	if seeds != nil {
		seeded, err := NewSeeder(tx, *seeds).SeedAll()
		report.Seeded = seeded
		if err != nil {
			return report, err
		}
	}

	log.Info().
		Int("created", len(report.Created)).
		Int("existing", len(report.Existing)).
		Strs("seeded", report.Seeded).
		Msg("database bootstrap completed")

	return report, nil
}

// TableStatus compares the tables present in the database with the schema.
type TableStatus struct {
	Expected int      `json:"expected"`
	Present  int      `json:"present"`
	Missing  []string `json:"missing,omitempty"`
}

func (t TableStatus) Complete() bool {
	return t.Present == t.Expected
}

// CheckTables reports which schema tables exist.
func CheckTables(ctx context.Context, db *gorm.DB) TableStatus {
	migrator := db.WithContext(ctx).Migrator()
	names := model.TableNames()

	status := TableStatus{Expected: len(names)}
	for _, name := range names {
		if migrator.HasTable(name) {
			status.Present++
		} else {
			status.Missing = append(status.Missing, name)
		}
	}
	return status
}
