package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/services"
)

// ReconnectDatabase retries the connection while the store is degraded.
func (m *CronManager) ReconnectDatabase() {
	if m.store.Ready() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := m.store.Reconnect(ctx); err != nil {
		log.Warn().Err(err).Str("job", JobReconnectDatabase).Msg("database still unavailable")
		return
	}
	log.Info().Str("job", JobReconnectDatabase).Msg("database reconnected")
}

// RefreshAdmissionPeriods recomputes period statuses from their dates.
func (m *CronManager) RefreshAdmissionPeriods(ctx context.Context) (string, error) {
	db, err := m.store.Conn()
	if err != nil {
		return "", err
	}

	changed, err := services.RefreshAdmissionPeriodStatuses(ctx, db, m.now())
	if err != nil {
		return "", fmt.Errorf("failed to refresh admission periods: %w", err)
	}
	return fmt.Sprintf("%d admission periods updated", changed), nil
}

// CleanupTokenBlacklist drops revoked tokens that have expired anyway.
func (m *CronManager) CleanupTokenBlacklist(ctx context.Context) (string, error) {
	deleted, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to cleanup token blacklist: %w", err)
	}
	return fmt.Sprintf("%d expired tokens removed", deleted), nil
}

// ExportDatabase uploads a database snapshot to object storage.
func (m *CronManager) ExportDatabase(ctx context.Context) (string, error) {
	result, err := m.opts.Exporter.Export(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("exported %d tables to %s", result.Tables, result.Key), nil
}
