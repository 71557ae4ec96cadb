package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/sahilchouksey/career-guidance-api/utils/auth"
)

const (
	JobReconnectDatabase       = "reconnect_database"
	JobRefreshAdmissionPeriods = "refresh_admission_periods"
	JobCleanupTokenBlacklist   = "cleanup_token_blacklist"
	JobExportDatabase          = "export_database"
)

// Store is the database handle the jobs run against
type Store interface {
	database.Storage
	Reconnect(ctx context.Context) error
}

// Options configures the optional jobs
type Options struct {
	// ExportSchedule is a six field cron expression. Empty disables exports.
	ExportSchedule string
	Exporter       *services.ExportService
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	store     Store
	blacklist *auth.BlacklistService
	opts      Options
	now       func() time.Time
}

// NewCronManager creates a new cron manager
func NewCronManager(store Store, opts Options) *CronManager {
	c := cron.New(cron.WithSeconds(), cron.WithChain(jobChain()...))

	return &CronManager{
		cron:      c,
		store:     store,
		blacklist: auth.NewBlacklistService(store),
		opts:      opts,
		now:       time.Now,
	}
}

// jobChain keeps a slow run from overlapping the next tick of the same job
// and turns a panicking job into a log line.
func jobChain() []cron.JobWrapper {
	logger := cronLogger{}
	return []cron.JobWrapper{cron.Recover(logger), cron.SkipIfStillRunning(logger)}
}

// cronLogger adapts robfig/cron's logger to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error().Err(err).Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Info().Msg("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Info().Int("jobs", len(m.cron.Entries())).Msg("cron jobs started")
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	log.Info().Msg("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every 30 seconds, only does work while degraded
	if _, err := m.cron.AddFunc("*/30 * * * * *", m.ReconnectDatabase); err != nil {
		return err
	}

	// Hourly
	if _, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.run(JobRefreshAdmissionPeriods, 5*time.Minute, m.RefreshAdmissionPeriods)
	}); err != nil {
		return err
	}

	// Daily at 3 AM
	if _, err := m.cron.AddFunc("0 0 3 * * *", func() {
		m.run(JobCleanupTokenBlacklist, 5*time.Minute, m.CleanupTokenBlacklist)
	}); err != nil {
		return err
	}

	if m.opts.ExportSchedule != "" && m.opts.Exporter != nil {
		if _, err := m.cron.AddFunc(m.opts.ExportSchedule, func() {
			m.run(JobExportDatabase, 15*time.Minute, m.ExportDatabase)
		}); err != nil {
			return err
		}
	} else if m.opts.ExportSchedule != "" {
		log.Warn().Msg("EXPORT_CRON set but object storage is not configured, export job skipped")
	}

	return nil
}

// run executes a job with a timeout and records it in cron_job_logs.
// Nothing is recorded while the database is down.
func (m *CronManager) run(jobName string, timeout time.Duration, job func(ctx context.Context) (string, error)) {
	if !m.store.Ready() {
		log.Debug().Str("job", jobName).Msg("database not ready, skipping job")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	entry := m.logJobStart(ctx, jobName)

	message, err := job(ctx)
	if err != nil {
		m.logJobError(ctx, entry, err)
		return
	}
	m.logJobComplete(ctx, entry, message)
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(ctx context.Context, jobName string) *model.CronJobLog {
	log.Info().Str("job", jobName).Msg("cron job started")

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronStatusStarted,
		StartedAt: m.now(),
		Metadata:  []byte("{}"),
	}

	db, err := m.store.Conn()
	if err != nil {
		return entry
	}
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Warn().Err(err).Str("job", jobName).Msg("failed to record cron job start")
	}
	return entry
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(ctx context.Context, entry *model.CronJobLog, message string) {
	log.Info().Str("job", entry.JobName).Str("result", message).Msg("cron job completed")
	m.finish(ctx, entry, map[string]interface{}{
		"status":  model.CronStatusCompleted,
		"message": message,
	})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(ctx context.Context, entry *model.CronJobLog, err error) {
	log.Error().Err(err).Str("job", entry.JobName).Msg("cron job failed")
	m.finish(ctx, entry, map[string]interface{}{
		"status":    model.CronStatusFailed,
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finish(ctx context.Context, entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == 0 {
		return
	}
	db, err := m.store.Conn()
	if err != nil {
		return
	}

	completedAt := m.now()
	updates["completed_at"] = completedAt
	updates["duration"] = completedAt.Sub(entry.StartedAt).Milliseconds()

	if err := db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
		log.Warn().Err(err).Str("job", entry.JobName).Msg("failed to record cron job result")
	}
}
