package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStore struct {
	ready      bool
	reconnects int
	reconnect  error
}

func (s *fakeStore) Conn() (*gorm.DB, error) {
	return nil, database.ErrNotReady
}

func (s *fakeStore) Ready() bool                           { return s.ready }
func (s *fakeStore) HealthCheck(ctx context.Context) error { return nil }
func (s *fakeStore) PoolStats() map[string]interface{}     { return nil }
func (s *fakeStore) Close() error                          { return nil }

func (s *fakeStore) Reconnect(ctx context.Context) error {
	s.reconnects++
	if s.reconnect == nil {
		s.ready = true
	}
	return s.reconnect
}

type fakeObjects struct{}

func (fakeObjects) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}
func (fakeObjects) DeleteFile(ctx context.Context, key string) error { return nil }
func (fakeObjects) PresignedURL(key string, expiration time.Duration) (string, error) {
	return "https://example.test/" + key, nil
}

func TestReconnectOnlyWhileDegraded(t *testing.T) {
	store := &fakeStore{ready: true}
	m := NewCronManager(store, Options{})

	m.ReconnectDatabase()
	assert.Equal(t, 0, store.reconnects)

	store.ready = false
	store.reconnect = errors.New("dial tcp: connection refused")
	m.ReconnectDatabase()
	assert.Equal(t, 1, store.reconnects)
	assert.False(t, store.Ready())

	store.reconnect = nil
	m.ReconnectDatabase()
	assert.Equal(t, 2, store.reconnects)
	assert.True(t, store.Ready())
}

func TestRunSkipsJobsWhileDegraded(t *testing.T) {
	m := NewCronManager(&fakeStore{}, Options{})

	called := false
	m.run("noop", time.Second, func(ctx context.Context) (string, error) {
		called = true
		return "", nil
	})
	assert.False(t, called)
}

func TestRunWithoutLogTable(t *testing.T) {
	// Ready but Conn fails: the job still runs and nothing is recorded
	m := NewCronManager(&fakeStore{ready: true}, Options{})

	var gotDeadline bool
	m.run("noop", time.Minute, func(ctx context.Context) (string, error) {
		_, gotDeadline = ctx.Deadline()
		return "done", nil
	})
	assert.True(t, gotDeadline)
}

func TestRegisterJobs(t *testing.T) {
	store := &fakeStore{}

	m := NewCronManager(store, Options{})
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 3)

	m = NewCronManager(store, Options{ExportSchedule: "0 0 2 * * *"})
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 3, "export needs object storage")

	exporter := services.NewExportService(store, fakeObjects{})
	m = NewCronManager(store, Options{ExportSchedule: "0 0 2 * * *", Exporter: exporter})
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 4)

	m = NewCronManager(store, Options{ExportSchedule: "not a schedule", Exporter: exporter})
	assert.Error(t, m.registerJobs())
}

func TestJobsReportUnavailableDatabase(t *testing.T) {
	store := &fakeStore{ready: true}
	m := NewCronManager(store, Options{Exporter: services.NewExportService(store, fakeObjects{})})

	_, err := m.RefreshAdmissionPeriods(context.Background())
	assert.ErrorIs(t, err, database.ErrNotReady)

	_, err = m.ExportDatabase(context.Background())
	assert.ErrorIs(t, err, database.ErrNotReady)
}

func TestJobChainSkipsOverlappingRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32

	job := cronlib.NewChain(jobChain()...).Then(cronlib.FuncJob(func() {
		runs.Add(1)
		close(started)
		<-release
	}))

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// a second tick while the first run is still reconnecting returns at once
	job.Run()
	assert.EqualValues(t, 1, runs.Load())

	close(release)
	<-done
}

func TestJobChainRecoversPanics(t *testing.T) {
	job := cronlib.NewChain(jobChain()...).Then(cronlib.FuncJob(func() {
		panic("boom")
	}))
	assert.NotPanics(t, job.Run)
}
