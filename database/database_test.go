package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCleanRowDropsSecrets(t *testing.T) {
	row := cleanRow(map[string]interface{}{
		"id":                 uint64(7),
		"email":              []byte("ann@example.com"),
		"password":           "$2a$10$hash",
		"verification_token": "abc",
		"reset_token":        nil,
	})

	assert.Equal(t, map[string]interface{}{
		"id":    uint64(7),
		"email": "ann@example.com",
	}, row)
}

func TestQuoteMySQLIdentifier(t *testing.T) {
	assert.Equal(t, "`career`", quoteMySQLIdentifier("career"))
	assert.Equal(t, "`a``b`", quoteMySQLIdentifier("a`b"))
}

func TestStoreWithoutTarget(t *testing.T) {
	store := NewStore(nil, Options{})

	assert.False(t, store.Ready())
	_, err := store.Conn()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, store.HealthCheck(context.Background()), ErrNotReady)
	assert.Equal(t, "unavailable", store.PoolStats()["status"])
	assert.NoError(t, store.Close())

	err = store.Reconnect(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, store.LastError(), ErrNotReady)
}

func TestStartDegradesOnlyInProduction(t *testing.T) {
	target := &config.DatabaseTarget{Driver: "sqlserver", Name: "career"}

	store := NewStore(target, Options{Retries: 1, Production: true})
	require.NoError(t, store.Start(context.Background()))
	assert.False(t, store.Ready())
	assert.Error(t, store.LastError())

	store = NewStore(target, Options{Retries: 1})
	assert.Error(t, store.Start(context.Background()))
	assert.False(t, store.Ready())
}

type recordingWriter struct{ lines []string }

func (w *recordingWriter) Printf(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func TestGormLoggerLevels(t *testing.T) {
	ctx := context.Background()

	dev := &recordingWriter{}
	l := gormLoggerTo(dev, false)
	l.Info(ctx, "opened pool")
	l.Warn(ctx, "slow query")
	assert.Len(t, dev.lines, 2)

	prod := &recordingWriter{}
	l = gormLoggerTo(prod, true)
	l.Info(ctx, "opened pool")
	l.Warn(ctx, "slow query")
	require.Len(t, prod.lines, 1)
	assert.Contains(t, prod.lines[0], "slow query")
}

func TestAdoptKeepsExistingPool(t *testing.T) {
	s := NewStore(nil, Options{})
	first := &gorm.DB{Config: &gorm.Config{}}
	second := &gorm.DB{Config: &gorm.Config{}}

	require.True(t, s.adopt(first, &BootstrapReport{}))
	assert.True(t, s.Ready())

	assert.False(t, s.adopt(second, &BootstrapReport{}), "a concurrent reconnect must not replace the pool")
	got, err := s.Conn()
	require.NoError(t, err)
	assert.Same(t, first, got)
}
