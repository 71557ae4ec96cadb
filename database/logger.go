package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// newGormLogger routes GORM's SQL logging through zerolog. Production keeps
// only slow queries and errors.
func newGormLogger(production bool) gormlogger.Interface {
	return gormLoggerTo(zerologWriter{}, production)
}

func gormLoggerTo(w gormlogger.Writer, production bool) gormlogger.Interface {
	level := gormlogger.Info
	if production {
		level = gormlogger.Warn
	}
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...any) {
	log.Debug().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
