package db

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

type zerologWriter struct {
	logger zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

// NewLogger routes GORM's query log through zerolog. Only failed and slow
// queries are logged; record-not-found is an expected outcome of lookups
// and is skipped.
func NewLogger(logger zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(zerologWriter{logger: logger.With().Str("component", "gorm").Logger()}, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
