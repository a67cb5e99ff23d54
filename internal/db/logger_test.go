package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func TestLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	sql := func() (string, int64) { return `SELECT * FROM "sesstion" WHERE id = 7`, 0 }
	logger.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	logger.Trace(context.Background(), time.Now(), sql, nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}

	logger.Trace(context.Background(), time.Now(), sql, errors.New("connection refused"))
	out := buf.String()
	if !strings.Contains(out, "connection refused") || !strings.Contains(out, `"component":"gorm"`) {
		t.Errorf("failed query not logged through zerolog: %q", out)
	}
}

func TestLoggerReportsSlowQueries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	begin := time.Now().Add(-2 * slowQueryThreshold)
	logger.Trace(context.Background(), begin, func() (string, int64) { return "SELECT 1", 1 }, nil)
	if !strings.Contains(buf.String(), "SLOW SQL") {
		t.Errorf("slow query not logged: %q", buf.String())
	}
}
