package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

func newQueryLoggerForTest(slow time.Duration, logQueries bool) (*bytes.Buffer, gormlogger.Interface) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "db-test", Level: logger.ParseLevel("debug"), Output: buf})
	return buf, newQueryLogger(logg, slow, logQueries)
}

func sqlFn() (string, int64) {
	return "SELECT * FROM quotes", 1
}

func TestQueryLoggerSkipsFastQueriesAndMissingRows(t *testing.T) {
	buf, l := newQueryLoggerForTest(time.Second, false)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sqlFn, nil)
	l.Trace(ctx, time.Now(), sqlFn, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %s", buf.String())
	}
}

func TestQueryLoggerReportsFailuresAndSlowQueries(t *testing.T) {
	buf, l := newQueryLoggerForTest(10*time.Millisecond, false)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sqlFn, errors.New("relation does not exist"))
	if !strings.Contains(buf.String(), "query failed") || !strings.Contains(buf.String(), "SELECT * FROM quotes") {
		t.Fatalf("expected failed query entry, got %s", buf.String())
	}

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), sqlFn, nil)
	if !strings.Contains(buf.String(), "slow query") {
		t.Fatalf("expected slow query entry, got %s", buf.String())
	}

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now().Add(-time.Second), sqlFn, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("silent mode should drop everything, got %s", buf.String())
	}
}

func TestQueryLoggerDebugTrace(t *testing.T) {
	buf, l := newQueryLoggerForTest(0, true)
	l.Trace(context.Background(), time.Now(), sqlFn, nil)
	if !strings.Contains(buf.String(), `"rows":1`) {
		t.Fatalf("expected traced query, got %s", buf.String())
	}
}

func TestNewQueryLoggerWithoutServiceLogger(t *testing.T) {
	if newQueryLogger(nil, time.Second, false) != gormlogger.Discard {
		t.Fatalf("expected discard logger")
	}
}
