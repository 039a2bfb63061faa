package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/pistache/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerTagsQueriesWithRequestIDs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := DefaultGormLoggerConfig()
	cfg.Base = zap.New(core)
	l := NewGormLogger(cfg)

	ctx := obscontext.WithRequestID(context.Background(), "req-7")
	ctx = obscontext.WithCorrelationID(ctx, "cid-7")

	l.Trace(ctx, time.Now(), func() (string, int64) {
		return `UPDATE "product_sizes" SET "stock_quantity"=0 WHERE id = 3`, 0
	}, errors.New("deadlock detected"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "gorm.query", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "cid-7", fields["correlation_id"])
	assert.Equal(t, "UPDATE", fields["operation"])
	assert.Equal(t, "product_sizes", fields["table"])
	assert.Equal(t, "gorm", fields["component"])
}

func TestGormLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := DefaultGormLoggerConfig()
	cfg.Base = zap.New(core)
	l := NewGormLogger(cfg)
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT * FROM categories", 2 }

	l.Trace(ctx, time.Now(), query, nil)
	l.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)
	l.Info(ctx, "ignored at warn")
	assert.Equal(t, 0, logs.Len())

	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)

	l.LogMode(gormlogger.Silent).Error(ctx, "silenced")
	assert.Equal(t, 1, logs.Len())
}

func TestStatementTarget(t *testing.T) {
	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{"SELECT id, name FROM `categories` WHERE slug = ?", "SELECT", "categories"},
		{`INSERT INTO "newsletter_subscriptions" ("email") VALUES ($1)`, "INSERT", "newsletter_subscriptions"},
		{"DELETE FROM public.product_categories WHERE product_id = 1", "DELETE", "product_categories"},
		{"WITH t AS (SELECT 1) SELECT * FROM t", "SELECT", "t"},
		{"PRAGMA foreign_keys = ON", "UNKNOWN", ""},
	}
	for _, tc := range tests {
		op, table := statementTarget(tc.sql)
		assert.Equal(t, tc.operation, op, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}
