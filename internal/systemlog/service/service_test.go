package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/config"
	obscontext "github.com/smallbiznis/pistache/internal/observability/context"
	"github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/smallbiznis/pistache/internal/systemlog/repository"
	"github.com/smallbiznis/pistache/pkg/db/dbtest"
	"github.com/smallbiznis/pistache/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	db := dbtest.Open(t, &domain.Entry{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(fixedNow)

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fc,
		Repo:       repository.Provide(),
		Storefront: config.NewStaticStorefrontConfigHolder(config.DefaultStorefrontConfig()),
	}).(*Service)
	return svc, db, fc
}

func seed(t *testing.T, db *gorm.DB, level domain.Level, message string, at time.Time) {
	t.Helper()
	entry := domain.Entry{
		ID:        snowflake.ID(at.UnixNano()),
		Level:     level,
		Message:   message,
		CreatedAt: at,
	}
	require.NoError(t, repository.Provide().Insert(context.Background(), db, &entry))
}

func TestRecordCapturesRequestContext(t *testing.T) {
	svc, db, _ := newTestService(t)

	ctx := obscontext.WithRequestID(context.Background(), "req-9")
	ctx = obscontext.WithClientIP(ctx, "203.0.113.7")
	ctx = obscontext.WithUserAgent(ctx, "pistachectl")

	err := svc.Record(ctx, domain.RecordRequest{
		Level:    domain.LevelSuccess,
		Message:  "size created",
		Context:  "product_sizes",
		Metadata: map[string]any{"size": "42", "email": "maria@example.com"},
	})
	require.NoError(t, err)

	var stored domain.Entry
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, domain.LevelSuccess, stored.Level)
	assert.Equal(t, "203.0.113.7", stored.IP)
	assert.Equal(t, "pistachectl", stored.UserAgent)
	require.NotNil(t, stored.Context)
	assert.Equal(t, "product_sizes", *stored.Context)
	assert.Equal(t, "42", stored.Metadata["size"])
	assert.Equal(t, "m****@example.com", stored.Metadata["email"])
	assert.Equal(t, "req-9", stored.Metadata["request_id"])
	assert.True(t, stored.CreatedAt.Equal(fixedNow))
}

func TestRecordValidatesInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.ErrorIs(t, svc.Record(context.Background(), domain.RecordRequest{Message: "  "}), domain.ErrInvalidMessage)
	assert.ErrorIs(t, svc.Record(context.Background(), domain.RecordRequest{Level: "fatal", Message: "x"}), domain.ErrInvalidLevel)
}

func TestListFiltersByLevelAndKeepsStatsOverWindow(t *testing.T) {
	svc, db, _ := newTestService(t)

	for i := 0; i < 120; i++ {
		level := domain.LevelInfo
		if i%3 == 0 {
			level = domain.LevelError
		}
		seed(t, db, level, fmt.Sprintf("event %d", i), fixedNow.Add(-time.Duration(i)*time.Second))
	}

	resp, err := svc.List(context.Background(), domain.ListRequest{
		Page:  pagination.Page{Page: 1, Limit: 50},
		Level: "error",
		Date:  "today",
	})
	require.NoError(t, err)

	require.Len(t, resp.Logs, 40)
	for _, entry := range resp.Logs {
		assert.Equal(t, domain.LevelError, entry.Level)
	}
	assert.Equal(t, int64(40), resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.Pages)
	assert.Equal(t, domain.Stats{Total: 120, Error: 40, Info: 80}, resp.Stats)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, db, _ := newTestService(t)
	for i := 0; i < 120; i++ {
		seed(t, db, domain.LevelInfo, fmt.Sprintf("event %d", i), fixedNow.Add(-time.Duration(i)*time.Minute))
	}

	resp, err := svc.List(context.Background(), domain.ListRequest{Page: pagination.Page{Page: 3, Limit: 50}})
	require.NoError(t, err)

	assert.Len(t, resp.Logs, 20)
	assert.Equal(t, "event 100", resp.Logs[0].Message)
	assert.Equal(t, pagination.PageInfo{Page: 3, Limit: 50, Total: 120, Pages: 3}, resp.Pagination)
}

func TestListDateWindows(t *testing.T) {
	svc, db, _ := newTestService(t)
	seed(t, db, domain.LevelInfo, "this morning", time.Date(2026, 3, 18, 1, 0, 0, 0, time.UTC))
	seed(t, db, domain.LevelInfo, "yesterday", time.Date(2026, 3, 17, 23, 0, 0, 0, time.UTC))
	seed(t, db, domain.LevelInfo, "last fortnight", fixedNow.AddDate(0, 0, -14))
	seed(t, db, domain.LevelInfo, "last quarter", fixedNow.AddDate(0, 0, -90))

	cases := map[string]int64{"today": 1, "week": 2, "month": 3, "all": 4, "": 4}
	for date, want := range cases {
		resp, err := svc.List(context.Background(), domain.ListRequest{Date: date})
		require.NoError(t, err, date)
		assert.Equal(t, want, resp.Pagination.Total, date)
		assert.Equal(t, want, resp.Stats.Total, date)
	}

	_, err := svc.List(context.Background(), domain.ListRequest{Date: "decade"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	svc, db, _ := newTestService(t)
	seed(t, db, domain.LevelWarning, "Stock baixo para tamanho 42", fixedNow.Add(-time.Minute))
	seed(t, db, domain.LevelInfo, "category added", fixedNow.Add(-2*time.Minute))
	seed(t, db, domain.LevelInfo, "100% off", fixedNow.Add(-3*time.Minute))

	resp, err := svc.List(context.Background(), domain.ListRequest{Search: "STOCK"})
	require.NoError(t, err)
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "Stock baixo para tamanho 42", resp.Logs[0].Message)
	assert.Equal(t, domain.Stats{Total: 1, Warning: 1}, resp.Stats)

	resp, err = svc.List(context.Background(), domain.ListRequest{Search: "%"})
	require.NoError(t, err)
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "100% off", resp.Logs[0].Message)
}

func TestListRejectsUnknownLevel(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.List(context.Background(), domain.ListRequest{Level: "fatal"})
	assert.ErrorIs(t, err, domain.ErrInvalidLevel)

	resp, err := svc.List(context.Background(), domain.ListRequest{Level: "all"})
	require.NoError(t, err)
	assert.Empty(t, resp.Logs)
	assert.NotNil(t, resp.Logs)
}
