package logviewer_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pistache/internal/console/client"
	"github.com/smallbiznis/pistache/internal/console/logviewer"
	"github.com/smallbiznis/pistache/internal/console/state"
	"github.com/smallbiznis/pistache/internal/server/servertest"
	"github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLogs(t *testing.T, env *servertest.Env, n int) {
	t.Helper()
	entries := make([]domain.Entry, 0, n)
	for i := 0; i < n; i++ {
		level := domain.Levels[i%len(domain.Levels)]
		entries = append(entries, domain.Entry{
			ID:        snowflake.ID(i + 1),
			Level:     level,
			Message:   fmt.Sprintf("evento %d", i),
			CreatedAt: servertest.Now.Add(-time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, env.DB.CreateInBatches(entries, 50).Error)
}

func TestLevelChangeResetsToFirstPage(t *testing.T) {
	env := servertest.New(t)
	seedLogs(t, env, 160)

	api, err := client.New(env.Server.URL)
	require.NoError(t, err)
	v := logviewer.New(logviewer.Params{API: api})
	ctx := context.Background()

	require.NoError(t, v.Load(ctx))
	view := v.View()
	assert.Equal(t, logviewer.DefaultFilter(), view.Filter)
	assert.Len(t, view.Result.Data.Logs, logviewer.PageSize)
	assert.Equal(t, int64(160), view.Result.Data.Stats.Total)
	assert.Equal(t, int64(32), view.Result.Data.Stats.Error)

	require.NoError(t, v.SetPage(ctx, 3))
	assert.Equal(t, 3, v.View().Filter.Page)
	assert.Len(t, v.View().Result.Data.Logs, 50)

	require.NoError(t, v.SetLevel(ctx, "error"))
	view = v.View()
	assert.Equal(t, 1, view.Filter.Page)
	require.Equal(t, state.Success, view.Result.Phase)
	require.Len(t, view.Result.Data.Logs, 32)
	for _, entry := range view.Result.Data.Logs {
		assert.Equal(t, domain.LevelError, entry.Level)
	}
	assert.Equal(t, int64(32), view.Result.Data.Pagination.Total)
	assert.Equal(t, int64(160), view.Result.Data.Stats.Total)
}

func TestFiltersAndRefresh(t *testing.T) {
	env := servertest.New(t)
	seedLogs(t, env, 12)

	api, err := client.New(env.Server.URL)
	require.NoError(t, err)
	v := logviewer.New(logviewer.Params{API: api})
	ctx := context.Background()

	require.NoError(t, v.SetSearch(ctx, "evento 1"))
	assert.Len(t, v.View().Result.Data.Logs, 3)

	require.NoError(t, v.SetDate(ctx, "all"))
	assert.Equal(t, "evento 1", v.View().Filter.Search)

	require.NoError(t, v.SetPage(ctx, 2))
	require.NoError(t, v.Refresh(ctx))
	assert.Equal(t, 1, v.View().Filter.Page)
	assert.Len(t, v.View().Result.Data.Logs, 3)

	assert.ErrorIs(t, v.SetLevel(ctx, "fatal"), domain.ErrInvalidLevel)
	assert.ErrorIs(t, v.SetDate(ctx, "year"), domain.ErrInvalidDateRange)
}

type gatedAPI struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	entered chan string
}

func (g *gatedAPI) ListLogs(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	g.mu.Lock()
	gate := g.gates[req.Level]
	g.mu.Unlock()
	if gate != nil {
		g.entered <- req.Level
		<-gate
	}
	return &domain.ListResponse{Logs: []domain.Entry{{Level: domain.Level(req.Level), Message: req.Level}}}, nil
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	api := &gatedAPI{
		gates:   map[string]chan struct{}{"warning": make(chan struct{})},
		entered: make(chan string, 1),
	}
	v := logviewer.New(logviewer.Params{API: api})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- v.SetLevel(ctx, "warning") }()
	select {
	case <-api.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first fetch never started")
	}

	require.NoError(t, v.SetLevel(ctx, "error"))
	close(api.gates["warning"])
	require.NoError(t, <-done)

	view := v.View()
	assert.Equal(t, "error", view.Filter.Level)
	require.Len(t, view.Result.Data.Logs, 1)
	assert.Equal(t, domain.LevelError, view.Result.Data.Logs[0].Level)
}

func TestLoadFailureMessage(t *testing.T) {
	env := servertest.New(t)
	url := env.Server.URL
	env.Server.Close()

	api, err := client.New(url)
	require.NoError(t, err)
	v := logviewer.New(logviewer.Params{API: api})

	require.Error(t, v.Load(context.Background()))
	assert.Equal(t, state.Error, v.View().Result.Phase)
	assert.Contains(t, v.View().Result.Message, "Erro de conexão: ")
}

func TestApplyFetchesOnce(t *testing.T) {
	env := servertest.New(t)
	seedLogs(t, env, 60)

	api, err := client.New(env.Server.URL)
	require.NoError(t, err)
	v := logviewer.New(logviewer.Params{API: api})

	filter := logviewer.Filter{Page: 0, Level: "warning", Date: "week", Search: "evento"}
	require.NoError(t, v.Apply(context.Background(), filter))

	view := v.View()
	assert.Equal(t, 1, view.Filter.Page)
	assert.Len(t, view.Result.Data.Logs, 12)
	assert.ErrorIs(t, v.Apply(context.Background(), logviewer.Filter{Level: "all", Date: "year"}), domain.ErrInvalidDateRange)
}
