// Package logviewer is the read-only console view over the admin log.
package logviewer

import (
	"context"
	"sync"

	"github.com/smallbiznis/pistache/internal/console/messages"
	"github.com/smallbiznis/pistache/internal/console/state"
	"github.com/smallbiznis/pistache/internal/systemlog/domain"
	"github.com/smallbiznis/pistache/pkg/db/pagination"
	"go.uber.org/zap"
)

const (
	PageSize  = 50
	AllLevels = "all"
)

type API interface {
	ListLogs(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error)
}

type Filter struct {
	Page   int
	Level  string
	Date   string
	Search string
}

// DefaultFilter shows every level logged today.
func DefaultFilter() Filter {
	return Filter{Page: 1, Level: AllLevels, Date: string(domain.DateRangeToday)}
}

func (f Filter) request() domain.ListRequest {
	return domain.ListRequest{
		Page:   pagination.Page{Page: f.Page, Limit: PageSize},
		Level:  f.Level,
		Date:   f.Date,
		Search: f.Search,
	}
}

type Params struct {
	API      API
	Messages messages.Catalog
	Log      *zap.Logger
}

type Viewer struct {
	api  API
	msgs messages.Catalog
	log  *zap.Logger

	mu     sync.Mutex
	filter Filter
	result state.State[*domain.ListResponse]
	seq    uint64
}

func New(p Params) *Viewer {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	msgs := p.Messages
	if msgs.ConnectionError == "" {
		msgs = messages.PtBR
	}
	return &Viewer{
		api:    p.API,
		msgs:   msgs,
		log:    log.Named("console.logviewer"),
		filter: DefaultFilter(),
	}
}

type View struct {
	Filter Filter
	Result state.State[*domain.ListResponse]
}

func (v *Viewer) View() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return View{Filter: v.filter, Result: v.result}
}

// Load fetches the page for the current filter.
func (v *Viewer) Load(ctx context.Context) error {
	return v.update(ctx, func(*Filter) {})
}

// SetLevel filters by one level, or every level with "all". Page resets to 1.
func (v *Viewer) SetLevel(ctx context.Context, level string) error {
	if err := validLevel(level); err != nil {
		return err
	}
	return v.update(ctx, func(f *Filter) {
		f.Level = level
		f.Page = 1
	})
}

func (v *Viewer) SetDate(ctx context.Context, date string) error {
	if err := validDate(date); err != nil {
		return err
	}
	return v.update(ctx, func(f *Filter) {
		f.Date = date
		f.Page = 1
	})
}

func (v *Viewer) SetSearch(ctx context.Context, term string) error {
	return v.update(ctx, func(f *Filter) {
		f.Search = term
		f.Page = 1
	})
}

func (v *Viewer) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	return v.update(ctx, func(f *Filter) { f.Page = page })
}

// Apply replaces the whole filter with a single fetch.
func (v *Viewer) Apply(ctx context.Context, f Filter) error {
	if err := validLevel(f.Level); err != nil {
		return err
	}
	if err := validDate(f.Date); err != nil {
		return err
	}
	if f.Page < 1 {
		f.Page = 1
	}
	return v.update(ctx, func(cur *Filter) { *cur = f })
}

func validLevel(level string) error {
	if level != AllLevels && !domain.Level(level).Valid() {
		return domain.ErrInvalidLevel
	}
	return nil
}

func validDate(date string) error {
	switch domain.DateRange(date) {
	case domain.DateRangeAll, domain.DateRangeToday, domain.DateRangeWeek, domain.DateRangeMonth:
		return nil
	}
	return domain.ErrInvalidDateRange
}

// Refresh re-issues the current query from page 1.
func (v *Viewer) Refresh(ctx context.Context) error {
	return v.update(ctx, func(f *Filter) { f.Page = 1 })
}

// update applies fn to the filter and fetches. Each fetch takes a sequence
// number; a reply that is no longer the latest is dropped.
func (v *Viewer) update(ctx context.Context, fn func(*Filter)) error {
	v.mu.Lock()
	fn(&v.filter)
	v.seq++
	seq := v.seq
	req := v.filter.request()
	v.result = v.result.Loading()
	v.mu.Unlock()

	resp, err := v.api.ListLogs(ctx, req)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		v.log.Debug("dropped stale log page", zap.Uint64("seq", seq), zap.Uint64("latest", v.seq))
		return nil
	}
	if err != nil {
		v.result = v.result.Fail(v.msgs.Describe(err, v.msgs.LoadLogsFailed))
		v.log.Warn("failed to load logs", zap.Error(err))
		return err
	}
	v.result = v.result.Succeed(resp)
	return nil
}
