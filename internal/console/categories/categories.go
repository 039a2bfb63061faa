// Package categories is the console workflow that links a product to categories.
package categories

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/pistache/internal/category/domain"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/console/client"
	"github.com/smallbiznis/pistache/internal/console/debounce"
	"github.com/smallbiznis/pistache/internal/console/messages"
	"github.com/smallbiznis/pistache/internal/console/state"
	"go.uber.org/zap"
)

type API interface {
	ListProductCategories(ctx context.Context, productID int64) ([]domain.Category, error)
	ListAvailableCategories(ctx context.Context, productID int64, search string) ([]domain.AvailableCategory, error)
	AddProductCategory(ctx context.Context, productID, categoryID int64) error
	RemoveProductCategory(ctx context.Context, productID, categoryID int64) error
}

var ErrModalClosed = errors.New("categories_modal_closed")

type Params struct {
	API       API
	ProductID int64
	Clock     clock.Clock
	Messages  messages.Catalog
	Log       *zap.Logger
	// SearchDelay defaults to 500ms.
	SearchDelay time.Duration
}

type Manager struct {
	api       API
	productID int64
	msgs      messages.Catalog
	log       *zap.Logger
	search    *debounce.Debouncer
	notice    *state.Notice

	mu         sync.Mutex
	associated state.State[[]domain.Category]
	banner     string
	saving     bool
	modal      *modal
	fetchSeq   uint64
}

type modal struct {
	search      string
	available   state.State[[]domain.AvailableCategory]
	selected    []int64
	initialized bool
	err         string
	report      *Report
}

func New(p Params) *Manager {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	msgs := p.Messages
	if msgs.ConnectionError == "" {
		msgs = messages.PtBR
	}
	return &Manager{
		api:       p.API,
		productID: p.ProductID,
		msgs:      msgs,
		log:       log.Named("console.categories").With(zap.Int64("product_id", p.ProductID)),
		search:    debounce.New(clk, p.SearchDelay),
		notice:    state.NewNotice(clk, state.NoticeTTL),
	}
}

// describe reports transport failures with the generic unreachable message.
func (m *Manager) describe(err error, fallback string) string {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return m.msgs.ServerUnreachable
	}
	return m.msgs.Describe(err, fallback)
}

type View struct {
	Associated state.State[[]domain.Category]
	Banner     string
	Notice     string
	Saving     bool
	Modal      *ModalView
}

type ModalView struct {
	Search    string
	Available state.State[[]domain.AvailableCategory]
	Selected  []int64
	Error     string
	// Report describes the last failed save, if any.
	Report *Report
}

// Visible narrows the fetched categories to the search term, matched against
// name or slug like the server does.
func (v ModalView) Visible() []domain.AvailableCategory {
	term := strings.ToLower(strings.TrimSpace(v.Search))
	out := make([]domain.AvailableCategory, 0, len(v.Available.Data))
	for _, c := range v.Available.Data {
		if term == "" ||
			strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Slug), term) {
			out = append(out, c)
		}
	}
	return out
}

func (v ModalView) IsSelected(id int64) bool {
	for _, s := range v.Selected {
		if s == id {
			return true
		}
	}
	return false
}

func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := View{
		Associated: m.associated,
		Banner:     m.banner,
		Notice:     m.notice.Text(),
		Saving:     m.saving,
	}
	if md := m.modal; md != nil {
		v.Modal = &ModalView{
			Search:    md.search,
			Available: md.available,
			Selected:  append([]int64(nil), md.selected...),
			Error:     md.err,
			Report:    md.report,
		}
	}
	return v
}

// LoadAssociated fetches the product's current categories.
func (m *Manager) LoadAssociated(ctx context.Context) error {
	m.mu.Lock()
	if m.associated.IsLoading() {
		m.mu.Unlock()
		return state.ErrBusy
	}
	m.associated = m.associated.Loading()
	m.mu.Unlock()

	list, err := m.api.ListProductCategories(ctx, m.productID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		msg := m.describe(err, m.msgs.LoadCategoriesFailed)
		m.associated = m.associated.Fail(msg)
		m.banner = msg
		m.log.Warn("failed to load product categories", zap.Error(err))
		return err
	}
	if list == nil {
		list = []domain.Category{}
	}
	m.associated = m.associated.Succeed(list)
	return nil
}

func (m *Manager) isAssociated(id int64) bool {
	for _, c := range m.associated.Data {
		if c.ID == id {
			return true
		}
	}
	return false
}

// AddCategory links one category outside the modal. It is a no-op when the
// category is already linked.
func (m *Manager) AddCategory(ctx context.Context, categoryID int64) error {
	m.mu.Lock()
	if m.isAssociated(categoryID) {
		m.mu.Unlock()
		return nil
	}
	if m.saving {
		m.mu.Unlock()
		return state.ErrBusy
	}
	m.saving = true
	m.banner = ""
	m.mu.Unlock()
	defer m.doneSaving()

	if err := m.api.AddProductCategory(ctx, m.productID, categoryID); err != nil {
		m.setBanner(m.describe(err, m.msgs.AddCategoryFailed))
		m.log.Warn("failed to add category", zap.Int64("category_id", categoryID), zap.Error(err))
		return err
	}
	_ = m.reloadAssociated(ctx)
	return nil
}

func (m *Manager) RemoveCategory(ctx context.Context, categoryID int64) error {
	m.mu.Lock()
	if m.saving {
		m.mu.Unlock()
		return state.ErrBusy
	}
	m.saving = true
	m.banner = ""
	m.mu.Unlock()
	defer m.doneSaving()

	if err := m.api.RemoveProductCategory(ctx, m.productID, categoryID); err != nil {
		m.setBanner(m.describe(err, m.msgs.RemoveCategoryFailed))
		m.log.Warn("failed to remove category", zap.Int64("category_id", categoryID), zap.Error(err))
		return err
	}
	_ = m.reloadAssociated(ctx)
	return nil
}

// reloadAssociated is LoadAssociated without the overlap guard, used after writes.
func (m *Manager) reloadAssociated(ctx context.Context) error {
	list, err := m.api.ListProductCategories(ctx, m.productID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		msg := m.describe(err, m.msgs.LoadCategoriesFailed)
		m.associated = m.associated.Fail(msg)
		m.banner = msg
		return err
	}
	if list == nil {
		list = []domain.Category{}
	}
	m.associated = m.associated.Succeed(list)
	return nil
}

func (m *Manager) setBanner(msg string) {
	m.mu.Lock()
	m.banner = msg
	m.mu.Unlock()
}

func (m *Manager) doneSaving() {
	m.mu.Lock()
	m.saving = false
	m.mu.Unlock()
}
