// Package sizes is the console workflow for one product's size and stock list.
package sizes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/console/messages"
	"github.com/smallbiznis/pistache/internal/console/state"
	"github.com/smallbiznis/pistache/internal/productsize/domain"
	"go.uber.org/zap"
)

const defaultMaxLabelLength = 10

// API is the part of the admin client the size workflow calls.
type API interface {
	ListSizes(ctx context.Context, productID int64) ([]domain.ProductSize, error)
	CreateSize(ctx context.Context, productID int64, req domain.CreateRequest) error
	UpdateSize(ctx context.Context, productID int64, req domain.UpdateRequest) error
	DeleteSize(ctx context.Context, productID int64, label string) error
}

var (
	ErrUnknownSize = errors.New("unknown_size")
	ErrNoEdit      = errors.New("no_edit_in_progress")
)

// ValidationError blocks a write before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Params struct {
	API            API
	ProductID      int64
	Clock          clock.Clock
	Messages       messages.Catalog
	Log            *zap.Logger
	MaxLabelLength int
}

type Manager struct {
	api       API
	productID int64
	msgs      messages.Catalog
	log       *zap.Logger
	maxLabel  int
	validate  *validator.Validate
	notice    *state.Notice

	mu            sync.Mutex
	list          state.State[[]domain.ProductSize]
	banner        string
	saving        bool
	edit          *EditForm
	pendingDelete *string
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
	maxLabel := p.MaxLabelLength
	if maxLabel <= 0 {
		maxLabel = defaultMaxLabelLength
	}
	return &Manager{
		api:       p.API,
		productID: p.ProductID,
		msgs:      msgs,
		log:       log.Named("console.sizes").With(zap.Int64("product_id", p.ProductID)),
		maxLabel:  maxLabel,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		notice:    state.NewNotice(clk, state.NoticeTTL),
	}
}

// View is a snapshot of everything the size screen renders.
type View struct {
	Sizes  state.State[[]domain.ProductSize]
	Totals domain.Totals
	Banner string
	Notice string
	Saving bool
	Edit   *EditForm
	// DeletePrompt is set while a delete confirmation is open.
	DeletePrompt  string
	PendingDelete string
}

func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Sizes:  m.list,
		Totals: domain.ComputeTotals(m.list.Data),
		Banner: m.banner,
		Notice: m.notice.Text(),
		Saving: m.saving,
	}
	if m.edit != nil {
		form := *m.edit
		v.Edit = &form
	}
	if m.pendingDelete != nil {
		v.PendingDelete = *m.pendingDelete
		v.DeletePrompt = m.msgs.DeleteConfirmation(*m.pendingDelete)
	}
	return v
}

// Totals are recomputed from the last fetched list.
func (m *Manager) Totals() domain.Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.ComputeTotals(m.list.Data)
}

// Load fetches the full list. Failures land in the banner.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.list.IsLoading() {
		m.mu.Unlock()
		return state.ErrBusy
	}
	m.banner = ""
	m.mu.Unlock()
	return m.refresh(ctx)
}

func (m *Manager) refresh(ctx context.Context) error {
	m.mu.Lock()
	m.list = m.list.Loading()
	m.mu.Unlock()

	sizes, err := m.api.ListSizes(ctx, m.productID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		msg := m.msgs.Describe(err, m.msgs.LoadSizesFailed)
		m.list = m.list.Fail(msg)
		m.banner = msg
		m.log.Warn("failed to load sizes", zap.Error(err))
		return err
	}
	if sizes == nil {
		sizes = []domain.ProductSize{}
	}
	m.list = m.list.Succeed(sizes)
	return nil
}

func (m *Manager) validateInput(label string, stock int) error {
	if err := m.validate.Var(label, "required"); err != nil {
		return &ValidationError{Field: "size", Message: m.msgs.SizeRequired}
	}
	if err := m.validate.Var(label, fmt.Sprintf("max=%d", m.maxLabel)); err != nil {
		return &ValidationError{Field: "size", Message: m.msgs.SizeLimit(m.maxLabel)}
	}
	if err := m.validate.Var(stock, "gte=0"); err != nil {
		return &ValidationError{Field: "stock_quantity", Message: m.msgs.StockNegative}
	}
	return nil
}

func (m *Manager) beginWrite() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saving {
		return state.ErrBusy
	}
	m.saving = true
	m.banner = ""
	return nil
}

func (m *Manager) endWrite() {
	m.mu.Lock()
	m.saving = false
	m.mu.Unlock()
}

func (m *Manager) setBanner(msg string) {
	m.mu.Lock()
	m.banner = msg
	m.mu.Unlock()
}

// written finishes a successful write: notice, then refresh-after-write.
// A failed refresh does not undo the write; its message lands in the banner.
func (m *Manager) written(ctx context.Context, notice string) {
	m.notice.Set(notice)
	_ = m.refresh(ctx)
}

func (m *Manager) find(label string) *domain.ProductSize {
	for i := range m.list.Data {
		if m.list.Data[i].Size == label {
			row := m.list.Data[i]
			return &row
		}
	}
	return nil
}

// Add creates a size. The label is trimmed; an empty label or negative stock
// never reaches the server.
func (m *Manager) Add(ctx context.Context, label string, stock int) error {
	label = strings.TrimSpace(label)
	if err := m.validateInput(label, stock); err != nil {
		m.setBanner(err.Error())
		return err
	}
	if err := m.beginWrite(); err != nil {
		return err
	}
	defer m.endWrite()

	err := m.api.CreateSize(ctx, m.productID, domain.CreateRequest{Size: label, StockQuantity: stock})
	if err != nil {
		m.setBanner(m.msgs.Describe(err, m.msgs.AddSizeFailed))
		m.log.Warn("failed to add size", zap.String("size", label), zap.Error(err))
		return err
	}

	m.written(ctx, m.msgs.SizeAdded)
	return nil
}

// UpdateStock changes only the stock of label, keeping its current is_active.
func (m *Manager) UpdateStock(ctx context.Context, label string, stock int) error {
	if err := m.validate.Var(stock, "gte=0"); err != nil {
		verr := &ValidationError{Field: "stock_quantity", Message: m.msgs.StockNegative}
		m.setBanner(verr.Message)
		return verr
	}

	m.mu.Lock()
	req := domain.UpdateRequest{Size: label, StockQuantity: stock}
	active := true
	if row := m.find(label); row != nil {
		req.ID = row.ID
		active = row.IsActive
	}
	req.IsActive = &active
	m.mu.Unlock()

	if err := m.beginWrite(); err != nil {
		return err
	}
	defer m.endWrite()

	if err := m.api.UpdateSize(ctx, m.productID, req); err != nil {
		m.setBanner(m.msgs.Describe(err, m.msgs.UpdateStockFailed))
		m.log.Warn("failed to update stock", zap.String("size", label), zap.Error(err))
		return err
	}

	m.written(ctx, m.msgs.StockUpdated)
	return nil
}
