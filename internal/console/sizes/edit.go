package sizes

import (
	"context"
	"strings"

	"github.com/smallbiznis/pistache/internal/productsize/domain"
	"go.uber.org/zap"
)

// EditForm is the full edit modal. Error holds failures of this modal only.
type EditForm struct {
	ID           int64
	OriginalSize string
	Size         string
	Stock        int
	IsActive     bool
	Error        string
}

// EffectiveActive is the flag SaveEdit sends: zero stock is never active.
func (f EditForm) EffectiveActive() bool {
	return f.Stock > 0 && f.IsActive
}

func (m *Manager) OpenEdit(label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.find(label)
	if row == nil {
		return ErrUnknownSize
	}
	m.edit = &EditForm{
		ID:           row.ID,
		OriginalSize: row.Size,
		Size:         row.Size,
		Stock:        row.StockQuantity,
		IsActive:     row.IsActive,
	}
	return nil
}

func (m *Manager) updateEdit(fn func(*EditForm)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edit != nil {
		fn(m.edit)
	}
}

func (m *Manager) SetEditSize(label string) {
	m.updateEdit(func(f *EditForm) { f.Size = label })
}

func (m *Manager) SetEditStock(stock int) {
	m.updateEdit(func(f *EditForm) { f.Stock = stock })
}

func (m *Manager) SetEditActive(active bool) {
	m.updateEdit(func(f *EditForm) { f.IsActive = active })
}

func (m *Manager) CancelEdit() {
	m.mu.Lock()
	m.edit = nil
	m.mu.Unlock()
}

// SaveEdit submits the modal. On failure the modal stays open with its error.
func (m *Manager) SaveEdit(ctx context.Context) error {
	m.mu.Lock()
	if m.edit == nil {
		m.mu.Unlock()
		return ErrNoEdit
	}
	form := *m.edit
	m.mu.Unlock()

	label := strings.TrimSpace(form.Size)
	if err := m.validateInput(label, form.Stock); err != nil {
		m.updateEdit(func(f *EditForm) { f.Error = err.Error() })
		return err
	}
	if err := m.beginWrite(); err != nil {
		return err
	}
	defer m.endWrite()
	m.updateEdit(func(f *EditForm) { f.Error = "" })

	active := form.EffectiveActive()
	req := domain.UpdateRequest{
		ID:            form.ID,
		OriginalSize:  form.OriginalSize,
		Size:          label,
		StockQuantity: form.Stock,
		IsActive:      &active,
	}
	if err := m.api.UpdateSize(ctx, m.productID, req); err != nil {
		msg := m.msgs.Describe(err, m.msgs.UpdateSizeFailed)
		m.updateEdit(func(f *EditForm) { f.Error = msg })
		m.log.Warn("failed to update size", zap.String("size", form.OriginalSize), zap.Error(err))
		return err
	}

	m.CancelEdit()
	m.written(ctx, m.msgs.SizeUpdated)
	return nil
}
