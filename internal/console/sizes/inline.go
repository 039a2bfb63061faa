package sizes

import (
	"context"
	"sync"
)

// InlineEdit is a single stock cell being edited. It commits at most once,
// on blur or Enter, and only when the value changed.
type InlineEdit struct {
	m        *Manager
	label    string
	original int

	mu    sync.Mutex
	value int
	done  bool
}

func (m *Manager) BeginInlineEdit(label string) (*InlineEdit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.find(label)
	if row == nil {
		return nil, ErrUnknownSize
	}
	return &InlineEdit{m: m, label: label, original: row.StockQuantity, value: row.StockQuantity}, nil
}

func (e *InlineEdit) Label() string { return e.label }

func (e *InlineEdit) Set(stock int) {
	e.mu.Lock()
	e.value = stock
	e.mu.Unlock()
}

func (e *InlineEdit) Blur(ctx context.Context) error {
	return e.commit(ctx)
}

// Key handles a key press inside the cell: Enter commits, Escape cancels.
func (e *InlineEdit) Key(ctx context.Context, key string) error {
	switch key {
	case "Enter":
		return e.commit(ctx)
	case "Escape":
		e.Cancel()
	}
	return nil
}

func (e *InlineEdit) Cancel() {
	e.mu.Lock()
	e.done = true
	e.mu.Unlock()
}

func (e *InlineEdit) commit(ctx context.Context) error {
	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return nil
	}
	e.done = true
	value := e.value
	e.mu.Unlock()

	if value == e.original {
		return nil
	}
	return e.m.UpdateStock(ctx, e.label, value)
}
