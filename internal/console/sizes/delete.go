package sizes

import (
	"context"

	"github.com/smallbiznis/pistache/internal/console/state"
	"go.uber.org/zap"
)

// RequestDelete opens the confirmation for label. Nothing is sent yet.
func (m *Manager) RequestDelete(label string) {
	m.mu.Lock()
	m.pendingDelete = &label
	m.mu.Unlock()
}

func (m *Manager) CancelDelete() {
	m.mu.Lock()
	m.pendingDelete = nil
	m.mu.Unlock()
}

// ConfirmDelete removes the pending label. Without a pending confirmation it
// does nothing. A confirmation that hits an in-flight write stays pending.
func (m *Manager) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	if m.pendingDelete == nil {
		m.mu.Unlock()
		return nil
	}
	if m.saving {
		m.mu.Unlock()
		return state.ErrBusy
	}
	label := *m.pendingDelete
	m.pendingDelete = nil
	m.saving = true
	m.banner = ""
	m.mu.Unlock()
	defer m.endWrite()

	if err := m.api.DeleteSize(ctx, m.productID, label); err != nil {
		m.setBanner(m.msgs.Describe(err, m.msgs.DeleteSizeFailed))
		m.log.Warn("failed to delete size", zap.String("size", label), zap.Error(err))
		return err
	}

	m.written(ctx, m.msgs.SizeDeleted)
	return nil
}
