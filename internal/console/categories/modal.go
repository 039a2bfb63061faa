package categories

import (
	"context"

	"github.com/smallbiznis/pistache/internal/category/domain"
	"github.com/smallbiznis/pistache/internal/console/state"
	"go.uber.org/zap"
)

// Open shows the selection modal. The selection starts as exactly the
// categories the server reports as associated, in server order.
func (m *Manager) Open(ctx context.Context) error {
	m.search.Cancel()

	m.mu.Lock()
	needAssociated := m.associated.Phase != state.Success
	m.modal = &modal{}
	m.mu.Unlock()

	if needAssociated {
		if err := m.reloadAssociated(ctx); err != nil {
			return err
		}
	}
	return m.fetchAvailable(ctx)
}

// Close discards the modal, its selection and any pending search.
func (m *Manager) Close() {
	m.search.Cancel()
	m.mu.Lock()
	m.modal = nil
	m.mu.Unlock()
}

// Toggle flips id in the selection. Newly selected ids go to the end.
func (m *Manager) Toggle(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	md := m.modal
	if md == nil {
		return
	}
	for i, s := range md.selected {
		if s == id {
			md.selected = append(md.selected[:i:i], md.selected[i+1:]...)
			return
		}
	}
	md.selected = append(md.selected, id)
}

// Search records the term and fetches once input pauses.
func (m *Manager) Search(ctx context.Context, term string) {
	m.mu.Lock()
	if m.modal == nil {
		m.mu.Unlock()
		return
	}
	m.modal.search = term
	m.mu.Unlock()

	m.search.Trigger(func() {
		_ = m.fetchAvailable(ctx)
	})
}

// SubmitSearch fetches right away, dropping any pending debounced fetch.
func (m *Manager) SubmitSearch(ctx context.Context) error {
	m.search.Cancel()
	return m.fetchAvailable(ctx)
}

// fetchAvailable loads the annotated list for the current term. Responses to
// superseded requests, or for a modal that has since closed, are dropped.
func (m *Manager) fetchAvailable(ctx context.Context) error {
	m.mu.Lock()
	md := m.modal
	if md == nil {
		m.mu.Unlock()
		return nil
	}
	m.fetchSeq++
	seq := m.fetchSeq
	term := md.search
	md.available = md.available.Loading()
	m.mu.Unlock()

	list, err := m.api.ListAvailableCategories(ctx, m.productID, term)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.modal != md || seq != m.fetchSeq {
		return nil
	}
	if err != nil {
		msg := m.describe(err, m.msgs.LoadCategoriesFailed)
		md.available = md.available.Fail(msg)
		md.err = msg
		m.log.Warn("failed to load available categories", zap.String("search", term), zap.Error(err))
		return err
	}
	if list == nil {
		list = []domain.AvailableCategory{}
	}
	md.available = md.available.Succeed(list)
	md.err = ""
	if !md.initialized {
		md.selected = md.selected[:0]
		for _, c := range list {
			if c.IsAssociated {
				md.selected = append(md.selected, c.ID)
			}
		}
		md.initialized = true
	}
	return nil
}
