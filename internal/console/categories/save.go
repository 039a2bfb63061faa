package categories

import (
	"context"

	"github.com/smallbiznis/pistache/internal/category/domain"
	"github.com/smallbiznis/pistache/internal/console/state"
	"go.uber.org/zap"
)

type OpKind string

const (
	OpAdd    OpKind = "add"
	OpRemove OpKind = "remove"
)

type Op struct {
	Kind       OpKind
	CategoryID int64
}

// Report lists what a save applied before stopping. Failed is nil when every
// operation went through. Applied operations are not rolled back.
type Report struct {
	Applied []Op
	Failed  *Op
}

func (r Report) Partial() bool {
	return r.Failed != nil && len(r.Applied) > 0
}

// Save converges the product's categories on the selection: every add in
// selection order, then every remove in association order, one at a time.
// The first failure stops the run and stays in the modal. On success the
// associated list is re-fetched and the modal closes.
func (m *Manager) Save(ctx context.Context) (Report, error) {
	m.mu.Lock()
	md := m.modal
	if md == nil {
		m.mu.Unlock()
		return Report{}, ErrModalClosed
	}
	if m.saving {
		m.mu.Unlock()
		return Report{}, state.ErrBusy
	}
	m.saving = true
	md.err = ""
	md.report = nil
	current := make([]int64, 0, len(m.associated.Data))
	for _, c := range m.associated.Data {
		current = append(current, c.ID)
	}
	selected := append([]int64(nil), md.selected...)
	m.mu.Unlock()
	defer m.doneSaving()

	plan := domain.Reconcile(current, selected)
	report := Report{Applied: []Op{}}

	fail := func(op Op, err error, fallback string) (Report, error) {
		report.Failed = &op
		msg := m.describe(err, fallback)
		m.mu.Lock()
		md.err = msg
		md.report = &report
		m.mu.Unlock()
		m.log.Warn("category save stopped",
			zap.String("op", string(op.Kind)),
			zap.Int64("category_id", op.CategoryID),
			zap.Int("applied", len(report.Applied)),
			zap.Error(err),
		)
		return report, err
	}

	for _, id := range plan.ToAdd {
		op := Op{Kind: OpAdd, CategoryID: id}
		if err := m.api.AddProductCategory(ctx, m.productID, id); err != nil {
			return fail(op, err, m.msgs.AddCategoriesFailed)
		}
		report.Applied = append(report.Applied, op)
	}
	for _, id := range plan.ToRemove {
		op := Op{Kind: OpRemove, CategoryID: id}
		if err := m.api.RemoveProductCategory(ctx, m.productID, id); err != nil {
			return fail(op, err, m.msgs.RemoveCategoriesFailed)
		}
		report.Applied = append(report.Applied, op)
	}

	_ = m.reloadAssociated(ctx)
	m.Close()
	if !plan.Empty() {
		m.notice.Set(m.msgs.CategoriesSaved)
	}
	return report, nil
}
