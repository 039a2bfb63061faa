package domain

// Plan lists the association changes that turn current into wanted.
type Plan struct {
	ToAdd    []int64
	ToRemove []int64
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// Reconcile computes wanted minus current (in wanted order) and current minus
// wanted (in current order).
func Reconcile(current, wanted []int64) Plan {
	inCurrent := make(map[int64]struct{}, len(current))
	for _, id := range current {
		inCurrent[id] = struct{}{}
	}
	inWanted := make(map[int64]struct{}, len(wanted))
	for _, id := range wanted {
		inWanted[id] = struct{}{}
	}

	plan := Plan{ToAdd: []int64{}, ToRemove: []int64{}}
	for _, id := range wanted {
		if _, ok := inCurrent[id]; !ok {
			plan.ToAdd = append(plan.ToAdd, id)
		}
	}
	for _, id := range current {
		if _, ok := inWanted[id]; !ok {
			plan.ToRemove = append(plan.ToRemove, id)
		}
	}
	return plan
}
