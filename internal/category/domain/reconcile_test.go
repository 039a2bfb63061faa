package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	cases := []struct {
		name     string
		current  []int64
		wanted   []int64
		toAdd    []int64
		toRemove []int64
	}{
		{name: "same set", current: []int64{1, 2}, wanted: []int64{2, 1}, toAdd: []int64{}, toRemove: []int64{}},
		{name: "swap", current: []int64{2, 3}, wanted: []int64{1, 2}, toAdd: []int64{1}, toRemove: []int64{3}},
		{name: "from empty keeps wanted order", current: nil, wanted: []int64{5, 4}, toAdd: []int64{5, 4}, toRemove: []int64{}},
		{name: "clear keeps current order", current: []int64{9, 7}, wanted: nil, toAdd: []int64{}, toRemove: []int64{9, 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := Reconcile(tc.current, tc.wanted)
			assert.Equal(t, tc.toAdd, plan.ToAdd)
			assert.Equal(t, tc.toRemove, plan.ToRemove)
		})
	}
	assert.True(t, Reconcile([]int64{1}, []int64{1}).Empty())
}
