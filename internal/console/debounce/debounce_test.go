package debounce

import (
	"testing"
	"time"

	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestTriggerCollapsesBurst(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	d := New(fc, DefaultDelay)

	calls := 0
	for i := 0; i < 4; i++ {
		d.Trigger(func() { calls++ })
		fc.Advance(200 * time.Millisecond)
	}
	assert.Equal(t, 0, calls)
	assert.True(t, d.Pending())

	fc.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())
}

func TestCancelDropsPendingCall(t *testing.T) {
	fc := clock.NewFakeClock(time.Now())
	d := New(fc, 0)

	called := false
	d.Trigger(func() { called = true })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	fc.Advance(time.Second)
	assert.False(t, called)
	assert.Equal(t, 0, fc.Pending())
}
