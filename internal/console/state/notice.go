package state

import (
	"sync"
	"time"

	"github.com/smallbiznis/pistache/internal/clock"
)

const NoticeTTL = 3 * time.Second

// Notice is a transient success message that clears itself after a TTL.
// Setting a new text restarts the countdown.
type Notice struct {
	clock clock.Clock
	ttl   time.Duration

	mu    sync.Mutex
	text  string
	timer clock.Timer
	gen   uint64
}

func NewNotice(clk clock.Clock, ttl time.Duration) *Notice {
	if ttl <= 0 {
		ttl = NoticeTTL
	}
	return &Notice{clock: clk, ttl: ttl}
}

func (n *Notice) Set(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.text = text
	n.timer = n.clock.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if gen == n.gen {
			n.text = ""
			n.timer = nil
		}
	})
}

func (n *Notice) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.text = ""
}

func (n *Notice) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}
