package app

import (
	"sync"

	"github.com/ayusman/mirrorpaint/internal/session"
)

// Snapshot is one published frame: the composed preview as JPEG plus the
// session state that produced it.
type Snapshot struct {
	JPEG  []byte
	State session.State
}

// Hub fans snapshots out to preview clients. Slow subscribers only ever see
// the newest snapshot; the frame loop never waits on them.
type Hub struct {
	mu     sync.RWMutex
	latest Snapshot
	subs   map[chan Snapshot]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Snapshot]struct{})}
}

// Publish stores s as the latest snapshot and offers it to every subscriber.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = s
	for ch := range h.subs {
		select {
		case ch <- s:
		default:
			// drop the stale one and retry once
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Latest returns the most recent snapshot.
func (h *Hub) Latest() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Subscribe registers a listener. Call the returned func to unsubscribe.
func (h *Hub) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
