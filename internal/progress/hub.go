// Package progress fans generation state transitions out to websocket
// subscribers keyed by request id.
package progress

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"legendemer/internal/domain"
)

const (
	subscriberBuffer = 16
	retainLastEvent  = 15 * time.Minute
)

// Hub implements orchestrator.Observer. The last event of every request is
// retained for a while so a subscriber that connects late still learns the
// current state.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan domain.ProgressEvent]struct{}
	last *cache.Cache
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan domain.ProgressEvent]struct{}),
		last: cache.New(retainLastEvent, retainLastEvent),
	}
}

// Observe records the event and delivers it to current subscribers. A slow
// subscriber misses intermediate events rather than blocking the generation,
// but always receives the terminal one: the oldest pending event is dropped
// to make room for it.
func (h *Hub) Observe(event domain.ProgressEvent) {
	if event.RequestID == "" {
		return
	}
	h.last.SetDefault(event.RequestID, event)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[event.RequestID] {
		select {
		case ch <- event:
			continue
		default:
		}
		if !event.State.Terminal() {
			continue
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

// Last returns the most recent event of a request.
func (h *Hub) Last(requestID string) (domain.ProgressEvent, bool) {
	v, ok := h.last.Get(requestID)
	if !ok {
		return domain.ProgressEvent{}, false
	}
	event, ok := v.(domain.ProgressEvent)
	return event, ok
}

// Subscribe registers for events of one request. The returned function must be
// called to release the subscription.
func (h *Hub) Subscribe(requestID string) (<-chan domain.ProgressEvent, func()) {
	ch := make(chan domain.ProgressEvent, subscriberBuffer)
	h.mu.Lock()
	if h.subs[requestID] == nil {
		h.subs[requestID] = make(map[chan domain.ProgressEvent]struct{})
	}
	h.subs[requestID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[requestID], ch)
			if len(h.subs[requestID]) == 0 {
				delete(h.subs, requestID)
			}
		})
	}
}

// Subscribers reports how many listeners a request has.
func (h *Hub) Subscribers(requestID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[requestID])
}
