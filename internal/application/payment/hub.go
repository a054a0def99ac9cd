package payment

import (
	"sync"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/metrics"
)

// Update is pushed to a session's subscriptions once a payment message was
// applied.
type Update struct {
	Status domain.PaymentStatus `json:"status"`
	State  domain.WizardState   `json:"state"`
}

// Subscription is one open payment view. Updates are buffered; a slow
// reader misses intermediate updates rather than blocking the hub.
type Subscription struct {
	sessionID string
	ch        chan Update
	hub       *Hub
	once      sync.Once
}

func (s *Subscription) Updates() <-chan Update { return s.ch }

func (s *Subscription) SessionID() string { return s.sessionID }

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub routes updates to the subscriptions of one session.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(sessionID string) *Subscription {
	s := &Subscription{sessionID: sessionID, ch: make(chan Update, 4), hub: h}
	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[sessionID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	metrics.IncPaymentSubscribers()
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[s.sessionID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.sessionID)
		}
	}
	close(s.ch)
	h.mu.Unlock()
	metrics.DecPaymentSubscribers()
}

// Listening reports whether sessionID has an open subscription.
func (h *Hub) Listening(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID]) > 0
}

// Broadcast delivers u to every subscription of sessionID without blocking.
func (h *Hub) Broadcast(sessionID string, u Update) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for s := range h.subs[sessionID] {
		select {
		case s.ch <- u:
			n++
		default:
		}
	}
	return n
}
