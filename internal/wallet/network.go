package wallet

import "sync"

// Network event names.
const (
	EventUpdated        = "updated"
	EventNewTransaction = "new_transaction"
	EventStatus         = "status"
	EventBanner         = "banner"
	EventVerified       = "verified"
	EventFee            = "fee"
	EventOnHistory      = "on_history"
)

// Events lists every event a Network delivers.
var Events = []string{
	EventUpdated,
	EventNewTransaction,
	EventStatus,
	EventBanner,
	EventVerified,
	EventFee,
	EventOnHistory,
}

// Callback receives a network event and its arguments.
type Callback func(event string, args ...any)

// Subscription identifies a registered callback.
type Subscription uint64

type subscriber struct {
	id     Subscription
	fn     Callback
	events map[string]struct{}
}

// Network dispatches named events to registered callbacks.
type Network struct {
	mu   sync.RWMutex
	next Subscription
	subs []subscriber
}

// NewNetwork creates an event bus with no subscribers.
func NewNetwork() *Network {
	return &Network{}
}

// RegisterCallback subscribes fn to the given events.
func (n *Network) RegisterCallback(fn Callback, events ...string) Subscription {
	set := make(map[string]struct{}, len(events))
	for _, e := range events {
		set[e] = struct{}{}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	n.subs = append(n.subs, subscriber{id: n.next, fn: fn, events: set})
	return n.next
}

// Unregister removes a subscription. It reports whether it existed.
func (n *Network) Unregister(id Subscription) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Trigger delivers event to every subscriber interested in it, in
// subscription order, on the calling goroutine.
func (n *Network) Trigger(event string, args ...any) int {
	n.mu.RLock()
	var targets []Callback
	for _, s := range n.subs {
		if _, ok := s.events[event]; ok {
			targets = append(targets, s.fn)
		}
	}
	n.mu.RUnlock()

	for _, fn := range targets {
		fn(event, args...)
	}
	return len(targets)
}
