package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Token identifies a single registration.
type Token string

// Func is the unit of work bound to a registration.
type Func func() error

// Callback is a registered invocation: the receiver and operation it was
// registered for, plus the function that performs it.
type Callback struct {
	Token     Token
	Receiver  any
	Operation string
	Func      Func
}

// Result is the outcome of invoking one Callback during a drain.
type Result struct {
	Token     Token
	Receiver  any
	Operation string
	Err       error
	Duration  time.Duration
}

// Failed reports whether the callback returned an error or panicked.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Registry is an ordered, token-keyed collection of callbacks.
type Registry struct {
	mu      sync.Mutex
	order   []Token
	entries map[Token]*Callback
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[Token]*Callback),
	}
}

// Register appends a callback and returns its token. Registering the same
// receiver and operation twice yields two entries that are both invoked.
func (r *Registry) Register(receiver any, operation string, fn Func) Token {
	tok := Token(uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, tok)
	r.entries[tok] = &Callback{
		Token:     tok,
		Receiver:  receiver,
		Operation: operation,
		Func:      fn,
	}
	return tok
}

// Remove drops the callback registered under tok. It reports whether an entry
// was removed.
func (r *Registry) Remove(tok Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[tok]; !ok {
		return false
	}
	delete(r.entries, tok)
	for i, t := range r.order {
		if t == tok {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Clear removes every registered callback.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.entries = make(map[Token]*Callback)
}

// Snapshot returns the registered callbacks in registration order.
func (r *Registry) Snapshot() []Callback {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Callback, 0, len(r.order))
	for _, tok := range r.order {
		out = append(out, *r.entries[tok])
	}
	return out
}

// Drain invokes every callback registered at the time of the call, once and
// in order, and returns one Result per invocation. Failures are returned,
// not logged.
func (r *Registry) Drain() []Result {
	callbacks := r.Snapshot()
	results := make([]Result, 0, len(callbacks))

	for _, cb := range callbacks {
		start := time.Now()
		err := invoke(cb)
		res := Result{
			Token:     cb.Token,
			Receiver:  cb.Receiver,
			Operation: cb.Operation,
			Err:       err,
			Duration:  time.Since(start),
		}
		results = append(results, res)
	}
	return results
}
