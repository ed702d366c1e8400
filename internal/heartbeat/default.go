package heartbeat

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/heartbeat/internal/registry"
)

// ErrNoDefault is returned by the package-level functions when no default
// Heartbeat has been installed.
var ErrNoDefault = errors.New("heartbeat: no default heartbeat installed")

var (
	defaultMu sync.RWMutex
	std       *Heartbeat
)

// SetDefault installs h as the process-wide heartbeat and returns the one it
// replaced. Passing nil uninstalls the default.
func SetDefault(h *Heartbeat) *Heartbeat {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := std
	std = h
	return prev
}

// Default returns the process-wide heartbeat, or nil.
func Default() *Heartbeat {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return std
}

// Start ensures the default heartbeat is running.
func Start(ctx context.Context) error {
	h := Default()
	if h == nil {
		return ErrNoDefault
	}
	return h.EnsureStarted(ctx)
}

// Add registers a callback on the default heartbeat, starting it if needed.
func Add(ctx context.Context, receiver any, operation string, fn registry.Func) (registry.Token, error) {
	h := Default()
	if h == nil {
		return "", ErrNoDefault
	}
	return h.Add(ctx, receiver, operation, fn)
}

// Stop shuts the default heartbeat down. Without a default it does nothing.
func Stop(ctx context.Context) {
	if h := Default(); h != nil {
		h.Shutdown(ctx)
	}
}
