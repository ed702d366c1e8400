// Package gui wires the wallet collaborator to the history table. Network
// events arrive on arbitrary goroutines and only mark the table dirty; the
// redraw itself happens in a heartbeat callback, on the host thread.
package gui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/heartbeat"
	"github.com/specialistvlad/heartbeat/internal/history"
	"github.com/specialistvlad/heartbeat/internal/registry"
	"github.com/specialistvlad/heartbeat/internal/wallet"
)

// Interests are the network events the coordinator listens to besides
// on_history.
var Interests = []string{
	wallet.EventUpdated,
	wallet.EventNewTransaction,
	wallet.EventStatus,
	wallet.EventBanner,
	wallet.EventVerified,
	wallet.EventFee,
}

// Snapshot is the coordinator's view of the non-history network state.
type Snapshot struct {
	Status    string `json:"status,omitempty"`
	Banner    string `json:"banner,omitempty"`
	Fee       string `json:"fee,omitempty"`
	Rows      int    `json:"rows"`
	Refreshes uint64 `json:"refreshes"`
}

// Coordinator keeps the history table in sync with the wallet.
type Coordinator struct {
	ctx     context.Context
	wallet  wallet.Source
	network *wallet.Network
	hb      *heartbeat.Heartbeat
	table   *history.Table

	dirty     atomic.Bool
	refreshes atomic.Uint64

	mu     sync.Mutex
	subs   []wallet.Subscription
	token  registry.Token
	status string
	banner string
	fee    string
}

// New creates a coordinator. Nothing is subscribed until Show.
func New(ctx context.Context, src wallet.Source, network *wallet.Network, hb *heartbeat.Heartbeat, table *history.Table) *Coordinator {
	return &Coordinator{
		ctx:     ctxlog.With(ctx, "component", "gui"),
		wallet:  src,
		network: network,
		hb:      hb,
		table:   table,
	}
}

// Show subscribes to the network, enrolls the refresh callback with the
// heartbeat and draws the table once. It must run on the host thread. A
// second call before Close is a no-op.
func (c *Coordinator) Show(ctx context.Context) error {
	logger := ctxlog.FromContext(c.ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		logger.Debug("History already shown.")
		return nil
	}

	tok, err := c.hb.Add(ctx, c, "refresh", c.refreshIfDirty)
	if err != nil {
		return fmt.Errorf("failed to enroll history refresh: %w", err)
	}
	c.token = tok

	if c.network != nil {
		c.subs = append(c.subs,
			c.network.RegisterCallback(c.OnHistory, wallet.EventOnHistory),
			c.network.RegisterCallback(c.OnNetwork, Interests...),
		)
		logger.Debug("Registered network callbacks.", "interests", Interests)
	}

	return c.refresh()
}

// Close undoes Show.
func (c *Coordinator) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.subs {
		c.network.Unregister(s)
	}
	c.subs = nil
	if c.token != "" {
		c.hb.Remove(c.token)
		c.token = ""
	}
	ctxlog.FromContext(ctx).Debug("Coordinator closed.")
}

// OnHistory handles the on_history event.
func (c *Coordinator) OnHistory(event string, _ ...any) {
	ctxlog.FromContext(c.ctx).Debug("History changed.", "event", event)
	c.dirty.Store(true)
}

// OnNetwork handles every other network event.
func (c *Coordinator) OnNetwork(event string, args ...any) {
	logger := ctxlog.FromContext(c.ctx)
	switch event {
	case wallet.EventUpdated, wallet.EventNewTransaction, wallet.EventVerified:
		logger.Debug("Network event marks history dirty.", "event", event)
		c.dirty.Store(true)
	case wallet.EventStatus, wallet.EventBanner, wallet.EventFee:
		text := firstArg(args)
		c.mu.Lock()
		switch event {
		case wallet.EventStatus:
			c.status = text
		case wallet.EventBanner:
			c.banner = text
		case wallet.EventFee:
			c.fee = text
		}
		c.mu.Unlock()
		logger.Info("Network notice.", "event", event, "value", text)
	default:
		logger.Warn("Unexpected network message.", "event", event, "args", args)
	}
}

// Dirty reports whether a redraw is pending.
func (c *Coordinator) Dirty() bool {
	return c.dirty.Load()
}

// Snapshot returns the latest notices and table statistics.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Status:    c.status,
		Banner:    c.banner,
		Fee:       c.fee,
		Rows:      c.table.Rows(),
		Refreshes: c.refreshes.Load(),
	}
}

// refreshIfDirty is the heartbeat callback.
func (c *Coordinator) refreshIfDirty() error {
	if !c.dirty.CompareAndSwap(true, false) {
		return nil
	}
	return c.refresh()
}

func (c *Coordinator) refresh() error {
	c.refreshes.Add(1)
	return c.table.Refresh(c.ctx, c.wallet)
}

func firstArg(args []any) string {
	if len(args) == 0 {
		return ""
	}
	return fmt.Sprint(args[0])
}
