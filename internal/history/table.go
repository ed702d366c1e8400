// Package history maps a wallet's transaction history onto table rows: one
// section, newest transaction first, each row a title and a detail line.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/specialistvlad/heartbeat/internal/amount"
	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/wallet"
)

// ErrorTitle is shown for rows that cannot be rendered.
const ErrorTitle = "*Error*"

// DateLayout formats the date in a row's detail line.
const DateLayout = "2006-01-02 15:04:05"

// Display holds the amount formatting preferences.
type Display struct {
	NumZeros     int
	DecimalPoint int
}

// DefaultDisplay matches the wallet's defaults: mBCH, no forced zeros.
func DefaultDisplay() Display {
	return Display{NumZeros: 0, DecimalPoint: 5}
}

// Entry is one rendered history row.
type Entry struct {
	TxHash     chainhash.Hash
	Status     wallet.Status
	StatusText string
	Label      string
	Value      string
	Balance    string
	Date       time.Time
}

// Cell is the text shown for a row.
type Cell struct {
	Title  string
	Detail string
}

// View is told to redraw after the table's entries changed.
type View interface {
	ReloadData(ctx context.Context, t *Table) error
}

// Table holds the rendered history. It is safe for concurrent use.
type Table struct {
	display Display
	view    View
	now     func() time.Time

	mu      sync.RWMutex
	entries []Entry
}

// Option customizes a Table.
type Option func(*Table)

// WithClock overrides the clock used to date unconfirmed transactions.
func WithClock(now func() time.Time) Option {
	return func(t *Table) { t.now = now }
}

// New creates an empty table that redraws view on refresh. view may be nil.
func New(display Display, view View, opts ...Option) *Table {
	t := &Table{display: display, view: view, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sections returns the number of table sections.
func (t *Table) Sections() int {
	return 1
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entries returns a copy of the rendered entries, newest first.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry(nil), t.entries...)
}

// Cell renders the row at index row.
func (t *Table) Cell(row int) Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row < 0 || row >= len(t.entries) {
		return Cell{Title: ErrorTitle}
	}
	e := t.entries[row]
	return Cell{
		Title:  fmt.Sprintf("%s | Amt: %s | Bal: %s", e.StatusText, e.Value, e.Balance),
		Detail: fmt.Sprintf("%s | %s", e.Date.Format(DateLayout), e.Label),
	}
}

// Update rebuilds the entries from src without redrawing.
func (t *Table) Update(ctx context.Context, src wallet.Source) int {
	logger := ctxlog.FromContext(ctx)

	items := src.History()
	entries := make([]Entry, len(items))
	for i, item := range items {
		st, statusText := src.TxStatus(item)
		date := item.Timestamp
		if item.Conf <= 0 {
			date = t.now()
		}
		// Newest first.
		entries[len(items)-1-i] = Entry{
			TxHash:     item.TxHash,
			Status:     st,
			StatusText: statusText,
			Label:      src.Label(item.TxHash),
			Value: amount.Format(item.Value, amount.Options{
				IsDiff:       true,
				NumZeros:     t.display.NumZeros,
				DecimalPoint: t.display.DecimalPoint,
				Whitespaces:  true,
			}),
			Balance: amount.Format(item.Balance, amount.Options{
				NumZeros:     t.display.NumZeros,
				DecimalPoint: t.display.DecimalPoint,
				Whitespaces:  true,
			}),
			Date: date,
		}
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()

	logger.Debug("Fetched entries from history.", "count", len(entries))
	return len(entries)
}

// Refresh rebuilds the entries from src and redraws the view.
func (t *Table) Refresh(ctx context.Context, src wallet.Source) error {
	t.Update(ctx, src)
	if t.view == nil {
		return nil
	}
	if err := t.view.ReloadData(ctx, t); err != nil {
		return fmt.Errorf("failed to reload history view: %w", err)
	}
	return nil
}
