package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
	"github.com/specialistvlad/heartbeat/internal/amount"
	"github.com/specialistvlad/heartbeat/internal/pump"
)

// Settings is the complete application configuration.
type Settings struct {
	Pump         Pump
	Display      Display
	Feed         Feed
	Transactions []Transaction
}

// Pump tunes the heartbeat driver.
type Pump struct {
	Period time.Duration
	Yield  time.Duration
}

// Display controls how the history table renders amounts.
type Display struct {
	Title        string
	NumZeros     int
	DecimalPoint int
}

// Feed points at an optional daemon. An empty URL disables it.
type Feed struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Enabled reports whether a daemon feed is configured.
func (f Feed) Enabled() bool {
	return f.URL != ""
}

// Transaction seeds the in-memory wallet at startup.
type Transaction struct {
	Hash      chainhash.Hash
	Height    int32
	Timestamp time.Time
	Value     btcutil.Amount
	Label     string
}

// Default returns the settings used when nothing else is configured.
func Default() *Settings {
	return &Settings{
		Pump: Pump{
			Period: pump.DefaultPeriod,
			Yield:  pump.DefaultYield,
		},
		Display: Display{
			Title:        "History",
			DecimalPoint: 5,
		},
		Feed: Feed{
			ConnectTimeout: 15 * time.Second,
		},
	}
}

// PumpConfig converts the pump section into a driver configuration.
func (s *Settings) PumpConfig() pump.Config {
	return pump.Config{Period: s.Pump.Period, Yield: s.Pump.Yield}
}

// Validate checks every section and reports all problems at once.
func (s *Settings) Validate() error {
	var errs []error

	if err := s.PumpConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pump: %w", err))
	}
	if s.Display.NumZeros < 0 || s.Display.NumZeros > amount.DefaultDecimalPoint {
		errs = append(errs, fmt.Errorf("display: num_zeros must be between 0 and %d, got %d", amount.DefaultDecimalPoint, s.Display.NumZeros))
	}
	if s.Display.DecimalPoint < 0 || s.Display.DecimalPoint > amount.DefaultDecimalPoint {
		errs = append(errs, fmt.Errorf("display: decimal_point must be between 0 and %d, got %d", amount.DefaultDecimalPoint, s.Display.DecimalPoint))
	}
	if s.Feed.Enabled() {
		u, err := url.Parse(s.Feed.URL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("feed: invalid url: %w", err))
		case u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "ws" && u.Scheme != "wss":
			errs = append(errs, fmt.Errorf("feed: unsupported url scheme %q", u.Scheme))
		}
		if s.Feed.ConnectTimeout <= 0 {
			errs = append(errs, fmt.Errorf("feed: connect_timeout must be positive, got %v", s.Feed.ConnectTimeout))
		}
	}
	seen := make(map[chainhash.Hash]struct{}, len(s.Transactions))
	for _, tx := range s.Transactions {
		if _, dup := seen[tx.Hash]; dup {
			errs = append(errs, fmt.Errorf("transaction %s: declared more than once", tx.Hash))
		}
		seen[tx.Hash] = struct{}{}
		if tx.Height < -1 {
			errs = append(errs, fmt.Errorf("transaction %s: height must be -1 or greater, got %d", tx.Hash, tx.Height))
		}
	}

	return errors.Join(errs...)
}
