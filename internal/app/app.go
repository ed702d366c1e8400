package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/heartbeat/internal/config"
	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/feed"
	"github.com/specialistvlad/heartbeat/internal/gui"
	"github.com/specialistvlad/heartbeat/internal/heartbeat"
	"github.com/specialistvlad/heartbeat/internal/history"
	"github.com/specialistvlad/heartbeat/internal/pump"
	"github.com/specialistvlad/heartbeat/internal/runloop"
	"github.com/specialistvlad/heartbeat/internal/wallet"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	ctx      context.Context
	config   *Config
	settings *config.Settings

	loop        *runloop.Loop
	heartbeat   *heartbeat.Heartbeat
	wallet      *wallet.Memory
	network     *wallet.Network
	table       *history.Table
	coordinator *gui.Coordinator
	feed        *feed.Client

	httpServer *http.Server

	diagMu      sync.Mutex
	diagnostics uint64
	lastDiag    *pump.Diagnostic
}

// NewApp is the constructor for the main application. It loads the settings,
// applies the command-line overrides and builds every component. Nothing runs
// until Run.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	settings, err := loader.Load(ctx, config.Default(), appConfig.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(settings, appConfig)
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Configuration loaded.", "period", settings.Pump.Period, "yield", settings.Pump.Yield, "feed", settings.Feed.Enabled())

	a := &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   appConfig,
		settings: settings,
		wallet:   wallet.NewMemory(),
		network:  wallet.NewNetwork(),
	}

	a.loop = runloop.New(ctx)
	a.heartbeat = heartbeat.New(heartbeat.NewFactory(a.loop, settings.PumpConfig(), pump.WithSink(pump.SinkFunc(a.recordDiagnostic))))

	for _, tx := range settings.Transactions {
		a.wallet.AddTransaction(wallet.Transaction{
			Hash:      tx.Hash,
			Height:    tx.Height,
			Timestamp: tx.Timestamp,
			Value:     tx.Value,
		})
		if tx.Label != "" {
			a.wallet.SetLabel(tx.Hash, tx.Label)
		}
	}
	logger.Debug("Wallet seeded.", "transactions", len(settings.Transactions), "balance", a.wallet.Balance())

	display := history.Display{NumZeros: settings.Display.NumZeros, DecimalPoint: settings.Display.DecimalPoint}
	a.table = history.New(display, history.NewTextView(outW, settings.Display.Title))
	a.coordinator = gui.New(ctx, a.wallet, a.network, a.heartbeat, a.table)

	if settings.Feed.Enabled() {
		a.feed = feed.New(ctx, feed.Config{
			URL:                settings.Feed.URL,
			Namespace:          settings.Feed.Namespace,
			InsecureSkipVerify: settings.Feed.InsecureSkipVerify,
			ConnectTimeout:     settings.Feed.ConnectTimeout,
		}, a.wallet, a.network)
	}

	return a, nil
}

func applyOverrides(s *config.Settings, c *Config) {
	if c.Period != nil {
		s.Pump.Period = *c.Period
	}
	if c.Yield != nil {
		s.Pump.Yield = *c.Yield
	}
	if c.FeedURL != "" {
		s.Feed.URL = c.FeedURL
	}
}

// recordDiagnostic is the pump sink. It runs on the host thread.
func (a *App) recordDiagnostic(d pump.Diagnostic) {
	a.diagMu.Lock()
	defer a.diagMu.Unlock()
	a.diagnostics++
	a.lastDiag = &d
}

// Settings returns the effective settings. This is primarily for testing.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// Wallet returns the in-memory wallet.
func (a *App) Wallet() *wallet.Memory {
	return a.wallet
}

// Network returns the wallet event bus.
func (a *App) Network() *wallet.Network {
	return a.network
}

// Heartbeat returns the application's heartbeat.
func (a *App) Heartbeat() *heartbeat.Heartbeat {
	return a.heartbeat
}
