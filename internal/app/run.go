package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/heartbeat"
)

// Run owns the calling goroutine as the host thread until ctx is done or the
// configured RunFor elapses. The history view is shown from the loop, the
// daemon feed connects in the background, and everything is torn down before
// Run returns.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if a.config.RunFor > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, a.config.RunFor)
		defer stop()
	}
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	prev := heartbeat.SetDefault(a.heartbeat)
	defer heartbeat.SetDefault(prev)

	var (
		startErr error
		once     sync.Once
	)
	fail := func(err error) {
		once.Do(func() { startErr = err })
		cancel()
	}

	if err := a.loop.Submit(func() {
		if err := a.coordinator.Show(ctx); err != nil {
			fail(fmt.Errorf("failed to show history: %w", err))
			return
		}
		a.logger.Info("History view shown.", "rows", a.table.Rows())
	}); err != nil {
		return fmt.Errorf("failed to schedule startup: %w", err)
	}

	var wg sync.WaitGroup
	if a.feed != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.feed.Connect(ctx); err != nil {
				a.logger.Error("Daemon feed unavailable; continuing offline.", "error", err)
			}
		}()
	}

	a.logger.Info("Heartbeat running.", "period", a.settings.Pump.Period, "yield", a.settings.Pump.Yield)
	loopErr := a.loop.Run(ctx)

	cancel()
	wg.Wait()
	a.coordinator.Close(ctx)
	a.heartbeat.Shutdown(ctx)
	if a.feed != nil {
		_ = a.feed.Close()
	}

	if loopErr != nil {
		return fmt.Errorf("run loop failed: %w", loopErr)
	}
	a.logger.Debug("App.Run method finished.")
	return startErr
}
