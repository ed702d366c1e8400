package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/specialistvlad/heartbeat/internal/config"
	"github.com/specialistvlad/heartbeat/internal/hcl"
	"github.com/specialistvlad/heartbeat/internal/heartbeat"
	"github.com/specialistvlad/heartbeat/internal/pump"
	"github.com/specialistvlad/heartbeat/internal/testutil"
	"github.com/specialistvlad/heartbeat/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedSettings = `
pump {
  yield = "1ms"
}

display {
  title = "Test wallet"
}

transaction "0e3e2357e806b6cdb1f70b54c3a3a17b6714ee1f0e68bebb44a74b1efd512098" {
  height    = 100
  timestamp = "2018-03-01T12:34:56Z"
  value     = 1
  label     = "salary"
}
`

// staticLoader returns fixed settings, ignoring paths.
type staticLoader struct {
	settings *config.Settings
	err      error
}

func (l staticLoader) Load(_ context.Context, base *config.Settings, _ ...string) (*config.Settings, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.settings != nil {
		return l.settings, nil
	}
	return base, nil
}

func dur(d time.Duration) *time.Duration { return &d }

func newTestApp(t *testing.T, cfg Config) (*App, *testutil.SafeBuffer) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.hcl"), []byte(seedSettings), 0o644))
	cfg.ConfigPaths = []string{dir}
	cfg.LogLevel = "debug"

	out := &testutil.SafeBuffer{}
	a, err := NewApp(out, &cfg, hcl.NewLoader())
	require.NoError(t, err)
	t.Cleanup(func() {
		if os.Getenv("HEARTBEAT_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})
	return a, out
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{LogLevel: "info", LogFormat: "json", HealthcheckPort: 8080})
	require.NoError(t, err)

	_, err = NewConfig(Config{LogLevel: "loud", LogFormat: "xml", HealthcheckPort: -1, Period: dur(0), Yield: dur(-time.Second)})
	require.Error(t, err)
	for _, want := range []string{"log level", "log format", "healthcheck port", "period", "yield"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNewApp_AppliesOverrides(t *testing.T) {
	a, _ := newTestApp(t, Config{Period: dur(3 * time.Millisecond), Yield: dur(2 * time.Millisecond), FeedURL: "http://localhost:1/socket.io/"})

	s := a.Settings()
	assert.Equal(t, 3*time.Millisecond, s.Pump.Period)
	assert.Equal(t, 2*time.Millisecond, s.Pump.Yield)
	assert.True(t, s.Feed.Enabled())
	assert.NotNil(t, a.feed)
	assert.Equal(t, "Test wallet", s.Display.Title)

	h := a.Wallet().History()
	require.Len(t, h, 1)
	assert.Equal(t, "salary", a.Wallet().Label(h[0].TxHash))
}

func TestNewApp_ExplicitZeroYieldOverridesFile(t *testing.T) {
	a, _ := newTestApp(t, Config{})
	assert.Equal(t, time.Millisecond, a.Settings().Pump.Yield)

	a, _ = newTestApp(t, Config{Yield: dur(0)})
	assert.Zero(t, a.Settings().Pump.Yield)
	assert.Equal(t, pump.DefaultPeriod, a.Settings().Pump.Period)
}

func TestNewApp_LoaderAndValidationErrors(t *testing.T) {
	out := &testutil.SafeBuffer{}

	_, err := NewApp(out, &Config{}, staticLoader{err: assert.AnError})
	require.ErrorIs(t, err, assert.AnError)

	bad := config.Default()
	bad.Pump.Period = 0
	_, err = NewApp(out, &Config{}, staticLoader{settings: bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRun_RendersAndRefreshesThroughHeartbeat(t *testing.T) {
	prev := heartbeat.Default()
	a, out := newTestApp(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return a.Stats().Pump.Ticks > 0
	}, 5*time.Second, time.Millisecond)
	assert.Contains(t, out.String(), "== Test wallet (1) ==")
	assert.Same(t, a.Heartbeat(), heartbeat.Default())

	a.Wallet().AddTransaction(wallet.Transaction{Hash: chainhash.DoubleHashH([]byte("incoming")), Value: 5000})
	a.Network().Trigger(wallet.EventOnHistory)

	require.Eventually(t, func() bool {
		return a.Stats().View.Rows == 2
	}, 5*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.Contains(t, out.String(), "== Test wallet (2) ==")
	assert.False(t, a.Heartbeat().Running())
	assert.Equal(t, prev, heartbeat.Default())
}

func TestStatsHandler(t *testing.T) {
	a, _ := newTestApp(t, Config{})
	a.recordDiagnostic(pump.Diagnostic{Tick: 4, Err: assert.AnError})

	rec := httptest.NewRecorder()
	a.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "stopped", got.Pump.State)
	assert.EqualValues(t, 1, got.Diagnostics)
	assert.Contains(t, got.LastDiagnostic, "tick 4")
}

func TestHealthHandler(t *testing.T) {
	a, _ := newTestApp(t, Config{})

	rec := httptest.NewRecorder()
	a.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestNewLogger_Levels(t *testing.T) {
	out := &testutil.SafeBuffer{}
	logger := newLogger("warn", "json", out)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)
	assert.Contains(t, out.String(), `"app":"heartbeat"`)
}

func TestRun_StopsAfterRunFor(t *testing.T) {
	a, out := newTestApp(t, Config{RunFor: 50 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run ignored RunFor")
	}
	assert.Contains(t, out.String(), "History view shown.")
}
