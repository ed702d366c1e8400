package hcl

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/heartbeat/internal/config"
	"github.com/specialistvlad/heartbeat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const txA = "0e3e2357e806b6cdb1f70b54c3a3a17b6714ee1f0e68bebb44a74b1efd512098"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_FullFile(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := t.TempDir()
	writeFile(t, dir, "settings.hcl", `
pump {
  period = "2ms"
  yield  = 5
}

display {
  title         = "Wallet"
  num_zeros     = 2
  decimal_point = 8
}

feed {
  url                  = "https://daemon.local/socket.io/"
  namespace            = "/wallet"
  insecure_skip_verify = true
  connect_timeout      = "3s"
}

transaction "`+txA+`" {
  height    = 100
  timestamp = "2018-03-01T12:34:56Z"
  value     = 0.5
  label     = "coffee"
}
`)

	got, err := NewLoader().Load(ctx, config.Default(), dir)
	require.NoError(t, err)

	hash, err := chainhash.NewHashFromStr(txA)
	require.NoError(t, err)
	want := &config.Settings{
		Pump:    config.Pump{Period: 2 * time.Millisecond, Yield: 5 * time.Millisecond},
		Display: config.Display{Title: "Wallet", NumZeros: 2, DecimalPoint: 8},
		Feed: config.Feed{
			URL:                "https://daemon.local/socket.io/",
			Namespace:          "/wallet",
			InsecureSkipVerify: true,
			ConnectTimeout:     3 * time.Second,
		},
		Transactions: []config.Transaction{{
			Hash:      *hash,
			Height:    100,
			Timestamp: time.Date(2018, 3, 1, 12, 34, 56, 0, time.UTC),
			Value:     btcutil.Amount(50_000_000),
			Label:     "coffee",
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, got.Validate())
}

func TestLoad_OmittedAttributesKeepBase(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "partial.hcl", `
pump {
  yield = "0s"
}
`)

	base := config.Default()
	got, err := NewLoader().Load(ctx, base, path)
	require.NoError(t, err)

	assert.Equal(t, base.Pump.Period, got.Pump.Period)
	assert.Zero(t, got.Pump.Yield)
	assert.Equal(t, base.Display, got.Display)
	assert.Equal(t, 20*time.Millisecond, base.Pump.Yield, "base must not be mutated")
}

func TestLoad_LaterFilesOverrideAndTransactionsAccumulate(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `
display {
  title = "first"
}
transaction "`+txA+`" {
  value = "1500 sat"
}
`)
	writeFile(t, dir, "b/b.hcl", `
display {
  title = "second"
}
transaction "9b0fc92260312ce44e74ef369f5c66bbb85848f2eddd5a7a1cde251e54ccfdd5" {
  height    = -1
  timestamp = 1520000000
  value     = -0.25
}
`)
	writeFile(t, dir, "ignored.txt", "not hcl")

	got, err := NewLoader().Load(ctx, config.Default(), dir)
	require.NoError(t, err)

	assert.Equal(t, "second", got.Display.Title)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, btcutil.Amount(1500), got.Transactions[0].Value)
	assert.Equal(t, btcutil.Amount(-25_000_000), got.Transactions[1].Value)
	assert.EqualValues(t, -1, got.Transactions[1].Height)
	assert.Equal(t, time.Unix(1520000000, 0).UTC(), got.Transactions[1].Timestamp)
}

func TestLoad_MissingPathIsSkipped(t *testing.T) {
	ctx, _ := testutil.LogContext(t)

	got, err := NewLoader().Load(ctx, config.Default(), filepath.Join(t.TempDir(), "nope"))

	require.NoError(t, err)
	assert.Equal(t, config.Default(), got)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax", content: `pump {`, wantErr: "failed to parse HCL file"},
		{name: "unknown attribute", content: "pump {\n  speed = 1\n}\n", wantErr: "failed to decode HCL file"},
		{name: "bad duration", content: "pump {\n  period = \"fast\"\n}\n", wantErr: "pump.period"},
		{name: "bad hash", content: "transaction \"xyz\" {\n  value = 1\n}\n", wantErr: "invalid hash"},
		{name: "bad amount", content: "transaction \"" + txA + "\" {\n  value = \"lots\"\n}\n", wantErr: "must be a number of coins"},
		{name: "bad timestamp", content: "transaction \"" + txA + "\" {\n  value = 1\n  timestamp = \"yesterday\"\n}\n", wantErr: "timestamp"},
		{name: "missing feed url", content: "feed {\n}\n", wantErr: "failed to decode HCL file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.LogContext(t)
			path := writeFile(t, t.TempDir(), "bad.hcl", tc.content)

			_, err := NewLoader().Load(ctx, config.Default(), path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
