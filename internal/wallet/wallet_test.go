package wallet

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txHash(s string) chainhash.Hash {
	return chainhash.DoubleHashH([]byte(s))
}

func TestClassifyTx(t *testing.T) {
	ts := time.Date(2018, 3, 1, 12, 34, 56, 0, time.UTC)

	testCases := []struct {
		name       string
		known      bool
		height     int32
		conf       int32
		timestamp  time.Time
		wantStatus Status
		wantText   string
	}{
		{name: "unknown unconfirmed", known: false, height: 0, conf: 0, wantStatus: StatusNotVerified, wantText: "unknown"},
		{name: "unconfirmed parent", known: true, height: -1, conf: 0, wantStatus: StatusUnconfirmedParent, wantText: "Unconfirmed parent"},
		{name: "mempool", known: true, height: 0, conf: 0, wantStatus: StatusUnconfirmed, wantText: "Unconfirmed"},
		{name: "mined not verified", known: true, height: 500, conf: 0, wantStatus: StatusNotVerified, wantText: "Not Verified"},
		{name: "one confirmation", known: true, height: 500, conf: 1, timestamp: ts, wantStatus: 4, wantText: "2018-03-01 12:34"},
		{name: "deep", known: true, height: 10, conf: 1000, timestamp: ts, wantStatus: 9, wantText: "2018-03-01 12:34"},
		{name: "confirmed without time", known: true, height: 10, conf: 2, wantStatus: 5, wantText: "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st, text := ClassifyTx(tc.known, tc.height, tc.conf, tc.timestamp)
			assert.Equal(t, tc.wantStatus, st)
			assert.Equal(t, tc.wantText, text)
		})
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Unconfirmed", StatusUnconfirmed.String())
	assert.Equal(t, "1 confirmation", StatusConfirmed.String())
	assert.Equal(t, "2 confirmations", (StatusConfirmed + 1).String())
	assert.Equal(t, "6 confirmations", (StatusNotVerified + MaxConfStatus).String())
	assert.Equal(t, "Status(-1)", Status(-1).String())
}

func TestMemory_HistoryOrderAndBalances(t *testing.T) {
	m := NewMemory()
	t0 := time.Unix(1_520_000_000, 0)

	m.AddTransaction(Transaction{Hash: txHash("mempool"), Height: 0, Value: -btcutil.Amount(20_000)})
	m.AddTransaction(Transaction{Hash: txHash("second"), Height: 102, Timestamp: t0.Add(time.Hour), Value: 50_000})
	m.AddTransaction(Transaction{Hash: txHash("first"), Height: 100, Timestamp: t0, Value: 100_000})
	m.SetTip(105)

	h := m.History()
	require.Len(t, h, 3)

	assert.Equal(t, txHash("first"), h[0].TxHash)
	assert.EqualValues(t, 6, h[0].Conf)
	assert.Equal(t, btcutil.Amount(100_000), h[0].Balance)

	assert.Equal(t, txHash("second"), h[1].TxHash)
	assert.EqualValues(t, 4, h[1].Conf)
	assert.Equal(t, btcutil.Amount(150_000), h[1].Balance)

	assert.Equal(t, txHash("mempool"), h[2].TxHash)
	assert.EqualValues(t, 0, h[2].Conf)
	assert.Equal(t, btcutil.Amount(130_000), h[2].Balance)

	assert.Equal(t, btcutil.Amount(130_000), m.Balance())
}

func TestMemory_AddTransactionReplaces(t *testing.T) {
	m := NewMemory()
	tx := Transaction{Hash: txHash("a"), Height: 0, Value: 10}

	assert.True(t, m.AddTransaction(tx))
	tx.Height = 7
	assert.False(t, m.AddTransaction(tx))

	h := m.History()
	require.Len(t, h, 1)
	assert.EqualValues(t, 7, h[0].Height)
	assert.EqualValues(t, 7, m.Tip(), "mined transactions advance the tip")
	assert.EqualValues(t, 1, h[0].Conf)
}

func TestMemory_SetHistoryAndLabels(t *testing.T) {
	m := NewMemory()
	m.AddTransaction(Transaction{Hash: txHash("old"), Value: 1})
	m.SetHistory([]Transaction{{Hash: txHash("new"), Height: 3, Value: 2}})

	h := m.History()
	require.Len(t, h, 1)
	assert.Equal(t, txHash("new"), h[0].TxHash)

	m.SetLabel(txHash("new"), "coffee")
	assert.Equal(t, "coffee", m.Label(txHash("new")))
	m.SetLabel(txHash("new"), "")
	assert.Empty(t, m.Label(txHash("new")))
}

func TestMemory_TxStatus(t *testing.T) {
	m := NewMemory()
	m.AddTransaction(Transaction{Hash: txHash("a"), Height: 0, Value: 1})

	st, text := m.TxStatus(m.History()[0])
	assert.Equal(t, StatusUnconfirmed, st)
	assert.Equal(t, "Unconfirmed", text)

	st, text = m.TxStatus(HistoryItem{TxHash: txHash("missing")})
	assert.Equal(t, StatusNotVerified, st)
	assert.Equal(t, "unknown", text)
}

func TestNetwork_DispatchesToInterestedSubscribers(t *testing.T) {
	n := NewNetwork()
	var got []string

	n.RegisterCallback(func(event string, args ...any) { got = append(got, "history:"+event) }, EventOnHistory)
	sub := n.RegisterCallback(func(event string, args ...any) {
		got = append(got, "net:"+event)
		require.Len(t, args, 1)
	}, EventUpdated, EventStatus)

	assert.Equal(t, 1, n.Trigger(EventUpdated, "x"))
	assert.Equal(t, 1, n.Trigger(EventOnHistory))
	assert.Equal(t, 0, n.Trigger("unexpected"))

	require.True(t, n.Unregister(sub))
	assert.False(t, n.Unregister(sub))
	assert.Equal(t, 0, n.Trigger(EventStatus, "y"))

	assert.Equal(t, []string{"net:updated", "history:on_history"}, got)
}
