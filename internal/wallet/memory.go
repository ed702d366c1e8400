package wallet

import (
	"sort"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
)

// Transaction is a wallet transaction as fed into Memory: its id, the block
// height it was mined at (0 for mempool, negative for an unconfirmed parent),
// the block time and its net effect on the wallet.
type Transaction struct {
	Hash      chainhash.Hash
	Height    int32
	Timestamp time.Time
	Value     btcutil.Amount
}

// Memory is a thread-safe, in-memory Source.
type Memory struct {
	mu     sync.RWMutex
	tip    int32
	txs    map[chainhash.Hash]Transaction
	labels map[chainhash.Hash]string
}

// NewMemory creates an empty wallet.
func NewMemory() *Memory {
	return &Memory{
		txs:    make(map[chainhash.Hash]Transaction),
		labels: make(map[chainhash.Hash]string),
	}
}

// SetTip records the current chain height used to compute confirmations.
func (m *Memory) SetTip(height int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tip = height
}

// Tip returns the current chain height.
func (m *Memory) Tip() int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tip
}

// AddTransaction inserts or replaces a transaction. It reports whether the
// transaction was new.
func (m *Memory) AddTransaction(tx Transaction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.txs[tx.Hash]
	m.txs[tx.Hash] = tx
	if tx.Height > m.tip {
		m.tip = tx.Height
	}
	return !existed
}

// SetHistory replaces every transaction.
func (m *Memory) SetHistory(txs []Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = make(map[chainhash.Hash]Transaction, len(txs))
	for _, tx := range txs {
		m.txs[tx.Hash] = tx
		if tx.Height > m.tip {
			m.tip = tx.Height
		}
	}
}

// SetLabel attaches a user label to a transaction.
func (m *Memory) SetLabel(hash chainhash.Hash, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if label == "" {
		delete(m.labels, hash)
		return
	}
	m.labels[hash] = label
}

// Label implements Source.
func (m *Memory) Label(hash chainhash.Hash) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.labels[hash]
}

// Balance returns the sum of all transaction values.
func (m *Memory) Balance() btcutil.Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var bal btcutil.Amount
	for _, tx := range m.txs {
		bal += tx.Value
	}
	return bal
}

// History implements Source. Mined transactions come first in height order,
// then unconfirmed ones; each item carries the balance after it.
func (m *Memory) History() []HistoryItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]Transaction, 0, len(m.txs))
	for _, tx := range m.txs {
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool {
		ki, kj := sortHeight(txs[i].Height), sortHeight(txs[j].Height)
		if ki != kj {
			return ki < kj
		}
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.Before(txs[j].Timestamp)
		}
		return txs[i].Hash.String() < txs[j].Hash.String()
	})

	items := make([]HistoryItem, 0, len(txs))
	var bal btcutil.Amount
	for _, tx := range txs {
		bal += tx.Value
		items = append(items, HistoryItem{
			TxHash:    tx.Hash,
			Height:    tx.Height,
			Conf:      m.confirmations(tx.Height),
			Timestamp: tx.Timestamp,
			Value:     tx.Value,
			Balance:   bal,
		})
	}
	return items
}

// TxStatus implements Source.
func (m *Memory) TxStatus(item HistoryItem) (Status, string) {
	m.mu.RLock()
	_, known := m.txs[item.TxHash]
	m.mu.RUnlock()
	return ClassifyTx(known, item.Height, item.Conf, item.Timestamp)
}

func (m *Memory) confirmations(height int32) int32 {
	if height <= 0 || height > m.tip {
		return 0
	}
	return m.tip - height + 1
}

// sortHeight places unconfirmed transactions after every mined one.
func sortHeight(h int32) int64 {
	if h > 0 {
		return int64(h)
	}
	return 1 << 40
}
