package wallet

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
)

// HistoryItem is one row of a wallet's history: the transaction, where it sits
// in the chain, its effect on the wallet and the balance after it.
type HistoryItem struct {
	TxHash    chainhash.Hash
	Height    int32
	Conf      int32
	Timestamp time.Time
	Value     btcutil.Amount
	Balance   btcutil.Amount
}

// Source is the read side of a wallet used to render history.
type Source interface {
	// History returns the wallet's history, oldest first.
	History() []HistoryItem

	// TxStatus classifies a history item for display.
	TxStatus(item HistoryItem) (Status, string)

	// Label returns the user label of a transaction, or "".
	Label(hash chainhash.Hash) string
}
