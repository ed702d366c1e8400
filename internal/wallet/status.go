package wallet

import (
	"fmt"
	"time"
)

// Status is the display class of a transaction.
type Status int

// Statuses below StatusConfirmed carry a fixed description. A confirmed
// transaction has status StatusConfirmed-1+min(conf, MaxConfStatus).
const (
	StatusUnconfirmedParent Status = iota
	StatusLowFee
	StatusUnconfirmed
	StatusNotVerified
	StatusConfirmed
)

// MaxConfStatus caps the confirmation count folded into a Status.
const MaxConfStatus = 6

// TimeLayout is used for the status text of confirmed transactions.
const TimeLayout = "2006-01-02 15:04"

var statusText = [...]string{
	StatusUnconfirmedParent: "Unconfirmed parent",
	StatusLowFee:            "Low fee",
	StatusUnconfirmed:       "Unconfirmed",
	StatusNotVerified:       "Not Verified",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s >= 0 && int(s) < len(statusText) {
		return statusText[s]
	}
	if s == StatusConfirmed {
		return "1 confirmation"
	}
	if s > StatusConfirmed {
		return fmt.Sprintf("%d confirmations", int(s-StatusNotVerified))
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ClassifyTx implements the wallet's status rules. known reports whether the
// wallet holds the raw transaction; unknown unconfirmed transactions are
// shown as "unknown".
func ClassifyTx(known bool, height, conf int32, timestamp time.Time) (Status, string) {
	if conf <= 0 {
		if !known {
			return StatusNotVerified, "unknown"
		}
		var st Status
		switch {
		case height < 0:
			st = StatusUnconfirmedParent
		case height == 0:
			st = StatusUnconfirmed
		default:
			st = StatusNotVerified
		}
		return st, st.String()
	}

	st := StatusNotVerified + Status(min(conf, MaxConfStatus))
	if timestamp.IsZero() {
		return st, "unknown"
	}
	return st, timestamp.Format(TimeLayout)
}
