// Package amount renders satoshi values the way the wallet's history view
// shows them.
package amount

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil"
)

// FieldWidth is the width whitespace-padded amounts are right-aligned to.
const FieldWidth = 15

// Options control Format.
type Options struct {
	// IsDiff prefixes positive values with "+".
	IsDiff bool
	// NumZeros is the minimum number of fractional digits shown.
	NumZeros int
	// DecimalPoint is the number of satoshi digits behind the decimal point.
	DecimalPoint int
	// Whitespaces pads the fraction to DecimalPoint digits and right-aligns
	// the result to FieldWidth.
	Whitespaces bool
}

// DefaultDecimalPoint shows whole coins.
const DefaultDecimalPoint = 8

// Format renders x. Trailing fractional zeros are dropped down to NumZeros
// digits; the decimal point is always present.
func Format(x btcutil.Amount, o Options) string {
	dp := o.DecimalPoint
	if dp < 0 {
		dp = 0
	}
	scale := uint64(1)
	for i := 0; i < dp; i++ {
		scale *= 10
	}

	// Unsigned so that the most negative amount keeps its magnitude.
	abs := uint64(x)
	if x < 0 {
		abs = -abs
	}

	integer := strconv.FormatUint(abs/scale, 10)
	switch {
	case x < 0:
		integer = "-" + integer
	case o.IsDiff:
		integer = "+" + integer
	}

	var fract string
	if dp > 0 {
		fract = fmt.Sprintf("%0*d", dp, abs%scale)
		fract = strings.TrimRight(fract, "0")
	}
	if len(fract) < o.NumZeros {
		fract += strings.Repeat("0", o.NumZeros-len(fract))
	}

	result := integer + "." + fract
	if o.Whitespaces {
		if pad := dp - len(fract); pad > 0 {
			result += strings.Repeat(" ", pad)
		}
		if pad := FieldWidth - len(result); pad > 0 {
			result = strings.Repeat(" ", pad) + result
		}
	}
	return result
}

// UnitName names the unit a decimal point setting displays, for a coin whose
// ticker is base.
func UnitName(base string, decimalPoint int) string {
	switch decimalPoint {
	case 8:
		return base
	case 5:
		return "m" + base
	case 2:
		return "bits"
	case 0:
		return "sats"
	default:
		return fmt.Sprintf("%s/1e%d", base, 8-decimalPoint)
	}
}

// FromUnit converts a value given in the unit selected by decimalPoint into
// satoshis, rounding to the nearest satoshi.
func FromUnit(v float64, decimalPoint int) (btcutil.Amount, error) {
	return btcutil.NewAmount(v / pow10(DefaultDecimalPoint-decimalPoint))
}

func pow10(n int) float64 {
	f := 1.0
	for i := 0; i < n; i++ {
		f *= 10
	}
	return f
}
