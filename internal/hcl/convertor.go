package hcl

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/btcsuite/btcutil"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// satSuffix marks an amount string given in satoshis rather than coins.
const satSuffix = "sat"

// isExprDefined checks if an HCL expression was actually present in the source
// code. gohcl populates omitted optional expression fields with zero-width
// placeholders, so a nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}

// evalString evaluates expr and converts the result to a Go string.
func evalString(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: %w", expr.Range(), err)
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("%s: value must be known and not null", expr.Range())
	}
	var s string
	if err := gocty.FromCtyValue(val, &s); err != nil {
		return "", fmt.Errorf("%s: %w", expr.Range(), err)
	}
	return s, nil
}

// decodeDuration accepts a Go duration string ("20ms") or a bare number of
// milliseconds.
func decodeDuration(expr hcl.Expression, evalCtx *hcl.EvalContext) (time.Duration, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.Type() == cty.Number {
		var ms int64
		if err := gocty.FromCtyValue(val, &ms); err != nil {
			return 0, fmt.Errorf("%s: %w", expr.Range(), err)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	s, err := evalString(expr, evalCtx)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", expr.Range(), err)
	}
	return d, nil
}

// decodeTimestamp accepts an RFC 3339 string or Unix seconds.
func decodeTimestamp(expr hcl.Expression, evalCtx *hcl.EvalContext) (time.Time, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return time.Time{}, diags
	}
	if val.Type() == cty.Number {
		var secs int64
		if err := gocty.FromCtyValue(val, &secs); err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", expr.Range(), err)
		}
		return time.Unix(secs, 0).UTC(), nil
	}
	s, err := evalString(expr, evalCtx)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", expr.Range(), err)
	}
	return ts.UTC(), nil
}

// decodeAmount accepts a number of coins (0.5, -1.25) or a string with a
// "sat" suffix ("1500 sat").
func decodeAmount(expr hcl.Expression, evalCtx *hcl.EvalContext) (btcutil.Amount, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.Type() == cty.Number {
		f, _ := val.AsBigFloat().Float64()
		amt, err := btcutil.NewAmount(f)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", expr.Range(), err)
		}
		return amt, nil
	}
	s, err := evalString(expr, evalCtx)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, satSuffix) {
		return 0, fmt.Errorf("%s: amount %q must be a number of coins or end in %q", expr.Range(), s, satSuffix)
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(strings.TrimSuffix(s, satSuffix)), 10)
	if !ok || !n.IsInt64() {
		return 0, fmt.Errorf("%s: invalid satoshi amount %q", expr.Range(), s)
	}
	return btcutil.Amount(n.Int64()), nil
}
