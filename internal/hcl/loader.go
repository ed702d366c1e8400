package hcl

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/heartbeat/internal/config"
	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and overlays the blocks it finds onto
// a copy of base. Later files win for singleton blocks; transaction blocks
// accumulate.
func (l *Loader) Load(ctx context.Context, base *config.Settings, paths ...string) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	s := *base
	s.Transactions = append([]config.Transaction(nil), base.Transactions...)

	hclFiles, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.apply(ctx, &s, &root); err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "transactions", len(s.Transactions))
	return &s, nil
}

// apply merges one decoded file into s.
func (l *Loader) apply(ctx context.Context, s *config.Settings, root *fileRoot) error {
	if p := root.Pump; p != nil {
		if isExprDefined(ctx, p.Period, "period") {
			d, err := decodeDuration(p.Period, nil)
			if err != nil {
				return fmt.Errorf("pump.period: %w", err)
			}
			s.Pump.Period = d
		}
		if isExprDefined(ctx, p.Yield, "yield") {
			d, err := decodeDuration(p.Yield, nil)
			if err != nil {
				return fmt.Errorf("pump.yield: %w", err)
			}
			s.Pump.Yield = d
		}
	}

	if d := root.Display; d != nil {
		if d.Title != nil {
			s.Display.Title = *d.Title
		}
		if d.NumZeros != nil {
			s.Display.NumZeros = *d.NumZeros
		}
		if d.DecimalPoint != nil {
			s.Display.DecimalPoint = *d.DecimalPoint
		}
	}

	if f := root.Feed; f != nil {
		s.Feed.URL = f.URL
		if f.Namespace != nil {
			s.Feed.Namespace = *f.Namespace
		}
		if f.InsecureSkipVerify != nil {
			s.Feed.InsecureSkipVerify = *f.InsecureSkipVerify
		}
		if isExprDefined(ctx, f.ConnectTimeout, "connect_timeout") {
			d, err := decodeDuration(f.ConnectTimeout, nil)
			if err != nil {
				return fmt.Errorf("feed.connect_timeout: %w", err)
			}
			s.Feed.ConnectTimeout = d
		}
	}

	for _, tb := range root.Transactions {
		tx, err := l.translateTransaction(ctx, tb)
		if err != nil {
			return err
		}
		s.Transactions = append(s.Transactions, tx)
	}
	return nil
}

// translateTransaction converts a transaction block into the settings model.
func (l *Loader) translateTransaction(ctx context.Context, tb *transactionBlock) (config.Transaction, error) {
	hash, err := chainhash.NewHashFromStr(tb.Hash)
	if err != nil {
		return config.Transaction{}, fmt.Errorf("transaction %q: invalid hash: %w", tb.Hash, err)
	}
	tx := config.Transaction{
		Hash:   *hash,
		Height: tb.Height,
		Label:  tb.Label,
	}
	if tx.Value, err = decodeAmount(tb.Value, nil); err != nil {
		return config.Transaction{}, fmt.Errorf("transaction %q: value: %w", tb.Hash, err)
	}
	if isExprDefined(ctx, tb.Timestamp, "timestamp") {
		if tx.Timestamp, err = decodeTimestamp(tb.Timestamp, nil); err != nil {
			return config.Transaction{}, fmt.Errorf("transaction %q: timestamp: %w", tb.Hash, err)
		}
	}
	return tx, nil
}
