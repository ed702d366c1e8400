// Package feed connects to a wallet daemon over socket.io and replays its
// events into the local wallet and network bus.
package feed

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/wallet"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultConnectTimeout bounds how long Connect waits for the handshake.
const DefaultConnectTimeout = 15 * time.Second

// ErrNotConnected is returned by operations that need a live socket.
var ErrNotConnected = errors.New("feed is not connected")

// Config describes the daemon endpoint.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Ledger receives decoded transactions.
type Ledger interface {
	AddTransaction(tx wallet.Transaction) bool
	SetHistory(txs []wallet.Transaction)
	SetTip(height int32)
	SetLabel(hash chainhash.Hash, label string)
}

// Client forwards daemon events to a wallet.Network.
type Client struct {
	cfg     Config
	ctx     context.Context
	ledger  Ledger
	network *wallet.Network
	io      *socket.Socket
}

// New creates a disconnected client.
func New(ctx context.Context, cfg Config, ledger Ledger, network *wallet.Network) *Client {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return &Client{
		cfg:     cfg,
		ctx:     ctxlog.With(ctx, "component", "feed", "url", cfg.URL),
		ledger:  ledger,
		network: network,
	}
}

// Connect dials the daemon and subscribes to every wallet event. It blocks
// until the socket connects, fails, times out or ctx is done.
func (c *Client) Connect(ctx context.Context) error {
	logger := ctxlog.FromContext(c.ctx)
	logger.Info("Connecting to daemon feed...")

	parsedURL, err := url.Parse(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse feed URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if c.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(c.cfg.Namespace, opts)

	for _, event := range wallet.Events {
		io.On(types.EventName(event), func(args ...any) {
			if err := c.handle(event, args...); err != nil {
				logger.Warn("Dropped malformed feed event.", "event", event, "error", err)
			}
		})
	}

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := firstError(errs)
		if err == nil {
			err = errors.New("unknown connect error")
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
		c.io = io
		return nil
	case <-ctx.Done():
		io.Disconnect()
		return fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(c.cfg.ConnectTimeout):
		io.Disconnect()
		return fmt.Errorf("timed out after %v waiting for socket.io connection", c.cfg.ConnectTimeout)
	}
}

// Close disconnects the socket. It is safe to call on an unconnected client.
func (c *Client) Close() error {
	if c.io == nil {
		return ErrNotConnected
	}
	ctxlog.FromContext(c.ctx).Info("Disconnecting daemon feed", "sid", c.io.Id())
	c.io.Disconnect()
	c.io = nil
	return nil
}

// txPayload is the wire shape of a transaction in on_history and
// new_transaction events.
type txPayload struct {
	TxHash    string `json:"tx_hash"`
	Height    int32  `json:"height"`
	Conf      int32  `json:"conf"`
	Timestamp int64  `json:"timestamp"`
	Value     int64  `json:"value"`
	Label     string `json:"label"`
}

func (p txPayload) transaction() (wallet.Transaction, error) {
	hash, err := chainhash.NewHashFromStr(p.TxHash)
	if err != nil {
		return wallet.Transaction{}, fmt.Errorf("invalid tx_hash %q: %w", p.TxHash, err)
	}
	if p.Value > int64(btcutil.MaxSatoshi) || p.Value < -int64(btcutil.MaxSatoshi) {
		return wallet.Transaction{}, fmt.Errorf("value %d for %s exceeds %d satoshi", p.Value, p.TxHash, int64(btcutil.MaxSatoshi))
	}
	tx := wallet.Transaction{
		Hash:   *hash,
		Height: p.Height,
		Value:  btcutil.Amount(p.Value),
	}
	if p.Timestamp > 0 {
		tx.Timestamp = time.Unix(p.Timestamp, 0).UTC()
	}
	return tx, nil
}

// tip derives the chain height implied by a mined transaction's confirmations.
func (p txPayload) tip() int32 {
	if p.Height <= 0 || p.Conf <= 0 {
		return 0
	}
	return p.Height + p.Conf - 1
}

// handle applies one daemon event to the ledger and re-triggers it on the
// network bus.
func (c *Client) handle(event string, args ...any) error {
	switch event {
	case wallet.EventOnHistory:
		if len(args) > 0 {
			var payloads []txPayload
			if err := decode(args[0], &payloads); err != nil {
				return err
			}
			txs := make([]wallet.Transaction, 0, len(payloads))
			var tip int32
			for _, p := range payloads {
				tx, err := p.transaction()
				if err != nil {
					return err
				}
				txs = append(txs, tx)
				tip = max(tip, p.tip())
			}
			c.ledger.SetHistory(txs)
			c.applyMeta(payloads, tip)
		}
	case wallet.EventNewTransaction:
		if len(args) == 0 {
			return fmt.Errorf("%s: missing payload", event)
		}
		var p txPayload
		if err := decode(args[0], &p); err != nil {
			return err
		}
		tx, err := p.transaction()
		if err != nil {
			return err
		}
		c.ledger.AddTransaction(tx)
		c.applyMeta([]txPayload{p}, p.tip())
	}

	n := c.network.Trigger(event, args...)
	ctxlog.FromContext(c.ctx).Debug("Forwarded feed event.", "event", event, "subscribers", n)
	return nil
}

func (c *Client) applyMeta(payloads []txPayload, tip int32) {
	for _, p := range payloads {
		if p.Label == "" {
			continue
		}
		if hash, err := chainhash.NewHashFromStr(p.TxHash); err == nil {
			c.ledger.SetLabel(*hash, p.Label)
		}
	}
	if tip > 0 {
		c.ledger.SetTip(tip)
	}
}

// decode converts a socket.io argument, already parsed into maps and slices,
// into a typed payload.
func decode(arg any, out any) error {
	raw, err := json.Marshal(arg)
	if err != nil {
		return fmt.Errorf("failed to re-encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

func firstError(args []any) error {
	if len(args) == 0 {
		return nil
	}
	err, _ := args[0].(error)
	return err
}
