package xrpl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Peersyst/xrpl-go/xrpl/queries/account"
	"github.com/Peersyst/xrpl-go/xrpl/queries/server"
	"github.com/Peersyst/xrpl-go/xrpl/transaction"
	txtypes "github.com/Peersyst/xrpl-go/xrpl/transaction/types"
	"github.com/Peersyst/xrpl-go/xrpl/wallet"
	"github.com/Peersyst/xrpl-go/xrpl/websocket"

	"github.com/jplaskett/trustsweep/service/metrics"
)

// WebsocketClient implements Client over an xrpl-go websocket connection.
// One connection is opened at startup, shared for the whole batch, and
// closed at exit. Callers own the handle explicitly; there is no package
// level singleton.
type WebsocketClient struct {
	ws       *websocket.Client
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string
	timeout  time.Duration
}

// Dial connects to an XRPL websocket endpoint (e.g. wss://xrplcluster.com).
// The timeout bounds every subsequent request on the connection; expiry is
// surfaced as a TransportError. If m is nil, no metrics are recorded.
func Dial(url string, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) (*WebsocketClient, error) {
	ws := websocket.NewClient(websocket.NewClientConfig().WithHost(url))
	if err := ws.Connect(); err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}

	logger.Info("connected to XRPL endpoint", "url", url, "timeout", timeout)

	return &WebsocketClient{
		ws:       ws,
		logger:   logger,
		metrics:  m,
		endpoint: url,
		timeout:  timeout,
	}, nil
}

// AccountLines queries the account's trustlines in ledger response order.
func (c *WebsocketClient) AccountLines(ctx context.Context, address string) ([]TrustLine, error) {
	var lines []TrustLine

	start := time.Now()
	err := c.call(ctx, "account_lines", func() error {
		res, err := c.ws.GetAccountLines(&account.LinesRequest{
			Account: txtypes.Address(address),
		})
		if err != nil {
			return err
		}
		lines = make([]TrustLine, 0, len(res.Lines))
		for _, l := range res.Lines {
			lines = append(lines, TrustLine{
				Account:  string(l.Account),
				Currency: l.Currency,
				Balance:  l.Balance,
			})
		}
		return nil
	})
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordLedgerCall("account_lines", status, c.endpoint, duration)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "account_lines query failed",
			"address", address,
			"error", err,
		)
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched account lines",
		"address", address,
		"count", len(lines),
	)
	return lines, nil
}

// SubmitPayment builds, autofills, signs, and submits an issued-currency
// Payment. Autofill and submission run against the shared connection;
// signing happens locally with the intent's resolved identity.
func (c *WebsocketClient) SubmitPayment(ctx context.Context, intent TransferIntent) (SubmitResult, error) {
	signer, ok := intent.Source.signer.(*wallet.Wallet)
	if !ok {
		return SubmitResult{}, fmt.Errorf("intent source %s carries no signing identity", intent.Source.Address)
	}

	payment := &transaction.Payment{
		BaseTx: transaction.BaseTx{
			Account: txtypes.Address(intent.Source.Address),
		},
		Amount: txtypes.IssuedCurrencyAmount{
			Issuer:   txtypes.Address(intent.Issuer),
			Currency: intent.Currency,
			Value:    intent.Amount.String(),
		},
		Destination: txtypes.Address(intent.Destination),
	}
	flatTx := payment.Flatten()

	if err := c.call(ctx, "autofill", func() error {
		return c.ws.Autofill(&flatTx)
	}); err != nil {
		return SubmitResult{}, err
	}

	blob, _, err := signer.Sign(flatTx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("sign payment from %s: %w", intent.Source.Address, err)
	}

	var result SubmitResult
	start := time.Now()
	err = c.call(ctx, "submit", func() error {
		res, err := c.ws.SubmitTxBlob(blob, false)
		if err != nil {
			return err
		}
		result = SubmitResult{
			EngineResult:        res.EngineResult,
			EngineResultMessage: res.EngineResultMessage,
		}
		return nil
	})
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordLedgerCall("submit", status, c.endpoint, duration)
	}
	if err != nil {
		return SubmitResult{}, err
	}

	c.logger.DebugContext(ctx, "submitted payment",
		"source", intent.Source.Address,
		"destination", intent.Destination,
		"amount", intent.Amount.String(),
		"engine_result", result.EngineResult,
	)
	return result, nil
}

// Ping verifies the connection with a server_info round trip.
func (c *WebsocketClient) Ping(ctx context.Context) error {
	return c.call(ctx, "server_info", func() error {
		_, err := c.ws.GetServerInfo(&server.InfoRequest{})
		return err
	})
}

// Close releases the websocket connection.
func (c *WebsocketClient) Close() error {
	if err := c.ws.Disconnect(); err != nil {
		return &TransportError{Op: "disconnect", Err: err}
	}
	c.logger.Info("XRPL connection closed", "url", c.endpoint)
	return nil
}

// call runs a blocking websocket request bounded by the configured timeout
// and the caller's context. Both expiry and request failure are reported as
// TransportError so the orchestrators can abort the batch.
func (c *WebsocketClient) call(ctx context.Context, op string, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		return nil
	case <-ctx.Done():
		return &TransportError{Op: op, Err: ctx.Err()}
	}
}
