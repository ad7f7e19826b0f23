package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcutil"
)

type ClientInterface interface {
	// ReceivedAmount returns the total value ever sent to the address, summed
	// over outputs whose destination equals the queried address exactly.
	ReceivedAmount(ctx context.Context, address string) (btcutil.Amount, error)
}

// Client queries an esplora-style blockchain API. Errors are returned to the
// caller; the settlement engine decides how to interpret them.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ClientInterface = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type transaction struct {
	TxID string `json:"txid"`
	Vout []struct {
		ScriptPubKeyAddress string `json:"scriptpubkey_address"`
		Value               int64  `json:"value"`
	} `json:"vout"`
}

func (c *Client) ReceivedAmount(ctx context.Context, address string) (btcutil.Amount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/address/%s/txs", c.baseURL, address), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("chain api returned status %d for address %s", resp.StatusCode, address)
	}

	var txs []transaction
	if err := json.NewDecoder(resp.Body).Decode(&txs); err != nil {
		return 0, fmt.Errorf("chain api decode: %w", err)
	}

	var total btcutil.Amount
	for _, tx := range txs {
		for _, out := range tx.Vout {
			if out.ScriptPubKeyAddress == address {
				total += btcutil.Amount(out.Value)
			}
		}
	}

	c.logger.Info("address balance observed", "address", address, "received_btc", total.ToBTC(), "txs", len(txs))
	return total, nil
}
