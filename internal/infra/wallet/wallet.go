package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/bech32"
)

// ErrWalletUnavailable signals that the wallet daemon could not create or open
// the user's wallet. No payment address means no order, so callers propagate
// this as fatal for the request.
var ErrWalletUnavailable = errors.New("bitcoin wallet unavailable")

type ClientInterface interface {
	NewPaymentAddress(ctx context.Context, userID int64) (string, error)
}

// Client issues receiving addresses from an external wallet daemon. The wallet
// for a user is named deterministically from the user id and network, so
// repeated calls reuse the same wallet while each call derives a fresh key.
type Client struct {
	baseURL    string
	network    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ClientInterface = (*Client)(nil)

func NewClient(baseURL, network string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		network:    network,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) walletName(userID int64) string {
	return fmt.Sprintf("user_%d_%s_wallet", userID, c.network)
}

type createWalletRequest struct {
	Name    string `json:"name"`
	Network string `json:"network"`
}

type newKeyResponse struct {
	Address string `json:"address"`
}

func (c *Client) NewPaymentAddress(ctx context.Context, userID int64) (string, error) {
	name := c.walletName(userID)
	if err := c.createOrOpen(ctx, name); err != nil {
		c.logger.Error("failed to create or open wallet", "wallet", name, "network", c.network, "error", err)
		return "", fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/wallets/%s/keys", c.baseURL, name), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: wallet daemon returned status %d", ErrWalletUnavailable, resp.StatusCode)
	}

	var key newKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&key); err != nil || key.Address == "" {
		return "", fmt.Errorf("%w: invalid key response", ErrWalletUnavailable)
	}

	// An off-network address is an integrity smell, not a hard failure.
	if !addressMatchesNetwork(key.Address, c.network) {
		c.logger.Warn("generated address does not look like a standard address for the configured network",
			"address", key.Address, "network", c.network)
	}

	c.logger.Info("issued new payment address", "wallet", name, "address", key.Address)
	return key.Address, nil
}

func (c *Client) createOrOpen(ctx context.Context, name string) error {
	body, err := json.Marshal(createWalletRequest{Name: name, Network: c.network})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/wallets", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// 409 means the wallet already exists, which is the reuse path.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("wallet daemon returned status %d", resp.StatusCode)
	}
	return nil
}

func addressMatchesNetwork(address, network string) bool {
	switch network {
	case "testnet":
		if strings.HasPrefix(address, "tb1") {
			return bech32Valid(address)
		}
		return strings.HasPrefix(address, "m") || strings.HasPrefix(address, "n") || strings.HasPrefix(address, "2")
	case "mainnet":
		if strings.HasPrefix(address, "bc1") {
			return bech32Valid(address)
		}
		return strings.HasPrefix(address, "1") || strings.HasPrefix(address, "3")
	}
	return false
}

func bech32Valid(address string) bool {
	_, _, err := bech32.Decode(address)
	return err == nil
}
