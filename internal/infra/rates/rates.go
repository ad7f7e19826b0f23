package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrRateUnavailable signals that neither rate source produced a usable quote.
// Order creation cannot proceed without a rate, so callers treat this as fatal
// for the request at hand.
var ErrRateUnavailable = errors.New("exchange rate unavailable from all sources")

type ClientInterface interface {
	// GetRate returns the current fiat price of one BTC.
	GetRate(ctx context.Context) (float64, error)
}

// Client fetches the BTC/EUR rate from CoinGecko, falling back to the Kraken
// public ticker when the primary source fails. Every call re-fetches; callers
// that want caching layer it on top.
type Client struct {
	primaryURL  string
	fallbackURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

var _ ClientInterface = (*Client)(nil)

func NewClient(primaryURL, fallbackURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

func (c *Client) GetRate(ctx context.Context) (float64, error) {
	rate, err := c.fromCoinGecko(ctx)
	if err == nil {
		c.logger.Info("btc rate from coingecko", "rate", rate)
		return rate, nil
	}
	c.logger.Warn("primary rate source failed, trying fallback", "error", err)

	rate, err = c.fromKraken(ctx)
	if err != nil {
		c.logger.Error("all rate sources failed", "error", err)
		return 0, ErrRateUnavailable
	}
	c.logger.Info("btc rate from kraken", "rate", rate)
	return rate, nil
}

func (c *Client) fromCoinGecko(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.primaryURL, nil)
	if err != nil {
		return 0, err
	}
	values := url.Values{}
	values.Set("ids", "bitcoin")
	values.Set("vs_currencies", "eur")
	req.URL.RawQuery = values.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("coingecko decode: %w", err)
	}
	rate, ok := payload["bitcoin"]["eur"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("coingecko response missing bitcoin/eur price")
	}
	return rate, nil
}

type krakenResponse struct {
	Error  []string `json:"error"`
	Result map[string]struct {
		C []string `json:"c"`
	} `json:"result"`
}

func (c *Client) fromKraken(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fallbackURL, nil)
	if err != nil {
		return 0, err
	}
	values := url.Values{}
	values.Set("pair", "XBTEUR")
	req.URL.RawQuery = values.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("kraken returned status %d", resp.StatusCode)
	}

	var payload krakenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("kraken decode: %w", err)
	}
	if len(payload.Error) > 0 {
		return 0, fmt.Errorf("kraken error: %v", payload.Error)
	}
	ticker, ok := payload.Result["XXBTZEUR"]
	if !ok || len(ticker.C) == 0 {
		return 0, fmt.Errorf("kraken response missing XXBTZEUR ticker")
	}
	rate, err := strconv.ParseFloat(ticker.C[0], 64)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("kraken quote invalid: %q", ticker.C[0])
	}
	return rate, nil
}
