package wallet

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func walletDaemon(t *testing.T, address string, existing bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/wallets":
			var req createWalletRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "user_7_testnet_wallet", req.Name)
			assert.Equal(t, "testnet", req.Network)
			if existing {
				w.WriteHeader(http.StatusConflict)
				return
			}
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPost && r.URL.Path == "/wallets/user_7_testnet_wallet/keys":
			json.NewEncoder(w).Encode(newKeyResponse{Address: address})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_NewPaymentAddress(t *testing.T) {
	srv := walletDaemon(t, "mxVFsFW5N4mu1HPkxPttorvocvzeZ7KZyk", false)
	defer srv.Close()

	client := NewClient(srv.URL, "testnet", time.Second, testLogger())

	addr, err := client.NewPaymentAddress(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "mxVFsFW5N4mu1HPkxPttorvocvzeZ7KZyk", addr)
}

func TestClient_NewPaymentAddress_ReusesExistingWallet(t *testing.T) {
	srv := walletDaemon(t, "n2eMqTT929pb1RDNuqEnxdaLau1rxy3efi", true)
	defer srv.Close()

	client := NewClient(srv.URL, "testnet", time.Second, testLogger())

	addr, err := client.NewPaymentAddress(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "n2eMqTT929pb1RDNuqEnxdaLau1rxy3efi", addr)
}

func TestClient_NewPaymentAddress_OffNetworkAddressIsNotFatal(t *testing.T) {
	// A mainnet-looking address from a testnet wallet is logged, not rejected.
	srv := walletDaemon(t, "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", false)
	defer srv.Close()

	client := NewClient(srv.URL, "testnet", time.Second, testLogger())

	addr, err := client.NewPaymentAddress(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", addr)
}

func TestClient_NewPaymentAddress_DaemonFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "testnet", time.Second, testLogger())

	_, err := client.NewPaymentAddress(context.Background(), 7)
	assert.ErrorIs(t, err, ErrWalletUnavailable)
}

func TestAddressMatchesNetwork(t *testing.T) {
	tests := []struct {
		name    string
		address string
		network string
		want    bool
	}{
		{name: "testnet legacy m", address: "mxVFsFW5N4mu1HPkxPttorvocvzeZ7KZyk", network: "testnet", want: true},
		{name: "testnet legacy n", address: "n2eMqTT929pb1RDNuqEnxdaLau1rxy3efi", network: "testnet", want: true},
		{name: "testnet p2sh", address: "2N3oefVeg6stiTb5Kh3ozCSkaqmx91FDbsm", network: "testnet", want: true},
		{name: "testnet bech32", address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", network: "testnet", want: true},
		{name: "mainnet address on testnet", address: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", network: "testnet", want: false},
		{name: "mainnet legacy", address: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", network: "mainnet", want: true},
		{name: "mainnet p2sh", address: "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", network: "mainnet", want: true},
		{name: "mainnet bech32", address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", network: "mainnet", want: true},
		{name: "testnet address on mainnet", address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", network: "mainnet", want: false},
		{name: "garbage bech32 on testnet", address: "tb1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq", network: "testnet", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, addressMatchesNetwork(tt.address, tt.network))
		})
	}
}
