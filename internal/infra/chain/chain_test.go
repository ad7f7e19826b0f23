package chain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btcsuite/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_ReceivedAmount_SumsOnlyMatchingOutputs(t *testing.T) {
	const addr = "tb1qpaymentaddress"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf("/address/%s/txs", addr), r.URL.Path)
		w.Write([]byte(`[
			{"txid":"aa","vout":[
				{"scriptpubkey_address":"tb1qpaymentaddress","value":300000},
				{"scriptpubkey_address":"tb1qchangeaddress","value":900000}
			]},
			{"txid":"bb","vout":[
				{"scriptpubkey_address":"tb1qpaymentaddress","value":175000}
			]},
			{"txid":"cc","vout":[
				{"scriptpubkey_address":"tb1qsomeoneelse","value":50000}
			]}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger())

	total, err := client.ReceivedAmount(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(475000), total)
}

func TestClient_ReceivedAmount_NoTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger())

	total, err := client.ReceivedAmount(context.Background(), "tb1qempty")
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(0), total)
}

func TestClient_ReceivedAmount_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "api error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL, time.Second, testLogger())

			_, err := client.ReceivedAmount(context.Background(), "tb1qaddr")
			assert.Error(t, err)
		})
	}
}
