package rates

import (
	"context"
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

func TestClient_GetRate_PrimarySucceeds(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "eur", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin":{"eur":20000}}`))
	}))
	defer primary.Close()

	fallbackCalled := false
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackCalled = true
	}))
	defer fallback.Close()

	client := NewClient(primary.URL, fallback.URL, time.Second, testLogger())

	rate, err := client.GetRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20000.0, rate)
	assert.False(t, fallbackCalled, "fallback must not be queried when the primary succeeds")
}

func TestClient_GetRate_FallsBackToKraken(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "XBTEUR", r.URL.Query().Get("pair"))
		w.Write([]byte(`{"error":[],"result":{"XXBTZEUR":{"c":["19500.5","1.0"]}}}`))
	}))
	defer fallback.Close()

	client := NewClient(primary.URL, fallback.URL, time.Second, testLogger())

	rate, err := client.GetRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 19500.5, rate)
}

func TestClient_GetRate_AllSourcesFail(t *testing.T) {
	tests := []struct {
		name            string
		fallbackHandler http.HandlerFunc
	}{
		{
			name: "fallback unreachable status",
			fallbackHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "fallback response missing expected fields",
			fallbackHandler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":[],"result":{}}`))
			},
		},
		{
			name: "fallback quote not a number",
			fallbackHandler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":[],"result":{"XXBTZEUR":{"c":["not-a-number"]}}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer primary.Close()

			fallback := httptest.NewServer(tt.fallbackHandler)
			defer fallback.Close()

			client := NewClient(primary.URL, fallback.URL, time.Second, testLogger())

			_, err := client.GetRate(context.Background())
			assert.ErrorIs(t, err, ErrRateUnavailable)
		})
	}
}

func TestClient_GetRate_PrimaryMalformedFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dogecoin":{"eur":1}}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":[],"result":{"XXBTZEUR":{"c":["21000"]}}}`))
	}))
	defer fallback.Close()

	client := NewClient(primary.URL, fallback.URL, time.Second, testLogger())

	rate, err := client.GetRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21000.0, rate)
}
