package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(envWalletURL, "http://wallet:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "testnet", cfg.BitcoinNetwork)
	assert.Equal(t, 0.95, cfg.PaymentTolerance)
	assert.Equal(t, 60*time.Second, cfg.SweepInterval)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "wallet url required",
			env:  map[string]string{},
		},
		{
			name: "mysql driver requires dsn",
			env: map[string]string{
				envWalletURL: "http://wallet:9000",
				envDBDriver:  "mysql",
			},
		},
		{
			name: "unknown driver rejected",
			env: map[string]string{
				envWalletURL: "http://wallet:9000",
				envDBDriver:  "oracle",
			},
		},
		{
			name: "unknown network rejected",
			env: map[string]string{
				envWalletURL: "http://wallet:9000",
				envNetwork:   "regtest",
			},
		},
		{
			name: "tolerance above one rejected",
			env: map[string]string{
				envWalletURL: "http://wallet:9000",
				envTolerance: "1.5",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MySQL(t *testing.T) {
	t.Setenv(envWalletURL, "http://wallet:9000")
	t.Setenv(envDBDriver, "mysql")
	t.Setenv(envMySQLDSN, "user:pass@tcp(db:3306)/shop?parseTime=True")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "user:pass@tcp(db:3306)/shop?parseTime=True", cfg.MySQLDSN)
}
