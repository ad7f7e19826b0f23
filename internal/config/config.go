package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration for the shop service.
type Config struct {
	ListenAddress string

	DBDriver   string // "mysql" or "sqlite"
	MySQLDSN   string
	SQLitePath string

	RedisAddr string
	AMQPURL   string

	BotToken    string
	AdminChatID int64

	BitcoinNetwork   string
	PaymentTolerance float64
	SweepInterval    time.Duration
	HTTPTimeout      time.Duration

	RatePrimaryURL  string
	RateFallbackURL string
	ChainAPIURL     string
	WalletURL       string
}

const (
	envListen        = "SHOP_LISTEN"
	envDBDriver      = "SHOP_DB_DRIVER"
	envMySQLDSN      = "SHOP_MYSQL_DSN"
	envSQLitePath    = "SHOP_SQLITE_PATH"
	envRedisAddr     = "SHOP_REDIS_ADDR"
	envAMQPURL       = "SHOP_AMQP_URL"
	envBotToken      = "BOT_TOKEN"
	envAdminChatID   = "ADMIN_CHAT_ID"
	envNetwork       = "BITCOIN_NETWORK"
	envTolerance     = "PAYMENT_TOLERANCE_PERCENT"
	envSweepInterval = "SHOP_SWEEP_INTERVAL"
	envHTTPTimeout   = "HTTP_TIMEOUT"
	envRatePrimary   = "SHOP_RATE_PRIMARY_URL"
	envRateFallback  = "SHOP_RATE_FALLBACK_URL"
	envChainAPI      = "SHOP_CHAIN_API_URL"
	envWalletURL     = "SHOP_WALLET_URL"
)

// Load resolves configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddress:    getenvDefault(envListen, ":8080"),
		DBDriver:         strings.ToLower(getenvDefault(envDBDriver, "sqlite")),
		MySQLDSN:         os.Getenv(envMySQLDSN),
		SQLitePath:       getenvDefault(envSQLitePath, "shop.db"),
		RedisAddr:        getenvDefault(envRedisAddr, "localhost:6379"),
		AMQPURL:          os.Getenv(envAMQPURL),
		BotToken:         os.Getenv(envBotToken),
		AdminChatID:      parseInt64Default(envAdminChatID, 0),
		BitcoinNetwork:   getenvDefault(envNetwork, "testnet"),
		PaymentTolerance: parseFloatDefault(envTolerance, 0.95),
		SweepInterval:    parseDurationDefault(envSweepInterval, 60*time.Second),
		HTTPTimeout:      parseDurationDefault(envHTTPTimeout, 15*time.Second),
		RatePrimaryURL:   getenvDefault(envRatePrimary, "https://api.coingecko.com/api/v3/simple/price"),
		RateFallbackURL:  getenvDefault(envRateFallback, "https://api.kraken.com/0/public/Ticker"),
		ChainAPIURL:      getenvDefault(envChainAPI, "https://blockstream.info/testnet/api"),
		WalletURL:        os.Getenv(envWalletURL),
	}

	switch cfg.DBDriver {
	case "mysql":
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("%s is required when %s=mysql", envMySQLDSN, envDBDriver)
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unsupported %s %q", envDBDriver, cfg.DBDriver)
	}
	if cfg.BitcoinNetwork != "testnet" && cfg.BitcoinNetwork != "mainnet" {
		return nil, fmt.Errorf("unsupported %s %q", envNetwork, cfg.BitcoinNetwork)
	}
	if cfg.PaymentTolerance <= 0 || cfg.PaymentTolerance > 1 {
		return nil, fmt.Errorf("%s must be in (0, 1]", envTolerance)
	}
	if cfg.WalletURL == "" {
		return nil, fmt.Errorf("%s is required", envWalletURL)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func parseInt64Default(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return val
}

func parseFloatDefault(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return val
}

func parseDurationDefault(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
