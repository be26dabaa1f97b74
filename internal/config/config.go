// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgconn"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Session modes.
const (
	AuthModeHeader = "header"
	AuthModeJWT    = "jwt"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	Store      string
	DBPath     string

	PostgresDSN string
	// PostgresHost and PostgresDatabase are parsed from PostgresDSN for logging;
	// the DSN itself may carry a password and is never logged.
	PostgresHost     string
	PostgresDatabase string

	// SecretKey keys the CVV/PIN hashes. nil when CARDLEDGER_SECRET_KEY is unset.
	SecretKey []byte

	InitialBalance    int64
	LockTimeout       time.Duration
	MaxAttempts       int
	VerifyCardSecrets bool

	AuthMode   string
	AuthHeader string
	JWTSecret  []byte
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: CARDLEDGER_LISTEN_ADDR (127.0.0.1:8080),
// CARDLEDGER_STORE (sqlite), CARDLEDGER_DB_PATH (cardledger.db),
// CARDLEDGER_INITIAL_BALANCE (32000), CARDLEDGER_LOCK_TIMEOUT (2s),
// CARDLEDGER_MAX_ATTEMPTS (4), CARDLEDGER_VERIFY_CARD_SECRETS (true),
// CARDLEDGER_AUTH_MODE (header), CARDLEDGER_AUTH_HEADER (X-Principal-ID).
// CARDLEDGER_POSTGRES_DSN is required for the postgres store and
// CARDLEDGER_JWT_SECRET for jwt auth.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:        "127.0.0.1:8080",
		Store:             StoreSQLite,
		DBPath:            "cardledger.db",
		InitialBalance:    32000,
		LockTimeout:       2 * time.Second,
		MaxAttempts:       4,
		VerifyCardSecrets: true,
		AuthMode:          AuthModeHeader,
		AuthHeader:        "X-Principal-ID",
	}

	if v, ok := os.LookupEnv("CARDLEDGER_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("CARDLEDGER_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("CARDLEDGER_AUTH_HEADER"); ok && v != "" {
		cfg.AuthHeader = v
	}

	if v, ok := os.LookupEnv("CARDLEDGER_STORE"); ok && v != "" {
		switch v = strings.ToLower(v); v {
		case StoreSQLite, StorePostgres, StoreMemory:
			cfg.Store = v
		default:
			return nil, fmt.Errorf("CARDLEDGER_STORE must be one of sqlite, postgres, memory; got %q", v)
		}
	}

	if cfg.Store == StorePostgres {
		dsn := os.Getenv("CARDLEDGER_POSTGRES_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("CARDLEDGER_POSTGRES_DSN is required when CARDLEDGER_STORE=postgres")
		}
		pgCfg, err := pgconn.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("CARDLEDGER_POSTGRES_DSN is invalid: %w", err)
		}
		cfg.PostgresDSN = dsn
		cfg.PostgresHost = pgCfg.Host
		cfg.PostgresDatabase = pgCfg.Database
	}

	if v, ok := os.LookupEnv("CARDLEDGER_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("CARDLEDGER_SECRET_KEY must be 64 hex characters (32 bytes)")
		}
		cfg.SecretKey = key
	}

	if v, ok := os.LookupEnv("CARDLEDGER_INITIAL_BALANCE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("CARDLEDGER_INITIAL_BALANCE must be a non-negative integer, got %q", v)
		}
		cfg.InitialBalance = n
	}

	if v, ok := os.LookupEnv("CARDLEDGER_LOCK_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CARDLEDGER_LOCK_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("CARDLEDGER_LOCK_TIMEOUT must be positive, got %s", d)
		}
		cfg.LockTimeout = d
	}

	if v, ok := os.LookupEnv("CARDLEDGER_MAX_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("CARDLEDGER_MAX_ATTEMPTS must be a positive integer, got %q", v)
		}
		cfg.MaxAttempts = n
	}

	if v, ok := os.LookupEnv("CARDLEDGER_VERIFY_CARD_SECRETS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CARDLEDGER_VERIFY_CARD_SECRETS must be a boolean, got %q", v)
		}
		cfg.VerifyCardSecrets = b
	}

	if v, ok := os.LookupEnv("CARDLEDGER_AUTH_MODE"); ok && v != "" {
		switch v = strings.ToLower(v); v {
		case AuthModeHeader, AuthModeJWT:
			cfg.AuthMode = v
		default:
			return nil, fmt.Errorf("CARDLEDGER_AUTH_MODE must be header or jwt; got %q", v)
		}
	}

	if secret := os.Getenv("CARDLEDGER_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = []byte(secret)
	}
	if cfg.AuthMode == AuthModeJWT && len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("CARDLEDGER_JWT_SECRET is required when CARDLEDGER_AUTH_MODE=jwt")
	}

	return cfg, nil
}
