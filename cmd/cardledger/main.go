package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/cardledger/internal/adapter/driven/session"
	"github.com/ericfisherdev/cardledger/internal/adapter/driven/store"
	httphandler "github.com/ericfisherdev/cardledger/internal/adapter/driving/http"
	"github.com/ericfisherdev/cardledger/internal/application"
	"github.com/ericfisherdev/cardledger/internal/config"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// devSecretKey keys CVV/PIN hashes when CARDLEDGER_SECRET_KEY is unset.
// Hashes written with it are only meaningful to other dev instances.
var devSecretKey = []byte("cardledger-dev-secret-key-000000")

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"store", cfg.Store,
		"auth_mode", cfg.AuthMode,
		"lock_timeout", cfg.LockTimeout,
		"max_attempts", cfg.MaxAttempts,
	)

	secretKey := cfg.SecretKey
	if secretKey == nil {
		slog.Warn("CARDLEDGER_SECRET_KEY not set, using the development key for card secrets")
		secretKey = devSecretKey
	}
	if !cfg.VerifyCardSecrets {
		slog.Warn("card secret verification disabled, transfers skip the CVV/PIN check")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the store and run migrations.
	stores, err := store.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := stores.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	// 4. Wire services.
	logger := slog.Default()
	hasher := application.NewSecretHasher(secretKey)
	cardSvc := application.NewCardService(stores.Cards, hasher, cfg.InitialBalance, logger)
	engine := application.NewLedgerEngine(
		stores.Ledger,
		application.NewAuthorizationGuard(hasher, cfg.VerifyCardSecrets),
		application.EngineOptions{LockTimeout: cfg.LockTimeout, MaxAttempts: cfg.MaxAttempts},
		logger,
	)
	historySvc := application.NewHistoryService(stores.Cards, stores.Log)
	principalSvc := application.NewPrincipalService(stores.Principals, logger)

	// 5. Resolve sessions.
	var sessions driven.SessionProvider
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		sessions = session.NewJWTProvider(cfg.JWTSecret)
	default:
		sessions = session.NewHeaderProvider(cfg.AuthHeader)
	}

	// 6. Create HTTP handler and router.
	apiHandler := httphandler.NewHandler(cardSvc, engine, historySvc, principalSvc, stores.Pinger, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewRouter(apiHandler, sessions, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 8. Graceful shutdown; in-flight transfers finish or roll back.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
