// Command cardledger-admin performs operator tasks against the configured
// store: registering principals and issuing session tokens for jwt mode.
//
// Usage:
//
//	cardledger-admin create-principal -email a@example.com -first Alice -last Liddell
//	cardledger-admin issue-token -principal 1 -ttl 1h
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ericfisherdev/cardledger/internal/adapter/driven/session"
	"github.com/ericfisherdev/cardledger/internal/adapter/driven/store"
	"github.com/ericfisherdev/cardledger/internal/application"
	"github.com/ericfisherdev/cardledger/internal/config"
	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

var errUsage = errors.New("usage: cardledger-admin <create-principal|issue-token> [flags]")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch args[0] {
	case "create-principal":
		return createPrincipal(ctx, cfg, args[1:], out)
	case "issue-token":
		return issueToken(cfg, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func createPrincipal(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create-principal", flag.ContinueOnError)
	email := fs.String("email", "", "principal email")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stores, err := store.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = stores.Close() }()

	svc := application.NewPrincipalService(stores.Principals, slog.Default())
	p, err := svc.Create(ctx, model.Principal{Email: *email, FirstName: *first, LastName: *last})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%d\n", p.ID)
	return err
}

func issueToken(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	principalID := fs.Int64("principal", 0, "principal ID")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if len(cfg.JWTSecret) == 0 {
		return errors.New("CARDLEDGER_JWT_SECRET must be set to issue tokens")
	}
	if *principalID <= 0 {
		return errors.New("-principal must be a positive ID")
	}
	if *ttl <= 0 {
		return errors.New("-ttl must be positive")
	}

	token, err := session.NewJWTProvider(cfg.JWTSecret).Issue(*principalID, *ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
