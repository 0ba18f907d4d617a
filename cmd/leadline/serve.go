package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/config"
	httpapp "github.com/leadline/leadline/internal/http"
	"github.com/leadline/leadline/internal/logging"
	"github.com/leadline/leadline/internal/metrics"
	"github.com/leadline/leadline/internal/secrets"
	"github.com/leadline/leadline/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Leadline API server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Command: "leadline serve"})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	st := store.NewPostgres(pool)

	sessions := scs.New()
	sessions.Store = pgxstore.New(pool)
	sessions.Cookie.Name = "leadline_session"
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.Secure = cfg.AuthCookieSecure
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Lifetime = cfg.JWTTTL

	// The signing secret is resolved exactly once, here, and handed to
	// the verifier and issuer by value.
	var provider secrets.Provider = secrets.Env{Value: cfg.JWTSecret}
	if cfg.VaultConfigured() {
		provider, err = secrets.NewVault(secrets.VaultOptions{
			Address:     cfg.VaultAddr,
			Token:       cfg.VaultToken,
			Namespace:   cfg.VaultNamespace,
			SecretPath:  cfg.VaultJWTSecretPath,
			SecretField: cfg.VaultJWTSecretField,
		})
		if err != nil {
			return fmt.Errorf("configure vault secret source: %w", err)
		}
	}
	source := &secrets.Source{Provider: provider, Production: cfg.IsProduction(), Logger: logger}
	secret, err := source.JWTSecret(ctx)
	if err != nil {
		return err
	}

	verifier := auth.NewTokenVerifier([]byte(secret), cfg.JWTIssuer, cfg.JWTLeeway)
	issuer := auth.NewTokenIssuer([]byte(secret), cfg.JWTIssuer, cfg.JWTTTL)

	srv, err := httpapp.NewEchoServer(cfg, st, sessions, verifier, issuer)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	_, metricsErrCh := metrics.StartServer(ctx, cfg.MetricsAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return nil
		case err := <-metricsErrCh:
			return err
		}
	})

	return g.Wait()
}
