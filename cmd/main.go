package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/spinner/internal/adapters/http/api"
	"github.com/okian/spinner/internal/adapters/http/swagger"
	"github.com/okian/spinner/internal/adapters/repository"
	"github.com/okian/spinner/internal/config"
	"github.com/okian/spinner/pkg/logger"
	"github.com/okian/spinner/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.LogJSON {
		_ = logger.InitWithWriter(os.Stdout, true)
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := metrics.RegisterRuntimeCollectors(); err != nil {
		loggerInstance.Warn(ctx, "runtime collectors not registered", logger.Error(err))
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "server failed", logger.Error(err))
		os.Exit(1)
	}
}

// run serves the configuration API until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, l logger.Logger) error {
	handler, cleanup, err := newHandler(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	l.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	l.Info(ctx, "server stopped")
	return nil
}

// newHandler opens the store, seeds the configured account and builds the
// API routes. cleanup closes the store.
func newHandler(ctx context.Context, cfg *config.Config, l logger.Logger) (http.Handler, func(), error) {
	store, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	cleanup := func() { _ = store.Close() }

	if err := seedAccount(ctx, store, cfg, l); err != nil {
		cleanup()
		return nil, nil, err
	}

	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		secret, err = randomSecret()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		l.Warn(ctx, "token_secret not set; tokens will not survive a restart")
	}
	tokens, err := api.NewTokenIssuer(secret, cfg.TokenTTL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(store, tokens, api.WithLogger(l.Named("api"))).Register(mux)
	return mux, cleanup, nil
}

func seedAccount(ctx context.Context, store repository.Store, cfg *config.Config, l logger.Logger) error {
	if cfg.SeedEmail == "" {
		return nil
	}
	_, err := store.CreateUser(ctx, cfg.SeedEmail, cfg.SeedPassword)
	switch {
	case errors.Is(err, repository.ErrConflict):
		l.Debug(ctx, "seed account already exists", logger.String("email", cfg.SeedEmail))
		return nil
	case err != nil:
		return fmt.Errorf("seed account: %w", err)
	}
	l.Info(ctx, "seed account created", logger.String("email", cfg.SeedEmail))
	return nil
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}
	return []byte(hex.EncodeToString(buf)), nil
}
