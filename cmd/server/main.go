package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/swisscoin/internal/auth"
	"github.com/mmynk/swisscoin/internal/config"
	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/server"
	"github.com/mmynk/swisscoin/internal/service"
	"github.com/mmynk/swisscoin/internal/storage/sqlite"
	"github.com/mmynk/swisscoin/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ledger, err := cfg.ParseLedger()
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DB.Path)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	opts := service.Options{
		Currency: ledger.Currency,
		Policy:   ledger.Policy,
		Location: ledger.Location,
		Metrics:  m,
	}

	handler := server.New(server.Services{
		Participants:  service.NewParticipantService(store),
		Splits:        service.NewSplitService(store, opts),
		Groups:        service.NewGroupService(store),
		Settlements:   service.NewSettlementService(store, opts),
		Conversations: service.NewConversationService(store, opts),
	}, server.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		JWTManager:  auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Metrics:     m,
		Gatherer:    reg,
	})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		// Wrap with h2c for HTTP/2 without TLS (required for Connect)
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting",
			"address", srv.Addr,
			"currency", ledger.Currency.Code,
			"settlement_policy", ledger.Policy,
			"timezone", ledger.Location.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server stopped gracefully")
	return nil
}
