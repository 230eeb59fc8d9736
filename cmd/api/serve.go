package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/01moynul/finmanager-golang/internal/ai"
	"github.com/01moynul/finmanager-golang/internal/assistant"
	"github.com/01moynul/finmanager-golang/internal/auth"
	"github.com/01moynul/finmanager-golang/internal/billing"
	"github.com/01moynul/finmanager-golang/internal/database"
	"github.com/01moynul/finmanager-golang/internal/finance"
	"github.com/01moynul/finmanager-golang/internal/handlers"
	"github.com/01moynul/finmanager-golang/internal/models"
	"github.com/01moynul/finmanager-golang/internal/routes"
	"github.com/01moynul/finmanager-golang/internal/settings"
	"github.com/01moynul/finmanager-golang/internal/store"
	"github.com/01moynul/finmanager-golang/internal/usage"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

// openStore connects to the configured database and wraps it as a key/value store.
func openStore(ctx context.Context) (*sql.DB, store.Store, error) {
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.NewSQLStore(db, cfg.Database.Driver)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, s, nil
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. --- Database ---
	db, kv, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 2. --- AI Service ---
	aiSettings := settings.NewAISettings(kv, settings.DefaultAIConfig(cfg.AI.GeminiAPIKey), logger)
	gateway := ai.NewGateway(nil, logger)
	defer aiSettings.OnChange(func(models.AIConfig) { gateway.Reset() })()
	defer gateway.Reset()
	aiService := ai.NewAIService(aiSettings, gateway)

	// 3. --- Subscriptions ---
	machine := billing.NewMachine(kv, billing.WithLogger(logger))
	var payments billing.PaymentProvider
	if cfg.Stripe.Configured() {
		payments = billing.NewStripeProvider(billing.StripeConfig{
			SecretKey:  cfg.Stripe.SecretKey,
			ProPriceID: cfg.Stripe.ProPriceID,
			BaseURL:    cfg.App.BaseURL,
		}, nil, logger)
		logger.Info("stripe payments enabled")
	} else {
		payments = billing.NewSimulatedProvider(cfg.App.BaseURL, cfg.App.CheckoutDelay, machine, logger)
		logger.Warn("stripe not configured, using simulated checkout")
	}
	billingService := billing.NewService(machine, payments, logger)

	// 4. --- Usage Gate, Ledger, Assistant ---
	gate := usage.NewGate(kv, machine, usage.WithLocation(cfg.App.Location), usage.WithLogger(logger))
	ledger := finance.NewLedger(aiService)
	registry := assistant.NewRegistry(aiService, ledger)

	// 5. --- Identity ---
	var provider auth.IdentityProvider
	if cfg.Supabase.Configured() {
		provider = auth.NewSupabaseProvider(cfg.Supabase.URL, cfg.Supabase.AnonKey, nil)
	} else {
		provider = auth.NewDemoProvider(kv)
		logger.Warn("supabase not configured, running in demo mode")
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWT.Secret, 0)
	if err != nil {
		return err
	}
	authService := auth.NewService(provider, kv, tokens, logger)
	defer authService.OnAuthStateChange(func(ev auth.AuthEvent, userID string, _ *models.Session) {
		if ev == auth.EventSignedOut {
			registry.Reset(userID)
		}
	})()

	// --- Application Setup ---
	app := &handlers.Handlers{
		Auth:                authService,
		Settings:            aiSettings,
		Usage:               gate,
		Billing:             billingService,
		Machine:             machine,
		Assistant:           registry,
		Ledger:              ledger,
		Logger:              logger,
		StripeWebhookSecret: cfg.Stripe.WebhookSecret,
		AdminUserIDs:        cfg.App.AdminUserIDs,
	}

	// --- Background Workers (Cron) ---
	sweeper := billing.NewExpirySweeper(machine, logger)
	if err := sweeper.Start(ctx, cfg.App.ExpirySchedule); err != nil {
		return err
	}
	defer sweeper.Stop()

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.SetupRouter(app, cfg.Server.CORSOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting FinManager API server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
