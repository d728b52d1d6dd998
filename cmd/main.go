// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/styledecor/internal/access"
	"github.com/Shivanand-hulikatti/styledecor/internal/checkout"
	"github.com/Shivanand-hulikatti/styledecor/internal/config"
	"github.com/Shivanand-hulikatti/styledecor/internal/database"
	"github.com/Shivanand-hulikatti/styledecor/internal/events"
	"github.com/Shivanand-hulikatti/styledecor/internal/handler"
	"github.com/Shivanand-hulikatti/styledecor/internal/identity"
	"github.com/Shivanand-hulikatti/styledecor/internal/logging"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
	"github.com/Shivanand-hulikatti/styledecor/internal/service"
	"github.com/Shivanand-hulikatti/styledecor/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("styledecor stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx := context.Background()

	// ── 1. Tracing ────────────────────────────────────────────────────────
	shutdownTracing, err := telemetry.Setup(ctx, "styledecor", cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("flush traces")
		}
	}()

	// ── 2. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	log.Info("connected to PostgreSQL")

	// ── 3. Outbound integrations ──────────────────────────────────────────
	gateway := checkout.NewStripeGateway(checkout.Config{
		SecretKey:  cfg.StripeSecretKey,
		Currency:   cfg.CheckoutCurrency,
		SuccessURL: cfg.SuccessURL(),
		CancelURL:  cfg.CancelURL(),
	}, log)

	var pub events.Publisher = events.Nop{}
	if cfg.RabbitURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			return fmt.Errorf("events: %w", err)
		}
		defer rabbit.Close()
		pub = rabbit
		log.WithField("exchange", cfg.EventsExchange).Info("publishing domain events")
	}

	// ── 4. Wire up layers ─────────────────────────────────────────────────
	packageRepo := repository.NewPackageRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	decoratorRepo := repository.NewDecoratorRepository(pool)

	h := handler.New(handler.Services{
		Catalog:    service.NewCatalogService(packageRepo),
		Users:      service.NewUserService(userRepo),
		Bookings:   service.NewBookingService(bookingRepo, packageRepo, userRepo, pub, log),
		Payments:   service.NewPaymentService(bookingRepo, paymentRepo, userRepo, gateway, pub, log),
		Decorators: service.NewDecoratorService(decoratorRepo, pub, log),
	}, log)

	gate := access.NewGate(identity.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer), userRepo, log)

	// ── 5. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Trace)           // server spans
	r.Use(handler.Logger(log))     // structured access log
	r.Use(handler.CORS(cfg.SiteDomain))

	h.Mount(r, gate)

	// ── 6. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Block until SIGINT, SIGTERM or a listener failure.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down server")
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
