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

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/browser"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/catalog"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/checkout"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/config"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/dashboard"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/handlers"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/identity"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(os.DirFS(cfg.MigrationsDir)); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if cfg.SeedFile != "" {
		dishes, err := catalog.LoadSeed(cfg.SeedFile)
		if err != nil {
			slog.Error("Failed to load menu seed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		if err := catalog.Seed(context.Background(), db, dishes); err != nil {
			slog.Error("Failed to seed menu", "error", err)
			os.Exit(1)
		}
		slog.Info("Menu seeded", "file", cfg.SeedFile, "dishes", len(dishes))
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	sessionStore.Options.MaxAge = int(cfg.SessionTTL.Seconds())
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(cfg.TemplatesDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Services
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	identityService := identity.NewService(db, cfg.JWTSecret, cfg.SessionTTL)
	clients := browser.NewRegistry(identityService, browser.DefaultIdleTimeout)
	go clients.Run(ctx, 10*time.Minute)

	storefront := &handlers.StorefrontHandler{
		Catalog:      db,
		Orders:       db,
		Checkout:     checkout.NewService(db, db, cfg.DeliveryFee),
		Dashboard:    dashboard.NewAggregator(db, db),
		Clients:      clients,
		SessionStore: sessionStore,
		Templates:    templates,
	}
	kitchen := &handlers.KitchenHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
		UploadDir:    cfg.UploadsDir,
	}

	// 10 credential or order posts per IP per minute
	rateLimiter := handlers.NewRateLimiter(10, time.Minute)
	go rateLimiter.Cleanup(ctx.Done())

	mux := http.NewServeMux()
	fileServer := http.FileServer(http.Dir(cfg.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static", fileServer))
	kitchen.Routes(mux, rateLimiter)
	storefront.Routes(mux, rateLimiter)

	// 6. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		// Trust local development origins
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
