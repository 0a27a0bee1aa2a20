package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gearhaus.dev/gear-web/internal/config"
	mw "gearhaus.dev/gear-web/internal/middleware"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "gear-web.yaml", "configuration file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app := newApp(cfg, logger)
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(app, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("web listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newRouter(app *App, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will
	// use X-Forwarded-For to determine the client IP. Ensure only trusted
	// proxies can set these headers in production environments.
	r.Use(chimw.RealIP)
	r.Use(mw.Session)
	r.Use(mw.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", app.ProductsHandler)
		r.Get("/products/{productID}", app.ProductHandler)
		r.Get("/brands", app.BrandsHandler)
		r.Get("/types", app.TypesHandler)

		r.Get("/cart", app.CartHandler)
		r.Post("/cart/items", app.CartAddHandler)
		r.Put("/cart/items/{itemID}", app.CartUpdateHandler)
		r.Delete("/cart/items/{itemID}", app.CartRemoveHandler)
		r.Delete("/cart", app.CartClearHandler)

		r.Post("/auth/login", app.LoginHandler)
		r.Post("/auth/register", app.RegisterHandler)
		r.Post("/auth/logout", app.LogoutHandler)
		r.Get("/session", app.SessionHandler)

		r.Post("/checkout", app.CheckoutHandler)
		r.Post("/payment/confirm", app.PaymentConfirmHandler)
		r.Get("/order/confirmation", app.OrderConfirmationHandler)

		r.Get("/admin/stats", app.AdminStatsHandler)
	})

	r.Get("/content/{slug}", app.ContentPageHandler)

	return r
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("GEAR_WEB_DEV") != "" || os.Getenv("DEV") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
