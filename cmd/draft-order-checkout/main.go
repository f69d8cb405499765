// Package main boots the draft order checkout HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lxryroom/draft-order-checkout/internal/config"
	httpapi "github.com/lxryroom/draft-order-checkout/internal/http"
	"github.com/lxryroom/draft-order-checkout/internal/obs"
	"github.com/lxryroom/draft-order-checkout/internal/shopify"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")
	if !cfg.Ready() {
		// Requests answer 500 until SHOP_DOMAIN and SHOPIFY_ADMIN_TOKEN are set.
		obs.Logger.Warn("config_incomplete", "shop_domain_set", cfg.ShopDomain != "", "token_set", cfg.AccessToken != "")
	}

	sc := shopify.New(cfg)
	app := httpapi.NewApp(cfg, sc)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
