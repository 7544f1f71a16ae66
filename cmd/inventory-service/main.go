// Package main boots the inventory service HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stocktrack/inventory-service/internal/config"
	httpapi "github.com/stocktrack/inventory-service/internal/http"
	"github.com/stocktrack/inventory-service/internal/obs"
	"github.com/stocktrack/inventory-service/internal/store"
	"github.com/stocktrack/inventory-service/internal/store/gormstore"
	"github.com/stocktrack/inventory-service/internal/store/memstore"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	var st store.Store
	var closeStore func() error
	if cfg.DatabaseURL != "" {
		gs, err := gormstore.Open(cfg.DatabaseURL)
		if err != nil {
			obs.Logger.Error("database_open_error", "error", err)
			os.Exit(1)
		}
		st = gs
		closeStore = gs.Close
		obs.Logger.Info("store_ready", "kind", "postgres")
	} else {
		st = memstore.New()
		closeStore = func() error { return nil }
		obs.Logger.Info("store_ready", "kind", "memory")
	}

	app := httpapi.NewApp(cfg, st)
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

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	if err := closeStore(); err != nil {
		obs.Logger.Error("store_close_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
