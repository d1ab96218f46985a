package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trade-route-service/internal/api"
	"trade-route-service/internal/app"
	"trade-route-service/internal/config"
	"trade-route-service/internal/platform/db"
	"trade-route-service/internal/platform/obs"

	"github.com/sirupsen/logrus"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, ORS, caches) behind ports and starts the HTTP server.
func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	log, err := obs.Configure(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatal(err)
	}
	if !dotenv {
		log.Info("No .env file found (using environment variables)")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	stack, err := app.Build(ctx, cfg, conn)
	if err != nil {
		log.Fatal(err)
	}
	defer stack.Close()

	router := api.NewRouter(stack.Optimizer, conn, stack.Routing)

	// Write timeout covers one cold-cache matrix call plus matching.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ORSTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":    srv.Addr,
		"routing": stack.Routing,
	}).Info("server listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Info("server stopped")
}
