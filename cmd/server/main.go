package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/funnel-api/internal/api"
	"github.com/adlytics/funnel-api/internal/config"
	"github.com/adlytics/funnel-api/internal/warehouse"
)

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func main() {
	configPath := "config/config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log := newLogger(cfg.Logging)

	wh, err := warehouse.Open(cfg.Warehouse)
	if err != nil {
		log.Fatalf("open warehouse: %v", err)
	}
	defer wh.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := wh.Ping(pingCtx); err != nil {
		// The warehouse may still be coming up; every request checks again.
		log.WithError(err).Warn("warehouse unreachable at startup")
	}
	pingCancel()

	server := api.NewServer(cfg, wh, log)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		log.WithFields(logrus.Fields{
			"addr":   addr,
			"driver": cfg.Warehouse.Driver,
		}).Info("starting server")
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-done
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}

	log.Info("server stopped")
}
