// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/highcard/internal/auth"
	"github.com/jason-s-yu/highcard/internal/cache"
	"github.com/jason-s-yu/highcard/internal/config"
	"github.com/jason-s-yu/highcard/internal/gameapi"
	"github.com/jason-s-yu/highcard/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if err := auth.Init(cfg.SessionSecret); err != nil {
		logger.Fatalf("auth init failed: %v", err)
	}

	svc, err := gameapi.NewClient(cfg.GameServiceURL,
		gameapi.WithTimeout(cfg.RequestTimeout),
		gameapi.WithLogger(logger.WithField("component", "gameapi")),
	)
	if err != nil {
		logger.Fatalf("game service client: %v", err)
	}

	srv := handlers.NewServer(logger, svc)
	srv.Production = cfg.IsProduction()
	srv.AllowedOrigins = cfg.AllowedOrigins

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			// the round feed is optional; play continues without it
			logger.Warnf("round feed disabled: %v", err)
		} else {
			feed := cache.NewRoundFeed(rdb, cfg.RoundQueueName)
			defer feed.Close()
			srv.Publisher = feed
			logger.Infof("Publishing rounds to Redis list %s", feed.Queue())
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Running on %s, game service at %s", cfg.Addr, svc.BaseURL())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")
	srv.Sessions.CloseAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}
