package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/will-hanabi-bot/go-bot/internal/archive"
	"github.com/will-hanabi-bot/go-bot/internal/config"
	"github.com/will-hanabi-bot/go-bot/internal/reactor"
	"github.com/will-hanabi-bot/go-bot/internal/session"
)

const reconnectDelay = 10 * time.Second

func main() {
	index := flag.Int("index", 1, "bot credential index in the environment")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*index)
	if err != nil {
		logger.WithError(err).Fatal("configuration")
	}
	logger.SetLevel(cfg.LogLevel)
	log := logger.WithField("bot", cfg.Username)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *archive.Store
	if cfg.DatabaseURL != "" {
		store, err = archive.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("archive")
		}
		defer store.Close()
	}

	for {
		s := session.New(cfg, reactor.New(), store, log)
		err := s.Run(ctx)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			log.Info("shutting down")
			return
		}
		log.WithError(err).Warn("connection lost, reconnecting")
		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}
