package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/chocodelight/storefront/internal/config"
	kafkax "github.com/chocodelight/storefront/internal/kafka"
	"github.com/chocodelight/storefront/internal/notify"
	"github.com/chocodelight/storefront/internal/orders"
	"github.com/chocodelight/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Dedup: &notify.RedisDedup{RDB: rdb, Service: cfg.ServiceName + "-notifier"},
		Log:   log,
	}

	topics := []string{
		orders.TopicOrderCreated,
		orders.TopicOrderCancelled,
		orders.TopicOrderStatusChanged,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, topic, cfg.NotifierWorkers, log)
		log.WithFields(logrus.Fields{
			"group":   cfg.NotifierGroup,
			"topic":   topic,
			"workers": cfg.NotifierWorkers,
		}).Info("notifier consumer started")
		g.Go(func() error {
			return cons.Start(gctx, svc.HandleOrderEvent)
		})
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down consumers...")
		cancel()
	}()

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("consumer exit")
	}
}
