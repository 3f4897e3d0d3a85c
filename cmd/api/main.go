package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/chocodelight/storefront/internal/cart"
	"github.com/chocodelight/storefront/internal/catalog"
	"github.com/chocodelight/storefront/internal/config"
	"github.com/chocodelight/storefront/internal/favorites"
	"github.com/chocodelight/storefront/internal/httpx"
	kafkax "github.com/chocodelight/storefront/internal/kafka"
	"github.com/chocodelight/storefront/internal/orders"
	"github.com/chocodelight/storefront/internal/postgres"
	"github.com/chocodelight/storefront/internal/redisx"
	"github.com/chocodelight/storefront/internal/reviews"
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

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024, log)
	pCancelled.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, log)
	pStatus.Start(ctx)

	catalogRepo := &catalog.Repo{DB: db}
	cartSvc := &cart.Service{
		Store:   &cart.RedisStore{RDB: rdb},
		Catalog: catalogRepo,
		Log:     log,
	}
	orderSvc := &orders.Service{
		Catalog: catalogRepo,
		Store:   &orders.Repo{DB: db},
		Window:  cfg.CancelWindow,
		Log:     log,
	}

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{
		Svc:           orderSvc,
		Cart:          cartSvc,
		Created:       pCreated,
		Cancelled:     pCancelled,
		StatusChanged: pStatus,
		Redis:         rdb,
		Service:       cfg.ServiceName,
		Log:           log,
	}).Register(router)
	(&httpx.CartHandler{Svc: cartSvc}).Register(router)
	(&httpx.CatalogHandler{Repo: catalogRepo}).Register(router)
	(&httpx.ReviewsHandler{Repo: &reviews.Repo{DB: db}}).Register(router)
	(&httpx.FavoritesHandler{Repo: &favorites.Repo{DB: db}}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// close inboxes so producers flush, then stop their loops and drain
	pCreated.Close()
	pCancelled.Close()
	pStatus.Close()
	cancel()
	pCreated.WaitClosed()
	pCancelled.WaitClosed()
	pStatus.WaitClosed()
}
