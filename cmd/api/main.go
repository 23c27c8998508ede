package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-retail-store/internal/checkout"
	"github.com/ariefcatur/go-retail-store/internal/config"
	"github.com/ariefcatur/go-retail-store/internal/events"
	"github.com/ariefcatur/go-retail-store/internal/httpx"
	kafkax "github.com/ariefcatur/go-retail-store/internal/kafka"
	"github.com/ariefcatur/go-retail-store/internal/orderworker"
	"github.com/ariefcatur/go-retail-store/internal/postgres"
	"github.com/ariefcatur/go-retail-store/internal/receipts"
	"github.com/ariefcatur/go-retail-store/internal/redisx"
	"github.com/ariefcatur/go-retail-store/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	entry := log.WithField("service", cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policy, err := store.ParsePolicy(cfg.OrderPolicy)
	if err != nil {
		entry.WithError(err).Fatal("order policy")
	}
	st := store.Demo(store.WithPolicy(policy), store.WithLogger(entry))

	svc := &checkout.Service{Store: st, Name: cfg.ServiceName, Log: entry}

	// DB
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			entry.WithError(err).Fatal("db connect")
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			entry.WithError(err).Fatal("db migrate")
		}
		svc.Journal = &receipts.Journal{DB: db}
	}

	// Redis
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			entry.WithError(err).Warn("redis ping failed, continuing")
		}
		svc.Redis = rdb
	}

	// Kafka producers: placed & rejected
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		placed := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPlaced, 1024, entry)
		placed.Start(ctx)
		rejected := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderRejected, 1024, entry)
		rejected.Start(ctx)
		svc.Placed, svc.Rejected = placed, rejected
		producers = append(producers, placed, rejected)
	}

	// Order worker
	consumerDone := make(chan struct{})
	if cfg.Worker.Enabled && len(cfg.KafkaBrokers) > 0 {
		w := &orderworker.Worker{Checkout: svc, ServiceName: cfg.ServiceName, Log: entry}
		if rdb != nil {
			w.Redis = rdb
		}
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.Worker.Group, events.TopicOrderRequested, cfg.Worker.Workers, entry)
		go func() {
			defer close(consumerDone)
			entry.WithFields(logrus.Fields{"group": cfg.Worker.Group, "workers": cfg.Worker.Workers}).Info("order worker started")
			if err := cons.Start(ctx, w.HandleOrderRequested); err != nil {
				entry.WithError(err).Error("order worker exit")
			}
		}()
	} else {
		close(consumerDone)
	}

	router := httpx.NewRouter(entry)
	(&httpx.StoreHandler{Store: st, Promotions: store.DemoPromotions()}).Register(router)
	(&httpx.OrdersHandler{Checkout: svc}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		entry.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			entry.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	entry.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	<-consumerDone
	for _, p := range producers {
		p.Close()
		p.WaitClosed()
	}
}
