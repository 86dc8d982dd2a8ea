package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/config"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/metrics"
	"github.com/ukydev/fleet-admin/internal/notify"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.WithError(err).Fatal("Failed to configure logging")
	}
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is not set, using the default secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}
	vehicles := &db.MongoVehicleCollection{
		Collection: database.Collection(db.VehiclesCollection),
		Services:   database.Collection(db.ServiceRecordsCollection),
	}

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	a := &app{
		authService: authService,
		users:       &db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)},
		vehicles:    vehicles,
		services:    &db.MongoServiceRecordCollection{Collection: database.Collection(db.ServiceRecordsCollection)},
		settings:    &db.MongoSettingsCollection{Collection: database.Collection(db.SettingsCollection)},
		metrics:     m,
		gatherer:    registry,
		rateLimit:   cfg.RateLimitPerMinute,
		now:         time.Now,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, analytics cache disabled")
		} else {
			defer rdb.Close()
			a.cache = cache.NewAnalyticsCache(rdb, cfg.AnalyticsCacheTTL)
			log.WithField("addr", cfg.RedisAddr).Info("Analytics cache enabled")
		}
	}

	sweeper := &notify.Sweeper{
		Vehicles:    vehicles,
		Observer:    m,
		Interval:    cfg.AlertInterval,
		Now:         time.Now,
		OnPublished: m.AlertsPublished.Inc,
	}
	if cfg.MQTTBroker != "" {
		publisher, err := notify.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			log.WithError(err).Warn("MQTT unavailable, alerts will not be broadcast")
		} else {
			defer publisher.Close()
			sweeper.Publisher = publisher
		}
	}
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
