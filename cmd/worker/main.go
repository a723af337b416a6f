package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinicops/frontdesk-api/internal/config"
	"github.com/clinicops/frontdesk-api/internal/repository/postgres"
	"github.com/clinicops/frontdesk-api/pkg/logger"
	"github.com/clinicops/frontdesk-api/pkg/messaging/redis"
	"github.com/clinicops/frontdesk-api/pkg/metrics"
	"github.com/clinicops/frontdesk-api/pkg/worker"
)

type workerConfig struct {
	DatabaseHost     string        `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int           `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseUser     string        `envconfig:"DATABASE_USER" default:"frontdesk"`
	DatabasePassword string        `envconfig:"DATABASE_PASSWORD" default:"frontdesk"`
	DatabaseName     string        `envconfig:"DATABASE_NAME" default:"frontdesk"`
	DatabaseSSLMode  string        `envconfig:"DATABASE_SSLMODE" default:"disable"`
	RedisAddr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	PollInterval     time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	BatchSize        int           `envconfig:"BATCH_SIZE" default:"100"`
	MaxRetries       int           `envconfig:"MAX_RETRIES" default:"5"`
	RetentionDays    int           `envconfig:"RETENTION_DAYS" default:"7"`
	HealthPort       int           `envconfig:"HEALTH_PORT" default:"8081"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("WORKER", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      parseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewBroker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	processor := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(db),
		broker,
		log,
		m,
		worker.Config{
			PollInterval:  cfg.PollInterval,
			BatchSize:     cfg.BatchSize,
			MaxRetries:    cfg.MaxRetries,
			RetentionDays: cfg.RetentionDays,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	healthSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HealthPort),
		Handler: mux,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "health server failed")
		}
	}()

	processor.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)
}

func parseLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
