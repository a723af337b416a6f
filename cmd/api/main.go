package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/clinicops/frontdesk-api/internal/config"
	"github.com/clinicops/frontdesk-api/internal/dragdrop"
	"github.com/clinicops/frontdesk-api/internal/handler"
	appointmenthandler "github.com/clinicops/frontdesk-api/internal/handler/appointment"
	boardhandler "github.com/clinicops/frontdesk-api/internal/handler/board"
	doctorhandler "github.com/clinicops/frontdesk-api/internal/handler/doctor"
	patienthandler "github.com/clinicops/frontdesk-api/internal/handler/patient"
	"github.com/clinicops/frontdesk-api/internal/middleware"
	"github.com/clinicops/frontdesk-api/internal/repository/postgres"
	"github.com/clinicops/frontdesk-api/internal/router"
	assignsvc "github.com/clinicops/frontdesk-api/internal/service/assignment"
	doctorsvc "github.com/clinicops/frontdesk-api/internal/service/doctor"
	patientsvc "github.com/clinicops/frontdesk-api/internal/service/patient"
	syncsvc "github.com/clinicops/frontdesk-api/internal/service/sync"
	"github.com/clinicops/frontdesk-api/internal/store"
	"github.com/clinicops/frontdesk-api/pkg/logger"
	"github.com/clinicops/frontdesk-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      parseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	boardStore := store.New()
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	syncService := syncsvc.NewService(patientRepo, doctorRepo, appointmentRepo, outboxRepo, boardStore, log, m)
	engine := assignsvc.NewService(boardStore, syncService, log, m)
	dispatcher := dragdrop.NewDispatcher(boardStore, engine)
	patientService := patientsvc.NewService(patientRepo, boardStore, log)
	doctorService := doctorsvc.NewService(doctorRepo, boardStore, log)

	// Warm the board before serving traffic.
	warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := syncService.Reload(warmCtx); err != nil {
		cancel()
		log.Fatal(err, "failed to load initial board state")
	}
	cancel()

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal(err, "failed to register validators")
	}

	ginEngine, api := router.New(log, router.Config{
		RateLimit:      rate.Limit(cfg.Server.RateLimit),
		RateBurst:      cfg.Server.RateBurst,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, prometheus.DefaultRegisterer)

	handler.New(db).RegisterRoutes(ginEngine)
	patienthandler.NewHandler(patientService).RegisterRoutes(api)
	doctorhandler.NewHandler(doctorService).RegisterRoutes(api)
	appointmenthandler.NewHandler(engine, syncService).RegisterRoutes(api)
	boardhandler.NewHandler(boardStore, engine, syncService, dispatcher).RegisterRoutes(api)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Board.ReloadInterval > 0 {
		go reconcileLoop(ctx, syncService, log, cfg.Board.ReloadInterval)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: ginEngine,
	}

	go func() {
		log.Info("server starting", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "graceful shutdown failed")
	}
}

// reconcileLoop periodically refetches backend truth so drift from
// writes outside this process is bounded.
func reconcileLoop(ctx context.Context, syncService *syncsvc.Service, log *logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := syncService.Reload(ctx); err != nil {
				log.Error(err, "periodic reload failed")
			}
		}
	}
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
