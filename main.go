package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medtrack/medication-api/cache"
	"github.com/medtrack/medication-api/config"
	"github.com/medtrack/medication-api/dosage"
	"github.com/medtrack/medication-api/externalapi"
	"github.com/medtrack/medication-api/handlers"
	"github.com/medtrack/medication-api/health"
	"github.com/medtrack/medication-api/interactions"
	"github.com/medtrack/medication-api/logging"
	"github.com/medtrack/medication-api/medications"
	"github.com/medtrack/medication-api/metrics"
	"github.com/medtrack/medication-api/resilience"
	"github.com/medtrack/medication-api/schedule"
	"github.com/medtrack/medication-api/scheduler"
	"github.com/medtrack/medication-api/seed"
	"github.com/medtrack/medication-api/storage"
)

func main() {
	// .env is optional; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogDir, cfg.SlogLevel())

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		logging.Error("Failed to open database", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}
	defer db.Close()

	medicationStore := storage.NewMedicationStore(db)
	userMedicationStore := storage.NewUserMedicationStore(db)
	interactionStore := storage.NewInteractionStore(db)

	ctx := context.Background()

	seeder := seed.NewSeeder(medicationStore, interactionStore)
	if err := seeder.Run(ctx); err != nil {
		logging.Error("Failed to seed database", "error", err)
		os.Exit(1)
	}

	// External clients share one outbound rate limiter; each API gets its
	// own retry/breaker policy and caching decorator.
	httpClient := &http.Client{Timeout: cfg.APITimeout}
	limiter := externalapi.NewDefaultLimiter()
	cacheStore := cache.New()

	rxNorm := externalapi.NewCachedRxNormService(
		externalapi.NewRxNormService(cfg.RxNormBaseURL, httpClient, limiter,
			resilience.New(resilience.DefaultConfig(externalapi.RxNormAPIName))),
		cacheStore)
	openFDA := externalapi.NewCachedOpenFDAService(
		externalapi.NewOpenFDAService(cfg.OpenFDABaseURL, httpClient, limiter,
			resilience.New(resilience.DefaultConfig(externalapi.OpenFDAAPIName))),
		cacheStore)

	monitor := health.NewMonitor(rxNorm, openFDA)
	probeScheduler := scheduler.NewScheduler(monitor, time.Duration(cfg.HealthProbeMinutes)*time.Minute)
	if err := probeScheduler.Start(); err != nil {
		logging.Error("Failed to start health probe scheduler", "error", err)
		os.Exit(1)
	}
	defer probeScheduler.Stop()

	interactionEngine := interactions.NewEngine(interactionStore, openFDA)
	dosageValidator := dosage.NewValidator()
	scheduleGenerator := schedule.NewGenerator(interactionEngine, dosageValidator)
	medicationService := medications.NewService(medicationStore, userMedicationStore, rxNorm, openFDA)

	handler := handlers.NewHandler(medicationService, interactionEngine, scheduleGenerator, monitor)

	inboundLimiter := NewRateLimiter()
	defer inboundLimiter.Stop()

	router := chi.NewRouter()
	router.Use(middleware.RedirectSlashes)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(slogMiddleware)
	router.Use(metrics.Metrics)
	router.Use(middleware.Recoverer)
	router.Use(requestSizeMiddleware(cfg))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Use(rateLimitHandler(inboundLimiter))

	router.Get("/medications/search/{term}", handler.SearchMedications)
	router.Get("/medications/{rxcui}", handler.GetMedication)
	router.Get("/user-medications", handler.ListUserMedications)
	router.Post("/user-medications", handler.AddUserMedication)
	router.Put("/user-medications/{id}", handler.UpdateUserMedication)
	router.Delete("/user-medications/{id}", handler.DeleteUserMedication)
	router.Get("/interactions/check", handler.CheckInteractions)
	router.Get("/schedule", handler.GetSchedule)
	router.Get("/health", handler.HealthCheck)
	router.Get("/health/apis", handler.APIHealth)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Handler:      router,
		Addr:         cfg.Address + ":" + cfg.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logging.Info("Starting server", "address", cfg.Address, "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	logging.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
		}
	}

	logging.Info("Server stopped")
}
