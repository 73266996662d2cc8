package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"karigar/internal/api"
	"karigar/internal/config"
	"karigar/internal/database"
	"karigar/internal/domain"
	"karigar/internal/events"
	"karigar/internal/logging"
	"karigar/internal/metrics"
	"karigar/internal/repository"
	"karigar/internal/service"
	"karigar/internal/verification"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	catalog, err := config.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load service catalog")
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, slotCache := initSlotCache(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	verifier := verification.NewClient(cfg.Verification, &logger)

	availabilityService := service.NewAvailabilityService(db, slotCache, &logger)
	profileService := service.NewProfileService(db, verifier, eventBus, catalog, &logger)
	bookingService := service.NewBookingService(db, availabilityService, eventBus, cfg.Booking.MaxAdvanceDays, &logger)
	reviewService := service.NewReviewService(db, &logger)

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	apiServer := api.NewHTTPServer(cfg.API, cfg.Booking, profileService, bookingService, reviewService, availabilityService, slotCache, &logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API server shutdown error")
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initSlotCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.SlotCache) {
	ttl := time.Duration(cfg.Booking.SlotCacheTTLSeconds) * time.Second
	fallback := repository.NewMemorySlotCache(ttl)

	if !cfg.Redis.Enabled {
		return nil, fallback
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, starting on memory cache")
	}

	primary := repository.NewRedisSlotCache(redisClient, ttl)
	return redisClient, repository.NewFailoverSlotCache(primary, fallback, logger)
}

func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	types := []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingDeclined,
		events.EventBookingCancelled,
		events.EventBookingCompleted,
		events.EventBookingRescheduled,
		events.EventProfileVerified,
	}
	for _, eventType := range types {
		bus.Subscribe(eventType, func(event *events.Event) error {
			logger.Info().
				Str("event", event.Type).
				RawJSON("payload", event.Payload).
				Msg("domain event")
			return nil
		})
	}
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
