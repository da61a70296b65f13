package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/foodles/order-api/internal/config"
	"github.com/foodles/order-api/internal/email"
	"github.com/foodles/order-api/internal/handler"
	notificationHandler "github.com/foodles/order-api/internal/handler/notification"
	paymentHandler "github.com/foodles/order-api/internal/handler/payment"
	restaurantHandler "github.com/foodles/order-api/internal/handler/restaurant"
	"github.com/foodles/order-api/internal/middleware"
	"github.com/foodles/order-api/internal/payment"
	"github.com/foodles/order-api/internal/router"
	notificationService "github.com/foodles/order-api/internal/service/notification"
	restaurantService "github.com/foodles/order-api/internal/service/restaurant"
	"github.com/foodles/order-api/internal/telephony"
	pkgLogger "github.com/foodles/order-api/pkg/logger"
	"github.com/foodles/order-api/pkg/messaging"
	redisBroker "github.com/foodles/order-api/pkg/messaging/redis"
	"github.com/foodles/order-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	m := metrics.NewMetrics("foodles", "api")

	appLogger := pkgLogger.NewLogger(nil)
	log.Logger = *appLogger.Zerolog()
	logger := log.Logger

	// Optional Redis mirror for sibling instances.
	var broker messaging.Broker
	pingers := map[string]handler.Pinger{}
	if cfg.Redis.Enabled {
		b, err := redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, m, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer b.Close()
		broker = b
		if p, ok := b.(handler.Pinger); ok {
			pingers["redis"] = p
		}
	}

	// Notification collaborators.
	mailer := email.NewMailer(cfg.SMTP)
	if err := mailer.Verify(); err != nil {
		log.Warn().Err(err).Msg("email transport verification failed")
	} else {
		log.Info().Str("host", cfg.SMTP.Host).Msg("email transport ready")
	}

	caller := telephony.NewTwilioCaller(cfg.Telephony, &logger)
	verifier := payment.NewVerifier(cfg.Razorpay.KeySecret)
	gateway := payment.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL)

	store := notificationService.NewSnapshotStore(cfg.Notification.RetentionWindow)
	notifySvc := notificationService.NewService(store, mailer, caller, broker, m, &logger)

	// Restaurant status stack.
	flags := restaurantService.EnvFlagSource{}
	statusSvc := restaurantService.NewService(flags, cfg.Status.FreshnessWindow, m)
	hub := restaurantService.NewHub(m)
	monitor := restaurantService.NewMonitor(flags, cfg.Restaurants, cfg.Status.MonitorInterval, hub, broker, m, &logger)

	// Handlers.
	paymentH := paymentHandler.NewHandler(verifier, gateway, notifySvc, &logger)
	notificationH := notificationHandler.NewHandler(store)
	restaurantH := restaurantHandler.NewHandler(statusSvc, monitor, hub, cfg.Restaurants, &logger)
	healthH := handler.NewHealthHandler(pingers)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(paymentH, notificationH, restaurantH, healthH, router.RouterConfig{
		RateLimit:      cfg.RateLimit.Limit,
		RateWindow:     cfg.RateLimit.Window,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     corsConfig,
		MetricsPrefix:  "foodles_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	go monitor.Start(monitorCtx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	log.Info().
		Int("port", cfg.Server.Port).
		Strs("restaurants", cfg.Restaurants).
		Int("telephony_configured", len(cfg.Telephony.Credentials)).
		Bool("redis", cfg.Redis.Enabled).
		Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
