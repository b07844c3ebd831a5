package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nowplaying/internal/core/ports"
	"nowplaying/internal/core/services"
	httphandlers "nowplaying/internal/handlers/http"
	"nowplaying/internal/infrastructure/feed"
	"nowplaying/internal/infrastructure/middleware"
	"nowplaying/internal/infrastructure/monitoring"
	"nowplaying/internal/infrastructure/osuapi"
	"nowplaying/internal/infrastructure/relay"
	"nowplaying/internal/infrastructure/repositories"
	"nowplaying/pkg/circuitbreaker"
	"nowplaying/pkg/config"
	"nowplaying/pkg/logger"
	"nowplaying/pkg/retry"
	"nowplaying/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// first existing candidate wins; no file at all means defaults plus environment
	path := *configPath
	if path == "" {
		for _, candidate := range []string{"configs/config.yaml", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		zap.NewExample().Sugar().Fatalw("failed to load configuration", "path", path, "error", err)
	}

	zapLogger := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	if cfg.OsuAPI.Key == "" {
		log.Warn("OSU_API_KEY is not set, status requests will stay silent")
	}

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Tracing.Enabled
	tracingCfg.JaegerURL = cfg.Tracing.JaegerURL
	tracingCfg.Environment = cfg.Tracing.Environment
	tracingCfg.SampleRate = cfg.Tracing.SampleRate
	tp, err := tracing.Init(tracingCfg)
	if err != nil {
		log.Fatalw("failed to initialise tracing", "error", err)
	}

	var metrics ports.MetricsCollector = monitoring.NewNopCollector()
	if cfg.Monitoring.PrometheusEnabled {
		metrics = monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)
	}

	repoFactory := repositories.NewRepositoryFactory(cfg, log)
	cooldownStore := repoFactory.CreateCooldownStore()

	feedClient := feed.NewClient(feed.Config{
		URL:         cfg.FeedURL(),
		Timeout:     cfg.Feed.Timeout,
		PollTimeout: cfg.Feed.PollTimeout,
	}, log.Named("feed"))

	breakerCfg := circuitbreaker.DefaultConfig()
	breakerCfg.FailureThreshold = cfg.OsuAPI.CircuitBreaker.FailureThreshold
	breakerCfg.Timeout = cfg.OsuAPI.CircuitBreaker.OpenTimeout
	apiClient := osuapi.NewClient(osuapi.Config{
		BaseURL:        cfg.OsuAPI.BaseURL,
		APIKey:         cfg.OsuAPI.Key,
		Timeout:        cfg.OsuAPI.Timeout,
		CircuitBreaker: breakerCfg,
	}, metrics, log.Named("osuapi"))

	composer := services.NewStatusComposer(feedClient, apiClient, retry.PollConfig{
		Attempts: cfg.Feed.PollAttempts,
		Interval: cfg.Feed.PollInterval,
	}, metrics, log.Named("composer"))
	statusService := services.NewStatusService(cooldownStore, composer, metrics, log)

	dispatcher := services.NewDispatcher(statusService, services.DispatcherConfig{
		Workers:        cfg.Dispatcher.Workers,
		QueueSize:      cfg.Dispatcher.QueueSize,
		RequestTimeout: cfg.Dispatcher.RequestTimeout,
	}, log.Named("dispatcher"))
	dispatcher.Start()

	checker := monitoring.NewHealthChecker()
	checker.AddCooldownStoreCheck(cooldownStore, 2*time.Second)
	checker.AddFeedCheck(feedClient.Ping, cfg.Feed.PollTimeout)
	checker.AddBreakerCheck("osu_api", apiClient.BreakerState)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(log),
		middleware.TracingMiddleware(),
		middleware.ErrorHandlerMiddleware(log),
		middleware.NewHTTPRateLimitMiddleware(cfg),
	)

	httphandlers.NewHealthHandler(checker).SetupRoutes(router)
	httphandlers.NewStatusHandler(statusService).SetupRoutes(router)

	var relayServer *relay.WebSocketServer
	if cfg.Relay.Enabled {
		relayServer = relay.NewWebSocketServer(dispatcher, metrics, relay.Config{
			PingInterval:      cfg.Relay.PingInterval,
			PongTimeout:       cfg.Relay.PongTimeout,
			WriteTimeout:      cfg.Relay.WriteTimeout,
			MessagesPerSecond: cfg.Relay.MessagesPerSecond,
			Burst:             cfg.Relay.Burst,
			MaxMessageBytes:   cfg.Relay.MaxMessageBytes,
		}, log.Named("relay"))
		router.GET("/relay", gin.WrapF(relayServer.HandleWebSocket))
		log.Info("front relay enabled on /relay")
	}

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout would cut long-lived relay sockets
	}
	if !cfg.Relay.Enabled {
		srv.WriteTimeout = cfg.Server.WriteTimeout
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting now playing server",
			"address", cfg.Server.Address,
			"feed", cfg.FeedURL(),
			"cooldown", cfg.Cooldown.Window.String(),
			"redis", repoFactory.UsingRedis(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if relayServer != nil {
		relayServer.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	}

	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warnw("dispatcher did not drain before shutdown deadline", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error flushing traces", "error", err)
	}
	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing repository factory", "error", err)
	}

	log.Info("now playing server stopped")
}
