package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifedrop/config"
	"lifedrop/cron"
	"lifedrop/database"
	alertRepo "lifedrop/database/repository/alert"
	donorRepo "lifedrop/database/repository/donor"
	requestRepo "lifedrop/database/repository/request"
	"lifedrop/handlers"
	"lifedrop/middleware"
	"lifedrop/routes"
	"lifedrop/services/donor"
	"lifedrop/services/ledger"
	"lifedrop/services/lifecycle"
	"lifedrop/services/matching"
	"lifedrop/services/notification"
	"lifedrop/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, push worker and cooldown scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := utils.GetLogger()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	defer closeDB()

	ledgerStore, closeLedger, err := openLedgerRepo()
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}
	defer closeLedger()

	// repositories.
	requests := requestRepo.NewMongoRequestRepo()
	donors := donorRepo.NewMongoDonorRepo()
	alerts := alertRepo.NewMongoAlertRepo()

	healthTargets := map[string]utils.Pinger{
		"mongo": utils.PingFunc(func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) }),
	}

	var cache matching.MatchCache
	if err := utils.InitCache(); err != nil {
		logger.Warn("match cache disabled", zap.Error(err))
	} else {
		cache = &matching.RedisMatchCache{Client: utils.CacheClient}
		healthTargets["redis_cache"] = utils.PingFunc(func(ctx context.Context) error { return utils.CacheClient.Ping(ctx).Err() })
	}
	queueClient := utils.NewQueueClient()
	defer queueClient.Close()
	healthTargets["redis_queue"] = utils.PingFunc(func(ctx context.Context) error { return queueClient.Ping(ctx).Err() })

	var notifier notification.Notifier = cron.NoopNotifier{}
	if client, err := utils.FirebaseInit(cmd.Context()); err != nil {
		logger.Warn("push notifications disabled", zap.Error(err))
	} else {
		notifier = &notification.FCMNotifier{Client: client, Logger: logger.Named("fcm")}
	}

	queue := asynq.NewClient(cron.RedisOpt())
	defer queue.Close()
	dispatcher := &notification.AsynqDispatcher{Client: queue}

	// services.
	ledgerService := &ledger.DefaultLedgerService{
		Repo:   ledgerStore,
		Logger: logger.Named("ledger"),
	}
	matchingService := &matching.DefaultMatchingService{
		RequestRepo: requests,
		DonorRepo:   donors,
		Cache:       cache,
		CacheTTL:    config.MatchCacheTTL(),
		Logger:      logger.Named("matching"),
	}
	lifecycleService := &lifecycle.DefaultLifecycleService{
		RequestRepo: requests,
		AlertRepo:   alerts,
		DonorRepo:   donors,
		Ledger:      ledgerService,
		Dispatcher:  dispatcher,
		Matches:     cache,
		Logger:      logger.Named("lifecycle"),
	}
	donorService := &donor.DefaultDonorService{
		DonorRepo:   donors,
		AlertRepo:   alerts,
		RequestRepo: requests,
		Dispatcher:  dispatcher,
		Matches:     cache,
		Logger:      logger.Named("donor"),
	}

	stopWorker, err := cron.InitWorker(notifier, donorService)
	if err != nil {
		return err
	}
	defer stopWorker()

	ctx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(ctx, time.Minute, healthTargets)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		Requests: &handlers.RequestHandler{Lifecycle: lifecycleService, Matching: matchingService, Ledger: ledgerService},
		Alerts:   &handlers.AlertHandler{Lifecycle: lifecycleService},
		Donors:   &handlers.DonorHandler{Donors: donorService},
		Admin:    &handlers.AdminHandler{Donors: donorService, Ledger: ledgerService},
		Health:   &handlers.HealthHandler{},
	})

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}
	logger.Info("server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
