package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/supplysight/sentinel/audit"
	"github.com/supplysight/sentinel/cache"
	"github.com/supplysight/sentinel/config"
	"github.com/supplysight/sentinel/controller"
	"github.com/supplysight/sentinel/dao"
	"github.com/supplysight/sentinel/db"
	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/rbac"
	"github.com/supplysight/sentinel/router"
	"github.com/supplysight/sentinel/service"
	"github.com/supplysight/sentinel/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger()
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize utilities and the audit trail
	validationUtil := util.NewValidationUtil()
	notificationService := util.NewNotificationService()
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Initialize DAOs
	userDAO := dao.NewUserDAO(db.Neo4jDriver, auditService)
	personaDAO := dao.NewPersonaDAO(db.Neo4jDriver, auditService)

	// Initialize the object cache and the permission evaluator
	objectCache := cache.New(
		config.GetDuration("cache.defaultTTL"),
		config.GetDuration("cache.sweepInterval"),
	)
	defer objectCache.Close()

	evaluator := rbac.NewEvaluator(
		dao.NewDirectory(userDAO, personaDAO),
		objectCache,
		config.GetDuration("cache.permissionTTL"),
	)
	evaluator.SubscribeInvalidations(eventBus)

	// Initialize services
	services, err := service.InitializeServices(
		userDAO,
		personaDAO,
		auditService,
		validationUtil,
		evaluator,
		notificationService,
		eventBus,
	)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Initialize controllers
	controllers := controller.InitializeControllers(services)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(controllers, services.Authz, 100, time.Minute)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
