package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-loyalty-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-loyalty-api/internal/auth"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/config"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/controllers"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/database"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/middleware"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/realtime"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db            *gorm.DB
	configuration *config.Config
)

// @title Teezy Loyalty API
// @version 1.0
// @description Ordering and loyalty backend for the Teezy Telegram mini app
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token, or "tma" followed by the Telegram init data.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	// Initialize database connection
	db = setupDatabase(configuration)

	// Background workers
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := services.NewDispatcher(services.LogSender{}, configuration.NewsletterWorkers)
	hub := realtime.NewHub()
	go hub.Run(ctx)

	// Initialize Gin router
	router := setupRouter(dispatcher, hub)

	server := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}

	// Pending newsletter deliveries finish before the process exits
	dispatcher.Close()
	log.WithFields(log.Fields{
		"delivered": dispatcher.Delivered(),
		"failed":    dispatcher.Failed(),
	}).Info("Newsletter dispatcher drained")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment.
// LOG_LEVEL, when set, overrides the environment default.
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
		gin.SetMode(gin.ReleaseMode)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if level, err := log.ParseLevel(config.GetEnvWithDefault("LOG_LEVEL", "")); err == nil {
		log.SetLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates and seeds the database
func setupDatabase(conf *config.Config) *gorm.DB {
	conn, err := database.InitDatabase(conf.Database())
	checkPanicErr(err)
	checkPanicErr(database.Migrate(conn))
	checkPanicErr(database.Seed(conn))
	return conn
}

// setupRouter wires services into controllers and mounts every route
func setupRouter(dispatcher *services.Dispatcher, hub *realtime.Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(configuration.CORSOrigins))

	userService := services.NewUserService(db)
	promotionService := services.NewPromotionService(db)
	orderService := services.NewOrderService(db, promotionService, services.WithPublisher(hub))
	backupService := services.NewBackupService(db, services.BackupConfig{
		Dir:        configuration.BackupDir,
		PGDumpPath: configuration.PGDumpPath,
		Database:   configuration.Database(),
	})

	verifier := auth.NewInitDataVerifier(configuration.TelegramBotToken, configuration.InitDataMaxAge)
	sessions := auth.NewSessionIssuer(configuration.JWTSecret, configuration.JWTTTL)
	oauthService := auth.NewOAuthService(db, configuration.JWTSecret, configuration.JWTTTL)

	routes := &controllers.Routes{
		Authenticate: middleware.Authenticate([]byte(configuration.JWTSecret), verifier, userService),
		OAuthToken:   oauthService.HandleToken,
		OrderFeed:    hub.ServeWS,
		Auth:         controllers.NewAuthController(verifier, userService, sessions),
		Menu:         controllers.NewMenuController(services.NewMenuService(db), services.NewStoreService(db)),
		Promotions:   controllers.NewPromotionController(promotionService),
		Orders:       controllers.NewOrderController(orderService),
		Loyalty:      controllers.NewLoyaltyController(services.NewLoyaltyService(db)),
		Newsletters:  controllers.NewNewsletterController(services.NewNewsletterService(db, dispatcher)),
		Operations:   controllers.NewOperationsController(services.NewExportService(db), backupService),
		Clients:      controllers.NewClientController(services.NewClientService(db)),
	}

	// Health check endpoint
	router.GET("/health", healthCheckHandler)
	routes.Register(router)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return router
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service and its database are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-loyalty-api",
	})
}
