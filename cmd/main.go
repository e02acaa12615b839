package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/gin-bistro-api/docs"
	"github.com/franciscosanchezn/gin-bistro-api/internal/auth"
	"github.com/franciscosanchezn/gin-bistro-api/internal/config"
	"github.com/franciscosanchezn/gin-bistro-api/internal/controllers"
	"github.com/franciscosanchezn/gin-bistro-api/internal/database"
	"github.com/franciscosanchezn/gin-bistro-api/internal/middleware"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const tokenPurgeInterval = time.Hour

// @title Bistro API
// @version 1.0
// @description Restaurant menu, session cart and ordering API
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	loadDotenvFile()
	setUpLogger()

	configuration := loadConfig()
	db := setupDatabase(configuration)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go purgeExpiredTokens(ctx, auth.NewGormTokenStore(db))

	router := setupRouter(configuration, db)
	server := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if err := database.CloseDatabase(db); err != nil {
		log.WithError(err).Error("Failed to close database")
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

// setUpLogger uses LOG_LEVEL when set, otherwise derives the level from the environment.
// The level is applied to the global logger and to every package logger.
func setUpLogger() {
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	level := config.ResolveLogLevel(os.Getenv("LOG_LEVEL"), environment)
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(level)
	for _, setLevel := range []func(log.Level){
		auth.SetLogLevel,
		config.SetLogLevel,
		controllers.SetLogLevel,
		database.SetLogLevel,
		middleware.SetLogLevel,
		services.SetLogLevel,
	} {
		setLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase connects, migrates the schema and seeds the reference data
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(conf.DatabaseConfig())
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))

	// The allergen vocabulary is reference data and always present
	checkPanicErr(database.SeedAllergens(db))
	if conf.SeedData {
		checkPanicErr(database.SeedMenu(db))
	}
	return db
}

// setupRouter initializes the Gin router and sets up the routes
func setupRouter(conf *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.Default()

	controllers.SetupRoutes(router, db, controllers.RouterConfig{
		JWTSecret:     conf.JWTSecret,
		CORSOrigins:   conf.CORSOrigins,
		SecureCookies: conf.SessionCookieSecure,
	})

	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", conf.Host, conf.Port)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return router
}

// purgeExpiredTokens removes expired operator access tokens until ctx is cancelled
func purgeExpiredTokens(ctx context.Context, store *auth.GormTokenStore) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			purged, err := store.PurgeExpired(ctx, now)
			if err != nil {
				log.WithError(err).Warn("Failed to purge expired tokens")
				continue
			}
			if purged > 0 {
				log.WithField("purged", purged).Info("Expired operator tokens purged")
			}
		}
	}
}
