// Package bootstrap wires configuration, storage and the dependency graph.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/lusapp/backend/internal/app/controllers"
	appMigrations "github.com/lusapp/backend/internal/app/migrations"
	appRepos "github.com/lusapp/backend/internal/app/repositories"
	appRoutes "github.com/lusapp/backend/internal/app/routes"
	appServices "github.com/lusapp/backend/internal/app/services"
	"github.com/lusapp/backend/internal/config"
	"github.com/lusapp/backend/internal/db"
	appMiddleware "github.com/lusapp/backend/internal/middleware"
	pkgAuth "github.com/lusapp/backend/internal/pkg/auth"
	"github.com/lusapp/backend/internal/pkg/filestorage"
	"github.com/lusapp/backend/internal/pkg/helpers"
	"github.com/lusapp/backend/internal/pkg/logger"
	"github.com/lusapp/backend/internal/pkg/metrics"
	"github.com/lusapp/backend/internal/pkg/websocket"
	"github.com/lusapp/backend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	FileStorage       *filestorage.LocalStorage
	Collector         *metrics.Collector
	Registry          *prometheus.Registry
	Hub               *websocket.Hub
	AuthService       appServices.AuthService
	EnrollmentService appServices.EnrollmentService
	UserService       appServices.UserService
	RaceService       appServices.RaceService
	GroupService      appServices.GroupService
	PostService       appServices.PostService
	MessageService    appServices.MessageService
	GearService       appServices.GearService
	Controllers       appRoutes.Controllers
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Pool.Close()
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Pool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		database.Pool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services, controllers and the
// websocket hub.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	baseURL := "http://localhost:" + cfg.Server.Port
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL+"/uploads")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Registry = prometheus.NewRegistry()
	deps.Collector = metrics.NewCollector(deps.Registry)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 168*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.User, deps.Repos.RefreshToken, deps.JWTService, lgr)
	deps.EnrollmentService = appServices.NewEnrollmentService(
		database,
		deps.Repos.User,
		deps.Repos.Race,
		deps.Repos.Group,
		deps.Repos.GroupMember,
		deps.Repos.Post,
		deps.Collector,
		lgr,
	)
	deps.UserService = appServices.NewUserService(deps.Repos.User, deps.Repos.Notification, database, deps.FileStorage, lgr)
	deps.RaceService = appServices.NewRaceService(deps.Repos.Race, deps.Repos.Post, lgr)
	deps.GroupService = appServices.NewGroupService(deps.Repos.Group, deps.Repos.GroupMember, deps.Repos.GroupMessage, database, lgr)
	deps.PostService = appServices.NewPostService(deps.Repos.Post, deps.Repos.Race, deps.Repos.User, deps.Repos.Notification, lgr)
	deps.MessageService = appServices.NewMessageService(deps.Repos.Conversation, deps.Repos.GroupMessage, deps.Repos.GroupMember, lgr)
	deps.GearService = appServices.NewGearService(deps.Repos.Gear, deps.Repos.GroupMember)
	notificationService := appServices.NewNotificationService(deps.Repos.Notification)

	// Backend JWTs are tried first; Google ID tokens join the chain when the
	// identity provider is enabled
	verifiers := []pkgAuth.Verifier{pkgAuth.NewBackendVerifier(deps.JWTService)}
	if cfg.Identity.Enabled {
		verifiers = append(verifiers, pkgAuth.NewGoogleVerifier(cfg.Identity.Audience, deps.AuthService))
		lgr.Info().Str("audience", cfg.Identity.Audience).Msg("Google identity verification enabled")
	}
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(pkgAuth.NewVerifierChain(verifiers...))

	deps.Hub = websocket.NewHub(lgr, deps.Collector)
	go deps.Hub.Run()

	messageHandler := websocket.NewMessageHandler(deps.Repos.GroupMessage, deps.Hub, lgr)
	messageHandler.Start()

	wsHandler := websocket.NewHandler(deps.Hub, deps.Repos.GroupMember, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		User:         appControllers.NewUserController(deps.UserService, lgr),
		Race:         appControllers.NewRaceController(deps.RaceService, deps.EnrollmentService, lgr),
		Group:        appControllers.NewGroupController(deps.GroupService, lgr),
		Post:         appControllers.NewPostController(deps.PostService, lgr),
		Message:      appControllers.NewMessageController(deps.MessageService, lgr),
		Notification: appControllers.NewNotificationController(notificationService),
		Gear:         appControllers.NewGearController(deps.GearService),
		Upload:       appControllers.NewUploadController(deps.UserService, deps.FileStorage, lgr),
		Health:       appControllers.NewHealthController(database.Pool),
		Websocket:    wsHandler,
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.Observability(lgr, deps.Collector))

	router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Registry)))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, appRoutes.AdminCredentials{
		Username: cfg.Server.AdminUser,
		Password: cfg.Server.AdminPassword,
	})

	return router
}
