package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/auth"
	"github.com/makerfolio/makerfolio-api/pkg/config"
	"github.com/makerfolio/makerfolio-api/pkg/database"
	"github.com/makerfolio/makerfolio-api/pkg/handlers"
	"github.com/makerfolio/makerfolio-api/pkg/logging"
	"github.com/makerfolio/makerfolio-api/pkg/middleware"
	"github.com/makerfolio/makerfolio-api/pkg/repositories"
	"github.com/makerfolio/makerfolio-api/pkg/services"
	"github.com/makerfolio/makerfolio-api/pkg/ws"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("bind_addr", cfg.BindAddr),
		zap.String("port", cfg.Port),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run over database/sql on the same pool.
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	teamRepo := repositories.NewTeamRepository(db)
	memberRepo := repositories.NewTeamMemberRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	followRepo := repositories.NewFollowRepository(db)

	// Auth
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		logger.Fatal("Failed to create token manager", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(tokens, logger)

	// Realtime hub doubles as the services notifier.
	hub := ws.NewHub(logger)

	// Services
	authService := services.NewAuthService(userRepo, tokens, logger)
	userService := services.NewUserService(userRepo, followRepo, hub, logger)
	teamService := services.NewTeamService(teamRepo, memberRepo, projectRepo, db, hub, logger)
	projectService := services.NewProjectService(projectRepo, teamRepo, memberRepo, hub, logger)
	commentService := services.NewCommentService(commentRepo, projectRepo, hub, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(mux)
	handlers.NewUsersHandler(userService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewTeamsHandler(teamService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewProjectsHandler(projectService, commentService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewWSHandler(hub, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting makerfolio-api",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
