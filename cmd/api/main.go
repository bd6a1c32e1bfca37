package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/pkdx/pkdb-api/api/swagger"
	"github.com/pkdx/pkdb-api/internal/handler"
	"github.com/pkdx/pkdb-api/internal/middleware"
	"github.com/pkdx/pkdb-api/internal/repository"
	"github.com/pkdx/pkdb-api/internal/service"
	"github.com/pkdx/pkdb-api/internal/store"
	memorystore "github.com/pkdx/pkdb-api/internal/store/memory"
	postgresstore "github.com/pkdx/pkdb-api/internal/store/postgres"
	"github.com/pkdx/pkdb-api/pkg/cache"
	"github.com/pkdx/pkdb-api/pkg/config"
	"github.com/pkdx/pkdb-api/pkg/database"
	"github.com/pkdx/pkdb-api/pkg/logger"
	corsmiddleware "github.com/pkdx/pkdb-api/pkg/middleware/cors"
	reqidmiddleware "github.com/pkdx/pkdb-api/pkg/middleware/requestid"
)

// @title PKDB Registry API
// @version 0.1.0
// @description Role-gated pharmacokinetic dataset registry
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	st, err := newStorage(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "backend", cfg.Storage.Backend, "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
	}

	validate := validator.New()

	authSvc := service.NewAuthService(st, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	datasetSvc := service.NewDatasetService(st, validate, logr, cacheSvc, metricsSvc)
	roleSvc := service.NewRoleService(st, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r,
		authSvc,
		handler.NewAuthHandler(authSvc),
		handler.NewDatasetHandler(datasetSvc),
		handler.NewRoleHandler(roleSvc),
		handler.NewMetricsHandler(metricsSvc),
	)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "storage", cfg.Storage.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newStorage(cfg *config.Config, logr *zap.Logger) (store.Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgresstore.New(db), nil
	case config.BackendMemory:
		logr.Sugar().Warnw("using in-memory storage; state will not survive a restart")
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
