// LockIn API gateway.
//
// @title           LockIn API
// @version         0.1.0
// @description     Schedule parsing, clarification and optimization service.
//
// @BasePath        /api/v1
// @schemes         http
package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/lockin-app/lockin-api/api/swagger"
	"github.com/lockin-app/lockin-api/internal/handler"
	"github.com/lockin-app/lockin-api/internal/llm"
	"github.com/lockin-app/lockin-api/internal/middleware"
	"github.com/lockin-app/lockin-api/internal/repository"
	"github.com/lockin-app/lockin-api/internal/service"
	"github.com/lockin-app/lockin-api/pkg/cache"
	"github.com/lockin-app/lockin-api/pkg/config"
	"github.com/lockin-app/lockin-api/pkg/database"
	"github.com/lockin-app/lockin-api/pkg/logger"
	"github.com/lockin-app/lockin-api/pkg/middleware/cors"
	"github.com/lockin-app/lockin-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logr.Sync() }()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	parserClient := llm.NewParserClient(cfg.Parser)
	optimizerClient := llm.NewOptimizerClient(cfg.Optimizer)

	metricsSvc := service.NewMetricsService()

	scheduleSvc := service.NewScheduleService(scheduleRepo, parserClient, metricsSvc, nil, logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "lockin-api",
	})
	optimizerSvc := service.NewOptimizerService(scheduleSvc, userRepo, scheduleRepo, optimizerClient, cacheRepo, metricsSvc, logr, cfg.Optimizer.CacheTTL)
	chatSvc := service.NewChatService(scheduleSvc, userRepo, optimizerClient, cacheRepo, metricsSvc, nil, logr, service.ChatConfig{
		HistoryLimit: cfg.Chat.HistoryLimit,
		HistoryTTL:   cfg.Chat.HistoryTTL,
	})
	preferenceSvc := service.NewPreferenceService(userRepo, nil, logr)
	calendarSvc := service.NewCalendarService(scheduleRepo, scheduleSvc, nil, logr, service.CalendarConfig{
		ClientID:     cfg.Calendar.ClientID,
		ClientSecret: cfg.Calendar.ClientSecret,
		Scopes:       cfg.Calendar.Scopes,
		Timeout:      cfg.Calendar.Timeout,
	})
	exportSvc := service.NewExportService(scheduleSvc, logr, service.ExportsConfig{
		Enabled:      cfg.Exports.Enabled,
		ICSHorizon:   int(cfg.Exports.ICSHorizon.Hours() / 24),
		DefaultTitle: cfg.Exports.DefaultTitle,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, optimizerSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	preferenceHandler := handler.NewPreferenceHandler(preferenceSvc, optimizerSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(cors.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/schedule/parse", scheduleHandler.Parse)
		protected.GET("/schedule", scheduleHandler.Get)
		protected.POST("/schedule", scheduleHandler.Store)
		protected.POST("/schedule/reset", scheduleHandler.Reset)
		protected.POST("/schedule/answer", scheduleHandler.Answer)
		protected.POST("/schedule/optimize", scheduleHandler.Optimize)
		protected.GET("/schedule/export", exportHandler.Download)

		protected.POST("/chat", chatHandler.Chat)
		protected.POST("/chat/finalize", chatHandler.Finalize)
		protected.GET("/chat/history", chatHandler.History)

		protected.GET("/calendar/google/authorize", calendarHandler.AuthorizeURL)
		protected.POST("/calendar/google/callback", calendarHandler.Callback)
		protected.POST("/calendar/google/import", calendarHandler.Import)
		protected.POST("/calendar/google/export", calendarHandler.Export)

		protected.GET("/preferences", preferenceHandler.Get)
		protected.PUT("/preferences", preferenceHandler.Update)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("starting api gateway",
		zap.String("env", cfg.Env),
		zap.String("addr", addr),
	)

	if err := r.Run(addr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}
