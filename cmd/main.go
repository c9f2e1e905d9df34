package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/otavioajr/shaving-project/internal/handler"
	"github.com/otavioajr/shaving-project/internal/middleware"
	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/internal/otp"
	"github.com/otavioajr/shaving-project/internal/ratelimit"
	"github.com/otavioajr/shaving-project/internal/repository"
	"github.com/otavioajr/shaving-project/internal/scheduler"
	"github.com/otavioajr/shaving-project/internal/tenant"
	"github.com/otavioajr/shaving-project/internal/token"
	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/otavioajr/shaving-project/pkg/config"
	"github.com/otavioajr/shaving-project/pkg/database"
	"github.com/otavioajr/shaving-project/pkg/jwtutil"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"github.com/otavioajr/shaving-project/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("barbershop")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting barbershop service...", cfg.LogConfig()...)

	// Initialize database and run migrations
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(db,
		&model.Barbershop{},
		&model.Professional{},
		&model.Client{},
		&model.Service{},
		&model.Appointment{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Initialize Redis-backed cache
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	store := cache.NewRedisCache(redisClient)

	// Initialize Prometheus metrics
	prometheus.InitMetrics()
	log.Info("Prometheus metrics initialized")

	// Wire the application services
	repo := repository.New(db)
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey: cfg.JWT.SigningKey,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	tokens := token.NewService(jwtUtil, store, cfg.JWT.RefreshTTL, log)
	resolver := tenant.NewResolver(repo, store, cfg.Cache.TenantTTL, log)
	limiter := ratelimit.NewLimiter(store, cfg.RateLimit, log)
	otpService := otp.NewService(store, otp.NopSender{}, cfg.Cache.OTPTTL, log)
	sched := scheduler.NewScheduler(repo, repo, repo, repo, log)

	authHandler := handler.NewAuthHandler(repo, tokens, otpService)
	barbershopHandler := handler.NewBarbershopHandler(repo, tokens, resolver)
	professionalHandler := handler.NewProfessionalHandler(repo, tokens)
	clientHandler := handler.NewClientHandler(repo)
	serviceHandler := handler.NewServiceHandler(repo)
	appointmentHandler := handler.NewAppointmentHandler(sched)
	healthHandler := handler.NewHealthHandler(db, store)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.Middleware())
	e.Use(middleware.TenantMiddleware(resolver))
	e.Use(middleware.RateLimitMiddleware(limiter))

	// Public routes - no authentication required
	e.GET("/", handler.Hello)
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", prometheus.GetPrometheusHandler())

	api := e.Group("/api")

	// Tenant self-registration and public barbershop info
	api.POST("/barbershops", barbershopHandler.Register)
	api.GET("/barbershops/:slug", barbershopHandler.GetPublicInfo)

	// Authentication routes
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/otp/request", authHandler.RequestOTP)
	auth.POST("/otp/verify", authHandler.VerifyOTP)
	auth.POST("/logout", authHandler.Logout, middleware.RequireAuth(jwtUtil))

	// Protected routes - require a valid access token
	protected := api.Group("", middleware.RequireAuth(jwtUtil))

	protected.GET("/barbershop", barbershopHandler.Get)
	protected.PATCH("/barbershop", barbershopHandler.Update, middleware.RequireAdmin())

	professionals := protected.Group("/professionals")
	professionals.GET("", professionalHandler.List)
	professionals.GET("/:id", professionalHandler.Get)
	professionals.POST("", professionalHandler.Create, middleware.RequireAdmin())
	professionals.PATCH("/:id", professionalHandler.Update, middleware.RequireAdmin())
	professionals.DELETE("/:id", professionalHandler.Delete, middleware.RequireAdmin())

	clients := protected.Group("/clients")
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.Get)
	clients.POST("", clientHandler.Create)

	services := protected.Group("/services")
	services.GET("", serviceHandler.List)
	services.GET("/:id", serviceHandler.Get)
	services.POST("", serviceHandler.Create, middleware.RequireAdmin())

	appointments := protected.Group("/appointments")
	appointments.GET("", appointmentHandler.List)
	appointments.GET("/:id", appointmentHandler.Get)
	appointments.POST("", appointmentHandler.Create)
	appointments.PATCH("/:id", appointmentHandler.Update)
	appointments.PATCH("/:id/status", appointmentHandler.UpdateStatus)
	appointments.DELETE("/:id", appointmentHandler.Delete)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
