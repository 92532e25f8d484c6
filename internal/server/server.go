// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	gcs "cloud.google.com/go/storage"

	_ "stash/docs" // swagger docs
	"stash/internal/cache"
	"stash/internal/config"
	"stash/internal/database"
	"stash/internal/middleware"
	"stash/internal/models"
	"stash/internal/notifications"
	"stash/internal/repository"
	"stash/internal/service"
	"stash/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	viewRepo    repository.ProfileViewRepository

	resolver *storage.Resolver
	notifier *notifications.Notifier
	viewHub  *notifications.ViewHub

	profileService  *service.ProfileService
	categoryService *service.CategoryService
	productService  *service.ProductService
	stashService    *service.StashService
	publicService   *service.PublicService
	imageService    *service.ImageService
}

// buildBuckets constructs the private and public buckets for the configured
// storage driver.
func buildBuckets(cfg *config.Config) (private, public storage.Bucket, err error) {
	switch cfg.StorageDriver {
	case "gcs":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs client: %w", err)
		}
		private, err = storage.NewGCSBucket(ctx, client, cfg.StoragePrivateBucket)
		if err != nil {
			return nil, nil, err
		}
		public, err = storage.NewGCSBucket(ctx, client, cfg.StoragePublicBucket)
		if err != nil {
			return nil, nil, err
		}
		return private, public, nil
	default:
		baseURL := "http://localhost:" + cfg.Port + "/media"
		private, err = storage.NewLocalBucket(cfg.StoragePrivateBucket, cfg.StorageLocalDir, baseURL)
		if err != nil {
			return nil, nil, err
		}
		public, err = storage.NewLocalBucket(cfg.StoragePublicBucket, cfg.StorageLocalDir, baseURL)
		if err != nil {
			return nil, nil, err
		}
		return private, public, nil
	}
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	private, public, err := buildBuckets(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage setup failed: %w", err)
	}

	return newServer(cfg, db, redisClient, private, public)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis/storage.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, private, public storage.Bucket) (*Server, error) {
	return newServer(cfg, db, redisClient, private, public)
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, private, public storage.Bucket) (*Server, error) {
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	viewRepo := repository.NewProfileViewRepository(db)
	publicRepo := repository.NewPublicRepository(db)

	prom := middleware.InitMetrics("stash-api")

	resolver := storage.NewResolver(private, public, middleware.Logger)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		viewRepo:       viewRepo,
		resolver:       resolver,
	}

	server.profileService = service.NewProfileService(profileRepo)
	server.categoryService = service.NewCategoryService(categoryRepo, productRepo, resolver, middleware.Logger)
	server.productService = service.NewProductService(productRepo, categoryRepo, resolver, middleware.Logger)
	server.stashService = service.NewStashService(categoryRepo, productRepo)
	server.publicService = service.NewPublicService(publicRepo, viewRepo, resolver, middleware.Logger)
	server.imageService = service.NewImageService(private, cfg)

	if redisClient != nil {
		middleware.SetRevocationCheck(func(ctx context.Context, jti string) bool {
			n, err := redisClient.Exists(ctx, "blacklist:"+jti).Result()
			return err == nil && n > 0
		})
		server.notifier = notifications.NewNotifier(redisClient)
		server.viewHub = notifications.NewViewHub()
		server.publicService.SetViewNotifier(func(ctx context.Context, username string, count int64) {
			if err := server.notifier.PublishViewCount(ctx, username, count); err != nil {
				log.Printf("failed to publish view count for %s: %v", username, err)
			}
		})
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Stash Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Local storage driver: bucket objects are plain files, so PublicURL
	// targets resolve to this static route. GCS serves its own URLs.
	if s.config.StorageDriver != "gcs" && s.config.StorageLocalDir != "" {
		app.Static("/media", s.config.StorageLocalDir)
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)

	// Public profile page and its live view counter
	api.Get("/stash/:username", s.GetPublicStash)
	api.Get("/ws/views/:username", s.WebSocketViewsHandler())

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// Profile routes
	profiles := protected.Group("/profiles")
	profiles.Get("/me", s.GetMyProfile)
	profiles.Put("/me", s.UpdateMyProfile)

	// Owner dashboard
	protected.Get("/stash", s.GetMyStash)

	// Category routes
	categories := protected.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Post("/", s.CreateCategory)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	categories.Get("/:id/products", s.GetCategoryProducts)
	categories.Put("/:id/order", s.ReorderCategory)
	categories.Delete("/:id", s.DeleteCategory)

	// Product routes
	products := protected.Group("/products")
	products.Post("/", s.CreateProduct)
	products.Get("/:id", s.GetProduct)
	products.Put("/:id", s.UpdateProduct)
	products.Delete("/:id", s.DeleteProduct)

	// Image upload
	protected.Post("/images", middleware.RateLimit(
		s.redis, 20, time.Minute, "image_upload"), s.UploadImage)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Stash API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the view hub to the Redis subscriber if available
	if s.notifier != nil && s.viewHub != nil {
		go func() {
			if err := s.viewHub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.viewHub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.viewHub != nil {
		if err := s.viewHub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.viewHub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
