// Package server contains the HTTP handlers and routing for the web application.
package server

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
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
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	sessions       *session.Manager
	accountService *service.AccountService
	postService    *service.PostService
	avatarService  *service.AvatarService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	server, err := NewServerWithDeps(cfg, db, redisClient)
	if err != nil {
		return nil, err
	}
	server.promMiddleware = middleware.InitMetrics("inkwell")
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	avatarService := service.NewAvatarService(cfg.AvatarDir)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		userRepo:       userRepo,
		postRepo:       postRepo,
		sessions:       session.NewManager(cfg.SessionSecret),
		avatarService:  avatarService,
		accountService: service.NewAccountService(userRepo, avatarService),
		postService:    service.NewPostService(postRepo, userRepo, postsPerPage),
	}

	return server, nil
}

// NewApp builds the Fiber app with views, middleware and routes wired.
func (s *Server) NewApp() *fiber.App {
	engine := html.New(s.config.ViewsDir, ".html")
	engine.Reload(!s.config.IsProduction())
	// Pagination links need simple arithmetic.
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })

	app := fiber.New(fiber.Config{
		AppName:           "Inkwell",
		Views:             engine,
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
		BodyLimit:         8 * 1024 * 1024,
		ErrorHandler:      s.errorHandler,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
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

	// Security headers. The app serves its own inline-free templates, so the
	// defaults are safe.
	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data:; style-src 'self' https://cdn.jsdelivr.net; script-src 'self' https://cdn.jsdelivr.net",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Resolve the session cookie into locals before any handler runs.
	app.Use(s.LoadUser())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).
				SendString("Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded avatars and stylesheets
	app.Static("/static", "./static")

	// Public pages
	app.Get("/", s.Home)
	app.Get("/home", s.Home)
	app.Get("/about", s.About)
	app.Get("/user/:username", s.UserPosts)

	// Auth pages
	app.Get("/register", s.ShowRegister)
	app.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	app.Get("/login", s.ShowLogin)
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout", s.Logout)

	// Account management
	app.Get("/account", s.RequireAuth(), s.ShowAccount)
	app.Post("/account", s.RequireAuth(), s.UpdateAccount)

	// Post management. Define /post/new BEFORE generic /post/:id so the
	// literal segment is not swallowed by the param route.
	app.Get("/post/new", s.RequireAuth(), s.ShowNewPost)
	app.Post("/post/new", s.RequireAuth(), s.CreatePost)
	app.Get("/post/:id/update", s.RequireAuth(), s.ShowEditPost)
	app.Post("/post/:id/update", s.RequireAuth(), s.UpdatePost)
	app.Post("/post/:id/delete", s.RequireAuth(), s.DeletePost)
	app.Get("/post/:id", s.ShowPost)
}

// LoadUser resolves the session cookie, if any, into request locals. Invalid
// or expired cookies are cleared and the request continues anonymously.
func (s *Server) LoadUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(session.CookieName)
		if token == "" {
			return c.Next()
		}

		identity, err := s.sessions.Parse(token)
		if err != nil {
			c.Cookie(session.ExpiredCookie(s.config.IsProduction()))
			return c.Next()
		}

		user, err := s.userRepo.GetByID(c.Context(), identity.UserID)
		if err != nil {
			// Session references a user that no longer resolves; drop it.
			c.Cookie(session.ExpiredCookie(s.config.IsProduction()))
			return c.Next()
		}

		c.Locals("userID", identity.UserID)
		c.Locals("CurrentUser", user)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, identity.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequireAuth redirects anonymous requests to the login page, preserving the
// requested path so login can send the user back.
func (s *Server) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("userID").(uint); !ok {
			s.setFlash(c, "info", "Please log in to access this page.")
			return c.Redirect("/login?next="+c.Path(), fiber.StatusSeeOther)
		}
		return c.Next()
	}
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

	// Redis only backs rate limiting, which fails open, so an unavailable
	// Redis degrades readiness output without failing the probe.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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
	app := s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
