package server

import (
	"context"
	"log/slog"
	"os"
	"time"

	"looplane/internal/apperrors"
	"looplane/internal/auth"
	"looplane/internal/config"
	"looplane/internal/database"
	"looplane/internal/handlers"
	"looplane/internal/middleware"
	"looplane/internal/repositories"
	"looplane/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the collaborators the server is built from. Cache, Publisher and
// Hasher are optional. A nil DB selects the in-memory repositories.
type Deps struct {
	DB        *gorm.DB
	Cache     *redis.Client
	Publisher services.EventPublisher
	Hasher    services.PasswordHasher
	Logger    *slog.Logger
}

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app   *fiber.App
	cfg   *config.Config
	db    *gorm.DB
	cache *redis.Client
}

// New wires repositories, services and handlers into a Fiber app.
func New(cfg *config.Config, deps Deps) *Server {
	log := deps.Logger
	hasher := deps.Hasher
	if hasher == nil {
		hasher = services.NewBcryptHasher(0)
	}

	app := fiber.New(fiber.Config{
		AppName:      "looplane",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: middleware.ErrorHandler(apperrors.NewMapper(cfg), log),
	})

	app.Use(middleware.RequestID())
	if cfg.IsDevelopment() {
		app.Use(logger.New(logger.Config{Output: os.Stdout}))
	}
	app.Use(middleware.Audit(log))
	app.Use(recover.New())

	tokens := auth.NewTokenService(cfg)
	var (
		userRepo    repositories.UserRepository
		listingRepo repositories.ListingRepository
	)
	if deps.DB != nil {
		userRepo = repositories.NewGORMUserRepository(deps.DB)
		listingRepo = repositories.NewGORMListingRepository(deps.DB)
	} else {
		userRepo = repositories.NewMemoryUserRepository()
		listingRepo = repositories.NewMemoryListingRepository()
	}

	authService := services.NewAuthService(userRepo, tokens, hasher, log)
	listingService := services.NewListingService(listingRepo, deps.Publisher, log)

	apiV1 := app.Group("/api/v1", middleware.Identity(auth.NewResolver(tokens)))
	if deps.Cache != nil {
		apiV1.Use(middleware.Idempotency(deps.Cache, cfg.IdempotencyTTL, log))
	}

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewUserHandler(authService).RegisterRoutes(apiV1)
	handlers.NewListingHandler(listingService).RegisterRoutes(apiV1)

	s := &Server{app: app, cfg: cfg, db: deps.DB, cache: deps.Cache}
	app.Get("/health", s.health)
	return s
}

// App exposes the Fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.AppPort)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "up",
		"redis":    "disabled",
	}

	if s.db == nil {
		body["database"] = "memory"
	} else if err := database.Ping(ctx, s.db); err != nil {
		status = fiber.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "down"
	}
	if s.cache != nil {
		body["redis"] = "up"
		if err := s.cache.Ping(ctx).Err(); err != nil {
			status = fiber.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["redis"] = "down"
		}
	}

	return c.Status(status).JSON(body)
}
