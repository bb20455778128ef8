package server

import (
	"context"
	"strings"
	"time"

	"portfolio/auth"
	"portfolio/models"
	"portfolio/query"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const defaultBodyLimit = 4 * 1024 * 1024

// Store is the persistence behind the HTTP API
type Store interface {
	Ping(ctx context.Context) error

	ListContent(ctx context.Context, kind models.Kind, opts query.ListOptions) ([]models.ContentItem, error)
	GetContent(ctx context.Context, kind models.Kind, id int64) (models.ContentItem, error)
	CreateContent(ctx context.Context, item models.ContentItem) (models.ContentItem, error)
	UpdateContent(ctx context.Context, item models.ContentItem) (models.ContentItem, error)
	DeleteContent(ctx context.Context, kind models.Kind, id int64) error
	DeleteAllContent(ctx context.Context, kind models.Kind) (int64, error)
	CategoryCounts(ctx context.Context, kind models.Kind) (map[string]int, error)

	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int64) (models.Project, error)
	CreateProject(ctx context.Context, project models.Project) (models.Project, error)
	UpdateProject(ctx context.Context, project models.Project) (models.Project, error)
	DeleteProject(ctx context.Context, id int64) error

	CreateContact(ctx context.Context, submission models.ContactSubmission) (models.ContactSubmission, error)
}

// Refresher runs one ingestion cycle
type Refresher interface {
	Run(ctx context.Context) (models.IngestSummary, error)
}

type Syncer interface {
	Sync(ctx context.Context) (models.SyncSummary, error)
}

type Scheduler interface {
	Running() bool
	Status() []models.JobStatus
	Reset(id string) (time.Time, error)
}

type Assistant interface {
	Chat(ctx context.Context, sessionId, message string) (models.ChatMessage, error)
	AskCV(ctx context.Context, question string, detailed bool) (string, error)
	DraftBlog(ctx context.Context, req models.BlogRequest) (models.BlogDraft, error)
}

type ServerConfig struct {
	Store Store

	// Blog and tool pipelines behind the manual refresh endpoints
	Blogs Refresher
	Tools Refresher

	Projects  Syncer
	Scheduler Scheduler
	Assistant Assistant
	Auth      *auth.JWTManager

	// Broadcast channel to pass ingestion summaries to SSE clients
	Broadcaster *Broadcaster

	CorsOrigins   []string
	UploadsDir    string
	MaxUploadSize int64

	// Mark the session cookie Secure, for deployments behind TLS
	SecureCookie bool
}

// Server returns a fiber.App serving the public, auth and admin API
func Server(config *ServerConfig) *fiber.App {
	bodyLimit := defaultBodyLimit
	if limit := int(config.MaxUploadSize) + 64*1024; limit > bodyLimit {
		bodyLimit = limit
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New(compress.Config{
		// Compression buffers the event stream
		Next: func(c *fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/events")
		},
	}))
	app.Use(cors.New(corsConfig(config.CorsOrigins)))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := config.Store.Ping(c.UserContext()); err != nil {
			log.WithError(err).Error("Health check failed")
			return fail(c, fiber.StatusServiceUnavailable, "Database unavailable")
		}
		return ok(c, fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if config.UploadsDir != "" {
		app.Static("/uploads", config.UploadsDir, fiber.Static{Browse: false})
	}

	api := app.Group("/api/v1")
	registerPublic(api, config)
	registerAuth(api.Group("/auth"), config)
	registerAdmin(api.Group("/admin", requireAdmin(config.Auth)), config)

	app.Use(func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "Route not found")
	})

	return app
}

func corsConfig(origins []string) cors.Config {
	allowed := strings.Join(origins, ",")
	cfg := cors.Config{
		AllowOrigins:     allowed,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Cache-Control",
		AllowCredentials: true,
	}
	// Credentials cannot be combined with a wildcard origin
	if allowed == "" || strings.Contains(allowed, "*") {
		cfg.AllowOrigins = "*"
		cfg.AllowCredentials = false
	}
	return cfg
}
