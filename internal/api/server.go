package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventgate/internal/cache"
	"eventgate/internal/config"
	"eventgate/internal/database"
	"eventgate/internal/handlers"
	"eventgate/internal/logger"
	"eventgate/internal/messaging"
	"eventgate/internal/middleware"
	"eventgate/internal/repository"
	"eventgate/internal/search"
	"eventgate/internal/service"
)

// Server is the HTTP API process: database, queue producer, optional search
// index and cache, and the gin router on top.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	// Search and cache are optional; the API degrades to SQL-only behavior
	// when either is disabled or unreachable at startup.
	var index *search.EventIndex
	if cfg.Elasticsearch.Enabled {
		index, err = search.NewEventIndex(cfg.Elasticsearch)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, search falls back to SQL", "error", err)
			index = nil
		}
	}

	var valkeyClient *cache.ValkeyClient
	if cfg.Valkey.Enabled {
		valkeyClient, err = cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			logger.Get().Warn("Valkey unavailable, continuing without cache", "error", err)
			valkeyClient = nil
		}
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, index)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	api := s.router.Group("/api/v1")
	{
		// Public endpoints: browsing and registration.
		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.GET("/:id/tickets", h.ListEventTickets)
			events.POST("/:id/tickets/:ticketID/registrations", h.CreateRegistration)
		}

		// Admin endpoints behind Basic Auth.
		admin := api.Group("/admin")
		admin.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
		{
			adminEvents := admin.Group("/events")
			{
				adminEvents.GET("", h.AdminListEvents)
				adminEvents.POST("", h.CreateEvent)
				adminEvents.GET("/:id", h.AdminGetEvent)
				adminEvents.PATCH("/:id", h.UpdateEvent)
				adminEvents.DELETE("/:id", h.DeleteEvent)

				adminEvents.GET("/:id/tickets", h.AdminListEventTickets)
				adminEvents.POST("/:id/tickets", h.CreateTicket)
				adminEvents.PATCH("/:id/tickets/:ticketID", h.UpdateTicket)
				adminEvents.DELETE("/:id/tickets/:ticketID", h.DeleteTicket)
			}

			registrations := admin.Group("/registrations")
			{
				registrations.GET("", h.ListRegistrations)
				registrations.GET("/:id", h.GetRegistration)
				registrations.PATCH("/:id", h.UpdateRegistration)
				registrations.DELETE("/:id", h.DeleteRegistration)
				registrations.POST("/:id/checkin", h.CheckInRegistration)
			}

			admin.POST("/checkin", h.CheckInByReference)
		}
	}

	// Generated artifacts (QR codes, invoices) are served from local disk.
	s.router.Static("/storage", s.config.Storage.Root)

	s.router.GET("/healthz", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":  health.Status,
		"service": "eventgate-api",
		"db":      health,
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes external connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
