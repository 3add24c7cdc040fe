package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalogfeed/internal/api/handlers"
	"catalogfeed/internal/api/middleware"
	"catalogfeed/internal/config"
	"catalogfeed/internal/database"
	"catalogfeed/internal/logger"
	"catalogfeed/internal/stores"

	"github.com/gin-gonic/gin"
)

// Services are the feed components the HTTP API drives.
type Services struct {
	Registry  *stores.Registry
	Publisher handlers.FeedPublisher
	Runs      handlers.RunLister
	Notifier  handlers.DeleteNotifier
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, svc Services) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(db.DB, svc.Notifier, logger)
	feedHandler := handlers.NewFeedHandler(svc.Registry, svc.Publisher, svc.Runs, svc.Notifier, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.POST("", productHandler.Create)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
			products.POST("/:id/deleted", feedHandler.ProductDeleted)
		}

		// Feeds
		feeds := v1.Group("/feeds")
		{
			feeds.POST("/publish", feedHandler.Publish)
			feeds.GET("/runs", feedHandler.Runs)
		}

		v1.GET("/stores", feedHandler.Stores)
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	// Publishing uploads the whole artifact, so writes get more room than reads.
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}
