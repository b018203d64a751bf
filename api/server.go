package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/internal/database"
	"github.com/killallgit/coffeebreak-api/internal/services/cleanup"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
	"github.com/killallgit/coffeebreak-api/pkg/config"
)

// Server represents the HTTP server
type Server struct {
	engine             *gin.Engine
	httpServer         *http.Server
	db                 *database.DB
	episodeCache       episodes.EpisodeCache
	flagCleanup        *cleanup.Service
	rateLimiters       *sync.Map
	cleanupInitialized sync.Once
	cleanupStop        chan struct{}
	stopOnce           sync.Once

	// Dependencies for handlers
	dependencies *types.Dependencies
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithTimeouts overrides the read and write timeouts. Ingest requests run
// the whole batch synchronously, so the write timeout bounds a batch.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(s *Server) {
		if read > 0 {
			s.httpServer.ReadTimeout = read
		}
		if write > 0 {
			s.httpServer.WriteTimeout = write
		}
	}
}

// NewServer creates a new HTTP server
func NewServer(address string, opts ...ServerOption) *Server {
	// Create Gin engine with recovery middleware only
	engine := gin.New()
	engine.Use(gin.Recovery())

	server := &Server{
		engine:       engine,
		rateLimiters: &sync.Map{},
		cleanupStop:  make(chan struct{}),
		httpServer: &http.Server{
			Addr:           address,
			Handler:        engine,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
	}
	for _, opt := range opts {
		opt(server)
	}

	return server
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(db *database.DB) {
	s.db = db
	if s.dependencies == nil {
		s.dependencies = &types.Dependencies{}
	}
	s.dependencies.DB = db
}

// SetDependencies sets all handler dependencies
func (s *Server) SetDependencies(deps *types.Dependencies) {
	s.dependencies = deps
	if deps != nil && deps.DB != nil {
		s.db = deps.DB
	}
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Initialize sets up middleware, the pipeline (when a database is set and
// no services were injected) and routes
func (s *Server) Initialize() error {
	if s.dependencies == nil {
		s.dependencies = &types.Dependencies{}
	}

	// Setup global middleware
	s.setupMiddleware()

	if s.db != nil && s.db.DB != nil && s.dependencies.EpisodeService == nil {
		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}
		cache, err := initializePipeline(s.dependencies, cfg)
		if err != nil {
			return err
		}
		s.episodeCache = cache

		if cfg.Diagnostics.Retention > 0 {
			s.flagCleanup = cleanup.NewService(episodes.NewFlagStore(s.db.DB),
				cfg.Diagnostics.Retention, cfg.Diagnostics.CleanupInterval)
			s.flagCleanup.Start(context.Background())
		}
	}

	// Setup routes
	return s.setupRoutes()
}

// setupMiddleware configures global middleware. Body size limits are set per
// route group since ingest accepts larger bodies.
func (s *Server) setupMiddleware() {
	// Logger middleware
	s.engine.Use(gin.Logger())

	// Global CORS
	s.engine.Use(CORS())
}

// setupRoutes delegates to the main route registration
func (s *Server) setupRoutes() error {
	return RegisterRoutes(s.engine, s.dependencies, s.rateLimiters, s.cleanupStop, &s.cleanupInitialized)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		// Stop the cache cleanup goroutine if it exists
		if s.episodeCache != nil {
			s.episodeCache.Stop()
		}

		if s.flagCleanup != nil {
			s.flagCleanup.Stop()
		}

		// Stop the rate limiter cleanup goroutine
		close(s.cleanupStop)
	})

	return s.httpServer.Shutdown(ctx)
}
