package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/coffeebreak-api/api/episodes"
	"github.com/killallgit/coffeebreak-api/api/flags"
	"github.com/killallgit/coffeebreak-api/api/health"
	"github.com/killallgit/coffeebreak-api/api/participants"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/api/version"
	_ "github.com/killallgit/coffeebreak-api/docs/swagger"
	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/pipeline"
	episodesService "github.com/killallgit/coffeebreak-api/internal/services/episodes"
	"github.com/killallgit/coffeebreak-api/pkg/config"
)

// episodeCacheTTL bounds how long read responses may lag an ingest made by
// another process
const episodeCacheTTL = 10 * time.Minute

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// API v1 routes
	v1 := engine.Group("/api/v1")
	limit := func() []gin.HandlerFunc {
		if !cfg.RateLimiting.Enabled {
			return nil
		}
		return []gin.HandlerFunc{PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized,
			cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.Burst)}
	}

	// Ingest runs are heavy: a larger body is allowed but only one run per
	// second per client
	ingestMiddleware := []gin.HandlerFunc{RequestSizeLimitWithSize(episodes.MaxIngestBodySize)}
	if cfg.RateLimiting.Enabled {
		ingestMiddleware = append(ingestMiddleware, PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 1, 2))
	}

	episodeGroup := v1.Group("/episodes", limit()...)
	episodes.RegisterRoutes(episodeGroup, deps, ingestMiddleware...)

	participantGroup := v1.Group("/participants", limit()...)
	participants.RegisterRoutes(participantGroup, deps)

	flagGroup := v1.Group("/flags", limit()...)
	flags.RegisterRoutes(flagGroup, deps)

	return nil
}

// initializePipeline builds the extraction pipeline and the services the
// handlers read from. The returned cache must be stopped on shutdown.
func initializePipeline(deps *types.Dependencies, cfg *config.Config) (episodesService.EpisodeCache, error) {
	cache := episodesService.NewCache(episodeCacheTTL)

	p, err := pipeline.New(deps.DB.DB, pipeline.OptionsFromConfig(cfg),
		pipeline.WithCache(cache),
		pipeline.WithSink(diagnostics.LogSink{}),
	)
	if err != nil {
		cache.Stop()
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	deps.EpisodeService = p.Episodes()
	deps.Runner = p
	deps.Participants = p.Registry()
	return cache, nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
