package episodes

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
)

// MaxIngestBodySize bounds a single ingest request
const MaxIngestBodySize = 16 << 20

// RegisterRoutes registers episode routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, ingestMiddleware ...gin.HandlerFunc) {
	// GET /api/v1/episodes - List episodes ordered by number
	router.GET("", GetAll(deps))

	// GET /api/v1/episodes/:number - Get one assembled episode
	router.GET("/:number", GetByNumber(deps))

	// POST /api/v1/episodes/ingest - Run a batch of raw bundles through the engine
	ingest := append(append([]gin.HandlerFunc{}, ingestMiddleware...), PostIngest(deps))
	router.POST("/ingest", ingest...)
}
