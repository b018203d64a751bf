package flags

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
)

// RegisterRoutes registers diagnostics routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/flags - Diagnostics raised by ingest runs
	router.GET("", GetAll(deps))
}
