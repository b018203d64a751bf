package participants

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
)

// RegisterRoutes registers participant registry routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/participants - Canonical names with their recorded variants
	router.GET("", GetAll(deps))

	// GET /api/v1/participants/decisions - Name resolution audit trail
	router.GET("/decisions", GetDecisions(deps))
}
