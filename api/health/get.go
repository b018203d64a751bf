package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/api/version"
)

// Get handles health check requests. An unreachable database makes the
// service unhealthy; a missing pipeline only means the API is read-only.
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} types.HealthResponse
// @Failure 503 {object} types.HealthResponse
// @Router /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps == nil {
			deps = &types.Dependencies{}
		}

		database := getDatabaseStatus(deps)
		response := types.HealthResponse{
			BaseResponse: types.BaseResponse{Status: "healthy", Message: time.Now().UTC().Format(time.RFC3339)},
			Version:      version.Version,
			Services: map[string]interface{}{
				"database": database,
				"ingest":   configured(deps.Runner != nil),
				"episodes": configured(deps.EpisodeService != nil),
			},
		}

		code := http.StatusOK
		if database["status"] == "error" {
			response.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, response)
	}
}

func configured(ok bool) gin.H {
	if ok {
		return gin.H{"status": "configured"}
	}
	return gin.H{"status": "not configured"}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) gin.H {
	if deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured", "connected": false}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "error", "connected": false, "error": err.Error()}
	}

	return gin.H{"status": "connected", "connected": true}
}
