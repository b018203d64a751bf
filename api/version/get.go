package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the API; the serve command sets it from the build
var Version = "dev"

// Get handles version requests
// @Summary API version
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Coffee Break API",
			"version":     Version,
			"description": "Episode metadata extracted from the Coffee Break: Señal y Ruido podcast",
			"status":      "running",
		})
	}
}
