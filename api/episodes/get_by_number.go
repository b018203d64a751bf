package episodes

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/internal/assembler"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
)

// GetByNumber returns a single episode. The number may be given in any
// spelling the engine understands: "42", "042" or "Ep042".
// @Summary Get episode by number
// @Description Get one assembled episode with its parts, topics and participants
// @Tags episodes
// @Produce json
// @Param number path string true "Episode number" example(042)
// @Success 200 {object} types.SingleEpisodeResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/episodes/{number} [get]
func GetByNumber(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.EpisodeService == nil {
			types.SendServiceUnavailable(c, "Episode service not configured")
			return
		}

		raw := c.Param("number")
		number, ok := assembler.NormalizeNumber(raw)
		if !ok {
			if parsed, _, idOK := assembler.ParseEpisodeID(raw); idOK {
				number, ok = parsed, true
			}
		}
		if !ok {
			types.SendBadRequest(c, "Invalid episode number")
			return
		}

		episode, err := deps.EpisodeService.GetEpisode(c.Request.Context(), number)
		if err != nil {
			if episodes.IsNotFound(err) {
				types.SendNotFound(c, "Episode not found")
				return
			}
			log.Printf("[ERROR] Failed to fetch episode %s: %v", number, err)
			types.SendInternalError(c, "Failed to fetch episode")
			return
		}

		types.SendSuccess(c, types.SingleEpisodeResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Episode retrieved"},
			Episode:      episode,
		})
	}
}
