package episodes

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
)

// GetAll returns one page of the episode index
// @Summary List episodes
// @Description Get assembled episodes ordered by episode number
// @Tags episodes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 200)" default(20)
// @Success 200 {object} types.EpisodesResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/episodes [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.EpisodeService == nil {
			types.SendServiceUnavailable(c, "Episode service not configured")
			return
		}

		var query types.ListQuery
		if !types.BindQueryOrError(c, &query) {
			return
		}
		if query.Page == 0 {
			query.Page = 1
		}
		if query.Limit == 0 {
			query.Limit = episodes.DefaultPageLimit
		}

		list, total, err := deps.EpisodeService.ListEpisodes(c.Request.Context(), query.Page, query.Limit)
		if err != nil {
			if errors.Is(err, episodes.ErrInvalidInput) {
				types.SendBadRequest(c, err.Error())
				return
			}
			log.Printf("[ERROR] Failed to list episodes (page %d, limit %d): %v", query.Page, query.Limit, err)
			types.SendInternalError(c, "Failed to fetch episodes")
			return
		}

		types.SendSuccess(c, types.EpisodesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Episodes retrieved"},
			Episodes:     list,
			Count:        len(list),
			Total:        total,
			Page:         query.Page,
			Limit:        query.Limit,
		})
	}
}
