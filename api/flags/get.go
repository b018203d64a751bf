package flags

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/internal/assembler"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
)

const defaultLimit = 100

// GetAll returns stored diagnostics, newest first
// @Summary List diagnostics
// @Description Flags raised while extracting episodes, for manual review
// @Tags flags
// @Produce json
// @Param run_id query string false "Only flags from this ingest run"
// @Param episode query string false "Only flags for this episode number"
// @Param kind query string false "Flag kind" Enums(malformed_timestamp, ambiguous_name_match, missing_duration, out_of_order_topics, duration_mismatch, topic_beyond_duration, marker_order_reversed, part_layout_changed, unparsable_date)
// @Param limit query int false "Maximum results (max 1000)" default(100)
// @Success 200 {object} types.FlagsResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/flags [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.EpisodeService == nil {
			types.SendServiceUnavailable(c, "Episode service not configured")
			return
		}

		var query types.FlagQuery
		if !types.BindQueryOrError(c, &query) {
			return
		}
		if query.Limit == 0 {
			query.Limit = defaultLimit
		}

		filter := episodes.FlagFilter{
			RunID:   query.RunID,
			Episode: query.Episode,
			Kind:    query.Kind,
			Limit:   query.Limit,
		}
		if query.Episode != "" {
			number, ok := assembler.NormalizeNumber(query.Episode)
			if !ok {
				types.SendBadRequest(c, "Invalid episode number")
				return
			}
			filter.Episode = number
		}

		list, err := deps.EpisodeService.ListFlags(c.Request.Context(), filter)
		if err != nil {
			log.Printf("[ERROR] Failed to list flags: %v", err)
			types.SendInternalError(c, "Failed to fetch flags")
			return
		}

		types.SendSuccess(c, types.FlagsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Flags retrieved"},
			Flags:        list,
			Count:        len(list),
		})
	}
}
