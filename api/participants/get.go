package participants

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
)

const defaultDecisionLimit = 100

// GetAll returns the participant registry
// @Summary List participants
// @Description Canonical participant names and the raw spellings mapped to each
// @Tags participants
// @Produce json
// @Success 200 {object} types.ParticipantsResponse
// @Failure 500 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/participants [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Participants == nil {
			types.SendServiceUnavailable(c, "Participant registry not configured")
			return
		}

		people, err := deps.Participants.ListParticipants(c.Request.Context())
		if err != nil {
			log.Printf("[ERROR] Failed to list participants: %v", err)
			types.SendInternalError(c, "Failed to fetch participants")
			return
		}

		types.SendSuccess(c, types.ParticipantsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Participants retrieved"},
			Participants: people,
			Count:        len(people),
		})
	}
}

// GetDecisions returns recorded name resolutions, newest first
// @Summary List name decisions
// @Description Audit trail of minted, fuzzy-matched and ambiguous participant names
// @Tags participants
// @Produce json
// @Param outcome query string false "Filter by outcome" Enums(minted, matched, ambiguous)
// @Param limit query int false "Maximum results (max 1000)" default(100)
// @Success 200 {object} types.DecisionsResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/participants/decisions [get]
func GetDecisions(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Participants == nil {
			types.SendServiceUnavailable(c, "Participant registry not configured")
			return
		}

		var query types.DecisionQuery
		if !types.BindQueryOrError(c, &query) {
			return
		}
		if query.Limit == 0 {
			query.Limit = defaultDecisionLimit
		}

		decisions, err := deps.Participants.ListDecisions(c.Request.Context(), query.Outcome, query.Limit)
		if err != nil {
			log.Printf("[ERROR] Failed to list name decisions (outcome %q): %v", query.Outcome, err)
			types.SendInternalError(c, "Failed to fetch name decisions")
			return
		}

		types.SendSuccess(c, types.DecisionsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Name decisions retrieved"},
			Decisions:    decisions,
			Count:        len(decisions),
		})
	}
}
