package episodes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/api/types"
	"github.com/killallgit/coffeebreak-api/internal/services/workers"
	"github.com/killallgit/coffeebreak-api/pkg/config"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
)

// PostIngest runs raw bundles through the extraction engine and stores the
// assembled episodes. The body is one bundle or an array of bundles.
// @Summary Ingest episode bundles
// @Description Extract, reconcile and store episodes from raw RSS, info and web texts
// @Tags episodes
// @Accept json
// @Produce json
// @Param bundles body []models.Bundle true "Bundles to ingest (a single object is accepted)"
// @Success 200 {object} types.IngestResponse "Every episode stored"
// @Success 207 {object} types.IngestResponse "Some episodes failed"
// @Failure 400 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse "Another run holds the registry lock"
// @Failure 422 {object} types.IngestResponse "Every episode failed"
// @Failure 500 {object} types.IngestResponse "Episodes stored but the registry was not saved"
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/episodes/ingest [post]
func PostIngest(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Runner == nil {
			types.SendServiceUnavailable(c, "Ingest pipeline not configured")
			return
		}

		bundles, ok := types.BindBundlesOrError(c)
		if !ok {
			return
		}
		config.Debugf("Ingest request with %d bundles from %s", len(bundles), c.ClientIP())

		result, err := deps.Runner.Run(c.Request.Context(), bundles)
		if result == nil {
			types.SendError(c, "Ingest run failed", err)
			return
		}

		resp := newIngestResponse(result)
		stored := resp.Created + resp.Updated
		switch {
		case err != nil && stored > 0:
			// episodes are stored but the run did not finish cleanly
			resp.Status = types.StatusError
			resp.Message = err.Error()
			c.JSON(apperrors.GetHTTPCode(err), resp)
		case err != nil:
			resp.Status = types.StatusError
			resp.Message = err.Error()
			c.JSON(http.StatusUnprocessableEntity, resp)
		case resp.Failed > 0:
			resp.Status = types.StatusPartial
			resp.Message = "Some episodes could not be ingested"
			c.JSON(http.StatusMultiStatus, resp)
		default:
			types.SendSuccess(c, resp)
		}
	}
}

func newIngestResponse(result *workers.BatchResult) types.IngestResponse {
	resp := types.IngestResponse{
		BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Bundles ingested"},
		RunID:        result.RunID,
		Created:      result.Count(workers.StatusCreated),
		Updated:      result.Count(workers.StatusUpdated),
		Failed:       result.Count(workers.StatusFailed),
		Flags:        result.FlagCount(),
		Episodes:     make([]types.IngestedEpisode, 0, len(result.Episodes)),
	}
	for _, ep := range result.Episodes {
		item := types.IngestedEpisode{
			Number:  ep.Number,
			Status:  string(ep.Status),
			Bundles: ep.Bundles,
			Flags:   len(ep.Flags),
		}
		if ep.Err != nil {
			item.Error = ep.Err.Error()
		}
		resp.Episodes = append(resp.Episodes, item)
	}
	return resp
}
