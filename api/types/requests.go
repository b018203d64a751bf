package types

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/coffeebreak-api/internal/models"
)

// ListQuery is the paging query accepted by list endpoints
type ListQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1" example:"1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=200" example:"20"`
}

// FlagQuery filters stored diagnostics
type FlagQuery struct {
	RunID   string `form:"run_id" example:"5f1c..."`
	Episode string `form:"episode" example:"042"`
	Kind    string `form:"kind" example:"ambiguous_name_match"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=1000" example:"100"`
}

// DecisionQuery filters the name resolution audit trail
type DecisionQuery struct {
	Outcome string `form:"outcome" binding:"omitempty,oneof=minted matched ambiguous" example:"ambiguous"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=1000" example:"50"`
}

// BindBundlesOrError reads the request body as one bundle or an array of
// bundles. Returns false and sends error response if decoding fails.
func BindBundlesOrError(c *gin.Context) ([]models.Bundle, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Status:  StatusError,
				Message: "Request body too large",
				Error:   "PAYLOAD_TOO_LARGE",
				Details: gin.H{"max_bytes": tooLarge.Limit},
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Message: "Failed to read request body",
			Error:   "INVALID_INPUT",
			Details: err.Error(),
		})
		return nil, false
	}

	bundles, err := models.DecodeBundles(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Message: "Invalid bundle payload",
			Error:   "INVALID_INPUT",
			Details: err.Error(),
		})
		return nil, false
	}
	if len(bundles) == 0 {
		SendBadRequest(c, "At least one bundle is required")
		return nil, false
	}
	return bundles, true
}
