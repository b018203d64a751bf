package types

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
)

// Handler utility functions to reduce duplication across handlers

// BindQueryOrError binds query parameters into target
// Returns false and sends error response if binding fails
func BindQueryOrError(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindQuery(target); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Message: "Invalid query parameters",
			Error:   string(apperrors.ErrCodeInvalidInput),
			Details: err.Error(),
		})
		return false
	}
	return true
}

// SendBadRequest sends a standardized bad request response
func SendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Status:  StatusError,
		Message: message,
		Error:   string(apperrors.ErrCodeInvalidInput),
	})
}

// SendNotFound sends a standardized not found response
func SendNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Status:  StatusError,
		Message: message,
		Error:   string(apperrors.ErrCodeNotFound),
	})
}

// SendInternalError sends a standardized internal server error response
func SendInternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Status:  StatusError,
		Message: message,
		Error:   string(apperrors.ErrCodeInternal),
	})
}

// SendError maps an application error onto its HTTP status and code
func SendError(c *gin.Context, message string, err error) {
	resp := ErrorResponse{
		Status:  StatusError,
		Message: message,
		Error:   string(apperrors.GetCode(err)),
	}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(apperrors.GetHTTPCode(err), resp)
}

// SendServiceUnavailable reports a handler whose dependency is not configured
func SendServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Status:  StatusError,
		Message: message,
		Error:   "SERVICE_UNAVAILABLE",
	})
}

// SendSuccess sends a standardized success response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendCreated sends a standardized created response with data
func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}
