package types

import "github.com/killallgit/coffeebreak-api/internal/models"

// Status constants for API responses
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusPartial = "partial"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`  // One of the Status constants above
	Message string `json:"message"` // Human-readable message
}

// EpisodesResponse for episode lists
type EpisodesResponse struct {
	BaseResponse
	Episodes []models.Episode `json:"episodes"`
	Count    int              `json:"count"` // Number of results in this response
	Total    int64            `json:"total"` // Episodes in the index
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// SingleEpisodeResponse for getting a single episode
type SingleEpisodeResponse struct {
	BaseResponse
	Episode *models.Episode `json:"episode"`
}

// IngestedEpisode reports what one ingest run did to one episode
type IngestedEpisode struct {
	Number  string `json:"number"`
	Status  string `json:"status"`
	Bundles int    `json:"bundles"`
	Flags   int    `json:"flags"`
	Error   string `json:"error,omitempty"`
}

// IngestResponse for batch ingest runs
type IngestResponse struct {
	BaseResponse
	RunID    string            `json:"run_id"`
	Created  int               `json:"created"`
	Updated  int               `json:"updated"`
	Failed   int               `json:"failed"`
	Flags    int               `json:"flags"`
	Episodes []IngestedEpisode `json:"episodes"`
}

// ParticipantsResponse for the canonical participant roster
type ParticipantsResponse struct {
	BaseResponse
	Participants []models.Participant `json:"participants"`
	Count        int                  `json:"count"`
}

// DecisionsResponse for the name resolution audit trail
type DecisionsResponse struct {
	BaseResponse
	Decisions []models.NameDecision `json:"decisions"`
	Count     int                   `json:"count"`
}

// FlagsResponse for stored diagnostics
type FlagsResponse struct {
	BaseResponse
	Flags []models.DiagnosticFlag `json:"flags"`
	Count int                     `json:"count"`
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	BaseResponse
	Version  string                 `json:"version,omitempty"`
	Services map[string]interface{} `json:"services,omitempty"`
}
