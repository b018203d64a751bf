package episodes

import (
	"context"

	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
)

// EpisodeRepository defines the interface for episode data persistence
type EpisodeRepository interface {
	// Read operations
	GetEpisode(ctx context.Context, number string) (*models.Episode, error)
	ListEpisodes(ctx context.Context, page, limit int) ([]models.Episode, int64, error)
	AllEpisodes(ctx context.Context) ([]models.Episode, error)
	CountEpisodes(ctx context.Context) (int64, error)

	// Write operations
	SaveEpisode(ctx context.Context, episode *models.Episode) error
}

// FlagRepository persists diagnostics for later audit
type FlagRepository interface {
	SaveFlags(ctx context.Context, runID string, flags []diagnostics.Flag) error
	ListFlags(ctx context.Context, filter FlagFilter) ([]models.DiagnosticFlag, error)
}

// EpisodeAssembler builds an episode from a raw bundle
type EpisodeAssembler interface {
	Assemble(ctx context.Context, bundle models.Bundle, sink diagnostics.Sink) (*models.Episode, error)
}

// EpisodeCache defines the interface for caching episode reads
type EpisodeCache interface {
	GetEpisode(key string) (*models.Episode, bool)
	SetEpisode(key string, episode *models.Episode)

	GetEpisodeList(key string) ([]models.Episode, int64, bool)
	SetEpisodeList(key string, episodes []models.Episode, total int64)

	Invalidate(key string)
	InvalidatePattern(pattern string)
	Clear()
	Stop()
}

// EpisodeService defines the business logic interface for episode operations
type EpisodeService interface {
	Ingest(ctx context.Context, runID string, bundle models.Bundle) (*IngestResult, error)

	GetEpisode(ctx context.Context, number string) (*models.Episode, error)
	ListEpisodes(ctx context.Context, page, limit int) ([]models.Episode, int64, error)
	Export(ctx context.Context) ([]models.Episode, error)
	ListFlags(ctx context.Context, filter FlagFilter) ([]models.DiagnosticFlag, error)
}

// CacheKeyGenerator defines the interface for generating cache keys
type CacheKeyGenerator interface {
	EpisodeByNumber(number string) string
	EpisodeList(page, limit int) string
	ListPattern() string
}
