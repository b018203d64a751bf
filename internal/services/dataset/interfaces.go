package dataset

import (
	"context"
	"time"

	"github.com/killallgit/coffeebreak-api/internal/models"
)

// EpisodeSource supplies the whole dataset ordered by episode number
type EpisodeSource interface {
	Export(ctx context.Context) ([]models.Episode, error)
}

// Format is the on-disk layout of the dataset document
type Format string

const (
	FormatJSON  Format = "json"  // one indented JSON array
	FormatJSONL Format = "jsonl" // one episode object per line
)

// GenerateRequest describes one export
type GenerateRequest struct {
	Path   string `json:"path"`
	Format Format `json:"format"`
}

// Dataset describes a written dataset document
type Dataset struct {
	Path           string        `json:"dataset_path"`
	MetadataPath   string        `json:"metadata_path"`
	Format         Format        `json:"format"`
	Stats          Stats         `json:"stats"`
	GenerationTime time.Duration `json:"generation_time"`
}

// Stats summarises the exported episodes
type Stats struct {
	Episodes             int   `json:"episodes"`
	DualEpisodes         int   `json:"dual_episodes"`
	Parts                int   `json:"parts"`
	Topics               int   `json:"topics"`
	Participants         int   `json:"participants"`
	RefLinks             int   `json:"ref_links"`
	TotalDurationSeconds int   `json:"total_duration_seconds"`
	TotalSize            int64 `json:"total_size_bytes"`
}
