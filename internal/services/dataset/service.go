package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/pkg/timecode"
)

// Service writes the master dataset document
type Service struct {
	source EpisodeSource
}

func NewService(source EpisodeSource) *Service {
	return &Service{source: source}
}

// Generate writes every stored episode to request.Path plus an info.json
// sidecar with the dataset statistics
func (s *Service) Generate(ctx context.Context, request GenerateRequest) (*Dataset, error) {
	startTime := time.Now()
	format := request.Format
	if format == "" {
		format = FormatJSON
	}
	if request.Path == "" {
		return nil, fmt.Errorf("dataset path is required")
	}

	episodes, err := s.source.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load episodes: %w", err)
	}

	if dir := filepath.Dir(request.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	file, err := os.Create(request.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset file: %w", err)
	}
	writeErr := Write(file, episodes, format)
	closeErr := file.Close()
	if writeErr != nil {
		return nil, writeErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close dataset file: %w", closeErr)
	}

	stats := Summarize(episodes)
	if info, err := os.Stat(request.Path); err == nil {
		stats.TotalSize = info.Size()
	}

	metadataPath, err := writeMetadataFile(request.Path, format, stats)
	if err != nil {
		return nil, err
	}

	generationTime := time.Since(startTime)
	log.Printf("[INFO] Dataset written: %s (%d episodes, %d parts, %s, %s)",
		request.Path, stats.Episodes, stats.Parts, timecode.Format(stats.TotalDurationSeconds), formatBytes(stats.TotalSize))

	return &Dataset{
		Path:           request.Path,
		MetadataPath:   metadataPath,
		Format:         format,
		Stats:          stats,
		GenerationTime: generationTime,
	}, nil
}

// Write encodes episodes in the dataset document layout
func Write(w io.Writer, episodes []models.Episode, format Format) error {
	out := make([]models.Episode, len(episodes))
	for i, ep := range episodes {
		if ep.RefLinks == nil {
			ep.RefLinks = []string{}
		}
		if ep.Parts == nil {
			ep.Parts = []models.Part{}
		}
		out[i] = ep
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	switch format {
	case FormatJSON:
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			return fmt.Errorf("failed to encode dataset: %w", err)
		}
	case FormatJSONL:
		for _, ep := range out {
			if err := encoder.Encode(ep); err != nil {
				return fmt.Errorf("failed to encode episode %s: %w", ep.Number, err)
			}
		}
	default:
		return fmt.Errorf("unsupported dataset format: %s", format)
	}
	return nil
}

// Read decodes a dataset document written in either layout
func Read(r io.Reader) ([]models.Episode, error) {
	decoder := json.NewDecoder(r)

	var first json.RawMessage
	if err := decoder.Decode(&first); err != nil {
		if err == io.EOF {
			return []models.Episode{}, nil
		}
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	if strings.HasPrefix(strings.TrimSpace(string(first)), "[") {
		var episodes []models.Episode
		if err := json.Unmarshal(first, &episodes); err != nil {
			return nil, fmt.Errorf("failed to decode dataset: %w", err)
		}
		return episodes, nil
	}

	var ep models.Episode
	if err := json.Unmarshal(first, &ep); err != nil {
		return nil, fmt.Errorf("failed to decode episode: %w", err)
	}
	episodes := []models.Episode{ep}
	for decoder.More() {
		var next models.Episode
		if err := decoder.Decode(&next); err != nil {
			return nil, fmt.Errorf("failed to decode episode %d: %w", len(episodes)+1, err)
		}
		episodes = append(episodes, next)
	}
	return episodes, nil
}

// Summarize counts what a set of episodes holds
func Summarize(episodes []models.Episode) Stats {
	var stats Stats
	people := make(map[string]struct{})
	for _, ep := range episodes {
		stats.Episodes++
		if ep.Class == models.ClassDual {
			stats.DualEpisodes++
		}
		stats.RefLinks += len(ep.RefLinks)
		stats.TotalDurationSeconds += ep.TotalDurationSeconds
		for _, part := range ep.Parts {
			stats.Parts++
			stats.Topics += len(part.Topics)
			for _, name := range part.Participants {
				people[name] = struct{}{}
			}
		}
	}
	stats.Participants = len(people)
	return stats
}

// writeMetadataFile writes <dataset>.info.json next to the dataset
func writeMetadataFile(datasetPath string, format Format, stats Stats) (string, error) {
	metadataPath := strings.TrimSuffix(datasetPath, filepath.Ext(datasetPath)) + ".info.json"

	metadata := map[string]interface{}{
		"dataset":        filepath.Base(datasetPath),
		"format":         format,
		"stats":          stats,
		"total_duration": timecode.Format(stats.TotalDurationSeconds),
		"generated_at":   time.Now().Format(time.RFC3339),
	}

	file, err := os.Create(metadataPath)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(metadata); err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	return metadataPath, nil
}

// formatBytes formats byte count as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
