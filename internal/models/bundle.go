package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Bundle is the raw per-episode input handed over by the scraping layer:
// identifying fields already extracted upstream plus the three text blobs
// of every part.
type Bundle struct {
	Number                string       `json:"number"`
	WebLink               string       `json:"web_link,omitempty"`
	ImageURL              string       `json:"image_url,omitempty"`
	PublicationDate       string       `json:"publication_date,omitempty"`
	StatedDurationLiteral string       `json:"total_duration,omitempty"`
	Parts                 []PartBundle `json:"parts"`
}

// PartBundle carries the raw inputs of one part
type PartBundle struct {
	EpisodeID       string `json:"episode_id"`
	AudioURL        string `json:"audio_url,omitempty"`
	ExternalLink    string `json:"ivoox_link,omitempty"`
	Date            string `json:"date,omitempty"`
	DurationLiteral string `json:"duration,omitempty"`
	RSS             string `json:"rss,omitempty"`
	Info            string `json:"info,omitempty"`
	Web             string `json:"web,omitempty"`
}

// HasText reports whether any source of the part carries non-blank text
func (p PartBundle) HasText() bool {
	return strings.TrimSpace(p.RSS) != "" ||
		strings.TrimSpace(p.Info) != "" ||
		strings.TrimSpace(p.Web) != ""
}

// DecodeBundles accepts either a single bundle object or an array of them
func DecodeBundles(data []byte) ([]Bundle, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no bundles in input")
	}

	if trimmed[0] == '[' {
		var bundles []Bundle
		if err := json.Unmarshal(trimmed, &bundles); err != nil {
			return nil, fmt.Errorf("failed to decode bundles: %w", err)
		}
		return bundles, nil
	}

	var bundle Bundle
	if err := json.Unmarshal(trimmed, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return []Bundle{bundle}, nil
}
