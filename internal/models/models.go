package models

import (
	"encoding/json"
	"time"

	"github.com/killallgit/coffeebreak-api/pkg/timecode"
)

// EpisodeClass says whether a release is split into two parts
type EpisodeClass string

const (
	ClassSingle EpisodeClass = "Single"
	ClassDual   EpisodeClass = "Dual"
)

// PartClass identifies one audio segment of an episode
type PartClass string

const (
	PartA    PartClass = "A"
	PartB    PartClass = "B"
	PartOnly PartClass = "Only"
)

// SourceKind names the text source a field was extracted from
type SourceKind string

const (
	SourceNone SourceKind = ""
	SourceWeb  SourceKind = "web"
	SourceRSS  SourceKind = "rss"
	SourceInfo SourceKind = "info"
)

// TitleRank orders sources for scalar fields: info > rss > web.
func (k SourceKind) TitleRank() int {
	switch k {
	case SourceInfo:
		return 3
	case SourceRSS:
		return 2
	case SourceWeb:
		return 1
	default:
		return 0
	}
}

// TopicRank orders sources for topic lists: the feed and info texts carry
// the timestamped lists, the web blurb is only a fallback.
func (k SourceKind) TopicRank() int {
	switch k {
	case SourceInfo, SourceRSS:
		return 2
	case SourceWeb:
		return 1
	default:
		return 0
	}
}

// Episode is one published release in the master dataset
type Episode struct {
	Number               string       `json:"Episode number" gorm:"primaryKey"`
	Class                EpisodeClass `json:"Episode class" gorm:"not null"`
	Title                string       `json:"Title"`
	TitleSource          SourceKind   `json:"-"`
	ImageURL             string       `json:"Image_url"`
	WebLink              string       `json:"web_link"`
	RefLinks             []string     `json:"ref_links" gorm:"serializer:json"`
	Parts                []Part       `json:"Parts" gorm:"foreignKey:EpisodeNumber;references:Number;constraint:OnDelete:CASCADE"`
	PublicationDate      CalendarDate `json:"publication_date"`
	TotalDurationSeconds int          `json:"total_duration_seconds"`
	// TotalStated marks a total taken from the bundle instead of the part sum
	TotalStated bool      `json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Part is one audio segment of an episode
type Part struct {
	ID              uint       `json:"-" gorm:"primaryKey"`
	EpisodeNumber   string     `json:"-" gorm:"index;not null"`
	EpisodeID       string     `json:"Episode_ID" gorm:"index"`
	PartClass       PartClass  `json:"Part_class"`
	Date            Timestamp  `json:"Date"`
	DurationSeconds int        `json:"-"`
	RawDescription  string     `json:"raw_description" gorm:"type:text"`
	AudioURL        string     `json:"Audio_URL"`
	ExternalLink    string     `json:"Ivoox_link"`
	Topics          []Topic    `json:"Topics" gorm:"serializer:json"`
	TopicSource     SourceKind `json:"-"`
	Participants    []string   `json:"Contertulios" gorm:"serializer:json"`
}

// partJSON adds the rendered duration literal to the stored fields
type partJSON struct {
	EpisodeID      string    `json:"Episode_ID"`
	PartClass      PartClass `json:"Part_class"`
	Date           Timestamp `json:"Date"`
	Duration       string    `json:"Duration"`
	RawDescription string    `json:"raw_description"`
	AudioURL       string    `json:"Audio_URL"`
	ExternalLink   string    `json:"Ivoox_link"`
	Topics         []Topic   `json:"Topics"`
	Participants   []string  `json:"Contertulios"`
}

// MarshalJSON renders Duration as H:MM:SS / M:SS, empty when unknown
func (p Part) MarshalJSON() ([]byte, error) {
	out := partJSON{
		EpisodeID:      p.EpisodeID,
		PartClass:      p.PartClass,
		Date:           p.Date,
		RawDescription: p.RawDescription,
		AudioURL:       p.AudioURL,
		ExternalLink:   p.ExternalLink,
		Topics:         p.Topics,
		Participants:   p.Participants,
	}
	if p.DurationSeconds > 0 {
		out.Duration = timecode.Format(p.DurationSeconds)
	}
	if out.Topics == nil {
		out.Topics = []Topic{}
	}
	if out.Participants == nil {
		out.Participants = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the dataset shape written by MarshalJSON
func (p *Part) UnmarshalJSON(data []byte) error {
	var in partJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Part{
		EpisodeID:      in.EpisodeID,
		PartClass:      in.PartClass,
		Date:           in.Date,
		RawDescription: in.RawDescription,
		AudioURL:       in.AudioURL,
		ExternalLink:   in.ExternalLink,
		Topics:         in.Topics,
		Participants:   in.Participants,
	}
	if in.Duration != "" {
		seconds, err := timecode.ParseDuration(in.Duration)
		if err != nil {
			return err
		}
		p.DurationSeconds = seconds
	}
	return nil
}

// Topic is one discussion segment within a part
type Topic struct {
	Title            string
	TimestampSeconds int
}

type topicJSON struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON writes {title, timestamp} with a canonical time literal
func (t Topic) MarshalJSON() ([]byte, error) {
	return json.Marshal(topicJSON{Title: t.Title, Timestamp: timecode.Format(t.TimestampSeconds)})
}

// UnmarshalJSON reads {title, timestamp}; an empty timestamp means 0
func (t *Topic) UnmarshalJSON(data []byte) error {
	var in topicJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.Title = in.Title
	t.TimestampSeconds = 0
	if in.Timestamp != "" {
		seconds, err := timecode.ParseDuration(in.Timestamp)
		if err != nil {
			return err
		}
		t.TimestampSeconds = seconds
	}
	return nil
}

// DiagnosticFlag is the persisted form of a diagnostics flag
type DiagnosticFlag struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	RunID     string            `json:"run_id" gorm:"index"`
	Kind      string            `json:"kind" gorm:"index;not null"`
	Episode   string            `json:"episode" gorm:"index"`
	Part      string            `json:"part,omitempty"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time         `json:"created_at"`
}
