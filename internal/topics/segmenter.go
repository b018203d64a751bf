// Package topics splits episode descriptions into timestamped topics.
//
// Descriptions state each topic followed by its start time in parentheses:
//
//	Intro (min 5:00); Black holes (32:00)
//
// Older entries sometimes put the marker first, which Mode controls.
package topics

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/pkg/timecode"
)

// Mode selects which side of a marker holds its topic title
type Mode string

const (
	// ModeAfter: the marker follows (closes) the topic it labels
	ModeAfter Mode = "after"
	// ModeBefore: the marker precedes the topic it labels
	ModeBefore Mode = "before"
	// ModeAuto picks ModeBefore when the prose opens with a marker
	ModeAuto Mode = "auto"
)

// markerPattern matches "(5:00)", "(min 5:00)", "min (5:00)" and "(5:00 min)".
// Any colon-delimited digit run is captured so that bad literals can be
// reported instead of silently ignored.
var markerPattern = regexp.MustCompile(`(?i)(?:\bmin\.?\s*)?\(\s*(?:min\.?\s*)?(\d+(?::\d*)+)\s*(?:min\.?)?\s*\)`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// leadingConnectives are dropped from the start of a title
var leadingConnectives = []string{"y ", "and ", "e ", "& "}

type marker struct {
	start, end int
	seconds    int
}

// Segmenter extracts topics from prose
type Segmenter struct {
	mode Mode
}

// NewSegmenter creates a segmenter; an unknown mode falls back to ModeAfter
func NewSegmenter(mode Mode) *Segmenter {
	switch mode {
	case ModeAfter, ModeBefore, ModeAuto:
	default:
		mode = ModeAfter
	}
	return &Segmenter{mode: mode}
}

// Mode returns the configured marker position
func (s *Segmenter) Mode() Mode {
	return s.mode
}

// Segment returns the topics of prose in source order
func (s *Segmenter) Segment(prose string) []models.Topic {
	return s.SegmentTo(prose, diagnostics.Discard)
}

// SegmentTo is Segment, reporting skipped markers and direction guesses to sink
func (s *Segmenter) SegmentTo(prose string, sink diagnostics.Sink) []models.Topic {
	if strings.TrimSpace(prose) == "" {
		return nil
	}

	markers := findMarkers(prose, sink)
	if len(markers) == 0 {
		return []models.Topic{{Title: strings.TrimSpace(prose), TimestampSeconds: 0}}
	}

	mode := s.mode
	if mode == ModeAuto {
		mode = ModeAfter
		if opensWithMarker(prose, markers[0]) {
			mode = ModeBefore
			sink.Flag(diagnostics.Flag{
				Kind:    diagnostics.MarkerOrderReversed,
				Message: "description opens with a time marker; reading titles after each marker",
			})
		}
	}

	if mode == ModeBefore {
		return segmentBefore(prose, markers)
	}
	return segmentAfter(prose, markers)
}

func findMarkers(prose string, sink diagnostics.Sink) []marker {
	var markers []marker
	for _, loc := range markerPattern.FindAllStringSubmatchIndex(prose, -1) {
		literal := prose[loc[2]:loc[3]]
		seconds, err := timecode.Parse(literal)
		if err != nil {
			sink.Flag(diagnostics.Flag{
				Kind:    diagnostics.MalformedTimestamp,
				Message: "time marker skipped",
				Details: map[string]string{
					"literal": literal,
					"offset":  strconv.Itoa(loc[0]),
					"error":   err.Error(),
				},
			})
			continue
		}
		markers = append(markers, marker{start: loc[0], end: loc[1], seconds: seconds})
	}
	return markers
}

// segmentAfter: each marker closes the text since the previous valid marker.
// Skipped markers never move the cursor, so their text stays in the title.
func segmentAfter(prose string, markers []marker) []models.Topic {
	topics := make([]models.Topic, 0, len(markers))
	cursor := 0
	for _, m := range markers {
		title := cleanTitle(lastLine(prose[cursor:m.start]))
		cursor = m.end
		if title == "" {
			continue
		}
		topics = append(topics, models.Topic{Title: title, TimestampSeconds: m.seconds})
	}
	return topics
}

// segmentBefore: each marker opens the text up to the next valid marker
func segmentBefore(prose string, markers []marker) []models.Topic {
	topics := make([]models.Topic, 0, len(markers))
	for i, m := range markers {
		end := len(prose)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		title := cleanTitle(firstLine(prose[m.end:end]))
		if title == "" {
			continue
		}
		topics = append(topics, models.Topic{Title: title, TimestampSeconds: m.seconds})
	}
	return topics
}

func opensWithMarker(prose string, first marker) bool {
	head := strings.TrimLeftFunc(prose[:first.start], isSeparator)
	return head == ""
}

func lastLine(chunk string) string {
	lines := strings.Split(chunk, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimFunc(lines[i], isSeparator) != "" {
			return lines[i]
		}
	}
	return ""
}

func firstLine(chunk string) string {
	for _, line := range strings.Split(chunk, "\n") {
		if strings.TrimFunc(line, isSeparator) != "" {
			return line
		}
	}
	return ""
}

func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ';', '.', ',', ':', '-', '–', '—', '•', '*', '·', '|', '>':
		return true
	}
	return false
}

func isTrailingJunk(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', ';', ':', '-', '–', '—':
		return true
	}
	return false
}

func cleanTitle(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	for {
		before := s
		s = strings.TrimLeftFunc(s, isSeparator)
		for _, c := range leadingConnectives {
			s = strings.TrimPrefix(s, c)
		}
		if s == before {
			break
		}
	}
	return strings.TrimRightFunc(s, isTrailingJunk)
}
