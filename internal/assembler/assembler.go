// Package assembler builds canonical Episode records from reconciled part
// bundles and merges re-scrapes into stored records.
package assembler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/internal/reconciler"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
	"github.com/killallgit/coffeebreak-api/pkg/timecode"
)

// PartReconciler reconciles the source texts of one part
type PartReconciler interface {
	Reconcile(ctx context.Context, part models.PartBundle, sink diagnostics.Sink) (*reconciler.Fields, error)
}

// Assembler turns bundles into episodes
type Assembler struct {
	reconciler       PartReconciler
	stripTitlePrefix bool
}

// Option configures an Assembler
type Option func(*Assembler)

// WithTitlePrefixStripping controls removal of the "EpNNN_X: " title prefix
func WithTitlePrefixStripping(strip bool) Option {
	return func(a *Assembler) {
		a.stripTitlePrefix = strip
	}
}

// New creates an assembler
func New(r PartReconciler, opts ...Option) *Assembler {
	a := &Assembler{reconciler: r, stripTitlePrefix: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type assembledPart struct {
	part       models.Part
	title      string
	source     models.SourceKind
	links      []string
	reconciled bool
}

// Assemble builds the episode for bundle. Diagnostics go to sink; the only
// per-episode failures are invalid bundles and bundles without any usable
// text, including bundles whose every source is boilerplate.
func (a *Assembler) Assemble(ctx context.Context, bundle models.Bundle, sink diagnostics.Sink) (*models.Episode, error) {
	if sink == nil {
		sink = diagnostics.Discard
	}
	number, err := episodeNumber(bundle)
	if err != nil {
		return nil, err
	}
	classes, err := classify(bundle.Parts)
	if err != nil {
		return nil, err
	}

	hasText := false
	for _, p := range bundle.Parts {
		hasText = hasText || p.HasText()
	}
	if !hasText {
		return nil, apperrors.IncompleteBundle(number)
	}

	parts := make([]assembledPart, 0, len(bundle.Parts))
	reconciled := 0
	for i, pb := range bundle.Parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		partSink := diagnostics.WithEpisode(sink, number, string(classes[i]))
		ap, err := a.assemblePart(ctx, pb, classes[i], partSink)
		if err != nil {
			return nil, err
		}
		if ap.reconciled {
			reconciled++
		}
		parts = append(parts, ap)
	}
	// text that is all boilerplate leaves nothing to build an episode from
	if reconciled == 0 {
		return nil, apperrors.IncompleteBundle(number)
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return partOrder(parts[i].part.PartClass) < partOrder(parts[j].part.PartClass)
	})

	ep := &models.Episode{
		Number:   number,
		Class:    models.ClassSingle,
		ImageURL: strings.TrimSpace(bundle.ImageURL),
		WebLink:  strings.TrimSpace(bundle.WebLink),
	}
	if len(parts) == 2 {
		ep.Class = models.ClassDual
	}

	seen := make(map[string]bool)
	for _, ap := range parts {
		ep.Parts = append(ep.Parts, ap.part)
		if ap.title != "" && ap.source.TitleRank() > ep.TitleSource.TitleRank() {
			ep.Title = ap.title
			ep.TitleSource = ap.source
		}
		for _, l := range ap.links {
			if !seen[l] {
				seen[l] = true
				ep.RefLinks = append(ep.RefLinks, l)
			}
		}
	}
	if a.stripTitlePrefix {
		ep.Title = StripTitlePrefix(ep.Title)
	}

	episodeSink := diagnostics.WithEpisode(sink, number, "")
	ep.PublicationDate = publicationDate(bundle.PublicationDate, ep.Parts, episodeSink)
	ep.TotalDurationSeconds, ep.TotalStated = totalDuration(ep.Parts, bundle.StatedDurationLiteral, episodeSink)
	return ep, nil
}

func (a *Assembler) assemblePart(ctx context.Context, pb models.PartBundle, class models.PartClass, sink diagnostics.Sink) (assembledPart, error) {
	part := models.Part{
		EpisodeID:    strings.TrimSpace(pb.EpisodeID),
		PartClass:    class,
		AudioURL:     strings.TrimSpace(pb.AudioURL),
		ExternalLink: strings.TrimSpace(pb.ExternalLink),
	}

	if strings.TrimSpace(pb.Date) != "" {
		ts, err := parseTimestamp(pb.Date)
		if err != nil {
			sink.Flag(diagnostics.Flag{
				Kind:    diagnostics.UnparsableDate,
				Message: "part date could not be parsed",
				Details: map[string]string{"date": pb.Date, "error": err.Error()},
			})
		} else {
			part.Date = ts
		}
	}

	if lit := strings.TrimSpace(pb.DurationLiteral); lit != "" {
		seconds, err := timecode.ParseDuration(lit)
		if err != nil {
			sink.Flag(diagnostics.Flag{
				Kind:    diagnostics.MalformedTimestamp,
				Message: "part duration could not be parsed; treated as missing",
				Details: map[string]string{"literal": lit},
			})
		} else {
			part.DurationSeconds = seconds
		}
	}

	ap := assembledPart{part: part}
	if !pb.HasText() {
		return ap, nil
	}

	fields, err := a.reconciler.Reconcile(ctx, pb, sink)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeIncompleteBundle) {
			return ap, nil
		}
		return ap, err
	}

	ap.reconciled = true
	ap.title = fields.Title
	ap.source = fields.TitleSource
	ap.links = fields.Links
	ap.part.RawDescription = fields.RawDescription
	ap.part.Topics = checkTopics(fields.Topics, ap.part.DurationSeconds, sink)
	ap.part.TopicSource = fields.TopicSource
	ap.part.Participants = fields.Participants
	return ap, nil
}

// checkTopics enforces non-decreasing timestamps, flagging and stably
// sorting scrambled lists, and flags topics that start past the part's end.
func checkTopics(topics []models.Topic, duration int, sink diagnostics.Sink) []models.Topic {
	if len(topics) == 0 {
		return topics
	}
	ordered := sort.SliceIsSorted(topics, func(i, j int) bool {
		return topics[i].TimestampSeconds < topics[j].TimestampSeconds
	})
	if !ordered {
		sink.Flag(diagnostics.Flag{
			Kind:    diagnostics.OutOfOrderTopics,
			Message: "topic timestamps are not in ascending order; sorted",
		})
		sorted := make([]models.Topic, len(topics))
		copy(sorted, topics)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].TimestampSeconds < sorted[j].TimestampSeconds
		})
		topics = sorted
	}
	if duration > 0 {
		for _, t := range topics {
			if t.TimestampSeconds >= duration {
				sink.Flag(diagnostics.Flag{
					Kind:    diagnostics.TopicBeyondDuration,
					Message: fmt.Sprintf("topic %q starts at or after the end of the part", t.Title),
					Details: map[string]string{
						"timestamp": timecode.Format(t.TimestampSeconds),
						"duration":  timecode.Format(duration),
					},
				})
			}
		}
	}
	return topics
}

func episodeNumber(bundle models.Bundle) (string, error) {
	var number string
	if strings.TrimSpace(bundle.Number) != "" {
		n, ok := NormalizeNumber(bundle.Number)
		if !ok {
			return "", apperrors.ValidationError("number", fmt.Sprintf("%q is not an episode number", bundle.Number))
		}
		number = n
	}
	for _, p := range bundle.Parts {
		n, _, ok := ParseEpisodeID(p.EpisodeID)
		if !ok {
			continue
		}
		if number == "" {
			number = n
		} else if n != number {
			return "", apperrors.ValidationError("episode_id",
				fmt.Sprintf("part %q does not belong to episode %s", p.EpisodeID, number))
		}
	}
	if number == "" {
		return "", apperrors.ValidationError("number", "bundle carries no episode number")
	}
	return number, nil
}

// classify assigns part classes: Only for a single part, A and B for two.
// The _A/_B identifier suffixes decide the order when present.
func classify(parts []models.PartBundle) ([]models.PartClass, error) {
	switch len(parts) {
	case 0:
		return nil, apperrors.ValidationError("parts", "bundle has no parts")
	case 1:
		return []models.PartClass{models.PartOnly}, nil
	case 2:
	default:
		return nil, apperrors.ValidationError("parts", fmt.Sprintf("%d parts given, at most 2 supported", len(parts)))
	}

	if strings.EqualFold(strings.TrimSpace(parts[0].EpisodeID), strings.TrimSpace(parts[1].EpisodeID)) &&
		strings.TrimSpace(parts[0].EpisodeID) != "" {
		return nil, apperrors.ValidationError("parts", fmt.Sprintf("duplicate part %q", parts[0].EpisodeID))
	}

	_, s0, _ := ParseEpisodeID(parts[0].EpisodeID)
	_, s1, _ := ParseEpisodeID(parts[1].EpisodeID)
	if s0 == "B" && s1 == "A" {
		return []models.PartClass{models.PartB, models.PartA}, nil
	}
	return []models.PartClass{models.PartA, models.PartB}, nil
}

func partOrder(c models.PartClass) int {
	switch c {
	case models.PartA:
		return 0
	case models.PartB:
		return 1
	default:
		return 2
	}
}

// publicationDate uses the stated date, else the earliest part date
func publicationDate(stated string, parts []models.Part, sink diagnostics.Sink) models.CalendarDate {
	if strings.TrimSpace(stated) != "" {
		d, err := parseCalendarDate(stated)
		if err == nil {
			return d
		}
		sink.Flag(diagnostics.Flag{
			Kind:    diagnostics.UnparsableDate,
			Message: "publication date could not be parsed; using part dates",
			Details: map[string]string{"date": stated},
		})
	}
	var earliest models.CalendarDate
	for _, p := range parts {
		if p.Date.IsZero() {
			continue
		}
		d := models.NewCalendarDate(p.Date.Time)
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	return earliest
}

// SumDurations adds the known part durations and reports whether every
// part had one.
func SumDurations(parts []models.Part) (sum int, complete bool) {
	complete = len(parts) > 0
	for _, p := range parts {
		if p.DurationSeconds > 0 {
			sum += p.DurationSeconds
		} else {
			complete = false
		}
	}
	return sum, complete
}

// totalDuration is the sum of the known part durations. A stated total
// overrides the sum, reported by the second result, and is flagged when it
// disagrees with a complete one.
func totalDuration(parts []models.Part, statedLiteral string, sink diagnostics.Sink) (int, bool) {
	sum, complete := SumDurations(parts)

	missing := 0
	for _, p := range parts {
		if p.DurationSeconds == 0 {
			missing++
		}
	}
	switch {
	case missing == len(parts):
		sink.Flag(diagnostics.Flag{
			Kind:    diagnostics.MissingDuration,
			Message: "no part has a duration",
		})
	case missing > 0:
		sink.Flag(diagnostics.Flag{
			Kind:    diagnostics.MissingDuration,
			Message: fmt.Sprintf("%d of %d parts lack a duration; total is partial", missing, len(parts)),
		})
	}

	statedLiteral = strings.TrimSpace(statedLiteral)
	if statedLiteral == "" {
		return sum, false
	}
	stated, err := timecode.ParseDuration(statedLiteral)
	if err != nil {
		sink.Flag(diagnostics.Flag{
			Kind:    diagnostics.MalformedTimestamp,
			Message: "stated total duration could not be parsed; using the part sum",
			Details: map[string]string{"literal": statedLiteral},
		})
		return sum, false
	}
	if (complete && stated != sum) || stated < sum {
		sink.Flag(diagnostics.Flag{
			Kind:    diagnostics.DurationMismatch,
			Message: "stated total differs from the sum of part durations; using the stated total",
			Details: map[string]string{
				"code":   string(apperrors.ErrCodeDurationMismatch),
				"stated": timecode.Format(stated),
				"sum":    timecode.Format(sum),
			},
		})
	}
	return stated, true
}
