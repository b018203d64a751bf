// Package reconciler merges the per-source candidates of one part into a
// single set of fields.
package reconciler

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/internal/names"
	"github.com/killallgit/coffeebreak-api/internal/sources"
	"github.com/killallgit/coffeebreak-api/internal/topics"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
)

// NameResolver maps a raw participant list to canonical names
type NameResolver interface {
	NormalizeAll(raw string) ([]names.Decision, error)
}

// Fields is the reconciled content of one part
type Fields struct {
	Title          string
	TitleSource    models.SourceKind
	Topics         []models.Topic
	TopicSource    models.SourceKind
	RawDescription string
	Participants   []string
	Decisions      []names.Decision
	Links          []string
}

// Reconciler applies the per-field source priority rules
type Reconciler struct {
	catalog   *sources.Catalog
	links     *sources.LinkFilter
	segmenter *topics.Segmenter
	names     NameResolver
}

// New creates a reconciler. A nil catalog or link filter disables
// boilerplate stripping or link filtering respectively.
func New(catalog *sources.Catalog, links *sources.LinkFilter, segmenter *topics.Segmenter, resolver NameResolver) *Reconciler {
	if segmenter == nil {
		segmenter = topics.NewSegmenter(topics.ModeAfter)
	}
	return &Reconciler{
		catalog:   catalog,
		links:     links,
		segmenter: segmenter,
		names:     resolver,
	}
}

// Reconcile parses the three source texts of part and merges them
func (r *Reconciler) Reconcile(ctx context.Context, part models.PartBundle, sink diagnostics.Sink) (*Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, err := sources.FromPart(part, r.catalog)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "failed to parse part sources").
			WithDetail("episode", part.EpisodeID)
	}
	return r.ReconcileSet(ctx, part.EpisodeID, set, sink)
}

// ReconcileSet merges already parsed sources. Title follows info > rss >
// web; topics come from the longer of rss and info, falling back to web;
// participants and links are unions over every source.
func (r *Reconciler) ReconcileSet(ctx context.Context, episodeID string, set sources.Set, sink diagnostics.Sink) (*Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = diagnostics.Discard
	}
	all := set.All()
	if len(all) == 0 {
		return nil, apperrors.IncompleteBundle(episodeID)
	}

	f := &Fields{}
	for _, src := range all {
		if t := src.ExtractTitle(); t != "" {
			f.Title = t
			f.TitleSource = src.Kind()
			break
		}
	}

	if src := topicSource(set); src != nil {
		f.TopicSource = src.Kind()
		f.RawDescription = src.ExtractTopics()
		f.Topics = r.segmenter.SegmentTo(f.RawDescription, sink)
	}

	if err := r.participants(f, all, sink); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, src := range all {
		for _, l := range src.ExtractLinks() {
			if seen[l] || !r.links.Allow(l) {
				continue
			}
			seen[l] = true
			f.Links = append(f.Links, l)
		}
	}
	return f, nil
}

func (r *Reconciler) participants(f *Fields, all []sources.Source, sink diagnostics.Sink) error {
	if r.names == nil {
		return nil
	}
	seen := make(map[string]bool)
	for _, src := range all {
		for _, list := range src.ExtractParticipants() {
			decisions, err := r.names.NormalizeAll(list)
			if err != nil {
				return fmt.Errorf("failed to normalize participants %q: %w", list, err)
			}
			for _, d := range decisions {
				f.Decisions = append(f.Decisions, d)
				if d.Outcome == names.OutcomeAmbiguous {
					sink.Flag(ambiguityFlag(d))
				}
				if !seen[d.Canonical] {
					seen[d.Canonical] = true
					f.Participants = append(f.Participants, d.Canonical)
				}
			}
		}
	}
	return nil
}

// topicSource picks the longer non-empty prose of rss and info (info on a
// tie), then web.
func topicSource(set sources.Set) sources.Source {
	var best sources.Source
	bestLen := 0
	for _, src := range []sources.Source{set.Info, set.RSS} {
		if src == nil {
			continue
		}
		if n := utf8.RuneCountInString(src.ExtractTopics()); n > bestLen {
			best, bestLen = src, n
		}
	}
	if best != nil {
		return best
	}
	if set.Web != nil && set.Web.ExtractTopics() != "" {
		return set.Web
	}
	return nil
}

func ambiguityFlag(d names.Decision) diagnostics.Flag {
	candidates := make([]string, len(d.Candidates))
	for i, c := range d.Candidates {
		candidates[i] = fmt.Sprintf("%s (%.3f, %d variants)", c.Canonical, c.Score, c.Variants)
	}
	return diagnostics.Flag{
		Kind:    diagnostics.AmbiguousNameMatch,
		Message: fmt.Sprintf("%q resolved to %q", d.Raw, d.Canonical),
		Details: map[string]string{
			"code":       string(apperrors.ErrCodeAmbiguousName),
			"decision":   d.ID,
			"candidates": strings.Join(candidates, "; "),
			"reason":     d.Reason,
		},
	}
}
