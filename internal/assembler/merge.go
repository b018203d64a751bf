package assembler

import (
	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
)

// Merge folds a freshly assembled episode into the stored one, field by
// field. A field is overwritten only when the stored value is empty or the
// incoming source outranks it, and set-valued fields are unioned, so a
// partial re-scrape never erases data. Merge(Merge(e, n), n) == Merge(e, n).
// Neither argument is modified.
func Merge(existing, incoming *models.Episode, sink diagnostics.Sink) *models.Episode {
	if existing == nil {
		return cloneEpisode(incoming)
	}
	if incoming == nil {
		return cloneEpisode(existing)
	}
	if sink == nil {
		sink = diagnostics.Discard
	}

	out := cloneEpisode(existing)

	if incoming.Title != "" && (out.Title == "" || incoming.TitleSource.TitleRank() > out.TitleSource.TitleRank()) {
		out.Title = incoming.Title
		out.TitleSource = incoming.TitleSource
	}
	out.ImageURL = fill(out.ImageURL, incoming.ImageURL)
	out.WebLink = fill(out.WebLink, incoming.WebLink)
	out.RefLinks = union(out.RefLinks, incoming.RefLinks)
	if out.PublicationDate.IsZero() {
		out.PublicationDate = incoming.PublicationDate
	}

	out.Parts = mergeParts(out, incoming, sink)
	out.Class = models.ClassSingle
	if len(out.Parts) == 2 {
		out.Class = models.ClassDual
	}
	out.TotalDurationSeconds, out.TotalStated = mergedTotal(existing, incoming, out.Parts)
	return out
}

// mergeParts matches parts by class. When one side is Single and the other
// Dual, the Only part is treated as part A.
func mergeParts(out, incoming *models.Episode, sink diagnostics.Sink) []models.Part {
	stored := out.Parts
	fresh := cloneParts(incoming.Parts)

	storedSingle := len(stored) == 1 && stored[0].PartClass == models.PartOnly
	freshSingle := len(fresh) == 1 && fresh[0].PartClass == models.PartOnly
	switch {
	case storedSingle && hasClass(fresh, models.PartA, models.PartB):
		stored[0].PartClass = models.PartA
		if p := findClass(fresh, models.PartA); p != nil && p.EpisodeID != "" {
			stored[0].EpisodeID = p.EpisodeID
		}
		sink.Flag(layoutFlag(out.Number, "stored single part folded into part A of a dual release"))
	case freshSingle && hasClass(stored, models.PartA, models.PartB):
		fresh[0].PartClass = models.PartA
		fresh[0].EpisodeID = ""
		sink.Flag(layoutFlag(out.Number, "single-part re-scrape folded into part A of the stored dual release"))
	}

	merged := make([]models.Part, 0, 2)
	for _, class := range []models.PartClass{models.PartA, models.PartB, models.PartOnly} {
		s, f := findClass(stored, class), findClass(fresh, class)
		switch {
		case s != nil && f != nil:
			merged = append(merged, mergePart(*s, *f))
		case s != nil:
			merged = append(merged, *s)
		case f != nil:
			merged = append(merged, *f)
		}
	}
	return merged
}

func mergePart(stored, fresh models.Part) models.Part {
	out := stored
	out.EpisodeID = fill(out.EpisodeID, fresh.EpisodeID)
	out.AudioURL = fill(out.AudioURL, fresh.AudioURL)
	out.ExternalLink = fill(out.ExternalLink, fresh.ExternalLink)
	if out.Date.IsZero() {
		out.Date = fresh.Date
	}
	if out.DurationSeconds == 0 {
		out.DurationSeconds = fresh.DurationSeconds
	}

	if replaceTopics(stored, fresh) {
		out.Topics = fresh.Topics
		out.TopicSource = fresh.TopicSource
		out.RawDescription = fill(fresh.RawDescription, stored.RawDescription)
	} else {
		out.RawDescription = fill(out.RawDescription, fresh.RawDescription)
	}
	out.Participants = union(out.Participants, fresh.Participants)
	return out
}

func replaceTopics(stored, fresh models.Part) bool {
	if len(fresh.Topics) == 0 {
		return false
	}
	if len(stored.Topics) == 0 {
		return true
	}
	sr, fr := stored.TopicSource.TopicRank(), fresh.TopicSource.TopicRank()
	if fr != sr {
		return fr > sr
	}
	return len(fresh.Topics) > len(stored.Topics)
}

// mergedTotal keeps the duration invariant over the merged parts: the total
// is the sum of the known part durations unless one side carried a stated
// total, which wins with the incoming side first.
func mergedTotal(existing, incoming *models.Episode, parts []models.Part) (int, bool) {
	if incoming.TotalStated && incoming.TotalDurationSeconds > 0 {
		return incoming.TotalDurationSeconds, true
	}
	if existing.TotalStated && existing.TotalDurationSeconds > 0 {
		return existing.TotalDurationSeconds, true
	}
	sum, _ := SumDurations(parts)
	return sum, false
}

func layoutFlag(number, msg string) diagnostics.Flag {
	return diagnostics.Flag{
		Kind:    diagnostics.PartLayoutChanged,
		Episode: number,
		Message: msg,
	}
}

func fill(current, candidate string) string {
	if current == "" {
		return candidate
	}
	return current
}

func union(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func hasClass(parts []models.Part, classes ...models.PartClass) bool {
	for _, c := range classes {
		if findClass(parts, c) != nil {
			return true
		}
	}
	return false
}

func findClass(parts []models.Part, class models.PartClass) *models.Part {
	for i := range parts {
		if parts[i].PartClass == class {
			return &parts[i]
		}
	}
	return nil
}

func cloneEpisode(e *models.Episode) *models.Episode {
	if e == nil {
		return nil
	}
	out := *e
	out.RefLinks = append([]string(nil), e.RefLinks...)
	out.Parts = cloneParts(e.Parts)
	return &out
}

func cloneParts(parts []models.Part) []models.Part {
	if parts == nil {
		return nil
	}
	out := make([]models.Part, len(parts))
	for i, p := range parts {
		p.Topics = append([]models.Topic(nil), p.Topics...)
		p.Participants = append([]string(nil), p.Participants...)
		out[i] = p
	}
	return out
}
