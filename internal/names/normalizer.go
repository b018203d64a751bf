// Package names resolves raw participant names to canonical identities in
// the registry.
package names

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/internal/registry"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
)

// DefaultThreshold is the minimum Similarity for two names to be one person
const DefaultThreshold = 0.88

// Outcome says how a raw name was resolved
type Outcome string

const (
	OutcomeExact     Outcome = "exact"
	OutcomeMatched   Outcome = "matched"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeMinted    Outcome = "minted"
)

// Decision records how one raw name was resolved
type Decision struct {
	ID         string
	Raw        string
	Cleaned    string
	Canonical  string
	Outcome    Outcome
	Candidates []models.NameCandidate
	Reason     string
}

// Record converts the decision to its persisted audit form
func (d Decision) Record() models.NameDecision {
	return models.NameDecision{
		ID:         d.ID,
		Raw:        d.Raw,
		Cleaned:    d.Cleaned,
		Canonical:  d.Canonical,
		Outcome:    string(d.Outcome),
		Reason:     d.Reason,
		Candidates: d.Candidates,
	}
}

// Store is the registry write path the normalizer needs
type Store interface {
	Update(fn func(tx registry.Tx) error) error
}

// Normalizer maps raw names to canonical names
type Normalizer struct {
	store     Store
	threshold float64
	newID     func() string
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithThreshold overrides DefaultThreshold
func WithThreshold(threshold float64) Option {
	return func(n *Normalizer) {
		if threshold > 0 && threshold <= 1 {
			n.threshold = threshold
		}
	}
}

// NewNormalizer creates a normalizer working against store
func NewNormalizer(store Store, opts ...Option) *Normalizer {
	n := &Normalizer{
		store:     store,
		threshold: DefaultThreshold,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Threshold returns the similarity cutoff in use
func (n *Normalizer) Threshold() float64 {
	return n.threshold
}

// NormalizeAll splits raw on conjunctions and resolves every name in it.
// Fragments that are empty after cleaning are dropped.
func (n *Normalizer) NormalizeAll(raw string) ([]Decision, error) {
	var decisions []Decision
	for _, part := range Split(raw) {
		if Clean(part) == "" {
			continue
		}
		d, err := n.Normalize(part)
		if err != nil {
			return decisions, err
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// Normalize resolves one raw name. Matching and minting happen inside a
// single registry write so concurrent callers cannot mint near-duplicates.
func (n *Normalizer) Normalize(raw string) (Decision, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return Decision{}, apperrors.ValidationError("name", fmt.Sprintf("%q is empty after cleaning", raw))
	}
	observed := strings.Join(strings.Fields(raw), " ")

	var decision Decision
	err := n.store.Update(func(tx registry.Tx) error {
		decision = Decision{Raw: observed, Cleaned: cleaned}

		if entry, ok := tx.Find(cleaned); ok {
			decision.Canonical = entry.Canonical
			decision.Outcome = OutcomeExact
			decision.Reason = "folded name already registered"
			return tx.RecordVariant(entry.Canonical, observed)
		}

		scored := n.score(cleaned, tx.Entries())
		above := scored[:0:0]
		for _, c := range scored {
			if c.Score >= n.threshold {
				above = append(above, c)
			}
		}

		switch len(above) {
		case 0:
			entry, _ := tx.InsertCanonical(cleaned)
			decision.Canonical = entry.Canonical
			decision.Outcome = OutcomeMinted
			decision.Reason = fmt.Sprintf("no registered name scored %.2f or more", n.threshold)
			decision.Candidates = topN(scored, 3)
		case 1:
			decision.Canonical = above[0].Canonical
			decision.Outcome = OutcomeMatched
			decision.Reason = fmt.Sprintf("single candidate scored %.3f", above[0].Score)
			decision.Candidates = above
		default:
			sort.SliceStable(above, func(i, j int) bool {
				if above[i].Variants != above[j].Variants {
					return above[i].Variants > above[j].Variants
				}
				if above[i].Score != above[j].Score {
					return above[i].Score > above[j].Score
				}
				return above[i].Canonical < above[j].Canonical
			})
			decision.Canonical = above[0].Canonical
			decision.Outcome = OutcomeAmbiguous
			decision.Reason = fmt.Sprintf("%d candidates above %.2f; chose the one with most observed variants (%d)",
				len(above), n.threshold, above[0].Variants)
			decision.Candidates = above
		}

		if err := tx.RecordVariant(decision.Canonical, observed); err != nil {
			return err
		}
		decision.ID = n.newID()
		tx.RecordDecision(decision.Record())
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	return decision, nil
}

// score rates cleaned against every entry, using the best of its canonical
// spelling and observed variants. Results are sorted by descending score.
func (n *Normalizer) score(cleaned string, entries []registry.Entry) []models.NameCandidate {
	out := make([]models.NameCandidate, 0, len(entries))
	for _, e := range entries {
		best := Similarity(cleaned, e.Canonical)
		for _, v := range e.Variants {
			if s := Similarity(cleaned, v); s > best {
				best = s
			}
		}
		out = append(out, models.NameCandidate{
			Canonical: e.Canonical,
			Score:     best,
			Variants:  len(e.Variants),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Canonical < out[j].Canonical
	})
	return out
}

func topN(c []models.NameCandidate, n int) []models.NameCandidate {
	if len(c) > n {
		c = c[:n]
	}
	out := make([]models.NameCandidate, len(c))
	copy(out, c)
	return out
}
