// Package registry holds the participant roster shared by every episode in a
// batch: canonical names and the raw spellings observed for each.
//
// The registry is append-only. All writes go through Update, which holds the
// write lock for the whole callback, so a match-or-mint decision can never
// race with another worker minting a near-duplicate. Readers take snapshots.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/killallgit/coffeebreak-api/internal/models"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
	"github.com/killallgit/coffeebreak-api/pkg/textfold"
)

// Entry is a read-only view of one canonical identity
type Entry struct {
	Canonical string
	Variants  []string
	CreatedAt time.Time
}

// Tx is the write view handed to Update callbacks
type Tx interface {
	// Entries returns every canonical entry in insertion order
	Entries() []Entry
	// Find looks a name up by its folded key (canonical or variant)
	Find(name string) (Entry, bool)
	// InsertCanonical adds a canonical name; when one with the same folded
	// key exists it is returned with inserted=false
	InsertCanonical(name string) (entry Entry, inserted bool)
	// RecordVariant records raw as an observed spelling of canonical
	RecordVariant(canonical, raw string) error
	// RecordDecision appends a normalization audit record
	RecordDecision(d models.NameDecision)
}

type entry struct {
	canonical string
	variants  []string
	createdAt time.Time

	persisted         bool
	persistedVariants int
}

func (e *entry) view() Entry {
	v := make([]string, len(e.variants))
	copy(v, e.variants)
	return Entry{Canonical: e.canonical, Variants: v, CreatedAt: e.createdAt}
}

// Registry is the participant roster. Construct one per run with New or
// Repository.Load and pass it explicitly to whoever needs it.
type Registry struct {
	mu          sync.RWMutex
	entries     []*entry
	byCanonical map[string]*entry
	byKey       map[string]*entry
	decisions   []models.NameDecision

	persistedDecisions int
	now                func() time.Time
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		byCanonical: make(map[string]*entry),
		byKey:       make(map[string]*entry),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Update runs fn with exclusive write access. If fn returns an error every
// change it made is undone.
func (r *Registry) Update(fn func(tx Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &tx{r: r}
	if err := fn(t); err != nil {
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		return err
	}
	return nil
}

// Snapshot returns a consistent copy of every entry
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.view()
	}
	return out
}

// Lookup finds the entry a name (canonical or known variant) belongs to
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byKey[textfold.Fold(name)]; ok {
		return e.view(), true
	}
	return Entry{}, false
}

// Len returns the number of canonical entries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Decisions returns a copy of the audit log
func (r *Registry) Decisions() []models.NameDecision {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.NameDecision, len(r.decisions))
	copy(out, r.decisions)
	return out
}

// Sorted returns the canonical names alphabetically
func (r *Registry) Sorted() []string {
	snap := r.Snapshot()
	names := make([]string, len(snap))
	for i, e := range snap {
		names[i] = e.Canonical
	}
	sort.Strings(names)
	return names
}

type tx struct {
	r    *Registry
	undo []func()
}

func (t *tx) Entries() []Entry {
	out := make([]Entry, len(t.r.entries))
	for i, e := range t.r.entries {
		out[i] = e.view()
	}
	return out
}

func (t *tx) Find(name string) (Entry, bool) {
	if e, ok := t.r.byKey[textfold.Fold(name)]; ok {
		return e.view(), true
	}
	return Entry{}, false
}

func (t *tx) InsertCanonical(name string) (Entry, bool) {
	key := textfold.Fold(name)
	if e, ok := t.r.byKey[key]; ok {
		return e.view(), false
	}
	if e, ok := t.r.byCanonical[name]; ok {
		return e.view(), false
	}

	e := &entry{canonical: name, variants: []string{name}, createdAt: t.r.now()}
	t.r.entries = append(t.r.entries, e)
	t.r.byCanonical[name] = e
	t.r.byKey[key] = e

	t.undo = append(t.undo, func() {
		t.r.entries = t.r.entries[:len(t.r.entries)-1]
		delete(t.r.byCanonical, name)
		delete(t.r.byKey, key)
	})
	return e.view(), true
}

func (t *tx) RecordVariant(canonical, raw string) error {
	e, ok := t.r.byCanonical[canonical]
	if !ok {
		return apperrors.NotFound("participant", canonical)
	}
	for _, v := range e.variants {
		if v == raw {
			return nil
		}
	}

	e.variants = append(e.variants, raw)
	key := textfold.Fold(raw)
	_, keyTaken := t.r.byKey[key]
	if !keyTaken {
		t.r.byKey[key] = e
	}

	t.undo = append(t.undo, func() {
		e.variants = e.variants[:len(e.variants)-1]
		if !keyTaken {
			delete(t.r.byKey, key)
		}
	})
	return nil
}

func (t *tx) RecordDecision(d models.NameDecision) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = t.r.now()
	}
	t.r.decisions = append(t.r.decisions, d)
	t.undo = append(t.undo, func() {
		t.r.decisions = t.r.decisions[:len(t.r.decisions)-1]
	})
}

// pending is the part of the registry not yet written by a Repository
type pending struct {
	entries   []Entry
	variants  map[string][]string
	decisions []models.NameDecision

	entryMarks   []*entry
	variantMarks map[*entry]int
	decisionMark int
}

func (r *Registry) pending() *pending {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := &pending{
		variants:     make(map[string][]string),
		variantMarks: make(map[*entry]int),
		decisionMark: len(r.decisions),
	}
	for _, e := range r.entries {
		if !e.persisted {
			p.entries = append(p.entries, e.view())
			p.entryMarks = append(p.entryMarks, e)
		}
		if len(e.variants) > e.persistedVariants {
			fresh := make([]string, len(e.variants)-e.persistedVariants)
			copy(fresh, e.variants[e.persistedVariants:])
			p.variants[e.canonical] = fresh
			p.variantMarks[e] = len(e.variants)
		}
	}
	p.decisions = append(p.decisions, r.decisions[r.persistedDecisions:]...)
	return p
}

func (r *Registry) markPersisted(p *pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range p.entryMarks {
		e.persisted = true
	}
	for e, n := range p.variantMarks {
		e.persistedVariants = n
	}
	r.persistedDecisions = p.decisionMark
}

// restore adds an already-persisted entry while loading
func (r *Registry) restore(canonical string, variants []string, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{canonical: canonical, createdAt: createdAt, persisted: true}
	e.variants = append(e.variants, variants...)
	e.persistedVariants = len(e.variants)
	r.entries = append(r.entries, e)
	r.byCanonical[canonical] = e
	if _, ok := r.byKey[textfold.Fold(canonical)]; !ok {
		r.byKey[textfold.Fold(canonical)] = e
	}
	for _, v := range variants {
		if _, ok := r.byKey[textfold.Fold(v)]; !ok {
			r.byKey[textfold.Fold(v)] = e
		}
	}
}

func (r *Registry) restoreDecisions(ds []models.NameDecision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, ds...)
	r.persistedDecisions = len(r.decisions)
}
