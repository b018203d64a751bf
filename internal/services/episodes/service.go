package episodes

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/killallgit/coffeebreak-api/internal/assembler"
	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/pkg/config"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
)

const (
	DefaultCacheTTL  = 5 * time.Minute
	DefaultPageLimit = 20
	MaxPageLimit     = 200
)

// IngestResult reports what happened to one bundle
type IngestResult struct {
	Number  string
	Episode *models.Episode
	Created bool
	Flags   []diagnostics.Flag
}

// Service implements the EpisodeService interface with business logic
type Service struct {
	assembler  EpisodeAssembler
	repository EpisodeRepository
	flags      FlagRepository
	cache      EpisodeCache
	keyGen     CacheKeyGenerator
	sink       diagnostics.Sink

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Ensure Service implements EpisodeService interface
var _ EpisodeService = (*Service)(nil)

// ServiceOption is a functional option for configuring the service
type ServiceOption func(*Service)

// WithCache enables read caching
func WithCache(cache EpisodeCache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithFlagRepository persists every ingest's diagnostics
func WithFlagRepository(flags FlagRepository) ServiceOption {
	return func(s *Service) {
		s.flags = flags
	}
}

// WithSink forwards diagnostics to sink as well, e.g. diagnostics.LogSink
func WithSink(sink diagnostics.Sink) ServiceOption {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// NewService creates a new episode service with optional configuration.
// A nil assembler gives a read-only service.
func NewService(asm EpisodeAssembler, repository EpisodeRepository, opts ...ServiceOption) *Service {
	s := &Service{
		assembler:  asm,
		repository: repository,
		keyGen:     NewKeyGenerator("episode"),
		sink:       diagnostics.Discard,
		locks:      make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Ingest assembles bundle, merges it into the stored episode and saves the
// result. Calls for the same episode number are serialised. The returned
// result carries the flags raised even when an error is returned.
func (s *Service) Ingest(ctx context.Context, runID string, bundle models.Bundle) (*IngestResult, error) {
	if s.assembler == nil {
		return nil, apperrors.New(apperrors.ErrCodeInternal, "episode service has no assembler")
	}
	collector := diagnostics.NewCollector()
	sink := diagnostics.Tee(collector, s.sink)
	result := &IngestResult{Number: bundle.Number}

	incoming, err := s.assembler.Assemble(ctx, bundle, sink)
	if err != nil {
		result.Flags = collector.Flags()
		s.saveFlags(ctx, runID, result.Flags)
		return result, err
	}
	result.Number = incoming.Number

	unlock := s.lockEpisode(incoming.Number)
	defer unlock()

	existing, err := s.repository.GetEpisode(ctx, incoming.Number)
	switch {
	case IsNotFound(err):
		existing = nil
		result.Created = true
	case err != nil:
		result.Flags = collector.Flags()
		return result, fmt.Errorf("loading episode %s: %w", incoming.Number, err)
	}

	merged := assembler.Merge(existing, incoming, sink)
	if err := s.repository.SaveEpisode(ctx, merged); err != nil {
		result.Flags = collector.Flags()
		return result, fmt.Errorf("saving episode %s: %w", incoming.Number, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(s.keyGen.EpisodeByNumber(merged.Number))
		s.cache.InvalidatePattern(s.keyGen.ListPattern())
	}

	result.Episode = merged
	result.Flags = collector.Flags()
	s.saveFlags(ctx, runID, result.Flags)

	config.Debugf("Ingested episode %s (created=%t, parts=%d, flags=%d)",
		merged.Number, result.Created, len(merged.Parts), len(result.Flags))
	return result, nil
}

func (s *Service) saveFlags(ctx context.Context, runID string, flags []diagnostics.Flag) {
	if s.flags == nil || len(flags) == 0 {
		return
	}
	if err := s.flags.SaveFlags(ctx, runID, flags); err != nil {
		log.Printf("[WARN] Failed to persist %d diagnostic flags for run %s: %v", len(flags), runID, err)
	}
}

func (s *Service) lockEpisode(number string) func() {
	s.mu.Lock()
	l, ok := s.locks[number]
	if !ok {
		l = &sync.Mutex{}
		s.locks[number] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// GetEpisode returns one episode by its zero-padded number
func (s *Service) GetEpisode(ctx context.Context, number string) (*models.Episode, error) {
	key := s.keyGen.EpisodeByNumber(number)
	if s.cache != nil {
		if episode, found := s.cache.GetEpisode(key); found {
			return episode, nil
		}
	}

	episode, err := s.repository.GetEpisode(ctx, number)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetEpisode(key, episode)
	}
	return episode, nil
}

// ListEpisodes returns one page of episodes ordered by number
func (s *Service) ListEpisodes(ctx context.Context, page, limit int) ([]models.Episode, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return nil, 0, NewValidationError("limit", fmt.Sprintf("must be at most %d", MaxPageLimit))
	}

	key := s.keyGen.EpisodeList(page, limit)
	if s.cache != nil {
		if episodes, total, found := s.cache.GetEpisodeList(key); found {
			return episodes, total, nil
		}
	}

	episodes, total, err := s.repository.ListEpisodes(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if s.cache != nil {
		s.cache.SetEpisodeList(key, episodes, total)
	}
	return episodes, total, nil
}

// Export returns the whole dataset ordered by episode number
func (s *Service) Export(ctx context.Context) ([]models.Episode, error) {
	return s.repository.AllEpisodes(ctx)
}

// ListFlags returns persisted diagnostics, newest first
func (s *Service) ListFlags(ctx context.Context, filter FlagFilter) ([]models.DiagnosticFlag, error) {
	if s.flags == nil {
		return []models.DiagnosticFlag{}, nil
	}
	return s.flags.ListFlags(ctx, filter)
}
