// Package pipeline wires the extraction engine together from configuration:
// boilerplate catalogue, link filter, topic segmenter, participant registry,
// assembler, episode index and the batch worker pool.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"sync"

	"github.com/killallgit/coffeebreak-api/internal/assembler"
	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/internal/names"
	"github.com/killallgit/coffeebreak-api/internal/reconciler"
	"github.com/killallgit/coffeebreak-api/internal/registry"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
	"github.com/killallgit/coffeebreak-api/internal/services/workers"
	"github.com/killallgit/coffeebreak-api/internal/sources"
	"github.com/killallgit/coffeebreak-api/internal/topics"
	"github.com/killallgit/coffeebreak-api/pkg/config"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
	"gorm.io/gorm"
)

// Options are the engine settings a run depends on
type Options struct {
	Threshold        float64
	MarkerPosition   string
	BoilerplatePath  string
	ExcludedDomains  []string
	PromoLinks       []string
	StripTitlePrefix bool
	Workers          int
	RegistrySeed     string
	// LockPath is the cross-process registry lock; empty disables it
	LockPath string
}

// OptionsFromConfig maps the application configuration onto Options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Threshold:        cfg.Normalizer.Threshold,
		MarkerPosition:   cfg.Topics.MarkerPosition,
		BoilerplatePath:  cfg.Sources.BoilerplatePath,
		ExcludedDomains:  cfg.Sources.ExcludedDomains,
		PromoLinks:       cfg.Sources.PromoLinks,
		StripTitlePrefix: cfg.Assembler.StripTitlePrefix,
		Workers:          cfg.Processing.Workers,
		RegistrySeed:     cfg.Normalizer.RegistrySeed,
	}
	if path := cfg.Database.Path; path != "" && path != ":memory:" {
		opts.LockPath = path + ".lock"
	}
	return opts
}

// Pipeline owns the long-lived pieces of the engine. Every Run loads the
// participant registry fresh, processes its bundles and flushes the registry
// before returning.
type Pipeline struct {
	opts      Options
	catalog   *sources.Catalog
	links     *sources.LinkFilter
	segmenter *topics.Segmenter

	registryRepo *registry.Repository
	episodeRepo  *episodes.Repository
	flags        *episodes.FlagStore
	cache        episodes.EpisodeCache
	reader       *episodes.Service
	sink         diagnostics.Sink

	mu sync.Mutex
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithCache shares an episode cache between runs and readers
func WithCache(cache episodes.EpisodeCache) Option {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// WithSink forwards every diagnostic to sink, e.g. diagnostics.LogSink
func WithSink(sink diagnostics.Sink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// New builds a pipeline over db
func New(db *gorm.DB, opts Options, options ...Option) (*Pipeline, error) {
	catalog, err := sources.LoadCatalog(opts.BoilerplatePath)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		opts:         opts,
		catalog:      catalog,
		links:        sources.NewLinkFilter(opts.ExcludedDomains, opts.PromoLinks),
		segmenter:    topics.NewSegmenter(topics.Mode(opts.MarkerPosition)),
		registryRepo: registry.NewRepository(db),
		episodeRepo:  episodes.NewRepository(db),
		flags:        episodes.NewFlagStore(db),
		sink:         diagnostics.Discard,
	}
	for _, o := range options {
		o(p)
	}

	p.reader = episodes.NewService(nil, p.episodeRepo, p.serviceOptions()...)
	config.Debugf("Pipeline ready: %d boilerplate patterns, marker position %s, threshold %.2f",
		catalog.Len(), p.segmenter.Mode(), opts.Threshold)
	return p, nil
}

func (p *Pipeline) serviceOptions() []episodes.ServiceOption {
	opts := []episodes.ServiceOption{
		episodes.WithFlagRepository(p.flags),
		episodes.WithSink(p.sink),
	}
	if p.cache != nil {
		opts = append(opts, episodes.WithCache(p.cache))
	}
	return opts
}

// Episodes is the read side of the episode index
func (p *Pipeline) Episodes() *episodes.Service {
	return p.reader
}

// Registry is the stored participant roster
func (p *Pipeline) Registry() *registry.Repository {
	return p.registryRepo
}

// Run processes one batch. Runs in this process are serialised and the
// registry lock file keeps other processes out for the duration.
func (p *Pipeline) Run(ctx context.Context, bundles []models.Bundle, opts ...workers.PoolOption) (*workers.BatchResult, error) {
	release, err := p.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	reg, err := p.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}

	normalizer := names.NewNormalizer(reg, names.WithThreshold(p.opts.Threshold))
	asm := assembler.New(
		reconciler.New(p.catalog, p.links, p.segmenter, normalizer),
		assembler.WithTitlePrefixStripping(p.opts.StripTitlePrefix),
	)
	service := episodes.NewService(asm, p.episodeRepo, p.serviceOptions()...)

	result, runErr := workers.NewPool(service, p.opts.Workers, opts...).Run(ctx, bundles)

	// flush even after a failed run: decisions made for good episodes stand
	stats, err := p.registryRepo.Flush(context.WithoutCancel(ctx), reg)
	if err != nil {
		return result, apperrors.Wrap(err, apperrors.ErrCodeDatabaseQuery, "run finished but the registry was not saved")
	}
	log.Printf("[INFO] Registry saved: %d new participants, %d new variants, %d decisions",
		stats.Participants, stats.Variants, stats.Decisions)

	return result, runErr
}

// SeedRegistry applies a roster file to the stored registry outside of a run
func (p *Pipeline) SeedRegistry(ctx context.Context, path string) (int, registry.FlushStats, error) {
	release, err := p.acquire()
	if err != nil {
		return 0, registry.FlushStats{}, err
	}
	defer release()

	reg, err := p.registryRepo.Load(ctx)
	if err != nil {
		return 0, registry.FlushStats{}, err
	}
	added, err := SeedFile(reg, path)
	if err != nil {
		return 0, registry.FlushStats{}, err
	}
	stats, err := p.registryRepo.Flush(ctx, reg)
	return added, stats, err
}

// acquire serialises registry writers in this process and, when a lock path
// is configured, across processes
func (p *Pipeline) acquire() (func(), error) {
	p.mu.Lock()
	if p.opts.LockPath == "" {
		return p.mu.Unlock, nil
	}

	lock, err := registry.AcquireLock(p.opts.LockPath)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	return func() {
		if err := lock.Release(); err != nil {
			log.Printf("[WARN] Failed to release registry lock: %v", err)
		}
		p.mu.Unlock()
	}, nil
}

// loadRegistry reads the stored roster and applies the configured seed file
func (p *Pipeline) loadRegistry(ctx context.Context) (*registry.Registry, error) {
	reg, err := p.registryRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if p.opts.RegistrySeed == "" {
		return reg, nil
	}

	added, err := SeedFile(reg, p.opts.RegistrySeed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("[WARN] Registry seed %s not found, skipping", p.opts.RegistrySeed)
			return reg, nil
		}
		return nil, err
	}
	config.Debugf("Registry seed %s added %d canonical names", p.opts.RegistrySeed, added)
	return reg, nil
}

// SeedFile applies a roster file to reg
func SeedFile(reg *registry.Registry, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return registry.Seed(reg, f)
}
