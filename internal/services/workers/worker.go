package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/coffeebreak-api/internal/assembler"
	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/killallgit/coffeebreak-api/internal/services/episodes"
	"github.com/killallgit/coffeebreak-api/pkg/config"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
)

// Ingester processes one bundle end to end
type Ingester interface {
	Ingest(ctx context.Context, runID string, bundle models.Bundle) (*episodes.IngestResult, error)
}

// Status is the outcome of one episode in a batch
type Status string

const (
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
	StatusFailed  Status = "failed"
)

// EpisodeSummary reports one episode of a batch run
type EpisodeSummary struct {
	Number  string
	Status  Status
	Bundles int
	Flags   []diagnostics.Flag
	Err     error
}

// BatchResult is the per-episode summary of one run, in input order
type BatchResult struct {
	RunID    string
	Episodes []EpisodeSummary
	Started  time.Time
	Finished time.Time
}

// Count returns how many episodes ended with status
func (r *BatchResult) Count(status Status) int {
	n := 0
	for _, ep := range r.Episodes {
		if ep.Status == status {
			n++
		}
	}
	return n
}

// FlagCount returns the number of diagnostics raised across the run
func (r *BatchResult) FlagCount() int {
	n := 0
	for _, ep := range r.Episodes {
		n += len(ep.Flags)
	}
	return n
}

// job is every bundle seen for one episode number
type job struct {
	index   int
	number  string
	bundles []models.Bundle
}

// Pool runs a batch of bundles through a fixed number of workers.
// Bundles for one episode number always go to the same job and are
// ingested in input order.
type Pool struct {
	ingester Ingester
	workers  int
	runID    string
}

// PoolOption configures a Pool
type PoolOption func(*Pool)

// WithRunID fixes the run id instead of generating one
func WithRunID(id string) PoolOption {
	return func(p *Pool) {
		p.runID = id
	}
}

// NewPool creates a pool; workerCount below 1 means one worker
func NewPool(ingester Ingester, workerCount int, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		ingester: ingester,
		workers:  workerCount,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ingests every bundle. One failing episode never stops the rest;
// an error is returned only when every episode failed.
func (p *Pool) Run(ctx context.Context, bundles []models.Bundle) (*BatchResult, error) {
	runID := p.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	jobs := groupBundles(bundles)
	result := &BatchResult{
		RunID:    runID,
		Episodes: make([]EpisodeSummary, len(jobs)),
		Started:  time.Now(),
	}

	workerCount := p.workers
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}
	log.Printf("[INFO] Starting run %s: %d bundles, %d episodes, %d workers",
		runID, len(bundles), len(jobs), workerCount)

	queue := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			config.Debugf("Worker %s starting", id)
			for j := range queue {
				result.Episodes[j.index] = p.process(ctx, runID, j)
			}
			config.Debugf("Worker %s stopped", id)
		}(fmt.Sprintf("worker-%d", i+1))
	}

	for _, j := range jobs {
		if ctx.Err() != nil {
			result.Episodes[j.index] = EpisodeSummary{
				Number:  j.number,
				Status:  StatusFailed,
				Bundles: len(j.bundles),
				Err:     ctx.Err(),
			}
			continue
		}
		queue <- j
	}
	close(queue)
	wg.Wait()

	result.Finished = time.Now()
	failed := result.Count(StatusFailed)
	log.Printf("[INFO] Run %s finished in %s: %d created, %d updated, %d failed, %d flags",
		runID, result.Finished.Sub(result.Started).Round(time.Millisecond),
		result.Count(StatusCreated), result.Count(StatusUpdated), failed, result.FlagCount())

	if len(jobs) > 0 && failed == len(jobs) {
		return result, apperrors.Newf(apperrors.ErrCodeInternal, "all %d episodes failed in run %s", failed, runID)
	}
	return result, nil
}

// process ingests the bundles of one episode. The episode fails only when
// none of its bundles could be ingested.
func (p *Pool) process(ctx context.Context, runID string, j job) EpisodeSummary {
	summary := EpisodeSummary{Number: j.number, Status: StatusFailed, Bundles: len(j.bundles)}
	var errs []error

	for _, bundle := range j.bundles {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, err := p.ingester.Ingest(ctx, runID, bundle)
		if res != nil {
			summary.Flags = append(summary.Flags, res.Flags...)
		}
		if err != nil {
			log.Printf("[WARN] Episode %s failed: %v", j.number, err)
			errs = append(errs, err)
			continue
		}
		if res.Number != "" {
			summary.Number = res.Number
		}

		switch {
		case res.Created:
			summary.Status = StatusCreated
		case summary.Status != StatusCreated:
			summary.Status = StatusUpdated
		}
	}

	summary.Err = errors.Join(errs...)
	return summary
}

// groupBundles buckets bundles by episode number, keeping first-seen order.
// A bundle with no recognisable number becomes a job of its own so the
// assembler can report it.
func groupBundles(bundles []models.Bundle) []job {
	var jobs []job
	byNumber := make(map[string]int)

	for i, bundle := range bundles {
		number, ok := bundleNumber(bundle)
		if !ok {
			jobs = append(jobs, job{
				index:   len(jobs),
				number:  fmt.Sprintf("#%d", i+1),
				bundles: []models.Bundle{bundle},
			})
			continue
		}
		if idx, seen := byNumber[number]; seen {
			jobs[idx].bundles = append(jobs[idx].bundles, bundle)
			continue
		}
		byNumber[number] = len(jobs)
		jobs = append(jobs, job{index: len(jobs), number: number, bundles: []models.Bundle{bundle}})
	}
	return jobs
}

func bundleNumber(bundle models.Bundle) (string, bool) {
	if number, ok := assembler.NormalizeNumber(bundle.Number); ok {
		return number, true
	}
	for _, part := range bundle.Parts {
		if number, _, ok := assembler.ParseEpisodeID(part.EpisodeID); ok {
			return number, true
		}
	}
	return "", false
}
