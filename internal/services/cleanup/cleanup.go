// Package cleanup prunes diagnostic flags past their retention period
package cleanup

import (
	"context"
	"log"
	"sync"
	"time"
)

// FlagPruner deletes flags recorded before a cutoff
type FlagPruner interface {
	PruneFlags(ctx context.Context, before time.Time) (int64, error)
}

// Service periodically removes old diagnostic flags
type Service struct {
	store    FlagPruner
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service
func NewService(store FlagPruner, maxAge, interval time.Duration) *Service {
	return &Service{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs one pass immediately and then one every interval until ctx is
// cancelled or Stop is called
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	if _, err := s.RunOnce(ctx); err != nil {
		log.Printf("[WARN] Flag cleanup failed: %v", err)
	}

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					log.Printf("[WARN] Flag cleanup failed: %v", err)
				}
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (interval: %v, retention: %v)", s.interval, s.maxAge)
}

// Stop stops the cleanup service and waits for the loop to exit
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunOnce deletes every flag older than the retention period
func (s *Service) RunOnce(ctx context.Context) (int64, error) {
	removed, err := s.store.PruneFlags(ctx, s.now().Add(-s.maxAge))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("[INFO] Cleanup removed %d diagnostic flags older than %v", removed, s.maxAge)
	}
	return removed, nil
}
