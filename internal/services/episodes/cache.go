package episodes

import (
	"strings"
	"sync"
	"time"

	"github.com/killallgit/coffeebreak-api/internal/models"
)

// Cache is an in-memory TTL cache for episode reads served by the API
type Cache struct {
	episodes map[string]*cacheEntry
	mu       sync.RWMutex
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	episode   *models.Episode
	episodes  []models.Episode
	total     int64
	expiresAt time.Time
}

// Ensure Cache implements EpisodeCache interface
var _ EpisodeCache = (*Cache)(nil)

func NewCache(ttl time.Duration) *Cache {
	cache := &Cache{
		episodes: make(map[string]*cacheEntry),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}

	go cache.cleanupExpired()

	return cache
}

func (c *Cache) GetEpisode(key string) (*models.Episode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.episodes[key]
	if !exists || entry.episode == nil || entry.expiresAt.Before(time.Now()) {
		return nil, false
	}

	return entry.episode, true
}

func (c *Cache) SetEpisode(key string, episode *models.Episode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.episodes[key] = &cacheEntry{
		episode:   episode,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *Cache) GetEpisodeList(key string) ([]models.Episode, int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.episodes[key]
	if !exists || entry.episodes == nil || entry.expiresAt.Before(time.Now()) {
		return nil, 0, false
	}

	return entry.episodes, entry.total, true
}

func (c *Cache) SetEpisodeList(key string, episodes []models.Episode, total int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if episodes == nil {
		episodes = []models.Episode{}
	}
	c.episodes[key] = &cacheEntry{
		episodes:  episodes,
		total:     total,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.episodes, key)
}

func (c *Cache) InvalidatePattern(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.episodes {
		if matchPattern(pattern, key) {
			delete(c.episodes, key)
		}
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.episodes = make(map[string]*cacheEntry)
}

// Stop ends the cleanup goroutine
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.episodes {
				if entry.expiresAt.Before(now) {
					delete(c.episodes, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func matchPattern(pattern, str string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(str, prefix)
	}
	return pattern == str
}
