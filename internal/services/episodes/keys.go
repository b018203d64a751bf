package episodes

import "fmt"

// DefaultKeyGenerator implements CacheKeyGenerator with a consistent key format
type DefaultKeyGenerator struct {
	prefix string
}

// NewKeyGenerator creates a new key generator with an optional prefix
func NewKeyGenerator(prefix string) CacheKeyGenerator {
	if prefix == "" {
		prefix = "episode"
	}
	return &DefaultKeyGenerator{prefix: prefix}
}

// EpisodeByNumber generates a cache key for one episode
func (g *DefaultKeyGenerator) EpisodeByNumber(number string) string {
	return fmt.Sprintf("%s:number:%s", g.prefix, number)
}

// EpisodeList generates a cache key for a page of the episode list
func (g *DefaultKeyGenerator) EpisodeList(page, limit int) string {
	return fmt.Sprintf("%s:list:page:%d:limit:%d", g.prefix, page, limit)
}

// ListPattern matches every cached list page
func (g *DefaultKeyGenerator) ListPattern() string {
	return fmt.Sprintf("%s:list:*", g.prefix)
}
