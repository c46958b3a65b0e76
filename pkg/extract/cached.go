package extract

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/observability"
)

// Cached wraps an Extractor with a response cache. Failures are never
// cached, so a later call retries the service.
type Cached struct {
	inner   Extractor
	cache   cache.Cache
	keyer   cache.Keyer
	Refresh bool // bypass reads, still write
}

// NewCached wraps inner. A nil cache disables caching and a nil keyer uses
// cache.NewDefaultKeyer.
func NewCached(inner Extractor, c cache.Cache, keyer cache.Keyer) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{inner: inner, cache: c, keyer: keyer}
}

// Model returns the wrapped extractor's model.
func (c *Cached) Model() string { return c.inner.Model() }

// Extract implements Extractor.
func (c *Cached) Extract(ctx context.Context, text string) (*family.Partial, error) {
	key := c.keyer.ExtractKey(c.Model(), strings.TrimSpace(text))

	var hit family.Partial
	if c.lookup(ctx, "extract", key, &hit) {
		return &hit, nil
	}

	p, err := c.inner.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, "extract", key, p, cache.ExtractTTL)
	return p, nil
}

// Biography implements Extractor.
func (c *Cached) Biography(ctx context.Context, p family.Person) (string, error) {
	key := c.keyer.BioKey(c.Model(), cache.BioKeyOpts{
		Name:       p.FullName(),
		Gender:     string(p.Gender),
		BirthDate:  p.BirthDate,
		BirthPlace: p.BirthPlace,
		DeathDate:  p.DeathDate,
		DeathPlace: p.DeathPlace,
	})

	var hit string
	if c.lookup(ctx, "bio", key, &hit) {
		return hit, nil
	}

	bio, err := c.inner.Biography(ctx, p)
	if err != nil {
		return "", err
	}
	c.store(ctx, "bio", key, bio, cache.BioTTL)
	return bio, nil
}

func (c *Cached) lookup(ctx context.Context, kind, key string, v any) bool {
	if c.Refresh {
		return false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, kind)
		return false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return true
}

func (c *Cached) store(ctx context.Context, kind, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, kind, len(data))
	}
}

var _ Extractor = (*Cached)(nil)
