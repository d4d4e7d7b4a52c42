package catalog

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/owasp-blt/lettuce/internal/kv"
	"github.com/owasp-blt/lettuce/pkg/models"
)

const cacheKey = "projects:cache"

// DefaultTTL is how long a fetched catalog stays fresh.
const DefaultTTL = 24 * time.Hour

// Cache is the single source of truth for the current catalog. It
// serves the stored catalog while it is younger than the TTL and
// refreshes synchronously otherwise. Refreshes replace the catalog
// wholesale; readers never see a half-written one because the store
// write is a single put. Two racing refreshes both store a valid
// catalog and the last write wins.
type Cache struct {
	kv     kv.Store
	source Source
	orgs   []string
	ttl    time.Duration

	now func() time.Time
}

// NewCache creates a catalog cache over the given store and source.
func NewCache(store kv.Store, source Source, orgs []string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{kv: store, source: source, orgs: orgs, ttl: ttl, now: time.Now}
}

// GetCurrent returns the cached projects, refreshing first when the
// catalog is absent or older than the TTL.
func (c *Cache) GetCurrent(ctx context.Context) ([]models.ProjectRecord, error) {
	data, ok, err := c.kv.Get(ctx, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("read catalog cache: %w", err)
	}
	if ok {
		var cat models.Catalog
		if err := json.Unmarshal(data, &cat); err != nil {
			// A corrupt cache entry is treated as a miss.
			log.Warn().Err(err).Msg("Discarding unreadable catalog cache entry")
		} else if c.now().Unix()-cat.FetchedAt < int64(c.ttl.Seconds()) {
			return cat.Projects, nil
		}
	}
	return c.refresh(ctx)
}

// ForceRefresh fetches and stores a fresh catalog regardless of TTL.
// Used by the background warmer so interactive requests rarely pay the
// fetch cost.
func (c *Cache) ForceRefresh(ctx context.Context) error {
	_, err := c.refresh(ctx)
	return err
}

func (c *Cache) refresh(ctx context.Context) ([]models.ProjectRecord, error) {
	projects := c.source.FetchAll(ctx, c.orgs)

	cat := models.Catalog{
		FetchedAt: c.now().Unix(),
		Projects:  projects,
	}
	data, err := json.Marshal(cat)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	if err := c.kv.Put(ctx, cacheKey, data, c.ttl); err != nil {
		return nil, fmt.Errorf("store catalog: %w", err)
	}

	log.Info().Int("projects", len(projects)).Msg("Catalog cache refreshed")
	return projects, nil
}
