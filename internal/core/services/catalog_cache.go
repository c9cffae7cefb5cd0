// internal/core/services/catalog_cache.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/ports"
)

// DefaultCatalogTTL is how long a fetched catalog snapshot stays usable
// before the next operation must refresh it.
const DefaultCatalogTTL = 24 * time.Hour

// CatalogCache gates catalog lookups behind the snapshot TTL stored on each
// record. It performs no persistence itself; callers persist the refreshed
// snapshot, which keeps the cache pure and testable.
type CatalogCache struct {
	source ports.CatalogSource
	ttl    time.Duration
	clock  func() time.Time
	logger *slog.Logger
}

// NewCatalogCache creates a catalog cache over the external source.
func NewCatalogCache(source ports.CatalogSource, ttl time.Duration, logger *slog.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		logger: logger.With(slog.String("service", "catalog_cache")),
	}
}

// Resolve returns usable catalog metadata for the card. When the existing
// record carries an unexpired snapshot it is returned as-is with cached=true
// and no network call. Otherwise the external source is queried and the new
// snapshot is returned with a fresh expiry; persisting it is the caller's
// responsibility.
//
// A snapshot whose expiry equals the current instant is already expired;
// only a strictly-future expiry counts as usable.
func (c *CatalogCache) Resolve(ctx context.Context, setCode, cardNumber string, existing *domain.CardRecord) (*domain.CatalogSnapshot, time.Time, bool, error) {
	now := c.clock()

	if existing != nil && existing.Catalog != nil && existing.CatalogExpiry.After(now) {
		return existing.Catalog, existing.CatalogExpiry, true, nil
	}

	snapshot, err := c.source.Lookup(ctx, setCode, cardNumber)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("catalog lookup for %s: %w", domain.CardKey(setCode, cardNumber), err)
	}
	if snapshot == nil {
		return nil, time.Time{}, false, fmt.Errorf("catalog lookup for %s: %w", domain.CardKey(setCode, cardNumber), domain.ErrCatalogUnavailable)
	}

	expiry := now.Add(c.ttl)
	c.logger.DebugContext(ctx, "catalog snapshot refreshed",
		slog.String("card", domain.CardKey(setCode, cardNumber)),
		slog.Time("expiry", expiry))

	return snapshot, expiry, false, nil
}
