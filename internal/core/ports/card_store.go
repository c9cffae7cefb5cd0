// internal/core/ports/card_store.go
package ports

import (
	"context"
	"time"

	"github.com/cardvault/cardvault-be/internal/core/domain"
)

// CardStore defines the persistence port for card records. Single-key put
// and delete are atomic; no cross-key transactions are assumed, and
// concurrent writers to the same key are last-writer-wins.
type CardStore interface {
	// FindByKey returns the record for the identity key, or nil if absent.
	FindByKey(ctx context.Context, key string) (*domain.CardRecord, error)

	// Save upserts the record under its identity key.
	Save(ctx context.Context, record *domain.CardRecord) error

	// Delete removes the record. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// FindAll returns every stored record.
	FindAll(ctx context.Context) ([]*domain.CardRecord, error)

	// FindExpired returns records whose catalog snapshot is missing or
	// expired as of the given instant.
	FindExpired(ctx context.Context, asOf time.Time) ([]*domain.CardRecord, error)
}
