// internal/core/ports/collection_service.go
package ports

import (
	"context"

	"github.com/cardvault/cardvault-be/internal/core/domain"
)

// Outcome describes how an operation changed a card record.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeDeleted Outcome = "deleted"
)

// CollectionService is the application service port for the card collection.
// The single-card HTTP handlers and the batch processor share this surface,
// so batch items never go through a simulated transport layer.
type CollectionService interface {
	// CreateOrIncrement merges changes additively, creating the record if
	// absent. Returns OutcomeCreated on first write, OutcomeUpdated after.
	CreateOrIncrement(ctx context.Context, setCode, cardNumber string, changes []domain.PendingChange) (*domain.CardRecord, Outcome, error)

	// Update merges changes absolutely into an existing record. A merge
	// that empties the record deletes it and returns OutcomeDeleted with a
	// nil record.
	Update(ctx context.Context, setCode, cardNumber string, changes []domain.PendingChange) (*domain.CardRecord, Outcome, error)

	// Delete removes the record unconditionally.
	Delete(ctx context.Context, setCode, cardNumber string) error

	// Get returns the record, refreshing and persisting an expired catalog
	// snapshot before returning.
	Get(ctx context.Context, setCode, cardNumber string) (*domain.CardRecord, error)

	// List returns every record keyed by its identity string.
	List(ctx context.Context) (map[string]*domain.CardRecord, error)
}
