// internal/core/ports/catalog_source.go
package ports

import (
	"context"

	"github.com/cardvault/cardvault-be/internal/core/domain"
)

// CatalogSource defines the port for the external, read-only card catalog.
// Lookups are pure reads with a bounded timeout; failures and empty results
// surface as domain.ErrCatalogUnavailable.
type CatalogSource interface {
	Lookup(ctx context.Context, setCode, cardNumber string) (*domain.CatalogSnapshot, error)
}
