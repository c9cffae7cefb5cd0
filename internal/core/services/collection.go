// internal/core/services/collection.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/ports"
)

// CollectionService owns the lifecycle of card records: create/increment,
// absolute update, delete, and reads with read-triggered snapshot write-back.
// Each call builds its view from the store and catalog; there is no shared
// mutable state between concurrent requests. Concurrent writes to the same
// key are last-writer-wins at the store.
type CollectionService struct {
	store   ports.CardStore
	catalog *CatalogCache
	logger  *slog.Logger
	clock   func() time.Time
}

// Statically assert that *CollectionService implements the port.
var _ ports.CollectionService = (*CollectionService)(nil)

// NewCollectionService creates the collection lifecycle service.
func NewCollectionService(store ports.CardStore, catalog *CatalogCache, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		store:   store,
		catalog: catalog,
		logger:  logger.With(slog.String("service", "collection")),
		clock:   time.Now,
	}
}

// CreateOrIncrement merges the submitted changes additively into the record,
// creating it on first write. Catalog metadata is resolved (refreshing if
// absent or expired) before validation, and the whole submission is rejected
// without touching the record if any finish fails validation.
func (s *CollectionService) CreateOrIncrement(ctx context.Context, setCode, cardNumber string, changes []domain.PendingChange) (*domain.CardRecord, ports.Outcome, error) {
	key := domain.CardKey(setCode, cardNumber)

	existing, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load record %s: %w", key, err)
	}

	snapshot, expiry, cached, err := s.catalog.Resolve(ctx, setCode, cardNumber, existing)
	if err != nil {
		return nil, "", err
	}

	if err := domain.ValidateChanges(changes, snapshot, domain.MergeAdditive); err != nil {
		return nil, "", err
	}

	record := existing
	outcome := ports.OutcomeUpdated
	if record == nil {
		record = &domain.CardRecord{SetCode: setCode, CardNumber: cardNumber}
		outcome = ports.OutcomeCreated
	}

	record.Finishes = domain.MergeFinishes(record.Finishes, changes, domain.MergeAdditive, s.clock())
	record.Catalog = snapshot
	record.CatalogExpiry = expiry
	record.PrepareForStorage()

	if err := s.store.Save(ctx, record); err != nil {
		return nil, "", fmt.Errorf("failed to save record %s: %w", key, err)
	}

	s.logger.InfoContext(ctx, "card record merged",
		slog.String("card", key),
		slog.String("outcome", string(outcome)),
		slog.Bool("catalog_cached", cached),
		slog.Int("total_quantity", record.TotalQuantity()))

	return record, outcome, nil
}

// Update applies the submitted changes with absolute-set semantics. A merge
// that brings every finish to zero deletes the record and reports
// OutcomeDeleted.
func (s *CollectionService) Update(ctx context.Context, setCode, cardNumber string, changes []domain.PendingChange) (*domain.CardRecord, ports.Outcome, error) {
	key := domain.CardKey(setCode, cardNumber)

	existing, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load record %s: %w", key, err)
	}
	if existing == nil {
		return nil, "", domain.ErrNotFound
	}

	snapshot, expiry, _, err := s.catalog.Resolve(ctx, setCode, cardNumber, existing)
	if err != nil {
		return nil, "", err
	}

	if err := domain.ValidateChanges(changes, snapshot, domain.MergeAbsolute); err != nil {
		return nil, "", err
	}

	existing.Finishes = domain.MergeFinishes(existing.Finishes, changes, domain.MergeAbsolute, s.clock())

	if existing.IsEmpty() {
		if err := s.store.Delete(ctx, key); err != nil {
			return nil, "", fmt.Errorf("failed to delete emptied record %s: %w", key, err)
		}
		s.logger.InfoContext(ctx, "card record emptied and deleted", slog.String("card", key))
		return nil, ports.OutcomeDeleted, nil
	}

	existing.Catalog = snapshot
	existing.CatalogExpiry = expiry
	existing.PrepareForStorage()

	if err := s.store.Save(ctx, existing); err != nil {
		return nil, "", fmt.Errorf("failed to save record %s: %w", key, err)
	}

	s.logger.InfoContext(ctx, "card record updated",
		slog.String("card", key),
		slog.Int("total_quantity", existing.TotalQuantity()))

	return existing, ports.OutcomeUpdated, nil
}

// Delete removes the record unconditionally.
func (s *CollectionService) Delete(ctx context.Context, setCode, cardNumber string) error {
	key := domain.CardKey(setCode, cardNumber)

	existing, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load record %s: %w", key, err)
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}

	s.logger.InfoContext(ctx, "card record deleted", slog.String("card", key))
	return nil
}

// Get returns the record. An expired catalog snapshot is refreshed and
// written back before returning; when the catalog source is unavailable the
// stale record is served as-is rather than failing the read.
func (s *CollectionService) Get(ctx context.Context, setCode, cardNumber string) (*domain.CardRecord, error) {
	key := domain.CardKey(setCode, cardNumber)

	record, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", key, err)
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}

	snapshot, expiry, cached, err := s.catalog.Resolve(ctx, setCode, cardNumber, record)
	if err != nil {
		s.logger.WarnContext(ctx, "serving record with stale catalog snapshot",
			slog.String("card", key),
			slog.String("error", err.Error()))
		return record, nil
	}

	if !cached {
		record.Catalog = snapshot
		record.CatalogExpiry = expiry
		record.PrepareForStorage()
		if err := s.store.Save(ctx, record); err != nil {
			s.logger.WarnContext(ctx, "failed to write back refreshed snapshot",
				slog.String("card", key),
				slog.String("error", err.Error()))
		}
	}

	return record, nil
}

// List returns every record keyed by its identity string. Unpaginated;
// bounded by collection size.
func (s *CollectionService) List(ctx context.Context) (map[string]*domain.CardRecord, error) {
	records, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	byKey := make(map[string]*domain.CardRecord, len(records))
	for _, r := range records {
		byKey[r.Key()] = r
	}

	return byKey, nil
}
