// internal/workers/catalog_refresh_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cardvault/cardvault-be/internal/core/ports"
	"github.com/cardvault/cardvault-be/internal/core/services"
)

// TypeCatalogRefresh is the task type for the periodic snapshot sweep.
const TypeCatalogRefresh = "catalog:refresh"

// NewCatalogRefreshTask creates a catalog refresh sweep task.
func NewCatalogRefreshTask() *asynq.Task {
	return asynq.NewTask(TypeCatalogRefresh, nil)
}

// CatalogRefreshProcessor re-resolves catalog snapshots that have expired or
// were never fetched. It only touches snapshot and expiry fields; owned
// finishes are never modified by the sweep.
type CatalogRefreshProcessor struct {
	store   ports.CardStore
	catalog *services.CatalogCache
	logger  *slog.Logger
}

// NewCatalogRefreshProcessor creates a new catalog refresh processor
func NewCatalogRefreshProcessor(store ports.CardStore, catalog *services.CatalogCache, logger *slog.Logger) *CatalogRefreshProcessor {
	return &CatalogRefreshProcessor{
		store:   store,
		catalog: catalog,
		logger:  logger.With(slog.String("processor", "catalog_refresh")),
	}
}

// ProcessTask runs one refresh sweep. Per-card catalog failures are logged
// and skipped so a flaky upstream never wedges the sweep; only store-level
// failures fail the task and trigger a retry.
func (p *CatalogRefreshProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	started := time.Now()

	records, err := p.store.FindExpired(ctx, started)
	if err != nil {
		return fmt.Errorf("failed to find expired snapshots: %w", err)
	}

	p.logger.InfoContext(ctx, "catalog refresh sweep started",
		slog.Int("candidates", len(records)))

	var refreshed, skipped int
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		snapshot, expiry, _, err := p.catalog.Resolve(ctx, record.SetCode, record.CardNumber, record)
		if err != nil {
			skipped++
			p.logger.WarnContext(ctx, "skipping unresolvable card",
				slog.String("card", record.Key()),
				slog.String("error", err.Error()))
			continue
		}

		record.Catalog = snapshot
		record.CatalogExpiry = expiry

		if err := p.store.Save(ctx, record); err != nil {
			skipped++
			p.logger.WarnContext(ctx, "failed to persist refreshed snapshot",
				slog.String("card", record.Key()),
				slog.String("error", err.Error()))
			continue
		}

		refreshed++
	}

	p.logger.InfoContext(ctx, "catalog refresh sweep completed",
		slog.Int("refreshed", refreshed),
		slog.Int("skipped", skipped),
		slog.Duration("duration", time.Since(started)))

	return nil
}
