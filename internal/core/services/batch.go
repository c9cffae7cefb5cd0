// internal/core/services/batch.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/ports"
)

// OperationKind identifies a batch item's operation.
type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
)

// BatchOperation is one item of an ordered batch.
type BatchOperation struct {
	Kind       OperationKind          `json:"op"`
	SetCode    string                 `json:"set_code"`
	CardNumber string                 `json:"card_number"`
	Finishes   []domain.PendingChange `json:"finishes,omitempty"`
}

// BatchResult records the outcome of one batch item. Status carries the
// per-item HTTP-equivalent code; the transport-level response stays 200
// regardless of individual outcomes.
type BatchResult struct {
	Kind   OperationKind      `json:"op"`
	Key    string             `json:"key"`
	Status int                `json:"status"`
	Record *domain.CardRecord `json:"record,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// BatchProcessor applies an ordered sequence of operations with per-item
// isolation: an item's failure never skips or rolls back its neighbors.
// It drives the same service surface as the single-item handlers.
type BatchProcessor struct {
	collection ports.CollectionService
	logger     *slog.Logger
}

// NewBatchProcessor creates a batch processor over the collection service.
func NewBatchProcessor(collection ports.CollectionService, logger *slog.Logger) *BatchProcessor {
	return &BatchProcessor{
		collection: collection,
		logger:     logger.With(slog.String("service", "batch")),
	}
}

// Apply executes the operations strictly in submitted order and returns one
// result per executed operation. If ctx is cancelled mid-batch, operations
// not yet started do not execute and the partial results are returned with
// the context error; already-committed operations stay committed.
func (p *BatchProcessor) Apply(ctx context.Context, ops []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(ops))

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			p.logger.WarnContext(ctx, "batch cancelled mid-way",
				slog.Int("completed", i),
				slog.Int("submitted", len(ops)))
			return results, err
		}
		results = append(results, p.applyOne(ctx, op))
	}

	return results, nil
}

func (p *BatchProcessor) applyOne(ctx context.Context, op BatchOperation) BatchResult {
	result := BatchResult{
		Kind: op.Kind,
		Key:  domain.CardKey(op.SetCode, op.CardNumber),
	}

	var (
		record  *domain.CardRecord
		outcome ports.Outcome
		err     error
	)

	switch op.Kind {
	case OpCreate:
		record, outcome, err = p.collection.CreateOrIncrement(ctx, op.SetCode, op.CardNumber, op.Finishes)
	case OpUpdate:
		record, outcome, err = p.collection.Update(ctx, op.SetCode, op.CardNumber, op.Finishes)
	case OpDelete:
		outcome = ports.OutcomeDeleted
		err = p.collection.Delete(ctx, op.SetCode, op.CardNumber)
	default:
		err = domain.ErrUnknownOperation
	}

	if err != nil {
		result.Status = StatusForError(err)
		result.Error = err.Error()
		p.logger.WarnContext(ctx, "batch operation failed",
			slog.String("op", string(op.Kind)),
			slog.String("card", result.Key),
			slog.Int("status", result.Status),
			slog.String("error", err.Error()))
		return result
	}

	result.Status = statusForOutcome(outcome)
	result.Record = record
	return result
}

// StatusForError maps domain errors to their HTTP-equivalent status. Shared
// by the batch processor and the HTTP handlers so both surfaces report
// identically.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCatalogUnavailable):
		// A card the catalog cannot resolve is reported as absent.
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownOperation):
		return http.StatusBadRequest
	case domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func statusForOutcome(outcome ports.Outcome) int {
	switch outcome {
	case ports.OutcomeCreated:
		return http.StatusCreated
	case ports.OutcomeDeleted:
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}
