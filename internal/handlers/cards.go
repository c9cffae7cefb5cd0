// internal/handlers/cards.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	redis_a "github.com/cardvault/cardvault-be/internal/adapters/redis_adapter"
	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/ports"
	"github.com/cardvault/cardvault-be/internal/core/services"
)

// collectionCacheKey caches the full listing; any write invalidates it.
var collectionCacheKey = redis_a.BuildKey(redis_a.PrefixCollection, "all")

// responseCacheTTL bounds how long a GET can bypass the service. Reads
// trigger expired-snapshot refreshes, so cached bodies must stay short-lived
// regardless of the cache's default TTL.
const responseCacheTTL = 30 * time.Second

// CardHandler handles card collection HTTP requests
type CardHandler struct {
	service ports.CollectionService
	batch   *services.BatchProcessor
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewCardHandler creates a new card handler. The cache is optional; a nil
// cache disables read-through caching without changing behavior.
func NewCardHandler(
	service ports.CollectionService,
	batch *services.BatchProcessor,
	cache ports.CacheRepository,
	logger *slog.Logger,
) *CardHandler {
	return &CardHandler{
		service: service,
		batch:   batch,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "cards")),
	}
}

// GetCard handles GET /api/v1/cards/{setCode}/{cardNumber}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	setCode := r.PathValue("setCode")
	cardNumber := r.PathValue("cardNumber")
	key := domain.CardKey(setCode, cardNumber)

	cacheKey := redis_a.BuildKey(redis_a.PrefixCard, key)
	if h.cache != nil {
		var cached domain.CardRecord
		if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
			h.respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	record, err := h.service.Get(ctx, setCode, cardNumber)
	if err != nil {
		h.respondServiceError(w, r, err, "failed to get card", key)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetWithTTL(ctx, cacheKey, record, responseCacheTTL); err != nil {
			h.logger.WarnContext(ctx, "failed to cache card",
				slog.String("card", key),
				slog.String("error", err.Error()))
		}
	}

	h.respondJSON(w, http.StatusOK, record)
}

// ListCards handles GET /api/v1/cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		var cached map[string]*domain.CardRecord
		if err := h.cache.Get(ctx, collectionCacheKey, &cached); err == nil {
			h.respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	records, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list cards",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list cards")
		return
	}

	if h.cache != nil {
		if err := h.cache.SetWithTTL(ctx, collectionCacheKey, records, responseCacheTTL); err != nil {
			h.logger.WarnContext(ctx, "failed to cache collection listing",
				slog.String("error", err.Error()))
		}
	}

	h.respondJSON(w, http.StatusOK, records)
}

// CreateCard handles POST /api/v1/cards/{setCode}/{cardNumber}
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	setCode := r.PathValue("setCode")
	cardNumber := r.PathValue("cardNumber")
	key := domain.CardKey(setCode, cardNumber)

	var req CardChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, outcome, err := h.service.CreateOrIncrement(ctx, setCode, cardNumber, req.ToDomain())
	if err != nil {
		h.respondServiceError(w, r, err, "failed to create card", key)
		return
	}

	h.invalidate(ctx, key)

	h.logger.InfoContext(ctx, "card changes applied",
		slog.String("card", key),
		slog.String("outcome", string(outcome)))

	status := http.StatusOK
	if outcome == ports.OutcomeCreated {
		status = http.StatusCreated
	}
	h.respondJSON(w, status, record)
}

// UpdateCard handles PATCH /api/v1/cards/{setCode}/{cardNumber}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	setCode := r.PathValue("setCode")
	cardNumber := r.PathValue("cardNumber")
	key := domain.CardKey(setCode, cardNumber)

	var req CardChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, outcome, err := h.service.Update(ctx, setCode, cardNumber, req.ToDomain())
	if err != nil {
		h.respondServiceError(w, r, err, "failed to update card", key)
		return
	}

	h.invalidate(ctx, key)

	h.logger.InfoContext(ctx, "card updated",
		slog.String("card", key),
		slog.String("outcome", string(outcome)))

	if outcome == ports.OutcomeDeleted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.respondJSON(w, http.StatusOK, record)
}

// DeleteCard handles DELETE /api/v1/cards/{setCode}/{cardNumber}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	setCode := r.PathValue("setCode")
	cardNumber := r.PathValue("cardNumber")
	key := domain.CardKey(setCode, cardNumber)

	if err := h.service.Delete(ctx, setCode, cardNumber); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Card not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete card",
			slog.String("card", key),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}

	h.invalidate(ctx, key)

	h.logger.InfoContext(ctx, "card deleted", slog.String("card", key))
	w.WriteHeader(http.StatusNoContent)
}

// BatchCards handles POST /api/v1/cards/batch
func (h *CardHandler) BatchCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results, err := h.batch.Apply(ctx, req.Operations)
	if err != nil {
		// Cancellation mid-batch: committed operations stay committed,
		// so the partial results are still reported.
		h.logger.WarnContext(ctx, "batch interrupted",
			slog.Int("completed", len(results)),
			slog.Int("submitted", len(req.Operations)),
			slog.String("error", err.Error()))
	}

	for _, result := range results {
		if result.Status < http.StatusBadRequest {
			h.invalidate(ctx, result.Key)
		}
	}

	h.respondJSON(w, http.StatusOK, BatchResponse{Results: results})
}

// respondServiceError maps domain errors to responses, logging server faults.
func (h *CardHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg, key string) {
	status := services.StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), msg,
			slog.String("card", key),
			slog.String("error", err.Error()))
		h.respondError(w, status, "Internal server error")
		return
	}
	h.respondError(w, status, err.Error())
}

// invalidate drops the cached card and the collection listing after a write.
func (h *CardHandler) invalidate(ctx context.Context, key string) {
	if h.cache == nil {
		return
	}
	cacheKey := redis_a.BuildKey(redis_a.PrefixCard, key)
	if err := h.cache.Delete(ctx, cacheKey, collectionCacheKey); err != nil {
		h.logger.WarnContext(ctx, "failed to invalidate cache",
			slog.String("card", key),
			slog.String("error", err.Error()))
	}
}

// Helper methods

func (h *CardHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *CardHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// FinishChangeRequest is one finish delta within a change set.
type FinishChangeRequest struct {
	Finish string `json:"finish"`
	Amount int    `json:"amount"`
	Note   string `json:"note,omitempty"`
}

// CardChangesRequest represents the request body for create and update
type CardChangesRequest struct {
	Finishes []FinishChangeRequest `json:"finishes"`
}

// Validate checks the request shape. Per-finish rules (allowed names,
// quantity bounds) are enforced by the service before any state changes.
func (r *CardChangesRequest) Validate() error {
	if len(r.Finishes) == 0 {
		return fmt.Errorf("finishes is required")
	}
	return nil
}

// ToDomain converts the request to pending changes
func (r *CardChangesRequest) ToDomain() []domain.PendingChange {
	changes := make([]domain.PendingChange, 0, len(r.Finishes))
	for _, f := range r.Finishes {
		changes = append(changes, domain.PendingChange{
			Finish: f.Finish,
			Amount: f.Amount,
			Note:   f.Note,
		})
	}
	return changes
}

// BatchRequest represents the request body for batch application
type BatchRequest struct {
	Operations []services.BatchOperation `json:"operations"`
}

// BatchResponse carries the ordered per-operation outcomes
type BatchResponse struct {
	Results []services.BatchResult `json:"results"`
}
