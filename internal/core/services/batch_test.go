// internal/core/services/batch_test.go
package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/ports"
	"github.com/cardvault/cardvault-be/internal/core/services"
	"github.com/cardvault/cardvault-be/test/helpers"
	"github.com/cardvault/cardvault-be/test/mocks"
)

func newBatchProcessor(t *testing.T) (*services.BatchProcessor, *mocks.MockCollectionService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	collection := mocks.NewMockCollectionService(ctrl)

	return services.NewBatchProcessor(collection, helpers.TestLogger()), collection
}

func TestBatchProcessor_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("executes_operations_in_order", func(t *testing.T) {
		processor, collection := newBatchProcessor(t)

		created := helpers.CreateTestCardRecord()
		updated := helpers.CreateTestCardRecord(func(r *domain.CardRecord) { r.CardNumber = "102" })

		gomock.InOrder(
			collection.EXPECT().
				CreateOrIncrement(gomock.Any(), "tst", "101", gomock.Any()).
				Return(created, ports.OutcomeCreated, nil),
			collection.EXPECT().
				Update(gomock.Any(), "tst", "102", gomock.Any()).
				Return(updated, ports.OutcomeUpdated, nil),
			collection.EXPECT().
				Delete(gomock.Any(), "tst", "103").
				Return(nil),
		)

		results, err := processor.Apply(ctx, []services.BatchOperation{
			{Kind: services.OpCreate, SetCode: "tst", CardNumber: "101", Finishes: []domain.PendingChange{{Finish: "nonfoil", Amount: 1}}},
			{Kind: services.OpUpdate, SetCode: "tst", CardNumber: "102", Finishes: []domain.PendingChange{{Finish: "foil", Amount: 4}}},
			{Kind: services.OpDelete, SetCode: "tst", CardNumber: "103"},
		})

		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, http.StatusCreated, results[0].Status)
		assert.Equal(t, "tst:101", results[0].Key)
		assert.Same(t, created, results[0].Record)

		assert.Equal(t, http.StatusOK, results[1].Status)
		assert.Same(t, updated, results[1].Record)

		assert.Equal(t, http.StatusNoContent, results[2].Status)
		assert.Nil(t, results[2].Record)
	})

	t.Run("failed_operation_does_not_skip_neighbors", func(t *testing.T) {
		processor, collection := newBatchProcessor(t)

		first := helpers.CreateTestCardRecord()
		third := helpers.CreateTestCardRecord(func(r *domain.CardRecord) { r.CardNumber = "103" })

		gomock.InOrder(
			collection.EXPECT().
				Update(gomock.Any(), "tst", "101", gomock.Any()).
				Return(first, ports.OutcomeUpdated, nil),
			collection.EXPECT().
				Update(gomock.Any(), "tst", "102", gomock.Any()).
				Return(nil, ports.Outcome(""), domain.NewUnknownFinishError("etched")),
			collection.EXPECT().
				Update(gomock.Any(), "tst", "103", gomock.Any()).
				Return(third, ports.OutcomeUpdated, nil),
		)

		results, err := processor.Apply(ctx, []services.BatchOperation{
			{Kind: services.OpUpdate, SetCode: "tst", CardNumber: "101", Finishes: []domain.PendingChange{{Finish: "nonfoil", Amount: 1}}},
			{Kind: services.OpUpdate, SetCode: "tst", CardNumber: "102", Finishes: []domain.PendingChange{{Finish: "etched", Amount: 1}}},
			{Kind: services.OpUpdate, SetCode: "tst", CardNumber: "103", Finishes: []domain.PendingChange{{Finish: "nonfoil", Amount: 2}}},
		})

		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, http.StatusOK, results[0].Status)
		assert.Equal(t, http.StatusBadRequest, results[1].Status)
		assert.NotEmpty(t, results[1].Error)
		assert.Nil(t, results[1].Record)
		assert.Equal(t, http.StatusOK, results[2].Status)
	})

	t.Run("unknown_operation_kind_reported_per_item", func(t *testing.T) {
		processor, collection := newBatchProcessor(t)

		collection.EXPECT().
			Delete(gomock.Any(), "tst", "102").
			Return(nil)

		results, err := processor.Apply(ctx, []services.BatchOperation{
			{Kind: "upsert", SetCode: "tst", CardNumber: "101"},
			{Kind: services.OpDelete, SetCode: "tst", CardNumber: "102"},
		})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, http.StatusBadRequest, results[0].Status)
		assert.Equal(t, domain.ErrUnknownOperation.Error(), results[0].Error)
		assert.Equal(t, http.StatusNoContent, results[1].Status)
	})

	t.Run("missing_record_reports_404_for_item", func(t *testing.T) {
		processor, collection := newBatchProcessor(t)

		collection.EXPECT().
			Delete(gomock.Any(), "tst", "101").
			Return(domain.ErrNotFound)

		results, err := processor.Apply(ctx, []services.BatchOperation{
			{Kind: services.OpDelete, SetCode: "tst", CardNumber: "101"},
		})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, http.StatusNotFound, results[0].Status)
	})

	t.Run("cancellation_stops_unstarted_operations", func(t *testing.T) {
		processor, collection := newBatchProcessor(t)

		cancelCtx, cancel := context.WithCancel(ctx)

		collection.EXPECT().
			Delete(gomock.Any(), "tst", "101").
			DoAndReturn(func(context.Context, string, string) error {
				cancel()
				return nil
			})

		results, err := processor.Apply(cancelCtx, []services.BatchOperation{
			{Kind: services.OpDelete, SetCode: "tst", CardNumber: "101"},
			{Kind: services.OpDelete, SetCode: "tst", CardNumber: "102"},
		})

		require.ErrorIs(t, err, context.Canceled)
		require.Len(t, results, 1)
		assert.Equal(t, http.StatusNoContent, results[0].Status)
	})

	t.Run("empty_batch_returns_no_results", func(t *testing.T) {
		processor, _ := newBatchProcessor(t)

		results, err := processor.Apply(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not_found", domain.ErrNotFound, http.StatusNotFound},
		{"catalog_unavailable", domain.ErrCatalogUnavailable, http.StatusNotFound},
		{"wrapped_catalog_unavailable", errors.Join(errors.New("catalog lookup"), domain.ErrCatalogUnavailable), http.StatusNotFound},
		{"unknown_operation", domain.ErrUnknownOperation, http.StatusBadRequest},
		{"validation", domain.NewInvalidQuantityError("foil", -1), http.StatusBadRequest},
		{"anything_else", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.StatusForError(tt.err))
		})
	}
}
