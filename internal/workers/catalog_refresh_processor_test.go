// internal/workers/catalog_refresh_processor_test.go
package workers_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/services"
	"github.com/cardvault/cardvault-be/internal/workers"
	"github.com/cardvault/cardvault-be/test/helpers"
	"github.com/cardvault/cardvault-be/test/mocks"
)

func newRefreshProcessor(t *testing.T) (*workers.CatalogRefreshProcessor, *mocks.MockCardStore, *mocks.MockCatalogSource) {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockCardStore(ctrl)
	source := mocks.NewMockCatalogSource(ctrl)
	catalog := services.NewCatalogCache(source, services.DefaultCatalogTTL, helpers.TestLogger())

	return workers.NewCatalogRefreshProcessor(store, catalog, helpers.TestLogger()), store, source
}

func expiredRecord(cardNumber string) *domain.CardRecord {
	return helpers.CreateTestCardRecord(func(r *domain.CardRecord) {
		r.CardNumber = cardNumber
		r.CatalogExpiry = time.Now().Add(-time.Hour)
	})
}

func TestCatalogRefreshProcessor_RefreshesExpiredSnapshots(t *testing.T) {
	processor, store, source := newRefreshProcessor(t)

	stale := expiredRecord("101")
	never := helpers.CreateTestCardRecord(func(r *domain.CardRecord) {
		r.CardNumber = "102"
		r.Catalog = nil
		r.CatalogExpiry = time.Time{}
	})

	store.EXPECT().
		FindExpired(gomock.Any(), gomock.Any()).
		Return([]*domain.CardRecord{stale, never}, nil)

	refreshedSnapshot := helpers.CreateTestSnapshot(func(s *domain.CatalogSnapshot) {
		s.Rarity = "uncommon"
	})
	source.EXPECT().
		Lookup(gomock.Any(), "tst", "101").
		Return(refreshedSnapshot, nil)
	source.EXPECT().
		Lookup(gomock.Any(), "tst", "102").
		Return(helpers.CreateTestSnapshot(), nil)

	var saved []*domain.CardRecord
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *domain.CardRecord) error {
			saved = append(saved, record)
			return nil
		}).
		Times(2)

	err := processor.ProcessTask(context.Background(), workers.NewCatalogRefreshTask())
	require.NoError(t, err)

	require.Len(t, saved, 2)
	assert.Equal(t, "uncommon", saved[0].Catalog.Rarity)
	assert.True(t, saved[0].CatalogExpiry.After(time.Now()))
	assert.NotNil(t, saved[1].Catalog)
}

func TestCatalogRefreshProcessor_SweepNeverTouchesFinishes(t *testing.T) {
	processor, store, source := newRefreshProcessor(t)

	record := expiredRecord("101")
	originalFinishes := []domain.FinishEntry{{Finish: "nonfoil", Quantity: 2}}

	store.EXPECT().
		FindExpired(gomock.Any(), gomock.Any()).
		Return([]*domain.CardRecord{record}, nil)
	source.EXPECT().
		Lookup(gomock.Any(), "tst", "101").
		Return(helpers.CreateTestSnapshot(), nil)
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *domain.CardRecord) error {
			assert.Equal(t, originalFinishes, r.Finishes)
			return nil
		})

	err := processor.ProcessTask(context.Background(), workers.NewCatalogRefreshTask())
	require.NoError(t, err)
}

func TestCatalogRefreshProcessor_SkipsUnresolvableCards(t *testing.T) {
	processor, store, source := newRefreshProcessor(t)

	gone := expiredRecord("101")
	alive := expiredRecord("102")

	store.EXPECT().
		FindExpired(gomock.Any(), gomock.Any()).
		Return([]*domain.CardRecord{gone, alive}, nil)

	source.EXPECT().
		Lookup(gomock.Any(), "tst", "101").
		Return(nil, fmt.Errorf("%w: status 404", domain.ErrCatalogUnavailable))
	source.EXPECT().
		Lookup(gomock.Any(), "tst", "102").
		Return(helpers.CreateTestSnapshot(), nil)

	// Only the resolvable card gets persisted.
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *domain.CardRecord) error {
			assert.Equal(t, "tst:102", r.Key())
			return nil
		})

	err := processor.ProcessTask(context.Background(), workers.NewCatalogRefreshTask())
	require.NoError(t, err)
}

func TestCatalogRefreshProcessor_SkipsFailedSaves(t *testing.T) {
	processor, store, source := newRefreshProcessor(t)

	record := expiredRecord("101")

	store.EXPECT().
		FindExpired(gomock.Any(), gomock.Any()).
		Return([]*domain.CardRecord{record}, nil)
	source.EXPECT().
		Lookup(gomock.Any(), "tst", "101").
		Return(helpers.CreateTestSnapshot(), nil)
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("failed to save card: connection reset"))

	err := processor.ProcessTask(context.Background(), workers.NewCatalogRefreshTask())
	require.NoError(t, err)
}

func TestCatalogRefreshProcessor_FailsWhenScanFails(t *testing.T) {
	processor, store, _ := newRefreshProcessor(t)

	store.EXPECT().
		FindExpired(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("connection refused"))

	err := processor.ProcessTask(context.Background(), workers.NewCatalogRefreshTask())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find expired snapshots")
}

func TestCatalogRefreshProcessor_StopsOnCancelledContext(t *testing.T) {
	processor, store, _ := newRefreshProcessor(t)

	ctx, cancel := context.WithCancel(context.Background())

	store.EXPECT().
		FindExpired(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time) ([]*domain.CardRecord, error) {
			cancel()
			return []*domain.CardRecord{expiredRecord("101")}, nil
		})

	err := processor.ProcessTask(ctx, workers.NewCatalogRefreshTask())
	assert.ErrorIs(t, err, context.Canceled)
}
