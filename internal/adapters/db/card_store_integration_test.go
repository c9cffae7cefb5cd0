//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cardvault/cardvault-be/internal/adapters/db"
	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/test/helpers"
)

type CardStoreSuite struct {
	suite.Suite
	testDB *helpers.TestDB
	store  *db.CardStore
	ctx    context.Context
}

func (s *CardStoreSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.store = db.NewCardStore(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *CardStoreSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *CardStoreSuite) TestSaveAndFindByKey() {
	record := helpers.CreateTestCardRecord()

	err := s.store.Save(s.ctx, record)
	s.NoError(err)

	found, err := s.store.FindByKey(s.ctx, "tst:101")
	s.NoError(err)
	s.Require().NotNil(found)
	helpers.CompareCardRecords(s.T(), record, found)
	s.WithinDuration(record.CatalogExpiry, found.CatalogExpiry, time.Second)
}

func (s *CardStoreSuite) TestSaveUpserts() {
	record := helpers.CreateTestCardRecord()
	s.NoError(s.store.Save(s.ctx, record))

	record.Finishes = []domain.FinishEntry{
		{Finish: "nonfoil", Quantity: 5},
		{Finish: "foil", Quantity: 1, Notes: "2026-03-14 12:00 traded in"},
	}
	record.UpdatedAt = time.Now()
	s.NoError(s.store.Save(s.ctx, record))

	found, err := s.store.FindByKey(s.ctx, record.Key())
	s.NoError(err)
	s.Require().NotNil(found)
	s.Len(found.Finishes, 2)
	s.Equal(5, found.Finish("nonfoil").Quantity)
	s.Equal("2026-03-14 12:00 traded in", found.Finish("foil").Notes)

	count, err := s.store.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(1), count)
}

func (s *CardStoreSuite) TestFindByKeyReturnsNilWhenAbsent() {
	found, err := s.store.FindByKey(s.ctx, "tst:404")
	s.NoError(err)
	s.Nil(found)
}

func (s *CardStoreSuite) TestSaveWithoutSnapshot() {
	record := helpers.CreateTestCardRecord(func(r *domain.CardRecord) {
		r.Catalog = nil
		r.CatalogExpiry = time.Time{}
	})
	s.NoError(s.store.Save(s.ctx, record))

	found, err := s.store.FindByKey(s.ctx, record.Key())
	s.NoError(err)
	s.Require().NotNil(found)
	s.Nil(found.Catalog)
	s.True(found.CatalogExpiry.IsZero())
}

func (s *CardStoreSuite) TestFindAllOrderedByKey() {
	records := helpers.CreateTestCardRecords(3)
	for _, r := range records {
		s.NoError(s.store.Save(s.ctx, r))
	}

	all, err := s.store.FindAll(s.ctx)
	s.NoError(err)
	s.Require().Len(all, 3)
	s.Equal("tst:100", all[0].Key())
	s.Equal("tst:101", all[1].Key())
	s.Equal("tst:102", all[2].Key())
}

func (s *CardStoreSuite) TestFindExpired() {
	fresh := helpers.CreateTestCardRecord(func(r *domain.CardRecord) {
		r.CardNumber = "100"
		r.CatalogExpiry = time.Now().Add(time.Hour)
	})
	stale := helpers.CreateTestCardRecord(func(r *domain.CardRecord) {
		r.CardNumber = "101"
		r.CatalogExpiry = time.Now().Add(-time.Hour)
	})
	missing := helpers.CreateTestCardRecord(func(r *domain.CardRecord) {
		r.CardNumber = "102"
		r.Catalog = nil
		r.CatalogExpiry = time.Time{}
	})

	for _, r := range []*domain.CardRecord{fresh, stale, missing} {
		s.NoError(s.store.Save(s.ctx, r))
	}

	expired, err := s.store.FindExpired(s.ctx, time.Now())
	s.NoError(err)
	s.Require().Len(expired, 2)
	s.Equal("tst:101", expired[0].Key())
	s.Equal("tst:102", expired[1].Key())
}

func (s *CardStoreSuite) TestDelete() {
	record := helpers.CreateTestCardRecord()
	s.NoError(s.store.Save(s.ctx, record))

	s.NoError(s.store.Delete(s.ctx, record.Key()))

	found, err := s.store.FindByKey(s.ctx, record.Key())
	s.NoError(err)
	s.Nil(found)

	// Deleting an absent key is not an error at this layer
	s.NoError(s.store.Delete(s.ctx, record.Key()))
}

func (s *CardStoreSuite) TestDatabaseHealth() {
	health := s.testDB.Database.Health(s.ctx)
	s.Equal("healthy", health["status"])
	s.NotNil(health["total_connections"])
}

func (s *CardStoreSuite) TestMigrationStatus() {
	migrator, err := db.NewMigrator(helpers.MigrationConfigFor(s.testDB.Config), helpers.TestLogger())
	s.Require().NoError(err)
	defer migrator.Close()

	version, dirty, err := migrator.Version(s.ctx)
	s.NoError(err)
	s.False(dirty)
	s.NotZero(version)

	status, err := migrator.Status(s.ctx)
	s.Require().NoError(err)
	s.Equal(version, status.CurrentVersion)
	s.False(status.IsDirty)
	s.Require().NotEmpty(status.Applied)
	s.Equal(version, status.Applied[len(status.Applied)-1].Version)
}

func TestCardStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CardStoreSuite))
}
