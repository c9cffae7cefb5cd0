package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/cardvault-be/internal/core/domain"
)

func TestCardKey(t *testing.T) {
	assert.Equal(t, "neo:123", domain.CardKey("NEO", "123"))
	assert.Equal(t, "mh2:261a", domain.CardKey("mh2", "261a"))
}

func TestCardRecord_Key(t *testing.T) {
	rec := &domain.CardRecord{SetCode: "NEO", CardNumber: "123"}
	assert.Equal(t, "neo:123", rec.Key())
}

func TestCardRecord_Finish(t *testing.T) {
	rec := &domain.CardRecord{
		Finishes: []domain.FinishEntry{
			{Finish: "nonfoil", Quantity: 2},
			{Finish: "foil", Quantity: 1},
		},
	}

	entry := rec.Finish("foil")
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Quantity)
	assert.Nil(t, rec.Finish("etched"))
}

func TestCardRecord_Validate(t *testing.T) {
	tests := []struct {
		name      string
		record    *domain.CardRecord
		wantError bool
	}{
		{
			name: "valid_record",
			record: &domain.CardRecord{
				SetCode:    "neo",
				CardNumber: "123",
				Finishes:   []domain.FinishEntry{{Finish: "nonfoil", Quantity: 1}},
			},
		},
		{
			name: "missing_set_code",
			record: &domain.CardRecord{
				CardNumber: "123",
				Finishes:   []domain.FinishEntry{{Finish: "nonfoil", Quantity: 1}},
			},
			wantError: true,
		},
		{
			name: "empty_finishes",
			record: &domain.CardRecord{
				SetCode:    "neo",
				CardNumber: "123",
			},
			wantError: true,
		},
		{
			name: "negative_quantity",
			record: &domain.CardRecord{
				SetCode:    "neo",
				CardNumber: "123",
				Finishes:   []domain.FinishEntry{{Finish: "foil", Quantity: -1}},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCardRecord_PrepareForStorage(t *testing.T) {
	rec := &domain.CardRecord{SetCode: "NEO", CardNumber: "123"}
	rec.PrepareForStorage()

	assert.Equal(t, "neo", rec.SetCode)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.False(t, rec.UpdatedAt.IsZero())

	created := rec.CreatedAt
	rec.PrepareForStorage()
	assert.Equal(t, created, rec.CreatedAt)
}

func TestCatalogSnapshot_AllowsFinish(t *testing.T) {
	var nilSnapshot *domain.CatalogSnapshot
	assert.False(t, nilSnapshot.AllowsFinish("nonfoil"))

	snapshot := &domain.CatalogSnapshot{AllowedFinishes: []string{"nonfoil", "foil"}}
	assert.True(t, snapshot.AllowsFinish("foil"))
	assert.False(t, snapshot.AllowsFinish("etched"))
}
