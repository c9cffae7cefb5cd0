package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/cardvault-be/internal/adapters/catalog"
	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/test/helpers"
)

func TestClient_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("parses_catalog_entry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/cards/tst/101", r.URL.Path)
			assert.Equal(t, http.MethodGet, r.Method)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"name": "Lightning Bolt",
				"set_name": "Test Set",
				"rarity": "common",
				"finishes": ["nonfoil", "foil"],
				"prices": {"nonfoil": "1.25", "foil": "4.80", "etched": null},
				"image_uris": {"normal": "https://catalog.test/cards/tst/101.jpg"}
			}`))
		}))
		defer server.Close()

		client := catalog.NewClient(server.URL, time.Second, helpers.TestLogger())
		snapshot, err := client.Lookup(ctx, "TST", "101")

		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, "Lightning Bolt", snapshot.Name)
		assert.Equal(t, "Test Set", snapshot.SetName)
		assert.Equal(t, "common", snapshot.Rarity)
		assert.Equal(t, []string{"nonfoil", "foil"}, snapshot.AllowedFinishes)
		assert.Equal(t, "https://catalog.test/cards/tst/101.jpg", snapshot.ImageURI)
		assert.False(t, snapshot.FetchedAt.IsZero())

		require.Len(t, snapshot.Prices, 2)
		assert.True(t, decimal.NewFromFloat(1.25).Equal(snapshot.Prices["nonfoil"]))
		assert.True(t, decimal.NewFromFloat(4.80).Equal(snapshot.Prices["foil"]))
	})

	t.Run("missing_card_maps_to_catalog_unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"object":"error","code":"not_found"}`, http.StatusNotFound)
		}))
		defer server.Close()

		client := catalog.NewClient(server.URL, time.Second, helpers.TestLogger())
		_, err := client.Lookup(ctx, "tst", "999")
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	})

	t.Run("upstream_error_maps_to_catalog_unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer server.Close()

		client := catalog.NewClient(server.URL, time.Second, helpers.TestLogger())
		_, err := client.Lookup(ctx, "tst", "101")
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	})

	t.Run("timeout_maps_to_catalog_unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := catalog.NewClient(server.URL, 50*time.Millisecond, helpers.TestLogger())
		_, err := client.Lookup(ctx, "tst", "101")
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	})

	t.Run("malformed_payload_maps_to_catalog_unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		client := catalog.NewClient(server.URL, time.Second, helpers.TestLogger())
		_, err := client.Lookup(ctx, "tst", "101")
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	})

	t.Run("set_code_is_lowercased_in_request_path", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{"name": "Test Card", "finishes": ["nonfoil"]}`))
		}))
		defer server.Close()

		client := catalog.NewClient(server.URL, time.Second, helpers.TestLogger())
		_, err := client.Lookup(ctx, "NEO", "42")
		require.NoError(t, err)
		assert.Equal(t, "/cards/neo/42", gotPath)
	})
}
