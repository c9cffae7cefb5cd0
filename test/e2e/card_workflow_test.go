//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cardvault/cardvault-be/internal/adapters/catalog"
	"github.com/cardvault/cardvault-be/internal/adapters/db"
	redis_a "github.com/cardvault/cardvault-be/internal/adapters/redis_adapter"
	"github.com/cardvault/cardvault-be/internal/core/services"
	"github.com/cardvault/cardvault-be/internal/handlers"
	"github.com/cardvault/cardvault-be/internal/handlers/middleware"
	"github.com/cardvault/cardvault-be/internal/pkg/config"
	"github.com/cardvault/cardvault-be/test/helpers"
)

const e2eSigningKey = "e2e-signing-key-for-card-workflow"

type CardE2ESuite struct {
	suite.Suite
	server        *httptest.Server
	catalogServer *httptest.Server
	client        *http.Client
	baseURL       string
	token         string
	testDB        *helpers.TestDB
	testRedis     *helpers.TestRedis
}

func (s *CardE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	os.Setenv("TOKEN_SECRET", e2eSigningKey)
	s.token = middleware.SignToken(e2eSigningKey, "e2e-collector")

	s.catalogServer = s.startCatalogServer()
	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *CardE2ESuite) TearDownSuite() {
	s.server.Close()
	s.catalogServer.Close()
}

func (s *CardE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
}

// startCatalogServer fakes the upstream catalog. Cards in the "tst" set
// resolve; everything else is a 404.
func (s *CardE2ESuite) startCatalogServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/tst/101" && r.URL.Path != "/cards/tst/102" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"details":"card not found"}`)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"name": "Lightning Bolt",
			"set_name": "Test Set",
			"rarity": "common",
			"finishes": ["nonfoil", "foil"],
			"prices": {"nonfoil": "1.25", "foil": "4.80"},
			"image_uris": {"normal": "https://catalog.test/cards/tst/101.jpg"}
		}`)
	}))
}

func (s *CardE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()

	cardStore := db.NewCardStore(s.testDB.Database, logger)
	catalogClient := catalog.NewClient(s.catalogServer.URL, 5*time.Second, logger)
	catalogCache := services.NewCatalogCache(catalogClient, 24*time.Hour, logger)
	collection := services.NewCollectionService(cardStore, catalogCache, logger)
	batch := services.NewBatchProcessor(collection, logger)
	cache := redis_a.NewCache(s.testRedis.Client, time.Minute, logger)

	cardHandler := handlers.NewCardHandler(collection, batch, cache, logger)
	auth := middleware.NewAuthenticator(config.NewEnvSecretsManager(), "TOKEN_SECRET", logger)

	mux := http.NewServeMux()
	authed := auth.Authenticate

	mux.HandleFunc("GET /api/v1/cards", cardHandler.ListCards)
	mux.HandleFunc("GET /api/v1/cards/{setCode}/{cardNumber}", cardHandler.GetCard)
	mux.Handle("POST /api/v1/cards/{setCode}/{cardNumber}", authed(http.HandlerFunc(cardHandler.CreateCard)))
	mux.Handle("PATCH /api/v1/cards/{setCode}/{cardNumber}", authed(http.HandlerFunc(cardHandler.UpdateCard)))
	mux.Handle("DELETE /api/v1/cards/{setCode}/{cardNumber}", authed(http.HandlerFunc(cardHandler.DeleteCard)))
	mux.Handle("POST /api/v1/cards/batch", authed(http.HandlerFunc(cardHandler.BatchCards)))

	var handler http.Handler = mux
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return httptest.NewServer(handler)
}

func (s *CardE2ESuite) TestCompleteCardWorkflow() {
	// 1. Create a card with two copies
	resp := s.makeRequest("POST", "/cards/TST/101", map[string]interface{}{
		"finishes": []map[string]interface{}{
			{"finish": "nonfoil", "amount": 2, "note": "starter box"},
		},
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	s.decodeResponse(resp, &created)
	s.Equal("tst", created["set_code"])
	s.Equal("Lightning Bolt", created["catalog"].(map[string]interface{})["name"])

	// 2. Increment the same card and add a foil copy
	resp = s.makeRequest("POST", "/cards/tst/101", map[string]interface{}{
		"finishes": []map[string]interface{}{
			{"finish": "nonfoil", "amount": 1},
			{"finish": "foil", "amount": 1, "note": "trade"},
		},
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var incremented map[string]interface{}
	s.decodeResponse(resp, &incremented)
	finishes := incremented["finishes"].([]interface{})
	s.Len(finishes, 2)
	s.Equal(float64(3), finishes[0].(map[string]interface{})["quantity"])

	// 3. Read it back
	resp = s.makeRequest("GET", "/cards/tst/101", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var fetched map[string]interface{}
	s.decodeResponse(resp, &fetched)
	s.Equal("101", fetched["card_number"])

	// 4. Absolute update removes the nonfoil copies
	resp = s.makeRequest("PATCH", "/cards/tst/101", map[string]interface{}{
		"finishes": []map[string]interface{}{
			{"finish": "nonfoil", "amount": 0},
		},
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var updated map[string]interface{}
	s.decodeResponse(resp, &updated)
	s.Len(updated["finishes"].([]interface{}), 1)

	// 5. Listing contains the card keyed by identity
	resp = s.makeRequest("GET", "/cards", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var listing map[string]interface{}
	s.decodeResponse(resp, &listing)
	s.Contains(listing, "tst:101")

	// 6. Zeroing the last finish deletes the record
	resp = s.makeRequest("PATCH", "/cards/tst/101", map[string]interface{}{
		"finishes": []map[string]interface{}{
			{"finish": "foil", "amount": 0},
		},
	})
	s.Equal(http.StatusNoContent, resp.StatusCode)

	// 7. The card is gone
	resp = s.makeRequest("GET", "/cards/tst/101", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// 8. Deleting again reports absence
	resp = s.makeRequest("DELETE", "/cards/tst/101", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *CardE2ESuite) TestBatchWorkflow() {
	resp := s.makeRequest("POST", "/cards/batch", map[string]interface{}{
		"operations": []map[string]interface{}{
			{
				"op": "create", "set_code": "tst", "card_number": "101",
				"finishes": []map[string]interface{}{{"finish": "nonfoil", "amount": 2}},
			},
			{
				"op": "enhance", "set_code": "tst", "card_number": "101",
			},
			{
				"op": "create", "set_code": "tst", "card_number": "102",
				"finishes": []map[string]interface{}{{"finish": "foil", "amount": 1}},
			},
			{
				"op": "delete", "set_code": "tst", "card_number": "999",
			},
		},
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var batchResp map[string]interface{}
	s.decodeResponse(resp, &batchResp)
	results := batchResp["results"].([]interface{})
	s.Len(results, 4)

	statuses := make([]float64, 0, 4)
	for _, r := range results {
		statuses = append(statuses, r.(map[string]interface{})["status"].(float64))
	}
	s.Equal([]float64{201, 400, 201, 404}, statuses)

	// The failed operations did not disturb the successful ones
	resp = s.makeRequest("GET", "/cards", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var listing map[string]interface{}
	s.decodeResponse(resp, &listing)
	s.Len(listing, 2)
}

func (s *CardE2ESuite) TestValidationRejectsWholeSubmission() {
	// One bad change in the set means nothing is applied
	resp := s.makeRequest("POST", "/cards/tst/101", map[string]interface{}{
		"finishes": []map[string]interface{}{
			{"finish": "nonfoil", "amount": 2},
			{"finish": "etched", "amount": 1},
		},
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", "/cards/tst/101", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *CardE2ESuite) TestUnknownCatalogCardRejected() {
	resp := s.makeRequest("POST", "/cards/zzz/1", map[string]interface{}{
		"finishes": []map[string]interface{}{
			{"finish": "nonfoil", "amount": 1},
		},
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *CardE2ESuite) TestMutationsRequireToken() {
	req, err := http.NewRequest("POST", s.baseURL+"/cards/tst/101",
		bytes.NewReader([]byte(`{"finishes":[{"finish":"nonfoil","amount":1}]}`)))
	s.NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	s.NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

// Helper methods

func (s *CardE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *CardE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestCardE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(CardE2ESuite))
}
