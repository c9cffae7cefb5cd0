// internal/adapters/catalog/scryfall.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/ports"
)

// DefaultRequestTimeout bounds a single catalog lookup so a slow upstream
// cannot stall collection writes.
const DefaultRequestTimeout = 5 * time.Second

// Client fetches card metadata from a Scryfall-compatible catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.CatalogSource = (*Client)(nil)

// NewClient creates a catalog client. timeout <= 0 falls back to the default.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(slog.String("component", "catalog_client")),
	}
}

// cardResponse mirrors the subset of the catalog payload we persist.
type cardResponse struct {
	Name      string            `json:"name"`
	SetName   string            `json:"set_name"`
	Rarity    string            `json:"rarity"`
	Finishes  []string          `json:"finishes"`
	Prices    map[string]string `json:"prices"`
	ImageURIs struct {
		Normal string `json:"normal"`
	} `json:"image_uris"`
}

// Lookup fetches the card's catalog entry. A missing card, an upstream
// failure, or a timeout all surface as ErrCatalogUnavailable; the caller
// treats such cards as unresolvable rather than retrying inline.
func (c *Client) Lookup(ctx context.Context, setCode, cardNumber string) (*domain.CatalogSnapshot, error) {
	endpoint := fmt.Sprintf("%s/cards/%s/%s",
		c.baseURL,
		url.PathEscape(strings.ToLower(setCode)),
		url.PathEscape(cardNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog request failed",
			slog.String("card", domain.CardKey(setCode, cardNumber)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: card not in catalog", domain.ErrCatalogUnavailable)
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "catalog returned unexpected status",
			slog.String("card", domain.CardKey(setCode, cardNumber)),
			slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
	}

	var payload cardResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", domain.ErrCatalogUnavailable, err)
	}
	if payload.Name == "" {
		return nil, fmt.Errorf("%w: empty catalog entry", domain.ErrCatalogUnavailable)
	}

	return payload.toSnapshot(), nil
}

func (r *cardResponse) toSnapshot() *domain.CatalogSnapshot {
	snapshot := &domain.CatalogSnapshot{
		Name:            r.Name,
		SetName:         r.SetName,
		Rarity:          r.Rarity,
		ImageURI:        r.ImageURIs.Normal,
		AllowedFinishes: r.Finishes,
		FetchedAt:       time.Now(),
	}

	if len(r.Prices) > 0 {
		snapshot.Prices = make(map[string]decimal.Decimal, len(r.Prices))
		for finish, raw := range r.Prices {
			if raw == "" {
				continue
			}
			price, err := decimal.NewFromString(raw)
			if err != nil {
				continue
			}
			snapshot.Prices[finish] = price
		}
	}

	return snapshot
}
