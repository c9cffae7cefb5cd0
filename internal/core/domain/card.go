// internal/core/domain/card.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FinishEntry tracks the owned quantity of one physical finish of a card.
// Finish names are unique within a record.
type FinishEntry struct {
	Finish   string `json:"finish"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// PendingChange is a caller-submitted delta for one finish. Amount semantics
// depend on the merge policy: increment for additive, absolute-set for
// absolute. The optional note is appended to the entry's notes log.
type PendingChange struct {
	Finish string `json:"finish"`
	Amount int    `json:"amount"`
	Note   string `json:"note,omitempty"`
}

// CatalogSnapshot is the read-only per-card metadata fetched from the
// external catalog. Immutable once fetched.
type CatalogSnapshot struct {
	Name            string                     `json:"name"`
	SetName         string                     `json:"set_name,omitempty"`
	Rarity          string                     `json:"rarity,omitempty"`
	ImageURI        string                     `json:"image_uri,omitempty"`
	AllowedFinishes []string                   `json:"allowed_finishes"`
	Prices          map[string]decimal.Decimal `json:"prices,omitempty"`
	FetchedAt       time.Time                  `json:"fetched_at"`
}

// AllowsFinish reports whether the catalog lists the finish as valid for
// this card.
func (s *CatalogSnapshot) AllowsFinish(finish string) bool {
	if s == nil {
		return false
	}
	for _, f := range s.AllowedFinishes {
		if f == finish {
			return true
		}
	}
	return false
}

// CardRecord is one tracked card, identified by set code and collector
// number. The catalog snapshot and its expiry are persisted alongside the
// finishes but refreshed independently.
type CardRecord struct {
	SetCode       string           `json:"set_code"`
	CardNumber    string           `json:"card_number"`
	Finishes      []FinishEntry    `json:"finishes"`
	Catalog       *CatalogSnapshot `json:"catalog,omitempty"`
	CatalogExpiry time.Time        `json:"catalog_expiry,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CardKey builds the identity key for a (set code, card number) pair.
// Set codes are case-insensitive and stored lowercase.
func CardKey(setCode, cardNumber string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(setCode), cardNumber)
}

// Key returns the record's identity key.
func (r *CardRecord) Key() string {
	return CardKey(r.SetCode, r.CardNumber)
}

// Finish returns the entry for the named finish, or nil.
func (r *CardRecord) Finish(name string) *FinishEntry {
	for i := range r.Finishes {
		if r.Finishes[i].Finish == name {
			return &r.Finishes[i]
		}
	}
	return nil
}

// IsEmpty reports whether the record holds no finish entries. Empty records
// are deleted, never persisted.
func (r *CardRecord) IsEmpty() bool {
	return len(r.Finishes) == 0
}

// TotalQuantity sums owned copies across all finishes.
func (r *CardRecord) TotalQuantity() int {
	total := 0
	for _, f := range r.Finishes {
		total += f.Quantity
	}
	return total
}

// Validate performs domain validation on the card record.
func (r *CardRecord) Validate() error {
	if r.SetCode == "" {
		return &ValidationError{Field: "set_code", Reason: "set_code is required"}
	}
	if r.CardNumber == "" {
		return &ValidationError{Field: "card_number", Reason: "card_number is required"}
	}
	if r.IsEmpty() {
		return &ValidationError{Field: "finishes", Reason: "record must hold at least one finish"}
	}
	for _, f := range r.Finishes {
		if f.Quantity < 0 {
			return NewInvalidQuantityError(f.Finish, f.Quantity)
		}
	}
	return nil
}

// PrepareForStorage normalizes the record and stamps timestamps before it is
// written to the store.
func (r *CardRecord) PrepareForStorage() {
	r.SetCode = strings.ToLower(r.SetCode)

	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}
