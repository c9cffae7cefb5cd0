// internal/adapters/db/card_store.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/ports"
)

// cardColumns is the column set shared by every read query.
var cardColumns = []string{
	"card_key", "set_code", "card_number", "finishes",
	"catalog_snapshot", "catalog_expiry", "created_at", "updated_at",
}

// CardStore persists card records in PostgreSQL. Finish entries and the
// catalog snapshot are stored as JSONB so the row layout survives catalog
// schema drift without migrations.
type CardStore struct {
	db     *Database
	qb     squirrel.StatementBuilderType
	logger *slog.Logger
}

var _ ports.CardStore = (*CardStore)(nil)

// NewCardStore creates a new card store
func NewCardStore(db *Database, logger *slog.Logger) *CardStore {
	return &CardStore{
		db:     db,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger.With(slog.String("repository", "cards")),
	}
}

// Save upserts the record under its identity key.
func (s *CardStore) Save(ctx context.Context, record *domain.CardRecord) error {
	finishes, err := json.Marshal(record.Finishes)
	if err != nil {
		return fmt.Errorf("failed to marshal finishes: %w", err)
	}

	var catalog []byte
	if record.Catalog != nil {
		catalog, err = json.Marshal(record.Catalog)
		if err != nil {
			return fmt.Errorf("failed to marshal catalog snapshot: %w", err)
		}
	}

	var expiry *time.Time
	if !record.CatalogExpiry.IsZero() {
		expiry = &record.CatalogExpiry
	}

	query := `
		INSERT INTO cards (
			card_key, set_code, card_number, finishes,
			catalog_snapshot, catalog_expiry, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (card_key) DO UPDATE SET
			finishes = EXCLUDED.finishes,
			catalog_snapshot = EXCLUDED.catalog_snapshot,
			catalog_expiry = EXCLUDED.catalog_expiry,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.Exec(ctx, query,
		record.Key(), record.SetCode, record.CardNumber, finishes,
		catalog, expiry, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save card record: %w", err)
	}

	s.logger.DebugContext(ctx, "card record saved",
		slog.String("card", record.Key()),
		slog.Int("finishes", len(record.Finishes)))

	return nil
}

// FindByKey returns the record for the identity key, or nil when absent.
func (s *CardStore) FindByKey(ctx context.Context, key string) (*domain.CardRecord, error) {
	query, args, err := s.qb.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"card_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	record, err := scanCard(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find card record: %w", err)
	}

	return record, nil
}

// FindAll returns every record ordered by identity key.
func (s *CardStore) FindAll(ctx context.Context) ([]*domain.CardRecord, error) {
	query, args, err := s.qb.Select(cardColumns...).
		From("cards").
		OrderBy("card_key ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query card records: %w", err)
	}
	defer rows.Close()

	var records []*domain.CardRecord
	for rows.Next() {
		record, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// FindExpired returns records whose catalog snapshot is missing or expired
// as of the given instant. Used by the background refresh worker.
func (s *CardStore) FindExpired(ctx context.Context, asOf time.Time) ([]*domain.CardRecord, error) {
	query, args, err := s.qb.Select(cardColumns...).
		From("cards").
		Where(squirrel.Or{
			squirrel.Eq{"catalog_snapshot": nil},
			squirrel.LtOrEq{"catalog_expiry": asOf},
		}).
		OrderBy("card_key ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired records: %w", err)
	}
	defer rows.Close()

	var records []*domain.CardRecord
	for rows.Next() {
		record, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Delete removes the record. Deleting an absent key is not an error at this
// layer; existence checks belong to the service.
func (s *CardStore) Delete(ctx context.Context, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM cards WHERE card_key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete card record: %w", err)
	}

	if tag.RowsAffected() > 0 {
		s.logger.DebugContext(ctx, "card record deleted", slog.String("card", key))
	}

	return nil
}

// Count returns the total number of card records
func (s *CardStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count card records: %w", err)
	}

	return count, nil
}

// scanCard hydrates one record from a row following cardColumns order.
func scanCard(row pgx.Row) (*domain.CardRecord, error) {
	var (
		record   domain.CardRecord
		key      string
		finishes []byte
		catalog  []byte
		expiry   *time.Time
	)

	err := row.Scan(
		&key, &record.SetCode, &record.CardNumber, &finishes,
		&catalog, &expiry, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(finishes, &record.Finishes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal finishes for %s: %w", key, err)
	}

	if len(catalog) > 0 {
		record.Catalog = &domain.CatalogSnapshot{}
		if err := json.Unmarshal(catalog, record.Catalog); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalog snapshot for %s: %w", key, err)
		}
	}

	if expiry != nil {
		record.CatalogExpiry = *expiry
	}

	return &record, nil
}
