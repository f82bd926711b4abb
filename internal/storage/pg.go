package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/receipt"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	title text NOT NULL,
	doc_timestamp timestamp without time zone NOT NULL,
	type text NOT NULL,
	amount double precision NOT NULL,
	currency text NOT NULL,
	details jsonb NOT NULL DEFAULT '[]',
	tags text[] NOT NULL DEFAULT '{}',
	content bytea NOT NULL,
	content_name text NOT NULL,
	external_id bigint NOT NULL,
	linked_external_id bigint,
	added_by text NOT NULL DEFAULT '',
	PRIMARY KEY (title, doc_timestamp, type)
);
CREATE INDEX IF NOT EXISTS receipts_external_id_idx ON receipts (external_id);
CREATE INDEX IF NOT EXISTS receipts_details_idx ON receipts USING gin (details);
`

// PgStore keeps receipts in PostgreSQL. Details are stored as a JSONB
// array of {name, value} objects so the correlation predicate maps onto
// jsonb containment.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore connects and ensures the schema.
func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring receipts schema: %w", err)
	}
	return &PgStore{pool: pool}, nil
}

// Save implements Store. A re-submitted document (same title, timestamp
// and type) is left untouched.
func (s *PgStore) Save(ctx context.Context, content receipt.Content, record receipt.Record, user receipt.User) error {
	details, err := json.Marshal(record.Details)
	if err != nil {
		return fmt.Errorf("marshaling details: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO receipts
			(title, doc_timestamp, type, amount, currency, details, tags, content, content_name, external_id, linked_external_id, added_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (title, doc_timestamp, type) DO NOTHING`,
		record.Title,
		record.Timestamp,
		record.Type,
		record.Amount,
		record.Currency,
		details,
		record.Tags,
		content.Data(),
		content.Name(),
		record.ExternalID,
		record.LinkedExternalID,
		user.Name,
	)
	if err != nil {
		return fmt.Errorf("inserting receipt: %w", err)
	}
	return nil
}

// ContentByExternalID implements Store.
func (s *PgStore) ContentByExternalID(ctx context.Context, externalID int64) (*receipt.Content, error) {
	var name string
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content_name, content FROM receipts WHERE external_id = $1 LIMIT 1`,
		externalID,
	).Scan(&name, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying receipt content: %w", err)
	}
	content := receipt.NewContent(name, data)
	return &content, nil
}

// FindByDetails implements Store. Each clause becomes a jsonb containment
// condition; clauses are OR-ed and the newest document wins.
func (s *PgStore) FindByDetails(ctx context.Context, predicate links.Predicate) (*receipt.Record, error) {
	if len(predicate) == 0 {
		return nil, nil
	}

	conditions := make([]string, 0, len(predicate))
	args := make([]any, 0, len(predicate))
	for i, clause := range predicate {
		pairs, err := json.Marshal(clause)
		if err != nil {
			return nil, fmt.Errorf("marshaling predicate clause: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("details @> $%d::jsonb", i+1))
		args = append(args, string(pairs))
	}

	query := `
		SELECT title, doc_timestamp, type, amount, currency, details, tags, external_id, linked_external_id
		FROM receipts
		WHERE ` + strings.Join(conditions, " OR ") + `
		ORDER BY doc_timestamp DESC
		LIMIT 1`

	var record receipt.Record
	var details []byte
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&record.Title,
		&record.Timestamp,
		&record.Type,
		&record.Amount,
		&record.Currency,
		&details,
		&record.Tags,
		&record.ExternalID,
		&record.LinkedExternalID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying linked receipt: %w", err)
	}
	if err := json.Unmarshal(details, &record.Details); err != nil {
		return nil, fmt.Errorf("unmarshaling details: %w", err)
	}
	return &record, nil
}

// Close releases the connection pool.
func (s *PgStore) Close() {
	s.pool.Close()
}
