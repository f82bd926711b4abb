package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/receipt"
)

// CompositeStore fans writes out to the database store and the file
// archive; queries go to the database member. One failing member does not
// stop the other from saving.
type CompositeStore struct {
	db    Store
	files Store
}

// NewCompositeStore creates a CompositeStore.
func NewCompositeStore(db, files Store) *CompositeStore {
	return &CompositeStore{db: db, files: files}
}

// Save implements Store.
func (s *CompositeStore) Save(ctx context.Context, content receipt.Content, record receipt.Record, user receipt.User) error {
	dbErr := s.db.Save(ctx, content, record, user)
	if dbErr != nil {
		slog.Error("saving receipt to database", "name", content.Name(), "error", dbErr)
	}
	fileErr := s.files.Save(ctx, content, record, user)
	if fileErr != nil {
		slog.Error("saving receipt to file archive", "name", content.Name(), "error", fileErr)
	}
	return errors.Join(dbErr, fileErr)
}

// ContentByExternalID implements Store.
func (s *CompositeStore) ContentByExternalID(ctx context.Context, externalID int64) (*receipt.Content, error) {
	return s.db.ContentByExternalID(ctx, externalID)
}

// FindByDetails implements Store.
func (s *CompositeStore) FindByDetails(ctx context.Context, predicate links.Predicate) (*receipt.Record, error) {
	return s.db.FindByDetails(ctx, predicate)
}
