package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/receipt"
)

// FileStore archives raw payloads on the local filesystem under
// <root>/<YYYY-MM>/<name>, bucketed by the record's document date. It is a
// write-only archive: lookups always answer not-found.
type FileStore struct {
	root string
}

// NewFileStore creates the archive root if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, content receipt.Content, record receipt.Record, user receipt.User) error {
	monthDir := filepath.Join(s.root, fmt.Sprintf("%04d-%02d", record.Timestamp.Year(), record.Timestamp.Month()))
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		return fmt.Errorf("creating month directory: %w", err)
	}

	path := filepath.Join(monthDir, sanitizeFilename(content.Name()))
	if err := os.WriteFile(path, content.Data(), 0o644); err != nil {
		return fmt.Errorf("writing archive file: %w", err)
	}
	return nil
}

// ContentByExternalID implements Store; the file archive keeps no index.
func (s *FileStore) ContentByExternalID(ctx context.Context, externalID int64) (*receipt.Content, error) {
	return nil, ErrNotFound
}

// FindByDetails implements Store; the file archive keeps no index.
func (s *FileStore) FindByDetails(ctx context.Context, predicate links.Predicate) (*receipt.Record, error) {
	return nil, nil
}

// sanitizeFilename replaces characters that are invalid in filenames. The
// archive name carries the document timestamp, so colons are expected.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}
