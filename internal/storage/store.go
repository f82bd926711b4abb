// Package storage persists finished records together with their raw
// payloads and answers the queries the pipeline needs: fetch by external
// id and fetch by correlation predicate.
package storage

import (
	"context"
	"errors"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/receipt"
)

// ErrNotFound is returned when no stored content matches an external id.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract consumed by the pipeline.
type Store interface {
	// Save persists the payload and its record.
	Save(ctx context.Context, content receipt.Content, record receipt.Record, user receipt.User) error

	// ContentByExternalID returns the original payload for a stored
	// record, or ErrNotFound.
	ContentByExternalID(ctx context.Context, externalID int64) (*receipt.Content, error)

	// FindByDetails returns the most recent stored record whose details
	// satisfy the predicate, or nil when none does.
	FindByDetails(ctx context.Context, predicate links.Predicate) (*receipt.Record, error)
}

// detailsSatisfy reports whether the stored detail set contains every pair
// of at least one predicate clause.
func detailsSatisfy(details []receipt.Detail, predicate links.Predicate) bool {
	set := make(map[receipt.Detail]bool, len(details))
	for _, d := range details {
		set[d] = true
	}

	for _, clause := range predicate {
		satisfied := len(clause) > 0
		for _, pair := range clause {
			if !set[pair] {
				satisfied = false
				break
			}
		}
		if satisfied {
			return true
		}
	}
	return false
}
