// Package archive wires the extraction pipeline to persistence and
// correlation, giving the transport a single surface to call.
package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/receipt"
	"github.com/ivang/receipt-archive/internal/storage"
)

// Parser is the pipeline front door (see receipt.Parser).
type Parser interface {
	Parse(ctx context.Context, content receipt.Content) receipt.Response
}

// Outcome is a parse result together with the correlated prior record, if
// any was found.
type Outcome struct {
	receipt.Response
	Linked *receipt.Record
}

// Service orchestrates parse, correlation and persistence.
type Service struct {
	parser Parser
	store  storage.Store
	links  *links.Resolver
}

// NewService creates a Service.
func NewService(parser Parser, store storage.Store, links *links.Resolver) *Service {
	return &Service{parser: parser, store: store, links: links}
}

// Process runs one document through the pipeline and, on success, looks up
// a correlated prior record. Correlation failures are downgraded inside
// the link resolver: a document is still processed even when linking is
// unavailable.
func (s *Service) Process(ctx context.Context, content receipt.Content) Outcome {
	response := s.parser.Parse(ctx, content)
	if !response.Success() {
		return Outcome{Response: response}
	}

	linked := s.links.FindLinked(ctx, *response.Record, s.store.FindByDetails)
	if linked != nil {
		slog.Info("found linked receipt",
			"title", response.Record.Title,
			"linked_external_id", linked.ExternalID,
		)
	}
	return Outcome{Response: response, Linked: linked}
}

// Store persists a finished record with its payload.
func (s *Service) Store(ctx context.Context, content receipt.Content, record receipt.Record, user receipt.User) error {
	if err := s.store.Save(ctx, content, record, user); err != nil {
		return fmt.Errorf("saving %q: %w", content.Name(), err)
	}
	return nil
}

// SourceByExternalID fetches the original payload of a stored record.
func (s *Service) SourceByExternalID(ctx context.Context, externalID int64) (*receipt.Content, error) {
	return s.store.ContentByExternalID(ctx, externalID)
}
