// Package extraction turns per-page document text into structured records.
// One extractor exists per known document layout; a registry tries them in
// a fixed priority order and returns the first complete match.
package extraction

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ivang/receipt-archive/internal/receipt"
)

// Extractor is the per-layout extraction contract. Implementations are pure
// functions of the page text: no I/O, deterministic, and "no match" is the
// only failure signal.
type Extractor interface {
	TryExtract(pages []string) (receipt.Record, bool)
}

// Registry tries extractors in priority order and stops at the first one
// that produces a complete record. Order is the tie-break when two layouts
// could both match the same text.
type Registry struct {
	extractors []Extractor
}

// NewRegistry builds the default registry: bank transfer first, then the
// two utility notice forms. now feeds the layouts that stamp extraction
// time; nil means time.Now.
func NewRegistry(now func() time.Time) *Registry {
	return NewRegistryWith(
		BankTransfer{},
		UtilityNotice{},
		NewUtilityNotice2(now),
	)
}

// NewRegistryWith builds a registry over an explicit extractor order.
func NewRegistryWith(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// TryExtract returns the first complete match. A partial record or a panic
// inside an extractor counts as that extractor's no-match; the remaining
// extractors are still tried.
func (r *Registry) TryExtract(pages []string) (receipt.Record, bool) {
	for _, e := range r.extractors {
		record, ok := tryOne(e, pages)
		if ok && record.Complete() {
			return record, true
		}
	}
	return receipt.Record{}, false
}

func tryOne(e Extractor, pages []string) (record receipt.Record, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("extractor failed", "extractor", fmt.Sprintf("%T", e), "panic", p)
			record, ok = receipt.Record{}, false
		}
	}()
	return e.TryExtract(pages)
}
