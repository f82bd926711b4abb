// Package links correlates a freshly extracted record with previously
// stored ones. Declarative rule-groups map fields of the new record onto
// detail names of stored records; the resulting predicate is executed by a
// store-provided lookup capability.
package links

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ivang/receipt-archive/internal/receipt"
)

// RuleGroup maps source detail names (as stored) to target field names
// looked up on the new record. A group only contributes a predicate clause
// when every one of its targets resolves.
type RuleGroup struct {
	Name   string
	Fields map[string]string
}

// Validate rejects malformed groups at configuration load time.
func (g RuleGroup) Validate() error {
	if len(g.Fields) == 0 {
		return fmt.Errorf("link rule group %q: at least one field mapping is required", g.Name)
	}
	for source, target := range g.Fields {
		if strings.TrimSpace(source) == "" || strings.TrimSpace(target) == "" {
			return fmt.Errorf("link rule group %q: field names must not be blank", g.Name)
		}
	}
	return nil
}

// Clause is one conjunction: a stored record matches when its details
// contain every pair as a subset.
type Clause []receipt.Detail

// Predicate is the OR of its clauses.
type Predicate []Clause

// Lookup is the store capability that executes a predicate, returning the
// matching stored record (most recent first where the store supports
// ordering) or nil.
type Lookup func(ctx context.Context, predicate Predicate) (*receipt.Record, error)

// Provider returns the current rule-group snapshot; re-read on every call,
// never cached.
type Provider func() []RuleGroup

// Resolver builds correlation predicates from rule-groups.
type Resolver struct {
	groups Provider
}

// NewResolver creates a Resolver over a rule-group snapshot provider.
func NewResolver(groups Provider) *Resolver {
	return &Resolver{groups: groups}
}

// BuildPredicate resolves every rule-group against the record's candidate
// fields. A group with any unresolvable target is discarded whole; partial
// coverage never contributes a partial clause. Clause pairs are ordered by
// source name so equal inputs produce equal predicates.
func (r *Resolver) BuildPredicate(record receipt.Record) Predicate {
	fields := make(map[string]string)
	for _, property := range record.Properties() {
		if _, ok := fields[property.Name]; !ok {
			fields[property.Name] = property.Value
		}
	}

	var predicate Predicate
	for _, group := range r.groups() {
		sources := make([]string, 0, len(group.Fields))
		for source := range group.Fields {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		clause := make(Clause, 0, len(sources))
		for _, source := range sources {
			value, ok := fields[group.Fields[source]]
			if !ok {
				clause = nil
				break
			}
			clause = append(clause, receipt.Detail{Name: source, Value: value})
		}
		if len(clause) > 0 {
			predicate = append(predicate, clause)
		}
	}
	return predicate
}

// FindLinked returns the stored record correlated with the new one, or nil.
// With no surviving rule-groups the lookup is never invoked; a lookup
// failure is logged and treated as "no link", never as a pipeline failure.
func (r *Resolver) FindLinked(ctx context.Context, record receipt.Record, lookup Lookup) *receipt.Record {
	predicate := r.BuildPredicate(record)
	if len(predicate) == 0 {
		return nil
	}

	linked, err := lookup(ctx, predicate)
	if err != nil {
		slog.Error("looking up linked receipt", "title", record.Title, "error", err)
		return nil
	}
	return linked
}
