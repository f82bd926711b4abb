package tags

import (
	"sort"
	"strings"

	"github.com/ivang/receipt-archive/internal/receipt"
)

// Tag sentinels: a rule with one of these emits the matched field's name
// or value, one tag per matching field.
const (
	TagPropertyName  = "$propertyname"
	TagPropertyValue = "$propertyvalue"
)

// Provider returns the current compiled rule snapshot. It is invoked on
// every resolution so a hot-reloaded configuration takes effect without
// restarting; the resolver never caches it.
type Provider func() []CompiledRule

// Resolver evaluates tag rules against a record's candidate field set.
type Resolver struct {
	rules Provider
}

// NewResolver creates a Resolver over a rule snapshot provider.
func NewResolver(rules Provider) *Resolver {
	return &Resolver{rules: rules}
}

// Resolve returns the tags for a record: space-to-underscore normalized,
// case-insensitively deduplicated, in ascending lexical order. A record
// matching no rules yields an empty set, never an error.
func (r *Resolver) Resolve(record receipt.Record) []string {
	var tags []string
	for _, rule := range r.rules() {
		tags = append(tags, rule.apply(record)...)
	}
	return normalizeTags(tags)
}

func (r CompiledRule) apply(record receipt.Record) []string {
	var matched []receipt.Detail
	for _, property := range record.Properties() {
		if r.propertyName.matches(property.Name) && r.propertyValue.matches(property.Value) {
			matched = append(matched, property)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	switch {
	case strings.EqualFold(r.tag, TagPropertyName):
		tags := make([]string, len(matched))
		for i, property := range matched {
			tags[i] = property.Name
		}
		return tags
	case strings.EqualFold(r.tag, TagPropertyValue):
		tags := make([]string, len(matched))
		for i, property := range matched {
			tags[i] = property.Value
		}
		return tags
	default:
		return []string{r.tag}
	}
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized = append(normalized, strings.ReplaceAll(tag, " ", "_"))
	}
	sort.Strings(normalized)

	seen := make(map[string]bool, len(normalized))
	deduped := normalized[:0]
	for _, tag := range normalized {
		folded := strings.ToLower(tag)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		deduped = append(deduped, tag)
	}
	return deduped
}
