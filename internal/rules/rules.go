// Package rules loads the tag and link rule configuration. Rules are
// validated and compiled eagerly at load time so that evaluation never
// fails during per-document processing, and the active snapshot can be
// hot-swapped while the process runs.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/tags"
)

// File is the on-disk shape of the rules configuration.
type File struct {
	Tags  map[string]tags.Rule         `json:"tags"`
	Links map[string]map[string]string `json:"links"`
}

// Snapshot is a compiled, immutable rule set. Rules are ordered by name so
// the snapshot is deterministic regardless of map iteration.
type Snapshot struct {
	TagRules   []tags.CompiledRule
	LinkGroups []links.RuleGroup
}

// Parse validates and compiles a raw rules document.
func Parse(data []byte) (*Snapshot, error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}

	snapshot := &Snapshot{
		TagRules:   make([]tags.CompiledRule, 0, len(file.Tags)),
		LinkGroups: make([]links.RuleGroup, 0, len(file.Links)),
	}

	tagNames := make([]string, 0, len(file.Tags))
	for name := range file.Tags {
		tagNames = append(tagNames, name)
	}
	sort.Strings(tagNames)
	for _, name := range tagNames {
		rule, err := tags.Compile(name, file.Tags[name])
		if err != nil {
			return nil, err
		}
		snapshot.TagRules = append(snapshot.TagRules, rule)
	}

	groupNames := make([]string, 0, len(file.Links))
	for name := range file.Links {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)
	for _, name := range groupNames {
		group := links.RuleGroup{Name: name, Fields: file.Links[name]}
		if err := group.Validate(); err != nil {
			return nil, err
		}
		snapshot.LinkGroups = append(snapshot.LinkGroups, group)
	}

	return snapshot, nil
}

// Load reads and parses a rules file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	snapshot, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return snapshot, nil
}
