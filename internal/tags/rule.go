// Package tags derives categorization tags from a record's field set using
// declarative, externally configured rules.
package tags

import (
	"fmt"
	"regexp"
	"strings"
)

// Comparison selects the case-sensitivity mode of a Match.
type Comparison string

const (
	// ComparisonIgnoreCase is the default mode.
	ComparisonIgnoreCase Comparison = "IgnoreCase"
	// ComparisonCaseSensitive matches exactly as written.
	ComparisonCaseSensitive Comparison = "CaseSensitive"
)

// Match constrains one axis (a field name or a field value) of a tag rule.
// At most one of Equals, Contains and Pattern may be set; none of them
// means the axis matches anything. The candidate string is stripped of
// line breaks and/or spaces first when the corresponding flags are set;
// the rule operand is assumed to be pre-normalized by the author.
type Match struct {
	Equals            string     `json:"equals,omitempty"`
	Contains          string     `json:"contains,omitempty"`
	Pattern           string     `json:"match,omitempty"`
	IgnoreLineBreaks  bool       `json:"ignoreLineBreaks,omitempty"`
	IgnoreWhiteSpaces bool       `json:"ignoreWhiteSpaces,omitempty"`
	Comparison        Comparison `json:"comparison,omitempty"`
}

// Rule is one declarative tag rule. Tag is either a literal, or one of the
// sentinels $propertyname / $propertyvalue which emit the matched field's
// name or value instead.
type Rule struct {
	Tag           string `json:"tag"`
	PropertyName  *Match `json:"propertyName,omitempty"`
	PropertyValue *Match `json:"propertyValue,omitempty"`
}

// matcher is the validated, pre-compiled form of a Match. A nil matcher
// matches anything.
type matcher struct {
	equals            string
	contains          string
	pattern           *regexp.Regexp
	ignoreLineBreaks  bool
	ignoreWhiteSpaces bool
	caseSensitive     bool
}

func compileMatch(m *Match) (*matcher, error) {
	if m == nil {
		return nil, nil
	}

	operands := 0
	for _, op := range []string{m.Equals, m.Contains, m.Pattern} {
		if op != "" {
			operands++
		}
	}
	if operands > 1 {
		return nil, fmt.Errorf("at most one of equals, contains and match may be set")
	}

	var caseSensitive bool
	switch m.Comparison {
	case "", ComparisonIgnoreCase:
		caseSensitive = false
	case ComparisonCaseSensitive:
		caseSensitive = true
	default:
		return nil, fmt.Errorf("unsupported comparison mode %q", m.Comparison)
	}

	c := &matcher{
		equals:            m.Equals,
		contains:          m.Contains,
		ignoreLineBreaks:  m.IgnoreLineBreaks,
		ignoreWhiteSpaces: m.IgnoreWhiteSpaces,
		caseSensitive:     caseSensitive,
	}

	if m.Pattern != "" {
		expr := m.Pattern
		if !caseSensitive {
			expr = "(?i)" + expr
		}
		pattern, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling match pattern: %w", err)
		}
		c.pattern = pattern
	}

	return c, nil
}

func (m *matcher) matches(value string) bool {
	if m == nil {
		return true
	}

	if m.ignoreLineBreaks {
		value = strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(value)
	}
	if m.ignoreWhiteSpaces {
		value = strings.ReplaceAll(value, " ", "")
	}

	switch {
	case m.equals != "":
		if m.caseSensitive {
			return value == m.equals
		}
		return strings.EqualFold(value, m.equals)
	case m.contains != "":
		if m.caseSensitive {
			return strings.Contains(value, m.contains)
		}
		return strings.Contains(strings.ToLower(value), strings.ToLower(m.contains))
	case m.pattern != nil:
		return m.pattern.MatchString(value)
	}

	return true
}

// CompiledRule is a Rule validated and compiled at configuration load time.
// Evaluation of a compiled rule cannot fail.
type CompiledRule struct {
	name          string
	tag           string
	propertyName  *matcher
	propertyValue *matcher
}

// Compile validates a rule and pre-compiles its matchers. name identifies
// the rule in error messages.
func Compile(name string, rule Rule) (CompiledRule, error) {
	if strings.TrimSpace(rule.Tag) == "" {
		return CompiledRule{}, fmt.Errorf("tag rule %q: tag is required", name)
	}

	propertyName, err := compileMatch(rule.PropertyName)
	if err != nil {
		return CompiledRule{}, fmt.Errorf("tag rule %q: propertyName: %w", name, err)
	}
	propertyValue, err := compileMatch(rule.PropertyValue)
	if err != nil {
		return CompiledRule{}, fmt.Errorf("tag rule %q: propertyValue: %w", name, err)
	}

	return CompiledRule{
		name:          name,
		tag:           rule.Tag,
		propertyName:  propertyName,
		propertyValue: propertyValue,
	}, nil
}

// Name returns the configured rule name.
func (r CompiledRule) Name() string {
	return r.name
}
