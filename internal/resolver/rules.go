// Package resolver turns a raw company name into structured CompanyFacts
// by driving the browser boundary to an "About"-style text block and
// scanning it with fixed label rules.
package resolver

import "strings"

// Fact field names used as keys of the extraction result.
const (
	FieldWebsite  = "website"
	FieldIndustry = "industry"
	FieldSize     = "size"
)

// FieldRule describes one label scan: a label line, a shape the next
// line must match, and an optional two-line lookahead constraint. The
// rules are data so site copy changes don't become code branches.
type FieldRule struct {
	Field string `yaml:"field"`
	// Label must equal the trimmed line exactly.
	Label string `yaml:"label"`
	// NextContainsAny requires the following line to contain at least one
	// of these substrings. Empty means any next line is accepted.
	NextContainsAny []string `yaml:"next_contains_any"`
	// LookaheadContains, when set, additionally requires the line after
	// next to contain this substring. This guards against header noise
	// being read as the field value.
	LookaheadContains string `yaml:"lookahead_contains"`
}

// DefaultRules matches the About-section layout of the default target site.
func DefaultRules() []FieldRule {
	return []FieldRule{
		{Field: FieldWebsite, Label: "Website", NextContainsAny: []string{"www", "http"}},
		{Field: FieldIndustry, Label: "Industry", LookaheadContains: "Company size"},
		{Field: FieldSize, Label: "Company size", NextContainsAny: []string{"employees"}},
	}
}

// ExtractFacts scans the about text line by line against the rules.
// Fields without a matching next-line stay absent; there is no fuzzy
// recovery.
func ExtractFacts(aboutText string, rules []FieldRule) map[string]string {
	lines := strings.Split(aboutText, "\n")
	facts := make(map[string]string)

	for i, line := range lines {
		line = strings.TrimSpace(line)
		for _, rule := range rules {
			if line != rule.Label {
				continue
			}
			if i+1 >= len(lines) {
				continue
			}
			next := strings.TrimSpace(lines[i+1])
			if !containsAny(next, rule.NextContainsAny) {
				continue
			}
			if rule.LookaheadContains != "" {
				if i+2 >= len(lines) || !strings.Contains(strings.TrimSpace(lines[i+2]), rule.LookaheadContains) {
					continue
				}
			}
			facts[rule.Field] = next
		}
	}
	return facts
}

func containsAny(s string, subs []string) bool {
	if len(subs) == 0 {
		return true
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
