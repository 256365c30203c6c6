package store

import "strings"

// nameKey canonicalizes a person name for the (company, name) uniqueness
// constraint. Matching is case-insensitive.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
