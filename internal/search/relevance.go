// Package search finds decision-maker profiles for a company through
// the external search boundary and filters the raw result items down
// to relevant, current-role candidates.
package search

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// formerMarkers flag profiles describing a past role at the company.
// A marker anywhere in the combined title+snippet text rejects the
// item outright, even when a matching role keyword is also present.
var formerMarkers = []string{
	"ex-", "former", "previous", "past", "retired", "formerly",
	"student", "intern", "freelance",
}

// powerPositions is the fallback keyword list accepted in addition to
// the configured decision-maker titles.
var powerPositions = []string{
	"CEO", "Chief Executive Officer", "President", "Chairman", "Founder", "Co-Founder",
	"COO", "Chief Operating Officer", "CFO", "Chief Financial Officer",
	"General Manager", "Managing Director", "Executive Director", "Senior Director",
	"Vice President", "VP", "Senior Vice President", "SVP", "Executive Vice President", "EVP",
	"Chief Technology Officer", "Chief Information Officer", "Chief Data Officer",
	"Chief Strategy Officer", "Chief Product Officer", "Chief Marketing Officer",
	"Chief Revenue Officer", "Chief Sales Officer", "Chief Innovation Officer",
	"Head of", "Global Head", "Regional Head", "Country Head", "Division Head",
}

// nameSeparators split a result title into "Name <sep> Role" segments,
// tried in order.
var nameSeparators = []string{" - ", " | ", " at ", " — "}

// noiseWords are generic strings that sometimes survive extraction in
// place of a real name or role.
var noiseWords = []string{"profile", "search", "linkedin"}

const minNameLen = 3

var linkedInSuffix = regexp.MustCompile(`(?i)\s*-\s*LinkedIn$`)

var foldCaser = cases.Fold()

func fold(s string) string {
	return foldCaser.String(s)
}

// PersonName extracts the person's name from a search result title:
// the text before the first known separator, or the first two tokens
// when no separator is present.
func PersonName(title string) string {
	title = strings.TrimSpace(linkedInSuffix.ReplaceAllString(title, ""))

	for _, sep := range nameSeparators {
		if idx := strings.Index(title, sep); idx >= 0 {
			name := strings.TrimSpace(title[:idx])
			if len(name) >= minNameLen {
				return name
			}
		}
	}

	fields := strings.Fields(title)
	if len(fields) > 2 {
		return strings.Join(fields[:2], " ")
	}
	return strings.Join(fields, " ")
}

// CurrentJobTitle extracts the person's current role from the result
// title or, failing that, the snippet. Both the configured role
// keywords and the power positions are accepted. It returns "" for
// profiles carrying a former-role marker or with no recognizable role
// keyword.
func CurrentJobTitle(title, snippet string, roleKeywords []string) string {
	combined := fold(title + " " + snippet)
	for _, marker := range formerMarkers {
		if strings.Contains(combined, marker) {
			return ""
		}
	}

	keywords := make([]string, 0, len(roleKeywords)+len(powerPositions))
	keywords = append(keywords, roleKeywords...)
	keywords = append(keywords, powerPositions...)

	// Role segments in the title first: "Name - Role" or "Name | Role".
	for _, sep := range []string{" - ", " | "} {
		if !strings.Contains(title, sep) {
			continue
		}
		parts := strings.Split(title, sep)
		for _, part := range parts[1:] {
			if containsAnyKeyword(part, keywords) {
				return strings.TrimSpace(part)
			}
		}
	}

	// Then the first snippet sentence naming a role.
	for _, sentence := range strings.Split(snippet, ".") {
		if containsAnyKeyword(sentence, keywords) {
			return strings.TrimSpace(sentence)
		}
	}
	return ""
}

// IsRelevant reports whether a raw result item looks like a current
// decision-maker at the company who has not been collected yet.
func IsRelevant(title, snippet, companyName string, roleKeywords []string, alreadyFound map[string]struct{}) bool {
	combined := fold(title + " " + snippet)

	for _, marker := range formerMarkers {
		if strings.Contains(combined, marker) {
			return false
		}
	}
	if !strings.Contains(combined, fold(companyName)) {
		return false
	}
	if _, found := alreadyFound[fold(PersonName(title))]; found {
		return false
	}

	for _, kw := range roleKeywords {
		if strings.Contains(combined, fold(kw)) {
			return true
		}
	}
	for _, pos := range powerPositions {
		if strings.Contains(combined, fold(pos)) {
			return true
		}
	}
	return false
}

func containsAnyKeyword(s string, keywords []string) bool {
	folded := fold(s)
	for _, kw := range keywords {
		if strings.Contains(folded, fold(kw)) {
			return true
		}
	}
	return false
}

func isNoise(s string) bool {
	folded := fold(strings.TrimSpace(s))
	for _, w := range noiseWords {
		if folded == w {
			return true
		}
	}
	return false
}
