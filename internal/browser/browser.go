// Package browser is the browser-automation boundary for company
// resolution. The pipeline depends only on Navigator; the chromedp
// implementation is one interchangeable adapter.
package browser

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrBotChallenge signals that the session hit a bot challenge and
// needs human intervention before the unit of work can be retried.
var ErrBotChallenge = eris.New("browser: bot challenge detected")

// Navigator drives a browser session to a company's "About"-style page
// and returns its free text. Implementations own all navigation
// mechanics; callers only see extracted text or a failure.
type Navigator interface {
	CompanyAboutText(ctx context.Context, companyName string) (string, error)
}

// challengeMarkers are substrings that indicate a bot challenge page
// rather than real content.
var challengeMarkers = []string{
	"captcha",
	"security verification",
	"verify you are a human",
	"unusual activity",
	"prove you're not a robot",
}

// IsChallengeText reports whether rendered page text looks like a bot
// challenge instead of company content.
func IsChallengeText(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range challengeMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
