package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsChallengeText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"captcha page", "Please complete this CAPTCHA to continue", true},
		{"security verification", "Let's do a quick security verification", true},
		{"normal about page", "Website\nhttps://www.acme.com\nIndustry\nSoftware Development", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsChallengeText(tc.text))
		})
	}
}
