package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFacts(t *testing.T) {
	about := `Overview
Acme builds widgets for the industrial midwest.
Website
https://www.acme.example
Industry
Industrial Automation
Company size
51-200 employees
Headquarters
Columbus, Ohio`

	facts := ExtractFacts(about, DefaultRules())
	assert.Equal(t, "https://www.acme.example", facts[FieldWebsite])
	assert.Equal(t, "Industrial Automation", facts[FieldIndustry])
	assert.Equal(t, "51-200 employees", facts[FieldSize])
}

func TestExtractFactsWebsiteShape(t *testing.T) {
	tests := []struct {
		name  string
		about string
		want  string
		found bool
	}{
		{
			name:  "www next line",
			about: "Website\nwww.acme.example",
			want:  "www.acme.example",
			found: true,
		},
		{
			name:  "http next line",
			about: "Website\nhttp://acme.example",
			want:  "http://acme.example",
			found: true,
		},
		{
			name:  "next line without url shape is skipped",
			about: "Website\nVisit our careers page",
			found: false,
		},
		{
			name:  "label as trailing line",
			about: "Overview\nWebsite",
			found: false,
		},
		{
			name:  "label embedded in a longer line does not match",
			about: "Our Website policy\nwww.acme.example",
			found: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := ExtractFacts(tt.about, DefaultRules())
			got, ok := facts[FieldWebsite]
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractFactsIndustryLookahead(t *testing.T) {
	// Industry is only trusted when the size header follows two lines down.
	withLookahead := "Industry\nLogistics\nCompany size\n201-500 employees"
	facts := ExtractFacts(withLookahead, DefaultRules())
	assert.Equal(t, "Logistics", facts[FieldIndustry])

	withoutLookahead := "Industry\nLogistics\nHeadquarters\nDenver"
	facts = ExtractFacts(withoutLookahead, DefaultRules())
	_, ok := facts[FieldIndustry]
	assert.False(t, ok)
}

func TestExtractFactsEmptyText(t *testing.T) {
	facts := ExtractFacts("", DefaultRules())
	assert.Empty(t, facts)
}

func TestExtractFactsWhitespaceTolerant(t *testing.T) {
	about := "  Website  \n  www.acme.example  "
	facts := ExtractFacts(about, DefaultRules())
	assert.Equal(t, "www.acme.example", facts[FieldWebsite])
}
