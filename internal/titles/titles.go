// Package titles maps a company's industry to the decision-maker
// titles worth searching for there.
package titles

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Table selects decision-maker titles by industry, with a fallback
// list for industries it has no entry for.
type Table struct {
	Industries map[string][]string `yaml:"industries"`
	Fallback   []string            `yaml:"default"`
}

// Default returns the built-in table used when no titles file is
// configured.
func Default() *Table {
	return &Table{
		Industries: map[string][]string{
			"Software Development": {
				"CTO", "CIO", "VP Engineering", "VP Delivery", "Director Engineering",
				"Director Delivery", "Director Software Engineering", "Director Data",
				"Director AI Delivery", "Head Solutions Engineering",
				"Vice President Professional Services",
				"Director AI Solutions", "Head AI", "Director Product Engineering",
			},
			"IT Services and IT Consulting": {
				"CTO", "CIO", "VP Engineering", "Director Engineering",
				"Managing Director", "Head of Technology", "Director Consulting",
			},
		},
		Fallback: []string{
			"CEO", "CTO", "President", "Founder", "Vice President",
			"Managing Director", "General Manager",
		},
	}
}

// Load reads a YAML table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "titles: read file")
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "titles: parse yaml")
	}
	if len(t.Fallback) == 0 {
		return nil, eris.New("titles: table has no default list")
	}
	return &t, nil
}

// ForIndustry returns the titles to search for a company in the given
// industry. Unmapped or unknown industries get the fallback list.
func (t *Table) ForIndustry(industry string) []string {
	industry = strings.TrimSpace(industry)
	if industry == "" || industry == model.Unknown {
		return t.Fallback
	}
	if titles, ok := t.Industries[industry]; ok {
		return titles
	}
	return t.Fallback
}

// All returns the deduplicated union of every list in the table, used
// as the relevance filter's keyword set.
func (t *Table) All() []string {
	set := make(map[string]struct{})
	add := func(list []string) {
		for _, title := range list {
			set[title] = struct{}{}
		}
	}
	add(t.Fallback)
	for _, list := range t.Industries {
		add(list)
	}

	all := make([]string, 0, len(set))
	for title := range set {
		all = append(all, title)
	}
	sort.Strings(all)
	return all
}
