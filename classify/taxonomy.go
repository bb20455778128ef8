package classify

import (
	"strings"

	"portfolio/config"

	"github.com/samber/lo"
)

// Rule maps a label to the keywords that select it
type Rule struct {
	Label    string
	Keywords []string
}

// Taxonomy is an ordered rule table. Earlier rules take priority.
type Taxonomy struct {
	Rules    []Rule
	Fallback string
}

func NewTaxonomy(categories []config.TomlCategory, fallback string) Taxonomy {
	return Taxonomy{
		Rules: lo.Map(categories, func(c config.TomlCategory, _ int) Rule {
			return Rule{
				Label: c.Label,
				Keywords: lo.Map(c.Keywords, func(k string, _ int) string {
					return strings.ToLower(k)
				}),
			}
		}),
		Fallback: fallback,
	}
}

// Categorize returns the label of the first rule with a keyword found in the
// title or body, or the fallback label.
func (t Taxonomy) Categorize(title, body string) string {
	text := strings.ToLower(title + " " + body)
	for _, rule := range t.Rules {
		if lo.SomeBy(rule.Keywords, func(k string) bool { return k != "" && strings.Contains(text, k) }) {
			return rule.Label
		}
	}
	return t.Fallback
}

// Labels lists every label that Categorize can return, fallback last
func (t Taxonomy) Labels() []string {
	labels := lo.Map(t.Rules, func(r Rule, _ int) string { return r.Label })
	return append(labels, t.Fallback)
}

func (t Taxonomy) Contains(label string) bool {
	return lo.Contains(t.Labels(), label)
}

// DenyList excludes entries that mention any of its terms
type DenyList struct {
	terms []string
}

func NewDenyList(terms []string) DenyList {
	return DenyList{terms: lo.FilterMap(terms, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	})}
}

// Matches returns the first term found in the title or body
func (d DenyList) Matches(title, body string) (string, bool) {
	text := strings.ToLower(title + " " + body)
	return lo.Find(d.terms, func(t string) bool { return strings.Contains(text, t) })
}
