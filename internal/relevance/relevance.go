// Package relevance scores free text against a fixed set of weighted
// keyword rules.
package relevance

import (
	"fmt"
	"regexp"
	"strings"
)

// Class distinguishes the two keyword groups.
type Class int

const (
	// Primary marks core topical concepts.
	Primary Class = iota
	// Context marks supporting domain and methodology vocabulary.
	Context
)

func (c Class) String() string {
	if c == Primary {
		return "primary"
	}
	return "context"
}

// Keyword is one configured term with its weight.
type Keyword struct {
	Term   string
	Weight int
}

// rule is a compiled keyword with its whole-word pattern.
type rule struct {
	term    string
	weight  int
	class   Class
	pattern *regexp.Regexp
}

// RuleSet is an immutable, ordered list of compiled keyword rules.
// Rules are iterated in configuration order: all primary rules first,
// then all context rules.
type RuleSet struct {
	rules []rule
}

// CompileRules builds a RuleSet from the primary and context keyword groups.
// Terms must be non-empty and unique within their group (case-insensitive);
// weights must be positive. The same term may appear in both groups, in
// which case each occurrence scores independently.
func CompileRules(primary, context []Keyword) (*RuleSet, error) {
	rs := &RuleSet{}
	if err := rs.addGroup(primary, Primary); err != nil {
		return nil, err
	}
	if err := rs.addGroup(context, Context); err != nil {
		return nil, err
	}
	return rs, nil
}

func (rs *RuleSet) addGroup(keywords []Keyword, class Class) error {
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		term := strings.TrimSpace(kw.Term)
		if term == "" {
			return fmt.Errorf("%s keywords: empty term", class)
		}
		if kw.Weight < 1 {
			return fmt.Errorf("%s keyword %q: weight must be positive, got %d", class, term, kw.Weight)
		}
		folded := strings.ToLower(term)
		if seen[folded] {
			return fmt.Errorf("%s keyword %q: duplicate term", class, term)
		}
		seen[folded] = true

		rs.rules = append(rs.rules, rule{
			term:    term,
			weight:  kw.Weight,
			class:   class,
			pattern: wholeWord(folded),
		})
	}
	return nil
}

// wholeWord compiles a pattern matching the folded term only when it is
// bounded by non-word characters or string edges. Multi-word terms match
// as a contiguous phrase with the boundary applied to the phrase as a whole.
func wholeWord(folded string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(folded) + `\b`)
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Score folds text once and tests every rule against it in order. It returns
// the sum of the weights of all matching rules and the matched terms in rule
// order. The matched list is a sequence, not a set: a term configured in both
// groups appears twice when both rules match. Score has no side effects and
// is safe for concurrent use.
func (rs *RuleSet) Score(text string) (int, []string) {
	folded := strings.ToLower(text)
	score := 0
	var matched []string
	for _, r := range rs.rules {
		if r.pattern.MatchString(folded) {
			score += r.weight
			matched = append(matched, r.term)
		}
	}
	return score, matched
}
