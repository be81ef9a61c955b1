// Package script reads ELIZA scripts: the bracketed rule notation of the
// 1966 DOCTOR script and its relatives.
package script

import (
	_ "embed"
	"sort"
	"strings"
)

// Script is a loaded rule set. It is not modified after Load and may be
// shared by any number of conversations.
type Script struct {
	Name     string
	Greeting []string
	Rules    map[string]*Rule    // by keyword, excluding NONE and MEMORY
	None     *Rule               // catch-all
	Memory   *Rule               // memory rule, bound to Memory.Keyword
	Tags     map[string][]string // class name -> keywords declaring it, in script order

	order []string
}

// Lookup returns the rule for keyword. NONE resolves to the catch-all so
// that a link may name it; MEMORY is never returned.
func (s *Script) Lookup(keyword string) (*Rule, bool) {
	if keyword == NoneKey {
		return s.None, true
	}
	r, ok := s.Rules[keyword]
	return r, ok
}

// Keywords returns the rule keywords in script order.
func (s *Script) Keywords() []string {
	return append([]string(nil), s.order...)
}

// Summary describes a script for humans.
type Summary struct {
	Name          string              `json:"name"`
	Greeting      string              `json:"greeting"`
	Rules         int                 `json:"rules"`
	Keywords      []string            `json:"keywords"`
	Kinds         map[string]int      `json:"kinds"`
	Tags          map[string][]string `json:"tags,omitempty"`
	MemoryKeyword string              `json:"memory_keyword"`
	Links         []string            `json:"dangling_links,omitempty"`
}

// Summary counts rules by kind and lists link targets that name no rule.
func (s *Script) Summary() Summary {
	sum := Summary{
		Name:          s.Name,
		Greeting:      strings.Join(s.Greeting, " "),
		Rules:         len(s.Rules),
		Keywords:      s.Keywords(),
		Kinds:         make(map[string]int),
		Tags:          s.Tags,
		MemoryKeyword: s.Memory.Keyword,
	}
	seen := map[string]bool{}
	check := func(target string) {
		if _, ok := s.Lookup(target); !ok && !seen[target] {
			seen[target] = true
			sum.Links = append(sum.Links, target)
		}
	}
	rules := append([]*Rule{s.None}, make([]*Rule, 0, len(s.order))...)
	for _, k := range s.order {
		rules = append(rules, s.Rules[k])
	}
	for _, r := range rules {
		sum.Kinds[r.Kind.String()]++
		if r.Link != "" {
			check(r.Link)
		}
		for _, t := range r.Transforms {
			for _, tmpl := range t.Reassembly {
				if tmpl.Link != "" {
					check(tmpl.Link)
				}
			}
		}
	}
	sort.Strings(sum.Links)
	return sum
}

// Doctor is the text of Weizenbaum's DOCTOR script as published in 1966.
//
//go:embed doctor.txt
var Doctor string

// LoadDoctor loads the built-in DOCTOR script.
func LoadDoctor() (*Script, error) {
	return Load("doctor", Doctor)
}
