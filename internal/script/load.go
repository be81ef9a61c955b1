package script

import (
	"fmt"
	"strings"
)

// Reserved keywords. Neither can be reached through the input.
const (
	NoneKey   = "NONE"
	MemoryKey = "MEMORY"
	startMark = "START"
)

// MemorySlots is the number of transformations a MEMORY rule must have.
const MemorySlots = 4

// Error reports malformed script text.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errorf(line int, format string, args ...interface{}) error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Load parses script text. The first form is the greeting; each later
// form is a rule. Link targets are not checked here; a dangling link is
// handled when a conversation reaches it.
func Load(name, text string) (*Script, error) {
	forms, err := Read(text)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	sc, err := build(name, forms)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	return sc, nil
}

func build(name string, forms []*Node) (*Script, error) {
	if len(forms) == 0 {
		return nil, errorf(1, "empty script")
	}
	greeting, ok := forms[0].atoms()
	if !ok {
		return nil, errorf(forms[0].Line, "first form must be the greeting word list, got %s", forms[0])
	}

	sc := &Script{
		Name:     name,
		Greeting: greeting,
		Rules:    make(map[string]*Rule),
		Tags:     make(map[string][]string),
	}
	for _, f := range forms[1:] {
		switch {
		case f.isSymbol(startMark):
			continue
		case f.Kind != ListNode:
			return nil, errorf(f.Line, "unexpected %q outside a rule", f.Text)
		case len(f.List) == 0:
			continue
		}
		r, err := parseRule(f)
		if err != nil {
			return nil, err
		}
		switch {
		case r.Kind == Memory:
			if sc.Memory != nil {
				return nil, errorf(f.Line, "duplicate MEMORY rule")
			}
			sc.Memory = r
		case r.Keyword == NoneKey:
			if sc.None != nil {
				return nil, errorf(f.Line, "duplicate NONE rule")
			}
			if r.Kind != Vanilla {
				return nil, errorf(f.Line, "NONE rule must have transformations")
			}
			sc.None = r
		default:
			if _, dup := sc.Rules[r.Keyword]; dup {
				return nil, errorf(f.Line, "duplicate rule for keyword %s", r.Keyword)
			}
			sc.Rules[r.Keyword] = r
			sc.order = append(sc.order, r.Keyword)
			for _, tag := range r.Tags {
				sc.Tags[tag] = append(sc.Tags[tag], r.Keyword)
			}
		}
	}
	if sc.None == nil {
		return nil, errorf(forms[len(forms)-1].Line, "no NONE rule")
	}
	if sc.Memory == nil {
		return nil, errorf(forms[len(forms)-1].Line, "no MEMORY rule")
	}
	return sc, nil
}

func parseRule(n *Node) (*Rule, error) {
	head := n.List[0]
	if head.Kind != SymbolNode {
		return nil, errorf(n.Line, "missing keyword in rule %s", n)
	}
	if head.Text == MemoryKey {
		return parseMemory(n)
	}
	r := &Rule{Keyword: head.Text, Line: n.Line}
	items := n.List[1:]
	for i := 0; i < len(items); i++ {
		it := items[i]
		switch {
		case it.isSymbol("="):
			if i+1 >= len(items) || items[i+1].Kind != SymbolNode {
				return nil, errorf(it.Line, "rule %s: '=' must be followed by a substitute word", r.Keyword)
			}
			i++
			r.Substitute = items[i].Text
		case it.isSymbol("DLIST"):
			if i+1 >= len(items) {
				return nil, errorf(it.Line, "rule %s: DLIST without a tag list", r.Keyword)
			}
			i++
			tags, err := parseTags(r.Keyword, items[i])
			if err != nil {
				return nil, err
			}
			r.Tags = append(r.Tags, tags...)
		case it.Kind == NumberNode:
			r.Precedence = it.Number
		case it.Kind == ListNode:
			if target, ok := linkTarget(it); ok {
				if len(r.Transforms) == 0 && r.Link == "" {
					r.Link = target
					continue
				}
				// A trailing link among transformations applies to any input.
				r.Transforms = append(r.Transforms, Transform{
					Decomposition: Pattern{{Kind: Any}},
					Reassembly:    []Template{{Kind: Link, Link: target}},
				})
				continue
			}
			t, err := parseTransform(r.Keyword, it)
			if err != nil {
				return nil, err
			}
			r.Transforms = append(r.Transforms, t)
		default:
			return nil, errorf(it.Line, "rule %s: unexpected %s", r.Keyword, it)
		}
	}

	switch {
	case r.Link != "" && len(r.Transforms) > 0:
		// (X (=Y) ((0) ...)): the link came first; keep it as a catch-all.
		r.Transforms = append([]Transform{{
			Decomposition: Pattern{{Kind: Any}},
			Reassembly:    []Template{{Kind: Link, Link: r.Link}},
		}}, r.Transforms...)
		r.Link = ""
		r.Kind = Vanilla
	case r.Link != "":
		r.Kind = Equivalence
	case len(r.Tags) > 0 && len(r.Transforms) > 0:
		return nil, errorf(n.Line, "rule %s: DLIST rule cannot have transformations", r.Keyword)
	case len(r.Tags) > 0:
		r.Kind = Tagged
	case len(r.Transforms) == 1 && len(r.Transforms[0].Reassembly) == 1 && r.Transforms[0].Reassembly[0].Kind == Pre:
		r.Kind = PreTransform
		r.Link = r.Transforms[0].Reassembly[0].Link
	case len(r.Transforms) > 0:
		r.Kind = Vanilla
	case r.Substitute != "":
		r.Kind = Substitution
	default:
		return nil, errorf(n.Line, "rule %s has no substitution, tags or transformations", r.Keyword)
	}
	if len(r.Tags) > 0 && r.Kind != Tagged {
		return nil, errorf(n.Line, "rule %s: DLIST rule cannot have a link", r.Keyword)
	}
	return r, nil
}

// parseTags reads the list after DLIST: (/NOUN FAMILY) or (/ FAMILY).
func parseTags(keyword string, n *Node) ([]string, error) {
	words, ok := n.atoms()
	if !ok || len(words) == 0 || !strings.HasPrefix(words[0], "/") {
		return nil, errorf(n.Line, "rule %s: DLIST expects (/TAG ...), got %s", keyword, n)
	}
	words[0] = strings.TrimPrefix(words[0], "/")
	var tags []string
	for _, w := range words {
		if w != "" {
			tags = append(tags, w)
		}
	}
	if len(tags) == 0 {
		return nil, errorf(n.Line, "rule %s: empty DLIST", keyword)
	}
	return tags, nil
}

// linkTarget recognizes (=X) and (= X).
func linkTarget(n *Node) (string, bool) {
	words, ok := n.atoms()
	if !ok {
		return "", false
	}
	switch {
	case len(words) == 1 && len(words[0]) > 1 && words[0][0] == '=':
		return words[0][1:], true
	case len(words) == 2 && words[0] == "=" && n.List[1].Kind == SymbolNode:
		return words[1], true
	}
	return "", false
}

// parseTransform reads ((decomposition) (reassembly) (reassembly) ...).
func parseTransform(keyword string, n *Node) (Transform, error) {
	var t Transform
	if len(n.List) < 2 || n.List[0].Kind != ListNode {
		return t, errorf(n.Line, "rule %s: transformation must be (decomposition reassembly...), got %s", keyword, n)
	}
	p, err := parsePattern(keyword, n.List[0].List, n.List[0].Line)
	if err != nil {
		return t, err
	}
	t.Decomposition = p
	for _, c := range n.List[1:] {
		tmpl, err := parseTemplate(keyword, c)
		if err != nil {
			return t, err
		}
		t.Reassembly = append(t.Reassembly, tmpl)
	}
	return t, nil
}

func parsePattern(keyword string, items []*Node, line int) (Pattern, error) {
	if len(items) == 0 {
		return nil, errorf(line, "rule %s: empty decomposition", keyword)
	}
	p := make(Pattern, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case NumberNode:
			if it.Number == 0 {
				p = append(p, Slot{Kind: Any})
			} else {
				p = append(p, Slot{Kind: Count, N: it.Number})
			}
		case SymbolNode:
			p = append(p, Slot{Kind: Literal, Word: it.Text})
		case ListNode:
			s, err := parseGroup(keyword, it)
			if err != nil {
				return nil, err
			}
			p = append(p, s)
		}
	}
	return p, nil
}

// parseGroup reads (* A B C) or (/ TAG) inside a decomposition.
func parseGroup(keyword string, n *Node) (Slot, error) {
	words, ok := n.atoms()
	if !ok || len(words) == 0 {
		return Slot{}, errorf(n.Line, "rule %s: bad group %s in decomposition", keyword, n)
	}
	mark := words[0][0]
	words[0] = words[0][1:]
	var rest []string
	for _, w := range words {
		if w != "" {
			rest = append(rest, w)
		}
	}
	switch mark {
	case '*':
		if len(rest) == 0 {
			return Slot{}, errorf(n.Line, "rule %s: empty alternative list %s", keyword, n)
		}
		return Slot{Kind: Alternatives, Words: rest}, nil
	case '/':
		if len(rest) != 1 {
			return Slot{}, errorf(n.Line, "rule %s: tag reference %s must name one tag", keyword, n)
		}
		return Slot{Kind: TagRef, Tag: rest[0]}, nil
	}
	return Slot{}, errorf(n.Line, "rule %s: group %s must start with * or /", keyword, n)
}

func parseTemplate(keyword string, n *Node) (Template, error) {
	if n.Kind != ListNode {
		return Template{}, errorf(n.Line, "rule %s: reassembly must be a list, got %s", keyword, n)
	}
	if len(n.List) > 0 && n.List[0].isSymbol("PRE") {
		if len(n.List) != 3 {
			return Template{}, errorf(n.Line, "rule %s: PRE expects (PRE (words) (=KEY)), got %s", keyword, n)
		}
		words, ok := n.List[1].atoms()
		target, isLink := linkTarget(n.List[2])
		if !ok || !isLink {
			return Template{}, errorf(n.Line, "rule %s: PRE expects (PRE (words) (=KEY)), got %s", keyword, n)
		}
		return Template{Kind: Pre, Words: words, Link: target}, nil
	}
	if target, ok := linkTarget(n); ok {
		return Template{Kind: Link, Link: target}, nil
	}
	words, ok := n.atoms()
	if !ok {
		return Template{}, errorf(n.Line, "rule %s: nested list in reassembly %s", keyword, n)
	}
	if len(words) == 0 {
		return Template{}, errorf(n.Line, "rule %s: empty reassembly", keyword)
	}
	if len(words) == 1 && words[0] == "NEWKEY" {
		return Template{Kind: NewKey}, nil
	}
	return Template{Kind: Text, Words: words}, nil
}

// parseMemory reads (MEMORY KEY (pattern = reassembly) x4).
func parseMemory(n *Node) (*Rule, error) {
	if len(n.List) < 2 || n.List[1].Kind != SymbolNode {
		return nil, errorf(n.Line, "MEMORY rule must name its keyword")
	}
	r := &Rule{Kind: Memory, Keyword: n.List[1].Text, Line: n.Line}
	for _, it := range n.List[2:] {
		if it.Kind != ListNode {
			return nil, errorf(it.Line, "MEMORY rule: unexpected %s", it)
		}
		eq := -1
		for i, c := range it.List {
			if c.isSymbol("=") {
				eq = i
				break
			}
		}
		if eq <= 0 || eq == len(it.List)-1 {
			return nil, errorf(it.Line, "MEMORY rule: expected (pattern = reassembly), got %s", it)
		}
		p, err := parsePattern(MemoryKey, it.List[:eq], it.Line)
		if err != nil {
			return nil, err
		}
		var words []string
		for _, c := range it.List[eq+1:] {
			if c.Kind == ListNode {
				return nil, errorf(c.Line, "MEMORY rule: nested list in reassembly %s", it)
			}
			words = append(words, c.Text)
		}
		r.Transforms = append(r.Transforms, Transform{
			Decomposition: p,
			Reassembly:    []Template{{Kind: Text, Words: words}},
		})
	}
	if len(r.Transforms) != MemorySlots {
		return nil, errorf(n.Line, "MEMORY rule must have exactly %d transformations, has %d", MemorySlots, len(r.Transforms))
	}
	return r, nil
}
