package script

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the form of a rule. The set is fixed by the script grammar.
type Kind int

const (
	Vanilla      Kind = iota // decomposition/reassembly transformations
	Substitution             // (KEY = WORD) and nothing else
	Tagged                   // DLIST word-class declaration
	Equivalence              // (=TARGET): retry as another keyword
	PreTransform             // rewrite the input, then retry as another keyword
	Memory                   // the four MEMORY transformations
)

var kindNames = [...]string{
	Vanilla:      "vanilla",
	Substitution: "substitution",
	Tagged:       "tagged",
	Equivalence:  "equivalence",
	PreTransform: "pre-transform",
	Memory:       "memory",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// SlotKind identifies what a decomposition slot matches.
type SlotKind int

const (
	Literal      SlotKind = iota // exactly Word
	Alternatives                 // any one of Words: (* A B C)
	TagRef                       // any word in class Tag: (/ NAME)
	Count                        // exactly N words
	Any                          // zero or more words: 0
)

// Slot is one element of a decomposition pattern.
type Slot struct {
	Kind  SlotKind
	Word  string
	Words []string
	Tag   string
	N     int
}

func (s Slot) String() string {
	switch s.Kind {
	case Literal:
		return s.Word
	case Alternatives:
		return "(* " + strings.Join(s.Words, " ") + ")"
	case TagRef:
		return "(/ " + s.Tag + ")"
	case Count:
		return strconv.Itoa(s.N)
	case Any:
		return "0"
	}
	return fmt.Sprintf("Slot(%d)", int(s.Kind))
}

// Pattern is a decomposition pattern.
type Pattern []Slot

func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// TemplateKind identifies a reassembly template's role.
type TemplateKind int

const (
	Text   TemplateKind = iota // words and numeric back-references
	NewKey                     // (NEWKEY): give up on this keyword
	Link                       // (=TARGET): retry as TARGET
	Pre                        // (PRE (words) (=TARGET)): rewrite, then retry as TARGET
)

// Template is one reassembly rule.
type Template struct {
	Kind  TemplateKind
	Words []string // Text and Pre
	Link  string   // Link and Pre
}

func (t Template) String() string {
	switch t.Kind {
	case NewKey:
		return "(NEWKEY)"
	case Link:
		return "(=" + t.Link + ")"
	case Pre:
		return "(PRE (" + strings.Join(t.Words, " ") + ") (=" + t.Link + "))"
	}
	return "(" + strings.Join(t.Words, " ") + ")"
}

// Transform pairs a decomposition with the reassemblies used in rotation.
type Transform struct {
	Decomposition Pattern
	Reassembly    []Template
}

// Rule is everything a script says about one keyword.
type Rule struct {
	Kind       Kind
	Keyword    string
	Substitute string // replaces the keyword in the input; may be empty
	Precedence int
	Tags       []string    // Tagged
	Transforms []Transform // Vanilla, PreTransform and Memory
	Link       string      // Equivalence and PreTransform
	Line       int
}

// Dispatchable reports whether finding the keyword in the input puts it
// on the keyword stack.
func (r *Rule) Dispatchable() bool {
	switch r.Kind {
	case Vanilla, Equivalence, PreTransform:
		return true
	case Substitution, Tagged, Memory:
		return false
	}
	panic(fmt.Sprintf("script: unknown rule kind %d", int(r.Kind)))
}
