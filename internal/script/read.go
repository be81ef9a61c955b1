package script

import (
	"strconv"
	"strings"
)

// NodeKind distinguishes the three shapes of a script form.
type NodeKind int

const (
	SymbolNode NodeKind = iota
	NumberNode
	ListNode
)

// Node is one element of script text: a symbol, a number, or a
// parenthesized list of nodes.
type Node struct {
	Kind   NodeKind
	Line   int
	Text   string // symbol text, or the digits of a number
	Number int
	List   []*Node
}

func (n *Node) String() string {
	switch n.Kind {
	case SymbolNode, NumberNode:
		return n.Text
	}
	parts := make([]string, len(n.List))
	for i, c := range n.List {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// isSymbol reports whether n is the symbol s.
func (n *Node) isSymbol(s string) bool {
	return n.Kind == SymbolNode && n.Text == s
}

// atoms returns the texts of a list whose elements are all symbols or
// numbers, or false if some element is a list.
func (n *Node) atoms() ([]string, bool) {
	if n.Kind != ListNode {
		return nil, false
	}
	words := make([]string, 0, len(n.List))
	for _, c := range n.List {
		if c.Kind == ListNode {
			return nil, false
		}
		words = append(words, c.Text)
	}
	return words, true
}

// Read parses all top-level forms in text.
func Read(text string) ([]*Node, error) {
	r := &reader{s: NewScanner(text)}
	var forms []*Node
	for {
		tok := r.next()
		switch tok.Type {
		case EOF:
			return forms, nil
		case ErrorToken:
			return nil, errorf(tok.Line, "%s", tok.Text)
		case RightParen:
			return nil, errorf(tok.Line, "unexpected ')'")
		}
		n, err := r.node(tok)
		if err != nil {
			return nil, err
		}
		forms = append(forms, n)
	}
}

type reader struct {
	s *Scanner
}

func (r *reader) next() Token {
	return r.s.Next()
}

// node builds the node that starts with tok.
func (r *reader) node(tok Token) (*Node, error) {
	switch tok.Type {
	case Number:
		v, err := strconv.Atoi(tok.Text)
		if err != nil {
			return nil, errorf(tok.Line, "bad number %q", tok.Text)
		}
		return &Node{Kind: NumberNode, Line: tok.Line, Text: tok.Text, Number: v}, nil
	case Symbol:
		return &Node{Kind: SymbolNode, Line: tok.Line, Text: tok.Text}, nil
	case LeftParen:
		list := &Node{Kind: ListNode, Line: tok.Line}
		for {
			t := r.next()
			switch t.Type {
			case RightParen:
				return list, nil
			case EOF:
				return nil, errorf(tok.Line, "unterminated list")
			case ErrorToken:
				return nil, errorf(t.Line, "%s", t.Text)
			}
			c, err := r.node(t)
			if err != nil {
				return nil, err
			}
			list.List = append(list.List, c)
		}
	}
	return nil, errorf(tok.Line, "unexpected %s", tok)
}
