package script

import "fmt"

// Token is a lexical item of script text.
type Token struct {
	Type Type   // The type of this item.
	Line int    // The line number on which this token appears.
	Text string // The text of this item.
}

// Type identifies the type of a token.
type Type int

const (
	EOF        Type = iota // end of input
	ErrorToken             // error occurred; Text is the message
	LeftParen              // '('
	RightParen             // ')'
	Number                 // unsigned decimal integer
	Symbol                 // any other run of non-space, non-paren characters
)

var typeNames = [...]string{
	EOF:        "EOF",
	ErrorToken: "Error",
	LeftParen:  "LeftParen",
	RightParen: "RightParen",
	Number:     "Number",
	Symbol:     "Symbol",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

func (t Token) String() string {
	switch {
	case t.Type == EOF:
		return "EOF"
	case t.Type == ErrorToken:
		return "error: " + t.Text
	case len(t.Text) > 10:
		return fmt.Sprintf("%s: %.10q...", t.Type, t.Text)
	}
	return fmt.Sprintf("%s: %q", t.Type, t.Text)
}
