package script

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const eof = -1

// stateFn represents the state of the scanner as a function that returns the next state.
type stateFn func(*Scanner) stateFn

// Scanner turns script text into tokens. Whitespace separates symbols;
// parentheses are always tokens of their own; ';' starts a comment that
// runs to the end of the line.
type Scanner struct {
	input string // the text being scanned
	line  int    // line number of the current position
	pos   int    // current position in the input
	start int    // start position of this item
	width int    // width of the last rune read
	token Token
}

// NewScanner returns a scanner for text.
func NewScanner(text string) *Scanner {
	return &Scanner{input: text, line: 1}
}

// Next returns the next token. After EOF or ErrorToken, Next keeps returning EOF.
func (l *Scanner) Next() Token {
	l.token = Token{EOF, l.line, "EOF"}
	state := lexAny
	for state != nil {
		state = state(l)
	}
	return l.token
}

// next returns the next rune in the input.
func (l *Scanner) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
	}
	return r
}

// backup steps back one rune. Should only be called once per call of next.
func (l *Scanner) backup() {
	l.pos -= l.width
	if l.width == 1 && l.input[l.pos] == '\n' {
		l.line--
	}
}

// peek returns but does not consume the next rune in the input.
func (l *Scanner) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// ignore skips over the pending input before this point.
func (l *Scanner) ignore() {
	l.start = l.pos
}

// emit records an item to be returned to the client.
func (l *Scanner) emit(t Type) stateFn {
	l.token = Token{t, l.line, l.input[l.start:l.pos]}
	l.start = l.pos
	return nil
}

// errorf records an error token and empties the remaining input.
func (l *Scanner) errorf(format string, args ...interface{}) stateFn {
	l.token = Token{ErrorToken, l.line, fmt.Sprintf(format, args...)}
	l.input = l.input[:l.pos]
	l.start = l.pos
	return nil
}

// state functions

// lexAny scans non-space items.
func lexAny(l *Scanner) stateFn {
	switch r := l.next(); {
	case r == eof:
		return nil
	case isSpace(r):
		l.ignore()
		return lexAny
	case r == ';':
		return lexComment
	case r == '(':
		return l.emit(LeftParen)
	case r == ')':
		return l.emit(RightParen)
	case r == utf8.RuneError:
		return l.errorf("invalid UTF-8 in script text")
	default:
		return lexSymbol
	}
}

// lexComment scans a comment. The comment marker has been consumed.
func lexComment(l *Scanner) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' {
			break
		}
	}
	l.ignore()
	return lexAny
}

// lexSymbol scans a symbol or number. The first rune has been consumed.
func lexSymbol(l *Scanner) stateFn {
	for {
		r := l.peek()
		if r == eof || isSpace(r) || r == '(' || r == ')' || r == ';' {
			break
		}
		l.next()
	}
	if isNumber(l.input[l.start:l.pos]) {
		return l.emit(Number)
	}
	return l.emit(Symbol)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

func isNumber(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}
