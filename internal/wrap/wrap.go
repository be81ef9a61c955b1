// Package wrap breaks replies into lines for a fixed-width terminal.
package wrap

import (
	"strings"
	"unicode/utf8"
)

// DefaultWidth is the line width of the teletypes ELIZA first ran on.
const DefaultWidth = 72

// Options configures wrapping.
type Options struct {
	Width  int
	Indent string // prefix for every line after the first
}

// DefaultOptions returns default wrapping options.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth}
}

// Lines splits text into lines of at most opts.Width characters,
// breaking at spaces. Words longer than the width are split. Existing
// newlines start a new line. Empty text returns nil.
func Lines(text string, opts Options) []string {
	if opts.Width <= 0 {
		opts = DefaultOptions()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, fill(strings.Fields(para), opts)...)
	}
	for i := 1; i < len(out); i++ {
		out[i] = opts.Indent + out[i]
	}
	return out
}

// String is Lines joined with newlines.
func String(text string, opts Options) string {
	return strings.Join(Lines(text, opts), "\n")
}

// fill packs words greedily into lines.
func fill(words []string, opts Options) []string {
	width := opts.Width - utf8.RuneCountInString(opts.Indent)
	if width < 1 {
		width = 1
	}

	var lines []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if n > width {
			flush()
			parts := hardSplit(w, width)
			lines = append(lines, parts[:len(parts)-1]...)
			last := parts[len(parts)-1]
			cur.WriteString(last)
			curLen = utf8.RuneCountInString(last)
			continue
		}
		if curLen > 0 && curLen+1+n > width {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += n
	}
	flush()
	return lines
}

// hardSplit breaks a word into pieces of at most width runes.
func hardSplit(w string, width int) []string {
	rs := []rune(w)
	var parts []string
	for len(rs) > width {
		parts = append(parts, string(rs[:width]))
		rs = rs[width:]
	}
	return append(parts, string(rs))
}
