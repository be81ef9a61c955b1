// Package eliza runs conversations against an ELIZA script.
//
// A Session owns the state that one conversation threads from reply to
// reply: the counting mechanism, the memory queue and the position of
// every rule's reassembly rotation. The script itself is shared and never
// modified.
package eliza

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/script"
)

// fallback phrases hide script defects from the user. The counter picks
// one, so a run of failures cycles through them in order.
var fallback = [4]string{
	"PLEASE CONTINUE",
	"HMMM",
	"GO ON , PLEASE",
	"I SEE",
}

// maxLinks bounds how many links one reply may follow.
const maxLinks = 100

// Session is one conversation. It is not safe for concurrent use;
// independent sessions may share a script.
type Session struct {
	script   *script.Script
	log      *zap.Logger
	counter  int
	memories []string
	cursors  map[string]int
	trace    []string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New starts a conversation using sc.
func New(sc *script.Script, opts ...Option) *Session {
	s := &Session{
		script:  sc,
		log:     zap.NewNop(),
		counter: 1,
		cursors: make(map[string]int),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Greeting returns the script's opening line.
func (s *Session) Greeting() string {
	return strings.Join(s.script.Greeting, " ")
}

// Trace returns a description of how the last reply was produced.
func (s *Session) Trace() []string {
	return append([]string(nil), s.trace...)
}

// Snapshot returns a copy of the conversation state.
func (s *Session) Snapshot() model.State {
	st := model.State{
		Counter:  s.counter,
		Memories: append([]string(nil), s.memories...),
		Cursors:  make(map[string]int, len(s.cursors)),
	}
	for k, v := range s.cursors {
		st.Cursors[k] = v
	}
	return st
}

// Restore replaces the conversation state with st.
func (s *Session) Restore(st model.State) error {
	if st.Counter < 1 || st.Counter > len(fallback) {
		return fmt.Errorf("restore: counter %d out of range 1-%d", st.Counter, len(fallback))
	}
	for k, v := range st.Cursors {
		if v < 0 {
			return fmt.Errorf("restore: negative cursor %d for %s", v, k)
		}
	}
	s.counter = st.Counter
	s.memories = append([]string(nil), st.Memories...)
	s.cursors = make(map[string]int, len(st.Cursors))
	for k, v := range st.Cursors {
		s.cursors[k] = v
	}
	return nil
}

// action is the outcome of applying a rule to the input.
type action int

const (
	complete     action = iota // a reply was built
	inapplicable               // no decomposition matched
	linkKey                    // retry as another keyword
	newKey                     // try the next keyword on the stack
)

// Response returns ELIZA's reply to one line of input. It always
// produces a reply.
func (s *Session) Response(input string) string {
	s.trace = s.trace[:0]
	s.counter = s.counter%len(fallback) + 1

	words, stack := s.scan(Split(input))
	s.tracef("input: %s", strings.Join(words, " "))
	s.tracef("keywords: %s", strings.Join(stack, " "))
	s.log.Debug("scanned input",
		zap.Strings("words", words),
		zap.Strings("keywords", stack),
		zap.Int("counter", s.counter))

	if len(stack) == 0 {
		if s.counter == len(fallback) && len(s.memories) > 0 {
			return s.recallMemory()
		}
		return s.none(words)
	}

	links := 0
	for len(stack) > 0 {
		keyword := stack[0]
		stack = stack[1:]
		r, ok := s.script.Lookup(keyword)
		if !ok {
			return s.fail("no rule for keyword " + keyword)
		}
		s.createMemory(keyword, words)

		act, out, target := s.apply(r, words)
		switch act {
		case complete:
			return strings.Join(out, " ")
		case inapplicable:
			return s.fail("no decomposition of " + keyword + " matched")
		case linkKey:
			links++
			if links > maxLinks {
				return s.fail("too many links from " + keyword)
			}
			words = out
			stack = append([]string{target}, stack...)
			s.tracef("%s: link to %s", keyword, target)
		case newKey:
			s.tracef("%s: newkey", keyword)
		}
	}
	return s.none(words)
}

// scan finds the keywords in words and makes every substitution the
// script asks for. Only the first clause containing a keyword survives.
func (s *Session) scan(words []string) ([]string, []string) {
	var stack []string
	top := 0
	for i := 0; i < len(words); i++ {
		w := words[i]
		if isDelimiter(w) {
			if len(stack) == 0 {
				words = words[i+1:]
				i = -1
				continue
			}
			words = words[:i]
			break
		}
		r, ok := s.script.Rules[w]
		if !ok {
			continue
		}
		if r.Dispatchable() {
			if r.Precedence > top {
				stack = append([]string{w}, stack...)
				top = r.Precedence
			} else {
				stack = append(stack, w)
			}
		}
		if r.Substitute != "" {
			words[i] = r.Substitute
		}
	}
	return words, stack
}

// apply runs rule r over words. For linkKey it also returns the keyword
// to try and the words to try it on.
func (s *Session) apply(r *script.Rule, words []string) (action, []string, string) {
	switch r.Kind {
	case script.Equivalence:
		return linkKey, words, r.Link
	case script.Vanilla, script.PreTransform:
		for i, t := range r.Transforms {
			frags, ok := Match(s.script.Tags, t.Decomposition, words)
			if !ok {
				continue
			}
			tmpl := t.Reassembly[s.rotate(r.Keyword, i, len(t.Reassembly))]
			s.tracef("%s: %s matched, using %s", r.Keyword, t.Decomposition, tmpl)
			s.log.Debug("decomposition matched",
				zap.String("keyword", r.Keyword),
				zap.Stringer("pattern", t.Decomposition),
				zap.Stringer("reassembly", tmpl))
			switch tmpl.Kind {
			case script.NewKey:
				return newKey, words, ""
			case script.Link:
				return linkKey, words, tmpl.Link
			case script.Pre:
				return linkKey, Reassemble(tmpl.Words, frags), tmpl.Link
			case script.Text:
				return complete, Reassemble(tmpl.Words, frags), ""
			}
			panic(fmt.Sprintf("eliza: unknown template kind %d", int(tmpl.Kind)))
		}
		return inapplicable, words, ""
	case script.Substitution, script.Tagged, script.Memory:
		return inapplicable, words, ""
	}
	panic(fmt.Sprintf("eliza: unknown rule kind %d", int(r.Kind)))
}

// rotate returns the reassembly to use for transform i of keyword and
// advances the rotation.
func (s *Session) rotate(keyword string, i, n int) int {
	key := keyword + "/" + strconv.Itoa(i)
	next := s.cursors[key]
	if next >= n {
		next = 0
	}
	s.cursors[key] = (next + 1) % n
	return next
}

// none answers with the catch-all rule.
func (s *Session) none(words []string) string {
	act, out, _ := s.apply(s.script.None, words)
	if act != complete {
		return s.fail("NONE rule did not produce a reply")
	}
	return strings.Join(out, " ")
}

// fail returns the fallback phrase for the current count.
func (s *Session) fail(why string) string {
	msg := fallback[s.counter-1]
	s.tracef("fallback: %s", why)
	s.log.Debug("fallback", zap.String("reason", why), zap.String("reply", msg))
	return msg
}

func (s *Session) tracef(format string, args ...interface{}) {
	s.trace = append(s.trace, fmt.Sprintf(format, args...))
}
