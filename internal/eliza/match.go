package eliza

import (
	"strings"

	"github.com/rcliao/eliza/internal/script"
)

// Match matches a decomposition pattern against words. The pattern must
// account for every word. On success there is one fragment per slot:
// the word matched by a literal, alternative or tag slot, or the
// space-separated words taken by a numeric slot.
//
// A 0 slot tries the shortest run of words first and backtracks.
func Match(tags map[string][]string, pattern script.Pattern, words []string) ([]string, bool) {
	frags := make([]string, len(pattern))
	if !match(tags, pattern, words, frags) {
		return nil, false
	}
	return frags, true
}

func match(tags map[string][]string, pattern script.Pattern, words, frags []string) bool {
	if len(pattern) == 0 {
		return len(words) == 0
	}
	slot := pattern[0]
	switch slot.Kind {
	case script.Any:
		for n := 0; n <= len(words); n++ {
			if match(tags, pattern[1:], words[n:], frags[1:]) {
				frags[0] = strings.Join(words[:n], " ")
				return true
			}
		}
		return false
	case script.Count:
		if len(words) < slot.N || !match(tags, pattern[1:], words[slot.N:], frags[1:]) {
			return false
		}
		frags[0] = strings.Join(words[:slot.N], " ")
		return true
	}
	if len(words) == 0 || !matchWord(tags, slot, words[0]) {
		return false
	}
	if !match(tags, pattern[1:], words[1:], frags[1:]) {
		return false
	}
	frags[0] = words[0]
	return true
}

// matchWord reports whether a single-word slot accepts w.
func matchWord(tags map[string][]string, slot script.Slot, w string) bool {
	switch slot.Kind {
	case script.Literal:
		return w == slot.Word
	case script.Alternatives:
		for _, alt := range slot.Words {
			if w == alt {
				return true
			}
		}
		return false
	case script.TagRef:
		// Class members were stored in one six-character cell, so only
		// the first chunk of each word takes part in the comparison.
		first := firstChunk(w)
		for _, m := range tags[slot.Tag] {
			if firstChunk(m) == first {
				return true
			}
		}
		return false
	}
	return false
}
