package eliza

import (
	"strings"

	"go.uber.org/zap"
)

// memoryBits selects one of the four MEMORY transformations.
const memoryBits = 2

// createMemory queues a sentence built by the MEMORY rule when keyword is
// the one the rule is bound to. The transformation is chosen by hashing
// the last word of the input.
func (s *Session) createMemory(keyword string, words []string) {
	mem := s.script.Memory
	if keyword != mem.Keyword || len(words) == 0 {
		return
	}
	i := Hash(LastChunk(words[len(words)-1]), memoryBits) % len(mem.Transforms)
	t := mem.Transforms[i]
	frags, ok := Match(s.script.Tags, t.Decomposition, words)
	if !ok {
		return
	}
	m := strings.Join(Reassemble(t.Reassembly[0].Words, frags), " ")
	s.memories = append(s.memories, m)
	s.tracef("memory %d queued: %s", i, m)
	s.log.Debug("memory queued", zap.Int("transform", i), zap.String("memory", m), zap.Int("queued", len(s.memories)))
}

// recallMemory removes and returns the oldest queued memory.
func (s *Session) recallMemory() string {
	m := s.memories[0]
	s.memories = s.memories[1:]
	s.tracef("memory recalled: %s", m)
	s.log.Debug("memory recalled", zap.String("memory", m), zap.Int("queued", len(s.memories)))
	return m
}
