package eliza

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashReferenceVectors(t *testing.T) {
	tests := []struct {
		chunk string
		bits  int
		want  int
	}{
		{"ALWAYS", 7, 14},
		{"HERE  ", 2, 3},
		{"KIDS  ", 2, 1},
		{"TIME  ", 2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Hash(Pack(tt.chunk), tt.bits), "hash(%q, %d)", tt.chunk, tt.bits)
	}
}

func TestPack(t *testing.T) {
	// H=030 E=025 R=051 E=025 blank blank
	assert.Equal(t, uint64(0302551256060), Pack("HERE  "))
	assert.Equal(t, Pack("HERE  "), Pack("HERE"), "short chunks are padded with blanks")
	assert.Equal(t, uint64(0606060606060), Pack(""))
	assert.Equal(t, Pack("A     "), Pack("A?"), "unknown characters pack as blanks")
}

func TestChunks(t *testing.T) {
	assert.Equal(t, []string{"HERE  "}, Chunks("HERE"))
	assert.Equal(t, []string{"ALWAYS"}, Chunks("ALWAYS"))
	assert.Equal(t, []string{"SOMETH", "ING   "}, Chunks("SOMETHING"))
	assert.Equal(t, []string{"      "}, Chunks(""))
}

func TestLastChunk(t *testing.T) {
	assert.Equal(t, Pack("HERE  "), LastChunk("HERE"))
	assert.Equal(t, Pack("ING   "), LastChunk("SOMETHING"))
	assert.Equal(t, Pack("ABCDEF"), LastChunk("XXXXXXABCDEF"))
}

func TestHashRange(t *testing.T) {
	for _, w := range []string{"YOU", "MOTHER", "FATHER", "EVERYBODY", "HERE", "123456"} {
		h := Hash(LastChunk(w), 2)
		assert.True(t, h >= 0 && h < 4, "hash of %s = %d", w, h)
	}
	assert.Panics(t, func() { Hash(0, 0) })
	assert.Panics(t, func() { Hash(0, 16) })
}
