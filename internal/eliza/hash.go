package eliza

import "fmt"

// ChunkSize is the number of characters in one machine word of text.
const ChunkSize = 6

// blank is the BCD code for a space.
const blank = 060

// bcd maps characters to the six-bit IBM 7090 BCD code.
var bcd = func() map[rune]uint64 {
	m := map[rune]uint64{
		'=': 013, '\'': 014, '+': 020, '.': 033, ')': 034, '-': 040,
		'$': 053, '*': 054, ' ': blank, '/': 061, ',': 073, '(': 074,
	}
	for i, r := range "0123456789" {
		m[r] = uint64(i)
	}
	for i, r := range "ABCDEFGHI" {
		m[r] = 021 + uint64(i)
	}
	for i, r := range "JKLMNOPQR" {
		m[r] = 041 + uint64(i)
	}
	for i, r := range "STUVWXYZ" {
		m[r] = 062 + uint64(i)
	}
	return m
}()

// Chunks splits word into six-character pieces, the last one padded
// with spaces.
func Chunks(word string) []string {
	rs := []rune(word)
	if len(rs) == 0 {
		return []string{"      "}
	}
	var out []string
	for len(rs) > 0 {
		n := min(ChunkSize, len(rs))
		c := make([]rune, ChunkSize)
		copy(c, rs[:n])
		for i := n; i < ChunkSize; i++ {
			c[i] = ' '
		}
		out = append(out, string(c))
		rs = rs[n:]
	}
	return out
}

func firstChunk(word string) string {
	return Chunks(word)[0]
}

// Pack encodes a six-character chunk as a 36-bit BCD word, first
// character in the high bits. Characters with no BCD code are packed as
// blanks.
func Pack(chunk string) uint64 {
	var d uint64
	n := 0
	for _, r := range chunk {
		if n == ChunkSize {
			break
		}
		code, ok := bcd[r]
		if !ok {
			code = blank
		}
		d = d<<6 | code
		n++
	}
	for ; n < ChunkSize; n++ {
		d = d<<6 | blank
	}
	return d
}

// LastChunk packs the last six-character chunk of word.
func LastChunk(word string) uint64 {
	c := Chunks(word)
	return Pack(c[len(c)-1])
}

// Hash is the mid-square hash of the 7094 HASH routine: clear the sign
// bit, square the 35-bit magnitude and take the middle n bits of the
// 70-bit product. Only the low 64 bits of the product are kept, which is
// enough for n up to 15.
func Hash(d uint64, n int) int {
	if n < 1 || n > 15 {
		panic(fmt.Sprintf("eliza: hash width %d out of range", n))
	}
	d &= 0377777777777
	d *= d
	d >>= 35 - n/2
	return int(d & (1<<n - 1))
}
