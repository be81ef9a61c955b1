package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memoryRule = "(MEMORY MY (0 = A) (0 = B) (0 = C) (0 = D))"

func TestLoadDoctor(t *testing.T) {
	sc, err := LoadDoctor()
	require.NoError(t, err)

	assert.Equal(t, "HOW DO YOU DO. PLEASE TELL ME YOUR PROBLEM", strings.Join(sc.Greeting, " "))
	require.NotNil(t, sc.None)
	require.NotNil(t, sc.Memory)
	assert.Equal(t, "MY", sc.Memory.Keyword)
	assert.Len(t, sc.Memory.Transforms, MemorySlots)
	assert.NotContains(t, sc.Rules, NoneKey)
	assert.NotContains(t, sc.Rules, MemoryKey)

	tests := []struct {
		keyword    string
		kind       Kind
		substitute string
		precedence int
		link       string
	}{
		{"SORRY", Vanilla, "", 0, ""},
		{"DONT", Substitution, "DON'T", 0, ""},
		{"ALIKE", Equivalence, "", 10, "DIT"},
		{"DREAMED", Equivalence, "DREAMT", 4, "DREAMT"},
		{"EVERYBODY", Equivalence, "", 2, "EVERYONE"},
		{"MOM", Tagged, "MOTHER", 0, ""},
		{"FEEL", Tagged, "", 0, ""},
		{"YOU'RE", PreTransform, "I'M", 0, "YOU"},
		{"I'M", PreTransform, "YOU'RE", 0, "I"},
		{"MY", Vanilla, "YOUR", 2, ""},
		{"COMPUTER", Vanilla, "", 50, ""},
		{"ME", Substitution, "YOU", 0, ""},
	}
	for _, tt := range tests {
		r, ok := sc.Rules[tt.keyword]
		if !assert.True(t, ok, "rule %s", tt.keyword) {
			continue
		}
		assert.Equal(t, tt.kind, r.Kind, "kind of %s", tt.keyword)
		assert.Equal(t, tt.substitute, r.Substitute, "substitute of %s", tt.keyword)
		assert.Equal(t, tt.precedence, r.Precedence, "precedence of %s", tt.keyword)
		assert.Equal(t, tt.link, r.Link, "link of %s", tt.keyword)
	}

	assert.Equal(t, []string{"MOTHER", "MOM", "DAD", "FATHER", "SISTER", "BROTHER", "WIFE", "CHILDREN"}, sc.Tags["FAMILY"])
	assert.Equal(t, []string{"MOTHER", "FATHER"}, sc.Tags["NOUN"])
	assert.Equal(t, []string{"FEEL", "THINK", "BELIEVE", "WISH"}, sc.Tags["BELIEF"])

	sum := sc.Summary()
	assert.Empty(t, sum.Links, "DOCTOR links should all resolve")
	assert.Equal(t, len(sc.Rules), sum.Rules)
	assert.Len(t, sum.Keywords, sum.Rules)
	assert.Equal(t, []string{"SORRY", "DONT", "CANT", "WONT"}, sum.Keywords[:4])
}

func TestLoadPatterns(t *testing.T) {
	sc, err := LoadDoctor()
	require.NoError(t, err)

	i := sc.Rules["I"]
	assert.Equal(t, "(0 YOU (* WANT NEED) 0)", i.Transforms[0].Decomposition.String())
	assert.Equal(t, "(0 YOU ARE 0 (* SAD UNHAPPY DEPRESSED SICK) 0)", i.Transforms[1].Decomposition.String())
	assert.Equal(t, "(0 YOU (/ BELIEF) YOU 0)", i.Transforms[4].Decomposition.String())
	assert.Equal(t, Link, i.Transforms[3].Reassembly[0].Kind)
	assert.Equal(t, "WAS", i.Transforms[3].Reassembly[0].Link)

	like := sc.Rules["LIKE"]
	assert.Equal(t, NewKey, like.Transforms[1].Reassembly[0].Kind)

	// A trailing (=WHAT) applies to any input.
	why := sc.Rules["WHY"]
	last := why.Transforms[len(why.Transforms)-1]
	assert.Equal(t, Pattern{{Kind: Any}}, last.Decomposition)
	assert.Equal(t, Template{Kind: Link, Link: "WHAT"}, last.Reassembly[0])

	pre := sc.Rules["YOU'RE"].Transforms[0].Reassembly[0]
	assert.Equal(t, Template{Kind: Pre, Words: []string{"I", "ARE", "3"}, Link: "YOU"}, pre)

	mem := sc.Memory.Transforms[3]
	assert.Equal(t, "(0 YOUR 0)", mem.Decomposition.String())
	assert.Equal(t, "DOES THAT HAVE ANYTHING TO DO WITH THE FACT THAT YOUR 3", strings.Join(mem.Reassembly[0].Words, " "))
}

func TestLoadCountSlots(t *testing.T) {
	sc, err := Load("t", "(HI) (K ((1 K 2) (X))) (NONE ((0) (N)))"+memoryRule)
	require.NoError(t, err)
	p := sc.Rules["K"].Transforms[0].Decomposition
	assert.Equal(t, Pattern{{Kind: Count, N: 1}, {Kind: Literal, Word: "K"}, {Kind: Count, N: 2}}, p)
}

func TestLoadLookup(t *testing.T) {
	sc, err := Load("t", "(HI) (A (=NONE)) (NONE ((0) (N)))"+memoryRule)
	require.NoError(t, err)
	r, ok := sc.Lookup(NoneKey)
	require.True(t, ok)
	assert.Same(t, sc.None, r)
	_, ok = sc.Lookup(MemoryKey)
	assert.False(t, ok)
	assert.Equal(t, []string{"A"}, sc.Keywords())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "empty script"},
		{"unbalanced", "(HI) (A ((0) (X))", "unterminated list"},
		{"greeting", "((HI))", "greeting"},
		{"stray symbol", "(HI) FOO", "outside a rule"},
		{"missing keyword", "(HI) ((0) (X))" + memoryRule, "missing keyword"},
		{"no none", "(HI) (A ((0) (X)))" + memoryRule, "no NONE rule"},
		{"no memory", "(HI) (NONE ((0) (X)))", "no MEMORY rule"},
		{"three memories", "(HI) (NONE ((0) (X))) (MEMORY MY (0 = A) (0 = B) (0 = C))", "exactly 4"},
		{"memory without =", "(HI) (NONE ((0) (X))) (MEMORY MY (0 A) (0 = B) (0 = C) (0 = D))", "pattern = reassembly"},
		{"dlist transform", "(HI) (A DLIST(/X) ((0) (Y)))" + memoryRule, "DLIST rule cannot have transformations"},
		{"dlist syntax", "(HI) (A DLIST(X))" + memoryRule, "DLIST expects"},
		{"empty rule", "(HI) (A)" + memoryRule, "has no substitution"},
		{"dangling =", "(HI) (A =)" + memoryRule, "substitute word"},
		{"bad group", "(HI) (A ((0 (+ B) 0) (X)))" + memoryRule, "must start with * or /"},
		{"two tags", "(HI) (A ((0 (/ B C) 0) (X)))" + memoryRule, "must name one tag"},
		{"empty reassembly", "(HI) (A ((0) ()))" + memoryRule, "empty reassembly"},
		{"bad pre", "(HI) (A ((0) (PRE (X))))" + memoryRule, "PRE expects"},
		{"duplicate", "(HI) (A = B) (A = C)" + memoryRule, "duplicate rule"},
		{"none link", "(HI) (NONE (=A))" + memoryRule, "NONE rule must have transformations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("t", tt.text)
			require.Error(t, err)
			var serr *Error
			assert.True(t, errors.As(err, &serr), "expected *script.Error, got %T", err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "load script t")
		})
	}
}
