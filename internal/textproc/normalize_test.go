package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(EnglishStopwords)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "lowercase and punctuation", input: "Fiction.", want: "fiction"},
		{name: "hyphen joins words", input: "Science-Fiction", want: "sciencefiction"},
		{name: "stop-words dropped", input: "The History of the World", want: "history world"},
		{name: "whitespace collapsed", input: "  Young   adult\tfiction\n", want: "young adult fiction"},
		{name: "symbols removed", input: "Love & War $5", want: "love war 5"},
		{name: "only stop-words", input: "Of The And", want: ""},
		{name: "accents kept", input: "Littérature française", want: "littérature française"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, n.Normalize(tc.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(EnglishStopwords)
	inputs := []string{
		"The Lord of the Rings: The Fellowship of the Ring",
		"Don't panic!",
		"Fiction, science fiction, general",
		"  ",
		"Ça ira — « révolution »",
		"It's a can't-miss read",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizeComposesUnicode(t *testing.T) {
	n := NewNormalizer(nil)
	decomposed := "Cafe\u0301"
	assert.Equal(t, "caf\u00e9", n.Normalize(decomposed))
}

func TestIsStopword(t *testing.T) {
	n := NewNormalizer(EnglishStopwords)
	assert.True(t, n.IsStopword("The"))
	assert.False(t, n.IsStopword("dragon"))
}
