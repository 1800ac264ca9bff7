package nlp_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/command-it/internal/annotate"
	"github.com/appengine-ltd/command-it/internal/lexicon"
	"github.com/appengine-ltd/command-it/internal/nlp"
)

var loadLemmatizer = sync.OnceValues(func() (*nlp.Lemmatizer, error) {
	return nlp.NewLemmatizer(lexicon.Default())
})

func lemmatizer(t *testing.T) *nlp.Lemmatizer {
	t.Helper()
	l, err := loadLemmatizer()
	require.NoError(t, err)
	return l
}

type vocab map[string]bool

func (v vocab) Mentions(word string) bool { return v[word] }

func TestPennPOS(t *testing.T) {
	tests := []struct {
		tag  string
		want lexicon.POS
		ok   bool
	}{
		{"NN", lexicon.Noun, true},
		{"NNS", lexicon.Noun, true},
		{"VBZ", lexicon.Verb, true},
		{"JJR", lexicon.Adjective, true},
		{"RB", lexicon.Adverb, true},
		{"PRP$", lexicon.Pronoun, true},
		{"DT", lexicon.Determiner, true},
		{"IN", lexicon.Preposition, true},
		{"CD", lexicon.Other, false},
		{".", lexicon.Other, false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := nlp.PennPOS(tt.tag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaggerFillsUnknownWords(t *testing.T) {
	lex := lexicon.Default()
	tagged := nlp.NewTagger(lex).Tag("paint the enormous gazebo")
	require.Len(t, tagged, 4)
	assert.Equal(t, lex.TagWord("paint"), tagged[0].POS)
	assert.Equal(t, lexicon.Determiner, tagged[1].POS)
	assert.Equal(t, lexicon.Adjective, tagged[2].POS)
	assert.Equal(t, lexicon.Noun, tagged[3].POS)
}

func TestTaggerLeavesKnownUtterancesAlone(t *testing.T) {
	lex := lexicon.Default()
	for _, u := range []string{"forward 50", "turn left 90 degrees", `write "hello world"`} {
		assert.Equal(t, lex.Tag(u), nlp.NewTagger(lex).Tag(u), u)
	}
}

func TestLemmatizer(t *testing.T) {
	l := lemmatizer(t)
	assert.Equal(t, "goose", l.Lemma("geese", lexicon.Noun))
	assert.Equal(t, lexicon.Default().Lemma("moved", lexicon.Verb), l.Lemma("moved", lexicon.Verb))
	assert.True(t, l.Knows("turtle"))
	assert.True(t, l.Knows("radius"))
	assert.False(t, l.Knows("foward"))
}

func TestAttachStopsCorrectingRealWords(t *testing.T) {
	lex := lexicon.Default()
	catalogWords := vocab{"purple": true}

	plain := annotate.New(lex)
	fixed := plain.Annotate("move the turtle forward", catalogWords)
	require.Len(t, fixed, 4)
	assert.Equal(t, "purple", fixed[2].Text)

	a := annotate.New(lex)
	require.NoError(t, nlp.Attach(a))
	tokens := a.Annotate("move the turtle forward", catalogWords)
	require.Len(t, tokens, 4)
	assert.Equal(t, "turtle", tokens[2].Text)
	assert.Empty(t, tokens[2].Surface)
	assert.Equal(t, lexicon.Noun, tokens[2].POS)

	typo := a.Annotate("foward 10", nil)
	assert.Equal(t, "forward", typo[0].Text)
}
