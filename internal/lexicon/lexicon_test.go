package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLexiconLoads(t *testing.T) {
	lex := Default()
	require.NotNil(t, lex)
	assert.True(t, lex.HasVerbSense("move"))
	assert.True(t, lex.HasVerbSense("switch"))
	assert.False(t, lex.HasVerbSense("conditioner"))
}

func TestParseRejectsBrokenInput(t *testing.T) {
	_, err := Parse([]byte("words: {}"))
	require.ErrorIs(t, err, ErrInvalidLexicon)

	_, err = Parse([]byte("words:\n  x:\n    - {pos: determiner}\n"))
	require.ErrorIs(t, err, ErrInvalidLexicon)

	_, err = Load(strings.NewReader("words: [unterminated"))
	require.ErrorIs(t, err, ErrInvalidLexicon)
}

func TestDirectionsComeFromHierarchy(t *testing.T) {
	lex := Default()
	for _, w := range []string{"forward", "backward", "back", "left", "right", "up", "down", "north", "forwards", "upwards"} {
		assert.Truef(t, lex.IsDirection(w), "%s should be a direction", w)
	}
	for _, w := range []string{"light", "move", "toward", "red"} {
		assert.Falsef(t, lex.IsDirection(w), "%s should not be a direction", w)
	}
	assert.Contains(t, lex.Hyponyms(DirectionRoot), "cardinal")
	assert.Contains(t, lex.Hyponyms(DirectionRoot), "west")
}

func TestColors(t *testing.T) {
	lex := Default()
	assert.True(t, lex.IsColor("red"))
	assert.True(t, lex.IsColor("black"))
	assert.False(t, lex.IsColor("bright"))
}

func TestSynonymsRespectSenseOrder(t *testing.T) {
	lex := Default()
	syns := lex.Synonyms("switch", Verb, 2)
	require.NotEmpty(t, syns)
	assert.Equal(t, "flip", syns[0])
	assert.Contains(t, syns, "turn")

	// the third verb sense of turn (become, change) is out of reach with n=1
	assert.NotContains(t, lex.Synonyms("turn", Verb, 1), "become")
	assert.Contains(t, lex.Synonyms("turn", Verb, 0), "become")
	assert.Empty(t, lex.Synonyms("conditioner", Verb, 2))
}

func TestLemma(t *testing.T) {
	lex := Default()
	tests := []struct {
		word string
		pos  POS
		want string
	}{
		{word: "moved", pos: Verb, want: "move"},
		{word: "moving", pos: Verb, want: "move"},
		{word: "went", pos: Verb, want: "go"},
		{word: "stopping", pos: Verb, want: "stop"},
		{word: "turns", pos: Verb, want: "turn"},
		{word: "lights", pos: Noun, want: "light"},
		{word: "feet", pos: Noun, want: "foot"},
		{word: "steps", pos: Noun, want: "step"},
		{word: "widgets", pos: Noun, want: "widget"},
		{word: "glass", pos: Noun, want: "glass"},
		{word: "red", pos: Adjective, want: "red"},
	}
	for _, tc := range tests {
		if got := lex.Lemma(tc.word, tc.pos); got != tc.want {
			t.Fatalf("Lemma(%q, %s)=%q want=%q", tc.word, tc.pos, got, tc.want)
		}
	}
}

func TestInflections(t *testing.T) {
	lex := Default()
	assert.Equal(t, []string{"moves", "moved", "moving"}, lex.Inflections("move", Verb))
	assert.Equal(t, []string{"stops", "stopped", "stopping"}, lex.Inflections("stop", Verb))
	assert.Equal(t, []string{"turns", "turned", "turning"}, lex.Inflections("turn", Verb))
	assert.Equal(t, []string{"goes", "went", "going"}, lex.Inflections("go", Verb))
	assert.Equal(t, []string{"opens", "opened", "opening"}, lex.Inflections("open", Verb))
	assert.Equal(t, []string{"boxes"}, lex.Inflections("box", Noun))
	assert.Equal(t, []string{"batteries"}, lex.Inflections("battery", Noun))
	assert.Equal(t, []string{"feet"}, lex.Inflections("foot", Noun))
	assert.Nil(t, lex.Inflections("red", Adjective))
}

func TestParseNumber(t *testing.T) {
	lex := Default()
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{in: "50", want: 50, ok: true},
		{in: "3.5", want: 3.5, ok: true},
		{in: "fifty", want: 50, ok: true},
		{in: "twenty five", want: 25, ok: true},
		{in: "twenty-five", want: 25, ok: true},
		{in: "one hundred and two", want: 102, ok: true},
		{in: "two thousand three hundred", want: 2300, ok: true},
		{in: "zero", want: 0, ok: true},
		{in: "-10", want: -10, ok: true},
		{in: "-0.5", want: -0.5, ok: true},
		{in: "inf", ok: false},
		{in: "nan", ok: false},
		{in: "banana", ok: false},
		{in: "and", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range tests {
		got, ok := lex.ParseNumber(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParseNumber(%q)=(%v,%v) want=(%v,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "Move forward 3.5 steps.", want: []string{"move", "forward", "3.5", "steps", "."}},
		{in: `Say "Hello World" now!`, want: []string{"say", `"Hello World"`, "now", "!"}},
		{in: "turn_light-on", want: []string{"turn", "light", "on"}},
		{in: "set volume to -10", want: []string{"set", "volume", "to", "-10"}},
		{in: "x-10", want: []string{"x", "10"}},
		{in: "- 10", want: []string{"10"}},
		{in: "   ", want: nil},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Tokenize(tc.in), tc.in)
	}
	assert.Equal(t, "Hello World", Unquote(`"Hello World"`))
	assert.Equal(t, "turn -5 degrees", Normalise("Turn -5 degrees"))
	assert.Equal(t, "well known", Normalise("well-known"))
}

func TestIsNumeral(t *testing.T) {
	lex := Default()
	for _, w := range []string{"5", "-5", "3.5", "fifty", "hundred"} {
		assert.True(t, lex.IsNumeral(w), w)
	}
	for _, w := range []string{"nan", "inf", "-", "five5", "turtle"} {
		assert.False(t, lex.IsNumeral(w), w)
	}
}

func TestTag(t *testing.T) {
	lex := Default()
	got := lex.Tag("turn the lights on, please")
	want := []POS{Noun, Determiner, Noun, Preposition, Punctuation, Other}
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equalf(t, want[i], got[i].POS, "token %q", got[i].Text)
	}
	assert.Equal(t, Verb, lex.TagWord("moved"))
	assert.Equal(t, Number, lex.TagWord("fifty"))
	assert.Equal(t, Pronoun, lex.TagWord("it"))
	assert.Equal(t, Adverb, lex.TagWord("carefully"))
	assert.Equal(t, Noun, lex.TagWord("gizmo"))
}

func TestCorrect(t *testing.T) {
	lex := Default()
	got, ok := lex.Correct("foward")
	assert.True(t, ok)
	assert.Equal(t, "forward", got)

	got, ok = lex.Correct("deposit")
	assert.False(t, ok)
	assert.Equal(t, "deposit", got)

	_, ok = lex.Correct("fd")
	assert.False(t, ok)
	_, ok = lex.Correct("zzzzzzzz")
	assert.False(t, ok)
}

func TestIsAbandon(t *testing.T) {
	lex := Default()
	assert.True(t, lex.IsAbandon("Never mind."))
	assert.True(t, lex.IsAbandon("cancel"))
	assert.False(t, lex.IsAbandon("cancel the order"))
}

func TestDirectionVariants(t *testing.T) {
	assert.Equal(t, []string{"forwards", "for", "forward"}, DirectionVariants("forwards"))
	assert.Equal(t, []string{"left", "leftward", "leftwards"}, DirectionVariants("left"))
}
