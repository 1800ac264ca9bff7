// Package annotate turns an utterance into annotated tokens: part of speech,
// lemma, synonyms, inflections and semantic tags.
package annotate

import (
	"strings"

	"github.com/appengine-ltd/command-it/internal/lexicon"
)

// Tag is a set of semantic markers on a token.
type Tag uint8

const (
	Direction Tag = 1 << iota
	Color
	Numeral
	Particle
	Unit
)

func (t Tag) Has(flag Tag) bool { return t&flag != 0 }

func (t Tag) String() string {
	var parts []string
	for _, f := range []struct {
		tag  Tag
		name string
	}{{Direction, "direction"}, {Color, "color"}, {Numeral, "numeral"}, {Particle, "particle"}, {Unit, "unit"}} {
		if t.Has(f.tag) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, ",")
}

// Token is one annotated word. Tokens are values and are never modified once
// Annotate returns them.
type Token struct {
	Text string
	// Surface is the text as typed when spelling correction replaced it.
	Surface     string
	Lemma       string
	POS         lexicon.POS
	Synonyms    []string
	Inflections []string
	Tags        Tag
}

func (t Token) Is(pos lexicon.POS) bool { return t.POS == pos }

// Quoted reports whether the token is a quoted literal.
func (t Token) Quoted() bool { return lexicon.IsQuoted(t.Text) }

// Vocabulary names words that must not be spelling corrected, typically the
// catalog's own names.
type Vocabulary interface {
	Mentions(word string) bool
}

// Dictionary knows real words beyond the lexicon. Words it knows are never
// spelling corrected.
type Dictionary interface {
	Knows(word string) bool
}

const (
	DefaultMaxSynonyms = 6
	DefaultSenses      = 2
)

type Annotator struct {
	Lex        *lexicon.Lexicon
	Tagger     lexicon.Tagger
	Thesaurus  lexicon.Thesaurus
	Lemmatizer lexicon.Lemmatizer
	// Dictionary is optional.
	Dictionary Dictionary
	// MaxSynonyms caps synonyms per token; Senses limits lookups to the most
	// frequent senses.
	MaxSynonyms int
	Senses      int
	// Correct enables spelling correction of out-of-vocabulary words.
	Correct bool
}

// New returns an annotator backed entirely by lex.
func New(lex *lexicon.Lexicon) *Annotator {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Annotator{
		Lex:         lex,
		Tagger:      lex,
		Thesaurus:   lex,
		Lemmatizer:  lex,
		MaxSynonyms: DefaultMaxSynonyms,
		Senses:      DefaultSenses,
		Correct:     true,
	}
}

// Annotate tags, corrects and enriches every token of text. vocab may be nil.
func (a *Annotator) Annotate(text string, vocab Vocabulary) []Token {
	tagged := a.Tagger.Tag(text)
	head := a.head(tagged)
	tokens := make([]Token, 0, len(tagged))
	for i, tg := range tagged {
		tok := Token{Text: tg.Text, POS: tg.POS}
		if a.Correct && a.correctable(tok, vocab) {
			if fixed, ok := a.Lex.Correct(tok.Text); ok && a.accept(fixed, i == head, vocab) {
				tok.Surface = tok.Text
				tok.Text = fixed
				tok.POS = a.Lex.TagWord(fixed)
			}
		}
		tokens = append(tokens, tok)
	}

	tokens = a.mergeNumbers(tokens)

	for i := range tokens {
		a.retag(tokens, i)
	}
	for i := range tokens {
		a.enrich(&tokens[i], i, tokens)
	}
	return tokens
}

func (a *Annotator) correctable(tok Token, vocab Vocabulary) bool {
	if !tok.POS.Open() && tok.POS != lexicon.Other {
		return false
	}
	if tok.Quoted() || a.Lex.Known(tok.Text) || a.Lex.IsNumeral(tok.Text) {
		return false
	}
	if a.Dictionary != nil && a.Dictionary.Knows(tok.Text) {
		return false
	}
	return vocab == nil || !vocab.Mentions(tok.Text)
}

// accept keeps a correction only when it lands on a catalog word, or on a
// verb or direction in head position. Elsewhere an unknown word is more likely
// a real word the lexicon lacks than a typo.
func (a *Annotator) accept(fixed string, head bool, vocab Vocabulary) bool {
	if vocab != nil && vocab.Mentions(fixed) {
		return true
	}
	return head && (a.Lex.HasVerbSense(fixed) || a.Lex.IsDirection(fixed))
}

// head is the index of the first token that is neither punctuation nor a
// filler, or -1.
func (a *Annotator) head(tagged []lexicon.Tagged) int {
	for i, tg := range tagged {
		if tg.POS == lexicon.Punctuation || a.Lex.IsFiller(tg.Text) {
			continue
		}
		return i
	}
	return -1
}

// mergeNumbers joins spelled-out numbers that span several words into one
// NUMBER token: "twenty five", "one hundred and two".
func (a *Annotator) mergeNumbers(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !a.isNumberWord(tok.Text) {
			out = append(out, tok)
			continue
		}
		words := []string{tok.Text}
		last := tok.Text
		j := i + 1
		for j < len(tokens) {
			next := tokens[j].Text
			if lexicon.IsNumberConnector(next) && a.Lex.NumberKind(last) == lexicon.Scale &&
				j+1 < len(tokens) && a.isNumberWord(tokens[j+1].Text) && !(a.Lex.NumberKind(tokens[j+1].Text) == lexicon.Scale) {
				words = append(words, next, tokens[j+1].Text)
				last = tokens[j+1].Text
				j += 2
				continue
			}
			if a.isNumberWord(next) && a.Lex.ContinuesNumber(last, next) {
				words = append(words, next)
				last = next
				j++
				continue
			}
			break
		}
		tok.Text = strings.Join(words, " ")
		tok.POS = lexicon.Number
		out = append(out, tok)
		i = j - 1
	}
	return out
}

func (a *Annotator) isNumberWord(text string) bool {
	return a.Lex.NumberKind(text) != lexicon.NotNumber
}

// retag applies the two deterministic corrections to the tagger's output:
// direction words are adverbs, and a leading noun with a verb sense is the
// imperative verb.
func (a *Annotator) retag(tokens []Token, i int) {
	tok := &tokens[i]
	if tok.Quoted() {
		return
	}
	if a.Lex.IsNumeral(tok.Text) || (tok.POS == lexicon.Number) {
		if _, ok := a.Lex.ParseNumber(tok.Text); ok {
			tok.POS = lexicon.Number
			return
		}
	}
	if a.Lex.IsDirection(tok.Text) {
		tok.POS = lexicon.Adverb
	}
	if i == 0 && tok.POS == lexicon.Noun && a.Lex.HasVerbSense(tok.Text) {
		tok.POS = lexicon.Verb
	}
}

func (a *Annotator) enrich(tok *Token, i int, tokens []Token) {
	text := tok.Text
	switch {
	case tok.Quoted():
		tok.Lemma = text
		return
	case tok.POS == lexicon.Number:
		tok.Lemma = text
		tok.Tags |= Numeral
		return
	}

	if a.Lex.IsDirection(text) {
		tok.Tags |= Direction
	}
	if a.Lex.IsColor(text) {
		tok.Tags |= Color
	}
	if a.Lex.IsParticle(text) {
		tok.Tags |= Particle
	}
	if tok.POS == lexicon.Noun && i > 0 && tokens[i-1].POS == lexicon.Number && a.Lex.IsUnit(text) {
		tok.Tags |= Unit
	}

	if !tok.POS.Open() {
		tok.Lemma = text
		return
	}
	tok.Lemma = a.Lemmatizer.Lemma(text, tok.POS)
	tok.Synonyms = a.synonyms(tok.Lemma, tok.POS)
	if tok.POS == lexicon.Adverb && tok.Tags.Has(Direction) {
		// directions also act as verbs ("forward 50")
		tok.Synonyms = capped(appendUnique(tok.Synonyms, a.synonyms(tok.Lemma, lexicon.Verb)...), a.MaxSynonyms)
	}
	if tok.POS == lexicon.Noun || tok.POS == lexicon.Verb {
		tok.Inflections = a.Lex.Inflections(tok.Lemma, tok.POS)
	}
}

func (a *Annotator) synonyms(word string, pos lexicon.POS) []string {
	var out []string
	for _, s := range a.Thesaurus.Synonyms(word, pos, a.Senses) {
		s = strings.ReplaceAll(s, "_", " ")
		if s != word {
			out = appendUnique(out, s)
		}
	}
	return capped(out, a.MaxSynonyms)
}

func capped(list []string, n int) []string {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}

func appendUnique(list []string, words ...string) []string {
	for _, w := range words {
		found := false
		for _, v := range list {
			if v == w {
				found = true
				break
			}
		}
		if !found {
			list = append(list, w)
		}
	}
	return list
}
