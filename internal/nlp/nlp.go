// Package nlp backs the annotator with general English models for the words
// the embedded lexicon does not know: prose supplies part-of-speech tags and
// golem supplies lemmas and a dictionary of real words.
package nlp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"

	"github.com/appengine-ltd/command-it/internal/annotate"
	"github.com/appengine-ltd/command-it/internal/lexicon"
)

// alignWindow bounds how far ahead Tag looks for a prose token matching the
// next lexicon token.
const alignWindow = 4

// Tagger tags with the lexicon and consults prose only when a token is
// unknown to it. Lexicon tags always win for known words: imperative commands
// start with a verb, which general taggers often read as a noun.
type Tagger struct {
	Lex *lexicon.Lexicon
}

func NewTagger(lex *lexicon.Lexicon) *Tagger {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Tagger{Lex: lex}
}

func (t *Tagger) Tag(text string) []lexicon.Tagged {
	out := t.Lex.Tag(text)
	if !slices.ContainsFunc(out, t.unknown) {
		return out
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return out
	}
	toks := doc.Tokens()
	next := 0
	for i := range out {
		k := align(toks, next, out[i].Text)
		if k < 0 {
			continue
		}
		next = k + 1
		if !t.unknown(out[i]) {
			continue
		}
		if pos, ok := PennPOS(toks[k].Tag); ok {
			out[i].POS = pos
		}
	}
	return out
}

func (t *Tagger) unknown(tg lexicon.Tagged) bool {
	switch {
	case tg.POS == lexicon.Punctuation || tg.POS == lexicon.Number:
		return false
	case lexicon.IsQuoted(tg.Text):
		return false
	}
	w := tg.Text
	return !t.Lex.Known(w) && !t.Lex.HasVerbSense(w) && !t.Lex.Known(t.Lex.Lemma(w, lexicon.Noun))
}

// align finds the prose token for word at or shortly after from, or -1.
func align(toks []prose.Token, from int, word string) int {
	for k := from; k < len(toks) && k < from+alignWindow; k++ {
		if strings.EqualFold(toks[k].Text, word) {
			return k
		}
	}
	return -1
}

// PennPOS maps a Penn Treebank tag to the coarse POS. Cardinal numbers are
// left to the lexicon, which must be able to parse them.
func PennPOS(tag string) (lexicon.POS, bool) {
	switch {
	case strings.HasPrefix(tag, "NN"):
		return lexicon.Noun, true
	case strings.HasPrefix(tag, "VB"):
		return lexicon.Verb, true
	case strings.HasPrefix(tag, "JJ"):
		return lexicon.Adjective, true
	case strings.HasPrefix(tag, "RB"):
		return lexicon.Adverb, true
	case strings.HasPrefix(tag, "PRP"):
		return lexicon.Pronoun, true
	case tag == "DT" || tag == "PDT":
		return lexicon.Determiner, true
	case tag == "IN" || tag == "TO":
		return lexicon.Preposition, true
	default:
		return lexicon.Other, false
	}
}

// Lemmatizer prefers the lexicon and falls back to golem's English
// dictionary for words the lexicon has never seen.
type Lemmatizer struct {
	Lex   *lexicon.Lexicon
	golem *golem.Lemmatizer
}

// NewLemmatizer loads the English dictionary.
func NewLemmatizer(lex *lexicon.Lexicon) (*Lemmatizer, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	g, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemmas: %w", err)
	}
	return &Lemmatizer{Lex: lex, golem: g}, nil
}

func (l *Lemmatizer) Lemma(word string, pos lexicon.POS) string {
	if lemma := l.Lex.Lemma(word, pos); lemma != word || l.Lex.Known(word) {
		return lemma
	}
	return strings.ToLower(l.golem.Lemma(word))
}

// Knows reports whether word, in any inflection, is an English word.
func (l *Lemmatizer) Knows(word string) bool {
	return l.golem.InDict(word)
}

// Attach backs a with prose tagging and golem lemmas. Loading the dictionary
// takes a moment, so callers do it once per process.
func Attach(a *annotate.Annotator) error {
	lem, err := NewLemmatizer(a.Lex)
	if err != nil {
		return err
	}
	a.Tagger = NewTagger(a.Lex)
	a.Lemmatizer = lem
	a.Dictionary = lem
	return nil
}
