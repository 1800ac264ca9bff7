package lexicon

import "strings"

// Tag tokenizes text and tags every token. It is the default Tagger.
func (l *Lexicon) Tag(text string) []Tagged {
	tokens := Tokenize(text)
	out := make([]Tagged, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, Tagged{Text: tok, POS: l.TagWord(tok)})
	}
	return out
}

// TagWord assigns the coarse POS of a single token: closed classes and
// numerals first, then the most frequent sense of the word or of its lemma,
// then suffix heuristics. Unknown words default to NOUN.
func (l *Lexicon) TagWord(tok string) POS {
	switch {
	case tok == "":
		return Other
	case IsQuoted(tok):
		return Other
	case isPunct(tok):
		return Punctuation
	case l.IsNumeral(tok):
		return Number
	}
	if pos := l.closedPOS(tok); pos != Other {
		return pos
	}
	if l.conjunctions.has(tok) || l.fillers.has(tok) {
		return Other
	}
	if senses := l.words[tok]; len(senses) > 0 {
		return senses[0].POS
	}

	order := []POS{Verb, Noun}
	if strings.HasSuffix(tok, "s") {
		order = []POS{Noun, Verb}
	}
	for _, pos := range order {
		if lemma := l.Lemma(tok, pos); lemma != tok && l.HasSense(lemma, pos) {
			return pos
		}
	}
	if _, ok := l.verbLemmas[tok]; ok {
		return Verb
	}
	if _, ok := l.nounLemmas[tok]; ok {
		return Noun
	}

	switch {
	case strings.HasSuffix(tok, "ly") && len(tok) > 4:
		return Adverb
	case (strings.HasSuffix(tok, "ing") || strings.HasSuffix(tok, "ed")) && len(tok) > 4:
		return Verb
	default:
		return Noun
	}
}
