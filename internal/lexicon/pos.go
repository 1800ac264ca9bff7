package lexicon

import "strings"

// POS is a coarse part-of-speech tag.
type POS int

const (
	Other POS = iota
	Noun
	Verb
	Adjective
	Adverb
	Number
	Determiner
	Preposition
	Pronoun
	Punctuation
)

var posNames = [...]string{
	Other:       "OTHER",
	Noun:        "NOUN",
	Verb:        "VERB",
	Adjective:   "ADJECTIVE",
	Adverb:      "ADVERB",
	Number:      "NUMBER",
	Determiner:  "DETERMINER",
	Preposition: "PREPOSITION",
	Pronoun:     "PRONOUN",
	Punctuation: "PUNCTUATION",
}

func (p POS) String() string {
	if p < 0 || int(p) >= len(posNames) {
		return "OTHER"
	}
	return posNames[p]
}

// Open reports whether the tag belongs to an open word class, the only ones
// that are lemmatised and synonymised.
func (p POS) Open() bool {
	switch p {
	case Noun, Verb, Adjective, Adverb:
		return true
	default:
		return false
	}
}

// ParsePOS accepts the lexicon file spellings (noun, verb, adj, adjective, adv,
// adverb) as well as the upper-case tag names.
func ParsePOS(s string) POS {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noun", "n":
		return Noun
	case "verb", "v":
		return Verb
	case "adjective", "adj", "a":
		return Adjective
	case "adverb", "adv", "r":
		return Adverb
	case "number", "num":
		return Number
	case "determiner", "det":
		return Determiner
	case "preposition", "prep":
		return Preposition
	case "pronoun", "pron":
		return Pronoun
	case "punctuation", "punct":
		return Punctuation
	default:
		return Other
	}
}
