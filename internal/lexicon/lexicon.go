// Package lexicon is the English lexical database behind the annotator: a
// tokenizer and coarse tagger, sense-ordered synonyms, a hypernym hierarchy
// used to discover closed semantic classes (directions, colors), lemmas and
// inflections, and number words.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var embedded []byte

// Roots of the hypernym closures used for semantic tags.
const (
	DirectionRoot = "direction"
	ColorRoot     = "color"
)

var ErrInvalidLexicon = errors.New("invalid lexicon")

// Tagged is one token with its coarse part of speech.
type Tagged struct {
	Text string
	POS  POS
}

// Tagger is the tokenizer/POS-tagger contract: tag(text) -> [(token, pos)].
type Tagger interface {
	Tag(text string) []Tagged
}

// Lemmatizer maps a word to its base form for a part of speech.
type Lemmatizer interface {
	Lemma(word string, pos POS) string
}

// Thesaurus is the lexical-relation contract: synonyms of a word restricted to
// its first senses of the given part of speech, most frequent first.
type Thesaurus interface {
	Synonyms(word string, pos POS, senses int) []string
}

type Sense struct {
	POS       POS
	Synonyms  []string
	Hypernyms []string
}

type verbForms struct {
	Third  string `yaml:"third"`
	Past   string `yaml:"past"`
	Gerund string `yaml:"gerund"`
}

type senseFile struct {
	POS       string   `yaml:"pos"`
	Synonyms  []string `yaml:"synonyms"`
	Hypernyms []string `yaml:"hypernyms"`
}

type lexiconFile struct {
	Closed struct {
		Determiners  []string `yaml:"determiners"`
		Prepositions []string `yaml:"prepositions"`
		Pronouns     []string `yaml:"pronouns"`
		Conjunctions []string `yaml:"conjunctions"`
		Fillers      []string `yaml:"fillers"`
	} `yaml:"closed"`
	Particles []string `yaml:"particles"`
	Units     []string `yaml:"units"`
	Abandon   []string `yaml:"abandon"`
	Numbers   struct {
		Ones   map[string]int `yaml:"ones"`
		Tens   map[string]int `yaml:"tens"`
		Scales map[string]int `yaml:"scales"`
	} `yaml:"numbers"`
	Irregular struct {
		Verbs map[string]verbForms `yaml:"verbs"`
		Nouns map[string]string    `yaml:"nouns"`
	} `yaml:"irregular"`
	Words map[string][]senseFile `yaml:"words"`
}

type set map[string]struct{}

func newSet(words []string) set {
	s := make(set, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

func (s set) has(w string) bool {
	_, ok := s[w]
	return ok
}

// Lexicon is immutable once loaded and safe for concurrent use.
type Lexicon struct {
	words map[string][]Sense
	vocab []string

	determiners  set
	prepositions set
	pronouns     set
	conjunctions set
	fillers      set
	particles    set
	units        set
	abandon      []string

	ones   map[string]int
	tens   map[string]int
	scales map[string]int

	verbForms   map[string]verbForms
	verbLemmas  map[string]string
	nounPlurals map[string]string
	nounLemmas  map[string]string

	hyponyms   map[string][]string
	directions set
	colors     set
}

var defaultLexicon = sync.OnceValues(func() (*Lexicon, error) {
	return Parse(embedded)
})

// Default returns the embedded lexicon. It is parsed once per process.
func Default() *Lexicon {
	lex, err := defaultLexicon()
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return lex
}

// Load reads a lexicon in the embedded file's YAML format.
func Load(r io.Reader) (*Lexicon, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLexicon, err)
	}
	if len(f.Words) == 0 {
		return nil, fmt.Errorf("%w: no words", ErrInvalidLexicon)
	}

	lex := &Lexicon{
		words:        make(map[string][]Sense, len(f.Words)),
		determiners:  newSet(f.Closed.Determiners),
		prepositions: newSet(f.Closed.Prepositions),
		pronouns:     newSet(f.Closed.Pronouns),
		conjunctions: newSet(f.Closed.Conjunctions),
		fillers:      newSet(f.Closed.Fillers),
		particles:    newSet(f.Particles),
		units:        newSet(f.Units),
		ones:         f.Numbers.Ones,
		tens:         f.Numbers.Tens,
		scales:       f.Numbers.Scales,
		verbForms:    make(map[string]verbForms, len(f.Irregular.Verbs)),
		verbLemmas:   make(map[string]string),
		nounPlurals:  make(map[string]string, len(f.Irregular.Nouns)),
		nounLemmas:   make(map[string]string, len(f.Irregular.Nouns)),
		hyponyms:     make(map[string][]string),
	}
	for _, phrase := range f.Abandon {
		if p := Normalise(phrase); p != "" {
			lex.abandon = append(lex.abandon, p)
		}
	}

	for word, senses := range f.Words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		for _, s := range senses {
			pos := ParsePOS(s.POS)
			if !pos.Open() {
				return nil, fmt.Errorf("%w: word %q has unsupported pos %q", ErrInvalidLexicon, word, s.POS)
			}
			sense := Sense{POS: pos, Synonyms: cleanWords(s.Synonyms, word), Hypernyms: cleanWords(s.Hypernyms, word)}
			lex.words[word] = append(lex.words[word], sense)
			for _, h := range sense.Hypernyms {
				lex.hyponyms[h] = appendUnique(lex.hyponyms[h], word)
			}
		}
	}
	lex.vocab = make([]string, 0, len(lex.words))
	for w := range lex.words {
		lex.vocab = append(lex.vocab, w)
	}
	sort.Strings(lex.vocab)
	for h := range lex.hyponyms {
		sort.Strings(lex.hyponyms[h])
	}

	for lemma, forms := range f.Irregular.Verbs {
		lex.verbForms[lemma] = forms
		for _, form := range []string{forms.Third, forms.Past, forms.Gerund} {
			if form != "" {
				lex.verbLemmas[form] = lemma
			}
		}
	}
	for singular, plural := range f.Irregular.Nouns {
		lex.nounPlurals[singular] = plural
		lex.nounLemmas[plural] = singular
	}

	lex.directions = newSet(lex.Hyponyms(DirectionRoot))
	lex.colors = newSet(lex.Hyponyms(ColorRoot))
	return lex, nil
}

// cleanWords drops blanks, self references and multi-word entries (written
// with underscores in the file); the annotator only works with single words.
func cleanWords(words []string, self string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || w == self || strings.Contains(w, "_") {
			continue
		}
		out = appendUnique(out, w)
	}
	return out
}

func appendUnique(list []string, w string) []string {
	for _, v := range list {
		if v == w {
			return list
		}
	}
	return append(list, w)
}

// Known reports whether the word (not a derived form) is in the database,
// either as an open-class entry or in a closed class.
func (l *Lexicon) Known(word string) bool {
	if _, ok := l.words[word]; ok {
		return true
	}
	if l.closedPOS(word) != Other || l.fillers.has(word) || l.conjunctions.has(word) {
		return true
	}
	_, isNum := l.numberWord(word)
	return isNum
}

// Senses returns the senses of word in frequency order.
func (l *Lexicon) Senses(word string) []Sense {
	return l.words[word]
}

// HasSense reports whether word has at least one sense with the given POS.
func (l *Lexicon) HasSense(word string, pos POS) bool {
	for _, s := range l.words[word] {
		if s.POS == pos {
			return true
		}
	}
	return false
}

func (l *Lexicon) HasVerbSense(word string) bool {
	if l.HasSense(word, Verb) {
		return true
	}
	lemma := l.Lemma(word, Verb)
	return lemma != word && l.HasSense(lemma, Verb)
}

// Synonyms returns synonyms from the first n senses of word with the given
// POS, in sense order, without duplicates. n <= 0 means every sense.
func (l *Lexicon) Synonyms(word string, pos POS, n int) []string {
	var out []string
	seen := 0
	for _, s := range l.words[word] {
		if s.POS != pos {
			continue
		}
		if n > 0 && seen >= n {
			break
		}
		seen++
		for _, syn := range s.Synonyms {
			out = appendUnique(out, syn)
		}
	}
	return out
}

// Hyponyms returns every word whose hypernym chain reaches root, sorted.
func (l *Lexicon) Hyponyms(root string) []string {
	seen := map[string]bool{}
	queue := []string{root}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, w := range l.hyponyms[cur] {
			if seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
			queue = append(queue, w)
		}
	}
	sort.Strings(out)
	return out
}

// IsDirection reports membership in the hyponym closure of "direction",
// accepting -ward/-wards variants of members.
func (l *Lexicon) IsDirection(word string) bool {
	if l.directions.has(word) {
		return true
	}
	stem := DirectionStem(word)
	return stem != word && (l.directions.has(stem) || l.directions.has(stem+"ward"))
}

func (l *Lexicon) IsColor(word string) bool {
	return l.colors.has(word)
}

func (l *Lexicon) IsParticle(word string) bool {
	return l.particles.has(word)
}

// IsUnit reports whether word (or its singular) measures a quantity.
func (l *Lexicon) IsUnit(word string) bool {
	return l.units.has(word) || l.units.has(l.Lemma(word, Noun))
}

func (l *Lexicon) IsFiller(word string) bool {
	return l.fillers.has(word)
}

// IsAbandon reports whether the whole utterance is a request to drop the
// current exchange ("cancel", "never mind").
func (l *Lexicon) IsAbandon(text string) bool {
	n := strings.Trim(Normalise(text), ".!?, ")
	for _, p := range l.abandon {
		if n == p {
			return true
		}
	}
	return false
}

// DirectionStem strips a trailing "wards" or "ward".
func DirectionStem(word string) string {
	switch {
	case strings.HasSuffix(word, "wards") && len(word) > len("wards"):
		return strings.TrimSuffix(word, "wards")
	case strings.HasSuffix(word, "ward") && len(word) > len("ward"):
		return strings.TrimSuffix(word, "ward")
	default:
		return word
	}
}

// DirectionVariants returns the word, its stem, and the canonical -ward and
// -wards forms of the stem.
func DirectionVariants(word string) []string {
	stem := DirectionStem(word)
	out := []string{word}
	out = appendUnique(out, stem)
	out = appendUnique(out, stem+"ward")
	out = appendUnique(out, stem+"wards")
	return out
}

func (l *Lexicon) closedPOS(word string) POS {
	switch {
	case l.determiners.has(word):
		return Determiner
	case l.pronouns.has(word):
		return Pronoun
	case l.prepositions.has(word):
		return Preposition
	default:
		return Other
	}
}
