// Package intent assembles the verb/object/particle frame of an imperative
// utterance from annotated tokens.
package intent

import (
	"strings"

	"github.com/appengine-ltd/command-it/internal/annotate"
	"github.com/appengine-ltd/command-it/internal/lexicon"
)

// Intent is the structured frame extracted from one utterance. Verb and
// Object keep the words as typed; VerbForms and ObjectForms hold their lemma
// and inflections for inflection matching.
type Intent struct {
	Verb         string   `json:"verb,omitempty"`
	VerbForms    []string `json:"verb_forms,omitempty"`
	VerbSynonyms []string `json:"verb_synonyms,omitempty"`

	Object         string   `json:"object,omitempty"`
	ObjectForms    []string `json:"object_forms,omitempty"`
	ObjectSynonyms []string `json:"object_synonyms,omitempty"`

	Particle string   `json:"particle,omitempty"`
	Numbers  []string `json:"numbers,omitempty"`
	// Modifiers are colors and adjectives no object claimed.
	Modifiers []string `json:"modifiers,omitempty"`
	// Quoted holds quoted literals with the quotes removed.
	Quoted []string `json:"quoted,omitempty"`
	// Extras are nouns after the object and plain adverbs. They never bind
	// to parameters but are kept for logs and booleans.
	Extras     []string `json:"extras,omitempty"`
	Units      []string `json:"units,omitempty"`
	Directions []string `json:"directions,omitempty"`
}

func (in Intent) Empty() bool {
	return in.Verb == "" && in.Object == "" && len(in.Numbers) == 0 && len(in.Modifiers) == 0 && len(in.Quoted) == 0
}

// String renders the frame compactly for logs.
func (in Intent) String() string {
	var b strings.Builder
	b.WriteString("verb=" + in.Verb)
	if in.Object != "" {
		b.WriteString(" object=" + in.Object)
	}
	if in.Particle != "" {
		b.WriteString(" particle=" + in.Particle)
	}
	if len(in.Numbers) > 0 {
		b.WriteString(" numbers=[" + strings.Join(in.Numbers, ",") + "]")
	}
	if len(in.Modifiers) > 0 {
		b.WriteString(" modifiers=[" + strings.Join(in.Modifiers, ",") + "]")
	}
	if len(in.Quoted) > 0 {
		b.WriteString(" quoted=[" + strings.Join(in.Quoted, ",") + "]")
	}
	if len(in.Extras) > 0 {
		b.WriteString(" extras=[" + strings.Join(in.Extras, ",") + "]")
	}
	return b.String()
}

// Extract walks the tokens once, left to right. The head token (the first
// token after leading fillers) is the verb whatever its tag, since commands
// are imperative.
func Extract(tokens []annotate.Token, lex *lexicon.Lexicon) Intent {
	if lex == nil {
		lex = lexicon.Default()
	}
	var in Intent
	head := Head(tokens, lex)
	if head < 0 {
		return in
	}
	verb := tokens[head]
	in.Verb = verb.Text
	in.VerbForms = forms(verb)
	in.VerbSynonyms = append([]string(nil), verb.Synonyms...)
	if verb.Tags.Has(annotate.Direction) {
		in.FoldDirection(verb.Text, lex)
	}

	for _, tok := range tokens[:head] {
		if isManner(tok) {
			in.Extras = append(in.Extras, tok.Text)
		}
	}

	var pendingAdj []string
	for i := head + 1; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.Quoted():
			in.Quoted = append(in.Quoted, lexicon.Unquote(tok.Text))
		case tok.POS == lexicon.Number:
			in.Numbers = append(in.Numbers, tok.Text)
		case tok.Tags.Has(annotate.Particle) && in.Particle == "":
			in.Particle = tok.Text
			if tok.Tags.Has(annotate.Direction) {
				in.FoldDirection(tok.Text, lex)
			}
		case tok.Tags.Has(annotate.Direction):
			in.FoldDirection(tok.Text, lex)
		case tok.Tags.Has(annotate.Unit):
			in.Units = append(in.Units, tok.Text)
		case isNominal(tokens, i):
			if in.Object != "" {
				in.Extras = append(in.Extras, tok.Text)
				continue
			}
			end := i + 1
			for end < len(tokens) && isNominal(tokens, end) && !tokens[end].Tags.Has(annotate.Unit) {
				end++
			}
			in.SetObject(tokens[i:end])
			// a color right before the object is a modifier; other adjectives
			// are claimed by the object
			if prev := tokens[i-1]; prev.POS == lexicon.Adjective && prev.Tags.Has(annotate.Color) {
				in.Modifiers = append(in.Modifiers, prev.Text)
			}
			pendingAdj = nil
			i = end - 1
		case tok.POS == lexicon.Adjective:
			pendingAdj = append(pendingAdj, tok.Text)
		case tok.POS == lexicon.Adverb:
			in.Extras = append(in.Extras, tok.Text)
		}
	}
	in.Modifiers = append(in.Modifiers, pendingAdj...)
	return in
}

// Head returns the index of the verb token: the first token that is not
// punctuation, a filler, an untagged word or a fronted manner adverb
// ("quickly move forward"). A lone adverb is still the head. It is -1 for an
// utterance without content.
func Head(tokens []annotate.Token, lex *lexicon.Lexicon) int {
	first := -1
	for i, tok := range tokens {
		switch {
		case tok.POS == lexicon.Punctuation:
		case tok.POS == lexicon.Other && !tok.Quoted():
		case lex != nil && lex.IsFiller(tok.Text):
		case isManner(tok):
			if first < 0 {
				first = i
			}
		default:
			return i
		}
	}
	return first
}

// isManner reports an adverb that is neither a direction nor a particle.
func isManner(tok annotate.Token) bool {
	return tok.POS == lexicon.Adverb && !tok.Tags.Has(annotate.Direction) && !tok.Tags.Has(annotate.Particle)
}

// isNominal treats nouns, and verbs in noun position (after a determiner or
// adjective), as object words. Directions and particles never are.
func isNominal(tokens []annotate.Token, i int) bool {
	tok := tokens[i]
	if tok.Tags.Has(annotate.Direction) || tok.Tags.Has(annotate.Particle) || tok.Quoted() {
		return false
	}
	switch tok.POS {
	case lexicon.Noun:
		return true
	case lexicon.Verb:
		if i == 0 {
			return false
		}
		prev := tokens[i-1].POS
		return prev == lexicon.Determiner || prev == lexicon.Adjective
	default:
		return false
	}
}

// SetObject makes consecutive noun tokens the (compound) object.
func (in *Intent) SetObject(words []annotate.Token) {
	texts := make([]string, 0, len(words))
	for _, w := range words {
		texts = append(texts, w.Text)
	}
	in.Object = strings.Join(texts, " ")
	head := words[len(words)-1]
	prefix := strings.Join(texts[:len(texts)-1], " ")
	for _, f := range forms(head) {
		in.ObjectForms = appendUnique(in.ObjectForms, strings.TrimSpace(prefix+" "+f))
	}
	if len(words) == 1 {
		in.ObjectSynonyms = append([]string(nil), head.Synonyms...)
	}
}

// WithoutObject returns a copy with the object moved to Extras.
func (in Intent) WithoutObject() Intent {
	if in.Object == "" {
		return in
	}
	out := in
	out.Extras = append(append([]string(nil), in.Extras...), in.Object)
	out.Object, out.ObjectForms, out.ObjectSynonyms = "", nil, nil
	return out
}

// FoldDirection adds a direction word and its -ward/-wards variants to the
// verb synonyms: "move forwards" reaches forward().
func (in *Intent) FoldDirection(word string, lex *lexicon.Lexicon) {
	in.Directions = appendUnique(in.Directions, word)
	for _, v := range lexicon.DirectionVariants(word) {
		if lex.IsDirection(v) {
			in.VerbSynonyms = appendUnique(in.VerbSynonyms, v)
		}
	}
}

func forms(tok annotate.Token) []string {
	var out []string
	if tok.Lemma != "" {
		out = appendUnique(out, tok.Lemma)
	}
	return appendUnique(out, tok.Inflections...)
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
