// Package grammar is the deterministic path: a recursive-descent parser over
// annotated tokens that yields a constituency tree, and a compiler that turns
// the tree's constituents into a resolution with clarification.
package grammar

import (
	"fmt"
	"strings"

	"github.com/appengine-ltd/command-it/internal/annotate"
	"github.com/appengine-ltd/command-it/internal/lexicon"
)

type Label string

const (
	S     Label = "S"
	VP    Label = "VP"
	V     Label = "V"
	NP    Label = "NP"
	PP    Label = "PP"
	ADV   Label = "ADV"
	HEAD  Label = "HEAD"
	DET   Label = "DET"
	ADJ   Label = "ADJ"
	PREP  Label = "PREP"
	PUNCT Label = "PUNCT"
)

// Node spans tokens [Start, End). Leaves carry their token.
type Node struct {
	Label    Label           `json:"label"`
	Start    int             `json:"start"`
	End      int             `json:"end"`
	Children []*Node         `json:"children,omitempty"`
	Token    *annotate.Token `json:"-"`
}

func (n *Node) Text() string {
	if n.Token != nil {
		return n.Token.Text
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, c.Text())
	}
	return strings.Join(parts, " ")
}

// String renders the tree in bracket notation: (S (VP (V move) ...)).
func (n *Node) String() string {
	if n.Token != nil {
		return fmt.Sprintf("(%s %s)", n.Label, n.Token.Text)
	}
	var b strings.Builder
	b.WriteString("(" + string(n.Label))
	for _, c := range n.Children {
		b.WriteString(" " + c.String())
	}
	b.WriteString(")")
	return b.String()
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// ParseError reports the first required terminal that did not match.
type ParseError struct {
	Pos  int
	Want string
	Got  string
}

func (e *ParseError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("parse error at %d: expected %s, got end of input", e.Pos, e.Want)
	}
	return fmt.Sprintf("parse error at %d: expected %s, got %q", e.Pos, e.Want, e.Got)
}

// input is the immutable token slice every rule reads; rules return the next
// cursor instead of advancing shared state.
type input struct {
	toks    []annotate.Token
	lex     *lexicon.Lexicon
	hasVerb bool
}

// Content drops fillers and untagged words the grammar has no place for.
func Content(tokens []annotate.Token, lex *lexicon.Lexicon) []annotate.Token {
	out := make([]annotate.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.POS == lexicon.Other && !t.Quoted() {
			continue
		}
		if lex.IsFiller(t.Text) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Parse builds the tree for tokens, which should already be filtered by
// Content.
//
//	S   -> ADV* VP PUNCT?
//	VP  -> V ADV* NP? NP? PP* ADV*
//	NP  -> DET? ADJ* (NOUN|PRONOUN|NUMBER|QUOTED)+   (or DET? ADJ+ with no head)
//	PP  -> PREP NP
func Parse(tokens []annotate.Token, lex *lexicon.Lexicon) (*Node, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	in := input{toks: tokens, lex: lex}
	for _, t := range tokens {
		if t.POS == lexicon.Verb {
			in.hasVerb = true
			break
		}
	}
	if len(tokens) == 0 {
		return nil, &ParseError{Pos: 0, Want: "verb"}
	}
	return in.sentence()
}

func (in input) sentence() (*Node, error) {
	leading := in.advs(0)
	var firstErr error
	// ADV* is greedy; give adverbs back to V one at a time
	for k := len(leading); k >= 0; k-- {
		pos := 0
		if k > 0 {
			pos = leading[k-1].End
		}
		vp, next, err := in.verbPhrase(pos)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		children := append(append([]*Node(nil), leading[:k]...), vp)
		if next < len(in.toks) && in.toks[next].POS == lexicon.Punctuation && next == len(in.toks)-1 {
			children = append(children, in.leaf(PUNCT, next))
			next++
		}
		if next < len(in.toks) {
			err := &ParseError{Pos: next, Want: "end of command", Got: in.toks[next].Text}
			if k == 0 {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return &Node{Label: S, Start: 0, End: next, Children: children}, nil
	}
	return nil, firstErr
}

func (in input) verbPhrase(pos int) (*Node, int, error) {
	v, next, err := in.verb(pos)
	if err != nil {
		return nil, pos, err
	}
	children := []*Node{v}

	advs := in.advs(next)
	children = append(children, advs...)
	if len(advs) > 0 {
		next = advs[len(advs)-1].End
	}
	for i := 0; i < 2; i++ {
		np, after, ok := in.nounPhrase(next)
		if !ok {
			break
		}
		children = append(children, np)
		next = after
	}
	for {
		pp, after, ok := in.prepPhrase(next)
		if !ok {
			break
		}
		children = append(children, pp)
		next = after
	}
	advs = in.advs(next)
	children = append(children, advs...)
	if len(advs) > 0 {
		next = advs[len(advs)-1].End
	}
	return &Node{Label: VP, Start: pos, End: next, Children: children}, next, nil
}

// verb accepts a VERB token, or the first token when the command has no verb
// at all ("forward 50").
func (in input) verb(pos int) (*Node, int, error) {
	if pos >= len(in.toks) {
		return nil, pos, &ParseError{Pos: pos, Want: "verb"}
	}
	t := in.toks[pos]
	if t.POS == lexicon.Verb || (pos == 0 && !in.hasVerb && t.POS != lexicon.Punctuation) {
		return in.leaf(V, pos), pos + 1, nil
	}
	return nil, pos, &ParseError{Pos: pos, Want: "verb", Got: t.Text}
}

// advs reads adverbs and bare particles. A particle preposition followed by
// a noun phrase is left for PP.
func (in input) advs(pos int) []*Node {
	var out []*Node
	for pos < len(in.toks) {
		t := in.toks[pos]
		switch {
		case t.POS == lexicon.Adverb:
		case t.POS == lexicon.Preposition && in.lex.IsParticle(t.Text):
			if _, _, ok := in.nounPhrase(pos + 1); ok {
				return out
			}
		default:
			return out
		}
		out = append(out, in.leaf(ADV, pos))
		pos++
	}
	return out
}

func (in input) prepPhrase(pos int) (*Node, int, bool) {
	if pos >= len(in.toks) || in.toks[pos].POS != lexicon.Preposition {
		return nil, pos, false
	}
	np, next, ok := in.nounPhrase(pos + 1)
	if !ok {
		// backtrack: the preposition is read again as a particle adverb
		return nil, pos, false
	}
	prep := in.leaf(PREP, pos)
	return &Node{Label: PP, Start: pos, End: next, Children: []*Node{prep, np}}, next, true
}

func (in input) nounPhrase(pos int) (*Node, int, bool) {
	start := pos
	var children []*Node
	if pos < len(in.toks) && in.toks[pos].POS == lexicon.Determiner {
		children = append(children, in.leaf(DET, pos))
		pos++
	}
	adjs := 0
	for pos < len(in.toks) && in.toks[pos].POS == lexicon.Adjective {
		children = append(children, in.leaf(ADJ, pos))
		pos++
		adjs++
	}
	heads := 0
	for pos < len(in.toks) && in.isHead(pos) {
		children = append(children, in.leaf(HEAD, pos))
		pos++
		heads++
	}
	if heads == 0 && adjs == 0 {
		return nil, start, false
	}
	return &Node{Label: NP, Start: start, End: pos, Children: children}, pos, true
}

func (in input) isHead(pos int) bool {
	t := in.toks[pos]
	switch t.POS {
	case lexicon.Noun, lexicon.Pronoun, lexicon.Number:
		return true
	case lexicon.Other:
		return t.Quoted()
	case lexicon.Verb:
		// a verb in noun position after a determiner or adjective
		return pos > 0 && (in.toks[pos-1].POS == lexicon.Determiner || in.toks[pos-1].POS == lexicon.Adjective)
	default:
		return false
	}
}

func (in input) leaf(label Label, pos int) *Node {
	t := in.toks[pos]
	return &Node{Label: label, Start: pos, End: pos + 1, Token: &t}
}
