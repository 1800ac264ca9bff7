package grammar

import (
	"context"
	"errors"
	"strings"

	"github.com/appengine-ltd/command-it/internal/annotate"
	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/intent"
	"github.com/appengine-ltd/command-it/internal/lexicon"
	"github.com/appengine-ltd/command-it/internal/resolve"
)

// Symbol is a coarse constituent: verb, object or adverbial.
type Symbol string

const (
	SymVerb   Symbol = "V"
	SymObject Symbol = "O"
	SymAdv    Symbol = "A"
)

// structures names sentence shapes by their flattened symbols, with runs of
// adverbials collapsed to one A.
var structures = map[string]string{
	"V":       "imperative",
	"V,O":     "transitive",
	"V,O,A":   "transitive with adverbial",
	"V,A":     "intransitive with adverbial",
	"A,V":     "fronted adverbial",
	"A,V,O":   "fronted adverbial transitive",
	"A,V,A":   "fronted adverbial intransitive",
	"V,A,O":   "adverbial before object",
	"V,A,O,A": "adverbial around object",
	"V,O,O":   "ditransitive",
	"V,O,O,A": "ditransitive with adverbial",
	"V,A,O,O": "adverbial ditransitive",
}

// Analysis is everything the compiler learned about an utterance.
type Analysis struct {
	Tokens    []annotate.Token `json:"-"`
	Tree      *Node            `json:"tree,omitempty"`
	Symbols   []Symbol         `json:"symbols,omitempty"`
	Structure string           `json:"structure,omitempty"`
	Intent    intent.Intent    `json:"intent"`
	Err       error            `json:"-"`
}

// Flatten reads the symbol sequence off a tree: V for the verb, O per noun
// phrase, A per prepositional phrase or adverb.
func Flatten(root *Node) []Symbol {
	var out []Symbol
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Label {
		case V:
			out = append(out, SymVerb)
		case NP:
			out = append(out, SymObject)
		case PP, ADV:
			out = append(out, SymAdv)
		default:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}

// Structure names a symbol sequence, or returns "unrecognized".
func Structure(symbols []Symbol) string {
	var key []string
	for _, s := range symbols {
		if s == SymAdv && len(key) > 0 && key[len(key)-1] == string(SymAdv) {
			continue
		}
		key = append(key, string(s))
	}
	if name, ok := structures[strings.Join(key, ",")]; ok {
		return name
	}
	return "unrecognized"
}

// Compiler resolves utterances through the grammar instead of the heuristic
// extractor. Scoring, disambiguation and binding are shared with the engine.
type Compiler struct {
	Engine *resolve.Engine
}

func NewCompiler(e *resolve.Engine) *Compiler {
	return &Compiler{Engine: e}
}

// Compile parses and resolves utterance. With a pending clarification the
// utterance is first read as its answer. Parse failures become
// NoMatch{parse_failure}.
func (c *Compiler) Compile(ctx context.Context, utterance string, cat *catalog.Catalog, pending *resolve.Pending) (resolve.Result, *Analysis) {
	var a *Analysis
	fresh := func() resolve.Result {
		var res resolve.Result
		res, a = c.compile(ctx, utterance, cat)
		return res
	}
	if pending != nil {
		res := c.Engine.Continue(ctx, utterance, cat, pending, fresh)
		if a == nil {
			a = c.reply(utterance, cat)
		}
		return res, a
	}
	res := fresh()
	return res, a
}

// reply analyses a clarification answer that was bound without a fresh parse.
// It carries the tokens and whatever intent the grammar can read off them.
func (c *Compiler) reply(utterance string, cat *catalog.Catalog) *Analysis {
	lex := c.Engine.Lex
	tokens := Content(c.Engine.Annotator.Annotate(utterance, cat), lex)
	a := &Analysis{Tokens: tokens, Structure: "reply"}
	if tree, err := Parse(tokens, lex); err == nil {
		a.Tree = tree
		a.Symbols = Flatten(tree)
		a.Intent = Constituents(tree, lex)
	}
	return a
}

func (c *Compiler) compile(ctx context.Context, utterance string, cat *catalog.Catalog) (resolve.Result, *Analysis) {
	lex := c.Engine.Lex
	tokens := Content(c.Engine.Annotator.Annotate(utterance, cat), lex)
	a := &Analysis{Tokens: tokens}

	tree, err := Parse(tokens, lex)
	if err != nil {
		a.Err = err
		res := resolve.Result{Kind: resolve.NoMatch, Reason: resolve.ParseFailure, Source: resolve.Compiled}
		var pe *ParseError
		if errors.As(err, &pe) {
			c.Engine.Logger.Debug().Err(pe).Str("utterance", utterance).Msg("grammar rejected utterance")
		}
		if len(tokens) > 0 {
			res.Suggestions = cat.Closest(tokens[0].Text, c.Engine.Options.Suggestions)
		}
		return res, a
	}
	a.Tree = tree
	a.Symbols = Flatten(tree)
	a.Structure = Structure(a.Symbols)
	a.Intent = Constituents(tree, lex)
	return c.Engine.Decide(ctx, utterance, a.Intent, cat, resolve.Compiled), a
}

// Constituents builds an intent from the tree: the V head is the verb,
// direction adverbs fold into its synonyms, particle adverbs and particle
// prepositions set the particle, the first noun head is the object, numerals
// are numbers, colors and unclaimed adjectives are modifiers, and other
// nouns and adverbs are extras.
func Constituents(root *Node, lex *lexicon.Lexicon) intent.Intent {
	var in intent.Intent
	var nps []*Node
	var preps, advs []*annotate.Token

	root.Walk(func(n *Node) {
		switch n.Label {
		case V:
			t := n.Token
			in.Verb = t.Text
			in.VerbForms = appendUnique(nil, t.Lemma)
			in.VerbForms = appendUnique(in.VerbForms, t.Inflections...)
			in.VerbSynonyms = append([]string(nil), t.Synonyms...)
			if t.Tags.Has(annotate.Direction) {
				in.FoldDirection(t.Text, lex)
			}
		case NP:
			nps = append(nps, n)
		case PREP:
			preps = append(preps, n.Token)
		case ADV:
			advs = append(advs, n.Token)
		}
	})

	for _, t := range append(preps, advs...) {
		switch {
		case lex.IsParticle(t.Text) && in.Particle == "":
			in.Particle = t.Text
			if t.Tags.Has(annotate.Direction) {
				in.FoldDirection(t.Text, lex)
			}
		case t.Tags.Has(annotate.Direction):
			in.FoldDirection(t.Text, lex)
		case t.POS == lexicon.Adverb:
			in.Extras = append(in.Extras, t.Text)
		}
	}

	for _, np := range nps {
		var nouns []annotate.Token
		var adjs []string
		for _, c := range np.Children {
			t := c.Token
			switch {
			case c.Label == ADJ:
				adjs = append(adjs, t.Text)
			case c.Label != HEAD:
			case t.Quoted():
				in.Quoted = append(in.Quoted, lexicon.Unquote(t.Text))
			case t.POS == lexicon.Number:
				in.Numbers = append(in.Numbers, t.Text)
			case t.Tags.Has(annotate.Unit):
				in.Units = append(in.Units, t.Text)
			case t.POS == lexicon.Pronoun:
			default:
				nouns = append(nouns, *t)
			}
		}
		switch {
		case len(nouns) > 0:
			if in.Object == "" {
				in.SetObject(nouns)
			} else {
				for _, n := range nouns {
					in.Extras = append(in.Extras, n.Text)
				}
			}
			// adjectives belong to their noun; only colors survive as modifiers
			for _, adj := range adjs {
				if lex.IsColor(adj) {
					in.Modifiers = append(in.Modifiers, adj)
				}
			}
		default:
			in.Modifiers = append(in.Modifiers, adjs...)
		}
	}
	return in
}

func appendUnique(list []string, words ...string) []string {
	for _, w := range words {
		if w == "" {
			continue
		}
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
