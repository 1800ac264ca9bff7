package resolve

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/appengine-ltd/command-it/internal/annotate"
	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/intent"
	"github.com/appengine-ltd/command-it/internal/lexicon"
	"github.com/appengine-ltd/command-it/internal/logging"
)

// Augmenter is consulted only after the engine reports NoMatch or Ambiguous.
// A Matched result it returns is accepted as is; nil means no opinion.
type Augmenter interface {
	Augment(ctx context.Context, utterance string, cat *catalog.Catalog) (*Result, error)
}

// AugmenterFunc adapts a function to Augmenter.
type AugmenterFunc func(ctx context.Context, utterance string, cat *catalog.Catalog) (*Result, error)

func (f AugmenterFunc) Augment(ctx context.Context, utterance string, cat *catalog.Catalog) (*Result, error) {
	return f(ctx, utterance, cat)
}

// Options tunes disambiguation. TopK bounds Rank and Suggestions bounds the
// names offered with a NoMatch.
type Options struct {
	Threshold   float64
	Margin      float64
	TopK        int
	Suggestions int
}

// DefaultOptions returns the package defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:   DefaultThreshold,
		Margin:      DefaultMargin,
		TopK:        DefaultTopK,
		Suggestions: 3,
	}
}

// Engine resolves utterances against catalogs. It holds no per-utterance
// state and is safe for concurrent use.
type Engine struct {
	Lex       *lexicon.Lexicon
	Annotator *annotate.Annotator
	Options   Options
	Augmenter Augmenter
	Logger    zerolog.Logger
}

// New returns an engine over lex, or the embedded lexicon when lex is nil.
func New(lex *lexicon.Lexicon, opts Options) *Engine {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Engine{
		Lex:       lex,
		Annotator: annotate.New(lex),
		Options:   opts,
		Logger:    logging.Logger.With().Str("component", "resolve").Logger(),
	}
}

// Analyze annotates an utterance and extracts its intent.
func (e *Engine) Analyze(utterance string, cat *catalog.Catalog) ([]annotate.Token, intent.Intent) {
	var vocab annotate.Vocabulary
	if cat != nil {
		vocab = cat
	}
	tokens := e.Annotator.Annotate(utterance, vocab)
	return tokens, intent.Extract(tokens, e.Lex)
}

// Resolve turns an utterance into a Result. With a pending clarification the
// utterance is first read as the answer to its question.
func (e *Engine) Resolve(ctx context.Context, utterance string, cat *catalog.Catalog, pending *Pending) Result {
	fresh := func() Result {
		_, in := e.Analyze(utterance, cat)
		return e.Decide(ctx, utterance, in, cat, Scored)
	}
	if pending != nil {
		return e.Continue(ctx, utterance, cat, pending, fresh)
	}
	return fresh()
}

// Rank returns the top k candidates for an utterance with their scores.
func (e *Engine) Rank(utterance string, cat *catalog.Catalog, k int) []Candidate {
	_, in := e.Analyze(utterance, cat)
	in = addressed(in, cat)
	if k <= 0 {
		k = e.Options.TopK
	}
	return Top(Scorer{}.Score(in, cat), k)
}

// Decide scores, disambiguates and binds an intent. source labels the
// result; the grammar compiler passes Compiled.
func (e *Engine) Decide(ctx context.Context, utterance string, in intent.Intent, cat *catalog.Catalog, source Source) Result {
	in = addressed(in, cat)
	ranked := Scorer{}.Score(in, cat)
	d := Disambiguator{Threshold: e.Options.Threshold, Margin: e.Options.Margin}.Decide(ranked)

	var res Result
	switch d.Kind {
	case Matched:
		res = e.bind(d.Winner, in)
	case Ambiguous:
		res = Result{Kind: Ambiguous, Candidates: d.Ambiguous}
	default:
		res = Result{Kind: NoMatch, Reason: d.Reason}
	}
	res.Source = source
	res.Intent = in

	if res.Kind == NoMatch || res.Kind == Ambiguous {
		if aug := e.augment(ctx, utterance, cat); aug != nil {
			return *aug
		}
	}
	if res.Kind == NoMatch {
		res.Suggestions = e.suggest(in, cat)
	}
	e.log(res, utterance)
	return res
}

// addressed drops an object that only names the target: "move the turtle
// forward" has no object.
func addressed(in intent.Intent, cat *catalog.Catalog) intent.Intent {
	if cat.Addresses(in.Object) {
		return in.WithoutObject()
	}
	return in
}

func (e *Engine) bind(c Candidate, in intent.Intent) Result {
	b := Binder{Lex: e.Lex}.Bind(c.Entry, in, c.ObjectAsVerb)
	c.Bound = b.Literals
	if !b.Complete() {
		verb := c.Entry.Verb()
		return Result{
			Kind:       NeedsClarification,
			Entry:      c.Entry.Name,
			Params:     b.Params,
			Confidence: c.Score,
			Missing:    b.Missing,
			Question:   Question(verb),
			Verb:       verb,
			Bound:      b.Literals,
		}
	}
	return Result{
		Kind:       Matched,
		Entry:      c.Entry.Name,
		Params:     b.Params,
		Confidence: c.Score,
		Executable: Executable(c.Entry, b.Params),
		Candidates: []Candidate{c},
	}
}

// Continue reads utterance as the reply to p. An abandon phrase drops the
// slot. A reply that fits the first missing parameter narrows or completes
// the binding; otherwise fresh resolution wins when it yields a match, and
// the question is asked again when it does not.
func (e *Engine) Continue(ctx context.Context, utterance string, cat *catalog.Catalog, p *Pending, fresh func() Result) Result {
	if e.Lex.IsAbandon(utterance) {
		r := Result{Kind: NoMatch, Reason: Abandoned, Source: Clarified}
		e.log(r, utterance)
		return r
	}
	entry, ok := cat.Lookup(p.Entry)
	if !ok || len(p.Missing) == 0 {
		return fresh()
	}
	param, ok := entry.Param(p.Missing[0])
	if !ok {
		return fresh()
	}

	binder := Binder{Lex: e.Lex}
	literal := e.replyLiteral(utterance, param)
	if literal != "" {
		if _, err := binder.CoerceValue(literal, param.Type); err == nil {
			literals := make(map[string]string, len(p.Bound)+1)
			for k, v := range p.Bound {
				literals[k] = v
			}
			literals[param.Name] = literal
			b := binder.Coerce(entry, literals)
			res := Result{
				Source:     Clarified,
				Entry:      entry.Name,
				Params:     b.Params,
				Confidence: p.Confidence,
			}
			if b.Complete() {
				res.Kind = Matched
				res.Executable = Executable(entry, b.Params)
			} else {
				res.Kind = NeedsClarification
				res.Missing = b.Missing
				res.Verb = p.Verb
				res.Question = Question(p.Verb)
				res.Bound = b.Literals
			}
			e.log(res, utterance)
			return res
		}
	}

	if r := fresh(); r.Kind == Matched {
		return r
	}
	literals := make(map[string]string, len(p.Bound))
	for k, v := range p.Bound {
		literals[k] = v
	}
	b := binder.Coerce(entry, literals)
	res := Result{
		Kind:       NeedsClarification,
		Source:     Clarified,
		Entry:      entry.Name,
		Params:     b.Params,
		Confidence: p.Confidence,
		Missing:    append([]string(nil), p.Missing...),
		Question:   p.Question,
		Verb:       p.Verb,
		Bound:      b.Literals,
	}
	e.log(res, utterance)
	return res
}

// replyLiteral picks the part of a clarification reply that can fill param:
// the first number for numeric parameters, a number or quoted literal for
// untyped ones, a yes/no word for booleans, and the whole reply for text.
func (e *Engine) replyLiteral(utterance string, param catalog.Parameter) string {
	tokens := e.Annotator.Annotate(utterance, nil)
	switch {
	case param.Type.Numeric():
		for _, t := range tokens {
			if t.POS == lexicon.Number {
				return t.Text
			}
		}
		return ""
	case param.Type == catalog.TypeBool:
		for _, t := range tokens {
			if isBoolWord(t.Text) {
				return t.Text
			}
		}
		return ""
	case param.Type == catalog.TypeAny:
		for _, t := range tokens {
			if t.POS == lexicon.Number || t.Quoted() {
				return t.Text
			}
		}
		return ""
	}
	text := strings.TrimSpace(utterance)
	text = strings.TrimRight(text, ".!?")
	return lexicon.Unquote(strings.TrimSpace(text))
}

func (e *Engine) augment(ctx context.Context, utterance string, cat *catalog.Catalog) *Result {
	if e.Augmenter == nil {
		return nil
	}
	r, err := e.Augmenter.Augment(ctx, utterance, cat)
	if err != nil {
		e.Logger.Warn().Err(err).Str("utterance", utterance).Msg("augmenter failed")
		return nil
	}
	if r == nil || r.Kind != Matched {
		return nil
	}
	out := *r
	out.Source = Augmented
	e.log(out, utterance)
	return &out
}

func (e *Engine) suggest(in intent.Intent, cat *catalog.Catalog) []string {
	n := e.Options.Suggestions
	if n <= 0 {
		return nil
	}
	var out []string
	for _, w := range []string{in.Verb, in.Object} {
		for _, name := range cat.Closest(w, n) {
			if !contains(out, name) && len(out) < n {
				out = append(out, name)
			}
		}
	}
	return out
}

func (e *Engine) log(r Result, utterance string) {
	ev := e.Logger.Debug().
		Str("utterance", utterance).
		Str("kind", string(r.Kind)).
		Str("source", string(r.Source))
	if r.Entry != "" {
		ev = ev.Str("entry", r.Entry).Float64("score", r.Confidence)
	}
	if r.Reason != "" {
		ev = ev.Str("reason", string(r.Reason))
	}
	ev.Msg("resolved")
}
