package grammar_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/command-it/internal/annotate"
	"github.com/appengine-ltd/command-it/internal/catalog/catalogtest"
	"github.com/appengine-ltd/command-it/internal/grammar"
	"github.com/appengine-ltd/command-it/internal/lexicon"
	"github.com/appengine-ltd/command-it/internal/resolve"
)

func tokens(text string) []annotate.Token {
	lex := lexicon.Default()
	return grammar.Content(annotate.New(lex).Annotate(text, nil), lex)
}

func TestParse(t *testing.T) {
	tests := []struct {
		text      string
		tree      string
		symbols   []grammar.Symbol
		structure string
	}{
		{
			text:      "switch on the light",
			tree:      "(S (VP (V switch) (PP (PREP on) (NP (DET the) (HEAD light)))))",
			symbols:   []grammar.Symbol{grammar.SymVerb, grammar.SymAdv},
			structure: "intransitive with adverbial",
		},
		{
			text:      "move forward 50 steps",
			tree:      "(S (VP (V move) (ADV forward) (NP (HEAD 50) (HEAD steps))))",
			symbols:   []grammar.Symbol{grammar.SymVerb, grammar.SymAdv, grammar.SymObject},
			structure: "adverbial before object",
		},
		{
			text:      "forward 50",
			tree:      "(S (VP (V forward) (NP (HEAD 50))))",
			symbols:   []grammar.Symbol{grammar.SymVerb, grammar.SymObject},
			structure: "transitive",
		},
		{
			text:      "please deposit",
			tree:      "(S (VP (V deposit)))",
			symbols:   []grammar.Symbol{grammar.SymVerb},
			structure: "imperative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tree, err := grammar.Parse(tokens(tt.text), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.tree, tree.String())

			symbols := grammar.Flatten(tree)
			assert.Equal(t, tt.symbols, symbols)
			assert.Equal(t, tt.structure, grammar.Structure(symbols))
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := grammar.Parse(nil, nil)
	var pe *grammar.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "verb", pe.Want)
	assert.Contains(t, pe.Error(), "end of input")

	_, err = grammar.Parse(tokens("move, forward"), nil)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Pos)
	assert.Equal(t, ",", pe.Got)
}

func TestStructure(t *testing.T) {
	assert.Equal(t, "intransitive with adverbial",
		grammar.Structure([]grammar.Symbol{grammar.SymVerb, grammar.SymAdv, grammar.SymAdv}))
	assert.Equal(t, "unrecognized", grammar.Structure([]grammar.Symbol{grammar.SymObject}))
}

func TestConstituents(t *testing.T) {
	lex := lexicon.Default()

	tree, err := grammar.Parse(tokens("switch on the light"), lex)
	require.NoError(t, err)
	in := grammar.Constituents(tree, lex)
	assert.Equal(t, "switch", in.Verb)
	assert.Equal(t, "on", in.Particle)
	assert.Equal(t, "light", in.Object)

	tree, err = grammar.Parse(tokens("move forward 50 steps"), lex)
	require.NoError(t, err)
	in = grammar.Constituents(tree, lex)
	assert.Equal(t, []string{"50"}, in.Numbers)
	assert.Equal(t, []string{"steps"}, in.Units)
	assert.Contains(t, in.VerbSynonyms, "forward")
	assert.Empty(t, in.Object)
}

func newCompiler() *grammar.Compiler {
	return grammar.NewCompiler(resolve.New(lexicon.Default(), resolve.DefaultOptions()))
}

func TestCompile(t *testing.T) {
	c := newCompiler()
	home := catalogtest.Build(t, catalogtest.Home)

	res, an := c.Compile(context.Background(), "switch on the light", home, nil)
	require.Equal(t, resolve.Matched, res.Kind, res.String())
	assert.Equal(t, resolve.Compiled, res.Source)
	assert.Equal(t, "turn_light_on()", res.Executable)
	require.NotNil(t, an)
	assert.Equal(t, "intransitive with adverbial", an.Structure)
	assert.NotNil(t, an.Tree)
}

func TestCompileKeepsAdverbsOutOfArguments(t *testing.T) {
	c := newCompiler()
	turtle := catalogtest.Build(t, catalogtest.Turtle)

	res, an := c.Compile(context.Background(), "quickly move forward", turtle, nil)
	require.Equalf(t, resolve.NeedsClarification, res.Kind, "got %s", res)
	assert.Equal(t, "forward", res.Entry)
	assert.Equal(t, "forward what?", res.Question)
	assert.Equal(t, resolve.Compiled, res.Source)
	require.NotNil(t, an)
	assert.Equal(t, "fronted adverbial intransitive", an.Structure)
	assert.Equal(t, []string{"quickly"}, an.Intent.Extras)

	res, _ = c.Compile(context.Background(), "move forward 50 steps", turtle, nil)
	require.Equalf(t, resolve.Matched, res.Kind, "got %s", res)
	assert.Equal(t, "forward(distance=50)", res.Executable)
}

func TestCompileParseFailure(t *testing.T) {
	c := newCompiler()
	turtle := catalogtest.Build(t, catalogtest.Turtle)

	res, an := c.Compile(context.Background(), "move, forward", turtle, nil)
	assert.Equal(t, resolve.NoMatch, res.Kind)
	assert.Equal(t, resolve.ParseFailure, res.Reason)
	assert.Equal(t, resolve.Compiled, res.Source)
	require.NotNil(t, an)
	assert.Error(t, an.Err)
	assert.Nil(t, an.Tree)
}

func TestCompileClarification(t *testing.T) {
	c := newCompiler()
	bank := catalogtest.Build(t, catalogtest.Bank)
	ctx := context.Background()

	res, an := c.Compile(ctx, "deposit", bank, nil)
	require.Equal(t, resolve.NeedsClarification, res.Kind)
	assert.Equal(t, "deposit what?", res.Question)
	assert.Equal(t, "imperative", an.Structure)

	pending := res.Pending()
	answer, an := c.Compile(ctx, "fifty", bank, pending)
	require.Equal(t, resolve.Matched, answer.Kind)
	assert.Equal(t, "Deposit(amount=50)", answer.Executable)
	require.NotNil(t, an)
	assert.Equal(t, "reply", an.Structure)
	require.Len(t, an.Tokens, 1)
	assert.Equal(t, "fifty", an.Tokens[0].Text)

	other, an := c.Compile(ctx, "check balance", bank, pending)
	require.Equal(t, resolve.Matched, other.Kind)
	assert.Equal(t, "CheckBalance()", other.Executable)
	assert.NotNil(t, an)
}
