package resolve_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/catalog/catalogtest"
	"github.com/appengine-ltd/command-it/internal/lexicon"
	"github.com/appengine-ltd/command-it/internal/resolve"
)

func newEngine() *resolve.Engine {
	return resolve.New(lexicon.Default(), resolve.DefaultOptions())
}

func TestResolveMatches(t *testing.T) {
	turtle := catalogtest.Build(t, catalogtest.Turtle)
	home := catalogtest.Build(t, catalogtest.Home)
	e := newEngine()

	tests := []struct {
		utterance  string
		cat        *catalog.Catalog
		entry      string
		executable string
		confidence float64
	}{
		{utterance: "forward 50", cat: turtle, entry: "forward", executable: "forward(distance=50)", confidence: 0.8},
		{utterance: "move forward fifty steps", cat: turtle, entry: "forward", executable: "forward(distance=50)", confidence: 0.8},
		{utterance: "foward 10", cat: turtle, entry: "forward", executable: "forward(distance=10)", confidence: 0.8},
		{utterance: "turn left 90 degrees", cat: turtle, entry: "left", executable: "left(angle=90)", confidence: 0.8},
		{utterance: "pen up", cat: turtle, entry: "penup", executable: "penup()", confidence: 0.7},
		{utterance: "penup", cat: turtle, entry: "penup", executable: "penup()", confidence: 0.7},
		{utterance: `write "hello world"`, cat: turtle, entry: "write", executable: `write(text="hello world")`, confidence: 0.7},
		{utterance: "switch on the light", cat: home, entry: "turn_light_on", executable: "turn_light_on()", confidence: 0.9},
		{utterance: "turn the light off", cat: home, entry: "turn_light_off", executable: "turn_light_off()", confidence: 1.0},
		{utterance: "set volume 5", cat: home, entry: "set_volume", executable: "set_volume(level=5)", confidence: 1.0},
		{utterance: "please set volume to five", cat: home, entry: "set_volume", executable: "set_volume(level=5)", confidence: 0.8},
	}
	for _, tc := range tests {
		t.Run(tc.utterance, func(t *testing.T) {
			res := e.Resolve(context.Background(), tc.utterance, tc.cat, nil)
			require.Equalf(t, resolve.Matched, res.Kind, "got %s", res)
			assert.Equal(t, tc.entry, res.Entry)
			assert.Equal(t, tc.executable, res.Executable)
			assert.InDelta(t, tc.confidence, res.Confidence, 1e-9)
			assert.Equal(t, resolve.Scored, res.Source)
			require.Len(t, res.Candidates, 1)
			assert.Equal(t, tc.entry, res.Candidates[0].Name)
		})
	}
}

func TestResolveAliases(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Turtle)
	e := newEngine()

	viaAlias := e.Resolve(context.Background(), "fd 10", cat, nil)
	canonical := e.Resolve(context.Background(), "forward 10", cat, nil)
	require.Equal(t, resolve.Matched, viaAlias.Kind)
	require.Equal(t, resolve.Matched, canonical.Kind)
	assert.Equal(t, canonical.Entry, viaAlias.Entry)
	assert.Equal(t, canonical.Executable, viaAlias.Executable)
	assert.Equal(t, "fd", viaAlias.Candidates[0].Via)
	assert.Empty(t, canonical.Candidates[0].Via)

	res := e.Resolve(context.Background(), "lt 45", cat, nil)
	require.Equal(t, resolve.Matched, res.Kind)
	assert.Equal(t, "left(angle=45)", res.Executable)
}

func TestObjectlessEntriesResolveConfidently(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Turtle)
	e := newEngine()
	for _, entry := range cat.Entries() {
		if entry.Object() != "" || entry.Particle() != "" {
			continue
		}
		found := false
		for _, c := range e.Rank(entry.Name, cat, cat.Len()) {
			if c.Name == entry.Name {
				found = true
				assert.GreaterOrEqualf(t, c.Score, 0.6, "%s scored %v", entry.Name, c.Score)
			}
		}
		assert.Truef(t, found, "%s did not rank for its own name", entry.Name)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Turtle)
	e := newEngine()
	for _, u := range []string{"move forward fifty steps", "pen up", "jump", "deposit"} {
		first := e.Resolve(context.Background(), u, cat, nil)
		second := e.Resolve(context.Background(), u, cat, nil)
		if diff := cmp.Diff(first, second, cmpopts.IgnoreUnexported(resolve.Candidate{})); diff != "" {
			t.Fatalf("%q resolved differently (-first +second):\n%s", u, diff)
		}
	}
}

func TestConfidenceIsMonotoneInVerbTier(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Home)
	e := newEngine()
	score := func(u string) (float64, resolve.MatchKind) {
		t.Helper()
		for _, c := range e.Rank(u, cat, 0) {
			if c.Name == "set_volume" {
				return c.Score, c.VerbMatch
			}
		}
		t.Fatalf("%q did not reach set_volume", u)
		return 0, resolve.None
	}

	exact, k1 := score("set volume 5")
	inflected, k2 := score("sets volume 5")
	synonym, k3 := score("adjust volume 5")
	assert.Equal(t, resolve.Exact, k1)
	assert.Equal(t, resolve.Inflection, k2)
	assert.Equal(t, resolve.Synonym, k3)
	assert.Greater(t, exact, inflected)
	assert.Greater(t, inflected, synonym)
}

func TestConfidenceIsMonotoneInObjectAndParticleTiers(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Home)
	e := newEngine()
	candidate := func(u string) resolve.Candidate {
		t.Helper()
		for _, c := range e.Rank(u, cat, 0) {
			if c.Name == "set_volume" {
				return c
			}
		}
		t.Fatalf("%q did not reach set_volume", u)
		return resolve.Candidate{}
	}

	exact := candidate("set volume 5")
	inflected := candidate("set volumes 5")
	synonym := candidate("set loudness 5")
	assert.Equal(t, resolve.Exact, exact.ObjectMatch)
	assert.Equal(t, resolve.Inflection, inflected.ObjectMatch)
	assert.Equal(t, resolve.Synonym, synonym.ObjectMatch)
	assert.Greater(t, exact.Score, inflected.Score)
	assert.Greater(t, inflected.Score, synonym.Score)

	stray := candidate("set volume to 5")
	assert.True(t, exact.ParticleMatched)
	assert.False(t, stray.ParticleMatched)
	assert.Equal(t, exact.VerbMatch, stray.VerbMatch)
	assert.Equal(t, exact.ObjectMatch, stray.ObjectMatch)
	assert.Greater(t, exact.Score, stray.Score)
}

func TestLeftoverWordsDoNotBecomeArguments(t *testing.T) {
	turtle := catalogtest.Build(t, catalogtest.Turtle)
	e := newEngine()
	tests := []struct {
		utterance string
		entry     string
		question  string
	}{
		{utterance: "move forward quickly", entry: "forward", question: "forward what?"},
		{utterance: "go right slowly", entry: "right", question: "right what?"},
		{utterance: "move the turtle forward", entry: "forward", question: "forward what?"},
		{utterance: "quickly move forward", entry: "forward", question: "forward what?"},
	}
	for _, tc := range tests {
		t.Run(tc.utterance, func(t *testing.T) {
			res := e.Resolve(context.Background(), tc.utterance, turtle, nil)
			require.Equalf(t, resolve.NeedsClarification, res.Kind, "got %s", res)
			assert.Equal(t, tc.entry, res.Entry)
			assert.Equal(t, tc.question, res.Question)
			assert.Empty(t, res.Params)
		})
	}

	res := e.Resolve(context.Background(), "draw a circle of radius 5", turtle, nil)
	require.Equalf(t, resolve.Matched, res.Kind, "got %s", res)
	assert.Equal(t, "circle(radius=5)", res.Executable)
	assert.Contains(t, res.Intent.Extras, "radius")
}

func TestResolveKeepsSignsAndLargeNumbers(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	home := catalogtest.Build(t, catalogtest.Home)
	res := e.Resolve(ctx, "set volume to -10", home, nil)
	require.Equalf(t, resolve.Matched, res.Kind, "got %s", res)
	assert.Equal(t, "set_volume(level=-10)", res.Executable)

	bank := catalogtest.Build(t, catalogtest.Bank)
	res = e.Resolve(ctx, "deposit 5000000000", bank, nil)
	require.Equalf(t, resolve.Matched, res.Kind, "got %s", res)
	assert.Equal(t, "Deposit(amount=5000000000)", res.Executable)
}

func TestClarification(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Bank)
	e := newEngine()
	ctx := context.Background()

	res := e.Resolve(ctx, "deposit", cat, nil)
	require.Equal(t, resolve.NeedsClarification, res.Kind)
	assert.Equal(t, "Deposit", res.Entry)
	assert.Equal(t, []string{"amount"}, res.Missing)
	assert.Equal(t, "deposit what?", res.Question)

	pending := res.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "deposit", pending.Verb)

	answer := e.Resolve(ctx, "50", cat, pending)
	require.Equal(t, resolve.Matched, answer.Kind)
	assert.Equal(t, resolve.Clarified, answer.Source)
	assert.Equal(t, map[string]any{"amount": 50}, answer.Params)
	assert.Equal(t, "Deposit(amount=50)", answer.Executable)
	assert.Nil(t, answer.Pending())

	again := e.Resolve(ctx, "blue", cat, pending)
	require.Equal(t, resolve.NeedsClarification, again.Kind)
	assert.Equal(t, "deposit what?", again.Question)
	assert.Equal(t, resolve.Clarified, again.Source)

	dropped := e.Resolve(ctx, "never mind", cat, pending)
	assert.Equal(t, resolve.NoMatch, dropped.Kind)
	assert.Equal(t, resolve.Abandoned, dropped.Reason)
	assert.Nil(t, dropped.Pending())

	// a reply that cannot fill amount is tried as a new command
	fresh := e.Resolve(ctx, "check balance", cat, pending)
	require.Equal(t, resolve.Matched, fresh.Kind)
	assert.Equal(t, "CheckBalance()", fresh.Executable)
	assert.NotEqual(t, resolve.Clarified, fresh.Source)
}

func TestClarificationNarrows(t *testing.T) {
	cat, err := catalog.Build(catalog.ManifestSource{Content: []byte(`
methods:
  - name: goto
    params:
      - {name: x, type: int}
      - {name: y, type: int}
`)}, nil)
	require.NoError(t, err)
	e := newEngine()
	ctx := context.Background()

	res := e.Resolve(ctx, "go to", cat, nil)
	require.Equal(t, resolve.NeedsClarification, res.Kind)
	assert.Equal(t, []string{"x", "y"}, res.Missing)

	res = e.Resolve(ctx, "3", cat, res.Pending())
	require.Equal(t, resolve.NeedsClarification, res.Kind)
	assert.Equal(t, []string{"y"}, res.Missing)
	assert.Equal(t, map[string]string{"x": "3"}, res.Bound)

	res = e.Resolve(ctx, "four", cat, res.Pending())
	require.Equal(t, resolve.Matched, res.Kind)
	assert.Equal(t, "goto(x=3, y=4)", res.Executable)
}

func TestAmbiguous(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Switches)
	res := newEngine().Resolve(context.Background(), "switch", cat, nil)
	require.Equal(t, resolve.Ambiguous, res.Kind)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "flip", res.Candidates[0].Name)
	assert.Equal(t, "toggle", res.Candidates[1].Name)
	assert.GreaterOrEqual(t, res.Candidates[0].Score, res.Candidates[1].Score)
	assert.InDelta(t, 0.6, res.Candidates[0].Score, 1e-9)
}

func TestNoMatch(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Turtle)
	e := newEngine()

	res := e.Resolve(context.Background(), "the blue", cat, nil)
	assert.Equal(t, resolve.NoMatch, res.Kind)
	assert.Equal(t, resolve.NoCandidates, res.Reason)

	res = e.Resolve(context.Background(), "", cat, nil)
	assert.Equal(t, resolve.NoMatch, res.Kind)
	assert.Equal(t, resolve.NoCandidates, res.Reason)

	strict := resolve.New(lexicon.Default(), resolve.Options{Threshold: 0.95, Margin: 0.02, TopK: 3, Suggestions: 3})
	res = strict.Resolve(context.Background(), "pen up", cat, nil)
	assert.Equal(t, resolve.NoMatch, res.Kind)
	assert.Equal(t, resolve.LowConfidence, res.Reason)
	assert.Contains(t, res.Suggestions, "penup")
}

func TestAugmenter(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Switches)
	e := newEngine()

	calls := 0
	e.Augmenter = resolve.AugmenterFunc(func(_ context.Context, utterance string, _ *catalog.Catalog) (*resolve.Result, error) {
		calls++
		return &resolve.Result{Kind: resolve.Matched, Entry: "flip", Executable: "flip()", Confidence: 0.9}, nil
	})
	res := e.Resolve(context.Background(), "switch", cat, nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, resolve.Matched, res.Kind)
	assert.Equal(t, resolve.Augmented, res.Source)
	assert.Equal(t, "flip()", res.Executable)

	// not consulted when the engine matches by itself
	res = e.Resolve(context.Background(), "flip", cat, nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, resolve.Scored, res.Source)

	e.Augmenter = resolve.AugmenterFunc(func(context.Context, string, *catalog.Catalog) (*resolve.Result, error) {
		return nil, errors.New("offline")
	})
	res = e.Resolve(context.Background(), "switch", cat, nil)
	assert.Equal(t, resolve.Ambiguous, res.Kind)
}

func TestRank(t *testing.T) {
	cat := catalogtest.Build(t, catalogtest.Turtle)
	e := newEngine()
	ranked := e.Rank("move forward fifty steps", cat, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "forward", ranked[0].Name)
	assert.Equal(t, "backward", ranked[1].Name)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}
