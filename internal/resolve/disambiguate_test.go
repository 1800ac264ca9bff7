package resolve_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/command-it/internal/resolve"
)

func cand(name string, score float64, verb, object resolve.MatchKind) resolve.Candidate {
	return resolve.Candidate{Name: name, Score: score, VerbMatch: verb, ObjectMatch: object}
}

func TestDecide(t *testing.T) {
	d := resolve.Disambiguator{Threshold: resolve.DefaultThreshold, Margin: resolve.DefaultMargin}

	tests := []struct {
		name      string
		ranked    []resolve.Candidate
		kind      resolve.Kind
		winner    string
		reason    resolve.Reason
		ambiguous []string
	}{
		{
			name:   "empty",
			kind:   resolve.NoMatch,
			reason: resolve.NoCandidates,
		},
		{
			name:   "below threshold",
			ranked: []resolve.Candidate{cand("a", 0.3, resolve.Synonym, resolve.None)},
			kind:   resolve.NoMatch,
			reason: resolve.LowConfidence,
		},
		{
			name:   "exactly at threshold",
			ranked: []resolve.Candidate{cand("a", 0.35, resolve.Synonym, resolve.None)},
			kind:   resolve.Matched,
			winner: "a",
		},
		{
			name: "clear winner",
			ranked: []resolve.Candidate{
				cand("a", 0.8, resolve.Exact, resolve.Exact),
				cand("b", 0.5, resolve.Exact, resolve.None),
			},
			kind:   resolve.Matched,
			winner: "a",
		},
		{
			name: "verb tier breaks the tie",
			ranked: []resolve.Candidate{
				cand("a", 0.7, resolve.Synonym, resolve.Exact),
				cand("b", 0.69, resolve.Exact, resolve.Synonym),
			},
			kind:   resolve.Matched,
			winner: "b",
		},
		{
			name: "object tier breaks the tie",
			ranked: []resolve.Candidate{
				cand("a", 0.6, resolve.Exact, resolve.Synonym),
				cand("b", 0.6, resolve.Exact, resolve.Exact),
			},
			kind:   resolve.Matched,
			winner: "b",
		},
		{
			name: "margin is inclusive",
			ranked: []resolve.Candidate{
				cand("a", 0.62, resolve.Exact, resolve.None),
				cand("b", 0.6, resolve.Exact, resolve.None),
			},
			kind:      resolve.Ambiguous,
			ambiguous: []string{"a", "b"},
		},
		{
			name: "outside the margin",
			ranked: []resolve.Candidate{
				cand("a", 0.63, resolve.Exact, resolve.None),
				cand("b", 0.6, resolve.Exact, resolve.None),
			},
			kind:   resolve.Matched,
			winner: "a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Decide(tt.ranked)
			require.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.reason, got.Reason)
			if tt.winner != "" {
				assert.Equal(t, tt.winner, got.Winner.Name)
			}
			var names []string
			for _, c := range got.Ambiguous {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.ambiguous, names)
		})
	}
}

func TestDecidePrefersDirectVerb(t *testing.T) {
	d := resolve.Disambiguator{Threshold: resolve.DefaultThreshold, Margin: resolve.DefaultMargin}
	viaObject := cand("a", 0.5, resolve.Exact, resolve.None)
	viaObject.ObjectAsVerb = true
	direct := cand("b", 0.5, resolve.Exact, resolve.None)

	got := d.Decide([]resolve.Candidate{viaObject, direct})
	require.Equal(t, resolve.Matched, got.Kind)
	assert.Equal(t, "b", got.Winner.Name)
}

func TestTop(t *testing.T) {
	ranked := []resolve.Candidate{
		cand("a", 0.9, resolve.Exact, resolve.None),
		cand("b", 0.8, resolve.Exact, resolve.None),
		cand("c", 0.7, resolve.Exact, resolve.None),
		cand("d", 0.6, resolve.Exact, resolve.None),
	}
	assert.Len(t, resolve.Top(ranked, 2), 2)
	assert.Len(t, resolve.Top(ranked, 0), resolve.DefaultTopK)
	assert.Len(t, resolve.Top(ranked[:1], 5), 1)

	top := resolve.Top(ranked, 1)
	top[0].Name = "changed"
	assert.Equal(t, "a", ranked[0].Name)
}

func TestMatchKindText(t *testing.T) {
	b, err := json.Marshal(struct {
		Kind resolve.MatchKind `json:"kind"`
	}{resolve.Inflection})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"INFLECTION"}`, string(b))

	var k resolve.MatchKind
	require.NoError(t, k.UnmarshalText([]byte("synonym")))
	assert.Equal(t, resolve.Synonym, k)
	assert.Error(t, k.UnmarshalText([]byte("close")))
	assert.Equal(t, "NONE", resolve.MatchKind(42).String())
}

func TestPendingRoundTrip(t *testing.T) {
	r := resolve.Result{
		Kind:     resolve.NeedsClarification,
		Entry:    "goto",
		Verb:     "go",
		Missing:  []string{"y"},
		Bound:    map[string]string{"x": "3"},
		Question: "go what?",
	}
	p := r.Pending()
	require.NotNil(t, p)
	assert.False(t, p.CreatedAt.IsZero())

	data, err := p.Marshal()
	require.NoError(t, err)
	back, err := resolve.UnmarshalPending(data)
	require.NoError(t, err)
	assert.Equal(t, p.Entry, back.Entry)
	assert.Equal(t, p.Missing, back.Missing)
	assert.Equal(t, p.Bound, back.Bound)
	assert.True(t, p.CreatedAt.Equal(back.CreatedAt))

	_, err = resolve.UnmarshalPending([]byte("{"))
	assert.Error(t, err)

	assert.Nil(t, resolve.Result{Kind: resolve.Matched}.Pending())
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "matched forward(distance=50) (0.80)",
		resolve.Result{Kind: resolve.Matched, Executable: "forward(distance=50)", Confidence: 0.8}.String())
	assert.Equal(t, "no match (no_candidates); did you mean penup?",
		resolve.Result{Kind: resolve.NoMatch, Reason: resolve.NoCandidates, Suggestions: []string{"penup"}}.String())
	assert.Equal(t, "ambiguous: flip (0.60), toggle (0.60)",
		resolve.Result{Kind: resolve.Ambiguous, Candidates: []resolve.Candidate{
			{Name: "flip", Score: 0.6}, {Name: "toggle", Score: 0.6},
		}}.String())
}
