package resolve

// Defaults for Options. A winner needs DefaultThreshold, and runners-up within
// DefaultMargin of it make the result ambiguous.
const (
	DefaultThreshold = 0.35
	DefaultMargin    = 0.02
	DefaultTopK      = 3

	epsilon = 1e-9
)

// Decision is what the disambiguator makes of a ranked candidate list.
type Decision struct {
	Kind      Kind
	Winner    Candidate
	Reason    Reason
	Ambiguous []Candidate
}

// Disambiguator accepts the top candidate when it clears Threshold and no
// runner-up is within Margin of it, or when the tie-breaks separate the
// candidates within the margin.
type Disambiguator struct {
	Threshold float64
	Margin    float64
}

// Decide expects candidates ranked by Rank.
func (d Disambiguator) Decide(ranked []Candidate) Decision {
	if len(ranked) == 0 {
		return Decision{Kind: NoMatch, Reason: NoCandidates}
	}
	best := ranked[0]
	if best.Score+epsilon < d.Threshold {
		return Decision{Kind: NoMatch, Reason: LowConfidence}
	}

	near := []Candidate{best}
	for _, c := range ranked[1:] {
		if best.Score-c.Score <= d.Margin+epsilon {
			near = append(near, c)
		}
	}
	if len(near) == 1 {
		return Decision{Kind: Matched, Winner: best}
	}
	if w, ok := tieBreak(near); ok {
		return Decision{Kind: Matched, Winner: w}
	}
	return Decision{Kind: Ambiguous, Ambiguous: near}
}

// tieBreak narrows the near candidates by verb tier, then object tier, then
// direct verb over the object-as-verb fallback. It succeeds only when one
// candidate remains after some step.
func tieBreak(near []Candidate) (Candidate, bool) {
	steps := []func(Candidate) int{
		func(c Candidate) int { return int(c.VerbMatch) },
		func(c Candidate) int { return int(c.ObjectMatch) },
		func(c Candidate) int {
			if c.ObjectAsVerb {
				return 0
			}
			return 1
		},
	}
	pool := near
	for _, key := range steps {
		top := key(pool[0])
		for _, c := range pool[1:] {
			top = max(top, key(c))
		}
		var kept []Candidate
		for _, c := range pool {
			if key(c) == top {
				kept = append(kept, c)
			}
		}
		if len(kept) == 1 {
			return kept[0], true
		}
		pool = kept
	}
	return Candidate{}, false
}

// Top returns up to k ranked candidates.
func Top(ranked []Candidate, k int) []Candidate {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(ranked) < k {
		k = len(ranked)
	}
	return append([]Candidate(nil), ranked[:k]...)
}
