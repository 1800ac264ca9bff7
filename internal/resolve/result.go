// Package resolve scores catalog entries against an utterance's intent,
// picks a winner and binds its parameters.
package resolve

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/intent"
)

// MatchKind is how strongly one slot matched. Higher is better.
type MatchKind int

const (
	None MatchKind = iota
	Synonym
	Inflection
	Exact
)

var matchKindNames = [...]string{None: "NONE", Synonym: "SYNONYM", Inflection: "INFLECTION", Exact: "EXACT"}

func (k MatchKind) String() string {
	if k < 0 || int(k) >= len(matchKindNames) {
		return "NONE"
	}
	return matchKindNames[k]
}

func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MatchKind) UnmarshalText(b []byte) error {
	for i, name := range matchKindNames {
		if strings.EqualFold(name, string(b)) {
			*k = MatchKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown match kind %q", b)
}

// Candidate is one entry that passed every gate.
type Candidate struct {
	Entry           *catalog.Entry `json:"-"`
	Name            string         `json:"name"`
	Score           float64        `json:"score"`
	VerbMatch       MatchKind      `json:"verb_match"`
	ObjectMatch     MatchKind      `json:"object_match"`
	ParticleMatched bool           `json:"particle_matched"`
	// ObjectAsVerb is set when the utterance's object named the entry's verb.
	ObjectAsVerb bool `json:"object_as_verb,omitempty"`
	// Via is the alias that produced the best score, empty for the canonical
	// name.
	Via   string            `json:"via,omitempty"`
	Bound map[string]string `json:"bound,omitempty"`

	index int
}

// Kind is the outcome class of a Result.
type Kind string

const (
	Matched            Kind = "matched"
	Ambiguous          Kind = "ambiguous"
	NoMatch            Kind = "no_match"
	NeedsClarification Kind = "needs_clarification"
)

// Reason explains a NoMatch.
type Reason string

const (
	LowConfidence Reason = "low_confidence"
	NoCandidates  Reason = "no_candidates"
	ParseFailure  Reason = "parse_failure"
	Abandoned     Reason = "abandoned"
)

// Source records which path produced a result.
type Source string

const (
	Scored    Source = "scored"
	Compiled  Source = "compiled"
	Augmented Source = "augmented"
	Clarified Source = "clarified"
)

// Result is the outcome of resolving one utterance. Kind selects which
// fields are meaningful.
type Result struct {
	Kind   Kind   `json:"kind"`
	Source Source `json:"source"`

	// Matched and NeedsClarification
	Entry      string         `json:"entry,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	Executable string         `json:"executable,omitempty"`

	// NeedsClarification
	Missing  []string          `json:"missing,omitempty"`
	Question string            `json:"question,omitempty"`
	Verb     string            `json:"verb,omitempty"`
	Bound    map[string]string `json:"bound,omitempty"`

	// Ambiguous
	Candidates []Candidate `json:"candidates,omitempty"`

	// NoMatch
	Reason      Reason   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`

	Intent intent.Intent `json:"intent"`
}

func (r Result) String() string {
	switch r.Kind {
	case Matched:
		return fmt.Sprintf("matched %s (%.2f)", r.Executable, r.Confidence)
	case Ambiguous:
		names := make([]string, 0, len(r.Candidates))
		for _, c := range r.Candidates {
			names = append(names, fmt.Sprintf("%s (%.2f)", c.Name, c.Score))
		}
		return "ambiguous: " + strings.Join(names, ", ")
	case NeedsClarification:
		return fmt.Sprintf("%s needs %s: %s", r.Entry, strings.Join(r.Missing, ", "), r.Question)
	case NoMatch:
		s := "no match (" + string(r.Reason) + ")"
		if len(r.Suggestions) > 0 {
			s += "; did you mean " + strings.Join(r.Suggestions, ", ") + "?"
		}
		return s
	default:
		return string(r.Kind)
	}
}

// Pending returns the clarification slot a NeedsClarification result leaves
// behind, and nil for every other kind.
func (r Result) Pending() *Pending {
	if r.Kind != NeedsClarification {
		return nil
	}
	bound := make(map[string]string, len(r.Bound))
	for k, v := range r.Bound {
		bound[k] = v
	}
	return &Pending{
		Entry:      r.Entry,
		Verb:       r.Verb,
		Missing:    append([]string(nil), r.Missing...),
		Bound:      bound,
		Question:   r.Question,
		Confidence: r.Confidence,
		CreatedAt:  time.Now().UTC(),
	}
}

// Pending is the single outstanding clarification question of a session.
type Pending struct {
	Entry      string            `json:"entry"`
	Verb       string            `json:"verb"`
	Missing    []string          `json:"missing"`
	Bound      map[string]string `json:"bound,omitempty"`
	Question   string            `json:"question"`
	Confidence float64           `json:"confidence"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Marshal encodes p as JSON for a Store.
func (p *Pending) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPending decodes what Marshal wrote.
func UnmarshalPending(data []byte) (*Pending, error) {
	var p Pending
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
