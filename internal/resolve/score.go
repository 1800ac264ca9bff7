package resolve

import (
	"math"
	"sort"

	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/intent"
)

// Scoring weights. A full match (verb, object and particle all exact) scores
// 1.0.
const (
	verbExact          = 0.5
	verbInflection     = 0.45
	verbSynonym        = 0.4
	verbReverseSynonym = 0.35
	verbDirection      = 0.5

	objectExact      = 0.3
	objectInflection = 0.25
	objectSynonym    = 0.2

	particleWeight = 0.2
	directionBonus = 0.1
	scorePrecision = 1e4
)

// Scorer computes a confidence for every catalog entry against an intent.
// Only the verb, object and particle gates drop an entry; the score itself
// never does.
type Scorer struct{}

// Score returns every candidate that passes the gates, ranked by descending
// score, then verb tier, then catalog order.
func (s Scorer) Score(in intent.Intent, cat *catalog.Catalog) []Candidate {
	var out []Candidate
	for i, e := range cat.Entries() {
		c, ok := s.ScoreEntry(in, e)
		if !ok {
			continue
		}
		c.index = i
		out = append(out, c)
	}
	Rank(out)
	return out
}

// Rank sorts candidates in place.
func Rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.VerbMatch != b.VerbMatch {
			return a.VerbMatch > b.VerbMatch
		}
		return a.index < b.index
	})
}

// ScoreEntry evaluates the canonical phrase and every alias phrase of e and
// keeps the best.
func (s Scorer) ScoreEntry(in intent.Intent, e *catalog.Entry) (Candidate, bool) {
	var (
		best  Candidate
		found bool
	)
	for i, ph := range e.Phrases {
		c, ok := s.scorePhrase(in, e, ph)
		if !ok {
			continue
		}
		if i > 0 {
			c.Via = ph.Name
		}
		if !found || c.Score > best.Score {
			best, found = c, true
		}
	}
	return best, found
}

func (s Scorer) scorePhrase(in intent.Intent, e *catalog.Entry, ph catalog.Phrase) (Candidate, bool) {
	c := Candidate{Entry: e, Name: e.Name}

	verb, reverse, whole := verbMatch(in.Verb, in.VerbForms, in.VerbSynonyms, ph)
	consumed := false
	// the object may name the verb ("draw a circle" reaches circle()); it is
	// also tried when the object would otherwise be a leftover the entry
	// cannot bind
	if in.Object != "" && (verb == None || ph.Object == "" && !hasTextParam(e)) {
		if v, r, w := verbMatch(in.Object, in.ObjectForms, in.ObjectSynonyms, ph); v != None {
			verb, reverse, whole, consumed = v, r, w, true
			c.ObjectAsVerb = true
		}
	}
	if verb == None {
		return Candidate{}, false
	}
	c.VerbMatch = verb

	// object gate
	switch {
	case ph.Object != "" && whole:
		c.ObjectMatch = Exact
	case ph.Object != "":
		if consumed || in.Object == "" {
			return Candidate{}, false
		}
		c.ObjectMatch = objectMatch(in, ph)
		if c.ObjectMatch == None {
			return Candidate{}, false
		}
	case in.Object != "" && !consumed:
		// a leftover object can still be the literal of a text parameter
		if !hasTextParam(e) {
			return Candidate{}, false
		}
	}

	// particle gate
	switch {
	case ph.Particle != "" && whole:
		c.ParticleMatched = true
	case ph.Particle != "":
		if in.Particle != ph.Particle {
			return Candidate{}, false
		}
		c.ParticleMatched = true
	case in.Particle == "":
		c.ParticleMatched = true
	case ph.Direction && isFolded(in, in.Particle):
		// the particle was a direction and already counted toward the verb
		c.ParticleMatched = true
	}

	c.Score = score(c, reverse, ph.Direction, ph.Object == "")
	return c, true
}

func score(c Candidate, reverse, direction, objectless bool) float64 {
	var v float64
	switch c.VerbMatch {
	case Exact:
		v = verbExact
	case Inflection:
		v = verbInflection
	case Synonym:
		v = verbSynonym
		if reverse {
			v = verbReverseSynonym
		}
	}
	// only a direction the utterance named earns the full verb weight
	if direction && c.VerbMatch != Exact && !reverse {
		v = verbDirection
	}
	switch c.ObjectMatch {
	case Exact:
		v += objectExact
	case Inflection:
		v += objectInflection
	case Synonym:
		v += objectSynonym
	}
	if c.ParticleMatched {
		v += particleWeight
	}
	if direction && objectless {
		v += directionBonus
	}
	return clampScore(v)
}

func clampScore(v float64) float64 {
	v = math.Round(v*scorePrecision) / scorePrecision
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// verbMatch compares a word (with its forms and synonyms) against a phrase's
// verb. reverse reports a synonym found only on the entry side; whole
// reports that the word spelled the entire name ("penup", "setheading").
func verbMatch(word string, forms, synonyms []string, ph catalog.Phrase) (kind MatchKind, reverse, whole bool) {
	switch {
	case word == "":
		return None, false, false
	case word == ph.Verb:
		return Exact, false, false
	case word == ph.Compact || word == ph.Name:
		return Exact, false, true
	case contains(ph.VerbForms, word) || contains(forms, ph.Verb):
		return Inflection, false, false
	case contains(synonyms, ph.Verb):
		return Synonym, false, false
	case contains(ph.VerbSynonyms, word) || containsAny(ph.VerbSynonyms, forms):
		return Synonym, true, false
	}
	return None, false, false
}

func objectMatch(in intent.Intent, ph catalog.Phrase) MatchKind {
	switch {
	case in.Object == ph.Object:
		return Exact
	case contains(ph.ObjectForms, in.Object) || contains(in.ObjectForms, ph.Object):
		return Inflection
	case contains(in.ObjectSynonyms, ph.Object) || contains(ph.ObjectSynonyms, in.Object) ||
		containsAny(ph.ObjectSynonyms, in.ObjectForms):
		return Synonym
	}
	return None
}

func isFolded(in intent.Intent, word string) bool {
	return contains(in.Directions, word)
}

func hasTextParam(e *catalog.Entry) bool {
	for _, p := range e.Params {
		if p.Type == catalog.TypeString {
			return true
		}
	}
	return false
}

func contains(list []string, w string) bool {
	for _, v := range list {
		if v == w {
			return true
		}
	}
	return false
}

func containsAny(list, words []string) bool {
	for _, w := range words {
		if contains(list, w) {
			return true
		}
	}
	return false
}
