package lexicon

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Correct maps an out-of-vocabulary word to the closest known word when
// exactly one word sits at the smallest distance within the length-scaled
// limit. Known words, short words and numerals are returned unchanged.
func (l *Lexicon) Correct(word string) (string, bool) {
	if utf8.RuneCountInString(word) < 4 || l.Known(word) || l.IsNumeral(word) || IsQuoted(word) {
		return word, false
	}
	if l.Lemma(word, Verb) != word || l.Lemma(word, Noun) != word {
		return word, false
	}
	limit := DistanceLimit(utf8.RuneCountInString(word))
	best, bestDist, tie := "", limit+1, false
	for _, cand := range l.vocab {
		if abs(utf8.RuneCountInString(cand)-utf8.RuneCountInString(word)) > limit {
			continue
		}
		d := levenshtein.ComputeDistance(word, cand)
		switch {
		case d < bestDist:
			best, bestDist, tie = cand, d, false
		case d == bestDist:
			tie = true
		}
	}
	if best == "" || tie || bestDist > limit {
		return word, false
	}
	return best, true
}

// DistanceLimit is the largest edit distance accepted for a word of the given
// length.
func DistanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
