package lexicon

import (
	"strconv"
	"strings"
)

// IsNumeral reports whether a single token is a digit literal or a number word.
func (l *Lexicon) IsNumeral(token string) bool {
	if isDigitLiteral(token) {
		return true
	}
	_, ok := l.numberWord(token)
	return ok
}

// isDigitLiteral accepts signed decimal literals and rejects the words
// ParseFloat also knows ("inf", "nan").
func isDigitLiteral(s string) bool {
	t := strings.TrimPrefix(s, "-")
	if t == "" || !(t[0] >= '0' && t[0] <= '9' || t[0] == '.') {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// IsNumberConnector reports whether token may join two number words ("one
// hundred and two").
func IsNumberConnector(token string) bool {
	return token == "and"
}

func (l *Lexicon) numberWord(token string) (int, bool) {
	if v, ok := l.ones[token]; ok {
		return v, true
	}
	if v, ok := l.tens[token]; ok {
		return v, true
	}
	if v, ok := l.scales[token]; ok {
		return v, true
	}
	return 0, false
}

// ParseNumber converts a literal such as "50", "3.5", "fifty" or "one hundred
// and twenty five" to its value.
func (l *Lexicon) ParseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return 0, false
	}
	if lit := strings.ReplaceAll(text, ",", ""); isDigitLiteral(lit) {
		v, _ := strconv.ParseFloat(lit, 64)
		return v, true
	}
	words := strings.Fields(strings.ReplaceAll(text, "-", " "))
	total, current := 0, 0
	seen := false
	for i, w := range words {
		if IsNumberConnector(w) && i > 0 && i < len(words)-1 {
			continue
		}
		switch {
		case l.ones[w] != 0 || w == "zero":
			current += l.ones[w]
		case l.tens[w] != 0:
			current += l.tens[w]
		case l.scales[w] != 0:
			scale := l.scales[w]
			if current == 0 {
				current = 1
			}
			if scale == 100 {
				current *= scale
			} else {
				total += current * scale
				current = 0
			}
		default:
			return 0, false
		}
		seen = true
	}
	if !seen {
		return 0, false
	}
	return float64(total + current), true
}

// NumberKind classifies a number word by the role it plays when words are
// combined ("twenty" tens, "five" ones, "hundred" scale).
type NumberKind int

const (
	NotNumber NumberKind = iota
	Ones
	Tens
	Scale
)

func (l *Lexicon) NumberKind(word string) NumberKind {
	if _, ok := l.ones[word]; ok {
		return Ones
	}
	if _, ok := l.tens[word]; ok {
		return Tens
	}
	if _, ok := l.scales[word]; ok {
		return Scale
	}
	return NotNumber
}

// ContinuesNumber reports whether word extends a spelled-out number whose
// last word is prev: "twenty" + "five", "one" + "hundred", "hundred" + "two".
func (l *Lexicon) ContinuesNumber(prev, word string) bool {
	pk, wk := l.NumberKind(prev), l.NumberKind(word)
	switch {
	case pk == NotNumber || wk == NotNumber:
		return false
	case wk == Scale:
		return true
	case pk == Scale:
		return true
	case pk == Tens && wk == Ones:
		return l.ones[word] > 0 && l.ones[word] < 10
	default:
		return false
	}
}
