package lexicon

import "strings"

// Lemma returns the base form of word for the given part of speech. Derived
// forms are only reduced when the reduction lands on a known word, except for
// regular noun plurals which are stripped heuristically.
func (l *Lexicon) Lemma(word string, pos POS) string {
	switch pos {
	case Verb:
		if lemma, ok := l.verbLemmas[word]; ok {
			return lemma
		}
		if l.HasSense(word, Verb) {
			return word
		}
		for _, c := range verbCandidates(word) {
			if l.HasSense(c, Verb) {
				return c
			}
		}
		return word
	case Noun:
		if lemma, ok := l.nounLemmas[word]; ok {
			return lemma
		}
		if l.HasSense(word, Noun) || l.units.has(word) {
			return word
		}
		cands := nounCandidates(word)
		for _, c := range cands {
			if l.HasSense(c, Noun) || l.units.has(c) {
				return c
			}
		}
		if len(cands) > 0 && len(word) > 3 && !strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us") {
			return cands[len(cands)-1]
		}
		return word
	default:
		return word
	}
}

func verbCandidates(word string) []string {
	var out []string
	switch {
	case strings.HasSuffix(word, "ying") && len(word) > 5:
		out = append(out, strings.TrimSuffix(word, "ying")+"ie", strings.TrimSuffix(word, "ing"))
	case strings.HasSuffix(word, "ing") && len(word) > 4:
		stem := strings.TrimSuffix(word, "ing")
		out = append(out, stem, stem+"e")
		if undoubled, ok := undouble(stem); ok {
			out = append(out, undoubled)
		}
	case strings.HasSuffix(word, "ied") && len(word) > 4:
		out = append(out, strings.TrimSuffix(word, "ied")+"y")
	case strings.HasSuffix(word, "ed") && len(word) > 3:
		stem := strings.TrimSuffix(word, "ed")
		out = append(out, stem, stem+"e")
		if undoubled, ok := undouble(stem); ok {
			out = append(out, undoubled)
		}
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		out = append(out, strings.TrimSuffix(word, "ies")+"y")
	case strings.HasSuffix(word, "es") && len(word) > 3:
		out = append(out, strings.TrimSuffix(word, "es"), strings.TrimSuffix(word, "s"))
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && len(word) > 2:
		out = append(out, strings.TrimSuffix(word, "s"))
	}
	return out
}

// nounCandidates lists singular guesses, most specific rule first and the
// plain "-s" strip last.
func nounCandidates(word string) []string {
	var out []string
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		out = append(out, strings.TrimSuffix(word, "ies")+"y")
	case strings.HasSuffix(word, "ves") && len(word) > 4:
		stem := strings.TrimSuffix(word, "ves")
		out = append(out, stem+"f", stem+"fe")
	case strings.HasSuffix(word, "es") && len(word) > 3:
		out = append(out, strings.TrimSuffix(word, "es"))
	}
	if strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && len(word) > 2 {
		out = append(out, strings.TrimSuffix(word, "s"))
	}
	return out
}

func undouble(stem string) (string, bool) {
	n := len(stem)
	if n >= 3 && stem[n-1] == stem[n-2] && !isVowel(stem[n-1]) {
		return stem[:n-1], true
	}
	return "", false
}

// Inflections returns the regular and irregular forms of lemma for its part of
// speech: the plural for nouns; third person, past and gerund for verbs.
func (l *Lexicon) Inflections(lemma string, pos POS) []string {
	var forms []string
	switch pos {
	case Noun:
		if plural, ok := l.nounPlurals[lemma]; ok {
			forms = append(forms, plural)
		} else {
			forms = append(forms, sibilantPlural(lemma))
		}
	case Verb:
		irr := l.verbForms[lemma]
		forms = append(forms,
			orDefault(irr.Third, sibilantPlural(lemma)),
			orDefault(irr.Past, regularPast(lemma)),
			orDefault(irr.Gerund, regularGerund(lemma)),
		)
	default:
		return nil
	}
	out := make([]string, 0, len(forms))
	for _, f := range forms {
		if f != "" && f != lemma {
			out = appendUnique(out, f)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func sibilantPlural(w string) string {
	switch {
	case w == "":
		return ""
	case strings.HasSuffix(w, "s"), strings.HasSuffix(w, "x"), strings.HasSuffix(w, "z"),
		strings.HasSuffix(w, "ch"), strings.HasSuffix(w, "sh"):
		return w + "es"
	case consonantY(w):
		return w[:len(w)-1] + "ies"
	default:
		return w + "s"
	}
}

func regularPast(w string) string {
	switch {
	case w == "":
		return ""
	case strings.HasSuffix(w, "e"):
		return w + "d"
	case consonantY(w):
		return w[:len(w)-1] + "ied"
	case shortCVC(w):
		return w + w[len(w)-1:] + "ed"
	default:
		return w + "ed"
	}
}

func regularGerund(w string) string {
	switch {
	case w == "":
		return ""
	case strings.HasSuffix(w, "ie"):
		return w[:len(w)-2] + "ying"
	case strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "ee") && len(w) > 2:
		return w[:len(w)-1] + "ing"
	case shortCVC(w):
		return w + w[len(w)-1:] + "ing"
	default:
		return w + "ing"
	}
}

func consonantY(w string) bool {
	n := len(w)
	return n >= 2 && w[n-1] == 'y' && !isVowel(w[n-2])
}

// shortCVC matches short consonant-vowel-consonant endings that double their
// final consonant (stop -> stopping), excluding w, x and y.
func shortCVC(w string) bool {
	n := len(w)
	if n < 3 || n > 4 {
		return false
	}
	last := w[n-1]
	if isVowel(last) || last == 'w' || last == 'x' || last == 'y' {
		return false
	}
	if n == 4 && isVowel(w[0]) {
		return false
	}
	return isVowel(w[n-2]) && !isVowel(w[n-3])
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}
