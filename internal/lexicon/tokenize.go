package lexicon

import (
	"regexp"
	"strings"
	"unicode"
)

var multiSpaceRE = regexp.MustCompile(`\s+`)

// Normalise lower-cases raw text and collapses separators to single spaces.
// Hyphens, underscores, slashes and apostrophes separate words, except a
// hyphen that starts a number, which is its sign; sentence
// punctuation is kept so the tokenizer can emit it; quotes are kept so quoted
// spans survive as one token.
func Normalise(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	var b strings.Builder
	lastSpace := true
	runes := []rune(raw)
	for i, r := range runes {
		switch {
		case r == '-' && lastSpace && i+1 < len(runes) && unicode.IsDigit(runes[i+1]):
			// a sign: "-10"
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case r == '.' || r == ',' || r == '!' || r == '?' || r == ';' || r == ':' || r == '"':
			b.WriteRune(r)
			lastSpace = false
		case r == '-' || r == '_' || r == '/' || r == '\'' || unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(b.String(), " "))
}

// Tokenize splits an utterance into word, number, punctuation and quoted
// tokens. Decimal points inside numbers stay attached ("3.5"); a quoted span
// is returned with its quotes so callers can recognise it.
func Tokenize(raw string) []string {
	text := normaliseKeepingQuotes(raw)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var (
		tokens []string
		cur    []rune
	)
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			flush()
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			inner := strings.TrimSpace(string(runes[i+1 : min(end, len(runes))]))
			if inner != "" {
				tokens = append(tokens, `"`+inner+`"`)
			}
			i = end
		case r == '-' && len(cur) == 0 && i+1 < len(runes) && unicode.IsDigit(runes[i+1]):
			cur = append(cur, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur = append(cur, r)
		case r == '.' && len(cur) > 0 && isDigits(cur) && i+1 < len(runes) && unicode.IsDigit(runes[i+1]):
			cur = append(cur, r)
		case r == '.' || r == ',' || r == '!' || r == '?' || r == ';' || r == ':':
			flush()
			tokens = append(tokens, string(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// normaliseKeepingQuotes behaves like Normalise outside quotes and preserves
// the original casing and separators inside them.
func normaliseKeepingQuotes(raw string) string {
	parts := strings.Split(raw, `"`)
	if len(parts) < 3 {
		return Normalise(strings.ReplaceAll(raw, `"`, " "))
	}
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 && i < len(parts)-1 {
			b.WriteString(` "`)
			b.WriteString(strings.TrimSpace(part))
			b.WriteString(`" `)
			continue
		}
		b.WriteString(Normalise(part))
	}
	return strings.TrimSpace(b.String())
}

// IsQuoted reports whether a token came from a quoted span.
func IsQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`)
}

// Unquote strips the quotes IsQuoted recognises.
func Unquote(token string) string {
	if IsQuoted(token) {
		return token[1 : len(token)-1]
	}
	return token
}

func isDigits(rs []rune) bool {
	if len(rs) > 0 && rs[0] == '-' {
		rs = rs[1:]
	}
	for _, r := range rs {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return len(rs) > 0
}

func isPunct(token string) bool {
	switch token {
	case ".", ",", "!", "?", ";", ":":
		return true
	default:
		return false
	}
}
