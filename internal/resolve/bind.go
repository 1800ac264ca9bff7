package resolve

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/intent"
	"github.com/appengine-ltd/command-it/internal/lexicon"
)

var (
	ErrTypeCoercion = errors.New("literal does not fit parameter type")
	ErrExecutable   = errors.New("malformed executable")
)

var (
	truthy = map[string]bool{"true": true, "yes": true, "on": true, "enable": true, "enabled": true, "1": true}
	falsy  = map[string]bool{"false": true, "no": true, "off": true, "disable": true, "disabled": true, "0": true}
)

// Binding is the outcome of assigning utterance literals to parameters.
// Literals keeps the raw text so a clarification can resume from it.
type Binding struct {
	Params   map[string]any
	Literals map[string]string
	Missing  []string
}

// Complete reports whether every required parameter is bound.
func (b Binding) Complete() bool { return len(b.Missing) == 0 }

// Binder assigns utterance literals to an entry's parameters. Lex parses
// number words; nil means the embedded lexicon.
type Binder struct {
	Lex *lexicon.Lexicon
}

// Bind assigns literals from in to e's parameters in declaration order.
// objectUsed marks the intent's object as already consumed by the verb.
//
// Numbers go to numeric and untyped parameters. Booleans take a yes/no word,
// else the particle. Text parameters take quoted literals, then modifiers,
// then the leftover object or unit words. Untyped parameters take only
// numbers and quoted literals, so stray words never become arguments.
func (b Binder) Bind(e *catalog.Entry, in intent.Intent, objectUsed bool) Binding {
	literals := map[string]string{}
	numbers := in.Numbers
	quoted := append([]string(nil), in.Quoted...)
	modifiers := append([]string(nil), in.Modifiers...)
	extras := append([]string(nil), in.Extras...)

	for _, p := range e.Params {
		if len(numbers) == 0 {
			break
		}
		if p.Type.Numeric() || p.Type == catalog.TypeAny {
			literals[p.Name] = numbers[0]
			numbers = numbers[1:]
		}
	}

	particle := in.Particle
	for _, p := range e.Params {
		if p.Type != catalog.TypeBool {
			continue
		}
		if i := indexFunc(modifiers, isBoolWord); i >= 0 {
			literals[p.Name] = modifiers[i]
			modifiers = append(modifiers[:i], modifiers[i+1:]...)
			continue
		}
		if i := indexFunc(extras, isBoolWord); i >= 0 {
			literals[p.Name] = extras[i]
			extras = append(extras[:i], extras[i+1:]...)
			continue
		}
		if isBoolWord(particle) {
			literals[p.Name] = particle
			particle = ""
		}
	}

	var leftovers []string
	if e.Object() == "" && in.Object != "" && !objectUsed {
		leftovers = append(leftovers, in.Object)
	}
	leftovers = append(leftovers, in.Units...)
	for _, p := range e.Params {
		if p.Type != catalog.TypeString && p.Type != catalog.TypeAny {
			continue
		}
		if _, done := literals[p.Name]; done {
			continue
		}
		switch {
		case len(quoted) > 0:
			literals[p.Name] = quoted[0]
			quoted = quoted[1:]
		case p.Type == catalog.TypeAny:
		case len(modifiers) > 0:
			literals[p.Name] = modifiers[0]
			modifiers = modifiers[1:]
		case len(leftovers) > 0:
			literals[p.Name] = leftovers[0]
			leftovers = leftovers[1:]
		}
	}
	return b.Coerce(e, literals)
}

// Coerce converts raw literals to typed values and works out what is still
// missing. A literal that does not fit its type is dropped and the parameter
// counts as missing.
func (b Binder) Coerce(e *catalog.Entry, literals map[string]string) Binding {
	out := Binding{Params: map[string]any{}, Literals: map[string]string{}}
	for _, p := range e.Params {
		raw, ok := literals[p.Name]
		if ok {
			v, err := b.CoerceValue(raw, p.Type)
			if err == nil {
				out.Params[p.Name] = v
				out.Literals[p.Name] = raw
				continue
			}
		}
		if p.Required {
			out.Missing = append(out.Missing, p.Name)
		}
	}
	return out
}

// CoerceValue converts one literal to the Go value of the given type: int,
// float64, string or bool. Undeclared parameters become an int or float64
// when the literal is a number, a Number when it is an integer too large for
// int, else a string.
func (b Binder) CoerceValue(raw string, t catalog.ParamType) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty literal", ErrTypeCoercion)
	}
	switch t {
	case catalog.TypeInt:
		n, ok := b.integer(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an int", ErrTypeCoercion, raw)
		}
		return n, nil
	case catalog.TypeFloat:
		f, ok := b.number(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a float", ErrTypeCoercion, raw)
		}
		return f, nil
	case catalog.TypeBool:
		w := strings.ToLower(raw)
		switch {
		case truthy[w]:
			return true, nil
		case falsy[w]:
			return false, nil
		}
		return nil, fmt.Errorf("%w: %q is not a bool", ErrTypeCoercion, raw)
	case catalog.TypeString:
		return lexicon.Unquote(raw), nil
	default:
		if n, ok := b.integer(raw); ok {
			return n, nil
		}
		if lit := strings.ReplaceAll(raw, ",", ""); isIntegerLiteral(lit) {
			return Number(lit), nil
		}
		if f, ok := b.number(raw); ok {
			return f, nil
		}
		return lexicon.Unquote(raw), nil
	}
}

// Number is an integer literal kept as typed because int cannot hold it.
type Number string

// MarshalJSON writes the literal as a JSON number.
func (n Number) MarshalJSON() ([]byte, error) { return []byte(n), nil }

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// integer reads raw as an int. Digit literals are parsed directly; number
// words and decimals like "2.0" go through float64 and must be whole and
// exactly representable.
func (b Binder) integer(raw string) (int, bool) {
	lit := strings.ReplaceAll(raw, ",", "")
	if n, err := strconv.Atoi(lit); err == nil {
		return n, true
	}
	if isIntegerLiteral(lit) {
		return 0, false
	}
	f, ok := b.number(raw)
	if !ok || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return 0, false
	}
	return int(f), true
}

func (b Binder) number(raw string) (float64, bool) {
	lex := b.Lex
	if lex == nil {
		lex = lexicon.Default()
	}
	return lex.ParseNumber(raw)
}

func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isBoolWord(w string) bool {
	w = strings.ToLower(w)
	return truthy[w] || falsy[w]
}

func indexFunc(list []string, f func(string) bool) int {
	for i, v := range list {
		if f(v) {
			return i
		}
	}
	return -1
}

// Question is the fixed clarification prompt for a verb.
func Question(verb string) string {
	return verb + " what?"
}

// Executable renders name(p1=v1, p2=v2) with parameters in declaration order.
// Only parameters present in params are written.
func Executable(e *catalog.Entry, params map[string]any) string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteByte('(')
	first := true
	for _, p := range e.Params {
		v, ok := params[p.Name]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(FormatValue(v))
	}
	b.WriteByte(')')
	return b.String()
}

// FormatValue renders a bound value: strings quoted, floats always with a
// decimal point, ints, Numbers and bools bare.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case Number:
		return string(t)
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	default:
		return strconv.Quote(fmt.Sprint(t))
	}
}

// ParseExecutable reads back what Executable renders.
func ParseExecutable(s string) (string, map[string]any, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("%w: %q", ErrExecutable, s)
	}
	name := strings.TrimSpace(s[:open])
	rest := s[open+1 : len(s)-1]
	params := map[string]any{}
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			return name, params, nil
		}
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return "", nil, fmt.Errorf("%w: expected key=value in %q", ErrExecutable, rest)
		}
		key := strings.TrimSpace(rest[:eq])
		rest = strings.TrimLeftFunc(rest[eq+1:], unicode.IsSpace)

		var val any
		if strings.HasPrefix(rest, `"`) {
			lit, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return "", nil, fmt.Errorf("%w: %v", ErrExecutable, err)
			}
			val, _ = strconv.Unquote(lit)
			rest = rest[len(lit):]
		} else {
			end := strings.IndexByte(rest, ',')
			if end < 0 {
				end = len(rest)
			}
			val = parseBare(strings.TrimSpace(rest[:end]))
			rest = rest[end:]
		}
		params[key] = val

		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest != "" {
			if rest[0] != ',' {
				return "", nil, fmt.Errorf("%w: expected ',' in %q", ErrExecutable, rest)
			}
			rest = rest[1:]
		}
	}
}

func parseBare(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if isIntegerLiteral(s) {
		return Number(s)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
