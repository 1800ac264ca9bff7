package catalog

import (
	"strings"
	"unicode"

	"github.com/appengine-ltd/command-it/internal/lexicon"
)

// Decomposition splits an operation name into the words an utterance is
// matched against.
type Decomposition struct {
	Verb     string
	Object   string
	Particle string
}

// irregular names that no splitting rule gets right.
var irregularNames = map[string]Decomposition{
	"penup":         {Verb: "pen", Particle: "up"},
	"pendown":       {Verb: "pen", Particle: "down"},
	"pu":            {Verb: "pen", Particle: "up"},
	"pd":            {Verb: "pen", Particle: "down"},
	"goto":          {Verb: "go", Particle: "to"},
	"setheading":    {Verb: "set", Object: "heading"},
	"seth":          {Verb: "set", Object: "heading"},
	"setpos":        {Verb: "set", Object: "position"},
	"setposition":   {Verb: "set", Object: "position"},
	"setx":          {Verb: "set", Object: "x"},
	"sety":          {Verb: "set", Object: "y"},
	"pensize":       {Verb: "set", Object: "width"},
	"pencolor":      {Verb: "set", Object: "color"},
	"fillcolor":     {Verb: "fill", Object: "color"},
	"showturtle":    {Verb: "show", Object: "turtle"},
	"hideturtle":    {Verb: "hide", Object: "turtle"},
	"clearscreen":   {Verb: "clear", Object: "screen"},
	"resetscreen":   {Verb: "reset", Object: "screen"},
	"poweron":       {Verb: "power", Particle: "on"},
	"poweroff":      {Verb: "power", Particle: "off"},
	"shutdown":      {Verb: "shut", Particle: "down"},
	"startup":       {Verb: "start", Particle: "up"},
	"checkbalance":  {Verb: "check", Object: "balance"},
	"getbalance":    {Verb: "get", Object: "balance"},
	"speedup":       {Verb: "speed", Particle: "up"},
	"slowdown":      {Verb: "slow", Particle: "down"},
	"lookup":        {Verb: "look", Particle: "up"},
	"setup":         {Verb: "set", Particle: "up"},
	"backup":        {Verb: "back", Particle: "up"},
	"turnon":        {Verb: "turn", Particle: "on"},
	"turnoff":       {Verb: "turn", Particle: "off"},
	"switchon":      {Verb: "switch", Particle: "on"},
	"switchoff":     {Verb: "switch", Particle: "off"},
	"begin_fill":    {Verb: "begin", Object: "fill"},
	"end_fill":      {Verb: "end", Object: "fill"},
}

// particles ordered longest first so "over" wins over a trailing "r".
var particleSuffixes = []string{"over", "down", "back", "off", "out", "up", "on", "to", "in"}

// SnakeCase converts TurnLightOn, turnLightOn and turn-light-on to
// turn_light_on.
func SnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// Decompose applies, in order: the irregular table; a split on the first
// separator with a trailing particle peeled off the remainder; a split before
// a trailing particle word when the prefix is a known verb; the whole name as
// the verb.
func Decompose(name string, lex *lexicon.Lexicon) Decomposition {
	snake := SnakeCase(name)
	if d, ok := irregularNames[snake]; ok {
		return d
	}
	if d, ok := irregularNames[strings.ReplaceAll(snake, "_", "")]; ok {
		return d
	}

	if verb, rest, found := strings.Cut(snake, "_"); found {
		parts := strings.Split(rest, "_")
		d := Decomposition{Verb: verb}
		if n := len(parts); n > 0 && isParticle(parts[n-1], lex) {
			d.Particle = parts[n-1]
			parts = parts[:n-1]
		}
		d.Object = strings.Join(parts, " ")
		return d
	}

	for _, p := range particleSuffixes {
		prefix, ok := strings.CutSuffix(snake, p)
		if !ok || len(prefix) < 2 {
			continue
		}
		if lex == nil || lex.HasVerbSense(prefix) {
			return Decomposition{Verb: prefix, Particle: p}
		}
	}
	return Decomposition{Verb: snake}
}

func isParticle(word string, lex *lexicon.Lexicon) bool {
	if lex != nil {
		return lex.IsParticle(word)
	}
	for _, p := range particleSuffixes {
		if p == word {
			return true
		}
	}
	return false
}
