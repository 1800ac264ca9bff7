// Package catalog builds the immutable set of operations a session can invoke,
// from Go source, Python source or a YAML/JSON manifest.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/appengine-ltd/command-it/internal/lexicon"
)

var (
	ErrEmptyCatalog  = errors.New("no public callables found")
	ErrParseFailure  = errors.New("source description could not be parsed")
	ErrAliasConflict = errors.New("alias conflict")
)

// ParamType is the declared type of a parameter.
type ParamType string

const (
	TypeInt    ParamType = "int"
	TypeFloat  ParamType = "float"
	TypeString ParamType = "str"
	TypeBool   ParamType = "bool"
	TypeAny    ParamType = "any"
)

// ParseType maps Go and Python spellings onto the five parameter types.
// Optional wrappers (Optional[int], int | None, *int) are unwrapped.
func ParseType(s string) ParamType {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "*")
	if inner, ok := strings.CutPrefix(s, "Optional["); ok {
		s = strings.TrimSuffix(inner, "]")
	}
	if head, _, ok := strings.Cut(s, "|"); ok {
		s = strings.TrimSpace(head)
	}
	switch strings.ToLower(s) {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "integer":
		return TypeInt
	case "float", "float32", "float64", "double", "number":
		return TypeFloat
	case "str", "string":
		return TypeString
	case "bool", "boolean":
		return TypeBool
	default:
		return TypeAny
	}
}

func (t ParamType) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}

type Parameter struct {
	Name     string
	Type     ParamType
	Required bool
	// Default is the literal default as written in the source; empty when the
	// parameter is required.
	Default string
}

// Phrase is one way of naming an entry (its canonical name or an alias)
// together with the derived word forms the scorer compares against.
type Phrase struct {
	Name     string
	Compact  string
	Verb     string
	Object   string
	Particle string

	VerbForms      []string
	VerbSynonyms   []string
	ObjectForms    []string
	ObjectSynonyms []string
	// Direction is set when the verb itself is a direction word (forward,
	// left), which changes how synonyms and bare invocations are scored.
	Direction bool
}

type Entry struct {
	Name    string
	Params  []Parameter
	Doc     string
	Aliases []string
	// Phrases[0] is the canonical name; the rest follow Aliases.
	Phrases []Phrase
}

func (e *Entry) Verb() string     { return e.Phrases[0].Verb }
func (e *Entry) Object() string   { return e.Phrases[0].Object }
func (e *Entry) Particle() string { return e.Phrases[0].Particle }

// Param returns the named parameter.
func (e *Entry) Param(name string) (Parameter, bool) {
	for _, p := range e.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Catalog is insertion ordered and immutable after Build.
type Catalog struct {
	target  string
	order   []string
	entries map[string]*Entry
	aliases map[string]string
	vocab   map[string]struct{}
	// addressee is the target name as words: "Turtle" -> "turtle".
	addressee string
	objects   map[string]struct{}
}

func (c *Catalog) Target() string { return c.target }
func (c *Catalog) Len() int       { return len(c.order) }

// Names returns canonical names in insertion order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Entries returns entries in insertion order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}
	return out
}

// Entry returns the entry with the canonical name.
func (c *Catalog) Entry(name string) (*Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Lookup resolves a canonical name or an alias.
func (c *Catalog) Lookup(name string) (*Entry, bool) {
	if e, ok := c.entries[name]; ok {
		return e, true
	}
	if canonical, ok := c.aliases[name]; ok {
		return c.entries[canonical], true
	}
	return nil, false
}

// Canonical maps an alias to its entry name. Canonical names map to
// themselves.
func (c *Catalog) Canonical(name string) (string, bool) {
	if _, ok := c.entries[name]; ok {
		return name, true
	}
	canonical, ok := c.aliases[name]
	return canonical, ok
}

// Aliases returns a copy of the alias -> canonical mapping.
func (c *Catalog) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}

// Mentions reports whether word names something in the catalog: the target,
// an entry, an alias, a parameter, or one of their derived verb/object/particle
// words. Such words are exempt from spelling correction.
func (c *Catalog) Mentions(word string) bool {
	_, ok := c.vocab[word]
	return ok
}

// Addresses reports whether word is the target itself, as in "move the turtle
// forward", and not the object of any entry.
func (c *Catalog) Addresses(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || word != c.addressee {
		return false
	}
	_, used := c.objects[word]
	return !used
}

// Closest returns up to n canonical names whose name, alias or verb is within
// edit distance of word, nearest first.
func (c *Catalog) Closest(word string, n int) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || n <= 0 {
		return nil
	}
	type scored struct {
		name string
		dist int
		pos  int
	}
	best := map[string]scored{}
	limit := lexicon.DistanceLimit(len(word))
	for pos, name := range c.order {
		e := c.entries[name]
		for _, ph := range e.Phrases {
			for _, cand := range []string{ph.Compact, ph.Verb} {
				if cand == "" {
					continue
				}
				d := levenshtein.ComputeDistance(word, cand)
				if d > limit {
					continue
				}
				if cur, ok := best[name]; !ok || d < cur.dist {
					best[name] = scored{name: name, dist: d, pos: pos}
				}
			}
		}
	}
	list := make([]scored, 0, len(best))
	for _, s := range best {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dist == list[j].dist {
			return list[i].pos < list[j].pos
		}
		return list[i].dist < list[j].dist
	})
	out := make([]string, 0, min(n, len(list)))
	for _, s := range list[:min(n, len(list))] {
		out = append(out, s.name)
	}
	return out
}

// Method is a callable as reported by a Source, before derivation.
type Method struct {
	Name    string
	Doc     string
	Aliases []string
	Params  []Parameter
}

// Description is what a Source reports about a target.
type Description struct {
	Target  string
	Methods []Method
	// Aliases found outside method definitions (alias -> method name).
	Aliases map[string]string
}

// Source describes a target. Implementations must not return private
// callables' bodies; Build filters by name anyway.
type Source interface {
	Describe() (Description, error)
}

// Build derives a Catalog from src using lex for word forms and synonyms. It
// fails with ErrParseFailure when src cannot be read and ErrEmptyCatalog when
// nothing public is left.
func Build(src Source, lex *lexicon.Lexicon) (*Catalog, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	desc, err := src.Describe()
	if err != nil {
		if errors.Is(err, ErrParseFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return FromDescription(desc, lex)
}

// FromDescription builds a catalog from an already parsed description.
func FromDescription(desc Description, lex *lexicon.Lexicon) (*Catalog, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	c := &Catalog{
		target:  desc.Target,
		entries: make(map[string]*Entry),
		aliases: make(map[string]string),
		vocab:   make(map[string]struct{}),
		objects: make(map[string]struct{}),
	}
	c.addressee = strings.ToLower(strings.ReplaceAll(SnakeCase(desc.Target), "_", " "))
	for _, w := range strings.Fields(c.addressee) {
		c.remember(w)
	}
	for _, m := range desc.Methods {
		if !isPublic(m.Name) {
			continue
		}
		if _, dup := c.entries[m.Name]; dup {
			continue
		}
		e := &Entry{
			Name:   m.Name,
			Params: append([]Parameter(nil), m.Params...),
			Doc:    strings.TrimSpace(m.Doc),
		}
		c.entries[m.Name] = e
		c.order = append(c.order, m.Name)
	}
	if len(c.order) == 0 {
		return nil, ErrEmptyCatalog
	}

	addAlias := func(alias, target string) error {
		alias = strings.TrimSpace(alias)
		if alias == "" || alias == target || !isPublic(alias) {
			return nil
		}
		if _, ok := c.entries[target]; !ok {
			return nil
		}
		if _, clash := c.entries[alias]; clash {
			return fmt.Errorf("%w: %q is both an alias of %q and an entry", ErrAliasConflict, alias, target)
		}
		if prev, ok := c.aliases[alias]; ok && prev != target {
			return fmt.Errorf("%w: %q refers to both %q and %q", ErrAliasConflict, alias, prev, target)
		}
		if _, ok := c.aliases[alias]; !ok {
			c.aliases[alias] = target
			c.entries[target].Aliases = append(c.entries[target].Aliases, alias)
		}
		return nil
	}
	for _, m := range desc.Methods {
		if _, ok := c.entries[m.Name]; !ok {
			continue
		}
		aliases := append(append([]string(nil), m.Aliases...), docAliases(m.Doc)...)
		for _, a := range aliases {
			if err := addAlias(a, m.Name); err != nil {
				return nil, err
			}
		}
	}
	extra := make([]string, 0, len(desc.Aliases))
	for alias := range desc.Aliases {
		extra = append(extra, alias)
	}
	sort.Strings(extra)
	for _, alias := range extra {
		if err := addAlias(alias, desc.Aliases[alias]); err != nil {
			return nil, err
		}
	}

	for _, name := range c.order {
		e := c.entries[name]
		docVerb := leadingDocVerb(e.Doc, lex)
		e.Phrases = append(e.Phrases, derivePhrase(e.Name, docVerb, lex))
		for _, a := range e.Aliases {
			e.Phrases = append(e.Phrases, derivePhrase(a, docVerb, lex))
		}
		for _, p := range e.Params {
			c.remember(p.Name)
			for _, w := range strings.Split(SnakeCase(p.Name), "_") {
				c.remember(w)
			}
		}
		for _, ph := range e.Phrases {
			c.remember(ph.Name, ph.Compact, ph.Verb, ph.Particle)
			if ph.Object != "" {
				c.objects[ph.Object] = struct{}{}
				for _, f := range ph.ObjectForms {
					c.objects[f] = struct{}{}
				}
			}
			for _, w := range strings.Fields(ph.Object) {
				c.remember(w)
			}
			for _, w := range strings.Split(SnakeCase(ph.Name), "_") {
				c.remember(w)
			}
		}
	}
	return c, nil
}

func (c *Catalog) remember(words ...string) {
	for _, w := range words {
		if w != "" {
			c.vocab[strings.ToLower(w)] = struct{}{}
		}
	}
}

func derivePhrase(name, docVerb string, lex *lexicon.Lexicon) Phrase {
	d := Decompose(name, lex)
	ph := Phrase{
		Name:     name,
		Compact:  strings.ReplaceAll(SnakeCase(name), "_", ""),
		Verb:     d.Verb,
		Object:   d.Object,
		Particle: d.Particle,
	}
	ph.Direction = lex.IsDirection(ph.Verb)
	ph.VerbForms = lex.Inflections(ph.Verb, lexicon.Verb)
	ph.VerbSynonyms = lex.Synonyms(ph.Verb, lexicon.Verb, 2)
	if ph.Direction {
		ph.VerbSynonyms = mergeWords(ph.VerbSynonyms, lex.Synonyms(ph.Verb, lexicon.Adverb, 2))
		for _, v := range lexicon.DirectionVariants(ph.Verb) {
			if lex.IsDirection(v) {
				ph.VerbSynonyms = mergeWords(ph.VerbSynonyms, []string{v})
			}
		}
	}
	if docVerb != "" && docVerb != ph.Verb {
		ph.VerbSynonyms = mergeWords(ph.VerbSynonyms, []string{docVerb})
	}
	ph.VerbSynonyms = without(ph.VerbSynonyms, ph.Verb)
	if ph.Object != "" {
		words := strings.Fields(ph.Object)
		head := words[len(words)-1]
		prefix := strings.Join(words[:len(words)-1], " ")
		for _, form := range lex.Inflections(head, lexicon.Noun) {
			ph.ObjectForms = append(ph.ObjectForms, strings.TrimSpace(prefix+" "+form))
		}
		if len(words) == 1 {
			ph.ObjectSynonyms = lex.Synonyms(head, lexicon.Noun, 2)
		}
	}
	return ph
}

// leadingDocVerb returns the first word of a docstring when it is a verb
// ("Move the turtle forward." -> move).
func leadingDocVerb(doc string, lex *lexicon.Lexicon) string {
	fields := strings.Fields(lexicon.Normalise(doc))
	if len(fields) == 0 {
		return ""
	}
	first := strings.Trim(fields[0], ".,!?;:")
	lemma := lex.Lemma(first, lexicon.Verb)
	if lex.HasSense(lemma, lexicon.Verb) {
		return lemma
	}
	return ""
}

// docAliases reads an "Aliases: a, b" (or "Alias: a") line from a docstring.
func docAliases(doc string) []string {
	var out []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		var rest string
		switch {
		case strings.HasPrefix(lower, "aliases:"):
			rest = line[len("aliases:"):]
		case strings.HasPrefix(lower, "alias:"):
			rest = line[len("alias:"):]
		default:
			continue
		}
		for _, a := range strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, strings.TrimSpace(a))
		}
	}
	return out
}

func isPublic(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

func mergeWords(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, w := range b {
		found := false
		for _, v := range out {
			if v == w {
				found = true
				break
			}
		}
		if !found {
			out = append(out, w)
		}
	}
	return out
}

func without(list []string, w string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != w {
			out = append(out, v)
		}
	}
	return out
}
