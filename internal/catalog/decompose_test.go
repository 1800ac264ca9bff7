package catalog

import (
	"testing"

	"github.com/appengine-ltd/command-it/internal/lexicon"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "turn_light_on", want: "turn_light_on"},
		{in: "TurnLightOn", want: "turn_light_on"},
		{in: "turnLightOn", want: "turn_light_on"},
		{in: "turn-light on", want: "turn_light_on"},
		{in: "HTTPServer", want: "http_server"},
		{in: "__private__", want: "private"},
		{in: "forward", want: "forward"},
	}
	for _, tc := range tests {
		if got := SnakeCase(tc.in); got != tc.want {
			t.Fatalf("SnakeCase(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestDecompose(t *testing.T) {
	lex := lexicon.Default()
	tests := []struct {
		name string
		want Decomposition
	}{
		{name: "turn_light_on", want: Decomposition{Verb: "turn", Object: "light", Particle: "on"}},
		{name: "TurnLightOn", want: Decomposition{Verb: "turn", Object: "light", Particle: "on"}},
		{name: "turn_air_conditioner_on", want: Decomposition{Verb: "turn", Object: "air conditioner", Particle: "on"}},
		{name: "set_volume", want: Decomposition{Verb: "set", Object: "volume"}},
		{name: "CheckBalance", want: Decomposition{Verb: "check", Object: "balance"}},
		{name: "forward", want: Decomposition{Verb: "forward"}},
		{name: "penup", want: Decomposition{Verb: "pen", Particle: "up"}},
		{name: "goto", want: Decomposition{Verb: "go", Particle: "to"}},
		{name: "pencolor", want: Decomposition{Verb: "set", Object: "color"}},
		{name: "shutdown", want: Decomposition{Verb: "shut", Particle: "down"}},
		{name: "moveon", want: Decomposition{Verb: "move", Particle: "on"}},
		{name: "startover", want: Decomposition{Verb: "start", Particle: "over"}},
		{name: "pickup", want: Decomposition{Verb: "pickup"}},
		{name: "go_back", want: Decomposition{Verb: "go", Particle: "back"}},
	}
	for _, tc := range tests {
		if got := Decompose(tc.name, lex); got != tc.want {
			t.Fatalf("Decompose(%q)=%+v want=%+v", tc.name, got, tc.want)
		}
	}
}

func TestParseType(t *testing.T) {
	tests := map[string]ParamType{
		"int":           TypeInt,
		"int64":         TypeInt,
		"float":         TypeFloat,
		"float64":       TypeFloat,
		"str":           TypeString,
		"string":        TypeString,
		"*string":       TypeString,
		"bool":          TypeBool,
		"Optional[int]": TypeInt,
		"int | None":    TypeInt,
		"":              TypeAny,
		"list[str]":     TypeAny,
	}
	for in, want := range tests {
		if got := ParseType(in); got != want {
			t.Fatalf("ParseType(%q)=%q want=%q", in, got, want)
		}
	}
}

func TestDocAliases(t *testing.T) {
	got := docAliases("Move forward.\n\nAliases: fd, ahead\n")
	if len(got) != 2 || got[0] != "fd" || got[1] != "ahead" {
		t.Fatalf("docAliases=%v", got)
	}
	if got := docAliases("Alias: bk"); len(got) != 1 || got[0] != "bk" {
		t.Fatalf("docAliases=%v", got)
	}
	if got := docAliases("No aliases here."); len(got) != 0 {
		t.Fatalf("docAliases=%v", got)
	}
}
