// Package catalogtest holds the catalogs the engine's tests resolve against:
// a Python turtle, a home automation manifest and a Go bank account.
package catalogtest

import (
	"embed"
	"path"
	"testing"

	"github.com/appengine-ltd/command-it/internal/catalog"
	"github.com/appengine-ltd/command-it/internal/lexicon"
)

//go:embed testdata
var files embed.FS

const (
	Turtle   = "turtle.py"
	Home     = "home.yaml"
	Bank     = "bank.go"
	Switches = "switches.yaml"
)

// Source returns the raw content of a fixture.
func Source(name string) []byte {
	data, err := files.ReadFile(path.Join("testdata", name))
	if err != nil {
		panic(err)
	}
	return data
}

// Describer returns the catalog source for a fixture.
func Describer(tb testing.TB, name string) catalog.Source {
	tb.Helper()
	src, err := catalog.DetectSource(name, Source(name), "")
	if err != nil {
		tb.Fatalf("detect %s: %v", name, err)
	}
	return src
}

// Build builds a fixture with the default lexicon and fails the test on error.
func Build(tb testing.TB, name string) *catalog.Catalog {
	tb.Helper()
	cat, err := catalog.Build(Describer(tb, name), lexicon.Default())
	if err != nil {
		tb.Fatalf("build %s: %v", name, err)
	}
	return cat
}
