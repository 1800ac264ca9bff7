package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestSource reads a YAML (or JSON) manifest:
//
//	name: Turtle
//	methods:
//	  - name: forward
//	    doc: Move the turtle forward.
//	    aliases: [fd]
//	    params:
//	      - {name: distance, type: float}
//	aliases:
//	  back: backward
type ManifestSource struct {
	Content []byte
}

// Manifest is the serialized form of a catalog.
type Manifest struct {
	Name    string            `yaml:"name" json:"name"`
	Methods []ManifestMethod  `yaml:"methods" json:"methods"`
	Aliases map[string]string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

type ManifestMethod struct {
	Name    string          `yaml:"name" json:"name"`
	Doc     string          `yaml:"doc,omitempty" json:"doc,omitempty"`
	Aliases []string        `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Params  []ManifestParam `yaml:"params,omitempty" json:"params,omitempty"`
}

type ManifestParam struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	Required *bool  `yaml:"required,omitempty" json:"required,omitempty"`
	Default  any    `yaml:"default,omitempty" json:"default,omitempty"`
}

func (s ManifestSource) Describe() (Description, error) {
	var mf Manifest
	dec := yaml.NewDecoder(bytes.NewReader(s.Content))
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil && !errors.Is(err, io.EOF) {
		return Description{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	desc := Description{Target: mf.Name, Aliases: mf.Aliases}
	for _, op := range mf.Methods {
		m := Method{Name: strings.TrimSpace(op.Name), Doc: op.Doc, Aliases: op.Aliases}
		for _, p := range op.Params {
			param := Parameter{Name: p.Name, Type: ParseType(p.Type)}
			if p.Default != nil {
				param.Default = fmt.Sprint(p.Default)
			}
			if p.Required != nil {
				param.Required = *p.Required
			} else {
				param.Required = p.Default == nil
			}
			m.Params = append(m.Params, param)
		}
		desc.Methods = append(desc.Methods, m)
	}
	return desc, nil
}

// Manifest exports the catalog in the form ManifestSource reads back.
func (c *Catalog) Manifest() Manifest {
	m := Manifest{Name: c.target}
	for _, e := range c.Entries() {
		mm := ManifestMethod{Name: e.Name, Doc: e.Doc, Aliases: append([]string(nil), e.Aliases...)}
		for _, p := range e.Params {
			required := p.Required
			mp := ManifestParam{Name: p.Name, Type: string(p.Type), Required: &required}
			if p.Default != "" {
				mp.Default = p.Default
			}
			mm.Params = append(mm.Params, mp)
		}
		m.Methods = append(m.Methods, mm)
	}
	return m
}

// DetectSource picks a Source by file extension: .py, .go, or a
// .yaml/.yml/.json manifest. typeName selects the class or type to describe
// in source files.
func DetectSource(filename string, content []byte, typeName string) (Source, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".py", ".pyi":
		return PythonSource{Content: content, Class: typeName}, nil
	case ".go":
		return GoSource{Filename: filename, Content: content, Type: typeName}, nil
	case ".yaml", ".yml", ".json":
		return ManifestSource{Content: content}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported source %q", ErrParseFailure, filename)
	}
}

// LoadFile reads and detects a source file.
func LoadFile(path, typeName string) (Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DetectSource(path, content, typeName)
}
