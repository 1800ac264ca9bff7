package catalog

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonSource describes a Python class (or, when the file has no class, its
// module level functions). Class body assignments such as `fd = forward` or
// `fd = forward_ = forward` become aliases.
type PythonSource struct {
	Content []byte
	// Class selects a class by name. Empty means the first public class.
	Class string
}

func (s PythonSource) Describe() (Description, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, s.Content)
	if err != nil {
		return Description{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Description{}, fmt.Errorf("%w: python syntax error", ErrParseFailure)
	}

	if class := s.findClass(root); class != nil {
		desc := Description{
			Target:  class.ChildByFieldName("name").Content(s.Content),
			Aliases: map[string]string{},
		}
		s.collect(class.ChildByFieldName("body"), true, &desc)
		return desc, nil
	}
	desc := Description{Aliases: map[string]string{}}
	s.collect(root, false, &desc)
	return desc, nil
}

func (s PythonSource) findClass(root *sitter.Node) *sitter.Node {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := unwrapDecorated(root.NamedChild(i))
		if node == nil || node.Type() != "class_definition" {
			continue
		}
		name := node.ChildByFieldName("name").Content(s.Content)
		if s.Class == "" && isPublic(name) || name == s.Class {
			return node
		}
	}
	return nil
}

func (s PythonSource) collect(body *sitter.Node, method bool, desc *Description) {
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "function_definition", "decorated_definition":
			fn := unwrapDecorated(child)
			if fn == nil || fn.Type() != "function_definition" {
				continue
			}
			desc.Methods = append(desc.Methods, s.method(fn, method))
		case "expression_statement":
			if !method {
				continue
			}
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if assign := child.NamedChild(j); assign.Type() == "assignment" {
					s.aliases(assign, desc.Aliases)
				}
			}
		}
	}
}

// aliases walks `a = b = target` chains. Only plain identifiers count.
func (s PythonSource) aliases(assign *sitter.Node, out map[string]string) {
	var names []string
	cur := assign
	for cur != nil && cur.Type() == "assignment" {
		left := cur.ChildByFieldName("left")
		if left == nil || left.Type() != "identifier" {
			return
		}
		names = append(names, left.Content(s.Content))
		cur = cur.ChildByFieldName("right")
	}
	if cur == nil || cur.Type() != "identifier" {
		return
	}
	target := cur.Content(s.Content)
	for _, n := range names {
		out[n] = target
	}
}

func (s PythonSource) method(fn *sitter.Node, isMethod bool) Method {
	m := Method{Name: fn.ChildByFieldName("name").Content(s.Content)}
	if body := fn.ChildByFieldName("body"); body != nil && body.NamedChildCount() > 0 {
		first := body.NamedChild(0)
		if first.Type() == "expression_statement" && first.NamedChildCount() > 0 && first.NamedChild(0).Type() == "string" {
			m.Doc = pyStringValue(first.NamedChild(0).Content(s.Content))
		}
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return m
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		var (
			name, typ, def string
			hasDefault     bool
		)
		switch p.Type() {
		case "identifier":
			name = p.Content(s.Content)
		case "typed_parameter":
			if p.NamedChildCount() == 0 || p.NamedChild(0).Type() != "identifier" {
				continue
			}
			name = p.NamedChild(0).Content(s.Content)
			typ = fieldContent(p, "type", s.Content)
		case "default_parameter", "typed_default_parameter":
			name = fieldContent(p, "name", s.Content)
			typ = fieldContent(p, "type", s.Content)
			def = fieldContent(p, "value", s.Content)
			hasDefault = true
		default:
			// *args, **kwargs and the bare * / separators
			continue
		}
		if isMethod && i == 0 && (name == "self" || name == "cls") {
			continue
		}
		param := Parameter{Name: name, Type: TypeAny, Required: !hasDefault}
		if typ != "" {
			param.Type = ParseType(typ)
		}
		if hasDefault {
			param.Default = def
			if param.Type == TypeAny {
				param.Type = literalType(def)
			}
			if strings.TrimSpace(def) == "None" {
				param.Default = ""
			}
		}
		m.Params = append(m.Params, param)
	}
	return m
}

func unwrapDecorated(n *sitter.Node) *sitter.Node {
	if n != nil && n.Type() == "decorated_definition" {
		return n.ChildByFieldName("definition")
	}
	return n
}

func fieldContent(n *sitter.Node, field string, src []byte) string {
	if c := n.ChildByFieldName(field); c != nil {
		return c.Content(src)
	}
	return ""
}

// pyStringValue strips prefixes and quotes from a string literal and dedents
// the docstring.
func pyStringValue(lit string) string {
	lit = strings.TrimLeft(lit, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) && len(lit) >= 2*len(q) {
			lit = lit[len(q) : len(lit)-len(q)]
			break
		}
	}
	lines := strings.Split(lit, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// literalType infers a parameter type from its default value.
func literalType(lit string) ParamType {
	lit = strings.TrimSpace(lit)
	switch {
	case lit == "True" || lit == "False":
		return TypeBool
	case strings.HasPrefix(lit, `"`) || strings.HasPrefix(lit, `'`):
		return TypeString
	case lit == "" || lit == "None":
		return TypeAny
	}
	digits, dot := 0, false
	for i, r := range lit {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' && !dot:
			dot = true
		case r == '-' && i == 0:
		default:
			return TypeAny
		}
	}
	switch {
	case digits == 0:
		return TypeAny
	case dot:
		return TypeFloat
	default:
		return TypeInt
	}
}
