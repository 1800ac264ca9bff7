package catalog

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// GoSource describes the exported methods of a named type in a Go file, or
// the file's exported functions when no type is selected and none has
// methods. Pointer parameters are optional; context.Context and variadic
// parameters are not exposed.
type GoSource struct {
	Filename string
	Content  []byte
	Type     string
}

func (s GoSource) Describe() (Description, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, s.Filename, s.Content, parser.ParseComments)
	if err != nil {
		return Description{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	byRecv := map[string][]*ast.FuncDecl{}
	var recvOrder []string
	var funcs []*ast.FuncDecl
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !fn.Name.IsExported() {
			continue
		}
		if fn.Recv == nil || len(fn.Recv.List) == 0 {
			funcs = append(funcs, fn)
			continue
		}
		recv := receiverName(fn.Recv.List[0].Type)
		if recv == "" || !ast.IsExported(recv) {
			continue
		}
		if _, seen := byRecv[recv]; !seen {
			recvOrder = append(recvOrder, recv)
		}
		byRecv[recv] = append(byRecv[recv], fn)
	}

	desc := Description{Target: s.Type}
	var chosen []*ast.FuncDecl
	switch {
	case s.Type != "":
		chosen = byRecv[s.Type]
	case len(recvOrder) > 0:
		desc.Target = recvOrder[0]
		chosen = byRecv[recvOrder[0]]
	default:
		desc.Target = file.Name.Name
		chosen = funcs
	}
	for _, fn := range chosen {
		desc.Methods = append(desc.Methods, goMethod(fn))
	}
	return desc, nil
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	default:
		return ""
	}
}

func goMethod(fn *ast.FuncDecl) Method {
	m := Method{Name: fn.Name.Name}
	if fn.Doc != nil {
		m.Doc = strings.TrimSpace(fn.Doc.Text())
	}
	for _, field := range fn.Type.Params.List {
		if _, variadic := field.Type.(*ast.Ellipsis); variadic {
			continue
		}
		typ := exprString(field.Type)
		if typ == "context.Context" {
			continue
		}
		_, pointer := field.Type.(*ast.StarExpr)
		for _, name := range field.Names {
			if name.Name == "_" {
				continue
			}
			m.Params = append(m.Params, Parameter{
				Name:     name.Name,
				Type:     ParseType(typ),
				Required: !pointer,
			})
		}
	}
	return m
}

func exprString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		return "[]" + exprString(t.Elt)
	default:
		return "any"
	}
}
