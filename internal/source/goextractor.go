package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/toyz/docblock/internal/utils"
)

// GoExtractor reads declarations from Go files. Targets are qualified by
// the package import path resolved from the nearest go.mod.
type GoExtractor struct {
	modules *utils.GoModResolver
}

func NewGoExtractor(modules *utils.GoModResolver) *GoExtractor {
	return &GoExtractor{modules: modules}
}

func (g *GoExtractor) Language() string     { return "go" }
func (g *GoExtractor) Extensions() []string { return []string{".go"} }

func (g *GoExtractor) Extract(path string, src []byte) ([]Declaration, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	pkg := g.modules.ImportPath(filepath.Dir(path))
	topLevel := make(map[ast.Decl]bool, len(file.Decls))
	for _, d := range file.Decls {
		topLevel[d] = true
	}

	var decls []Declaration
	add := func(d Declaration, pos token.Pos) {
		d.File = path
		d.Line = fset.Position(pos).Line
		decls = append(decls, d)
	}

	filter := []ast.Node{(*ast.GenDecl)(nil), (*ast.FuncDecl)(nil)}
	inspector.New([]*ast.File{file}).Preorder(filter, func(n ast.Node) {
		switch node := n.(type) {
		case *ast.FuncDecl:
			add(funcDeclaration(pkg, node), node.Pos())

		case *ast.GenDecl:
			if !topLevel[node] {
				return
			}
			switch node.Tok {
			case token.TYPE:
				for _, spec := range node.Specs {
					ts := spec.(*ast.TypeSpec)
					owner := pkg + "." + ts.Name.Name
					add(Declaration{
						Kind:   KindClass,
						Target: owner,
						Doc:    renderDoc(specDoc(node, ts.Doc)),
						Name:   ts.Name.Name,
					}, ts.Pos())

					st, ok := ts.Type.(*ast.StructType)
					if !ok {
						continue
					}
					for _, field := range st.Fields.List {
						for _, name := range field.Names {
							add(Declaration{
								Kind:   KindProperty,
								Target: owner + "->" + name.Name,
								Doc:    renderDoc(field.Doc),
								Owner:  owner,
								Name:   name.Name,
							}, name.Pos())
						}
					}
				}
			case token.VAR:
				for _, spec := range node.Specs {
					vs := spec.(*ast.ValueSpec)
					for _, name := range vs.Names {
						if name.Name == "_" {
							continue
						}
						add(Declaration{
							Kind:   KindStaticProperty,
							Target: pkg + "::$" + name.Name,
							Doc:    renderDoc(specDoc(node, vs.Doc)),
							Owner:  pkg,
							Name:   name.Name,
						}, name.Pos())
					}
				}
			}
		}
	})
	return decls, nil
}

func funcDeclaration(pkg string, fn *ast.FuncDecl) Declaration {
	d := Declaration{
		Kind:   KindFunction,
		Target: pkg + "." + fn.Name.Name + "()",
		Doc:    renderDoc(fn.Doc),
		Name:   fn.Name.Name,
	}
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		d.Kind = KindMethod
		d.Owner = pkg + "." + receiverName(fn.Recv.List[0].Type)
		d.Target = d.Owner + "::" + fn.Name.Name + "()"
	}
	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			for _, name := range field.Names {
				if name.Name != "_" {
					d.Params = append(d.Params, name.Name)
				}
			}
		}
	}
	return d
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.ParenExpr:
		return receiverName(t.X)
	default:
		return "unknown"
	}
}

// specDoc picks the spec's own comment, falling back to the declaration's
// when the declaration is not a parenthesized group.
func specDoc(gd *ast.GenDecl, own *ast.CommentGroup) *ast.CommentGroup {
	if own != nil {
		return own
	}
	if gd.Lparen.IsValid() {
		return nil
	}
	return gd.Doc
}

// renderDoc converts a Go comment group into a /** */ docblock. A group
// that already holds a /** */ comment is used verbatim.
func renderDoc(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	for _, c := range cg.List {
		if strings.HasPrefix(c.Text, "/**") {
			return c.Text
		}
	}
	return docblock(strings.Split(cg.Text(), "\n"))
}
