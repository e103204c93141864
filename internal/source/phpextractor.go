package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// PHPExtractor reads declarations from PHP files with tree-sitter.
type PHPExtractor struct {
	language *sitter.Language
}

func NewPHPExtractor() *PHPExtractor {
	return &PHPExtractor{language: sitter.NewLanguage(tree_sitter_php.LanguagePHP())}
}

func (p *PHPExtractor) Language() string     { return "php" }
func (p *PHPExtractor) Extensions() []string { return []string{".php"} }

// Extract parses src with a parser of its own; tree-sitter parsers are not
// safe for concurrent use.
func (p *PHPExtractor) Extract(path string, src []byte) ([]Declaration, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to load php grammar: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, errors.New("failed to parse " + filepath.Base(path))
	}
	defer tree.Close()

	w := &phpWalker{path: path, src: src}
	w.walk(tree.RootNode(), "")
	return w.decls, nil
}

type phpWalker struct {
	path  string
	src   []byte
	decls []Declaration
}

func (w *phpWalker) walk(node *sitter.Node, namespace string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "namespace_definition":
			name := ""
			if n := child.ChildByFieldName("name"); n != nil {
				name = w.text(n)
			}
			if body := child.ChildByFieldName("body"); body != nil {
				w.walk(body, name)
				continue
			}
			// namespace Foo; applies to the rest of the file
			namespace = name
		case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
			w.class(child, namespace)
		case "function_definition":
			name := w.fieldText(child, "name")
			w.add(Declaration{
				Kind:   KindFunction,
				Target: qualify(namespace, name) + "()",
				Name:   name,
				Params: w.params(child),
			}, child)
		default:
			w.walk(child, namespace)
		}
	}
}

func (w *phpWalker) class(node *sitter.Node, namespace string) {
	name := w.fieldText(node, "name")
	owner := qualify(namespace, name)
	w.add(Declaration{Kind: KindClass, Target: owner, Name: name}, node)

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}
		switch member.Kind() {
		case "method_declaration":
			method := w.fieldText(member, "name")
			w.add(Declaration{
				Kind:   KindMethod,
				Target: owner + "::" + method + "()",
				Owner:  owner,
				Name:   method,
				Params: w.params(member),
			}, member)
		case "property_declaration":
			static := w.hasChild(member, "static_modifier")
			for j := uint(0); j < member.ChildCount(); j++ {
				element := member.Child(j)
				if element == nil || element.Kind() != "property_element" {
					continue
				}
				prop := strings.TrimPrefix(w.text(findKind(element, "variable_name")), "$")
				d := Declaration{
					Kind:   KindProperty,
					Target: owner + "->" + prop,
					Owner:  owner,
					Name:   prop,
				}
				if static {
					d.Kind = KindStaticProperty
					d.Target = owner + "::$" + prop
				}
				w.add(d, member)
			}
		}
	}
}

func (w *phpWalker) add(d Declaration, node *sitter.Node) {
	d.File = w.path
	d.Line = int(node.StartPosition().Row) + 1
	d.Doc = w.docFor(node)
	w.decls = append(w.decls, d)
}

// docFor returns the /** */ comment directly preceding node.
func (w *phpWalker) docFor(node *sitter.Node) string {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	text := w.text(prev)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return normalizeDocblock(text)
}

func (w *phpWalker) params(fn *sitter.Node) []string {
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	var names []string
	for i := uint(0); i < list.ChildCount(); i++ {
		param := list.Child(i)
		if param == nil {
			continue
		}
		switch param.Kind() {
		case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
			if v := findKind(param, "variable_name"); v != nil {
				names = append(names, strings.TrimPrefix(w.text(v), "$"))
			}
		}
	}
	return names
}

func (w *phpWalker) hasChild(node *sitter.Node, kind string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == kind {
			return true
		}
	}
	return false
}

func (w *phpWalker) fieldText(node *sitter.Node, field string) string {
	return w.text(node.ChildByFieldName(field))
}

func (w *phpWalker) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(w.src[node.StartByte():node.EndByte()])
}

// findKind returns the first descendant of node with the given kind.
func findKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == kind {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := findKind(node.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + `\` + name
}

// normalizeDocblock rewrites /** @Foo */ into the multi-line layout the
// parser expects. Multi-line comments are returned unchanged.
func normalizeDocblock(doc string) string {
	if strings.Contains(doc, "\n") {
		return doc
	}
	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(doc, "/**"), "*/"))
	return docblock([]string{body})
}
