package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL applies a document such as
//
//	roots "./src/..." "./lib/..."
//	exclude { "**/generated/**"; }
//	cache enabled=true path=".docblock.cache"
//	server { addr ":9000"; engine "gin"; }
//
// on top of cfg. Properties and child nodes are interchangeable.
func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "roots":
			cfg.Roots = collectStringArgs(n)
		case "include":
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		case "languages":
			cfg.Languages = collectStringArgs(n)
		case "reserved_names":
			cfg.ReservedNames = collectStringArgs(n)
		case "workers":
			v, ok := firstIntArg(n)
			if !ok {
				return fmt.Errorf("workers expects a number")
			}
			cfg.Workers = v
		case "cache":
			if b, ok := firstBoolArg(n); ok {
				cfg.Cache.Enabled = b
			}
			settings(n, map[string]func(any){
				"enabled": boolSetter(&cfg.Cache.Enabled),
				"path":    stringSetter(&cfg.Cache.Path),
			})
		case "server":
			settings(n, map[string]func(any){
				"addr":   stringSetter(&cfg.Server.Addr),
				"engine": stringSetter(&cfg.Server.Engine),
			})
		case "output":
			if s, ok := firstStringArg(n); ok {
				cfg.Output.Format = s
			}
			settings(n, map[string]func(any){
				"format": stringSetter(&cfg.Output.Format),
			})
		default:
			return fmt.Errorf("unknown setting %q", nodeName(n))
		}
	}
	return nil
}

// settings applies the properties and single-argument children of n.
func settings(n *document.Node, setters map[string]func(any)) {
	for key, v := range n.Properties {
		if set, ok := setters[key]; ok {
			set(v.Value)
		}
	}
	for _, child := range n.Children {
		if set, ok := setters[nodeName(child)]; ok && len(child.Arguments) > 0 {
			set(child.Arguments[0].Value)
		}
	}
}

func stringSetter(dst *string) func(any) {
	return func(v any) {
		if s, ok := v.(string); ok {
			*dst = s
		}
	}
}

func boolSetter(dst *bool) func(any) {
	return func(v any) {
		if b, ok := v.(bool); ok {
			*dst = b
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

// collectStringArgs reads inline arguments, or the children of a block
// such as exclude { "a"; "b"; }.
func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, child := range n.Children {
		if s, ok := firstStringArg(child); ok {
			out = append(out, s)
		} else if name := nodeName(child); name != "" {
			out = append(out, name)
		}
	}
	return out
}
