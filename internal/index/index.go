// Package index parses the doc comments of source declarations into
// annotation collections, going through the annotation cache.
package index

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/docblock/internal/cache"
	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/source"
	"github.com/toyz/docblock/internal/utils"
	"github.com/toyz/docblock/pkg/annotation"
)

type Index struct {
	parser  *annotation.Parser
	cache   *cache.Cache
	log     *utils.DiagnosticSystem
	workers int
}

type Option func(*Index)

// WithWorkers bounds the number of doc comments parsed at once.
func WithWorkers(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.workers = n
		}
	}
}

func WithLogger(log *utils.DiagnosticSystem) Option {
	return func(ix *Index) { ix.log = log }
}

func New(parser *annotation.Parser, c *cache.Cache, opts ...Option) *Index {
	ix := &Index{
		parser:  parser,
		cache:   c,
		log:     utils.NewQuietDiagnostics(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

func (ix *Index) Parser() *annotation.Parser { return ix.parser }

func (ix *Index) Cache() *cache.Cache { return ix.cache }

// AnnotationsOf returns the annotations of target declared in doc. A
// collection cached from the same doc is returned without parsing.
// Otherwise doc is parsed for the declaration that owns target, every
// collection it produces is cached, and target's collection (empty if doc
// has none) is returned.
func (ix *Index) AnnotationsOf(target, doc string) (*annotation.Collection, error) {
	stamp := uint64(utils.TextStamp(doc))
	if ix.cache.Fresh(target, stamp) {
		return ix.cache.Get(target)
	}

	owner, _, _ := strings.Cut(target, "#")
	parsed, err := ix.parser.Parse(doc, owner)
	if err != nil {
		return nil, err
	}
	for _, col := range parsed {
		if err := ix.cache.Put(col, stamp); err != nil {
			return nil, docerrors.WrapCacheError("update", err)
		}
	}

	if col, ok := parsed[target]; ok {
		return col, nil
	}
	empty := annotation.NewCollection(target)
	if err := ix.cache.Put(empty, stamp); err != nil {
		return nil, docerrors.WrapCacheError("update", err)
	}
	return empty, nil
}

// Build resolves the annotations of every declaration and each of its
// parameters. A declaration that fails to parse is skipped and reported in
// the returned error; the result holds everything else.
func (ix *Index) Build(ctx context.Context, decls []source.Declaration) (*Result, error) {
	result := newResult(decls)
	failures := docerrors.NewMultipleErrors()
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for _, d := range decls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			targets := append([]string{d.Target}, d.ParamTargets()...)
			cols := make([]*annotation.Collection, 0, len(targets))
			for _, target := range targets {
				col, err := ix.AnnotationsOf(target, d.Doc)
				if err != nil {
					mu.Lock()
					failures.Add(docerrors.WrapParseError(d.Target,
						docerrors.SourceLocation{File: d.File, Line: d.Line}, err))
					mu.Unlock()
					ix.log.Debug("skipping %s: %v", d.Target, err)
					return nil
				}
				cols = append(cols, col)
			}

			mu.Lock()
			for _, col := range cols {
				result.collections[col.Target()] = col
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(failures.Errors, func(i, j int) bool {
		return failures.Errors[i].Error() < failures.Errors[j].Error()
	})
	ix.log.Verbose("indexed %d declarations, %d annotations, %d failures",
		len(decls), result.Count(), failures.Count())
	return result, failures.ErrOrNil()
}

// Result holds the collections produced by Build. It is read-only.
type Result struct {
	decls       *source.Set
	collections map[string]*annotation.Collection
}

func newResult(decls []source.Declaration) *Result {
	return &Result{
		decls:       source.NewSet(decls...),
		collections: make(map[string]*annotation.Collection, len(decls)),
	}
}

// Lookup returns the collection of a declaration or parameter target.
func (r *Result) Lookup(target string) (*annotation.Collection, bool) {
	col, ok := r.collections[target]
	return col, ok
}

// Declaration returns the declaration target belongs to.
func (r *Result) Declaration(target string) (source.Declaration, bool) {
	return r.decls.Lookup(target)
}

func (r *Result) Declarations() *source.Set { return r.decls }

// Targets returns every resolved target, sorted.
func (r *Result) Targets() []string {
	targets := make([]string, 0, len(r.collections))
	for t := range r.collections {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Annotated returns the targets that carry at least one annotation.
func (r *Result) Annotated() []string {
	var targets []string
	for _, t := range r.Targets() {
		if r.collections[t].Count() > 0 {
			targets = append(targets, t)
		}
	}
	return targets
}

// Count returns the number of annotations across all targets.
func (r *Result) Count() int {
	n := 0
	for _, col := range r.collections {
		n += col.Count()
	}
	return n
}

// Types counts annotations per type.
func (r *Result) Types() map[string]int {
	counts := make(map[string]int)
	for _, col := range r.collections {
		for a := range col.All() {
			counts[a.Type()]++
		}
	}
	return counts
}
