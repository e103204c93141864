package cli

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/toyz/docblock/internal/cache"
	"github.com/toyz/docblock/internal/config"
	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/index"
	"github.com/toyz/docblock/internal/source"
	"github.com/toyz/docblock/internal/utils"
	"github.com/toyz/docblock/pkg/annotation"
)

// ScanSummary describes the last scan of a workspace.
type ScanSummary struct {
	Files        int
	Declarations int
	Targets      int
	Annotations  int
	Failures     int
	Duration     time.Duration
}

// Stats renders the summary for DiagnosticSystem.Summary.
func (s ScanSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Files scanned":      s.Files,
		"Declarations found": s.Declarations,
		"Targets resolved":   s.Targets,
		"Annotations found":  s.Annotations,
		"Failures":           s.Failures,
		"Duration":           s.Duration.Round(time.Millisecond),
	}
}

// Workspace coordinates discovery, extraction and indexing for one run of
// the tool.
type Workspace struct {
	cfg        *config.Config
	log        *utils.DiagnosticSystem
	reader     *utils.FileReader
	extractors *source.Extractors
	cache      *cache.Cache
	index      *index.Index

	roots   []string
	set     *source.Set
	result  *index.Result
	summary ScanSummary
}

// NewWorkspace prepares the pipeline described by cfg. The annotation cache
// is loaded from disk when enabled; a corrupt cache file is discarded with a
// warning.
func NewWorkspace(cfg *config.Config, log *utils.DiagnosticSystem) (*Workspace, error) {
	reader := utils.NewFileReader()
	extractors, err := source.Default(reader, cfg.Languages...)
	if err != nil {
		return nil, docerrors.WrapConfigurationError("languages", "validate", err)
	}

	c := cache.New()
	if cfg.Cache.Enabled {
		if err := c.StartFromFile(cfg.Cache.Path); err != nil {
			log.Warn("%v", docerrors.WrapCacheError("load", err))
			c.Recover(cfg.Cache.Path)
		}
	}

	parser := annotation.NewParser(annotation.WithReservedNames(cfg.ReservedNames...))
	return &Workspace{
		cfg:        cfg,
		log:        log,
		reader:     reader,
		extractors: extractors,
		cache:      c,
		index:      index.New(parser, c, index.WithWorkers(cfg.Workers), index.WithLogger(log)),
		roots:      cfg.Roots,
		set:        source.NewSet(),
	}, nil
}

func (w *Workspace) Config() *config.Config { return w.cfg }

func (w *Workspace) Index() *index.Index { return w.index }

func (w *Workspace) Cache() *cache.Cache { return w.cache }

// Result is the outcome of the last Scan or Refresh.
func (w *Workspace) Result() *index.Result { return w.result }

func (w *Workspace) Summary() ScanSummary { return w.summary }

// Roots returns the roots of the last scan.
func (w *Workspace) Roots() []string { return w.roots }

// Scan discovers every file below roots (the configured roots when empty),
// extracts declarations and resolves their annotations. Failures of single
// files or declarations are returned together with the partial result.
func (w *Workspace) Scan(ctx context.Context, roots []string) (*index.Result, error) {
	start := time.Now()
	if len(roots) > 0 {
		w.roots = roots
	}

	w.log.Verbose("scanning %v", w.roots)
	files, err := source.Discover(w.roots, w.cfg.Include, w.cfg.Exclude)
	if err != nil {
		return nil, docerrors.WrapWithOperation("discover", "source files", err)
	}
	w.log.Debug("discovered %d files", len(files))

	failures := docerrors.NewMultipleErrors()
	set, err := w.extractors.Scan(files)
	failures.Merge(err)
	w.set = set
	memo := w.extractors.Extracted()
	w.log.Debug("extraction memo: %d files cached, %d hits, %d misses", memo.Entries, memo.Hits, memo.Misses)

	result, err := w.index.Build(ctx, set.All())
	if result == nil {
		return nil, err
	}
	failures.Merge(err)

	w.result = result
	w.summary = ScanSummary{
		Files:        len(files),
		Declarations: set.Len(),
		Targets:      len(result.Targets()),
		Annotations:  result.Count(),
		Failures:     failures.Count(),
		Duration:     time.Since(start),
	}
	return result, failures.ErrOrNil()
}

// Refresh re-reads the given files after they changed on disk. Their old
// declarations are dropped from the set and the cache before the index is
// rebuilt. It returns the targets whose declarations were touched.
func (w *Workspace) Refresh(ctx context.Context, paths []string) (*index.Result, []string, error) {
	start := time.Now()
	failures := docerrors.NewMultipleErrors()
	touched := make(map[string]bool)

	for _, path := range paths {
		w.reader.Invalidate(path)
		for _, d := range w.set.RemoveFile(path) {
			w.cache.Invalidate(d.Target)
			touched[d.Target] = true
		}

		if !w.tracks(path) {
			continue
		}
		decls, err := w.extractors.ExtractFile(path)
		if err != nil {
			failures.Add(docerrors.WrapSourceError(path, err))
			continue
		}
		for _, d := range decls {
			w.cache.Invalidate(d.Target)
			touched[d.Target] = true
		}
		w.set.Add(decls...)
	}

	result, err := w.index.Build(ctx, w.set.All())
	if result == nil {
		return nil, nil, err
	}
	failures.Merge(err)
	w.result = result

	targets := make([]string, 0, len(touched))
	for t := range touched {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	w.summary.Declarations = w.set.Len()
	w.summary.Targets = len(result.Targets())
	w.summary.Annotations = result.Count()
	w.summary.Failures = failures.Count()
	w.summary.Duration = time.Since(start)
	return result, targets, failures.ErrOrNil()
}

// tracks reports whether path exists and passes the configured filters.
func (w *Workspace) tracks(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || !w.extractors.Supports(path) {
		return false
	}
	files, err := source.Discover([]string{path}, w.cfg.Include, w.cfg.Exclude)
	return err == nil && len(files) == 1
}

// Close persists the annotation cache.
func (w *Workspace) Close() error {
	if err := w.cache.Close(); err != nil {
		return docerrors.WrapCacheError("save", err)
	}
	return nil
}
