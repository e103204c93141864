package source

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/utils"
)

// Extractor finds declarations in the files of one language.
type Extractor interface {
	Language() string
	Extensions() []string
	Extract(path string, src []byte) ([]Declaration, error)
}

// Extractors routes files to the extractor registered for their extension.
// Declarations are remembered per file until its contents change.
type Extractors struct {
	byExt  *utils.Registry[string, Extractor]
	reader *utils.FileReader
	decls  *utils.Cache[string, []Declaration]
}

func NewExtractors(reader *utils.FileReader, extractors ...Extractor) (*Extractors, error) {
	e := &Extractors{
		byExt: utils.NewRegistry[string, Extractor]("extractor",
			utils.NotEmptyKeyValidator[Extractor]("extension"),
			utils.NoDuplicateValidator[string, Extractor]("extension"),
		),
		reader: reader,
		decls:  utils.NewCache[string, []Declaration](),
	}
	for _, ex := range extractors {
		if err := e.Register(ex); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Default returns extractors for the given languages. An empty list
// selects every supported language.
func Default(reader *utils.FileReader, languages ...string) (*Extractors, error) {
	all := map[string]func() Extractor{
		"go":  func() Extractor { return NewGoExtractor(utils.NewGoModResolver(reader)) },
		"php": func() Extractor { return NewPHPExtractor() },
	}
	if len(languages) == 0 {
		languages = []string{"go", "php"}
	}

	selected := make([]Extractor, 0, len(languages))
	for _, lang := range languages {
		build, ok := all[strings.ToLower(lang)]
		if !ok {
			return nil, fmt.Errorf("unsupported language %q", lang)
		}
		selected = append(selected, build())
	}
	return NewExtractors(reader, selected...)
}

func (e *Extractors) Register(ex Extractor) error {
	for _, ext := range ex.Extensions() {
		if err := e.byExt.Register(ext, ex); err != nil {
			return err
		}
	}
	return nil
}

// Supports reports whether some extractor handles path.
func (e *Extractors) Supports(path string) bool {
	return e.byExt.Has(filepath.Ext(path))
}

func (e *Extractors) Extensions() []string {
	return e.byExt.List()
}

// ExtractFile reads path and extracts its declarations. A file whose
// contents are unchanged since the last call is not extracted again.
func (e *Extractors) ExtractFile(path string) ([]Declaration, error) {
	ex, ok := e.byExt.Get(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("no extractor for %s", filepath.Base(path))
	}
	src, sum, err := e.reader.Load(path)
	if err != nil {
		return nil, err
	}
	if decls, ok := e.decls.Lookup(path, sum); ok {
		return slices.Clone(decls), nil
	}

	decls, err := ex.Extract(path, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ex.Language(), err)
	}
	e.decls.Store(path, decls, sum)
	return slices.Clone(decls), nil
}

// Extracted counts ExtractFile calls served from memory (hits) and
// extracted afresh (misses).
func (e *Extractors) Extracted() utils.CacheStats {
	return e.decls.Stats()
}

// Scan extracts every supported file. Files that fail are reported
// together after the rest have been read; unsupported files are skipped.
func (e *Extractors) Scan(files []string) (*Set, error) {
	set := NewSet()
	failures := docerrors.NewMultipleErrors()
	for _, path := range files {
		if !e.Supports(path) {
			continue
		}
		decls, err := e.ExtractFile(path)
		if err != nil {
			failures.Add(docerrors.WrapSourceError(path, err))
			continue
		}
		set.Add(decls...)
	}
	return set, failures.ErrOrNil()
}
