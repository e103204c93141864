package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// GoModResolver maps directories to Go import paths using the nearest go.mod.
type GoModResolver struct {
	fileReader *FileReader
	modules    *Cache[string, string]
}

func NewGoModResolver(fileReader *FileReader) *GoModResolver {
	return &GoModResolver{
		fileReader: fileReader,
		modules:    NewCache[string, string](),
	}
}

// ParseModuleName extracts the module path from a go.mod file.
func (r *GoModResolver) ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}
	content, sum, err := r.fileReader.Load(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}
	if name, ok := r.modules.Lookup(cleanPath, sum); ok {
		return name, nil
	}

	modFile, err := modfile.Parse(cleanPath, content, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if modFile.Module == nil {
		return "", fmt.Errorf("no module declaration found in %s", cleanPath)
	}

	name := modFile.Module.Mod.Path
	r.modules.Store(cleanPath, name, sum)
	return name, nil
}

// FindGoModFile searches for go.mod starting at startDir and walking up.
func (r *GoModResolver) FindGoModFile(startDir string) (string, error) {
	currentDir := filepath.Clean(startDir)
	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if content, err := r.fileReader.ReadFile(goModPath); err == nil && len(content) > 0 {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// ImportPath returns the import path of the package in dir. Directories
// outside any module fall back to their base name.
func (r *GoModResolver) ImportPath(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(dir)
	}
	goMod, err := r.FindGoModFile(abs)
	if err != nil {
		return filepath.Base(abs)
	}
	module, err := r.ParseModuleName(goMod)
	if err != nil {
		return filepath.Base(abs)
	}

	rel, err := filepath.Rel(filepath.Dir(goMod), abs)
	if err != nil || rel == "." {
		return module
	}
	return module + "/" + strings.ReplaceAll(rel, string(filepath.Separator), "/")
}
