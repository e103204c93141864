package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Controller.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php class A {}"), 0644))

	reader := NewFileReader()
	first, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<?php class A {}", string(first))
	assert.Equal(t, 1, reader.CachedFiles())

	sum1, err := reader.Fingerprint(path)
	require.NoError(t, err)

	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(path, []byte("<?php class B {}"), 0644))
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<?php class B {}", string(second))

	sum2, err := reader.Fingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, sum1, sum2)

	reader.Invalidate(path)
	assert.Zero(t, reader.CachedFiles())

	_, err = reader.ReadFile(filepath.Join(dir, "missing.php"))
	assert.Error(t, err)
}

func TestGoModResolver(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/shop\n\ngo 1.25\n"), 0644))
	pkgDir := filepath.Join(root, "internal", "orders")
	require.NoError(t, os.MkdirAll(pkgDir, 0755))

	resolver := NewGoModResolver(NewFileReader())

	goMod, err := resolver.FindGoModFile(pkgDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "go.mod"), goMod)

	name, err := resolver.ParseModuleName(goMod)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", name)

	assert.Equal(t, "example.com/shop/internal/orders", resolver.ImportPath(pkgDir))
	assert.Equal(t, "example.com/shop", resolver.ImportPath(root))

	_, err = resolver.ParseModuleName(filepath.Join(root, "README.md"))
	assert.Error(t, err)
}
