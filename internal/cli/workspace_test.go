package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/docblock/internal/config"
	"github.com/toyz/docblock/internal/utils"
)

func newTestWorkspace(t *testing.T, root string) *Workspace {
	t.Helper()
	return openWorkspace(t, root, filepath.Join(t.TempDir(), "annotations.cache"))
}

func openWorkspace(t *testing.T, root, cachePath string) *Workspace {
	t.Helper()
	cfg := config.Default()
	cfg.Roots = []string{root + "/..."}
	cfg.Cache.Path = cachePath
	cfg.Workers = 2

	ws, err := NewWorkspace(cfg, utils.NewQuietDiagnostics().SetOutput(&strings.Builder{}, &strings.Builder{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestWorkspaceScan(t *testing.T) {
	root, _ := writeProject(t, map[string]string{"service.go": serviceSource})
	ws := newTestWorkspace(t, root)

	result, err := ws.Scan(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{serviceTarget, columnTarget, placeTarget, placeTarget + "#id"}, result.Annotated())
	summary := ws.Summary()
	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 5, summary.Annotations)
	assert.Zero(t, summary.Failures)
	assert.True(t, ws.Cache().Has(serviceTarget))
}

func TestWorkspaceRefresh(t *testing.T) {
	root, dir := writeProject(t, map[string]string{"service.go": serviceSource})
	ws := newTestWorkspace(t, root)
	_, err := ws.Scan(context.Background(), nil)
	require.NoError(t, err)

	path := filepath.Join(dir, "service.go")
	updated := strings.Replace(serviceSource, "@Service(name='orders')", "@Service(name='billing')", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	result, touched, err := ws.Refresh(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Contains(t, touched, serviceTarget)
	assert.Contains(t, touched, placeTarget)

	col, ok := result.Lookup(serviceTarget)
	require.True(t, ok)
	svc, err := col.FirstNamed("Service")
	require.NoError(t, err)
	assert.Equal(t, "billing", svc.Get("name", nil))

	require.NoError(t, os.Remove(path))
	result, touched, err = ws.Refresh(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Contains(t, touched, serviceTarget)
	_, ok = result.Lookup(serviceTarget)
	assert.False(t, ok)
	assert.False(t, ws.Cache().Has(serviceTarget), "removed declarations leave the cache")
	assert.False(t, ws.Cache().Has(placeTarget+"#id"))
	assert.Zero(t, ws.Summary().Annotations)
}

func TestWorkspaceRescanSeesEditsBetweenRuns(t *testing.T) {
	root, dir := writeProject(t, map[string]string{"service.go": serviceSource})
	cachePath := filepath.Join(t.TempDir(), "annotations.cache")

	first := openWorkspace(t, root, cachePath)
	_, err := first.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	path := filepath.Join(dir, "service.go")
	updated := strings.Replace(serviceSource, "@Service(name='orders')", "@Service(name='billing')", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	second := openWorkspace(t, root, cachePath)
	assert.True(t, second.Cache().Has(serviceTarget), "the first run was persisted")
	result, err := second.Scan(context.Background(), nil)
	require.NoError(t, err)

	col, ok := result.Lookup(serviceTarget)
	require.True(t, ok)
	svc, err := col.FirstNamed("Service")
	require.NoError(t, err)
	assert.Equal(t, "billing", svc.Get("name", nil))

	place, ok := result.Lookup(placeTarget)
	require.True(t, ok)
	assert.True(t, place.Contain("Route"), "untouched declarations still resolve")
}

func TestWorkspaceRefreshIgnoresExcludedFiles(t *testing.T) {
	root, dir := writeProject(t, map[string]string{"service.go": serviceSource})
	ws := newTestWorkspace(t, root)
	_, err := ws.Scan(context.Background(), nil)
	require.NoError(t, err)

	test := filepath.Join(dir, "service_test.go")
	require.NoError(t, os.WriteFile(test, []byte("package orders\n\n// @Fixture\nfunc TestThing() {}\n"), 0o644))
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("@Fixture"), 0o644))

	result, touched, err := ws.Refresh(context.Background(), []string{test, notes})
	require.NoError(t, err)
	assert.Empty(t, touched)
	assert.Equal(t, 5, result.Count())
}

func TestNewWorkspaceRecoversCorruptCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Path = filepath.Join(t.TempDir(), "annotations.cache")
	require.NoError(t, os.WriteFile(cfg.Cache.Path, []byte("not a cache"), 0o644))

	var out strings.Builder
	ws, err := NewWorkspace(cfg, utils.NewDiagnosticSystem(utils.DiagnosticInfo).SetOutput(&out, &out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[WARN] failed to load annotation cache")

	require.NoError(t, ws.Close())
	data, err := os.ReadFile(cfg.Cache.Path)
	require.NoError(t, err)
	assert.NotEqual(t, "not a cache", string(data), "the unreadable file is replaced")
}

func TestNewWorkspaceRejectsUnknownLanguage(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Enabled = false
	cfg.Languages = []string{"cobol"}
	_, err := NewWorkspace(cfg, utils.NewQuietDiagnostics())
	assert.Error(t, err)
}
