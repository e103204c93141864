package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/docblock/internal/utils"
)

func TestSet(t *testing.T) {
	set := NewSet(
		Declaration{Kind: KindClass, Target: "Shop", File: "a.php"},
		Declaration{Kind: KindMethod, Target: "Shop::buy()", Owner: "Shop", Name: "buy", Params: []string{"item", "qty"}, File: "a.php"},
		Declaration{Kind: KindProperty, Target: "Shop->name", Owner: "Shop", File: "a.php"},
		Declaration{Kind: KindStaticProperty, Target: "Shop::$count", Owner: "Shop", File: "a.php"},
		Declaration{Kind: KindClass, Target: "Cart", File: "b.php"},
	)

	assert.Equal(t, 5, set.Len())
	assert.Equal(t, []string{"Shop::buy()#item", "Shop::buy()#qty"}, set.Parameters("Shop::buy()"))
	assert.Nil(t, set.Parameters("Missing::fn()"))
	assert.Len(t, set.Methods("Shop"), 1)
	assert.Len(t, set.Properties("Shop"), 2)
	assert.Empty(t, set.Methods("Cart"))

	_, ok := set.Lookup("Missing")
	assert.False(t, ok)

	set.Add(Declaration{Kind: KindClass, Target: "Cart", Doc: "/**\n * @Session\n */", File: "b.php"})
	assert.Equal(t, 5, set.Len(), "re-adding a target replaces it")
	cart, _ := set.Lookup("Cart")
	assert.Contains(t, cart.Doc, "@Session")

	removed := set.RemoveFile("a.php")
	assert.Len(t, removed, 4)
	assert.Equal(t, []string{"Cart"}, set.Targets())
	_, ok = set.Lookup("Shop")
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "class", KindClass.String())
	assert.Equal(t, "static property", KindStaticProperty.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		path := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("<?php"), 0644))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"app/Controller.php",
		"app/models/User.php",
		"app/models/user.go",
		"app/README.md",
		"app/.hidden.php",
		".git/hooks/pre.php",
		"vendor/lib/Dep.php",
		"generated/Proxy.php",
	)

	files, err := Discover([]string{root + "/..."}, []string{"**/*.php", "**/*.go"}, []string{"generated/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "app", "Controller.php"),
		filepath.Join(root, "app", "models", "User.php"),
		filepath.Join(root, "app", "models", "user.go"),
	}, files)

	files, err = Discover([]string{filepath.Join(root, "app")}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "app", "Controller.php"),
		filepath.Join(root, "app", "README.md"),
	}, files, "a plain directory is not walked recursively")

	single := filepath.Join(root, "app", "models", "User.php")
	files, err = Discover([]string{single, single}, []string{"*.php"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)

	_, err = Discover([]string{filepath.Join(root, "missing")}, nil, nil)
	assert.Error(t, err)

	_, err = Discover([]string{root}, []string{"[unclosed"}, nil)
	assert.Error(t, err)

	dirs, err := WatchDirs([]string{root + "/...", single})
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "app"),
		filepath.Join(root, "app", "models"),
		filepath.Join(root, "generated"),
	}, dirs)
}

func TestExtractors(t *testing.T) {
	root, goFile := writeModule(t)
	phpFile := filepath.Join(root, "UserController.php")
	require.NoError(t, os.WriteFile(phpFile, []byte(userControllerSource), 0644))
	broken := filepath.Join(root, "orders", "broken.go")
	require.NoError(t, os.WriteFile(broken, []byte("package orders\nfunc {"), 0644))

	extractors, err := Default(utils.NewFileReader())
	require.NoError(t, err)
	assert.Equal(t, []string{".go", ".php"}, extractors.Extensions())
	assert.True(t, extractors.Supports(goFile))
	assert.False(t, extractors.Supports("notes.txt"))

	err = extractors.Register(NewPHPExtractor())
	assert.Error(t, err, "extensions can only be claimed once")

	set, err := extractors.Scan([]string{goFile, phpFile, broken, filepath.Join(root, "go.mod")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.go")
	assert.Len(t, set.Targets(), 22)

	_, err = extractors.ExtractFile("notes.txt")
	assert.Error(t, err)

	_, err = Default(utils.NewFileReader(), "cobol")
	assert.EqualError(t, err, `unsupported language "cobol"`)

	onlyPHP, err := Default(utils.NewFileReader(), "PHP")
	require.NoError(t, err)
	assert.False(t, onlyPHP.Supports(goFile))
}

type countingExtractor struct {
	calls int
}

func (c *countingExtractor) Language() string     { return "text" }
func (c *countingExtractor) Extensions() []string { return []string{".txt"} }

func (c *countingExtractor) Extract(path string, src []byte) ([]Declaration, error) {
	c.calls++
	return []Declaration{{Kind: KindClass, Target: string(src), File: path, Params: []string{"id"}}}, nil
}

func TestExtractFileReusesUnchangedFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Orders.txt")
	require.NoError(t, os.WriteFile(path, []byte("Orders"), 0644))

	counter := &countingExtractor{}
	extractors, err := NewExtractors(utils.NewFileReader(), counter)
	require.NoError(t, err)

	first, err := extractors.ExtractFile(path)
	require.NoError(t, err)
	first[0].Target = "mutated"

	second, err := extractors.ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, counter.calls)
	assert.Equal(t, "Orders", second[0].Target, "callers get their own copy")

	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(path, []byte("Billing"), 0644))
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := extractors.ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, counter.calls)
	assert.Equal(t, "Billing", third[0].Target)

	stats := extractors.Extracted()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}
