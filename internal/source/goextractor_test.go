package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/docblock/internal/utils"
)

const ordersSource = `package orders

// Service handles orders.
// @Route(path="/orders")
type Service struct {
	// @Inject
	Repo Repository
	name string
}

/**
 * @Transactional(isolation="serializable")
 */
func (s *Service) Place(ctx context.Context, id int, _ string) error { return nil }

// @Handler
func New() *Service { return &Service{} }

// @Config(key="limit")
var Limit = 10

type (
	// @Value
	Amount int
	Currency string
)

type Box[T any] struct{}

func (b *Box[T]) Open() {}

func helper() {
	var inner = 1
	_ = inner
}
`

func writeModule(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/shop\n\ngo 1.25\n"), 0644))
	dir := filepath.Join(root, "orders")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "service.go")
	require.NoError(t, os.WriteFile(path, []byte(ordersSource), 0644))
	return root, path
}

func TestGoExtractor(t *testing.T) {
	_, path := writeModule(t)
	extractor := NewGoExtractor(utils.NewGoModResolver(utils.NewFileReader()))

	decls, err := extractor.Extract(path, []byte(ordersSource))
	require.NoError(t, err)

	targets := make([]string, len(decls))
	for i, d := range decls {
		targets[i] = d.Target
	}
	assert.Equal(t, []string{
		"example.com/shop/orders.Service",
		"example.com/shop/orders.Service->Repo",
		"example.com/shop/orders.Service->name",
		"example.com/shop/orders.Service::Place()",
		"example.com/shop/orders.New()",
		"example.com/shop/orders::$Limit",
		"example.com/shop/orders.Amount",
		"example.com/shop/orders.Currency",
		"example.com/shop/orders.Box",
		"example.com/shop/orders.Box::Open()",
		"example.com/shop/orders.helper()",
	}, targets)

	set := NewSet(decls...)

	service, ok := set.Lookup("example.com/shop/orders.Service")
	require.True(t, ok)
	assert.Equal(t, KindClass, service.Kind)
	assert.Equal(t, 5, service.Line)
	assert.Equal(t, path, service.File)
	assert.Equal(t, "/**\n * Service handles orders.\n * @Route(path=\"/orders\")\n */", service.Doc)

	place, ok := set.Lookup("example.com/shop/orders.Service::Place()")
	require.True(t, ok)
	assert.Equal(t, KindMethod, place.Kind)
	assert.Equal(t, "example.com/shop/orders.Service", place.Owner)
	assert.Equal(t, []string{"ctx", "id"}, place.Params)
	assert.Equal(t, "/**\n * @Transactional(isolation=\"serializable\")\n */", place.Doc)

	repo, _ := set.Lookup("example.com/shop/orders.Service->Repo")
	assert.Equal(t, KindProperty, repo.Kind)
	assert.Equal(t, "/**\n * @Inject\n */", repo.Doc)

	name, _ := set.Lookup("example.com/shop/orders.Service->name")
	assert.Empty(t, name.Doc)

	limit, _ := set.Lookup("example.com/shop/orders::$Limit")
	assert.Equal(t, KindStaticProperty, limit.Kind)
	assert.Equal(t, "/**\n * @Config(key=\"limit\")\n */", limit.Doc)

	amount, _ := set.Lookup("example.com/shop/orders.Amount")
	assert.Equal(t, "/**\n * @Value\n */", amount.Doc)
	currency, _ := set.Lookup("example.com/shop/orders.Currency")
	assert.Empty(t, currency.Doc)

	open, _ := set.Lookup("example.com/shop/orders.Box::Open()")
	assert.Equal(t, "example.com/shop/orders.Box", open.Owner)
}

func TestGoExtractor_SyntaxError(t *testing.T) {
	extractor := NewGoExtractor(utils.NewGoModResolver(utils.NewFileReader()))
	_, err := extractor.Extract(filepath.Join(t.TempDir(), "broken.go"), []byte("package broken\nfunc {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse broken.go")
}

func TestDocblockRendering(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"empty", nil, ""},
		{"only blank lines", []string{"", "  "}, ""},
		{"single", []string{"@Foo"}, "/**\n * @Foo\n */"},
		{"inner blank line", []string{"Summary.", "", "@Foo"}, "/**\n * Summary.\n *\n * @Foo\n */"},
		{"trailing whitespace", []string{"@Foo  "}, "/**\n * @Foo\n */"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, docblock(tt.lines))
		})
	}
}
