package index

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/toyz/docblock/internal/cache"
	docerrors "github.com/toyz/docblock/internal/errors"
	"github.com/toyz/docblock/internal/source"
	"github.com/toyz/docblock/pkg/annotation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const buyDoc = `/**
 * @Route(path="/buy", method=POST)
 * @Cast[Id]{id}(type="int")
 * @Transactional
 */`

const brokenDoc = `/**
 * @Route(path='/oops
 */`

func newIndex(t *testing.T, opts ...Option) (*Index, *cache.Cache) {
	t.Helper()
	c := cache.New()
	return New(annotation.NewParser(), c, opts...), c
}

func TestAnnotationsOf(t *testing.T) {
	ix, c := newIndex(t)

	col, err := ix.AnnotationsOf("Shop::buy()", buyDoc)
	require.NoError(t, err)
	assert.Equal(t, "Shop::buy()", col.Target())
	assert.Equal(t, []string{"Route", "Transactional"}, col.Types())

	assert.True(t, c.Has("Shop::buy()"))
	assert.True(t, c.Has("Shop::buy()#id"), "parameter collections are cached with their owner")

	param, err := ix.AnnotationsOf("Shop::buy()#id", buyDoc)
	require.NoError(t, err)
	cast, err := param.FirstNamed("Id")
	require.NoError(t, err)
	assert.Equal(t, "Cast", cast.Name())
	assert.Equal(t, "int", cast.Get("type", nil))

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)

	same, err := ix.AnnotationsOf("Shop::buy()", buyDoc)
	require.NoError(t, err)
	assert.True(t, same.Contain("Route"))
	assert.Equal(t, uint64(2), c.Stats().Hits, "an unchanged doc comment is served from the cache")

	edited, err := ix.AnnotationsOf("Shop::buy()", "/**\n * @Other\n */")
	require.NoError(t, err)
	assert.True(t, edited.Contain("Other"), "an edited doc comment is parsed again")
	assert.False(t, edited.Contain("Route"))

	param, err = ix.AnnotationsOf("Shop::buy()#id", "/**\n * @Other\n */")
	require.NoError(t, err)
	assert.Zero(t, param.Count(), "parameter annotations removed from the doc comment are gone")
}

func TestAnnotationsOf_EmptyCollections(t *testing.T) {
	ix, c := newIndex(t)

	col, err := ix.AnnotationsOf("Shop::buy()#qty", buyDoc)
	require.NoError(t, err)
	assert.Zero(t, col.Count())
	assert.True(t, c.Has("Shop::buy()#qty"))

	col, err = ix.AnnotationsOf("Shop", "")
	require.NoError(t, err)
	assert.Zero(t, col.Count())
	assert.True(t, c.Has("Shop"))
}

func TestAnnotationsOf_ParseError(t *testing.T) {
	ix, c := newIndex(t)

	_, err := ix.AnnotationsOf("Shop::oops()", brokenDoc)
	require.Error(t, err)
	assert.ErrorIs(t, err, annotation.ErrParse)
	assert.False(t, c.Has("Shop::oops()"), "failed parses are not cached")
}

func TestBuild(t *testing.T) {
	ix, _ := newIndex(t, WithWorkers(2))
	decls := []source.Declaration{
		{Kind: source.KindClass, Target: "Shop", Doc: "/**\n * @Controller\n */", File: "Shop.php", Line: 3},
		{Kind: source.KindMethod, Target: "Shop::buy()", Owner: "Shop", Doc: buyDoc, Params: []string{"id", "qty"}, File: "Shop.php", Line: 9},
		{Kind: source.KindMethod, Target: "Shop::oops()", Owner: "Shop", Doc: brokenDoc, Params: []string{"x"}, File: "Shop.php", Line: 20},
		{Kind: source.KindProperty, Target: "Shop->name", Owner: "Shop", File: "Shop.php", Line: 5},
	}

	result, err := ix.Build(context.Background(), decls)
	require.Error(t, err)
	require.NotNil(t, result)

	var multi *docerrors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	require.Equal(t, 1, multi.Count())
	failure := multi.Errors[0]
	assert.Equal(t, docerrors.ParseErrorCode, failure.ErrorCode())
	assert.Equal(t, "Shop.php:20", failure.Location().String())
	assert.Equal(t, "Unterminated", failure.Context()["kind"])
	assert.ErrorIs(t, err, annotation.ErrParse)

	assert.Equal(t, []string{
		"Shop",
		"Shop->name",
		"Shop::buy()",
		"Shop::buy()#id",
		"Shop::buy()#qty",
	}, result.Targets())
	assert.Equal(t, []string{"Shop", "Shop::buy()", "Shop::buy()#id"}, result.Annotated())
	assert.Equal(t, 4, result.Count())
	assert.Equal(t, map[string]int{"Controller": 1, "Route": 1, "Transactional": 1, "Id": 1}, result.Types())

	col, ok := result.Lookup("Shop::buy()#id")
	require.True(t, ok)
	assert.True(t, col.Contain("Id"))

	_, ok = result.Lookup("Shop::oops()")
	assert.False(t, ok)

	decl, ok := result.Declaration("Shop::buy()#qty")
	require.True(t, ok)
	assert.Equal(t, 9, decl.Line)
	assert.Equal(t, 4, result.Declarations().Len())
}

func TestBuild_AllSucceed(t *testing.T) {
	ix, c := newIndex(t)
	decls := []source.Declaration{
		{Kind: source.KindClass, Target: "A", Doc: "/**\n * @Entity\n */"},
		{Kind: source.KindClass, Target: "B"},
	}

	result, err := ix.Build(context.Background(), decls)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count())
	assert.Equal(t, []string{"A", "B"}, c.Targets())
}

func TestBuild_Cancelled(t *testing.T) {
	ix, _ := newIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.Build(ctx, []source.Declaration{{Target: "A"}})
	assert.ErrorIs(t, err, context.Canceled)
}
