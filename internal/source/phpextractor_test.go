package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userControllerSource = `<?php
namespace App\Http;

/**
 * @Controller(prefix="/users")
 */
class UserController
{
    /** @Inject */
    private $repo;

    /**
     * @Cache(ttl=60)
     */
    public static $shared;

    public $plain;

    /**
     * @Route("/show")
     * @Cast[Id]{id}(type="int")
     */
    public function show(int $id, string ...$tags) {}
}

/** @Helper */
function helper($x) {}
`

func TestPHPExtractor(t *testing.T) {
	decls, err := NewPHPExtractor().Extract("UserController.php", []byte(userControllerSource))
	require.NoError(t, err)

	set := NewSet(decls...)
	assert.Equal(t, []string{
		`App\Http\UserController`,
		`App\Http\UserController->plain`,
		`App\Http\UserController->repo`,
		`App\Http\UserController::$shared`,
		`App\Http\UserController::show()`,
		`App\Http\UserController::show()#id`,
		`App\Http\UserController::show()#tags`,
		`App\Http\helper()`,
		`App\Http\helper()#x`,
	}, set.Targets())

	class, ok := set.Lookup(`App\Http\UserController`)
	require.True(t, ok)
	assert.Equal(t, KindClass, class.Kind)
	assert.Equal(t, 7, class.Line)
	assert.Equal(t, "/**\n * @Controller(prefix=\"/users\")\n */", class.Doc)

	repo, _ := set.Lookup(`App\Http\UserController->repo`)
	assert.Equal(t, KindProperty, repo.Kind)
	assert.Equal(t, "/**\n * @Inject\n */", repo.Doc, "single-line docblocks are expanded")

	shared, _ := set.Lookup(`App\Http\UserController::$shared`)
	assert.Equal(t, KindStaticProperty, shared.Kind)
	assert.Contains(t, shared.Doc, "@Cache(ttl=60)")

	plain, _ := set.Lookup(`App\Http\UserController->plain`)
	assert.Empty(t, plain.Doc)

	show, _ := set.Lookup(`App\Http\UserController::show()#id`)
	assert.Equal(t, KindMethod, show.Kind, "parameter targets resolve to their method")
	assert.Equal(t, []string{"id", "tags"}, show.Params)
	assert.Contains(t, show.Doc, "@Cast[Id]{id}")

	methods := set.Methods(`App\Http\UserController`)
	require.Len(t, methods, 1)
	assert.Equal(t, "show", methods[0].Name)
	assert.Len(t, set.Properties(`App\Http\UserController`), 3)

	helper, _ := set.Lookup(`App\Http\helper()`)
	assert.Equal(t, KindFunction, helper.Kind)
	assert.Equal(t, "/**\n * @Helper\n */", helper.Doc)
}

func TestPHPExtractor_BracedNamespaces(t *testing.T) {
	src := `<?php
namespace Shop {
    /** @Entity */
    class Order {}
}
namespace {
    class Legacy {}
}
`
	decls, err := NewPHPExtractor().Extract("multi.php", []byte(src))
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, `Shop\Order`, decls[0].Target)
	assert.Equal(t, "/**\n * @Entity\n */", decls[0].Doc)
	assert.Equal(t, "Legacy", decls[1].Target)
}

func TestNormalizeDocblock(t *testing.T) {
	assert.Equal(t, "/**\n * @Foo(bar=1)\n */", normalizeDocblock("/** @Foo(bar=1) */"))
	assert.Equal(t, "", normalizeDocblock("/** */"))

	multi := "/**\n * @Foo\n */"
	assert.Equal(t, multi, normalizeDocblock(multi))
}
