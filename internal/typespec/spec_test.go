package typespec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitive(t *testing.T) {
	e := New()

	spec, err := e.ParseSpec("int")
	require.NoError(t, err)
	assert.Equal(t, KindPrimitive, spec.Kind)
	assert.Equal(t, "int", spec.Name)
}

func TestParseUnion(t *testing.T) {
	e := New()

	spec, err := e.ParseSpec("int|str|none")
	require.NoError(t, err)
	require.Equal(t, KindUnion, spec.Kind)
	require.Len(t, spec.Params, 3)
	assert.Equal(t, "int", spec.Params[0].Name)
	assert.Equal(t, "str", spec.Params[1].Name)
	assert.Equal(t, "none", spec.Params[2].Name)
}

func TestParseGeneric(t *testing.T) {
	e := New()

	spec, err := e.ParseSpec("Dict[str, List[int]]")
	require.NoError(t, err)
	require.Equal(t, KindGeneric, spec.Kind)
	assert.Equal(t, "Dict", spec.Name)
	require.Len(t, spec.Params, 2)
	assert.Equal(t, "str", spec.Params[0].Name)
	require.Equal(t, KindGeneric, spec.Params[1].Kind)
	assert.Equal(t, "List", spec.Params[1].Name)
}

func TestParseUnionInsideGeneric(t *testing.T) {
	e := New()

	spec, err := e.ParseSpec("List[int|str]")
	require.NoError(t, err)
	require.Equal(t, KindGeneric, spec.Kind)
	require.Len(t, spec.Params, 1)
	assert.Equal(t, KindUnion, spec.Params[0].Kind)
}

func TestParseCallable(t *testing.T) {
	e := New()

	spec, err := e.ParseSpec("Callable[[int, str], bool]")
	require.NoError(t, err)
	require.Equal(t, KindCallable, spec.Kind)
	assert.False(t, spec.AnyArity)
	require.Len(t, spec.ArgSpecs, 2)
	require.NotNil(t, spec.Return)
	assert.Equal(t, "bool", spec.Return.Name)
}

func TestParseCallableAnyArity(t *testing.T) {
	e := New()

	spec, err := e.ParseSpec("Callable[..., int]")
	require.NoError(t, err)
	assert.True(t, spec.AnyArity)
	require.NotNil(t, spec.Return)

	bare, err := e.ParseSpec("Callable")
	require.NoError(t, err)
	assert.True(t, bare.AnyArity)
	assert.Nil(t, bare.Return)
}

func TestParseCallableAnyReturnElided(t *testing.T) {
	e := New()

	spec, err := e.ParseSpec("Callable[[int], any]")
	require.NoError(t, err)
	assert.Nil(t, spec.Return, "an 'any' return clause must not allocate a return spec")
}

func TestParseMalformed(t *testing.T) {
	e := New()

	for _, text := range []string{
		"",
		"List[int",
		"int]",
		"int||str",
		"Callable[int, str]",
	} {
		_, err := e.ParseSpec(text)
		assert.Error(t, err, "text %q", text)
	}
}

func TestParseCacheReusesSpec(t *testing.T) {
	e := New()

	first, err := e.ParseSpec("List[int]")
	require.NoError(t, err)
	second, err := e.ParseSpec("List[int]")
	require.NoError(t, err)
	assert.Same(t, first, second, "identical annotation text must hit the parse cache")
}

func TestParseCacheCapStopsAccepting(t *testing.T) {
	e := New()

	for i := 0; i < parseCacheCap+50; i++ {
		_, err := e.ParseSpec(fmt.Sprintf("List[int]|str%d", i))
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, len(e.parseCache), parseCacheCap)

	// Parsing past the cap still works, it just is not cached.
	spec, err := e.ParseSpec("Dict[str, int]|none")
	require.NoError(t, err)
	assert.Equal(t, KindUnion, spec.Kind)
}

func TestRegisterAlias(t *testing.T) {
	e := New()
	e.RegisterAlias("UserId", "int")

	spec, err := e.ParseSpec("UserId")
	require.NoError(t, err)
	assert.Equal(t, KindPrimitive, spec.Kind)
	assert.Equal(t, "int", spec.Name)
	assert.Equal(t, "UserId", spec.Text, "diagnostics must echo the written name")
}

func TestAliasChainAndGenericTarget(t *testing.T) {
	e := New()
	e.RegisterAlias("Ids", "List[int]")
	e.RegisterAlias("ManyIds", "Ids")

	spec, err := e.ParseSpec("ManyIds")
	require.NoError(t, err)
	assert.Equal(t, KindGeneric, spec.Kind)
	assert.Equal(t, "List", spec.Name)
}

func TestAliasCycleDoesNotHang(t *testing.T) {
	e := New()
	e.RegisterAlias("A", "B")
	e.RegisterAlias("B", "A")

	spec, err := e.ParseSpec("A")
	require.NoError(t, err)
	// The cycle resolves to a bare name treated as an unknown primitive.
	assert.Equal(t, KindPrimitive, spec.Kind)
}

func TestRegisterAliasInvalidatesParseCache(t *testing.T) {
	e := New()

	before, err := e.ParseSpec("UserId")
	require.NoError(t, err)
	assert.Equal(t, "UserId", before.Name)

	e.RegisterAlias("UserId", "str")

	after, err := e.ParseSpec("UserId")
	require.NoError(t, err)
	assert.Equal(t, "str", after.Name)
}
