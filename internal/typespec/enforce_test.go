package typespec

import (
	"strings"
	"testing"

	"sona/internal/ast"
	"sona/internal/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModeNames(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
	}{
		{"on", ModeOn},
		{"ON", ModeOn},
		{"strict", ModeOn},
		{"1", ModeOn},
		{"warn", ModeWarn},
		{"warning", ModeWarn},
		{"off", ModeOff},
		{"", ModeOff},
		{"bogus", ModeOff},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseMode(tt.input), "input %q", tt.input)
	}
}

func TestCheckParameterOffModeSkips(t *testing.T) {
	e := New()

	val, err := e.CheckParameter("f", "parameter 'x'", &object.String{Value: "x"}, "int")
	require.Nil(t, err)
	assert.Equal(t, "x", val.(*object.String).Value)
	assert.Empty(t, e.Warnings())
}

func TestCheckParameterOnModeAborts(t *testing.T) {
	e := New()
	e.SetMode(ModeOn)

	_, err := e.CheckParameter("f", "parameter 'x'", &object.String{Value: "five"}, "int")
	require.NotNil(t, err)
	assert.Equal(t, object.ErrParameterTypeMismatch, err.Kind)
	assert.Contains(t, err.Message, "parameter 'x'")
	assert.Contains(t, err.Message, "int")
	assert.Contains(t, err.Message, "str")
}

func TestCheckParameterWarnModeRecords(t *testing.T) {
	e := New()
	e.SetMode(ModeWarn)

	val, err := e.CheckParameter("f", "parameter 'x'", &object.String{Value: "five"}, "int")
	require.Nil(t, err)
	assert.Equal(t, "five", val.(*object.String).Value, "WARN mode passes the value through unchanged")

	require.Len(t, e.Warnings(), 1)
	d := e.Warnings()[0]
	assert.Equal(t, object.ErrParameterTypeMismatch, d.Code)
	assert.Equal(t, "f", d.Function)
	assert.Equal(t, "int", d.Declared)
	assert.Equal(t, "str", d.Observed)
}

func TestCheckReturnValue(t *testing.T) {
	e := New()
	e.SetMode(ModeOn)

	require.Nil(t, e.CheckReturnValue("f", &object.Number{Value: 2}, "int"))

	err := e.CheckReturnValue("f", &object.String{Value: "x"}, "int")
	require.NotNil(t, err)
	assert.Equal(t, object.ErrReturnTypeMismatch, err.Kind)
}

func TestElementMismatchUpgradesCode(t *testing.T) {
	e := New()
	e.SetMode(ModeOn)

	mixed := &object.List{Elements: []object.Object{
		&object.Number{Value: 1},
		&object.String{Value: "two"},
	}}

	_, err := e.CheckParameter("f", "parameter 'xs'", mixed, "List[int]")
	require.NotNil(t, err)
	assert.Equal(t, object.ErrCollectionElementMismatch, err.Kind)
	assert.Contains(t, err.Message, "index 1")
}

func TestCallableCodeSelection(t *testing.T) {
	e := New()
	e.SetMode(ModeOn)

	// Not invocable at all.
	_, err := e.CheckParameter("f", "parameter 'cb'", &object.Number{Value: 1}, "Callable[[int], any]")
	require.NotNil(t, err)
	assert.Equal(t, object.ErrCallableNotCallable, err.Kind)

	// Invocable with the wrong arity.
	twoParams := &object.Function{Parameters: []*ast.FunctionParameter{
		{Name: &ast.Identifier{Value: "a"}},
		{Name: &ast.Identifier{Value: "b"}},
	}}
	_, err = e.CheckParameter("f", "parameter 'cb'", twoParams, "Callable[[int], any]")
	require.NotNil(t, err)
	assert.Equal(t, object.ErrCallableArityMismatch, err.Kind)
}

func TestDiagnosticPreviewTruncated(t *testing.T) {
	e := New()
	e.SetMode(ModeWarn)

	long := &object.String{Value: strings.Repeat("a", 200)}
	e.CheckParameter("f", "parameter 'x'", long, "int")

	require.Len(t, e.Warnings(), 1)
	assert.LessOrEqual(t, len(e.Warnings()[0].Preview), previewLimit+3)
	assert.True(t, strings.HasSuffix(e.Warnings()[0].Preview, "..."))
}

func TestSuggestionsPatterns(t *testing.T) {
	e := New()
	e.SetMode(ModeWarn)

	e.CheckParameter("f", "parameter 'n'", &object.String{Value: "5"}, "int")
	e.CheckParameter("f", "parameter 'm'", object.NIL, "int")

	require.Len(t, e.Warnings(), 2)
	assert.Contains(t, e.Warnings()[0].Suggestion, "number(")
	assert.Contains(t, e.Warnings()[1].Suggestion, "Optional")
}

func TestEnforceCallableWrapsOnlyTypedReturns(t *testing.T) {
	e := New()
	e.SetMode(ModeOn)
	e.SetCaller(func(fn object.Object, args []object.Object) object.Object {
		return fn.(*object.Builtin).Fn(args...)
	})

	honest := &object.Builtin{Name: "honest", Fn: func(args ...object.Object) object.Object {
		return &object.Number{Value: 1}
	}}

	// No return clause: the value passes through unwrapped.
	val, err := e.CheckParameter("f", "parameter 'cb'", honest, "Callable")
	require.Nil(t, err)
	assert.Same(t, honest, val)

	// A typed return wraps the callable.
	val, err = e.CheckParameter("f", "parameter 'cb'", honest, "Callable[..., int]")
	require.Nil(t, err)
	wrapper, ok := val.(*object.Builtin)
	require.True(t, ok)
	assert.NotSame(t, honest, wrapper)

	result := wrapper.Fn()
	assert.Equal(t, float64(1), result.(*object.Number).Value)
}

func TestEnforceCallableRejectsLyingReturn(t *testing.T) {
	e := New()
	e.SetMode(ModeOn)
	e.SetCaller(func(fn object.Object, args []object.Object) object.Object {
		return fn.(*object.Builtin).Fn(args...)
	})

	liar := &object.Builtin{Name: "liar", Fn: func(args ...object.Object) object.Object {
		return &object.String{Value: "nope"}
	}}

	val, err := e.CheckParameter("f", "parameter 'cb'", liar, "Callable[..., int]")
	require.Nil(t, err)

	result := val.(*object.Builtin).Fn()
	errObj, ok := result.(*object.Error)
	require.True(t, ok, "invoking the wrapper must surface the violation")
	assert.Equal(t, object.ErrCallableReturnMismatch, errObj.Kind)
}
