package object

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"sona/internal/ast"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	NIL_OBJ     = "NIL"
	BOOLEAN_OBJ = "BOOLEAN"
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"

	LIST_OBJ = "LIST"
	MAP_OBJ  = "MAP"

	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	ERROR_OBJ    = "ERROR"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
	BREAK_OBJ        = "BREAK"
	CONTINUE_OBJ     = "CONTINUE"
)

// Error kinds, stable codes consumed by the CLI and tests.
const (
	ErrUndeclaredVariable = "UndeclaredVariable"
	ErrAlreadyDeclared    = "AlreadyDeclared"
	ErrConstantViolation  = "ConstantViolation"
	ErrArityMismatch      = "ArityMismatch"
	ErrNotCallable        = "NotCallable"
	ErrBreakOutsideLoop   = "BreakOutsideLoop"
	ErrContinueOutside    = "ContinueOutsideLoop"
	ErrUnhandledRuntime   = "UnhandledRuntimeError"

	ErrParameterTypeMismatch     = "ParameterTypeMismatch"
	ErrReturnTypeMismatch        = "ReturnTypeMismatch"
	ErrCollectionElementMismatch = "CollectionElementMismatch"
	ErrCallableNotCallable       = "CallableNotCallable"
	ErrCallableArityMismatch     = "CallableArityMismatch"
	ErrCallableReturnMismatch    = "CallableReturnTypeMismatch"
)

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Hashable interface {
	Object
	MapKey() MapKey
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}
func (n *Number) MapKey() MapKey {
	return MapKey{Type: n.Type(), Value: math.Float64bits(n.Value)}
}

// IsIntegral reports whether the number carries no fractional part,
// which is what the typespec engine means by "int".
func (n *Number) IsIntegral() bool {
	return n.Value == math.Trunc(n.Value) && !math.IsInf(n.Value, 0)
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) MapKey() MapKey {
	var value uint64
	if b.Value {
		value = 1
	}
	return MapKey{Type: b.Type(), Value: value}
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }
func (s *String) MapKey() MapKey {
	h := fnv.New64a()
	for _, r := range s.Value {
		var buf [4]byte
		n := utf8.EncodeRune(buf[:], r)
		h.Write(buf[:n])
	}
	return MapKey{Type: s.Type(), Value: h.Sum64()}
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	var out bytes.Buffer

	elements := []string{}
	for _, e := range l.Elements {
		elements = append(elements, e.Inspect())
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

type MapKey struct {
	Type  ObjectType
	Value uint64
}

type MapPair struct {
	Key   Object
	Value Object
}

type Map struct {
	Pairs map[MapKey]MapPair
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string {
	var out bytes.Buffer

	pairs := []string{}
	for _, pair := range m.Pairs {
		pairs = append(pairs, fmt.Sprintf("%s: %s",
			pair.Key.Inspect(), pair.Value.Inspect()))
	}

	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")

	return out.String()
}

// Put simplifies adding objects to a map
func (m *Map) Put(k Hashable, v Object) *Map {
	if m.Pairs == nil {
		m.Pairs = map[MapKey]MapPair{}
	}
	m.Pairs[k.MapKey()] = MapPair{Key: k, Value: v}
	return m
}

func (m *Map) Get(k Hashable) (Object, bool) {
	pair, ok := m.Pairs[k.MapKey()]
	return pair.Value, ok
}

// Function is a user-defined callable materialized from a function
// definition node. It carries no captured environment: free variables
// resolve against whatever frames are live at the call site. That
// call-stack visibility is the documented language semantics, not an
// accident.
type Function struct {
	Name       string
	Parameters []*ast.FunctionParameter
	Body       *ast.BlockStatement
	ReturnSpec string
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("func")
	if f.Name != "" {
		out.WriteString(" " + f.Name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") { ... }")

	return out.String()
}

// RequiredParams is the minimum positional argument count: parameters
// without defaults, excluding a trailing variadic capture.
func (f *Function) RequiredParams() int {
	required := 0
	for _, p := range f.Parameters {
		if p.IsVariadic || p.Default != nil {
			continue
		}
		required++
	}
	return required
}

// PositionalParams is the declared parameter count excluding a
// trailing variadic capture.
func (f *Function) PositionalParams() int {
	count := len(f.Parameters)
	if f.IsVariadic() {
		count--
	}
	return count
}

func (f *Function) IsVariadic() bool {
	return len(f.Parameters) > 0 && f.Parameters[len(f.Parameters)-1].IsVariadic
}

type BuiltinFunction func(args ...Object) Object

// Builtin is a host-provided callable registered into the global scope
// before execution begins.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name + "() { <native> }" }

// Control-flow signals. These unwind the evaluator without error
// semantics; every construct that owns them must catch them.

type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType { return BREAK_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break" }

type ContinueSignal struct{}

func (cs *ContinueSignal) Type() ObjectType { return CONTINUE_OBJ }
func (cs *ContinueSignal) Inspect() string  { return "continue" }

var (
	BREAK    = &BreakSignal{}
	CONTINUE = &ContinueSignal{}
)

// Error is a coded runtime error flowing through evaluator results.
type Error struct {
	Kind    string
	Message string
	Line    int
	Col     int
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d, col %d)", e.Kind, e.Message, e.Line, e.Col)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// At attaches position context; the scope stack reports errors without
// positions and the evaluator fills them in when known.
func (e *Error) At(pos ast.Pos) *Error {
	if e.Line == 0 {
		e.Line = pos.Line
		e.Col = pos.Col
	}
	return e
}

func NewError(kind string, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func IsError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// IsSignal reports whether obj is a non-error control-flow transfer.
func IsSignal(obj Object) bool {
	if obj == nil {
		return false
	}
	switch obj.Type() {
	case RETURN_VALUE_OBJ, BREAK_OBJ, CONTINUE_OBJ:
		return true
	}
	return false
}

// Truthy follows the falsy-value conventions: zero, empty string,
// empty collection and nil are falsy, everything else is truthy.
func Truthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Nil:
		return false
	case *Boolean:
		return obj.Value
	case *Number:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	case *List:
		return len(obj.Elements) > 0
	case *Map:
		return len(obj.Pairs) > 0
	default:
		return true
	}
}

// Equals compares two objects structurally.
func Equals(a, b Object) bool {
	if a.Type() != b.Type() {
		return false
	}

	switch a := a.(type) {
	case *Number:
		return a.Value == b.(*Number).Value

	case *Boolean:
		return a.Value == b.(*Boolean).Value

	case *String:
		return a.Value == b.(*String).Value

	case *Nil:
		return true

	case *List:
		bList := b.(*List)
		if len(a.Elements) != len(bList.Elements) {
			return false
		}
		for i, elem := range a.Elements {
			if !Equals(elem, bList.Elements[i]) {
				return false
			}
		}
		return true

	case *Map:
		bMap := b.(*Map)
		if len(a.Pairs) != len(bMap.Pairs) {
			return false
		}
		for k, v := range a.Pairs {
			bPair, ok := bMap.Pairs[k]
			if !ok || !Equals(v.Value, bPair.Value) {
				return false
			}
		}
		return true
	}

	return a == b
}

// TypeName is the runtime-type name the typespec engine validates and
// reports: int/float for numbers, str, bool, list, dict, none,
// function.
func TypeName(obj Object) string {
	switch obj := obj.(type) {
	case *Number:
		if obj.IsIntegral() {
			return "int"
		}
		return "float"
	case *String:
		return "str"
	case *Boolean:
		return "bool"
	case *List:
		return "list"
	case *Map:
		return "dict"
	case *Nil:
		return "none"
	case *Function, *Builtin:
		return "function"
	default:
		return strings.ToLower(string(obj.Type()))
	}
}
