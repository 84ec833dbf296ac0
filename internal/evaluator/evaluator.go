package evaluator

import (
	"io"
	"log/slog"
	"math"
	"os"
	"sona/internal/ast"
	"sona/internal/builtins"
	"sona/internal/object"
	"sona/internal/typespec"
	"strings"
)

var (
	NIL   = object.NIL
	TRUE  = object.TRUE
	FALSE = object.FALSE
)

// Evaluator walks an already-parsed program against the scope stack.
// It is single-threaded and fully synchronous: every expression
// evaluates to completion before its caller proceeds.
type Evaluator struct {
	scopes *object.ScopeStack
	types  *typespec.Engine
	out    io.Writer
}

// New constructs an evaluator with the builtin registry seeded into
// the global scope. A nil engine disables type-contract gates
// entirely.
func New(types *typespec.Engine) *Evaluator {
	e := &Evaluator{
		scopes: object.NewScopeStack(),
		types:  types,
		out:    os.Stdout,
	}

	global := e.scopes.Global()
	for name, builtin := range builtins.All() {
		global.Bindings[name] = builtin
	}

	if types != nil {
		types.SetCaller(func(fn object.Object, args []object.Object) object.Object {
			return e.applyFunction(calleeName(fn), fn, args, ast.Pos{})
		})
	}

	return e
}

// SetOut redirects print output; tests capture it with a buffer.
func (e *Evaluator) SetOut(w io.Writer) { e.out = w }

// Scopes exposes the stack for embedding hosts that pre-seed globals.
func (e *Evaluator) Scopes() *object.ScopeStack { return e.scopes }

// Run executes a program. A Return signal escaping to top level is a
// normal top-level result; break/continue escaping to top level are
// errors.
func (e *Evaluator) Run(program *ast.Program) object.Object {
	var result object.Object = NIL

	for _, statement := range program.Statements {
		result = e.Eval(statement)

		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.BreakSignal:
			return object.NewError(object.ErrBreakOutsideLoop, "break outside loop")
		case *object.ContinueSignal:
			return object.NewError(object.ErrContinueOutside, "continue outside loop")
		case *object.Error:
			return result
		}
	}

	if result == nil {
		result = NIL
	}
	return result
}

func (e *Evaluator) Eval(node ast.Node) object.Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.Run(node)

	case *ast.BlockStatement:
		return e.evalBlock(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	case *ast.LetStatement:
		return e.evalDeclaration(node.Name, node.Value, false, node.Pos)

	case *ast.ConstStatement:
		return e.evalDeclaration(node.Name, node.Value, true, node.Pos)

	case *ast.AssignStatement:
		return e.evalAssign(node)

	case *ast.IfStatement:
		return e.evalIf(node)

	case *ast.WhileStatement:
		return e.evalWhile(node)

	case *ast.ForEachStatement:
		return e.evalForEach(node)

	case *ast.TryStatement:
		return e.evalTry(node)

	case *ast.FunctionStatement:
		fn := &object.Function{
			Name:       node.Name.Value,
			Parameters: node.Parameters,
			Body:       node.Body,
			ReturnSpec: node.ReturnSpec,
		}
		if err := e.scopes.Declare(node.Name.Value, fn, false); err != nil {
			return err.At(node.Pos)
		}
		return NIL

	case *ast.ReturnStatement:
		var val object.Object = NIL
		if node.ReturnValue != nil {
			val = e.Eval(node.ReturnValue)
			if object.IsError(val) {
				return val
			}
		}
		return &object.ReturnValue{Value: val}

	case *ast.BreakStatement:
		return object.BREAK

	case *ast.ContinueStatement:
		return object.CONTINUE

	case *ast.PrintStatement:
		return e.evalPrint(node)

	// Expressions
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NilLiteral:
		return NIL

	case *ast.Identifier:
		val, err := e.scopes.Read(node.Value)
		if err != nil {
			return err.At(node.Pos)
		}
		return val

	case *ast.PrefixExpression:
		right := e.Eval(node.Right)
		if object.IsError(right) {
			return right
		}
		return e.evalPrefixExpression(node.Operator, right, node.Pos)

	case *ast.InfixExpression:
		return e.evalInfixExpression(node)

	case *ast.ListLiteral:
		elements := e.evalExpressions(node.Elements)
		if len(elements) == 1 && object.IsError(elements[0]) {
			return elements[0]
		}
		return &object.List{Elements: elements}

	case *ast.MapLiteral:
		return e.evalMapLiteral(node)

	case *ast.IndexExpression:
		left := e.Eval(node.Left)
		if object.IsError(left) {
			return left
		}
		index := e.Eval(node.Index)
		if object.IsError(index) {
			return index
		}
		return e.evalIndexExpression(left, index, node.Pos)

	case *ast.PropertyExpression:
		target := e.Eval(node.Target)
		if object.IsError(target) {
			return target
		}
		return e.evalPropertyExpression(target, node.Property, node.Pos)

	case *ast.CallExpression:
		return e.evalCall(node)

	case *ast.MethodCallExpression:
		return e.evalMethodCall(node)

	case *ast.FunctionLiteral:
		return &object.Function{
			Parameters: node.Parameters,
			Body:       node.Body,
			ReturnSpec: node.ReturnSpec,
		}
	}

	return NIL
}

// evalBlock runs a statement list in the enclosing scope. Branch and
// loop bodies deliberately do not push a frame; scope lifetimes belong
// to function calls, foreach loops and catch bodies.
func (e *Evaluator) evalBlock(block *ast.BlockStatement) object.Object {
	var result object.Object = NIL

	for _, statement := range block.Statements {
		result = e.Eval(statement)

		if result != nil {
			if object.IsError(result) || object.IsSignal(result) {
				return result
			}
		}
	}

	return result
}

func (e *Evaluator) evalDeclaration(name *ast.Identifier, value ast.Expression, constant bool, pos ast.Pos) object.Object {
	var val object.Object = NIL
	if value != nil {
		val = e.Eval(value)
		if object.IsError(val) {
			return val
		}
	}
	if err := e.scopes.Declare(name.Value, val, constant); err != nil {
		return err.At(pos)
	}
	return NIL
}

func (e *Evaluator) evalAssign(node *ast.AssignStatement) object.Object {
	val := e.Eval(node.Value)
	if object.IsError(val) {
		return val
	}

	switch target := node.Target.(type) {
	case *ast.Identifier:
		if err := e.scopes.Assign(target.Value, val); err != nil {
			return err.At(node.Pos)
		}
		return NIL

	case *ast.IndexExpression:
		return e.evalIndexAssign(target, val, node.Pos)

	case *ast.PropertyExpression:
		container := e.Eval(target.Target)
		if object.IsError(container) {
			return container
		}
		m, ok := container.(*object.Map)
		if !ok {
			return object.NewError(object.ErrUnhandledRuntime,
				"cannot set property '%s' on %s", target.Property, container.Type()).At(node.Pos)
		}
		m.Put(&object.String{Value: target.Property}, val)
		return NIL

	default:
		return object.NewError(object.ErrUnhandledRuntime,
			"invalid assignment target").At(node.Pos)
	}
}

func (e *Evaluator) evalIndexAssign(target *ast.IndexExpression, val object.Object, pos ast.Pos) object.Object {
	container := e.Eval(target.Left)
	if object.IsError(container) {
		return container
	}
	index := e.Eval(target.Index)
	if object.IsError(index) {
		return index
	}

	switch container := container.(type) {
	case *object.List:
		num, ok := index.(*object.Number)
		if !ok {
			return object.NewError(object.ErrUnhandledRuntime,
				"list index must be a number, got %s", index.Type()).At(pos)
		}
		idx := int(num.Value)
		max := len(container.Elements) - 1
		if idx < 0 {
			idx = max + idx + 1
		}
		if idx < 0 || idx > max {
			return object.NewError(object.ErrUnhandledRuntime,
				"list index %s out of range", num.Inspect()).At(pos)
		}
		container.Elements[idx] = val
		return NIL

	case *object.Map:
		key, ok := index.(object.Hashable)
		if !ok {
			return object.NewError(object.ErrUnhandledRuntime,
				"unusable as map key: %s", index.Type()).At(pos)
		}
		container.Put(key, val)
		return NIL

	default:
		return object.NewError(object.ErrUnhandledRuntime,
			"index assignment not supported on %s", container.Type()).At(pos)
	}
}

// evalIf evaluates branch conditions in declaration order and runs the
// body of the first truthy one; branch bodies share the enclosing
// scope.
func (e *Evaluator) evalIf(node *ast.IfStatement) object.Object {
	for _, branch := range node.Branches {
		condition := e.Eval(branch.Condition)
		if object.IsError(condition) {
			return condition
		}
		if object.Truthy(condition) {
			return e.evalBlock(branch.Body)
		}
	}
	if node.Else != nil {
		return e.evalBlock(node.Else)
	}
	return NIL
}

func (e *Evaluator) evalWhile(node *ast.WhileStatement) object.Object {
	for {
		condition := e.Eval(node.Condition)
		if object.IsError(condition) {
			return condition
		}
		if !object.Truthy(condition) {
			return NIL
		}

		result := e.evalBlock(node.Body)
		switch result.(type) {
		case *object.BreakSignal:
			return NIL
		case *object.ContinueSignal:
			continue
		case *object.ReturnValue, *object.Error:
			return result
		}
	}
}

// evalForEach evaluates the iterable once, pushes exactly one scope
// for the entire loop and rebinds the loop variable each iteration.
// The scope is popped on every exit path.
func (e *Evaluator) evalForEach(node *ast.ForEachStatement) object.Object {
	iterable := e.Eval(node.Iterable)
	if object.IsError(iterable) {
		return iterable
	}

	elements, err := iterationElements(iterable)
	if err != nil {
		return err.At(node.Pos)
	}

	e.scopes.Push()
	defer e.scopes.Pop()

	for _, element := range elements {
		e.scopes.BindLocal(node.Variable.Value, element)

		result := e.evalBlock(node.Body)
		switch result.(type) {
		case *object.BreakSignal:
			return NIL
		case *object.ContinueSignal:
			continue
		case *object.ReturnValue, *object.Error:
			return result
		}
	}

	return NIL
}

// iterationElements materializes the loop sequence. A bare number is
// an implicit range from 0.
func iterationElements(iterable object.Object) ([]object.Object, *object.Error) {
	switch iterable := iterable.(type) {
	case *object.List:
		return iterable.Elements, nil

	case *object.Number:
		count := int(math.Trunc(iterable.Value))
		if count < 0 {
			count = 0
		}
		elements := make([]object.Object, count)
		for i := 0; i < count; i++ {
			elements[i] = &object.Number{Value: float64(i)}
		}
		return elements, nil

	case *object.String:
		elements := make([]object.Object, 0, len(iterable.Value))
		for _, r := range iterable.Value {
			elements = append(elements, &object.String{Value: string(r)})
		}
		return elements, nil

	case *object.Map:
		elements := make([]object.Object, 0, len(iterable.Pairs))
		for _, pair := range iterable.Pairs {
			elements = append(elements, pair.Key)
		}
		return elements, nil

	default:
		return nil, object.NewError(object.ErrUnhandledRuntime,
			"cannot iterate over %s", iterable.Type())
	}
}

// evalTry: run the try body; on a raised error push one scope, bind
// the error message into the catch variable, run the catch body, pop.
// The finally body runs in every case, and a raise inside finally
// replaces whatever was propagating.
func (e *Evaluator) evalTry(node *ast.TryStatement) object.Object {
	result := e.evalBlock(node.Try)

	if errObj, isError := result.(*object.Error); isError && node.Catch != nil {
		e.scopes.Push()
		if node.CatchVar != nil {
			e.scopes.BindLocal(node.CatchVar.Value, &object.String{Value: errObj.Message})
		}
		result = e.evalBlock(node.Catch)
		e.scopes.Pop()
	}

	if node.Finally != nil {
		finallyResult := e.evalBlock(node.Finally)
		if object.IsError(finallyResult) || object.IsSignal(finallyResult) {
			return finallyResult
		}
	}

	return result
}

func (e *Evaluator) evalPrint(node *ast.PrintStatement) object.Object {
	parts := make([]string, 0, len(node.Arguments))
	for _, arg := range node.Arguments {
		val := e.Eval(arg)
		if object.IsError(val) {
			return val
		}
		// The print path stringifies freely, unlike arithmetic `+`.
		parts = append(parts, val.Inspect())
	}
	if _, err := io.WriteString(e.out, strings.Join(parts, " ")+"\n"); err != nil {
		slog.Warn("print write failed", slog.Any("error", err))
	}
	return NIL
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func (e *Evaluator) evalExpressions(exps []ast.Expression) []object.Object {
	var result []object.Object

	for _, expr := range exps {
		evaluated := e.Eval(expr)
		if object.IsError(evaluated) {
			return []object.Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func (e *Evaluator) evalMapLiteral(node *ast.MapLiteral) object.Object {
	pairs := make(map[object.MapKey]object.MapPair)

	for _, entry := range node.Pairs {
		key := e.Eval(entry.Key)
		if object.IsError(key) {
			return key
		}

		mapKey, ok := key.(object.Hashable)
		if !ok {
			return object.NewError(object.ErrUnhandledRuntime,
				"unusable as map key: %s", key.Type()).At(node.Pos)
		}

		value := e.Eval(entry.Value)
		if object.IsError(value) {
			return value
		}

		pairs[mapKey.MapKey()] = object.MapPair{Key: key, Value: value}
	}

	return &object.Map{Pairs: pairs}
}

func (e *Evaluator) evalIndexExpression(left, index object.Object, pos ast.Pos) object.Object {
	switch left := left.(type) {
	case *object.List:
		num, ok := index.(*object.Number)
		if !ok {
			return object.NewError(object.ErrUnhandledRuntime,
				"list index must be a number, got %s", index.Type()).At(pos)
		}
		idx := int(num.Value)
		max := len(left.Elements) - 1
		if idx < 0 {
			idx = max + idx + 1
		}
		if idx < 0 || idx > max {
			return NIL
		}
		return left.Elements[idx]

	case *object.String:
		num, ok := index.(*object.Number)
		if !ok {
			return object.NewError(object.ErrUnhandledRuntime,
				"string index must be a number, got %s", index.Type()).At(pos)
		}
		runes := []rune(left.Value)
		idx := int(num.Value)
		max := len(runes) - 1
		if idx < 0 {
			idx = max + idx + 1
		}
		if idx < 0 || idx > max {
			return NIL
		}
		return &object.String{Value: string(runes[idx])}

	case *object.Map:
		key, ok := index.(object.Hashable)
		if !ok {
			return object.NewError(object.ErrUnhandledRuntime,
				"unusable as map key: %s", index.Type()).At(pos)
		}
		if val, found := left.Get(key); found {
			return val
		}
		return NIL

	default:
		return object.NewError(object.ErrUnhandledRuntime,
			"index operator not supported: %s", left.Type()).At(pos)
	}
}

func (e *Evaluator) evalPropertyExpression(target object.Object, property string, pos ast.Pos) object.Object {
	m, ok := target.(*object.Map)
	if !ok {
		return object.NewError(object.ErrUnhandledRuntime,
			"property access not supported on %s", target.Type()).At(pos)
	}
	if val, found := m.Get(&object.String{Value: property}); found {
		return val
	}
	return NIL
}
