package evaluator

import (
	"sona/internal/ast"
	"sona/internal/object"
)

func (e *Evaluator) evalCall(node *ast.CallExpression) object.Object {
	callee := e.Eval(node.Function)
	if object.IsError(callee) {
		return callee
	}

	args := e.evalExpressions(node.Arguments)
	if len(args) == 1 && object.IsError(args[0]) {
		return args[0]
	}

	name := calleeName(callee)
	if ident, ok := node.Function.(*ast.Identifier); ok {
		name = ident.Value
	}

	return e.applyFunction(name, callee, args, node.Pos)
}

// evalMethodCall resolves value.method(args). A map whose property
// holds a callable wins; otherwise the method name is looked up in the
// scope stack and the receiver is passed as the first argument.
func (e *Evaluator) evalMethodCall(node *ast.MethodCallExpression) object.Object {
	receiver := e.Eval(node.Target)
	if object.IsError(receiver) {
		return receiver
	}

	args := e.evalExpressions(node.Arguments)
	if len(args) == 1 && object.IsError(args[0]) {
		return args[0]
	}

	if m, ok := receiver.(*object.Map); ok {
		if member, found := m.Get(&object.String{Value: node.Method}); found {
			return e.applyFunction(node.Method, member, args, node.Pos)
		}
	}

	fn, err := e.scopes.Read(node.Method)
	if err != nil {
		return object.NewError(object.ErrNotCallable,
			"no method '%s' on %s", node.Method, receiver.Type()).At(node.Pos)
	}
	return e.applyFunction(node.Method, fn, append([]object.Object{receiver}, args...), node.Pos)
}

// applyFunction dispatches a call. For user functions it pushes exactly
// one scope, binds parameters, runs the body and pops the scope on
// every exit path. Type-annotated parameters and returns pass through
// the contract gates when an engine is attached.
func (e *Evaluator) applyFunction(name string, fn object.Object, args []object.Object, pos ast.Pos) object.Object {
	switch fn := fn.(type) {
	case *object.Builtin:
		result := fn.Fn(args...)
		if result == nil {
			return NIL
		}
		if err, ok := result.(*object.Error); ok {
			return err.At(pos)
		}
		return result

	case *object.Function:
		return e.callFunction(name, fn, args, pos)

	default:
		return object.NewError(object.ErrNotCallable,
			"%s is not callable (got %s)", name, fn.Type()).At(pos)
	}
}

func (e *Evaluator) callFunction(name string, fn *object.Function, args []object.Object, pos ast.Pos) object.Object {
	if name == "" {
		name = calleeName(fn)
	}

	required := fn.RequiredParams()
	positional := fn.PositionalParams()

	if len(args) < required {
		return object.NewError(object.ErrArityMismatch,
			"%s expects at least %d argument(s), got %d", name, required, len(args)).At(pos)
	}
	if !fn.IsVariadic() && len(args) > positional {
		return object.NewError(object.ErrArityMismatch,
			"%s expects at most %d argument(s), got %d", name, positional, len(args)).At(pos)
	}

	e.scopes.Push()
	defer e.scopes.Pop()

	if err := e.bindParameters(name, fn, args, pos); err != nil {
		return err
	}

	result := e.evalFunctionBody(fn.Body)
	if object.IsError(result) {
		return result
	}

	if e.types != nil && fn.ReturnSpec != "" {
		if err := e.types.CheckReturnValue(name, result, fn.ReturnSpec); err != nil {
			return err.At(pos)
		}
	}
	return result
}

// bindParameters fills the freshly pushed call scope: positional
// arguments first, then defaults (evaluated inside the new scope, so
// earlier parameters are visible), then the variadic remainder.
func (e *Evaluator) bindParameters(fnName string, fn *object.Function, args []object.Object, pos ast.Pos) *object.Error {
	argIdx := 0
	for _, param := range fn.Parameters {
		var val object.Object

		switch {
		case param.IsVariadic:
			rest := make([]object.Object, 0, len(args)-argIdx)
			rest = append(rest, args[argIdx:]...)
			argIdx = len(args)
			val = &object.List{Elements: rest}

		case argIdx < len(args):
			val = args[argIdx]
			argIdx++

		case param.Default != nil:
			evaluated := e.Eval(param.Default)
			if err, ok := evaluated.(*object.Error); ok {
				return err.At(pos)
			}
			val = evaluated

		default:
			val = NIL
		}

		if e.types != nil && param.TypeSpec != "" && !param.IsVariadic {
			checked, err := e.types.CheckParameter(fnName, "parameter '"+param.Name.Value+"'", val, param.TypeSpec)
			if err != nil {
				return err.At(pos)
			}
			val = checked
		}

		e.scopes.BindLocal(param.Name.Value, val)
	}
	return nil
}

// evalFunctionBody runs statements until a Return signal, which it
// unwraps. Break or continue reaching the function boundary is an
// error; a body that falls off the end yields nil.
func (e *Evaluator) evalFunctionBody(body *ast.BlockStatement) object.Object {
	for _, statement := range body.Statements {
		result := e.Eval(statement)

		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.BreakSignal:
			return object.NewError(object.ErrBreakOutsideLoop,
				"break outside loop")
		case *object.ContinueSignal:
			return object.NewError(object.ErrContinueOutside,
				"continue outside loop")
		case *object.Error:
			return result
		}
	}
	return NIL
}

func calleeName(fn object.Object) string {
	switch fn := fn.(type) {
	case *object.Function:
		if fn.Name != "" {
			return fn.Name
		}
		return "<anonymous>"
	case *object.Builtin:
		return fn.Name
	}
	return "<value>"
}
