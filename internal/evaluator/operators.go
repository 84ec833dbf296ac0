package evaluator

import (
	"math"
	"sona/internal/ast"
	"sona/internal/object"
)

func (e *Evaluator) evalPrefixExpression(operator string, right object.Object, pos ast.Pos) object.Object {
	switch operator {
	case "!", "not":
		return nativeBoolToBooleanObject(!object.Truthy(right))
	case "-":
		num, ok := right.(*object.Number)
		if !ok {
			return object.NewError(object.ErrUnhandledRuntime,
				"unknown operator: -%s", right.Type()).At(pos)
		}
		return &object.Number{Value: -num.Value}
	default:
		return object.NewError(object.ErrUnhandledRuntime,
			"unknown operator: %s%s", operator, right.Type()).At(pos)
	}
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression) object.Object {
	if isLogicalOperator(node.Operator) {
		return e.evalLogicalExpression(node)
	}

	left := e.Eval(node.Left)
	if object.IsError(left) {
		return left
	}
	right := e.Eval(node.Right)
	if object.IsError(right) {
		return right
	}

	operator := node.Operator
	pos := node.Pos

	switch {
	case operator == "==":
		return nativeBoolToBooleanObject(object.Equals(left, right))
	case operator == "!=":
		return nativeBoolToBooleanObject(!object.Equals(left, right))
	}

	switch {
	case left.Type() == object.NUMBER_OBJ && right.Type() == object.NUMBER_OBJ:
		return evalNumberInfix(operator, left.(*object.Number), right.(*object.Number), pos)

	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return evalStringInfix(operator, left.(*object.String), right.(*object.String), pos)

	case operator == "+" && left.Type() == object.LIST_OBJ && right.Type() == object.LIST_OBJ:
		leftList := left.(*object.List)
		rightList := right.(*object.List)
		elements := make([]object.Object, 0, len(leftList.Elements)+len(rightList.Elements))
		elements = append(elements, leftList.Elements...)
		elements = append(elements, rightList.Elements...)
		return &object.List{Elements: elements}

	case operator == "+":
		// `+` never coerces: mixing str with another type is an error,
		// explicit stringification goes through str(...) or print.
		return object.NewError(object.ErrUnhandledRuntime,
			"cannot apply '+' to %s and %s; convert explicitly with str(...) or number(...)",
			object.TypeName(left), object.TypeName(right)).At(pos)

	default:
		return object.NewError(object.ErrUnhandledRuntime,
			"unknown operator: %s %s %s", left.Type(), operator, right.Type()).At(pos)
	}
}

func evalNumberInfix(operator string, left, right *object.Number, pos ast.Pos) object.Object {
	switch operator {
	case "+":
		return &object.Number{Value: left.Value + right.Value}
	case "-":
		return &object.Number{Value: left.Value - right.Value}
	case "*":
		return &object.Number{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return object.NewError(object.ErrUnhandledRuntime,
				"division by zero").At(pos)
		}
		return &object.Number{Value: left.Value / right.Value}
	case "%":
		if right.Value == 0 {
			return object.NewError(object.ErrUnhandledRuntime,
				"modulo by zero").At(pos)
		}
		return &object.Number{Value: math.Mod(left.Value, right.Value)}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	default:
		return object.NewError(object.ErrUnhandledRuntime,
			"unknown operator: %s %s %s", left.Type(), operator, right.Type()).At(pos)
	}
}

func evalStringInfix(operator string, left, right *object.String, pos ast.Pos) object.Object {
	switch operator {
	case "+":
		return &object.String{Value: left.Value + right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	default:
		return object.NewError(object.ErrUnhandledRuntime,
			"unknown operator: %s %s %s", left.Type(), operator, right.Type()).At(pos)
	}
}

func isLogicalOperator(operator string) bool {
	switch operator {
	case "&&", "||", "and", "or":
		return true
	}
	return false
}

// evalLogicalExpression short-circuits: the right operand is not
// evaluated when the left already decides the outcome. The result is
// always a boolean, not the deciding operand.
func (e *Evaluator) evalLogicalExpression(node *ast.InfixExpression) object.Object {
	left := e.Eval(node.Left)
	if object.IsError(left) {
		return left
	}

	leftTruthy := object.Truthy(left)
	switch node.Operator {
	case "&&", "and":
		if !leftTruthy {
			return FALSE
		}
	case "||", "or":
		if leftTruthy {
			return TRUE
		}
	}

	right := e.Eval(node.Right)
	if object.IsError(right) {
		return right
	}
	return nativeBoolToBooleanObject(object.Truthy(right))
}
