package builtins

import (
	"math"
	"strconv"
	"strings"

	"sona/internal/object"
)

func init() {
	Register("len", builtinLen)
	Register("type", builtinType)
	Register("str", builtinStr)
	Register("number", builtinNumber)
	Register("range", builtinRange)
	Register("abs", builtinAbs)
	Register("floor", numberUnary("floor", math.Floor))
	Register("ceil", numberUnary("ceil", math.Ceil))
	Register("round", numberUnary("round", math.Round))
	Register("sqrt", builtinSqrt)
	Register("min", builtinMin)
	Register("max", builtinMax)
}

func builtinLen(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("len", 1, len(args))
	}
	switch arg := args[0].(type) {
	case *object.String:
		return &object.Number{Value: float64(len([]rune(arg.Value)))}
	case *object.List:
		return &object.Number{Value: float64(len(arg.Elements))}
	case *object.Map:
		return &object.Number{Value: float64(len(arg.Pairs))}
	default:
		return typeError("len", "a string, list or dict", args[0])
	}
}

func builtinType(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("type", 1, len(args))
	}
	return &object.String{Value: object.TypeName(args[0])}
}

func builtinStr(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("str", 1, len(args))
	}
	return &object.String{Value: args[0].Inspect()}
}

// number parses strings and passes numbers through; booleans map to 0
// and 1.
func builtinNumber(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("number", 1, len(args))
	}
	switch arg := args[0].(type) {
	case *object.Number:
		return arg
	case *object.Boolean:
		if arg.Value {
			return &object.Number{Value: 1}
		}
		return &object.Number{Value: 0}
	case *object.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64)
		if err != nil {
			return object.NewError(object.ErrUnhandledRuntime,
				"number cannot parse %q", arg.Value)
		}
		return &object.Number{Value: parsed}
	default:
		return typeError("number", "a number, string or bool", args[0])
	}
}

// range builds [start, stop) with an optional step; one argument means
// [0, stop).
func builtinRange(args ...object.Object) object.Object {
	if len(args) < 1 || len(args) > 3 {
		return object.NewError(object.ErrArityMismatch,
			"range expects 1 to 3 arguments, got %d", len(args))
	}

	bounds := make([]float64, 0, 3)
	for _, arg := range args {
		num, ok := arg.(*object.Number)
		if !ok {
			return typeError("range", "numbers", arg)
		}
		bounds = append(bounds, num.Value)
	}

	start, stop, step := 0.0, bounds[0], 1.0
	if len(bounds) >= 2 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) == 3 {
		step = bounds[2]
	}
	if step == 0 {
		return object.NewError(object.ErrUnhandledRuntime, "range step cannot be zero")
	}

	var elements []object.Object
	if step > 0 {
		for v := start; v < stop; v += step {
			elements = append(elements, &object.Number{Value: v})
		}
	} else {
		for v := start; v > stop; v += step {
			elements = append(elements, &object.Number{Value: v})
		}
	}
	return &object.List{Elements: elements}
}

func builtinAbs(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("abs", 1, len(args))
	}
	num, ok := args[0].(*object.Number)
	if !ok {
		return typeError("abs", "a number", args[0])
	}
	return &object.Number{Value: math.Abs(num.Value)}
}

func builtinSqrt(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("sqrt", 1, len(args))
	}
	num, ok := args[0].(*object.Number)
	if !ok {
		return typeError("sqrt", "a number", args[0])
	}
	if num.Value < 0 {
		return object.NewError(object.ErrUnhandledRuntime,
			"sqrt of negative number %s", num.Inspect())
	}
	return &object.Number{Value: math.Sqrt(num.Value)}
}

func numberUnary(name string, fn func(float64) float64) object.BuiltinFunction {
	return func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return arityError(name, 1, len(args))
		}
		num, ok := args[0].(*object.Number)
		if !ok {
			return typeError(name, "a number", args[0])
		}
		return &object.Number{Value: fn(num.Value)}
	}
}

func builtinMin(args ...object.Object) object.Object { return extremum("min", args, false) }
func builtinMax(args ...object.Object) object.Object { return extremum("max", args, true) }

func extremum(name string, args []object.Object, wantMax bool) object.Object {
	values := args
	if len(args) == 1 {
		list, ok := args[0].(*object.List)
		if !ok {
			return typeError(name, "numbers or a list of numbers", args[0])
		}
		values = list.Elements
	}
	if len(values) == 0 {
		return object.NewError(object.ErrUnhandledRuntime, "%s of empty sequence", name)
	}

	best, ok := values[0].(*object.Number)
	if !ok {
		return typeError(name, "numbers", values[0])
	}
	for _, v := range values[1:] {
		num, ok := v.(*object.Number)
		if !ok {
			return typeError(name, "numbers", v)
		}
		if (wantMax && num.Value > best.Value) || (!wantMax && num.Value < best.Value) {
			best = num
		}
	}
	return best
}
