package builtins

import (
	"strings"

	"sona/internal/object"
)

func init() {
	Register("upper", stringUnary("upper", strings.ToUpper))
	Register("lower", stringUnary("lower", strings.ToLower))
	Register("trim", stringUnary("trim", strings.TrimSpace))
	Register("split", builtinSplit)
	Register("join", builtinJoin)
	Register("replace", builtinReplace)
	Register("startsWith", stringPredicate("startsWith", strings.HasPrefix))
	Register("endsWith", stringPredicate("endsWith", strings.HasSuffix))
}

func stringUnary(name string, fn func(string) string) object.BuiltinFunction {
	return func(args ...object.Object) object.Object {
		if len(args) != 1 {
			return arityError(name, 1, len(args))
		}
		s, ok := args[0].(*object.String)
		if !ok {
			return typeError(name, "a string", args[0])
		}
		return &object.String{Value: fn(s.Value)}
	}
}

func stringPredicate(name string, fn func(string, string) bool) object.BuiltinFunction {
	return func(args ...object.Object) object.Object {
		if len(args) != 2 {
			return arityError(name, 2, len(args))
		}
		s, ok := args[0].(*object.String)
		if !ok {
			return typeError(name, "a string", args[0])
		}
		sub, ok := args[1].(*object.String)
		if !ok {
			return typeError(name, "a string", args[1])
		}
		if fn(s.Value, sub.Value) {
			return object.TRUE
		}
		return object.FALSE
	}
}

func builtinSplit(args ...object.Object) object.Object {
	if len(args) != 2 {
		return arityError("split", 2, len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return typeError("split", "a string", args[0])
	}
	sep, ok := args[1].(*object.String)
	if !ok {
		return typeError("split", "a string separator", args[1])
	}

	parts := strings.Split(s.Value, sep.Value)
	elements := make([]object.Object, 0, len(parts))
	for _, part := range parts {
		elements = append(elements, &object.String{Value: part})
	}
	return &object.List{Elements: elements}
}

func builtinJoin(args ...object.Object) object.Object {
	if len(args) != 2 {
		return arityError("join", 2, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("join", "a list", args[0])
	}
	sep, ok := args[1].(*object.String)
	if !ok {
		return typeError("join", "a string separator", args[1])
	}

	parts := make([]string, 0, len(list.Elements))
	for _, elem := range list.Elements {
		parts = append(parts, elem.Inspect())
	}
	return &object.String{Value: strings.Join(parts, sep.Value)}
}

func builtinReplace(args ...object.Object) object.Object {
	if len(args) != 3 {
		return arityError("replace", 3, len(args))
	}
	strs := make([]string, 0, 3)
	for _, arg := range args {
		s, ok := arg.(*object.String)
		if !ok {
			return typeError("replace", "strings", arg)
		}
		strs = append(strs, s.Value)
	}
	return &object.String{Value: strings.ReplaceAll(strs[0], strs[1], strs[2])}
}
