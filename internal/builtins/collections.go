package builtins

import (
	"strings"

	"sona/internal/object"
)

func init() {
	Register("append", builtinAppend)
	Register("first", builtinFirst)
	Register("last", builtinLast)
	Register("rest", builtinRest)
	Register("keys", builtinKeys)
	Register("values", builtinValues)
	Register("contains", builtinContains)
	Register("remove", builtinRemove)
	Register("jsonParse", builtinJSONParse)
	Register("jsonStringify", builtinJSONStringify)
}

// append returns a fresh list; the receiver is not mutated.
func builtinAppend(args ...object.Object) object.Object {
	if len(args) < 2 {
		return object.NewError(object.ErrArityMismatch,
			"append expects at least 2 arguments, got %d", len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("append", "a list", args[0])
	}

	elements := make([]object.Object, 0, len(list.Elements)+len(args)-1)
	elements = append(elements, list.Elements...)
	elements = append(elements, args[1:]...)
	return &object.List{Elements: elements}
}

func builtinFirst(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("first", 1, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("first", "a list", args[0])
	}
	if len(list.Elements) == 0 {
		return object.NIL
	}
	return list.Elements[0]
}

func builtinLast(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("last", 1, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("last", "a list", args[0])
	}
	if len(list.Elements) == 0 {
		return object.NIL
	}
	return list.Elements[len(list.Elements)-1]
}

func builtinRest(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("rest", 1, len(args))
	}
	list, ok := args[0].(*object.List)
	if !ok {
		return typeError("rest", "a list", args[0])
	}
	if len(list.Elements) == 0 {
		return object.NIL
	}
	rest := make([]object.Object, len(list.Elements)-1)
	copy(rest, list.Elements[1:])
	return &object.List{Elements: rest}
}

func builtinKeys(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("keys", 1, len(args))
	}
	m, ok := args[0].(*object.Map)
	if !ok {
		return typeError("keys", "a dict", args[0])
	}
	keys := make([]object.Object, 0, len(m.Pairs))
	for _, pair := range m.Pairs {
		keys = append(keys, pair.Key)
	}
	return &object.List{Elements: keys}
}

func builtinValues(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("values", 1, len(args))
	}
	m, ok := args[0].(*object.Map)
	if !ok {
		return typeError("values", "a dict", args[0])
	}
	values := make([]object.Object, 0, len(m.Pairs))
	for _, pair := range m.Pairs {
		values = append(values, pair.Value)
	}
	return &object.List{Elements: values}
}

func builtinContains(args ...object.Object) object.Object {
	if len(args) != 2 {
		return arityError("contains", 2, len(args))
	}
	switch container := args[0].(type) {
	case *object.String:
		sub, ok := args[1].(*object.String)
		if !ok {
			return typeError("contains", "a string needle", args[1])
		}
		if strings.Contains(container.Value, sub.Value) {
			return object.TRUE
		}
		return object.FALSE
	case *object.List:
		for _, elem := range container.Elements {
			if object.Equals(elem, args[1]) {
				return object.TRUE
			}
		}
		return object.FALSE
	case *object.Map:
		key, ok := args[1].(object.Hashable)
		if !ok {
			return typeError("contains", "a hashable key", args[1])
		}
		if _, found := container.Get(key); found {
			return object.TRUE
		}
		return object.FALSE
	default:
		return typeError("contains", "a string, list or dict", args[0])
	}
}

func builtinRemove(args ...object.Object) object.Object {
	if len(args) != 2 {
		return arityError("remove", 2, len(args))
	}
	m, ok := args[0].(*object.Map)
	if !ok {
		return typeError("remove", "a dict", args[0])
	}
	key, ok := args[1].(object.Hashable)
	if !ok {
		return typeError("remove", "a hashable key", args[1])
	}
	delete(m.Pairs, key.MapKey())
	return m
}

func builtinJSONParse(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("jsonParse", 1, len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return typeError("jsonParse", "a string", args[0])
	}
	parsed, err := object.FromJSON([]byte(s.Value))
	if err != nil {
		return object.NewError(object.ErrUnhandledRuntime, "jsonParse: %v", err)
	}
	return parsed
}

func builtinJSONStringify(args ...object.Object) object.Object {
	if len(args) != 1 {
		return arityError("jsonStringify", 1, len(args))
	}
	encoded, err := object.ToJSON(args[0])
	if err != nil {
		return object.NewError(object.ErrUnhandledRuntime, "jsonStringify: %v", err)
	}
	return &object.String{Value: string(encoded)}
}
