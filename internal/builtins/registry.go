// Package builtins holds the host-provided standard functions seeded
// into the global scope before a program runs.
package builtins

import (
	"sona/internal/object"
)

var registry = map[string]*object.Builtin{}

// Register installs a builtin under the given name. Embedding hosts
// call this before constructing the evaluator; later registrations
// replace earlier ones.
func Register(name string, fn object.BuiltinFunction) {
	registry[name] = &object.Builtin{Name: name, Fn: fn}
}

// All returns a copy of the registry for seeding a global scope.
func All() map[string]*object.Builtin {
	seeded := make(map[string]*object.Builtin, len(registry))
	for name, builtin := range registry {
		seeded[name] = builtin
	}
	return seeded
}

func arityError(name string, want, got int) *object.Error {
	return object.NewError(object.ErrArityMismatch,
		"%s expects %d argument(s), got %d", name, want, got)
}

func typeError(name, want string, got object.Object) *object.Error {
	return object.NewError(object.ErrUnhandledRuntime,
		"%s expects %s, got %s", name, want, object.TypeName(got))
}
