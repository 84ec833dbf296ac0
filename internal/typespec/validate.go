package typespec

import (
	"fmt"
	"sona/internal/object"
)

// Validate checks a runtime value against a parsed spec. Union
// alternatives short-circuit on the first match; generic specs confirm
// the container kind before validating element-wise.
func (e *Engine) Validate(value object.Object, spec *Spec) bool {
	if spec == nil {
		return true
	}

	cacheKey := ""
	if isScalar(value) {
		// Only scalar/immutable values are cached: distinct mutable
		// containers of the same runtime type must not share results.
		cacheKey = object.TypeName(value) + "\x00" + spec.Text
		if cached, ok := e.validationCache[cacheKey]; ok {
			return cached
		}
	}

	result := e.validate(value, spec)

	if cacheKey != "" {
		if len(e.validationCache) < validationCacheCap {
			e.validationCache[cacheKey] = result
		}
	}
	return result
}

// ValidateText parses the annotation (through the parse cache) and
// validates against it.
func (e *Engine) ValidateText(value object.Object, text string) (bool, error) {
	spec, err := e.ParseSpec(text)
	if err != nil {
		return false, err
	}
	return e.Validate(value, spec), nil
}

func (e *Engine) validate(value object.Object, spec *Spec) bool {
	switch spec.Kind {
	case KindUnion:
		for _, alt := range spec.Params {
			if e.validate(value, alt) {
				return true
			}
		}
		return false

	case KindGeneric:
		return e.validateGeneric(value, spec)

	case KindCallable:
		return e.validateCallable(value, spec)

	default:
		return validatePrimitive(value, spec.Name)
	}
}

func validatePrimitive(value object.Object, name string) bool {
	switch name {
	case "any":
		return true
	case "int":
		num, ok := value.(*object.Number)
		return ok && num.IsIntegral()
	case "float", "number":
		_, ok := value.(*object.Number)
		return ok
	case "str", "string":
		_, ok := value.(*object.String)
		return ok
	case "bool":
		_, ok := value.(*object.Boolean)
		return ok
	case "list":
		_, ok := value.(*object.List)
		return ok
	case "dict":
		_, ok := value.(*object.Map)
		return ok
	case "none", "None", "nil":
		_, ok := value.(*object.Nil)
		return ok
	case "function":
		return isInvocable(value)
	default:
		// Unknown names never validate; WARN mode surfaces them as
		// ordinary mismatches rather than hard failures.
		return false
	}
}

func (e *Engine) validateGeneric(value object.Object, spec *Spec) bool {
	switch spec.Name {
	case "Optional":
		if _, ok := value.(*object.Nil); ok {
			return true
		}
		if len(spec.Params) != 1 {
			return false
		}
		return e.validate(value, spec.Params[0])

	case "List", "Set", "FrozenSet":
		// The runtime has no native set value; set-like annotations
		// accept the list container kind and validate element-wise.
		list, ok := value.(*object.List)
		if !ok || len(spec.Params) != 1 {
			return ok
		}
		for _, elem := range list.Elements {
			if !e.validate(elem, spec.Params[0]) {
				return false
			}
		}
		return true

	case "Tuple":
		list, ok := value.(*object.List)
		if !ok {
			return false
		}
		if len(list.Elements) != len(spec.Params) {
			return false
		}
		for i, elem := range list.Elements {
			if !e.validate(elem, spec.Params[i]) {
				return false
			}
		}
		return true

	case "Dict", "Mapping":
		m, ok := value.(*object.Map)
		if !ok {
			return false
		}
		if len(spec.Params) != 2 {
			// Abstract category with the wrong parameter arity defers
			// to the base-kind check alone.
			return spec.Name == "Mapping"
		}
		for _, pair := range m.Pairs {
			if !e.validate(pair.Key, spec.Params[0]) {
				return false
			}
			if !e.validate(pair.Value, spec.Params[1]) {
				return false
			}
		}
		return true

	case "Sequence":
		switch v := value.(type) {
		case *object.List:
			if len(spec.Params) != 1 {
				return true
			}
			for _, elem := range v.Elements {
				if !e.validate(elem, spec.Params[0]) {
					return false
				}
			}
			return true
		case *object.String:
			return true
		}
		return false

	case "Iterable":
		switch v := value.(type) {
		case *object.List:
			if len(spec.Params) != 1 {
				return true
			}
			for _, elem := range v.Elements {
				if !e.validate(elem, spec.Params[0]) {
					return false
				}
			}
			return true
		case *object.String, *object.Map:
			_ = v
			return true
		}
		return false

	default:
		return false
	}
}

// validateCallable requires the value to be invocable and, when an
// explicit arity clause is present, inspects the callable's positional
// parameter count. Argument element types cannot be checked without
// invoking the callable and are not attempted; return types are
// enforced dynamically by EnforceCallable.
func (e *Engine) validateCallable(value object.Object, spec *Spec) bool {
	if !isInvocable(value) {
		return false
	}
	if spec.AnyArity {
		return true
	}
	return e.checkSignature(value, spec)
}

func (e *Engine) checkSignature(value object.Object, spec *Spec) bool {
	key := fmt.Sprintf("%p\x00%s", value, spec.ArgClause)
	if cached, ok := e.signatureCache[key]; ok {
		return cached
	}

	result := signatureMatches(value, len(spec.ArgSpecs))

	if len(e.signatureCache) < signatureCacheCap {
		e.signatureCache[key] = result
	}
	return result
}

func signatureMatches(value object.Object, declaredArity int) bool {
	switch fn := value.(type) {
	case *object.Function:
		positional := fn.PositionalParams()
		if positional == declaredArity {
			return true
		}
		// A trailing variadic capture absorbs surplus declared
		// positions.
		return fn.IsVariadic() && declaredArity >= positional
	case *object.Builtin:
		// Host callables take variadic argument lists; every declared
		// arity is within their allowance.
		return true
	}
	return false
}

func isInvocable(value object.Object) bool {
	switch value.(type) {
	case *object.Function, *object.Builtin:
		return true
	}
	return false
}

func isScalar(value object.Object) bool {
	switch value.(type) {
	case *object.Number, *object.String, *object.Boolean, *object.Nil:
		return true
	}
	return false
}
