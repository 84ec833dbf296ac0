package typespec

import (
	"sona/internal/object"
	"strings"
)

// Mode is the enforcement policy for contract violations.
type Mode int

const (
	// ModeOff skips validation entirely, zero overhead.
	ModeOff Mode = iota
	// ModeWarn records the diagnostic and lets execution continue with
	// the mismatched value unchanged.
	ModeWarn
	// ModeOn records the diagnostic and raises an aborting failure.
	ModeOn
)

func (m Mode) String() string {
	switch m {
	case ModeWarn:
		return "warn"
	case ModeOn:
		return "on"
	default:
		return "off"
	}
}

// ParseMode reads a mode name from configuration; unknown names fall
// back to off.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "strict":
		return ModeOn
	case "warn", "warning":
		return ModeWarn
	default:
		return ModeOff
	}
}

// CallFunc invokes a runtime callable with positional arguments. The
// evaluator installs one so EnforceCallable wrappers can call back
// into the interpreter.
type CallFunc func(fn object.Object, args []object.Object) object.Object

func (e *Engine) SetCaller(caller CallFunc) { e.caller = caller }

// CheckParameter is the gate every type-annotated argument passes
// through before the callee body runs. It returns the value to bind,
// possibly wrapped for callable return-contract enforcement, and an
// aborting error when the mode demands one.
func (e *Engine) CheckParameter(fnName, label string, value object.Object, specText string) (object.Object, *object.Error) {
	if e.mode == ModeOff || specText == "" {
		return value, nil
	}

	spec, err := e.ParseSpec(specText)
	if err != nil {
		return value, object.NewError(object.ErrParameterTypeMismatch,
			"invalid annotation on %s of %s: %v", label, fnName, err)
	}

	if !e.Validate(value, spec) {
		code := object.ErrParameterTypeMismatch
		if spec.Kind == KindCallable {
			if !isInvocable(value) {
				code = object.ErrCallableNotCallable
			} else {
				code = object.ErrCallableArityMismatch
			}
		}
		d := e.diagnose(code, fnName, label, value, spec)
		return value, e.apply(d)
	}

	return e.EnforceCallable(value, spec, fnName, label), nil
}

// CheckReturnValue is the gate applied to the callee's result after
// the body ran.
func (e *Engine) CheckReturnValue(fnName string, value object.Object, specText string) *object.Error {
	if e.mode == ModeOff || specText == "" {
		return nil
	}

	spec, err := e.ParseSpec(specText)
	if err != nil {
		return object.NewError(object.ErrReturnTypeMismatch,
			"invalid return annotation of %s: %v", fnName, err)
	}

	if !e.Validate(value, spec) {
		d := e.diagnose(object.ErrReturnTypeMismatch, fnName, "return value", value, spec)
		return e.apply(d)
	}
	return nil
}

// apply routes a diagnostic through the active mode: WARN records it
// and continues, ON turns it into an aborting error.
func (e *Engine) apply(d Diagnostic) *object.Error {
	if e.mode == ModeOn {
		e.emit(d, true)
		return object.NewError(d.Code, "%s", d.String())
	}
	e.warnings = append(e.warnings, d)
	e.emit(d, false)
	return nil
}

// EnforceCallable wraps a Callable-typed value whose declared return
// spec is not "any" so that every invocation validates the actual
// return value. This is the only place return-type safety for
// higher-order values is enforced, and it is necessarily dynamic.
func (e *Engine) EnforceCallable(value object.Object, spec *Spec, fnName, label string) object.Object {
	if spec == nil || spec.Kind != KindCallable || spec.Return == nil {
		return value
	}
	if !isInvocable(value) || e.caller == nil {
		return value
	}

	inner := value
	returnSpec := spec.Return

	return &object.Builtin{
		Name: "checked:" + label,
		Fn: func(args ...object.Object) object.Object {
			result := e.caller(inner, args)
			if object.IsError(result) || object.IsSignal(result) {
				return result
			}
			if !e.Validate(result, returnSpec) {
				d := e.diagnose(object.ErrCallableReturnMismatch, fnName, label, result, returnSpec)
				d.Declared = spec.Text
				if abort := e.apply(d); abort != nil {
					return abort
				}
			}
			return result
		},
	}
}
