package typespec

import (
	"fmt"
	"log/slog"
	"sona/internal/object"
	"strings"
)

// Diagnostic is the structured record built for every contract
// violation. The CLI/REPL layer renders it and decides exit status.
type Diagnostic struct {
	Code       string
	Function   string
	Label      string
	Declared   string
	Observed   string
	Preview    string
	Suggestion string
}

func (d Diagnostic) String() string {
	var out strings.Builder
	fmt.Fprintf(&out, "%s: %s of %s expected %s, got %s (%s)",
		d.Code, d.Label, d.Function, d.Declared, d.Observed, d.Preview)
	if d.Suggestion != "" {
		out.WriteString("; " + d.Suggestion)
	}
	return out.String()
}

const previewLimit = 40

func preview(value object.Object) string {
	text := value.Inspect()
	if len(text) > previewLimit {
		return text[:previewLimit] + "..."
	}
	return text
}

// diagnose builds the diagnostic for a failed check, picking the
// most specific code it can: element mismatches inside a matching
// container are reported with the offending index or key.
func (e *Engine) diagnose(code, fnName, label string, value object.Object, spec *Spec) Diagnostic {
	observed := object.TypeName(value)
	detail := e.elementMismatch(value, spec)
	if detail != "" {
		code = object.ErrCollectionElementMismatch
	}

	d := Diagnostic{
		Code:       code,
		Function:   fnName,
		Label:      label,
		Declared:   spec.Text,
		Observed:   observed,
		Preview:    preview(value),
		Suggestion: suggest(spec, observed, detail),
	}
	return d
}

// elementMismatch reports the first offending element of a container
// whose base kind matched but whose contents did not, or "" when the
// mismatch is not element-wise.
func (e *Engine) elementMismatch(value object.Object, spec *Spec) string {
	if spec.Kind != KindGeneric {
		return ""
	}
	switch spec.Name {
	case "List", "Set", "FrozenSet", "Sequence", "Iterable", "Tuple":
		list, ok := value.(*object.List)
		if !ok {
			return ""
		}
		for i, elem := range list.Elements {
			var elemSpec *Spec
			if spec.Name == "Tuple" {
				if i >= len(spec.Params) {
					return fmt.Sprintf("unexpected element at index %d", i)
				}
				elemSpec = spec.Params[i]
			} else {
				if len(spec.Params) != 1 {
					return ""
				}
				elemSpec = spec.Params[0]
			}
			if !e.validate(elem, elemSpec) {
				return fmt.Sprintf("element at index %d is %s, expected %s",
					i, object.TypeName(elem), elemSpec.Text)
			}
		}
	case "Dict", "Mapping":
		m, ok := value.(*object.Map)
		if !ok || len(spec.Params) != 2 {
			return ""
		}
		for _, pair := range m.Pairs {
			if !e.validate(pair.Key, spec.Params[0]) {
				return fmt.Sprintf("key %s is %s, expected %s",
					preview(pair.Key), object.TypeName(pair.Key), spec.Params[0].Text)
			}
			if !e.validate(pair.Value, spec.Params[1]) {
				return fmt.Sprintf("value at key %s is %s, expected %s",
					preview(pair.Key), object.TypeName(pair.Value), spec.Params[1].Text)
			}
		}
	}
	return ""
}

// suggest picks a fix hint by pattern-matching the expected/actual
// pair.
func suggest(spec *Spec, observed, detail string) string {
	if detail != "" {
		return detail
	}

	expected := spec.Text
	switch {
	case strings.HasPrefix(expected, "int") && observed == "str":
		return "convert the argument with number(...) before the call"
	case strings.HasPrefix(expected, "int") && observed == "float":
		return "round or truncate the value; the annotation requires a whole number"
	case (strings.HasPrefix(expected, "str")) && observed != "str":
		return "wrap the value with str(...) for explicit stringification"
	case observed == "none" && !strings.HasPrefix(expected, "Optional"):
		return "declare the annotation Optional[" + expected + "] or pass a non-nil value"
	case spec.Kind == KindCallable:
		return "pass a function whose signature matches " + expected
	case strings.HasPrefix(expected, "bool"):
		return "compare explicitly; implicit truthiness is not a bool"
	default:
		return "expected " + expected + ", adjust the value or widen the annotation with a union"
	}
}

// emit is the single logging gate for diagnostics. WARN-mode records
// go out at warn level, aborting violations at error level.
func (e *Engine) emit(d Diagnostic, aborting bool) {
	attrs := []any{
		slog.String("code", d.Code),
		slog.String("function", d.Function),
		slog.String("label", d.Label),
		slog.String("declared", d.Declared),
		slog.String("observed", d.Observed),
		slog.String("preview", d.Preview),
		slog.String("suggestion", d.Suggestion),
	}
	if aborting {
		e.logger.Error("type contract violation", attrs...)
		return
	}
	e.logger.Warn("type contract violation", attrs...)
}

// Warnings is the tally of diagnostics recorded without aborting.
func (e *Engine) Warnings() []Diagnostic {
	return e.warnings
}
