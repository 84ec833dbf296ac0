package typespec

import (
	"testing"

	"sona/internal/object"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var sampleValues = []object.Object{
	&object.Number{Value: 3},
	&object.Number{Value: 2.5},
	&object.String{Value: "s"},
	object.TRUE,
	&object.List{Elements: []object.Object{&object.Number{Value: 1}}},
	(&object.Map{}).Put(&object.String{Value: "k"}, &object.Number{Value: 1}),
	object.NIL,
}

func genPrimitive() gopter.Gen {
	return gen.OneConstOf("int", "float", "str", "bool", "list", "dict", "none", "any")
}

func genValueIndex() gopter.Gen {
	return gen.IntRange(0, len(sampleValues)-1)
}

func TestValidationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("union order does not change the verdict", prop.ForAll(
		func(a, b string, idx int) bool {
			e := New()
			value := sampleValues[idx]
			ab, err := e.ValidateText(value, a+"|"+b)
			if err != nil {
				return false
			}
			ba, err := e.ValidateText(value, b+"|"+a)
			if err != nil {
				return false
			}
			return ab == ba
		},
		genPrimitive(), genPrimitive(), genValueIndex(),
	))

	properties.Property("cached and uncached validation agree", prop.ForAll(
		func(name string, idx int) bool {
			value := sampleValues[idx]

			fresh := New()
			first, err := fresh.ValidateText(value, name)
			if err != nil {
				return false
			}
			// Second run hits the scalar cache when applicable.
			second, err := fresh.ValidateText(value, name)
			if err != nil {
				return false
			}
			return first == second
		},
		genPrimitive(), genValueIndex(),
	))

	properties.Property("Optional widens every annotation to accept nil", prop.ForAll(
		func(name string) bool {
			e := New()
			ok, err := e.ValidateText(object.NIL, "Optional["+name+"]")
			return err == nil && ok
		},
		genPrimitive(),
	))

	properties.Property("parsing is stable across repeated calls", prop.ForAll(
		func(a, b string) bool {
			e := New()
			text := "List[" + a + "|" + b + "]"
			first, err := e.ParseSpec(text)
			if err != nil {
				return false
			}
			second, err := e.ParseSpec(text)
			if err != nil {
				return false
			}
			return first == second && first.Kind == KindGeneric
		},
		genPrimitive(), genPrimitive(),
	))

	properties.TestingRun(t)
}
