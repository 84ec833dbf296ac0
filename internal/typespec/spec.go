package typespec

import (
	"fmt"
	"log/slog"
	"strings"
)

// Kind discriminates the parsed spec shapes.
type Kind int

const (
	KindPrimitive Kind = iota
	KindUnion
	KindGeneric
	KindCallable
)

// Spec is the parsed, structured form of one type-annotation string.
// Specs are built once per distinct annotation text and cached.
type Spec struct {
	Text string
	Kind Kind

	// Primitive or generic base name.
	Name string

	// Union alternatives or generic parameters, in declaration order.
	Params []*Spec

	// Callable contract. ArgSpecs is nil when AnyArity is set; Return
	// is nil when the return clause is "any" or absent.
	ArgSpecs  []*Spec
	AnyArity  bool
	Return    *Spec
	ArgClause string
}

// Cache capacities. The caches stop accepting new entries once full;
// entries past the cap are silently not cached. This is a simplicity
// trade-off, not an LRU policy.
const (
	parseCacheCap      = 256
	validationCacheCap = 512
	signatureCacheCap  = 256
)

// Engine owns the alias table, the three caches, the enforcement mode
// and the diagnostics tally. Tests instantiate isolated engines; there
// is no package-global state.
type Engine struct {
	mode    Mode
	aliases map[string]string

	parseCache      map[string]*Spec
	validationCache map[string]bool
	signatureCache  map[string]bool

	caller   CallFunc
	warnings []Diagnostic
	logger   *slog.Logger
}

func New() *Engine {
	return &Engine{
		mode:            ModeOff,
		aliases:         map[string]string{},
		parseCache:      map[string]*Spec{},
		validationCache: map[string]bool{},
		signatureCache:  map[string]bool{},
		logger:          slog.Default(),
	}
}

func (e *Engine) SetMode(m Mode) { e.mode = m }
func (e *Engine) Mode() Mode     { return e.mode }

func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// RegisterAlias maps a name to another annotation text, including
// generic forms. Resolution is recursive, so aliases can reference
// aliases. Registration invalidates the spec caches: cached shapes may
// have been parsed under the old table.
func (e *Engine) RegisterAlias(name, target string) {
	e.aliases[name] = target
	e.parseCache = map[string]*Spec{}
	e.validationCache = map[string]bool{}
}

// resolveAlias chases the alias table. The visited set guards against
// alias cycles.
func (e *Engine) resolveAlias(name string) string {
	visited := map[string]bool{}
	for {
		target, ok := e.aliases[name]
		if !ok || visited[name] {
			return name
		}
		visited[name] = true
		name = target
	}
}

// ParseSpec parses an annotation string into its Spec shape, caching
// by exact annotation text.
func (e *Engine) ParseSpec(text string) (*Spec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty type annotation")
	}

	if cached, ok := e.parseCache[text]; ok {
		return cached, nil
	}

	spec, err := e.parse(text)
	if err != nil {
		return nil, err
	}

	if len(e.parseCache) < parseCacheCap {
		e.parseCache[text] = spec
	}
	return spec, nil
}

func (e *Engine) parse(text string) (*Spec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty type annotation")
	}

	// Unions split on top-level '|'.
	parts, err := splitTopLevel(text, '|')
	if err != nil {
		return nil, err
	}
	if len(parts) > 1 {
		alternatives := make([]*Spec, 0, len(parts))
		for _, part := range parts {
			alt, err := e.parse(part)
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, alt)
		}
		return &Spec{Text: text, Kind: KindUnion, Params: alternatives}, nil
	}

	// Generic form Name[params...].
	open := strings.IndexByte(text, '[')
	if open > 0 && strings.HasSuffix(text, "]") {
		base := strings.TrimSpace(text[:open])
		inner := text[open+1 : len(text)-1]

		base = e.resolveAlias(base)
		if base == "Callable" {
			return e.parseCallable(text, inner)
		}

		params, err := splitTopLevel(inner, ',')
		if err != nil {
			return nil, err
		}
		specs := make([]*Spec, 0, len(params))
		for _, param := range params {
			p, err := e.parse(param)
			if err != nil {
				return nil, err
			}
			specs = append(specs, p)
		}
		return &Spec{Text: text, Kind: KindGeneric, Name: base, Params: specs}, nil
	}

	// Bare name: alias, Callable without a contract, or primitive.
	resolved := e.resolveAlias(text)
	if resolved != text {
		spec, err := e.parse(resolved)
		if err != nil {
			return nil, err
		}
		// Keep the written text so diagnostics echo what the user wrote.
		aliased := *spec
		aliased.Text = text
		return &aliased, nil
	}
	if text == "Callable" {
		return &Spec{Text: text, Kind: KindCallable, AnyArity: true}, nil
	}

	return &Spec{Text: text, Kind: KindPrimitive, Name: text}, nil
}

// parseCallable handles Callable[[ArgTypes...], Return] and
// Callable[..., Return]. An argument clause of "..." means any arity.
func (e *Engine) parseCallable(text, inner string) (*Spec, error) {
	clauses, err := splitTopLevel(inner, ',')
	if err != nil {
		return nil, err
	}
	if len(clauses) == 0 {
		return nil, fmt.Errorf("malformed Callable annotation: %q", text)
	}

	spec := &Spec{Text: text, Kind: KindCallable}

	argClause := strings.TrimSpace(clauses[0])
	spec.ArgClause = argClause

	switch {
	case argClause == "...":
		spec.AnyArity = true
	case strings.HasPrefix(argClause, "[") && strings.HasSuffix(argClause, "]"):
		argInner := strings.TrimSpace(argClause[1 : len(argClause)-1])
		if argInner != "" {
			argParts, err := splitTopLevel(argInner, ',')
			if err != nil {
				return nil, err
			}
			for _, part := range argParts {
				argSpec, err := e.parse(part)
				if err != nil {
					return nil, err
				}
				spec.ArgSpecs = append(spec.ArgSpecs, argSpec)
			}
		}
		// An empty clause [] means exactly zero arguments; ArgSpecs
		// stays empty but the arity check still applies.
	default:
		return nil, fmt.Errorf("malformed Callable argument clause: %q", argClause)
	}

	if len(clauses) > 1 {
		returnText := strings.TrimSpace(strings.Join(clauses[1:], ","))
		if returnText != "" && returnText != "any" {
			ret, err := e.parse(returnText)
			if err != nil {
				return nil, err
			}
			spec.Return = ret
		}
	}

	return spec, nil
}

// splitTopLevel splits on sep while respecting nested brackets.
func splitTopLevel(text string, sep byte) ([]string, error) {
	var parts []string
	depth := 0
	start := 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets in annotation: %q", text)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in annotation: %q", text)
	}

	last := strings.TrimSpace(text[start:])
	if last != "" || len(parts) > 0 {
		parts = append(parts, last)
	}

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("empty clause in annotation: %q", text)
		}
	}
	return parts, nil
}
