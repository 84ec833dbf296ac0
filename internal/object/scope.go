package object

import (
	"log/slog"
)

// Scope is a single name→value frame plus the set of names declared
// constant in that frame.
type Scope struct {
	Bindings  map[string]Object
	Constants map[string]bool
}

func NewScope() *Scope {
	return &Scope{
		Bindings:  make(map[string]Object),
		Constants: make(map[string]bool),
	}
}

// ScopeStack is the visible-variable search path. Index 0 is the
// global scope and is never popped; frames above it are pushed and
// popped by the evaluator on function calls and for-loops.
type ScopeStack struct {
	frames []*Scope
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{frames: []*Scope{NewScope()}}
}

func (s *ScopeStack) Push() *Scope {
	frame := NewScope()
	s.frames = append(s.frames, frame)
	slog.Debug("scope push", slog.Int("depth", len(s.frames)))
	return frame
}

// Pop removes the top frame. Popping the global frame is a no-op.
func (s *ScopeStack) Pop() {
	if len(s.frames) <= 1 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
	slog.Debug("scope pop", slog.Int("depth", len(s.frames)))
}

func (s *ScopeStack) Depth() int { return len(s.frames) }

func (s *ScopeStack) Global() *Scope { return s.frames[0] }

func (s *ScopeStack) top() *Scope { return s.frames[len(s.frames)-1] }

// Declare writes into the top frame. Redeclaration of a name found in
// any frame of the stack is rejected: the language intentionally
// disallows shadowing, including via an outer `let`.
func (s *ScopeStack) Declare(name string, val Object, constant bool) *Error {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, exists := s.frames[i].Bindings[name]; exists {
			return NewError(ErrAlreadyDeclared,
				"'%s' is already declared in an enclosing scope", name)
		}
	}

	frame := s.top()
	frame.Bindings[name] = val
	if constant {
		frame.Constants[name] = true
	}

	slog.Debug("declare",
		slog.String("name", name),
		slog.Bool("constant", constant),
		slog.Any("type", val.Type()))
	return nil
}

// Assign searches frames innermost-to-outermost and mutates the first
// binding found. Assignment never creates a binding: an unresolved
// target is a hard UndeclaredVariable failure.
func (s *ScopeStack) Assign(name string, val Object) *Error {
	for i := len(s.frames) - 1; i >= 0; i-- {
		frame := s.frames[i]
		if _, exists := frame.Bindings[name]; !exists {
			continue
		}
		if frame.Constants[name] {
			return NewError(ErrConstantViolation,
				"cannot assign to constant '%s'", name)
		}
		frame.Bindings[name] = val
		slog.Debug("assign",
			slog.String("name", name),
			slog.Any("type", val.Type()))
		return nil
	}
	return NewError(ErrUndeclaredVariable,
		"'%s' is not declared in any accessible scope", name)
}

// Read searches frames innermost-to-outermost.
func (s *ScopeStack) Read(name string) (Object, *Error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if val, exists := s.frames[i].Bindings[name]; exists {
			return val, nil
		}
	}
	return nil, NewError(ErrUndeclaredVariable, "identifier not found: %s", name)
}

// BindLocal writes directly into the top frame, bypassing the
// no-shadowing check. Parameter binding, the foreach loop variable
// (bound once, rebound every iteration) and the catch variable all use
// this: they are frame-local bindings, not declarations.
func (s *ScopeStack) BindLocal(name string, val Object) {
	s.top().Bindings[name] = val
}
