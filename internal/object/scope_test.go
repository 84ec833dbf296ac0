package object

import (
	"testing"
)

func TestDeclareAndRead(t *testing.T) {
	s := NewScopeStack()

	if err := s.Declare("a", &Number{Value: 1}, false); err != nil {
		t.Fatalf("Declare failed: %s", err.Inspect())
	}

	val, err := s.Read("a")
	if err != nil {
		t.Fatalf("Read failed: %s", err.Inspect())
	}
	if val.(*Number).Value != 1 {
		t.Errorf("Read returned %s, want 1", val.Inspect())
	}
}

func TestDeclareRejectsShadowing(t *testing.T) {
	s := NewScopeStack()

	if err := s.Declare("x", &Number{Value: 1}, false); err != nil {
		t.Fatalf("Declare failed: %s", err.Inspect())
	}

	// Same frame.
	if err := s.Declare("x", &Number{Value: 2}, false); err == nil {
		t.Fatal("redeclaration in same frame succeeded")
	} else if err.Kind != ErrAlreadyDeclared {
		t.Errorf("error kind = %s, want %s", err.Kind, ErrAlreadyDeclared)
	}

	// Inner frame: shadowing an outer name is also rejected.
	s.Push()
	if err := s.Declare("x", &Number{Value: 3}, false); err == nil {
		t.Fatal("shadowing declaration succeeded")
	} else if err.Kind != ErrAlreadyDeclared {
		t.Errorf("error kind = %s, want %s", err.Kind, ErrAlreadyDeclared)
	}
	s.Pop()
}

func TestAssignInnermostOut(t *testing.T) {
	s := NewScopeStack()
	s.Declare("a", &Number{Value: 1}, false)

	s.Push()
	s.Declare("b", &Number{Value: 2}, false)

	// Assign reaches through the inner frame to the global binding.
	if err := s.Assign("a", &Number{Value: 10}); err != nil {
		t.Fatalf("Assign failed: %s", err.Inspect())
	}
	s.Pop()

	val, _ := s.Read("a")
	if val.(*Number).Value != 10 {
		t.Errorf("a = %s after assignment, want 10", val.Inspect())
	}
}

func TestAssignUndeclaredIsHardFailure(t *testing.T) {
	s := NewScopeStack()

	err := s.Assign("ghost", &Number{Value: 1})
	if err == nil {
		t.Fatal("assignment to undeclared name succeeded")
	}
	if err.Kind != ErrUndeclaredVariable {
		t.Errorf("error kind = %s, want %s", err.Kind, ErrUndeclaredVariable)
	}

	// The failed assignment must not have created a binding.
	if _, readErr := s.Read("ghost"); readErr == nil {
		t.Error("failed assignment created a binding")
	}
}

func TestConstantViolation(t *testing.T) {
	s := NewScopeStack()
	s.Declare("pi", &Number{Value: 3.14}, true)

	err := s.Assign("pi", &Number{Value: 3})
	if err == nil {
		t.Fatal("assignment to constant succeeded")
	}
	if err.Kind != ErrConstantViolation {
		t.Errorf("error kind = %s, want %s", err.Kind, ErrConstantViolation)
	}
}

func TestConstantIsPerFrame(t *testing.T) {
	s := NewScopeStack()
	s.Declare("a", &Number{Value: 1}, true)

	// A different name in an inner frame is unaffected by the outer
	// constant set.
	s.Push()
	s.BindLocal("b", &Number{Value: 2})
	if err := s.Assign("b", &Number{Value: 3}); err != nil {
		t.Fatalf("assignment to local failed: %s", err.Inspect())
	}
	s.Pop()
}

func TestGlobalFrameNeverPopped(t *testing.T) {
	s := NewScopeStack()
	s.Declare("g", &Number{Value: 1}, false)

	s.Pop()
	s.Pop()

	if s.Depth() != 1 {
		t.Fatalf("depth = %d after popping at global, want 1", s.Depth())
	}
	if _, err := s.Read("g"); err != nil {
		t.Errorf("global binding lost: %s", err.Inspect())
	}
}

func TestBindLocalBypassesShadowCheck(t *testing.T) {
	s := NewScopeStack()
	s.Declare("n", &Number{Value: 1}, false)

	s.Push()
	s.BindLocal("n", &Number{Value: 99})

	val, _ := s.Read("n")
	if val.(*Number).Value != 99 {
		t.Errorf("inner read = %s, want 99", val.Inspect())
	}

	s.Pop()
	val, _ = s.Read("n")
	if val.(*Number).Value != 1 {
		t.Errorf("outer binding = %s after pop, want 1", val.Inspect())
	}
}

func TestPopDropsFrameBindings(t *testing.T) {
	s := NewScopeStack()

	s.Push()
	s.Declare("tmp", &Number{Value: 1}, false)
	s.Pop()

	if _, err := s.Read("tmp"); err == nil {
		t.Error("frame-local binding survived pop")
	}
}
