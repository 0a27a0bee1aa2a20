package kvstore

import (
	"testing"

	"github.com/google/uuid"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()

	if _, ok := m.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	m.Set("k", "v")
	if got, ok := m.Get("k"); !ok || got != "v" {
		t.Fatalf("expected v, got %q ok=%v", got, ok)
	}

	m.Delete("k")
	if _, ok := m.Get("k"); ok {
		t.Fatalf("expected miss after delete")
	}

	// deleting an absent key is not an error
	m.Delete("k")
}

func TestRegistryScopesPerSession(t *testing.T) {
	r := NewRegistry()

	a := r.For("session-a")
	b := r.For("session-b")
	a.Set("k", "from-a")

	if _, ok := b.Get("k"); ok {
		t.Fatalf("expected sessions to be isolated")
	}
	if again := r.For("session-a"); again != a {
		t.Fatalf("expected the same store for the same session")
	}

	r.Drop("session-a")
	if fresh := r.For("session-a"); fresh == a {
		t.Fatalf("expected a fresh store after drop")
	}
}

func TestRegistryMoveKeepsContents(t *testing.T) {
	r := NewRegistry()
	oldID, newID := uuid.NewString(), uuid.NewString()

	s := r.For(oldID)
	s.Set("jwt_token", "tok")

	r.Move(oldID, newID)

	moved := r.For(newID)
	if moved != s {
		t.Fatalf("expected the same store under the new id")
	}
	if got, ok := moved.Get("jwt_token"); !ok || got != "tok" {
		t.Fatalf("contents lost across move: %q ok=%v", got, ok)
	}
	if fresh := r.For(oldID); fresh == s {
		t.Fatalf("old id must no longer map to the moved store")
	}

	// moving an unknown id is a no-op
	r.Move(uuid.NewString(), newID)
	if again := r.For(newID); again != s {
		t.Fatalf("no-op move must not replace the store")
	}
}
