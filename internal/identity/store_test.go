package identity

import (
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStoreAt(filepath.Join(t.TempDir(), "identity.json"))

	if _, ok := s.Get(); ok {
		t.Fatal("Get on fresh store: ok = true, want false")
	}

	if err := s.Set("alice"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	name, ok := s.Get()
	if !ok {
		t.Fatal("Get after Set: ok = false, want true")
	}
	if name != "alice" {
		t.Errorf("Get = %q, want %q", name, "alice")
	}

	if err := s.Set("bob"); err != nil {
		t.Fatalf("Set(overwrite): %v", err)
	}
	if name, _ := s.Get(); name != "bob" {
		t.Errorf("Get after overwrite = %q, want %q", name, "bob")
	}
}

func TestFileStore_Clear(t *testing.T) {
	s := NewFileStoreAt(filepath.Join(t.TempDir(), "identity.json"))

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}

	if err := s.Set("alice"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := s.Get(); ok {
		t.Error("Get after Clear: ok = true, want false")
	}
}
