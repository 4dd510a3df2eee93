package kvstore

import "testing"

func TestGetSetRoundTrip(t *testing.T) {
	s := New()
	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected missing key to be absent")
	}

	s.Set("a", "1")
	v, ok := s.Get("a")
	if !ok || v != "1" {
		t.Fatalf("expected a=1, got %q ok=%v", v, ok)
	}

	s.Set("a", "2")
	v, _ = s.Get("a")
	if v != "2" {
		t.Fatalf("expected overwrite to take effect, got %q", v)
	}
}

func TestDeleteMissingKeyErrors(t *testing.T) {
	s := New()
	if err := s.Delete("missing"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	s := New()
	s.Set("a", "1")
	if err := s.Delete("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Has("a") {
		t.Fatal("expected key to be gone after delete")
	}
}

func TestUpdateRequiresExistingKey(t *testing.T) {
	s := New()
	if err := s.Update("missing", "x"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	s.Set("a", "1")
	if err := s.Update("a", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := s.Get("a")
	if v != "2" {
		t.Fatalf("expected updated value 2, got %q", v)
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	s := New()
	s.Set("a", "1")

	snap := s.Snapshot()
	snap["a"] = "mutated"
	snap["b"] = "new"

	v, _ := s.Get("a")
	if v != "1" {
		t.Fatalf("mutating a snapshot must not affect the store, got %q", v)
	}
	if s.Has("b") {
		t.Fatal("mutating a snapshot must not affect the store")
	}
}

func TestReplaceOverwritesWholeMap(t *testing.T) {
	s := New()
	s.Set("stale", "old")

	s.Replace(map[string]string{"fresh": "new"})

	if s.Has("stale") {
		t.Fatal("expected Replace to wholly discard prior contents")
	}
	v, ok := s.Get("fresh")
	if !ok || v != "new" {
		t.Fatalf("expected fresh=new after Replace, got %q ok=%v", v, ok)
	}
}

func TestReplaceIsDefensiveCopy(t *testing.T) {
	s := New()
	src := map[string]string{"a": "1"}
	s.Replace(src)

	src["a"] = "mutated-after-replace"

	v, _ := s.Get("a")
	if v != "1" {
		t.Fatalf("Replace must copy its input, got %q", v)
	}
}
