package coachlens

import (
	"path/filepath"
	"testing"
)

func TestKVStoreRoundTrip(t *testing.T) {
	store, err := OpenKVStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenKVStore: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want absent with nil error", ok, err)
	}

	if err := store.Set("greeting", []byte("hello")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := store.Get("greeting")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(value) != "hello" {
		t.Errorf("Get(greeting) = %q ok=%v, want %q", value, ok, "hello")
	}

	// Overwrite replaces the stored value.
	if err := store.Set("greeting", []byte("goodbye")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	value, _, err = store.Get("greeting")
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if string(value) != "goodbye" {
		t.Errorf("Get after overwrite = %q, want %q", value, "goodbye")
	}
}

func TestKVStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	store, err := OpenKVStore(path)
	if err != nil {
		t.Fatalf("OpenKVStore: %v", err)
	}
	if err := store.Set("key", []byte("value")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenKVStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("key")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !ok || string(value) != "value" {
		t.Errorf("Get after reopen = %q ok=%v, want the persisted value", value, ok)
	}
}

func TestMemoryStorage(t *testing.T) {
	store := NewMemoryStorage()

	if _, ok, _ := store.Get("missing"); ok {
		t.Error("Get(missing) reported a value in an empty store")
	}
	if err := store.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, _ := store.Get("k")
	if !ok || string(value) != "v" {
		t.Errorf("Get(k) = %q ok=%v, want %q", value, ok, "v")
	}
}
