package fileenv

import (
	"testing"
)

func TestMapSourceSortedEntries(t *testing.T) {
	t.Parallel()

	src := Map(map[string]string{"zeta": "1", "ALPHA": "2", "mid": "3"})

	entries := src.Entries()
	wantOrder := []string{"alpha", "mid", "zeta"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("unexpected entry count: %v", entries)
	}
	for i, key := range wantOrder {
		if entries[i].Key != key {
			t.Fatalf("expected sorted enumeration, got %v", entries)
		}
	}
}

func TestMapSourceLowercasesKeys(t *testing.T) {
	t.Parallel()

	src := Map(nil)
	src.Set("FOO_FILE", "/tmp/x")

	entries := src.Entries()
	if len(entries) != 1 || entries[0].Key != "foo_file" {
		t.Fatalf("expected lowercased key, got %v", entries)
	}

	src.Delete("foo_FILE")
	if entries := src.Entries(); len(entries) != 0 {
		t.Fatalf("expected delete to match case-insensitively, got %v", entries)
	}
}

func TestMapSourceDefensiveCopies(t *testing.T) {
	t.Parallel()

	initial := map[string]string{"foo": "bar"}
	src := Map(initial)

	initial["foo"] = "mutated"
	if got := src.Entries()[0].Value; got != "bar" {
		t.Fatalf("source shares caller's map: %q", got)
	}

	entries := src.Entries()
	entries[0].Value = "scribbled"
	if got := src.Entries()[0].Value; got != "bar" {
		t.Fatalf("Entries exposes internal state: %q", got)
	}
}

func TestMapSourceWithProfileClones(t *testing.T) {
	t.Parallel()

	src := Map(map[string]string{"foo": "bar"})
	clone := src.WithProfile("prod")

	if clone.Profile() != "prod" || src.Profile() != DefaultProfile {
		t.Fatalf("unexpected profiles: %s / %s", clone.Profile(), src.Profile())
	}

	src.Set("foo", "changed")
	if got := clone.Entries()[0].Value; got != "bar" {
		t.Fatalf("clone shares values with original: %q", got)
	}
}
