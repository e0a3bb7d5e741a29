package fileenv

import (
	"maps"
	"testing"
)

func TestEnvSourceEntries(t *testing.T) {
	t.Setenv("FILEENV_TEST_FOO", "bar")
	t.Setenv("FILEENV_TEST_BAZ", "put")
	t.Setenv("UNRELATED_KEY", "drop")

	entries := Env("FILEENV_TEST_").Entries()

	got := make(map[string]string, len(entries))
	for _, entry := range entries {
		got[entry.Key] = entry.Value
	}

	want := map[string]string{"foo": "bar", "baz": "put"}
	if !maps.Equal(got, want) {
		t.Fatalf("unexpected entries: %v", got)
	}
}

func TestEnvSourcePrefixCaseInsensitive(t *testing.T) {
	t.Setenv("FILEENV_TEST_FOO", "bar")

	entries := Env("fileenv_test_").Entries()
	if len(entries) != 1 || entries[0].Key != "foo" {
		t.Fatalf("expected case-insensitive prefix match, got %v", entries)
	}
}

func TestEnvSourceProfile(t *testing.T) {
	t.Parallel()

	src := Env("APP_")
	if src.Profile() != DefaultProfile {
		t.Fatalf("expected default profile, got %s", src.Profile())
	}
	if got := src.WithProfile("staging").Profile(); got != "staging" {
		t.Fatalf("expected staging profile, got %s", got)
	}
	// WithProfile returns a copy; the original keeps its tag.
	if src.Profile() != DefaultProfile {
		t.Fatalf("original source mutated: %s", src.Profile())
	}
}

func TestEnvSourceResolution(t *testing.T) {
	path := writeSecret(t, "secret", "bar")
	t.Setenv("FILEENV_TEST_FOO_FILE", path)
	t.Setenv("FILEENV_TEST_BAZ", "put")

	mapping, err := New(Env("FILEENV_TEST_")).Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := map[string]string{"foo": "bar", "baz": "put"}
	if !maps.Equal(mapping.Values, want) {
		t.Fatalf("unexpected values: %v", mapping.Values)
	}
}

func TestFilteredSourceComposes(t *testing.T) {
	t.Parallel()

	src := Map(map[string]string{"a": "1", "b": "2", "c": "3"})

	filtered := src.
		Filter(func(key string) bool { return key != "a" }).
		Filter(func(key string) bool { return key != "c" })

	entries := filtered.Entries()
	if len(entries) != 1 || entries[0].Key != "b" {
		t.Fatalf("expected both predicates applied, got %v", entries)
	}
	if filtered.Profile() != DefaultProfile {
		t.Fatalf("filter must not touch the profile, got %s", filtered.Profile())
	}
}
