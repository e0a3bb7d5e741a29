package fileenv

import (
	"os"
	"strings"
)

// DefaultProfile tags mappings produced by sources without an explicit profile.
const DefaultProfile = "default"

// Entry is a single raw key/value pair as enumerated by a Source.
type Entry struct {
	Key   string
	Value string
}

// Source supplies raw key/value pairs to a Resolver. Implementations are
// expected to return a fresh snapshot on every Entries call so repeated
// resolutions observe live data.
type Source interface {
	// Entries returns the current raw entries in the source's enumeration
	// order. The returned slice is owned by the caller.
	Entries() []Entry
	// Profile returns the namespace/profile tag attached to resolved
	// mappings. It is passed through untouched by the resolver.
	Profile() string
	// Filter derives a source restricted to keys the predicate accepts.
	// Filtering a filtered source applies both predicates.
	Filter(keep func(key string) bool) Source
}

// EnvSource enumerates the process environment, restricted to variables
// bearing a prefix. The prefix is matched case-insensitively and stripped,
// and the remaining key is lowercased.
type EnvSource struct {
	prefix  string
	profile string
}

// Env returns a Source over the process environment. Only variables whose
// name starts with prefix are visible; enumeration order is whatever the
// platform reports. The environment is re-read on every Entries call.
func Env(prefix string) EnvSource {
	return EnvSource{prefix: strings.ToLower(prefix), profile: DefaultProfile}
}

// WithProfile returns a copy tagged with the given profile name.
func (s EnvSource) WithProfile(name string) EnvSource {
	s.profile = name
	return s
}

// Entries snapshots the current environment, normalised per the prefix rules.
func (s EnvSource) Entries() []Entry {
	environ := os.Environ()
	entries := make([]Entry, 0, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, s.prefix) {
			continue
		}
		entries = append(entries, Entry{Key: lower[len(s.prefix):], Value: value})
	}
	return entries
}

// Profile returns the configured profile tag.
func (s EnvSource) Profile() string {
	return s.profile
}

// Filter derives a key-restricted view of the environment.
func (s EnvSource) Filter(keep func(key string) bool) Source {
	return filteredSource{inner: s, keep: keep}
}

// filteredSource wraps another source with a key predicate.
type filteredSource struct {
	inner Source
	keep  func(key string) bool
}

func (f filteredSource) Entries() []Entry {
	all := f.inner.Entries()
	entries := make([]Entry, 0, len(all))
	for _, entry := range all {
		if f.keep(entry.Key) {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (f filteredSource) Profile() string {
	return f.inner.Profile()
}

func (f filteredSource) Filter(keep func(key string) bool) Source {
	return filteredSource{inner: f, keep: keep}
}
