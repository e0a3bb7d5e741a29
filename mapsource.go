package fileenv

import (
	"sort"
	"strings"
	"sync"
)

// MapSource is an in-memory Source guarded by a RWMutex. It exists so tests
// and embedding code can resolve against a synthetic snapshot instead of the
// real process environment. Keys are lowercased on the way in, matching the
// normalisation EnvSource applies, and entries enumerate in sorted key order
// so resolution over a MapSource is deterministic.
type MapSource struct {
	mu      sync.RWMutex
	values  map[string]string
	profile string
}

// Map initialises a MapSource with a copy of the provided values.
func Map(values map[string]string) *MapSource {
	s := &MapSource{
		values:  make(map[string]string, len(values)),
		profile: DefaultProfile,
	}
	for key, value := range values {
		s.values[strings.ToLower(key)] = value
	}
	return s
}

// WithProfile returns a new MapSource sharing a copy of the current values,
// tagged with the given profile name.
func (s *MapSource) WithProfile(name string) *MapSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &MapSource{
		values:  make(map[string]string, len(s.values)),
		profile: name,
	}
	for key, value := range s.values {
		clone.values[key] = value
	}
	return clone
}

// Set stores a raw key/value pair, lowercasing the key.
func (s *MapSource) Set(key, value string) {
	s.mu.Lock()
	s.values[strings.ToLower(key)] = value
	s.mu.Unlock()
}

// Delete removes a raw key, if present.
func (s *MapSource) Delete(key string) {
	s.mu.Lock()
	delete(s.values, strings.ToLower(key))
	s.mu.Unlock()
}

// Entries returns a defensive copy of the current entries in sorted key order.
func (s *MapSource) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, Entry{Key: key, Value: s.values[key]})
	}
	return entries
}

// Profile returns the configured profile tag.
func (s *MapSource) Profile() string {
	return s.profile
}

// Filter derives a key-restricted view of the source.
func (s *MapSource) Filter(keep func(key string) bool) Source {
	return filteredSource{inner: s, keep: keep}
}
