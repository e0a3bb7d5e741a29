package fileenv

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
)

// DefaultSuffix marks pointer entries: raw keys ending with it name a file
// whose contents become the value of the suffix-stripped key.
const DefaultSuffix = "_file"

// Mapping is the result of one resolution pass: the flat logical-key to
// value map plus the profile tag passed through from the source. It is
// rebuilt from scratch on every Resolve and owned by the caller.
type Mapping struct {
	Profile string
	Values  map[string]string
}

// Resolver turns a Source's raw entries into a Mapping, reading pointer
// entries from the filesystem. It is an immutable value; the With* methods
// and Only/Ignore return transformed copies.
type Resolver struct {
	source       Source
	suffix       string
	allowMissing bool
	logger       *zap.Logger
}

// New wraps a Source with the default "_file" suffix.
func New(src Source) Resolver {
	return Resolver{source: src, suffix: DefaultSuffix, logger: zap.NewNop()}
}

// WithSuffix returns a copy using the given pointer-detection suffix. The
// suffix is stored lowercased and matched case-insensitively at resolve
// time. It must be set before Only or Ignore, which derive their suffixed
// key variants from it; the Restricted type they return has no suffix
// operation.
func (r Resolver) WithSuffix(suffix string) Resolver {
	r.suffix = strings.ToLower(suffix)
	return r
}

// AllowMissing returns a copy that skips pointer entries whose file does not
// exist, letting the entry fall through to the direct-value pass under its
// raw (suffixed) key. Permission and other read failures remain fatal.
// The default treats a missing file as fatal.
func (r Resolver) AllowMissing() Resolver {
	r.allowMissing = true
	return r
}

// WithLogger returns a copy that emits debug traces of file resolutions.
// The zero behaviour is silent.
func (r Resolver) WithLogger(logger *zap.Logger) Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Only restricts resolution to the given logical keys and their suffixed
// variants.
func (r Resolver) Only(keys ...string) Restricted {
	return Restricted{resolver: r}.Only(keys...)
}

// Ignore excludes the given logical keys and their suffixed variants.
func (r Resolver) Ignore(keys ...string) Restricted {
	return Restricted{resolver: r}.Ignore(keys...)
}

// Resolve reads the source and produces the resolved mapping. Pointer
// entries are resolved first; a direct entry is only inserted when no
// file-backed value exists for the same logical key, so for any key present
// in both forms the file-backed value wins. A raw key exactly equal to the
// suffix yields the empty logical key and is processed like any other entry.
func (r Resolver) Resolve() (Mapping, error) {
	return resolve(r)
}

// Restricted is a Resolver that has had Only or Ignore applied. It
// deliberately lacks WithSuffix: the restriction predicates were derived
// from the suffix in force when they were applied, and changing it
// afterwards would silently invalidate them.
type Restricted struct {
	resolver Resolver
}

// Only further restricts resolution to the given logical keys and their
// suffixed variants. Combined with previous restrictions, an entry must
// satisfy every predicate.
func (res Restricted) Only(keys ...string) Restricted {
	set := suffixedSet(keys, res.resolver.suffix)
	res.resolver.source = res.resolver.source.Filter(func(key string) bool {
		_, ok := set[strings.ToLower(key)]
		return ok
	})
	return res
}

// Ignore further excludes the given logical keys and their suffixed variants.
func (res Restricted) Ignore(keys ...string) Restricted {
	set := suffixedSet(keys, res.resolver.suffix)
	res.resolver.source = res.resolver.source.Filter(func(key string) bool {
		_, ok := set[strings.ToLower(key)]
		return !ok
	})
	return res
}

// Resolve behaves as Resolver.Resolve over the restricted key space.
func (res Restricted) Resolve() (Mapping, error) {
	return resolve(res.resolver)
}

// suffixedSet builds the union of the listed logical keys and their suffixed
// variants, lowercased. Recomputed on every Only/Ignore call so it always
// reflects the suffix in force at that moment.
func suffixedSet(keys []string, suffix string) map[string]struct{} {
	set := make(map[string]struct{}, 2*len(keys))
	for _, key := range keys {
		lower := strings.ToLower(key)
		set[lower] = struct{}{}
		set[lower+suffix] = struct{}{}
	}
	return set
}

func resolve(r Resolver) (Mapping, error) {
	values := make(map[string]string)
	consumed := make(map[string]struct{})

	for _, entry := range r.source.Entries() {
		logical, ok := stripSuffix(entry.Key, r.suffix)
		if !ok {
			continue
		}
		contents, err := os.ReadFile(entry.Value)
		if err != nil {
			if r.allowMissing && errors.Is(err, fs.ErrNotExist) {
				r.logger.Debug("pointer file missing, falling through",
					zap.String("key", entry.Key),
					zap.String("path", entry.Value))
				continue
			}
			return Mapping{}, &FileError{Key: logical, RawKey: entry.Key, Path: entry.Value, Err: err}
		}
		values[logical] = string(contents)
		consumed[entry.Key] = struct{}{}
		r.logger.Debug("resolved from file",
			zap.String("key", logical),
			zap.String("path", entry.Value))
	}

	for _, entry := range r.source.Entries() {
		if _, ok := consumed[entry.Key]; ok {
			continue
		}
		if _, ok := values[entry.Key]; ok {
			continue
		}
		values[entry.Key] = entry.Value
	}

	return Mapping{Profile: r.source.Profile(), Values: values}, nil
}

// stripSuffix reports whether key ends with suffix, comparing the suffix
// case-insensitively, and returns the key with the suffix removed. An empty
// suffix disables pointer detection entirely.
func stripSuffix(key, suffix string) (string, bool) {
	if suffix == "" {
		return "", false
	}
	if !strings.HasSuffix(strings.ToLower(key), suffix) {
		return "", false
	}
	return key[:len(key)-len(suffix)], true
}

// pointerPaths lists the file paths the resolver's pointer entries currently
// reference, for the watcher.
func (r Resolver) pointerPaths() []string {
	var paths []string
	for _, entry := range r.source.Entries() {
		if _, ok := stripSuffix(entry.Key, r.suffix); ok {
			paths = append(paths, entry.Value)
		}
	}
	return paths
}

func (res Restricted) pointerPaths() []string {
	return res.resolver.pointerPaths()
}
