package fileenv

import "fmt"

// FileError reports a pointer entry whose referenced file could not be read.
// Resolution aborts on the first FileError; no partial mapping is returned.
type FileError struct {
	// Key is the logical key the entry would have resolved to.
	Key string
	// RawKey is the suffixed key as enumerated by the source.
	RawKey string
	// Path is the file path the entry pointed at.
	Path string
	// Err is the underlying I/O failure.
	Err error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("read %q referenced by %q: %v", e.Path, e.RawKey, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
