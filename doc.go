// Package fileenv resolves environment-style configuration where any value
// may be supplied either directly or through a file named by a sibling
// variable carrying a suffix (default "_file"). This is the common pattern
// for injecting container secrets: the config value "api_key" is read either
// from the variable API_KEY or from the file pointed to by API_KEY_FILE,
// without the application having to care which form was used.
//
// Basic usage against the process environment:
//
//	mapping, err := fileenv.New(fileenv.Env("MYAPP_")).Resolve()
//	if err != nil {
//		// a *_FILE variable pointed at an unreadable file
//	}
//	apiKey := mapping.Values["api_key"]
//
// When both MYAPP_API_KEY and MYAPP_API_KEY_FILE are set, the file-backed
// value wins. File contents are stored verbatim; trimming and type coercion
// are left to whatever consumes the mapping.
//
// The suffix is configurable and matched case-insensitively:
//
//	fileenv.New(fileenv.Env("MYAPP_")).WithSuffix("_path")
//
// Only and Ignore restrict resolution to a set of logical keys. They
// transparently cover the suffixed variants, so Only("api_key") admits both
// API_KEY and API_KEY_FILE. The suffix cannot be changed once a restriction
// has been applied; the Restricted type returned by Only and Ignore has no
// suffix operation.
//
// Tests should use Map rather than mutating the real environment:
//
//	src := fileenv.Map(map[string]string{"api_key_file": "/run/secrets/key"})
//	mapping, err := fileenv.New(src).Resolve()
package fileenv
