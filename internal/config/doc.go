// Package config loads the fileenv tool's own settings from multiple sources
// (YAML files, environment variables, CLI flags) with precedence: CLI flags >
// YAML config > Environment variables > Defaults. It exposes strongly typed
// settings to the rest of the application. The tool's settings live in the
// FILEENV_ environment namespace, separate from the application variables
// being resolved.
package config
