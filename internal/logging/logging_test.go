package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger instance")
	}
	_ = logger.Sync()
}

func TestNewConsole(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		logger, err := NewConsole(verbose)
		if err != nil {
			t.Fatalf("unexpected error (verbose=%v): %v", verbose, err)
		}
		if verbose != logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("debug enablement mismatch for verbose=%v", verbose)
		}
		_ = logger.Sync()
	}
}
