package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/fileenv/internal/application"
	"github.com/eugenenazirov/fileenv/internal/config"
)

type resolvedDocument struct {
	Profile string            `yaml:"profile"`
	Values  map[string]string `yaml:"values"`
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolveFlow(t *testing.T) {
	dir := t.TempDir()
	apiKeyPath := writeFile(t, dir, "api_key", "s3cret-token")

	configPath := writeFile(t, dir, "fileenv.yaml", `
prefix: FILEENV_ITEST_
profile: production
ignore:
  - noise
`)

	t.Setenv("FILEENV_ITEST_API_KEY_FILE", apiKeyPath)
	t.Setenv("FILEENV_ITEST_API_KEY", "shadowed-by-file")
	t.Setenv("FILEENV_ITEST_DB_HOST", "db.internal")
	t.Setenv("FILEENV_ITEST_NOISE", "drop-me")
	t.Setenv("FILEENV_ITEST_NOISE_FILE", filepath.Join(dir, "does-not-exist"))

	cfg, err := config.Load(&config.CLIOverrides{ConfigFile: configPath})
	if err != nil {
		t.Fatalf("config.Load returned error: %v", err)
	}

	var out bytes.Buffer
	app := application.New(cfg, zaptest.NewLogger(t), &out)
	if err := app.RunOnce(); err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}

	var doc resolvedDocument
	if err := yaml.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("parse output: %v", err)
	}

	if doc.Profile != "production" {
		t.Fatalf("unexpected profile: %s", doc.Profile)
	}
	// The file-backed api_key wins over the direct variable; the ignored key
	// is dropped in both direct and pointer form, so its broken pointer file
	// never causes an error.
	want := map[string]string{
		"api_key": "s3cret-token",
		"db_host": "db.internal",
	}
	if len(doc.Values) != len(want) {
		t.Fatalf("unexpected values: %v", doc.Values)
	}
	for key, value := range want {
		if doc.Values[key] != value {
			t.Fatalf("unexpected value for %s: %q", key, doc.Values[key])
		}
	}
}

func TestResolveFlowReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	secretPath := writeFile(t, dir, "secret", "one")

	t.Setenv("FILEENV_ITEST2_TOKEN_FILE", secretPath)

	cfg := config.Config{
		Prefix:      "FILEENV_ITEST2_",
		Suffix:      "_file",
		Format:      config.FormatYAML,
		MinInterval: time.Second,
	}

	var out bytes.Buffer
	app := application.New(cfg, zaptest.NewLogger(t), &out)

	if err := app.RunOnce(); err != nil {
		t.Fatalf("first RunOnce returned error: %v", err)
	}

	writeFile(t, dir, "secret", "two")
	out.Reset()
	if err := app.RunOnce(); err != nil {
		t.Fatalf("second RunOnce returned error: %v", err)
	}

	var doc resolvedDocument
	if err := yaml.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if doc.Values["token"] != "two" {
		t.Fatalf("expected re-read file contents, got %q", doc.Values["token"])
	}
}
