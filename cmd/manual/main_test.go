package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-manual/pkg/testsupport"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "manual.yaml")
	config := `storage:
  driver: sqlite3
  dsn: ` + filepath.Join(dir, "manual.db") + `
logging:
  provider: none
auth:
  secret: cli-secret
  owner_open_id: owner
files:
  root: ` + filepath.Join(dir, "uploads") + `
features:
  markdown: true
`
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRenderReadsStdin(t *testing.T) {
	out, err := run(t, "**Setup**\n- one\n- two", "render")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload struct {
		Kind   string           `json:"kind"`
		Blocks []map[string]any `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if payload.Kind != "blocks" || len(payload.Blocks) != 2 {
		t.Fatalf("unexpected render output: %s", out)
	}
}

func TestRenderHTMLSanitizes(t *testing.T) {
	out, err := run(t, "<p>hi</p><script>x()</script>", "render", "--html")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(out) != "<p>hi</p>" {
		t.Fatalf("unexpected markup %q", out)
	}
}

func TestLoadConfigLayersFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir)
	t.Setenv("MANUAL_SEARCH_SUGGEST_LIMIT", "9")
	t.Setenv("MANUAL_FEATURES_METRICS", "false")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Driver != "sqlite3" {
		t.Fatalf("expected sqlite3 driver from file, got %q", cfg.Storage.Driver)
	}
	if cfg.Auth.Secret != "cli-secret" || cfg.Auth.OwnerOpenID != "owner" {
		t.Fatalf("unexpected auth config %+v", cfg.Auth)
	}
	if cfg.Search.SuggestLimit != 9 {
		t.Fatalf("expected env override for suggest limit, got %d", cfg.Search.SuggestLimit)
	}
	if cfg.Features.Metrics {
		t.Fatal("expected env override to disable metrics")
	}
	if cfg.Auth.TokenTTL <= 0 || cfg.Search.LogRetention <= 0 {
		t.Fatal("expected defaults for unset durations")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestImportThenExportThroughSQLite(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir)
	content := filepath.Join(dir, "content")
	testsupport.WriteTree(t, content, map[string]string{
		"setup/_category.md": "---\ntitle: Getting Set Up\n---\n",
		"setup/install.md":   "---\ntitle: Install\nformat: markdown\n---\n\nRun **make**.\n",
		"setup/faq.md":       "**Questions**\n- none yet\n",
	})

	out, err := run(t, "", "--config", config, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "migrations applied (sqlite3)") {
		t.Fatalf("unexpected migrate output %q", out)
	}

	out, err = run(t, "", "--config", config, "import", "--dir", content)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "created=3 updated=0 unchanged=0") {
		t.Fatalf("unexpected import summary %q", out)
	}

	out, err = run(t, "", "--config", config, "import", "--dir", content)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !strings.Contains(out, "created=0 updated=0 unchanged=3") {
		t.Fatalf("expected unchanged second import, got %q", out)
	}

	exported := filepath.Join(dir, "exported")
	out, err = run(t, "", "--config", config, "export", "--dir", exported)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "categories=1 items=2") {
		t.Fatalf("unexpected export summary %q", out)
	}
	if _, err := os.Stat(filepath.Join(exported, "setup", "install.md")); err != nil {
		t.Fatalf("expected exported item file: %v", err)
	}
}

func TestTokenPrintsJWT(t *testing.T) {
	config := writeConfig(t, t.TempDir())

	out, err := run(t, "", "--config", config, "token", "--open-id", "owner", "--name", "Owner")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(out), "."); len(parts) != 3 {
		t.Fatalf("expected a three part token, got %q", out)
	}

	if _, err := run(t, "", "--config", config, "token"); !errors.Is(err, errOpenIDRequired) {
		t.Fatalf("expected errOpenIDRequired, got %v", err)
	}
}

func TestCleanupSearchLogsDryRun(t *testing.T) {
	config := writeConfig(t, t.TempDir())

	out, err := run(t, "", "--config", config, "cleanup-search-logs", "--dry-run")
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if !strings.Contains(out, "removed=0 dry_run=true") {
		t.Fatalf("unexpected cleanup output %q", out)
	}
}

func TestMigrateRejectsMemoryStorage(t *testing.T) {
	t.Setenv("MANUAL_STORAGE_DRIVER", "memory")
	t.Chdir(t.TempDir())

	if _, err := run(t, "", "migrate"); !errors.Is(err, errMemoryStorage) {
		t.Fatalf("expected errMemoryStorage, got %v", err)
	}
}
