package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Theme != "dark" || cfg.MaxSteps != 200 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if !cfg.EmojiEnabled() || !cfg.PersistEnabled() {
		t.Fatalf("tri-state defaults should be on")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Theme != "dark" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "theme: light\nverbose: true\nemoji: false\nmax_steps: 50\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Theme != "light" || !cfg.Verbose || cfg.MaxSteps != 50 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.EmojiEnabled() {
		t.Fatalf("emoji should be disabled")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("theme: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("malformed config should error")
	}
}

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Info("event received", map[string]any{"kind": "content"})

	got := buf.String()
	for _, want := range []string{`"level":"info"`, `"message":"event received"`, `"kind":"content"`} {
		if !strings.Contains(got, want) {
			t.Errorf("log line missing %s: %s", want, got)
		}
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("log line not newline-terminated")
	}
}
