package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"redis://localhost:6379", "redis://localhost:6379"},
		{"redis://:secret@cache:6379/1", "redis://:xxxxx@cache:6379/1"},
	}
	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xyflow", "config.toml")

	run := func(args ...string) string {
		t.Helper()
		c := New(io.Discard, LogInfo)
		root := c.RootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(io.Discard)
		root.SetArgs(append([]string{"--config", path}, args...))
		if err := root.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	if got := strings.TrimSpace(run("config", "path")); got != path {
		t.Errorf("config path = %q, want %q", got, path)
	}

	run("config", "init")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init did not write %s: %v", path, err)
	}

	if err := os.WriteFile(path, []byte("[cache]\nredis_url = \"redis://:pw@localhost:6379\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	shown := run("config", "show")
	if strings.Contains(shown, "pw@") {
		t.Errorf("config show leaked the password:\n%s", shown)
	}
	if !strings.Contains(shown, "redis_url") {
		t.Errorf("config show missing redis_url:\n%s", shown)
	}
}

func TestConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[viewport]\nzoooom = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", path, "config", "path"})
	if err := root.Execute(); err == nil {
		t.Error("expected an error for an unknown config key")
	}
}
