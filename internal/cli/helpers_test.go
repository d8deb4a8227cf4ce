package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

// isolate points the config and cache directories at fresh temp dirs so
// tests never see the user's files.
func isolate(t *testing.T) (configHome, cacheHome string) {
	t.Helper()
	configHome, cacheHome = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	return configHome, cacheHome
}

// runCLI executes the root command with args and returns what it wrote to
// its output stream.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const chainGraph = `{
  "nodes": [{"id": "a"}, {"id": "b", "label": "Bee"}, {"id": "c"}],
  "edges": [{"from": "a", "to": "b"}, {"from": "b", "to": "c"}]
}`
