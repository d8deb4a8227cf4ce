package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/breadthfirst/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	_, cacheHome := isolate(t)

	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(cacheHome, appName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestCachePathFromConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	custom := filepath.Join(dir, "layouts-cache")
	cfg := writeFile(t, dir, "config.toml", "[cache]\ndir = \""+filepath.ToSlash(custom)+"\"\n")

	out, err := runCLI(t, "cache", "path", "--config", cfg)
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(custom) {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), custom)
	}
}

func TestCacheClearCommand(t *testing.T) {
	_, cacheHome := isolate(t)

	fc, err := cache.NewFileCache(filepath.Join(cacheHome, appName))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"layout:one", "layout:two", "artifact:three"} {
		if err := fc.Set(ctx, key, []byte("{}"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, "layout:one"); hit {
		t.Error("entry survived cache clear")
	}

	// Clearing an empty cache is not an error.
	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Fatalf("second cache clear: %v", err)
	}
}
