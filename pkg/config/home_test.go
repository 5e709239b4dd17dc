package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetHome_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envHome, dir)
	ResetHome()
	t.Cleanup(ResetHome)

	if got := GetHome(); got != dir {
		t.Errorf("GetHome = %q, want %q from %s", got, dir, envHome)
	}
}

func TestFindConfigRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	if got := findConfigRoot(nested); got != root {
		t.Errorf("findConfigRoot(%q) = %q, want %q", nested, got, root)
	}
}

func TestFindConfigRoot_NotFound(t *testing.T) {
	// A bare temp dir has no config/ anywhere up to the filesystem root
	// in practice; a config file (not dir) must not count either.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if got := findConfigRoot(dir); got == dir {
		t.Errorf("findConfigRoot matched a plain file named config")
	}
}
