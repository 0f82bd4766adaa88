package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsOnly(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bump.InitialTag != "0.1.0" {
		t.Errorf("InitialTag = %q, want 0.1.0", cfg.Bump.InitialTag)
	}
	if !cfg.Changelog.ConventionalCommits {
		t.Error("expected ConventionalCommits default true")
	}
}

func TestLoadOverlayOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "belaf"), 0o755); err != nil {
		t.Fatal(err)
	}
	overlay := "[bump]\ninitial_tag = \"1.0.0\"\n"
	if err := os.WriteFile(filepath.Join(dir, Path), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bump.InitialTag != "1.0.0" {
		t.Errorf("InitialTag = %q, want 1.0.0 from overlay", cfg.Bump.InitialTag)
	}
	if !cfg.Bump.FeaturesAlwaysBumpMinor {
		t.Error("fields absent from overlay should keep their default value")
	}
}
