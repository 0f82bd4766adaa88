package ecosystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCargoRoundTripPreservesComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	original := "# top comment\n[package]\nname = \"demo\"\nversion = \"1.2.3\" # trailing\nedition = \"2021\"\n\n[dependencies]\nserde = \"1.0\"\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	eco := cargoEcosystem{}
	desc, err := eco.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if desc.Name != "demo" || desc.Version != "1.2.3" {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}

	if err := eco.RewriteVersion(path, "1.3.0"); err != nil {
		t.Fatalf("RewriteVersion: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, "# top comment") {
		t.Error("top comment lost")
	}
	if !strings.Contains(got, "edition = \"2021\"") {
		t.Error("edition field lost")
	}
	if !strings.Contains(got, `version = "1.3.0"`) {
		t.Errorf("version not rewritten, got:\n%s", got)
	}
	if strings.Contains(got, "1.2.3") {
		t.Error("old version still present")
	}
}

func TestNpmDetectAndRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	original := "{\n  \"name\": \"demo\",\n  \"version\": \"0.1.0\",\n  \"dependencies\": {\n    \"left-pad\": \"^1.0.0\"\n  }\n}\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	eco := npmEcosystem{}
	desc, err := eco.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if desc.Name != "demo" || desc.Version != "0.1.0" {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
	if len(desc.Dependencies) != 1 || desc.Dependencies[0].Name != "left-pad" {
		t.Fatalf("unexpected dependencies: %+v", desc.Dependencies)
	}

	if err := eco.RewriteVersion(path, "0.2.0"); err != nil {
		t.Fatalf("RewriteVersion: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"version": "0.2.0"`) {
		t.Errorf("version not rewritten: %s", data)
	}
}

func TestGoModVersionIsAlwaysPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go.mod")
	original := "module github.com/example/demo\n\ngo 1.22\n\nrequire github.com/pkg/errors v0.9.1\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	desc, err := goLoader{}.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if desc.Name != "github.com/example/demo" {
		t.Errorf("Name = %q", desc.Name)
	}
	if desc.Version != "0.0.0" {
		t.Errorf("Version = %q, want placeholder 0.0.0", desc.Version)
	}
}

func TestDiscoverFindsMultipleEcosystemsAndSkipsVendor(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "services", "api", "Cargo.toml"), "[package]\nname = \"api\"\nversion = \"0.1.0\"\n")
	mustWrite(t, filepath.Join(root, "services", "web", "package.json"), `{"name": "web", "version": "0.1.0"}`)
	mustWrite(t, filepath.Join(root, "services", "web", "node_modules", "dep", "package.json"), `{"name": "dep", "version": "9.9.9"}`)

	reg := NewRegistry()
	found, err := Discover(reg, root, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range found {
		names[f.Name] = true
	}
	if !names["api"] || !names["web"] {
		t.Fatalf("expected api and web to be discovered, got %+v", found)
	}
	if names["dep"] {
		t.Error("node_modules dependency should have been skipped")
	}
}

func TestDiscoverHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, ".gitignore"), "generated/\n")
	mustWrite(t, filepath.Join(root, "services", "api", "Cargo.toml"), "[package]\nname = \"api\"\nversion = \"0.1.0\"\n")
	mustWrite(t, filepath.Join(root, "generated", "Cargo.toml"), "[package]\nname = \"generated\"\nversion = \"0.1.0\"\n")

	reg := NewRegistry()
	found, err := Discover(reg, root, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range found {
		names[f.Name] = true
	}
	if !names["api"] {
		t.Fatalf("expected api to be discovered, got %+v", found)
	}
	if names["generated"] {
		t.Error("gitignored directory should have been skipped")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
