package attribution

import "testing"

func TestFindMatchingProject(t *testing.T) {
	candidates := []string{"api", "web-ui", "shared_core"}

	t.Run("exact is case-insensitive", func(t *testing.T) {
		m := ScopeMatcher{Mode: Exact}
		got, ok := m.FindMatchingProject("API", candidates)
		if !ok || got != "api" {
			t.Fatalf("got %q, %v", got, ok)
		}
	})

	t.Run("suffix matches hyphen boundary", func(t *testing.T) {
		m := ScopeMatcher{Mode: Suffix}
		got, ok := m.FindMatchingProject("ui", candidates)
		if !ok || got != "web-ui" {
			t.Fatalf("got %q, %v", got, ok)
		}
	})

	t.Run("suffix matches underscore boundary", func(t *testing.T) {
		m := ScopeMatcher{Mode: Suffix}
		got, ok := m.FindMatchingProject("core", candidates)
		if !ok || got != "shared_core" {
			t.Fatalf("got %q, %v", got, ok)
		}
	})

	t.Run("smart falls back to contains", func(t *testing.T) {
		m := NewScopeMatcher()
		got, ok := m.FindMatchingProject("eb", candidates)
		if !ok || got != "web-ui" {
			t.Fatalf("got %q, %v", got, ok)
		}
	})

	t.Run("scope mappings take precedence", func(t *testing.T) {
		m := ScopeMatcher{
			Mode:          Exact,
			ScopeMappings: map[string]string{"ui": "web-ui"},
		}
		got, ok := m.FindMatchingProject("ui", candidates)
		if !ok || got != "web-ui" {
			t.Fatalf("got %q, %v", got, ok)
		}
	})

	t.Run("package scopes reverse lookup", func(t *testing.T) {
		m := ScopeMatcher{
			Mode:          Exact,
			PackageScopes: map[string]string{"api": "core-alias"},
		}
		got, ok := m.FindMatchingProject("core-alias", candidates)
		if !ok || got != "api" {
			t.Fatalf("got %q, %v", got, ok)
		}
	})

	t.Run("no match", func(t *testing.T) {
		m := NewScopeMatcher()
		if _, ok := m.FindMatchingProject("nonexistent", candidates); ok {
			t.Fatal("expected no match")
		}
	})
}
