package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func writeExclusionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "protected.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write exclusions file: %v", err)
	}
	return path
}

func TestLoadExclusions(t *testing.T) {
	path := writeExclusionsFile(t, `# family favourites
The Godfather

Don't Look Up
`)

	exclusions, err := LoadExclusions(path)
	if err != nil {
		t.Fatalf("LoadExclusions failed: %v", err)
	}
	if exclusions.Count() != 2 {
		t.Errorf("Expected 2 titles, got %d", exclusions.Count())
	}
}

func TestLoadExclusionsMissingFile(t *testing.T) {
	exclusions, err := LoadExclusions(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("Missing file should not be an error: %v", err)
	}
	if exclusions.Count() != 0 {
		t.Errorf("Expected empty list, got %d", exclusions.Count())
	}
}

func TestIsProtected(t *testing.T) {
	path := writeExclusionsFile(t, "Don't Look Up\nThe Godfather\n")
	exclusions, err := LoadExclusions(path)
	if err != nil {
		t.Fatalf("LoadExclusions failed: %v", err)
	}

	tests := []struct {
		title     string
		protected bool
	}{
		{"Don't Look Up", true},
		{"don't look up", true},
		{"Dont Look Up", true}, // missing apostrophe stays within tolerance
		{"The Godfather", true},
		{"The Godfather Part II", false},
		{"Heat", false},
	}

	for _, tt := range tests {
		if got := exclusions.IsProtected(tt.title); got != tt.protected {
			t.Errorf("IsProtected(%q) = %v, want %v", tt.title, got, tt.protected)
		}
	}
}

func TestIsProtectedEmptyList(t *testing.T) {
	exclusions := &Exclusions{}
	if exclusions.IsProtected("Anything") {
		t.Error("Empty exclusion list must not protect anything")
	}
}
