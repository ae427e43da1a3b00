package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCommaDelimited(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"single value", "System::", []string{"System::"}},
		{"multiple values", "System::,std::,Internal::", []string{"System::", "std::", "Internal::"}},
		{"whitespace trimmed", " System:: , std:: ", []string{"System::", "std::"}},
		{"empty elements dropped", "System::,,std::,", []string{"System::", "std::"}},
		{"only commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCommaDelimited(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("ParseCommaDelimited(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("ParseCommaDelimited(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSafeCreateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.json")

	file, err := SafeCreateFile(path)
	if err != nil {
		t.Fatalf("SafeCreateFile failed: %v", err)
	}
	file.Close()

	if !FileExists(path) {
		t.Error("Created file does not exist")
	}
}

func TestSafeCreateFileRejectsTraversal(t *testing.T) {
	_, err := SafeCreateFile("../../escape.json")
	if err == nil {
		t.Error("Expected error for traversal path")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	if FileExists(dir) {
		t.Error("FileExists returned true for a directory")
	}
	if FileExists("") {
		t.Error("FileExists returned true for empty path")
	}

	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists returned false for existing file")
	}
}
