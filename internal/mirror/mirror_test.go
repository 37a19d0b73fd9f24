package mirror

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	return New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "Projects", "Projects"},
		{"slash", "a/b", "a_b"},
		{"backslash", `a\b`, "a_b"},
		{"windows reserved set", `a:b*c?d"e<f>g|h`, "a_b_c_d_e_f_g_h"},
		{"trailing dots", "notes...", "notes"},
		{"leading and trailing spaces", "  notes  ", "notes"},
		{"dots and spaces mixed", " .notes. ", "notes"},
		{"empty", "", "Untitled"},
		{"only forbidden chars", "///", "___"},
		{"only dots", "...", "Untitled"},
		{"unicode preserved", "émigré 2024", "émigré 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhysicalPath(t *testing.T) {
	m := New("/data", slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name      string
		workspace string
		logical   string
		want      string
	}{
		{"workspace root", "Main", "", filepath.Join("/data", "Main")},
		{"nested path", "Main", "Projects/Work", filepath.Join("/data", "Main", "Projects", "Work")},
		{"segments sanitized", "Main", `Projects/Q1: plan?`, filepath.Join("/data", "Main", "Projects", "Q1_ plan_")},
		{"workspace sanitized", "a/b", "X", filepath.Join("/data", "a_b", "X")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.PhysicalPath(tt.workspace, tt.logical); got != tt.want {
				t.Errorf("PhysicalPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnsureAndRemoveDirectory(t *testing.T) {
	m := newTestMirror(t)

	m.EnsureDirectory("Main", "Projects/Work")
	dir := m.PhysicalPath("Main", "Projects/Work")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s, err=%v", dir, err)
	}

	if !m.RemoveIfEmpty("Main", "Projects/Work") {
		t.Error("expected empty directory to be removed")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory still exists after removal")
	}
}

func TestRemoveIfEmptySkipsNonEmpty(t *testing.T) {
	m := newTestMirror(t)

	m.EnsureDirectory("Main", "Projects")
	dir := m.PhysicalPath("Main", "Projects")
	if err := os.WriteFile(filepath.Join(dir, "note.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if m.RemoveIfEmpty("Main", "Projects") {
		t.Error("non-empty directory must not be removed")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory should survive: %v", err)
	}
}

func TestRemoveIfEmptyMissingDir(t *testing.T) {
	m := newTestMirror(t)
	if m.RemoveIfEmpty("Main", "DoesNotExist") {
		t.Error("missing directory reported as removed")
	}
}

func TestListEntries(t *testing.T) {
	m := newTestMirror(t)

	m.EnsureDirectory("Main", "Projects/Work")
	dir := m.PhysicalPath("Main", "Projects")
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := m.ListEntries("Main", "Projects")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %v, want 2 entries", names)
	}

	missing, err := m.ListEntries("Main", "Nope")
	if err != nil {
		t.Fatalf("ListEntries missing dir: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("missing dir should list empty, got %v", missing)
	}
}
