// Package mirror maintains the on-disk directory tree that shadows the
// logical folder hierarchy. The database stays authoritative: every
// operation here is best-effort, and a failed mkdir or rmdir is logged
// rather than surfaced to the caller's request.
package mirror

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenChars are the characters stripped from names before they touch
// the filesystem. The set matches what Windows rejects in path components,
// which keeps exported archives portable.
const forbiddenChars = `/\:*?"<>|`

// Mirror derives physical paths from logical ones under a single data root.
// Paths are always recomputed from the logical path, never stored.
type Mirror struct {
	dataDir string
	logger  *slog.Logger
}

// New creates a filesystem mirror rooted at dataDir
func New(dataDir string, logger *slog.Logger) *Mirror {
	return &Mirror{dataDir: dataDir, logger: logger}
}

// SanitizeName converts a folder or workspace name into a safe filesystem
// component. Forbidden characters become underscores, leading/trailing dots
// and spaces are trimmed, and a name with nothing left becomes "Untitled".
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(forbiddenChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	sanitized := strings.Trim(b.String(), ". ")
	if sanitized == "" {
		return "Untitled"
	}
	return sanitized
}

// PhysicalPath maps a workspace and logical folder path ("Projects/Work")
// to the directory that mirrors it on disk. An empty logical path yields
// the workspace root directory.
func (m *Mirror) PhysicalPath(workspace, logicalPath string) string {
	parts := []string{m.dataDir, SanitizeName(workspace)}
	if logicalPath != "" {
		for _, segment := range strings.Split(logicalPath, "/") {
			parts = append(parts, SanitizeName(segment))
		}
	}
	return filepath.Join(parts...)
}

// EnsureDirectory creates the mirror directory for the logical path,
// including any missing parents. Failures are logged and swallowed.
func (m *Mirror) EnsureDirectory(workspace, logicalPath string) {
	dir := m.PhysicalPath(workspace, logicalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("failed to create mirror directory",
			"dir", dir,
			"workspace", workspace,
			"error", err)
	}
}

// RemoveIfEmpty removes the mirror directory for the logical path if it
// contains no entries. Returns true only when the directory was actually
// removed. A non-empty or missing directory is not an error.
func (m *Mirror) RemoveIfEmpty(workspace, logicalPath string) bool {
	dir := m.PhysicalPath(workspace, logicalPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("failed to read mirror directory", "dir", dir, "error", err)
		}
		return false
	}
	if len(entries) > 0 {
		return false
	}

	if err := os.Remove(dir); err != nil {
		m.logger.Warn("failed to remove mirror directory", "dir", dir, "error", err)
		return false
	}
	return true
}

// ListEntries returns the names of entries in the mirror directory for the
// logical path. A missing directory yields an empty list.
func (m *Mirror) ListEntries(workspace, logicalPath string) ([]string, error) {
	dir := m.PhysicalPath(workspace, logicalPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list mirror directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}
