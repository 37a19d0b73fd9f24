package services

import (
	"context"
	"io"
)

// ExportEntry is one file inside a folder export archive.
type ExportEntry struct {
	Path    string // archive-internal path, "/"-separated
	Content []byte
}

// ExportService builds archival exports of folder subtrees.
type ExportService interface {
	// BuildExportTree produces the archive entries for a folder and its
	// whole subtree: a README, every non-trashed note at its sanitized
	// subtree path, and placeholder entries for empty subfolders.
	// Deterministic for a fixed tree snapshot.
	BuildExportTree(ctx context.Context, rootFolderID string) ([]ExportEntry, error)

	// WriteArchive writes the export of a folder subtree as a zip stream
	WriteArchive(ctx context.Context, rootFolderID string, w io.Writer) (filename string, err error)
}
