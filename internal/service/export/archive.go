package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"time"

	"arbor/internal/mirror"
)

// WriteArchive streams the subtree export as a zip file and returns the
// suggested download filename
func (s *service) WriteArchive(ctx context.Context, rootFolderID string, w io.Writer) (string, error) {
	root, err := s.folderRepo.GetByID(ctx, rootFolderID)
	if err != nil {
		return "", err
	}

	entries, err := s.BuildExportTree(ctx, rootFolderID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.Path,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return "", fmt.Errorf("failed to add %s to archive: %w", entry.Path, err)
		}
		if _, err := fw.Write(entry.Content); err != nil {
			return "", fmt.Errorf("failed to write %s to archive: %w", entry.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}

	filename := fmt.Sprintf("%s_export_%s.zip", mirror.SanitizeName(root.Name), now.Format("2006-01-02"))

	s.logger.Info("folder exported",
		"folder_id", root.ID,
		"workspace", root.Workspace,
		"entries", len(entries),
		"filename", filename)
	return filename, nil
}
