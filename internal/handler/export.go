package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"arbor/internal/domain/services"
)

// ExportHandler streams folder subtree exports
type ExportHandler struct {
	exportService services.ExportService
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService services.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

// Export handles GET /api/folders/{id}/export. The archive is staged in a
// buffer so errors can still produce a clean problem response instead of a
// truncated download.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	filename, err := h.exportService.WriteArchive(r.Context(), r.PathValue("id"), &buf)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to stream export archive", "error", err)
	}
}
