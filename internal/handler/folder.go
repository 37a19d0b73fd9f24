package handler

import (
	"log/slog"
	"net/http"

	"arbor/internal/domain/services"
	"arbor/internal/httputil"
)

// FolderHandler serves the folder CRUD, listing and hierarchy endpoints
type FolderHandler struct {
	folderService services.FolderService
	mover         services.MoveCoordinator
	resolver      services.HierarchyResolver
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(
	folderService services.FolderService,
	mover services.MoveCoordinator,
	resolver services.HierarchyResolver,
	logger *slog.Logger,
) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		mover:         mover,
		resolver:      resolver,
		logger:        logger,
	}
}

// Create handles POST /api/folders
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// Get handles GET /api/folders/{id}
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	contents, err := h.folderService.GetFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contents)
}

// Update handles PATCH /api/folders/{id}
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Delete handles DELETE /api/folders/{id}
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.folderService.DeleteFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// List handles GET /api/folders?workspace=
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	workspace, ok := requireQuery(w, r, "workspace")
	if !ok {
		return
	}

	list, err := h.folderService.ListFolders(r.Context(), workspace)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, list)
}

// Tree handles GET /api/folders/tree?workspace=
func (h *FolderHandler) Tree(w http.ResponseWriter, r *http.Request) {
	workspace, ok := requireQuery(w, r, "workspace")
	if !ok {
		return
	}

	tree, err := h.folderService.ListFolderTree(r.Context(), workspace)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folders": tree})
}

// Move handles POST /api/folders/move
func (h *FolderHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req services.MoveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.mover.Reparent(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Empty handles POST /api/folders/{id}/empty
func (h *FolderHandler) Empty(w http.ResponseWriter, r *http.Request) {
	count, err := h.folderService.EmptyFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int{"notes_trashed": count})
}

// MoveFiles handles POST /api/folders/{id}/move-files
func (h *FolderHandler) MoveFiles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetFolderID string `json:"target_folder_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetFolderID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "target_folder_id is required")
		return
	}

	count, err := h.folderService.MoveFolderFiles(r.Context(), r.PathValue("id"), req.TargetFolderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int{"notes_moved": count})
}

// Count handles GET /api/folders/{id}/count
func (h *FolderHandler) Count(w http.ResponseWriter, r *http.Request) {
	stats, err := h.folderService.CountNotes(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}

// Path handles GET /api/folders/{id}/path
func (h *FolderHandler) Path(w http.ResponseWriter, r *http.Request) {
	path, err := h.resolver.ComputePath(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"path": path})
}

// Resolve handles GET /api/folders/resolve?workspace=&path=
func (h *FolderHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	workspace, ok := requireQuery(w, r, "workspace")
	if !ok {
		return
	}
	path, ok := requireQuery(w, r, "path")
	if !ok {
		return
	}

	folder, err := h.resolver.ResolvePath(r.Context(), workspace, path)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	canonical, err := h.resolver.ComputePath(r.Context(), folder.ID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	folder.Path = canonical
	httputil.RespondJSON(w, http.StatusOK, folder)
}
