package services

import (
	"context"

	"arbor/internal/domain/models"
	"arbor/internal/httputil"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder with its computed path and children
	GetFolder(ctx context.Context, id string) (*FolderContents, error)

	// UpdateFolder renames and/or moves a folder
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder deletes a folder and its subtree, reassigning every note
	// in the subtree to the workspace default folder
	DeleteFolder(ctx context.Context, id string) (*models.DeletionResult, error)

	// ListFolders lists all folders in a workspace with note counts,
	// sorted by name (case-insensitive)
	ListFolders(ctx context.Context, workspace string) (*FolderList, error)

	// ListFolderTree returns the nested folder tree for a workspace
	ListFolderTree(ctx context.Context, workspace string) ([]*models.FolderTreeNode, error)

	// EmptyFolder moves every non-trashed note in the folder to trash and
	// returns the count
	EmptyFolder(ctx context.Context, id string) (int, error)

	// MoveFolderFiles bulk-moves every non-trashed note from one folder to
	// another within the same workspace and returns the count
	MoveFolderFiles(ctx context.Context, sourceID, targetID string) (int, error)

	// CountNotes counts notes and subfolders in the whole subtree
	CountNotes(ctx context.Context, id string) (*models.FolderStats, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Workspace string  `json:"workspace"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id,omitempty"` // null for root folders
	Icon      *string `json:"icon,omitempty"`
	IconColor *string `json:"icon_color,omitempty"`
}

// UpdateFolderRequest represents a folder update request. Nil pointer
// fields are left unchanged; ParentID uses tri-state semantics because
// null is meaningful there (absent = keep, null = move to root).
type UpdateFolderRequest struct {
	Name      *string                 `json:"name,omitempty"`
	ParentID  httputil.OptionalString `json:"parent_id,omitzero"`
	Icon      *string                 `json:"icon,omitempty"`
	IconColor *string                 `json:"icon_color,omitempty"`
	Kanban    *bool                   `json:"kanban,omitempty"`
}

// FolderContents represents a folder with its immediate children
type FolderContents struct {
	Folder  *models.Folder  `json:"folder"`
	Folders []models.Folder `json:"folders"`
}

// FolderList is a flat workspace listing with the unfiled-notes bucket
type FolderList struct {
	Folders            []models.FolderListing `json:"folders"`
	UncategorizedNotes int                    `json:"uncategorized_notes"`
}
