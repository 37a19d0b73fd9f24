package services

import (
	"context"

	"arbor/internal/domain/models"
)

// HierarchyResolver holds the read-side tree algorithms. It is stateless:
// every call re-reads from the folder store, so it can never serve a stale
// cached tree across requests.
type HierarchyResolver interface {
	// ComputePath walks parent_id upward and joins the folder names with "/".
	// A root folder with no ancestors yields just its own name.
	ComputePath(ctx context.Context, folderID string) (string, error)

	// ResolvePath resolves a slash-separated path to a folder, matching each
	// segment case-sensitively against "child of current parent with this
	// exact name". Never creates folders.
	ResolvePath(ctx context.Context, workspace, path string) (*models.Folder, error)

	// IsDescendant reports whether candidateID sits inside the subtree rooted
	// at folderID, by walking upward from candidateID
	IsDescendant(ctx context.Context, candidateID, folderID string) (bool, error)

	// CollectDescendantIDs enumerates every folder whose ancestor chain
	// includes folderID (folderID itself excluded)
	CollectDescendantIDs(ctx context.Context, folderID string) ([]string, error)
}

// MoveFolderRequest identifies the folder to reparent and its destination.
// The folder may be given by id or by path; the new parent by id (nil = root)
// or by path. Paths are resolved to ids before any validation runs.
type MoveFolderRequest struct {
	Workspace     string  `json:"workspace"`
	FolderID      *string `json:"folder_id,omitempty"`
	FolderPath    *string `json:"folder_path,omitempty"`
	NewParentID   *string `json:"new_parent_folder_id,omitempty"`
	NewParentPath *string `json:"new_parent_folder,omitempty"`
}

// MoveCoordinator validates and executes reparenting.
type MoveCoordinator interface {
	// Reparent applies the move after the full validation sequence
	// (existence, self-parent, workspace match, cycle, destination
	// uniqueness) and returns the folder with its recomputed path
	Reparent(ctx context.Context, req *MoveFolderRequest) (*models.Folder, error)
}
