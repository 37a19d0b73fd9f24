package repositories

import (
	"context"

	"arbor/internal/domain/models"
)

// NoteStore is the interface to the notes subsystem. The hierarchy engine
// never owns note rows; it only keeps their folder references consistent
// when folders change.
type NoteStore interface {
	// ReassignToDefault moves every note referencing one of folderIDs to the
	// workspace default folder (folder_id NULL, folder = defaultName).
	// Returns the number of active and trashed notes moved.
	ReassignToDefault(ctx context.Context, workspace string, folderIDs []string, defaultName string) (active, trashed int, err error)

	// MoveToTrash marks every non-trashed note directly in the folder as
	// trashed and returns the count
	MoveToTrash(ctx context.Context, workspace, folderID string) (int, error)

	// MoveAll reassigns every non-trashed note from source to target and
	// returns the count moved
	MoveAll(ctx context.Context, workspace, sourceFolderID, targetFolderID, targetFolderName string) (int, error)

	// RenameFolderRef updates the denormalized folder name cache on notes
	// matching oldName within the workspace
	RenameFolderRef(ctx context.Context, workspace, oldName, newName string) (int, error)

	// CountByFolder counts notes directly in a folder
	CountByFolder(ctx context.Context, workspace, folderID string, includeTrash bool) (int, error)

	// CountsByFolder returns the non-trashed note count per folder id plus
	// the count of unfiled notes (folder_id NULL)
	CountsByFolder(ctx context.Context, workspace string) (map[string]int, int, error)

	// ListByFolders retrieves non-trashed notes (with content) in any of the
	// given folders, ordered by folder then heading; used by export
	ListByFolders(ctx context.Context, workspace string, folderIDs []string) ([]models.Note, error)
}

// WorkspaceRegistry is the interface to the workspace subsystem.
type WorkspaceRegistry interface {
	// Exists reports whether a workspace with this name is registered
	Exists(ctx context.Context, name string) (bool, error)
}
