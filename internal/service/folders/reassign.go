package folders

import (
	"context"
	"fmt"
	"log/slog"

	"arbor/internal/domain/repositories"
)

// NoteReassigner keeps note/folder references consistent across structural
// folder changes. Every method runs against the executor bound to ctx, so
// callers can place it inside the same transaction as the folder mutation.
type NoteReassigner struct {
	noteStore         repositories.NoteStore
	defaultFolderName string
	logger            *slog.Logger
}

// NewNoteReassigner creates a new note reassigner
func NewNoteReassigner(noteStore repositories.NoteStore, defaultFolderName string, logger *slog.Logger) *NoteReassigner {
	return &NoteReassigner{
		noteStore:         noteStore,
		defaultFolderName: defaultFolderName,
		logger:            logger,
	}
}

// OnFolderDeleted moves every note in the deleted subtree to the workspace
// default folder, trashed notes included. Returns the active and trashed
// counts separately.
func (r *NoteReassigner) OnFolderDeleted(ctx context.Context, workspace string, folderIDs []string) (int, int, error) {
	active, trashed, err := r.noteStore.ReassignToDefault(ctx, workspace, folderIDs, r.defaultFolderName)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to reassign notes to default folder: %w", err)
	}

	if active+trashed > 0 {
		r.logger.Info("notes reassigned to default folder",
			"workspace", workspace,
			"folders", len(folderIDs),
			"active", active,
			"trashed", trashed)
	}
	return active, trashed, nil
}

// OnFolderEmptied moves every non-trashed note in the folder to trash
func (r *NoteReassigner) OnFolderEmptied(ctx context.Context, workspace, folderID string) (int, error) {
	count, err := r.noteStore.MoveToTrash(ctx, workspace, folderID)
	if err != nil {
		return 0, fmt.Errorf("failed to trash folder notes: %w", err)
	}
	return count, nil
}

// OnBulkMove reassigns every non-trashed note from one folder to another,
// updating the denormalized folder name alongside the id
func (r *NoteReassigner) OnBulkMove(ctx context.Context, workspace, sourceID, targetID, targetName string) (int, error) {
	count, err := r.noteStore.MoveAll(ctx, workspace, sourceID, targetID, targetName)
	if err != nil {
		return 0, fmt.Errorf("failed to move folder notes: %w", err)
	}
	return count, nil
}

// OnRename rewrites the denormalized folder name on every note that still
// carries the old one
func (r *NoteReassigner) OnRename(ctx context.Context, workspace, oldName, newName string) (int, error) {
	count, err := r.noteStore.RenameFolderRef(ctx, workspace, oldName, newName)
	if err != nil {
		return 0, fmt.Errorf("failed to update note folder references: %w", err)
	}
	return count, nil
}
