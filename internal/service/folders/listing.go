package folders

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
)

// ListFolders returns every folder in the workspace with note counts,
// sorted case-insensitively by name, plus the unfiled-notes bucket
func (s *service) ListFolders(ctx context.Context, workspace string) (*services.FolderList, error) {
	if err := s.checkWorkspace(ctx, workspace); err != nil {
		return nil, err
	}

	all, err := s.folderRepo.ListByWorkspace(ctx, workspace)
	if err != nil {
		return nil, err
	}
	counts, unfiled, err := s.reassigner.noteStore.CountsByFolder(ctx, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}

	listings := make([]models.FolderListing, 0, len(all))
	for _, f := range all {
		listings = append(listings, models.FolderListing{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			NoteCount: counts[f.ID],
		})
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return strings.ToLower(listings[i].Name) < strings.ToLower(listings[j].Name)
	})

	return &services.FolderList{Folders: listings, UncategorizedNotes: unfiled}, nil
}

// ListFolderTree returns the workspace's folders as a nested tree.
// Built in three passes over one flat query: create nodes, link children,
// then sort every sibling list.
func (s *service) ListFolderTree(ctx context.Context, workspace string) ([]*models.FolderTreeNode, error) {
	if err := s.checkWorkspace(ctx, workspace); err != nil {
		return nil, err
	}

	all, err := s.folderRepo.ListByWorkspace(ctx, workspace)
	if err != nil {
		return nil, err
	}
	counts, _, err := s.reassigner.noteStore.CountsByFolder(ctx, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}

	nodes := make(map[string]*models.FolderTreeNode, len(all))
	for _, f := range all {
		nodes[f.ID] = &models.FolderTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			NoteCount: counts[f.ID],
			CreatedAt: f.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
		}
	}

	var roots []*models.FolderTreeNode
	for _, f := range all {
		node := nodes[f.ID]
		if f.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*f.ParentID]
		if !ok {
			// Orphaned row; surface it at the root rather than hiding it.
			s.logger.Warn("folder has missing parent", "folder_id", f.ID, "parent_id", *f.ParentID)
			roots = append(roots, node)
			continue
		}
		parent.Folders = append(parent.Folders, node)
	}

	sortTree(roots)
	for _, node := range nodes {
		sortTree(node.Folders)
	}
	return roots, nil
}

// EmptyFolder moves every non-trashed note in the folder to trash
func (s *service) EmptyFolder(ctx context.Context, id string) (int, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		count, err = s.reassigner.OnFolderEmptied(txCtx, folder.Workspace, folder.ID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("folder emptied",
		"folder_id", folder.ID,
		"workspace", folder.Workspace,
		"notes_trashed", count)
	return count, nil
}

// MoveFolderFiles bulk-moves every non-trashed note from the source folder
// to the target folder within the same workspace
func (s *service) MoveFolderFiles(ctx context.Context, sourceID, targetID string) (int, error) {
	source, err := s.folderRepo.GetByID(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	target, err := s.folderRepo.GetByID(ctx, targetID)
	if err != nil {
		return 0, err
	}
	if source.ID == target.ID {
		return 0, &domain.InvalidOperationError{Message: "source and target folders are the same"}
	}
	if source.Workspace != target.Workspace {
		return 0, &domain.InvalidOperationError{Message: "cannot move notes into a different workspace"}
	}

	var count int
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		count, err = s.reassigner.OnBulkMove(txCtx, source.Workspace, source.ID, target.ID, target.Name)
		if err != nil {
			return err
		}
		if count == 0 {
			return &domain.InvalidOperationError{Message: "no notes found in source folder"}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("folder notes moved",
		"workspace", source.Workspace,
		"source_id", source.ID,
		"target_id", target.ID,
		"notes_moved", count)
	return count, nil
}

// CountNotes counts non-trashed notes and folders across the whole subtree
func (s *service) CountNotes(ctx context.Context, id string) (*models.FolderStats, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	descendants, err := s.resolver.CollectDescendantIDs(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	counts, _, err := s.reassigner.noteStore.CountsByFolder(ctx, folder.Workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}

	total := counts[folder.ID]
	for _, descID := range descendants {
		total += counts[descID]
	}

	return &models.FolderStats{NoteCount: total, SubfolderCount: len(descendants)}, nil
}

func (s *service) checkWorkspace(ctx context.Context, workspace string) error {
	exists, err := s.workspaceReg.Exists(ctx, workspace)
	if err != nil {
		return fmt.Errorf("failed to check workspace: %w", err)
	}
	if !exists {
		return &domain.NotFoundError{Message: fmt.Sprintf("workspace '%s' not found", workspace)}
	}
	return nil
}

func sortTree(nodes []*models.FolderTreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
}
