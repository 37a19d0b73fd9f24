package hierarchy

import (
	"context"
	"fmt"
	"log/slog"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
)

type moveCoordinator struct {
	folderRepo   repositories.FolderRepository
	resolver     services.HierarchyResolver
	workspaceReg repositories.WorkspaceRegistry
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewMoveCoordinator creates a new move coordinator
func NewMoveCoordinator(
	folderRepo repositories.FolderRepository,
	resolver services.HierarchyResolver,
	workspaceReg repositories.WorkspaceRegistry,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.MoveCoordinator {
	return &moveCoordinator{
		folderRepo:   folderRepo,
		resolver:     resolver,
		workspaceReg: workspaceReg,
		txManager:    txManager,
		logger:       logger,
	}
}

// Reparent moves a folder under a new parent (or to the root level) after
// running the full validation sequence. Validation and the write happen in
// one transaction so a concurrent move cannot slip a cycle past the checks.
func (c *moveCoordinator) Reparent(ctx context.Context, req *services.MoveFolderRequest) (*models.Folder, error) {
	folder, err := c.resolveFolder(ctx, req)
	if err != nil {
		return nil, err
	}

	workspace := req.Workspace
	if workspace == "" {
		workspace = folder.Workspace
	}
	exists, err := c.workspaceReg.Exists(ctx, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to check workspace: %w", err)
	}
	if !exists {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("workspace '%s' not found", workspace)}
	}
	if folder.Workspace != workspace {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found in workspace '%s'", folder.ID, workspace)}
	}

	newParent, err := c.resolveNewParent(ctx, workspace, req)
	if err != nil {
		return nil, err
	}

	var moved *models.Folder
	err = c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// Re-read inside the transaction; the folder may have moved since
		// the lookup above.
		current, err := c.folderRepo.GetByID(txCtx, folder.ID)
		if err != nil {
			return err
		}

		if err := c.validateMove(txCtx, current, newParent); err != nil {
			return err
		}

		var newParentID *string
		if newParent != nil {
			newParentID = &newParent.ID
		}
		current.ParentID = newParentID

		if err := c.folderRepo.Update(txCtx, current); err != nil {
			return err
		}
		moved = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	path, err := c.resolver.ComputePath(ctx, moved.ID)
	if err != nil {
		return nil, err
	}
	moved.Path = path

	c.logger.Info("folder moved",
		"folder_id", moved.ID,
		"workspace", moved.Workspace,
		"path", moved.Path)

	return moved, nil
}

// resolveFolder locates the folder being moved, by id or by path
func (c *moveCoordinator) resolveFolder(ctx context.Context, req *services.MoveFolderRequest) (*models.Folder, error) {
	switch {
	case req.FolderID != nil && *req.FolderID != "":
		folder, err := c.folderRepo.GetByID(ctx, *req.FolderID)
		if err != nil {
			return nil, err
		}
		return folder, nil
	case req.FolderPath != nil && *req.FolderPath != "":
		if req.Workspace == "" {
			return nil, fmt.Errorf("workspace is required when moving by path: %w", domain.ErrValidation)
		}
		return c.resolver.ResolvePath(ctx, req.Workspace, *req.FolderPath)
	default:
		return nil, fmt.Errorf("folder_id or folder_path is required: %w", domain.ErrValidation)
	}
}

// resolveNewParent locates the destination parent. nil means root level.
func (c *moveCoordinator) resolveNewParent(ctx context.Context, workspace string, req *services.MoveFolderRequest) (*models.Folder, error) {
	switch {
	case req.NewParentID != nil && *req.NewParentID != "":
		parent, err := c.folderRepo.GetByID(ctx, *req.NewParentID)
		if err != nil {
			return nil, err
		}
		return parent, nil
	case req.NewParentPath != nil && *req.NewParentPath != "":
		return c.resolver.ResolvePath(ctx, workspace, *req.NewParentPath)
	default:
		return nil, nil
	}
}

// validateMove runs the ordered checks against the current tree state:
// self-parent, workspace match, cycle, then destination-level name
// uniqueness
func (c *moveCoordinator) validateMove(ctx context.Context, folder, newParent *models.Folder) error {
	var newParentID *string
	if newParent != nil {
		if newParent.ID == folder.ID {
			return &domain.InvalidOperationError{Message: "a folder cannot be its own parent"}
		}
		if newParent.Workspace != folder.Workspace {
			return &domain.InvalidOperationError{Message: "cannot move a folder into a different workspace"}
		}

		cycle, err := c.resolver.IsDescendant(ctx, newParent.ID, folder.ID)
		if err != nil {
			return err
		}
		if cycle {
			return &domain.InvalidOperationError{Message: "cannot move a folder into its own subtree"}
		}
		newParentID = &newParent.ID
	}

	existing, err := c.folderRepo.GetByNameAndParent(ctx, folder.Workspace, folder.Name, newParentID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != folder.ID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named '%s' already exists at the destination", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}
	return nil
}
