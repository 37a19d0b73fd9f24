// Package folders implements the folder lifecycle: creation, rename,
// reparenting, deletion with note reassignment, and the listing views.
// Structural checks run inside the mutation's transaction; filesystem
// mirror updates happen after commit and never fail the request.
package folders

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"arbor/internal/config"
	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
	"arbor/internal/mirror"
)

// folderNamePattern rejects path separators inside a single folder name
var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

// reservedNames are claimed by the virtual views of the notes UI and can
// never be real folders
var reservedNames = map[string]bool{
	"Favorites": true,
	"Tags":      true,
	"Trash":     true,
	"Public":    true,
}

type service struct {
	folderRepo        repositories.FolderRepository
	workspaceReg      repositories.WorkspaceRegistry
	resolver          services.HierarchyResolver
	reassigner        *NoteReassigner
	txManager         repositories.TransactionManager
	mirror            *mirror.Mirror
	defaultFolderName string
	logger            *slog.Logger
}

// NewService creates a new folder service
func NewService(
	folderRepo repositories.FolderRepository,
	workspaceReg repositories.WorkspaceRegistry,
	resolver services.HierarchyResolver,
	reassigner *NoteReassigner,
	txManager repositories.TransactionManager,
	fsMirror *mirror.Mirror,
	defaultFolderName string,
	logger *slog.Logger,
) services.FolderService {
	return &service{
		folderRepo:        folderRepo,
		workspaceReg:      workspaceReg,
		resolver:          resolver,
		reassigner:        reassigner,
		txManager:         txManager,
		mirror:            fsMirror,
		defaultFolderName: defaultFolderName,
		logger:            logger,
	}
}

// CreateFolder creates a folder after checking the workspace, parent,
// depth, reserved names and sibling uniqueness
func (s *service) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}
	if reservedNames[req.Name] {
		return nil, &domain.InvalidOperationError{Message: fmt.Sprintf("'%s' is a reserved name", req.Name)}
	}

	exists, err := s.workspaceReg.Exists(ctx, req.Workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to check workspace: %w", err)
	}
	if !exists {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("workspace '%s' not found", req.Workspace)}
	}

	if req.ParentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Workspace != req.Workspace {
			return nil, &domain.InvalidOperationError{Message: "parent folder belongs to a different workspace"}
		}

		parentPath, err := s.resolver.ComputePath(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		if strings.Count(parentPath, "/")+1 >= config.MaxFolderDepth {
			return nil, &domain.InvalidOperationError{Message: "maximum folder nesting depth reached"}
		}
	}

	folder := &models.Folder{
		Workspace: req.Workspace,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Icon:      req.Icon,
		IconColor: req.IconColor,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	path, err := s.resolver.ComputePath(ctx, folder.ID)
	if err != nil {
		s.logger.Warn("failed to compute path for new folder", "folder_id", folder.ID, "error", err)
		path = folder.Name
	}
	folder.Path = path

	s.mirror.EnsureDirectory(folder.Workspace, folder.Path)

	s.logger.Info("folder created",
		"folder_id", folder.ID,
		"workspace", folder.Workspace,
		"path", folder.Path)
	return folder, nil
}

// GetFolder returns the folder with its computed path and direct children
func (s *service) GetFolder(ctx context.Context, id string) (*services.FolderContents, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.resolver.ComputePath(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	folder.Path = path

	children, err := s.folderRepo.ListChildren(ctx, folder.Workspace, &folder.ID)
	if err != nil {
		return nil, err
	}

	return &services.FolderContents{Folder: folder, Folders: children}, nil
}

// UpdateFolder renames and/or reparents a folder. The parent field uses
// tri-state semantics: absent keeps the parent, null moves to root.
func (s *service) UpdateFolder(ctx context.Context, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldPath, err := s.resolver.ComputePath(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	oldName := folder.Name

	var updated *models.Folder
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		newName := current.Name
		if req.Name != nil {
			newName = strings.TrimSpace(*req.Name)
			if err := s.validateRename(current, newName); err != nil {
				return err
			}
		}

		newParentID := current.ParentID
		if req.ParentID.Present {
			newParentID, err = s.validateReparent(txCtx, current, req.ParentID.Value)
			if err != nil {
				return err
			}
		}

		if err := s.checkSiblingConflict(txCtx, current, newName, newParentID); err != nil {
			return err
		}

		current.Name = newName
		current.ParentID = newParentID
		if req.Icon != nil {
			current.Icon = req.Icon
		}
		if req.IconColor != nil {
			current.IconColor = req.IconColor
		}
		if req.Kanban != nil {
			current.Kanban = *req.Kanban
		}
		if err := s.folderRepo.Update(txCtx, current); err != nil {
			return err
		}

		if newName != oldName {
			if _, err := s.reassigner.OnRename(txCtx, current.Workspace, oldName, newName); err != nil {
				return err
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	newPath, err := s.resolver.ComputePath(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	updated.Path = newPath

	if newPath != oldPath {
		s.mirror.EnsureDirectory(updated.Workspace, newPath)
		s.mirror.RemoveIfEmpty(updated.Workspace, oldPath)
	}

	s.logger.Info("folder updated",
		"folder_id", updated.ID,
		"workspace", updated.Workspace,
		"old_path", oldPath,
		"path", updated.Path)
	return updated, nil
}

// DeleteFolder removes the folder and its whole subtree. Every note in the
// subtree, trashed ones included, is reassigned to the workspace default
// folder before the rows go away.
func (s *service) DeleteFolder(ctx context.Context, id string) (*models.DeletionResult, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.Name == s.defaultFolderName && folder.ParentID == nil {
		return nil, &domain.InvalidOperationError{Message: fmt.Sprintf("the '%s' folder cannot be deleted", s.defaultFolderName)}
	}

	oldPath, err := s.resolver.ComputePath(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	descendants, err := s.resolver.CollectDescendantIDs(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	subtree := append([]string{folder.ID}, descendants...)

	result := &models.DeletionResult{ChildFoldersDeleted: len(descendants)}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		active, trashed, err := s.reassigner.OnFolderDeleted(txCtx, folder.Workspace, subtree)
		if err != nil {
			return err
		}
		result.NotesInActive = active
		result.NotesInTrash = trashed
		result.NotesMoved = active + trashed

		return s.folderRepo.Delete(txCtx, folder.ID)
	})
	if err != nil {
		return nil, err
	}

	result.PhysicalDirDeleted = s.mirror.RemoveIfEmpty(folder.Workspace, oldPath)

	s.logger.Info("folder deleted",
		"folder_id", folder.ID,
		"workspace", folder.Workspace,
		"path", oldPath,
		"notes_moved", result.NotesMoved,
		"child_folders", result.ChildFoldersDeleted)
	return result, nil
}

// validateRename enforces name rules on a rename: non-empty, no separator,
// not reserved, and the workspace default folder keeps its name
func (s *service) validateRename(folder *models.Folder, newName string) error {
	if err := validateFolderName(newName); err != nil {
		return err
	}
	if reservedNames[newName] {
		return &domain.InvalidOperationError{Message: fmt.Sprintf("'%s' is a reserved name", newName)}
	}
	if folder.Name == s.defaultFolderName && folder.ParentID == nil && newName != folder.Name {
		return &domain.InvalidOperationError{Message: fmt.Sprintf("the '%s' folder cannot be renamed", s.defaultFolderName)}
	}
	return nil
}

// validateReparent checks a parent change: existence, workspace, self and
// cycle. Returns the resolved new parent id (nil for root).
func (s *service) validateReparent(ctx context.Context, folder *models.Folder, newParentID *string) (*string, error) {
	if newParentID == nil {
		return nil, nil
	}
	if *newParentID == folder.ID {
		return nil, &domain.InvalidOperationError{Message: "a folder cannot be its own parent"}
	}

	parent, err := s.folderRepo.GetByID(ctx, *newParentID)
	if err != nil {
		return nil, err
	}
	if parent.Workspace != folder.Workspace {
		return nil, &domain.InvalidOperationError{Message: "cannot move a folder into a different workspace"}
	}

	cycle, err := s.resolver.IsDescendant(ctx, parent.ID, folder.ID)
	if err != nil {
		return nil, err
	}
	if cycle {
		return nil, &domain.InvalidOperationError{Message: "cannot move a folder into its own subtree"}
	}
	return &parent.ID, nil
}

// checkSiblingConflict rejects the update when another folder already holds
// the target name under the target parent
func (s *service) checkSiblingConflict(ctx context.Context, folder *models.Folder, name string, parentID *string) error {
	existing, err := s.folderRepo.GetByNameAndParent(ctx, folder.Workspace, name, parentID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != folder.ID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named '%s' already exists at this level", name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}
	return nil
}

func validateCreateRequest(req *services.CreateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Workspace,
			validation.Required,
			validation.Length(1, config.MaxWorkspaceNameLength)),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNamePattern).Error("must not contain '/'")),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

func validateFolderName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("must not contain '/'"))
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("name: %v", err)}
	}
	return nil
}
