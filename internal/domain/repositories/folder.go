package repositories

import (
	"context"

	"arbor/internal/domain/models"
)

// FolderRepository defines data access operations for folder rows. It is the
// only component allowed to read or write the folders table.
type FolderRepository interface {
	// Create inserts a new folder. Fails with domain.ErrConflict if a sibling
	// with the same name exists under the same parent in the same workspace.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetByNameAndParent finds a folder by name under a parent (nil = root)
	// within a workspace. Returns (nil, nil) when absent.
	GetByNameAndParent(ctx context.Context, workspace, name string, parentID *string) (*models.Folder, error)

	// Update persists name, parent and display attribute changes
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes a folder row; child rows cascade via the
	// self-referential foreign key
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders (parentID nil = root level),
	// ordered by name
	ListChildren(ctx context.Context, workspace string, parentID *string) ([]models.Folder, error)

	// ListByWorkspace retrieves all folders in a workspace, ordered by name
	ListByWorkspace(ctx context.Context, workspace string) ([]models.Folder, error)
}
