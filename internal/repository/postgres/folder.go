package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = "id, workspace, parent_id, name, icon, icon_color, kanban, created"

func scanFolder(row pgx.Row, folder *models.Folder) error {
	return row.Scan(
		&folder.ID,
		&folder.Workspace,
		&folder.ParentID,
		&folder.Name,
		&folder.Icon,
		&folder.IconColor,
		&folder.Kanban,
		&folder.CreatedAt,
	)
}

// Create inserts a new folder row. The duplicate check runs at the
// application level first because root-level NULL parents bypass the
// two-column unique index; the 23505 mapping below still catches races
// between concurrent creates under a concrete parent.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	existing, err := r.GetByNameAndParent(ctx, folder.Workspace, folder.Name, folder.ParentID)
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}

	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace, parent_id, name, icon, icon_color, kanban)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created
	`, r.tables.Folders)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.ID,
		folder.Workspace,
		folder.ParentID,
		folder.Name,
		folder.Icon,
		folder.IconColor,
		folder.Kanban,
	).Scan(&folder.CreatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id), &folder)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// GetByNameAndParent finds a folder by name under a parent within a
// workspace. Returns (nil, nil) when absent: a missing sibling is an
// expected lookup outcome, not an error. The NULL-parent branch exists
// because parent_id IS NULL cannot be expressed as an = comparison.
func (r *PostgresFolderRepository) GetByNameAndParent(ctx context.Context, workspace, name string, parentID *string) (*models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE workspace = $1 AND name = $2 AND parent_id IS NULL
		`, folderColumns, r.tables.Folders)
		args = append(args, workspace, name)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE workspace = $1 AND name = $2 AND parent_id = $3
		`, folderColumns, r.tables.Folders)
		args = append(args, workspace, name, *parentID)
	}

	var folder models.Folder
	err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, args...), &folder)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("get folder by name and parent: %w", err)
	}

	return &folder, nil
}

// Update persists name, parent and display attribute changes
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, icon = $3, icon_color = $4, kanban = $5
		WHERE id = $6
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.Icon,
		folder.IconColor,
		folder.Kanban,
		folder.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a folder row; children cascade via ON DELETE CASCADE
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %s is still referenced: %w", id, domain.ErrInvalidOperation)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders, ordered by name
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, workspace string, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE workspace = $1 AND parent_id IS NULL
			ORDER BY name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, workspace)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE workspace = $1 AND parent_id = $2
			ORDER BY name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, workspace, *parentID)
	}

	return r.queryFolders(ctx, query, args...)
}

// ListByWorkspace retrieves all folders in a workspace, ordered by name
func (r *PostgresFolderRepository) ListByWorkspace(ctx context.Context, workspace string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace = $1
		ORDER BY name ASC
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, query, workspace)
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := scanFolder(rows, &folder); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
