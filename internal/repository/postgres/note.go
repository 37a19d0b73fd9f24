package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
)

// PostgresNoteStore implements the NoteStore interface against the notes
// table owned by the notes subsystem. Only folder-reference columns and the
// trash flag are ever written here.
type PostgresNoteStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNoteStore creates a new note store
func NewNoteStore(config *RepositoryConfig) repositories.NoteStore {
	return &PostgresNoteStore{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ReassignToDefault moves every note referencing one of folderIDs to the
// workspace default folder
func (s *PostgresNoteStore) ReassignToDefault(ctx context.Context, workspace string, folderIDs []string, defaultName string) (int, int, error) {
	if len(folderIDs) == 0 {
		return 0, 0, nil
	}

	exec := GetExecutor(ctx, s.pool)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FILTER (WHERE NOT trash), COUNT(*) FILTER (WHERE trash)
		FROM %s
		WHERE workspace = $1 AND folder_id = ANY($2)
	`, s.tables.Notes)

	var active, trashed int
	if err := exec.QueryRow(ctx, countQuery, workspace, folderIDs).Scan(&active, &trashed); err != nil {
		return 0, 0, fmt.Errorf("count notes to reassign: %w", err)
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = NULL, folder = $3, updated = NOW()
		WHERE workspace = $1 AND folder_id = ANY($2)
	`, s.tables.Notes)

	if _, err := exec.Exec(ctx, updateQuery, workspace, folderIDs, defaultName); err != nil {
		return 0, 0, fmt.Errorf("reassign notes: %w", err)
	}

	return active, trashed, nil
}

// MoveToTrash marks every non-trashed note directly in the folder as trashed
func (s *PostgresNoteStore) MoveToTrash(ctx context.Context, workspace, folderID string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET trash = TRUE, updated = NOW()
		WHERE workspace = $1 AND folder_id = $2 AND NOT trash
	`, s.tables.Notes)

	result, err := GetExecutor(ctx, s.pool).Exec(ctx, query, workspace, folderID)
	if err != nil {
		return 0, fmt.Errorf("trash notes: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// MoveAll reassigns every non-trashed note from source to target
func (s *PostgresNoteStore) MoveAll(ctx context.Context, workspace, sourceFolderID, targetFolderID, targetFolderName string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $3, folder = $4, updated = NOW()
		WHERE workspace = $1 AND folder_id = $2 AND NOT trash
	`, s.tables.Notes)

	result, err := GetExecutor(ctx, s.pool).Exec(ctx, query, workspace, sourceFolderID, targetFolderID, targetFolderName)
	if err != nil {
		return 0, fmt.Errorf("move notes: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// RenameFolderRef updates the denormalized folder name cache. Notes holding
// an id reference are untouched by renames; this only serves legacy
// name-based lookups.
func (s *PostgresNoteStore) RenameFolderRef(ctx context.Context, workspace, oldName, newName string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder = $3, updated = NOW()
		WHERE workspace = $1 AND folder = $2
	`, s.tables.Notes)

	result, err := GetExecutor(ctx, s.pool).Exec(ctx, query, workspace, oldName, newName)
	if err != nil {
		return 0, fmt.Errorf("rename folder reference: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// CountByFolder counts notes directly in a folder
func (s *PostgresNoteStore) CountByFolder(ctx context.Context, workspace, folderID string, includeTrash bool) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE workspace = $1 AND folder_id = $2
	`, s.tables.Notes)
	if !includeTrash {
		query += " AND NOT trash"
	}

	var count int
	if err := GetExecutor(ctx, s.pool).QueryRow(ctx, query, workspace, folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}

	return count, nil
}

// CountsByFolder returns the non-trashed note count per folder id plus the
// count of unfiled notes
func (s *PostgresNoteStore) CountsByFolder(ctx context.Context, workspace string) (map[string]int, int, error) {
	exec := GetExecutor(ctx, s.pool)

	query := fmt.Sprintf(`
		SELECT folder_id, COUNT(*)
		FROM %s
		WHERE workspace = $1 AND NOT trash AND folder_id IS NOT NULL
		GROUP BY folder_id
	`, s.tables.Notes)

	rows, err := exec.Query(ctx, query, workspace)
	if err != nil {
		return nil, 0, fmt.Errorf("count notes by folder: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var folderID string
		var count int
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, 0, fmt.Errorf("scan folder count: %w", err)
		}
		counts[folderID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate folder counts: %w", err)
	}

	unfiledQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE workspace = $1 AND NOT trash AND folder_id IS NULL
	`, s.tables.Notes)

	var unfiled int
	if err := exec.QueryRow(ctx, unfiledQuery, workspace).Scan(&unfiled); err != nil {
		return nil, 0, fmt.Errorf("count unfiled notes: %w", err)
	}

	return counts, unfiled, nil
}

// ListByFolders retrieves non-trashed notes in any of the given folders,
// ordered by folder then heading
func (s *PostgresNoteStore) ListByFolders(ctx context.Context, workspace string, folderIDs []string) ([]models.Note, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, workspace, folder_id, folder, heading, content, type, tags, favorite, trash, created, updated
		FROM %s
		WHERE workspace = $1 AND NOT trash AND folder_id = ANY($2)
		ORDER BY folder_id, heading
	`, s.tables.Notes)

	rows, err := GetExecutor(ctx, s.pool).Query(ctx, query, workspace, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		err := rows.Scan(
			&note.ID,
			&note.Workspace,
			&note.FolderID,
			&note.Folder,
			&note.Heading,
			&note.Content,
			&note.Type,
			&note.Tags,
			&note.Favorite,
			&note.Trash,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}
