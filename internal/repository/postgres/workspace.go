package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"arbor/internal/domain/repositories"
)

// PostgresWorkspaceRegistry implements the WorkspaceRegistry interface
type PostgresWorkspaceRegistry struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewWorkspaceRegistry creates a new workspace registry
func NewWorkspaceRegistry(config *RepositoryConfig) repositories.WorkspaceRegistry {
	return &PostgresWorkspaceRegistry{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Exists reports whether a workspace with this name is registered
func (r *PostgresWorkspaceRegistry) Exists(ctx context.Context, name string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE name = $1)
	`, r.tables.Workspaces)

	var exists bool
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check workspace: %w", err)
	}

	return exists, nil
}
