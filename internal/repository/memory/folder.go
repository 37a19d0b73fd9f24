// Package memory provides in-memory implementations of the repository
// interfaces. Rows live in maps keyed by id with traversal by repeated
// lookup, mirroring the relational layout closely enough that the hierarchy
// services can be exercised in tests without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
)

// FolderRepository is an in-memory FolderRepository.
type FolderRepository struct {
	mu      sync.RWMutex
	folders map[string]*models.Folder
}

// NewFolderRepository creates an empty in-memory folder repository
func NewFolderRepository() *FolderRepository {
	return &FolderRepository{folders: make(map[string]*models.Folder)}
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.Workspace == folder.Workspace && f.Name == folder.Name && sameParent(f.ParentID, folder.ParentID) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}

	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}

	stored := *folder
	r.folders[folder.ID] = &stored
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := *f
	return &copied, nil
}

func (r *FolderRepository) GetByNameAndParent(ctx context.Context, workspace, name string, parentID *string) (*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.folders {
		if f.Workspace == workspace && f.Name == name && sameParent(f.ParentID, parentID) {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	stored := *folder
	r.folders[folder.ID] = &stored
	return nil
}

// Delete removes the folder and, like the database cascade, every folder
// whose ancestor chain includes it.
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	doomed := map[string]bool{id: true}
	// Children may be discovered in any order; iterate until stable
	for changed := true; changed; {
		changed = false
		for fid, f := range r.folders {
			if doomed[fid] || f.ParentID == nil {
				continue
			}
			if doomed[*f.ParentID] {
				doomed[fid] = true
				changed = true
			}
		}
	}

	for fid := range doomed {
		delete(r.folders, fid)
	}
	return nil
}

func (r *FolderRepository) ListChildren(ctx context.Context, workspace string, parentID *string) ([]models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var children []models.Folder
	for _, f := range r.folders {
		if f.Workspace == workspace && sameParent(f.ParentID, parentID) {
			children = append(children, *f)
		}
	}
	sortByName(children)
	return children, nil
}

func (r *FolderRepository) ListByWorkspace(ctx context.Context, workspace string) ([]models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var folders []models.Folder
	for _, f := range r.folders {
		if f.Workspace == workspace {
			folders = append(folders, *f)
		}
	}
	sortByName(folders)
	return folders, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sortByName(folders []models.Folder) {
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
}

// TransactionManager is a no-op transaction manager for in-memory stores.
type TransactionManager struct{}

// NewTransactionManager creates a no-op transaction manager
func NewTransactionManager() repositories.TransactionManager {
	return &TransactionManager{}
}

// ExecTx runs fn directly; in-memory mutations are already atomic per call
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// WorkspaceRegistry is an in-memory WorkspaceRegistry.
type WorkspaceRegistry struct {
	mu    sync.RWMutex
	names map[string]bool
}

// NewWorkspaceRegistry creates a registry containing the given workspaces
func NewWorkspaceRegistry(names ...string) *WorkspaceRegistry {
	reg := &WorkspaceRegistry{names: make(map[string]bool)}
	for _, n := range names {
		reg.names[n] = true
	}
	return reg
}

// Add registers a workspace
func (r *WorkspaceRegistry) Add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[name] = true
}

// Exists reports whether a workspace with this name is registered
func (r *WorkspaceRegistry) Exists(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[name], nil
}
