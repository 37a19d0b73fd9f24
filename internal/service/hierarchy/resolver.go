// Package hierarchy implements the tree algorithms over the folder store:
// path computation in both directions, ancestor walks and reparenting.
// Nothing here caches tree state across requests; every call re-reads the
// store, so the database stays the single source of truth.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"arbor/internal/config"
	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
)

// ErrDepthExceeded reports a parent_id chain longer than the depth guard.
// It means a cycle or corruption slipped into the data; walks fail fast
// instead of looping.
var ErrDepthExceeded = errors.New("folder tree depth guard exceeded")

type resolver struct {
	folderRepo repositories.FolderRepository
}

// NewResolver creates a new hierarchy resolver
func NewResolver(folderRepo repositories.FolderRepository) services.HierarchyResolver {
	return &resolver{folderRepo: folderRepo}
}

// ComputePath walks parent_id upward from the folder, accumulating names,
// and joins them root-first with "/"
func (r *resolver) ComputePath(ctx context.Context, folderID string) (string, error) {
	var segments []string
	currentID := &folderID

	for depth := 0; currentID != nil; depth++ {
		if depth >= config.MaxFolderDepth {
			return "", fmt.Errorf("folder %s: %w", folderID, ErrDepthExceeded)
		}

		folder, err := r.folderRepo.GetByID(ctx, *currentID)
		if err != nil {
			return "", err
		}

		// Prepend this folder's name
		segments = append([]string{folder.Name}, segments...)
		currentID = folder.ParentID
	}

	return strings.Join(segments, "/"), nil
}

// ResolvePath resolves a slash-separated path to a folder, walking segment
// by segment from the root level. Matching is case-sensitive and exact;
// missing folders are never created.
func (r *resolver) ResolvePath(ctx context.Context, workspace, path string) (*models.Folder, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, fmt.Errorf("empty folder path: %w", domain.ErrNotFound)
	}

	var current *models.Folder
	var currentParentID *string

	for _, segment := range segments {
		folder, err := r.folderRepo.GetByNameAndParent(ctx, workspace, segment, currentParentID)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, fmt.Errorf("folder at path %q: %w", path, domain.ErrNotFound)
		}
		current = folder
		currentParentID = &folder.ID
	}

	return current, nil
}

// IsDescendant walks upward from candidateID and reports whether folderID
// is encountered. The walk starts at the candidate itself, so a folder is
// considered a descendant of itself.
func (r *resolver) IsDescendant(ctx context.Context, candidateID, folderID string) (bool, error) {
	currentID := &candidateID

	for depth := 0; currentID != nil; depth++ {
		if depth >= config.MaxFolderDepth {
			return false, fmt.Errorf("folder %s: %w", candidateID, ErrDepthExceeded)
		}

		if *currentID == folderID {
			return true, nil
		}

		folder, err := r.folderRepo.GetByID(ctx, *currentID)
		if err != nil {
			return false, err
		}
		currentID = folder.ParentID
	}

	return false, nil
}

// CollectDescendantIDs enumerates every folder in the subtree below
// folderID, breadth-first
func (r *resolver) CollectDescendantIDs(ctx context.Context, folderID string) ([]string, error) {
	folder, err := r.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var descendants []string
	frontier := []string{folder.ID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= config.MaxFolderDepth {
			return nil, fmt.Errorf("folder %s: %w", folderID, ErrDepthExceeded)
		}

		var next []string
		for _, id := range frontier {
			children, err := r.folderRepo.ListChildren(ctx, folder.Workspace, &id)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				descendants = append(descendants, child.ID)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}

	return descendants, nil
}

// splitPath splits a path into its non-empty trimmed segments
func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
