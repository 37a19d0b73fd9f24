package hierarchy

import (
	"context"
	"errors"
	"testing"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/repository/memory"
)

func strPtr(s string) *string { return &s }

// seedTree builds Main workspace with:
//
//	Projects/
//	  Work/
//	    Reports/
//	  Personal/
//	Archive/
func seedTree(t *testing.T, repo *memory.FolderRepository) map[string]*models.Folder {
	t.Helper()
	ctx := context.Background()

	folders := map[string]*models.Folder{
		"projects": {ID: "f-projects", Workspace: "Main", Name: "Projects"},
		"work":     {ID: "f-work", Workspace: "Main", Name: "Work", ParentID: strPtr("f-projects")},
		"reports":  {ID: "f-reports", Workspace: "Main", Name: "Reports", ParentID: strPtr("f-work")},
		"personal": {ID: "f-personal", Workspace: "Main", Name: "Personal", ParentID: strPtr("f-projects")},
		"archive":  {ID: "f-archive", Workspace: "Main", Name: "Archive"},
	}
	for _, key := range []string{"projects", "work", "reports", "personal", "archive"} {
		if err := repo.Create(ctx, folders[key]); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	return folders
}

func TestComputePath(t *testing.T) {
	repo := memory.NewFolderRepository()
	seedTree(t, repo)
	resolver := NewResolver(repo)
	ctx := context.Background()

	tests := []struct {
		name     string
		folderID string
		want     string
	}{
		{"root folder", "f-projects", "Projects"},
		{"one level deep", "f-work", "Projects/Work"},
		{"two levels deep", "f-reports", "Projects/Work/Reports"},
		{"sibling branch", "f-personal", "Projects/Personal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ComputePath(ctx, tt.folderID)
			if err != nil {
				t.Fatalf("ComputePath: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputePath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputePathCycleGuard(t *testing.T) {
	repo := memory.NewFolderRepository()
	ctx := context.Background()

	// Two folders pointing at each other; the depth guard must trip
	// instead of looping forever.
	a := &models.Folder{ID: "f-a", Workspace: "Main", Name: "A"}
	b := &models.Folder{ID: "f-b", Workspace: "Main", Name: "B", ParentID: strPtr("f-a")}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatal(err)
	}
	a.ParentID = strPtr("f-b")
	if err := repo.Update(ctx, a); err != nil {
		t.Fatal(err)
	}

	resolver := NewResolver(repo)
	_, err := resolver.ComputePath(ctx, "f-a")
	if !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("expected ErrDepthExceeded, got %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	repo := memory.NewFolderRepository()
	seedTree(t, repo)
	resolver := NewResolver(repo)
	ctx := context.Background()

	tests := []struct {
		name    string
		path    string
		wantID  string
		wantErr error
	}{
		{"root folder", "Projects", "f-projects", nil},
		{"nested folder", "Projects/Work/Reports", "f-reports", nil},
		{"extra slashes tolerated", "/Projects/Work/", "f-work", nil},
		{"case-sensitive miss", "projects", "", domain.ErrNotFound},
		{"missing intermediate segment", "Projects/Missing/Reports", "", domain.ErrNotFound},
		{"empty path", "", "", domain.ErrNotFound},
		{"slashes only", "///", "", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folder, err := resolver.ResolvePath(ctx, "Main", tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePath: %v", err)
			}
			if folder.ID != tt.wantID {
				t.Errorf("resolved %s, want %s", folder.ID, tt.wantID)
			}
		})
	}
}

func TestResolvePathWorkspaceIsolation(t *testing.T) {
	repo := memory.NewFolderRepository()
	seedTree(t, repo)
	resolver := NewResolver(repo)
	ctx := context.Background()

	_, err := resolver.ResolvePath(ctx, "Other", "Projects")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found in other workspace, got %v", err)
	}
}

func TestIsDescendant(t *testing.T) {
	repo := memory.NewFolderRepository()
	seedTree(t, repo)
	resolver := NewResolver(repo)
	ctx := context.Background()

	tests := []struct {
		name        string
		candidateID string
		folderID    string
		want        bool
	}{
		{"direct child", "f-work", "f-projects", true},
		{"grandchild", "f-reports", "f-projects", true},
		{"self", "f-projects", "f-projects", true},
		{"parent is not a descendant", "f-projects", "f-work", false},
		{"unrelated branch", "f-archive", "f-projects", false},
		{"sibling", "f-personal", "f-work", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.IsDescendant(ctx, tt.candidateID, tt.folderID)
			if err != nil {
				t.Fatalf("IsDescendant: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsDescendant(%s, %s) = %v, want %v", tt.candidateID, tt.folderID, got, tt.want)
			}
		})
	}
}

func TestCollectDescendantIDs(t *testing.T) {
	repo := memory.NewFolderRepository()
	seedTree(t, repo)
	resolver := NewResolver(repo)
	ctx := context.Background()

	ids, err := resolver.CollectDescendantIDs(ctx, "f-projects")
	if err != nil {
		t.Fatalf("CollectDescendantIDs: %v", err)
	}

	want := map[string]bool{"f-work": true, "f-personal": true, "f-reports": true}
	if len(ids) != len(want) {
		t.Fatalf("got %d descendants %v, want %d", len(ids), ids, len(want))
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected descendant %s", id)
		}
		if id == "f-projects" {
			t.Error("subtree root must not be included in its own descendants")
		}
	}
}

func TestCollectDescendantIDsLeaf(t *testing.T) {
	repo := memory.NewFolderRepository()
	seedTree(t, repo)
	resolver := NewResolver(repo)

	ids, err := resolver.CollectDescendantIDs(context.Background(), "f-archive")
	if err != nil {
		t.Fatalf("CollectDescendantIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("leaf folder should have no descendants, got %v", ids)
	}
}
