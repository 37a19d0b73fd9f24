package folders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
	"arbor/internal/httputil"
	"arbor/internal/mirror"
	"arbor/internal/repository/memory"
	"arbor/internal/service/hierarchy"
)

const defaultFolder = "Uncategorized"

type fixture struct {
	svc     services.FolderService
	folders *memory.FolderRepository
	notes   *memory.NoteStore
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	folderRepo := memory.NewFolderRepository()
	noteStore := memory.NewNoteStore()
	reg := memory.NewWorkspaceRegistry("Main", "Side")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := hierarchy.NewResolver(folderRepo)
	reassigner := NewNoteReassigner(noteStore, defaultFolder, logger)
	fsMirror := mirror.New(t.TempDir(), logger)

	svc := NewService(folderRepo, reg, resolver, reassigner,
		memory.NewTransactionManager(), fsMirror, defaultFolder, logger)
	return &fixture{svc: svc, folders: folderRepo, notes: noteStore}
}

// seed creates Projects/Work in Main and returns their ids
func (f *fixture) seed(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()

	projects := &models.Folder{ID: "f-projects", Workspace: "Main", Name: "Projects"}
	work := &models.Folder{ID: "f-work", Workspace: "Main", Name: "Work", ParentID: strPtr("f-projects")}
	for _, folder := range []*models.Folder{projects, work} {
		if err := f.folders.Create(ctx, folder); err != nil {
			t.Fatal(err)
		}
	}
	return projects.ID, work.ID
}

func TestCreateFolder(t *testing.T) {
	f := newFixture(t)
	projectsID, _ := f.seed(t)
	ctx := context.Background()

	folder, err := f.svc.CreateFolder(ctx, &services.CreateFolderRequest{
		Workspace: "Main",
		Name:      "Drafts",
		ParentID:  &projectsID,
	})
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if folder.ID == "" {
		t.Error("expected a generated id")
	}
	if folder.Path != "Projects/Drafts" {
		t.Errorf("path = %q, want Projects/Drafts", folder.Path)
	}
}

func TestCreateFolderTrimsName(t *testing.T) {
	f := newFixture(t)

	folder, err := f.svc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		Workspace: "Main",
		Name:      "  Drafts  ",
	})
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if folder.Name != "Drafts" {
		t.Errorf("name = %q, want trimmed", folder.Name)
	}
}

func TestCreateFolderErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     *services.CreateFolderRequest
		wantErr error
	}{
		{
			"empty name",
			&services.CreateFolderRequest{Workspace: "Main", Name: "   "},
			domain.ErrValidation,
		},
		{
			"name with separator",
			&services.CreateFolderRequest{Workspace: "Main", Name: "a/b"},
			domain.ErrValidation,
		},
		{
			"missing workspace field",
			&services.CreateFolderRequest{Name: "Drafts"},
			domain.ErrValidation,
		},
		{
			"unknown workspace",
			&services.CreateFolderRequest{Workspace: "Ghost", Name: "Drafts"},
			domain.ErrNotFound,
		},
		{
			"reserved name",
			&services.CreateFolderRequest{Workspace: "Main", Name: "Trash"},
			domain.ErrInvalidOperation,
		},
		{
			"duplicate sibling",
			&services.CreateFolderRequest{Workspace: "Main", Name: "Projects"},
			domain.ErrConflict,
		},
		{
			"missing parent",
			&services.CreateFolderRequest{Workspace: "Main", Name: "Drafts", ParentID: strPtr("f-nope")},
			domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t)
			_, err := f.svc.CreateFolder(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateFolderCrossWorkspaceParent(t *testing.T) {
	f := newFixture(t)
	projectsID, _ := f.seed(t)

	_, err := f.svc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		Workspace: "Side",
		Name:      "Drafts",
		ParentID:  &projectsID,
	})
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("expected invalid operation, got %v", err)
	}
}

func TestCreateFolderDuplicateUnderDifferentParents(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)
	ctx := context.Background()

	// Same name under two different parents is allowed.
	for _, parent := range []*string{&projectsID, &workID} {
		if _, err := f.svc.CreateFolder(ctx, &services.CreateFolderRequest{
			Workspace: "Main", Name: "Drafts", ParentID: parent,
		}); err != nil {
			t.Fatalf("CreateFolder under %v: %v", *parent, err)
		}
	}
}

func TestGetFolder(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)

	contents, err := f.svc.GetFolder(context.Background(), projectsID)
	if err != nil {
		t.Fatalf("GetFolder: %v", err)
	}
	if contents.Folder.Path != "Projects" {
		t.Errorf("path = %q", contents.Folder.Path)
	}
	if len(contents.Folders) != 1 || contents.Folders[0].ID != workID {
		t.Errorf("children = %v, want [%s]", contents.Folders, workID)
	}
}

func TestUpdateFolderRename(t *testing.T) {
	f := newFixture(t)
	_, workID := f.seed(t)
	ctx := context.Background()

	noteID := f.notes.Put(models.Note{
		Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "Minutes",
	})

	updated, err := f.svc.UpdateFolder(ctx, workID, &services.UpdateFolderRequest{
		Name: strPtr("Work Archive"),
	})
	if err != nil {
		t.Fatalf("UpdateFolder: %v", err)
	}
	if updated.Name != "Work Archive" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.Path != "Projects/Work Archive" {
		t.Errorf("path = %q", updated.Path)
	}

	// The denormalized folder name on notes follows the rename.
	if note := f.notes.Get(noteID); note.Folder != "Work Archive" {
		t.Errorf("note folder ref = %q, want Work Archive", note.Folder)
	}
}

func TestUpdateFolderMoveToRoot(t *testing.T) {
	f := newFixture(t)
	_, workID := f.seed(t)

	updated, err := f.svc.UpdateFolder(context.Background(), workID, &services.UpdateFolderRequest{
		ParentID: httputil.OptionalString{Present: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("UpdateFolder: %v", err)
	}
	if updated.ParentID != nil {
		t.Errorf("parent = %v, want root", *updated.ParentID)
	}
	if updated.Path != "Work" {
		t.Errorf("path = %q, want Work", updated.Path)
	}
}

func TestUpdateFolderAbsentParentKeepsParent(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)

	updated, err := f.svc.UpdateFolder(context.Background(), workID, &services.UpdateFolderRequest{
		Name: strPtr("Renamed"),
	})
	if err != nil {
		t.Fatalf("UpdateFolder: %v", err)
	}
	if updated.ParentID == nil || *updated.ParentID != projectsID {
		t.Error("parent must be unchanged when the field is absent")
	}
}

func TestUpdateFolderDisplayAttributes(t *testing.T) {
	f := newFixture(t)
	_, workID := f.seed(t)
	kanban := true

	updated, err := f.svc.UpdateFolder(context.Background(), workID, &services.UpdateFolderRequest{
		Icon:      strPtr("briefcase"),
		IconColor: strPtr("#336699"),
		Kanban:    &kanban,
	})
	if err != nil {
		t.Fatalf("UpdateFolder: %v", err)
	}
	if updated.Icon == nil || *updated.Icon != "briefcase" {
		t.Errorf("icon = %v", updated.Icon)
	}
	if updated.IconColor == nil || *updated.IconColor != "#336699" {
		t.Errorf("icon color = %v", updated.IconColor)
	}
	if !updated.Kanban {
		t.Error("kanban flag not set")
	}
	if updated.Name != "Work" {
		t.Error("name must be unchanged")
	}
}

func TestUpdateFolderErrors(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)
	ctx := context.Background()

	// A second root folder to collide with.
	if err := f.folders.Create(ctx, &models.Folder{
		ID: "f-archive", Workspace: "Main", Name: "Archive",
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		req     *services.UpdateFolderRequest
		wantErr error
	}{
		{
			"not found",
			"f-nope",
			&services.UpdateFolderRequest{Name: strPtr("X")},
			domain.ErrNotFound,
		},
		{
			"reserved name",
			workID,
			&services.UpdateFolderRequest{Name: strPtr("Favorites")},
			domain.ErrInvalidOperation,
		},
		{
			"name with separator",
			workID,
			&services.UpdateFolderRequest{Name: strPtr("a/b")},
			domain.ErrValidation,
		},
		{
			"self parent",
			workID,
			&services.UpdateFolderRequest{ParentID: httputil.OptionalString{Present: true, Value: strPtr(workID)}},
			domain.ErrInvalidOperation,
		},
		{
			"cycle",
			projectsID,
			&services.UpdateFolderRequest{ParentID: httputil.OptionalString{Present: true, Value: strPtr(workID)}},
			domain.ErrInvalidOperation,
		},
		{
			"sibling conflict at destination",
			workID,
			&services.UpdateFolderRequest{
				Name:     strPtr("Archive"),
				ParentID: httputil.OptionalString{Present: true, Value: nil},
			},
			domain.ErrConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateFolder(ctx, tt.id, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUpdateFolderProtectedDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.folders.Create(ctx, &models.Folder{
		ID: "f-default", Workspace: "Main", Name: defaultFolder,
	}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.UpdateFolder(ctx, "f-default", &services.UpdateFolderRequest{
		Name: strPtr("Misc"),
	})
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("expected invalid operation, got %v", err)
	}
}

func TestDeleteFolderReassignsSubtreeNotes(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)
	ctx := context.Background()

	activeID := f.notes.Put(models.Note{Workspace: "Main", FolderID: &projectsID, Folder: "Projects", Heading: "A"})
	nestedID := f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "B"})
	trashedID := f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "C", Trash: true})

	result, err := f.svc.DeleteFolder(ctx, projectsID)
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if result.NotesMoved != 3 || result.NotesInActive != 2 || result.NotesInTrash != 1 {
		t.Errorf("counts = %+v", result)
	}
	if result.ChildFoldersDeleted != 1 {
		t.Errorf("child folders deleted = %d, want 1", result.ChildFoldersDeleted)
	}

	// Folders are gone, notes survive in the default folder.
	if _, err := f.folders.GetByID(ctx, workID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("child folder should be deleted")
	}
	for _, id := range []string{activeID, nestedID, trashedID} {
		note := f.notes.Get(id)
		if note.FolderID != nil {
			t.Errorf("note %s still points at a folder", id)
		}
		if note.Folder != defaultFolder {
			t.Errorf("note %s folder ref = %q, want %q", id, note.Folder, defaultFolder)
		}
	}

	trashed := f.notes.Get(trashedID)
	if !trashed.Trash {
		t.Error("trashed note must stay in trash after reassignment")
	}
}

func TestDeleteDefaultFolderRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.folders.Create(ctx, &models.Folder{
		ID: "f-default", Workspace: "Main", Name: defaultFolder,
	}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.DeleteFolder(ctx, "f-default")
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("expected invalid operation, got %v", err)
	}
}

func TestEmptyFolder(t *testing.T) {
	f := newFixture(t)
	_, workID := f.seed(t)
	ctx := context.Background()

	a := f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "A"})
	f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "B", Trash: true})

	count, err := f.svc.EmptyFolder(ctx, workID)
	if err != nil {
		t.Fatalf("EmptyFolder: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (already-trashed note not recounted)", count)
	}
	if !f.notes.Get(a).Trash {
		t.Error("note should be in trash")
	}
}

func TestMoveFolderFiles(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)
	ctx := context.Background()

	noteID := f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "A"})

	count, err := f.svc.MoveFolderFiles(ctx, workID, projectsID)
	if err != nil {
		t.Fatalf("MoveFolderFiles: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	note := f.notes.Get(noteID)
	if note.FolderID == nil || *note.FolderID != projectsID {
		t.Error("note did not move")
	}
	if note.Folder != "Projects" {
		t.Errorf("denormalized folder = %q, want Projects", note.Folder)
	}
}

func TestMoveFolderFilesSameFolder(t *testing.T) {
	f := newFixture(t)
	_, workID := f.seed(t)

	_, err := f.svc.MoveFolderFiles(context.Background(), workID, workID)
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("expected invalid operation, got %v", err)
	}
}

func TestMoveFolderFilesEmptySource(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)
	ctx := context.Background()

	f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "A", Trash: true})

	_, err := f.svc.MoveFolderFiles(ctx, workID, projectsID)
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("expected invalid operation for empty source, got %v", err)
	}
}

func TestCountNotes(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)
	ctx := context.Background()

	f.notes.Put(models.Note{Workspace: "Main", FolderID: &projectsID, Folder: "Projects", Heading: "A"})
	f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "B"})
	f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "C", Trash: true})

	stats, err := f.svc.CountNotes(ctx, projectsID)
	if err != nil {
		t.Fatalf("CountNotes: %v", err)
	}
	if stats.NoteCount != 2 {
		t.Errorf("note count = %d, want 2 (trash excluded)", stats.NoteCount)
	}
	if stats.SubfolderCount != 1 {
		t.Errorf("subfolder count = %d, want 1", stats.SubfolderCount)
	}
}

func TestListFolders(t *testing.T) {
	f := newFixture(t)
	projectsID, _ := f.seed(t)
	ctx := context.Background()

	if err := f.folders.Create(ctx, &models.Folder{
		ID: "f-alpha", Workspace: "Main", Name: "alpha",
	}); err != nil {
		t.Fatal(err)
	}
	f.notes.Put(models.Note{Workspace: "Main", FolderID: &projectsID, Folder: "Projects", Heading: "A"})
	f.notes.Put(models.Note{Workspace: "Main", Folder: defaultFolder, Heading: "Unfiled"})

	list, err := f.svc.ListFolders(ctx, "Main")
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}

	// Case-insensitive name order: alpha, Projects, Work.
	wantOrder := []string{"alpha", "Projects", "Work"}
	if len(list.Folders) != len(wantOrder) {
		t.Fatalf("got %d folders", len(list.Folders))
	}
	for i, want := range wantOrder {
		if list.Folders[i].Name != want {
			t.Errorf("folder[%d] = %q, want %q", i, list.Folders[i].Name, want)
		}
	}
	if list.Folders[1].NoteCount != 1 {
		t.Errorf("Projects note count = %d, want 1", list.Folders[1].NoteCount)
	}
	if list.UncategorizedNotes != 1 {
		t.Errorf("uncategorized = %d, want 1", list.UncategorizedNotes)
	}
}

func TestListFolderTree(t *testing.T) {
	f := newFixture(t)
	projectsID, workID := f.seed(t)
	ctx := context.Background()

	f.notes.Put(models.Note{Workspace: "Main", FolderID: &workID, Folder: "Work", Heading: "A"})

	tree, err := f.svc.ListFolderTree(ctx, "Main")
	if err != nil {
		t.Fatalf("ListFolderTree: %v", err)
	}
	if len(tree) != 1 || tree[0].ID != projectsID {
		t.Fatalf("roots = %v", tree)
	}
	if len(tree[0].Folders) != 1 || tree[0].Folders[0].ID != workID {
		t.Fatalf("children of Projects = %v", tree[0].Folders)
	}
	if tree[0].Folders[0].NoteCount != 1 {
		t.Errorf("Work note count = %d, want 1", tree[0].Folders[0].NoteCount)
	}
}

func TestListFoldersUnknownWorkspace(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListFolders(context.Background(), "Ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
