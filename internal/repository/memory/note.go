package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"arbor/internal/domain/models"
)

// NoteStore is an in-memory NoteStore.
type NoteStore struct {
	mu    sync.RWMutex
	notes map[string]*models.Note
}

// NewNoteStore creates an empty in-memory note store
func NewNoteStore() *NoteStore {
	return &NoteStore{notes: make(map[string]*models.Note)}
}

// Put inserts or replaces a note, assigning an id if missing
func (s *NoteStore) Put(note models.Note) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	stored := note
	s.notes[note.ID] = &stored
	return note.ID
}

// Get returns a copy of the note, or nil when absent
func (s *NoteStore) Get(id string) *models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return nil
	}
	copied := *n
	return &copied
}

func (s *NoteStore) ReassignToDefault(ctx context.Context, workspace string, folderIDs []string, defaultName string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := toSet(folderIDs)
	var active, trashed int
	for _, n := range s.notes {
		if n.Workspace != workspace || n.FolderID == nil || !ids[*n.FolderID] {
			continue
		}
		if n.Trash {
			trashed++
		} else {
			active++
		}
		n.FolderID = nil
		n.Folder = defaultName
		n.UpdatedAt = time.Now()
	}
	return active, trashed, nil
}

func (s *NoteStore) MoveToTrash(ctx context.Context, workspace, folderID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, n := range s.notes {
		if n.Workspace == workspace && !n.Trash && n.FolderID != nil && *n.FolderID == folderID {
			n.Trash = true
			n.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (s *NoteStore) MoveAll(ctx context.Context, workspace, sourceFolderID, targetFolderID, targetFolderName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, n := range s.notes {
		if n.Workspace == workspace && !n.Trash && n.FolderID != nil && *n.FolderID == sourceFolderID {
			target := targetFolderID
			n.FolderID = &target
			n.Folder = targetFolderName
			n.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (s *NoteStore) RenameFolderRef(ctx context.Context, workspace, oldName, newName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, n := range s.notes {
		if n.Workspace == workspace && n.Folder == oldName {
			n.Folder = newName
			n.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

func (s *NoteStore) CountByFolder(ctx context.Context, workspace, folderID string, includeTrash bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	for _, n := range s.notes {
		if n.Workspace != workspace || n.FolderID == nil || *n.FolderID != folderID {
			continue
		}
		if n.Trash && !includeTrash {
			continue
		}
		count++
	}
	return count, nil
}

func (s *NoteStore) CountsByFolder(ctx context.Context, workspace string) (map[string]int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	var unfiled int
	for _, n := range s.notes {
		if n.Workspace != workspace || n.Trash {
			continue
		}
		if n.FolderID == nil {
			unfiled++
		} else {
			counts[*n.FolderID]++
		}
	}
	return counts, unfiled, nil
}

func (s *NoteStore) ListByFolders(ctx context.Context, workspace string, folderIDs []string) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := toSet(folderIDs)
	var notes []models.Note
	for _, n := range s.notes {
		if n.Workspace == workspace && !n.Trash && n.FolderID != nil && ids[*n.FolderID] {
			notes = append(notes, *n)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if *notes[i].FolderID != *notes[j].FolderID {
			return *notes[i].FolderID < *notes[j].FolderID
		}
		return notes[i].Heading < notes[j].Heading
	})
	return notes, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
