package models

import (
	"time"
)

// Folder is a row in the folders table. ParentID is nil for root-level
// folders; a non-nil parent always belongs to the same workspace.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Workspace string    `json:"workspace" db:"workspace"`
	ParentID  *string   `json:"parent_id" db:"parent_id"`
	Name      string    `json:"name" db:"name"`
	Path      string    `json:"path,omitempty"` // Computed display path, not stored in DB
	Icon      *string   `json:"icon,omitempty" db:"icon"`
	IconColor *string   `json:"icon_color,omitempty" db:"icon_color"`
	Kanban    bool      `json:"kanban" db:"kanban"`
	CreatedAt time.Time `json:"created" db:"created"`
}

// DeletionResult reports what a folder deletion touched.
type DeletionResult struct {
	NotesMoved          int  `json:"notes_moved"`
	NotesInActive       int  `json:"notes_in_active"`
	NotesInTrash        int  `json:"notes_in_trash"`
	ChildFoldersDeleted int  `json:"child_folders_deleted"`
	PhysicalDirDeleted  bool `json:"physical_folder_deleted"`
}

// FolderListing is a list entry with its note count.
type FolderListing struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	NoteCount int     `json:"note_count"`
}

// FolderStats holds recursive counts for a subtree.
type FolderStats struct {
	NoteCount      int `json:"count"`
	SubfolderCount int `json:"subfolder_count"`
}

// FolderTreeNode is a folder with nested children, for hierarchical listings.
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id"`
	NoteCount int               `json:"note_count"`
	CreatedAt time.Time         `json:"created"`
	Folders   []*FolderTreeNode `json:"folders"`
}
