package models

import (
	"time"
)

// Note is owned by the notes subsystem; the hierarchy engine only reads it
// and reassigns its folder reference. Folder is a denormalized copy of the
// referenced folder's name kept for legacy name-based lookups.
type Note struct {
	ID        string    `json:"id" db:"id"`
	Workspace string    `json:"workspace" db:"workspace"`
	FolderID  *string   `json:"folder_id" db:"folder_id"` // nil = default/unfiled
	Folder    string    `json:"folder" db:"folder"`
	Heading   string    `json:"heading" db:"heading"`
	Content   string    `json:"-" db:"content"`
	Type      string    `json:"type" db:"type"` // "markdown" or "html"
	Tags      string    `json:"tags" db:"tags"` // comma-separated
	Favorite  bool      `json:"favorite" db:"favorite"`
	Trash     bool      `json:"trash" db:"trash"`
	CreatedAt time.Time `json:"created" db:"created"`
	UpdatedAt time.Time `json:"updated" db:"updated"`
}
