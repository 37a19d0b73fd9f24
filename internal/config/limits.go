package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxFolderDepth bounds every upward or downward walk of the tree.
	// Exceeding it means the parent_id chain is corrupt (a cycle slipped
	// past validation); walks fail fast instead of looping forever.
	MaxFolderDepth = 50

	// MaxWorkspaceNameLength is the maximum length for workspace names.
	MaxWorkspaceNameLength = 255
)
