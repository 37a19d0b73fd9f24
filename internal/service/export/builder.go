// Package export builds zip archives of folder subtrees: every non-trashed
// note rendered at its sanitized path, markdown notes prefixed with YAML
// front matter, and placeholder entries keeping empty subfolders visible.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"arbor/internal/config"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
	"arbor/internal/mirror"
)

type service struct {
	folderRepo repositories.FolderRepository
	noteStore  repositories.NoteStore
	resolver   services.HierarchyResolver
	logger     *slog.Logger
}

// NewService creates a new export service
func NewService(
	folderRepo repositories.FolderRepository,
	noteStore repositories.NoteStore,
	resolver services.HierarchyResolver,
	logger *slog.Logger,
) services.ExportService {
	return &service{
		folderRepo: folderRepo,
		noteStore:  noteStore,
		resolver:   resolver,
		logger:     logger,
	}
}

// frontMatter is the YAML header prepended to exported markdown notes
type frontMatter struct {
	Title    string    `yaml:"title"`
	Folder   string    `yaml:"folder"`
	Tags     []string  `yaml:"tags,omitempty"`
	Favorite bool      `yaml:"favorite,omitempty"`
	Created  time.Time `yaml:"created"`
	Updated  time.Time `yaml:"updated"`
}

// BuildExportTree produces the archive entries for the subtree rooted at
// rootFolderID. Entry paths are relative to the exported folder; its own
// notes land at the archive root next to the README.
func (s *service) BuildExportTree(ctx context.Context, rootFolderID string) ([]services.ExportEntry, error) {
	root, err := s.folderRepo.GetByID(ctx, rootFolderID)
	if err != nil {
		return nil, err
	}

	// One snapshot of the workspace tree; paths are computed against it so
	// concurrent moves cannot tear the archive layout.
	all, err := s.folderRepo.ListByWorkspace(ctx, root.Workspace)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]*models.Folder, len(all))
	for i := range all {
		snapshot[all[i].ID] = &all[i]
	}

	descendants, err := s.resolver.CollectDescendantIDs(ctx, root.ID)
	if err != nil {
		return nil, err
	}
	subtree := append([]string{root.ID}, descendants...)

	notes, err := s.noteStore.ListByFolders(ctx, root.Workspace, subtree)
	if err != nil {
		return nil, err
	}

	rootPath, err := s.resolver.ComputePath(ctx, root.ID)
	if err != nil {
		return nil, err
	}

	entries := []services.ExportEntry{{
		Path:    "README.md",
		Content: buildReadme(root, rootPath, len(subtree), len(notes)),
	}}

	for _, note := range notes {
		dir, err := buildZipPath(snapshot, *note.FolderID, root.ID)
		if err != nil {
			return nil, err
		}
		entry, err := buildNoteEntry(&note, dir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	entries = append(entries, placeholderEntries(snapshot, subtree, root.ID, entries)...)

	sort.Slice(entries[1:], func(i, j int) bool {
		return entries[i+1].Path < entries[j+1].Path
	})
	return entries, nil
}

// buildZipPath joins the sanitized folder names between rootID (exclusive)
// and folderID (inclusive), over the fixed snapshot. Returns "" when
// folderID is the root itself.
func buildZipPath(snapshot map[string]*models.Folder, folderID, rootID string) (string, error) {
	var segments []string
	currentID := folderID

	for depth := 0; currentID != rootID; depth++ {
		if depth >= config.MaxFolderDepth {
			return "", fmt.Errorf("folder %s is not inside the export root %s", folderID, rootID)
		}
		folder, ok := snapshot[currentID]
		if !ok {
			return "", fmt.Errorf("folder %s missing from tree snapshot", currentID)
		}
		segments = append([]string{mirror.SanitizeName(folder.Name)}, segments...)
		if folder.ParentID == nil {
			return "", fmt.Errorf("folder %s is not inside the export root %s", folderID, rootID)
		}
		currentID = *folder.ParentID
	}

	return strings.Join(segments, "/"), nil
}

// buildNoteEntry renders one note. Markdown notes get a YAML front matter
// block; HTML notes are exported verbatim.
func buildNoteEntry(note *models.Note, dir string) (services.ExportEntry, error) {
	name := fmt.Sprintf("%s_%s", mirror.SanitizeName(note.Heading), note.ID)

	var content []byte
	var ext string
	switch note.Type {
	case "html":
		ext = ".html"
		content = []byte(note.Content)
	default:
		ext = ".md"
		fm := frontMatter{
			Title:    note.Heading,
			Folder:   note.Folder,
			Tags:     splitTags(note.Tags),
			Favorite: note.Favorite,
			Created:  note.CreatedAt,
			Updated:  note.UpdatedAt,
		}
		header, err := yaml.Marshal(&fm)
		if err != nil {
			return services.ExportEntry{}, fmt.Errorf("failed to render front matter for note %s: %w", note.ID, err)
		}
		var b strings.Builder
		b.WriteString("---\n")
		b.Write(header)
		b.WriteString("---\n\n")
		b.WriteString(note.Content)
		content = []byte(b.String())
	}

	path := name + ext
	if dir != "" {
		path = dir + "/" + path
	}
	return services.ExportEntry{Path: path, Content: content}, nil
}

// placeholderEntries emits a .gitkeep for every subtree folder that ends up
// with nothing under its path, so the exported layout mirrors the full tree
func placeholderEntries(snapshot map[string]*models.Folder, subtree []string, rootID string, existing []services.ExportEntry) []services.ExportEntry {
	var placeholders []services.ExportEntry
	for _, id := range subtree {
		if id == rootID {
			continue
		}
		dir, err := buildZipPath(snapshot, id, rootID)
		if err != nil || dir == "" {
			continue
		}

		occupied := false
		for _, e := range existing {
			if strings.HasPrefix(e.Path, dir+"/") {
				occupied = true
				break
			}
		}
		if !occupied {
			placeholders = append(placeholders, services.ExportEntry{
				Path:    dir + "/.gitkeep",
				Content: []byte{},
			})
		}
	}
	return placeholders
}

func buildReadme(root *models.Folder, rootPath string, folderCount, noteCount int) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Export of %s\n\n", root.Name)
	fmt.Fprintf(&b, "- Workspace: %s\n", root.Workspace)
	fmt.Fprintf(&b, "- Folder path: %s\n", rootPath)
	fmt.Fprintf(&b, "- Folders: %d\n", folderCount)
	fmt.Fprintf(&b, "- Notes: %d\n", noteCount)
	b.WriteString("\nMarkdown notes carry a YAML front matter block with their metadata.\n")
	return []byte(b.String())
}

func splitTags(tags string) []string {
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
