package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/notes"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/storage"
)

const scheme = "notes://"

// NotesResourceHandler serves saved notes as notes:// resources
type NotesResourceHandler struct {
	store storage.Store
	owner string

	mu         sync.Mutex
	registered map[string]bool
}

// NewNotesResourceHandler creates a handler for the notes of owner
func NewNotesResourceHandler(store storage.Store, owner string) *NotesResourceHandler {
	return &NotesResourceHandler{store: store, owner: owner}
}

// ListResources returns the root resource of every saved note
func (h *NotesResourceHandler) ListResources(ctx context.Context) ([]*mcp.Resource, error) {
	infos, err := h.store.ListNotes(ctx, h.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	resources := make([]*mcp.Resource, 0, len(infos))
	for _, info := range infos {
		resources = append(resources, &mcp.Resource{
			URI:         scheme + info.NoteID,
			Name:        info.Title,
			Description: fmt.Sprintf("%s notes: %d modules, %d chapters", info.Subject, info.ModuleCount, info.ChapterCount),
			MIMEType:    "application/json",
		})
	}
	return resources, nil
}

// Sync makes the server's resource list match the saved notes: every note is
// registered as a concrete resource and deleted notes are removed.
func (h *NotesResourceHandler) Sync(ctx context.Context, server *mcp.Server) error {
	resources, err := h.ListResources(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	current := make(map[string]bool, len(resources))
	for _, r := range resources {
		current[r.URI] = true
		server.AddResource(r, h.read)
	}

	var stale []string
	for uri := range h.registered {
		if !current[uri] {
			stale = append(stale, uri)
		}
	}
	if len(stale) > 0 {
		server.RemoveResources(stale...)
	}
	h.registered = current
	return nil
}

func (h *NotesResourceHandler) read(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return h.ReadResource(ctx, req.Params.URI)
}

// ReadResource reads a specific resource by URI
func (h *NotesResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	// Parse URI: notes://note_id[/modules[/i[/chapters/j]]] or notes://note_id/videos
	if !strings.HasPrefix(uri, scheme) {
		return nil, fmt.Errorf("invalid URI scheme, expected %s", scheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, scheme), "/")
	noteID := parts[0]
	if noteID == "" {
		return nil, fmt.Errorf("invalid URI, missing note ID")
	}

	var (
		content any
		err     error
	)
	switch {
	case len(parts) == 1:
		content, err = h.getNote(ctx, noteID)
	case len(parts) == 2 && parts[1] == "videos":
		content, err = h.getVideos(ctx, noteID)
	case len(parts) == 2 && parts[1] == "modules":
		content, err = h.getModules(ctx, noteID)
	case len(parts) == 3 && parts[1] == "modules":
		content, err = h.getModule(ctx, noteID, parts[2])
	case len(parts) == 5 && parts[1] == "modules" && parts[3] == "chapters":
		content, err = h.getChapter(ctx, noteID, parts[2], parts[4])
	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

func (h *NotesResourceHandler) getNote(ctx context.Context, noteID string) (any, error) {
	note, err := h.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	modules, chapters := notes.Counts(note.Content)
	return map[string]any{
		"note_id":             note.ID,
		"title":               note.Title,
		"subject":             note.Subject,
		"created_at":          note.CreatedAt,
		"updated_at":          note.UpdatedAt,
		"module_count":        modules,
		"chapter_count":       chapters,
		"notes":               note.Content,
		"available_resources": storage.CalculateResourcePaths(noteID, note.Content),
	}, nil
}

func (h *NotesResourceHandler) getVideos(ctx context.Context, noteID string) (any, error) {
	if _, err := h.store.GetNote(ctx, noteID); err != nil {
		return nil, err
	}
	return h.store.GetChapterVideos(ctx, noteID)
}

func (h *NotesResourceHandler) getModules(ctx context.Context, noteID string) (any, error) {
	note, err := h.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return note.Content.Modules, nil
}

func (h *NotesResourceHandler) getModule(ctx context.Context, noteID, moduleIndex string) (any, error) {
	i, err := parseIndex(moduleIndex)
	if err != nil {
		return nil, err
	}
	note, err := h.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return notes.ModuleAt(note.Content, i)
}

// getChapter returns the chapter together with any videos stored for it
func (h *NotesResourceHandler) getChapter(ctx context.Context, noteID, moduleIndex, chapterIndex string) (any, error) {
	i, err := parseIndex(moduleIndex)
	if err != nil {
		return nil, err
	}
	j, err := parseIndex(chapterIndex)
	if err != nil {
		return nil, err
	}

	note, err := h.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	chapter, err := notes.ChapterAt(note.Content, i, j)
	if err != nil {
		return nil, err
	}

	videos, err := h.store.GetChapterVideos(ctx, noteID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"module_index":  i,
		"chapter_index": j,
		"chapter":       chapter,
		"videos":        videos[chapter.Name],
	}, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index: %s", s)
	}
	return i, nil
}
