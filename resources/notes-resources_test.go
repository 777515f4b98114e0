package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/notes"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/storage"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

func setupHandler(t *testing.T) (*NotesResourceHandler, string) {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	doc := models.NotesDocument{
		Title:   "Electronics",
		Subject: "Electronics",
		Modules: []models.Module{
			{Name: "Semiconductors", Chapters: []models.Chapter{
				{Name: "Diodes", KeyPoints: []string{"PN junction"}},
				{Name: "Transistors"},
			}},
		},
	}
	noteID, err := store.SaveNote(ctx, "alice", doc)
	if err != nil {
		t.Fatalf("SaveNote failed: %v", err)
	}
	if err := store.SetChapterVideos(ctx, noteID, map[string][]models.Video{"Diodes": {{ID: "d1", Title: "Diodes explained"}}}); err != nil {
		t.Fatalf("SetChapterVideos failed: %v", err)
	}
	if _, err := store.SaveNote(ctx, "bob", doc); err != nil {
		t.Fatalf("SaveNote failed: %v", err)
	}

	return NewNotesResourceHandler(store, "alice"), noteID
}

func readJSON(t *testing.T, h *NotesResourceHandler, uri string, v any) {
	t.Helper()
	result, err := h.ReadResource(context.Background(), uri)
	if err != nil {
		t.Fatalf("ReadResource(%s) failed: %v", uri, err)
	}
	if len(result.Contents) != 1 || result.Contents[0].MIMEType != "application/json" || result.Contents[0].URI != uri {
		t.Fatalf("unexpected contents: %+v", result.Contents)
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), v); err != nil {
		t.Fatalf("invalid JSON for %s: %v", uri, err)
	}
}

func TestListResources(t *testing.T) {
	h, noteID := setupHandler(t)

	resources, err := h.ListResources(context.Background())
	if err != nil {
		t.Fatalf("ListResources failed: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected only alice's note, got %d resources", len(resources))
	}
	if resources[0].URI != "notes://"+noteID || resources[0].Name != "Electronics" {
		t.Errorf("unexpected resource: %+v", resources[0])
	}
}

func TestReadResource(t *testing.T) {
	h, noteID := setupHandler(t)
	base := "notes://" + noteID

	var root struct {
		NoteID       string               `json:"note_id"`
		ChapterCount int                  `json:"chapter_count"`
		Notes        models.NotesDocument `json:"notes"`
		Available    []string             `json:"available_resources"`
	}
	readJSON(t, h, base, &root)
	if root.NoteID != noteID || root.ChapterCount != 2 || len(root.Available) != 4 {
		t.Errorf("unexpected root resource: %+v", root)
	}

	var module models.Module
	readJSON(t, h, base+"/modules/0", &module)
	if module.Name != "Semiconductors" {
		t.Errorf("module = %q", module.Name)
	}

	var modules []models.Module
	readJSON(t, h, base+"/modules", &modules)
	if len(modules) != 1 {
		t.Errorf("expected 1 module, got %d", len(modules))
	}

	var chapter struct {
		Chapter models.Chapter `json:"chapter"`
		Videos  []models.Video `json:"videos"`
	}
	readJSON(t, h, base+"/modules/0/chapters/0", &chapter)
	if chapter.Chapter.Name != "Diodes" || len(chapter.Videos) != 1 {
		t.Errorf("unexpected chapter resource: %+v", chapter)
	}

	var videos map[string][]models.Video
	readJSON(t, h, base+"/videos", &videos)
	if videos["Diodes"][0].ID != "d1" {
		t.Errorf("unexpected videos: %v", videos)
	}
}

func TestReadResource_Errors(t *testing.T) {
	h, noteID := setupHandler(t)
	ctx := context.Background()
	base := "notes://" + noteID

	tests := []struct {
		name string
		uri  string
		want error
	}{
		{"wrong scheme", "pdf://" + noteID, nil},
		{"missing id", "notes://", nil},
		{"unknown note", "notes://missing", storage.ErrNotFound},
		{"unknown note videos", "notes://missing/videos", storage.ErrNotFound},
		{"bad index", base + "/modules/x", nil},
		{"negative index", base + "/modules/-1", nil},
		{"module out of range", base + "/modules/3", notes.ErrBadReference},
		{"chapter out of range", base + "/modules/0/chapters/9", notes.ErrBadReference},
		{"unknown path", base + "/pages", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ReadResource(ctx, tt.uri)
			if err == nil {
				t.Fatalf("expected error for %s", tt.uri)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func listURIs(t *testing.T, cs *mcp.ClientSession) []string {
	t.Helper()
	result, err := cs.ListResources(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListResources failed: %v", err)
	}
	var uris []string
	for _, r := range result.Resources {
		uris = append(uris, r.URI)
	}
	return uris
}

func TestSync_ListsSavedNotes(t *testing.T) {
	h, noteID := setupHandler(t)
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "notes-test", Version: "v0.0.1"}, nil)
	if err := h.Sync(ctx, server); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer ss.Close()
	client := mcp.NewClient(&mcp.Implementation{Name: "notes-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer cs.Close()

	uri := "notes://" + noteID
	uris := listURIs(t, cs)
	if len(uris) != 1 || uris[0] != uri {
		t.Fatalf("expected [%s], got %v", uri, uris)
	}

	read, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
	if err != nil {
		t.Fatalf("ReadResource failed: %v", err)
	}
	if len(read.Contents) != 1 || read.Contents[0].URI != uri {
		t.Errorf("unexpected contents: %+v", read.Contents)
	}

	secondID, err := h.store.SaveNote(ctx, "alice", models.NotesDocument{Title: "Optics", Subject: "Physics"})
	if err != nil {
		t.Fatalf("SaveNote failed: %v", err)
	}
	if err := h.store.DeleteNote(ctx, noteID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if err := h.Sync(ctx, server); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	uris = listURIs(t, cs)
	if len(uris) != 1 || uris[0] != "notes://"+secondID {
		t.Errorf("expected only the new note after sync, got %v", uris)
	}
}
