package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/llm"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/prompts"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/storage"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/videos"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

const chemistryReply = "Here are your notes:\n```json\n" +
	`{"subject":"Chemistry","modules":[{"name":"Organic","chapters":[{"name":"Alkanes","keyPoints":["CnH2n+2"]}]}]}` +
	"\n```"

type stubGenerator struct {
	reply string
	err   error
}

func (s stubGenerator) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	return s.reply, s.err
}

func newTestPipeline(t *testing.T, gen llm.Generator) *operations.Pipeline {
	t.Helper()
	builder, err := prompts.NewBuilder("", prompts.Style{}, 0)
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}
	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &operations.Pipeline{
		Generator: gen,
		Builder:   builder,
		Store:     store,
		Options:   operations.Options{Owner: "tester", MaxPDFPages: 10},
		Log:       logger.NewNoOpLogger(),
	}
}

func TestToolDefinitions(t *testing.T) {
	defs := []*mcp.Tool{
		TopicsExtractTool(),
		NotesGenerateTool(),
		NotesOutlineTool(),
		NotesListTool(),
		NotesUpdateTool(),
		NotesDeleteTool(),
		VideoSearchTool(),
	}
	seen := make(map[string]bool)
	for _, def := range defs {
		if def.Name == "" || def.Description == "" || def.InputSchema == nil {
			t.Errorf("incomplete tool definition: %+v", def)
		}
		if seen[def.Name] {
			t.Errorf("duplicate tool name %q", def.Name)
		}
		seen[def.Name] = true
	}
}

func TestNotesGenerateToolHandler(t *testing.T) {
	ctx := context.Background()
	pipeline := newTestPipeline(t, stubGenerator{reply: chemistryReply})
	log := logger.NewNoOpLogger()

	_, resp, err := NotesGenerateToolHandler(ctx, nil, NotesGenerateQuery{
		RawText:  "1. Alkanes\n2. Alkenes",
		Filename: "organic_chemistry.pdf",
		Save:     true,
	}, pipeline, log)
	if err != nil {
		t.Fatalf("NotesGenerateToolHandler failed: %v", err)
	}

	if resp.Degraded {
		t.Fatalf("unexpected fallback: %s", resp.Reason)
	}
	if resp.Title != "organic chemistry" || resp.Subject != "Chemistry" {
		t.Errorf("unexpected header: %q / %q", resp.Title, resp.Subject)
	}
	if resp.ModuleCount != 1 || resp.ChapterCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", resp.ModuleCount, resp.ChapterCount)
	}
	if resp.NoteID == "" || len(resp.ResourcePaths) == 0 {
		t.Fatalf("saved note should expose an id and resources, got %+v", resp)
	}
	if resp.ResourcePaths[0] != "notes://"+resp.NoteID {
		t.Errorf("first resource path = %q", resp.ResourcePaths[0])
	}
}

func TestNotesGenerateToolHandler_UserFacingErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", &llm.GenerationError{Kind: llm.RateLimited, StatusCode: 429}, "Rate limit exceeded"},
		{"quota", &llm.GenerationError{Kind: llm.QuotaExhausted, StatusCode: 402}, "AI credits exhausted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := newTestPipeline(t, stubGenerator{err: tt.err})
			_, _, err := NotesGenerateToolHandler(context.Background(), nil, NotesGenerateQuery{RawText: "1. Optics"}, pipeline, logger.NewNoOpLogger())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("error %q should start with %q", err, tt.want)
			}
			var genErr *llm.GenerationError
			if !errors.As(err, &genErr) {
				t.Error("the generation error should stay inspectable")
			}
		})
	}
}

func TestNotesLibraryTools(t *testing.T) {
	ctx := context.Background()
	pipeline := newTestPipeline(t, stubGenerator{})
	log := logger.NewNoOpLogger()

	_, outline, err := NotesOutlineToolHandler(ctx, nil, NotesOutlineQuery{
		RawText: "Chapter 1: Cells\nChapter 2: Genetics",
		Title:   "Biology basics",
		Save:    true,
	}, pipeline, log)
	if err != nil {
		t.Fatalf("NotesOutlineToolHandler failed: %v", err)
	}
	if outline.NoteID == "" || len(outline.Notes.Topics) != 2 {
		t.Fatalf("unexpected outline: %+v", outline)
	}

	_, list, err := NotesListToolHandler(ctx, nil, NotesListQuery{}, pipeline, log)
	if err != nil {
		t.Fatalf("NotesListToolHandler failed: %v", err)
	}
	if list.Count != 1 || list.Notes[0].Title != "Biology basics" {
		t.Errorf("unexpected list: %+v", list)
	}

	edited := models.NotesDocument{
		Title:   "Biology",
		Subject: "Biology",
		Modules: []models.Module{{Name: "Life", Chapters: []models.Chapter{{Name: "Cells"}}}},
	}
	_, updated, err := NotesUpdateToolHandler(ctx, nil, NotesUpdateQuery{NoteID: outline.NoteID, Notes: edited}, pipeline, log)
	if err != nil {
		t.Fatalf("NotesUpdateToolHandler failed: %v", err)
	}
	if len(updated.ResourcePaths) != 4 {
		t.Errorf("a note with modules should expose 4 resource paths, got %v", updated.ResourcePaths)
	}

	if _, _, err := NotesUpdateToolHandler(ctx, nil, NotesUpdateQuery{NoteID: outline.NoteID, Notes: models.NotesDocument{Title: "x"}}, pipeline, log); err == nil {
		t.Error("expected an invalid document to be rejected")
	}

	if _, _, err := NotesDeleteToolHandler(ctx, nil, NotesDeleteQuery{NoteID: outline.NoteID}, pipeline, log); err != nil {
		t.Fatalf("NotesDeleteToolHandler failed: %v", err)
	}
	if _, _, err := NotesDeleteToolHandler(ctx, nil, NotesDeleteQuery{NoteID: outline.NoteID}, pipeline, log); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := NotesDeleteToolHandler(ctx, nil, NotesDeleteQuery{}, pipeline, log); err == nil {
		t.Error("expected an error without note_id")
	}
}

func TestTopicsExtractToolHandler(t *testing.T) {
	pipeline := newTestPipeline(t, stubGenerator{})
	_, resp, err := TopicsExtractToolHandler(context.Background(), nil, TopicsExtractQuery{
		RawText:  "Unit 1: Thermodynamics\nUnit 2: Fluid Mechanics",
		Filename: "mechanical_engineering.txt",
	}, pipeline, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("TopicsExtractToolHandler failed: %v", err)
	}
	if len(resp.Topics) != 2 || resp.Topics[0] != "Thermodynamics" {
		t.Errorf("unexpected topics: %v", resp.Topics)
	}
}

func TestVideoSearchToolHandler_NotConfigured(t *testing.T) {
	pipeline := newTestPipeline(t, stubGenerator{})
	_, _, err := VideoSearchToolHandler(context.Background(), nil, VideoSearchQuery{Query: "Optics"}, pipeline, logger.NewNoOpLogger())
	if !errors.Is(err, videos.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
