package tools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/storage"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

type NotesUpdateQuery struct {
	NoteID string               `json:"note_id"`
	Notes  models.NotesDocument `json:"notes"` // The full replacement document
}

type NotesUpdateResponse struct {
	NoteID        string   `json:"note_id"`
	ResourcePaths []string `json:"resource_paths"`
}

func NotesUpdateTool() *mcp.Tool {
	inputschema, err := jsonschema.For[NotesUpdateQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "notes-update",
		Description: "Replace the content of a saved note with an edited notes document. The document must have a subject, at least one module or topic, and every module must have at least one chapter.",
		InputSchema: inputschema,
	}
}

func NotesUpdateToolHandler(ctx context.Context, req *mcp.CallToolRequest, query NotesUpdateQuery, pipeline *operations.Pipeline, log logger.Logger) (*mcp.CallToolResult, *NotesUpdateResponse, error) {
	log.Info("notes-update tool called for %s", query.NoteID)
	if query.NoteID == "" {
		return nil, nil, errors.New("note_id is required")
	}

	if err := pipeline.UpdateNotes(ctx, query.NoteID, query.Notes); err != nil {
		log.Error("notes-update tool failed: %v", err)
		return nil, nil, err
	}

	return nil, &NotesUpdateResponse{
		NoteID:        query.NoteID,
		ResourcePaths: storage.CalculateResourcePaths(query.NoteID, query.Notes),
	}, nil
}
