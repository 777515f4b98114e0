package tools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
)

type NotesDeleteQuery struct {
	NoteID string `json:"note_id"`
}

type NotesDeleteResponse struct {
	NoteID  string `json:"note_id"`
	Deleted bool   `json:"deleted"`
}

func NotesDeleteTool() *mcp.Tool {
	inputschema, err := jsonschema.For[NotesDeleteQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "notes-delete",
		Description: "Delete a saved note and the videos stored with it.",
		InputSchema: inputschema,
	}
}

func NotesDeleteToolHandler(ctx context.Context, req *mcp.CallToolRequest, query NotesDeleteQuery, pipeline *operations.Pipeline, log logger.Logger) (*mcp.CallToolResult, *NotesDeleteResponse, error) {
	log.Info("notes-delete tool called for %s", query.NoteID)
	if query.NoteID == "" {
		return nil, nil, errors.New("note_id is required")
	}
	if pipeline.Store == nil {
		return nil, nil, errors.New("no notes store configured")
	}

	if err := pipeline.Store.DeleteNote(ctx, query.NoteID); err != nil {
		log.Error("Failed to delete note %s: %v", query.NoteID, err)
		return nil, nil, err
	}

	return nil, &NotesDeleteResponse{NoteID: query.NoteID, Deleted: true}, nil
}
