package tools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

type NotesListQuery struct{}

type NotesListResponse struct {
	Notes []models.NoteInfo `json:"notes"`
	Count int               `json:"count"`
}

func NotesListTool() *mcp.Tool {
	inputschema, err := jsonschema.For[NotesListQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "notes-list",
		Description: "List saved notes, most recently updated first, with module and chapter counts. Read a note with the notes://{noteId} resource.",
		InputSchema: inputschema,
	}
}

func NotesListToolHandler(ctx context.Context, req *mcp.CallToolRequest, query NotesListQuery, pipeline *operations.Pipeline, log logger.Logger) (*mcp.CallToolResult, *NotesListResponse, error) {
	log.Info("notes-list tool called")
	if pipeline.Store == nil {
		return nil, nil, errors.New("no notes store configured")
	}

	infos, err := pipeline.Store.ListNotes(ctx, pipeline.Options.Owner)
	if err != nil {
		log.Error("Failed to list notes: %v", err)
		return nil, nil, err
	}

	return nil, &NotesListResponse{Notes: infos, Count: len(infos)}, nil
}
