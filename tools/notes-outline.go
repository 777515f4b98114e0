package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/storage"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

type NotesOutlineQuery struct {
	RawText          string `json:"raw_text,omitempty"`
	URL              string `json:"url,omitempty"`
	Filename         string `json:"filename,omitempty"`
	Title            string `json:"title,omitempty"`
	IncludeVideos    bool   `json:"include_videos,omitempty"`    // Attach YouTube videos per topic
	IncludeSummaries bool   `json:"include_summaries,omitempty"` // Attach a Wikipedia summary per topic
	Save             bool   `json:"save,omitempty"`
}

type NotesOutlineResponse struct {
	NoteID        string                         `json:"note_id,omitempty"`
	ResourcePaths []string                       `json:"resource_paths,omitempty"`
	Notes         models.NotesDocument           `json:"notes"`
	Videos        map[string][]models.Video      `json:"videos,omitempty"`
	Summaries     map[string]models.TopicSummary `json:"summaries,omitempty"`
}

func NotesOutlineTool() *mcp.Tool {
	inputschema, err := jsonschema.For[NotesOutlineQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "notes-outline",
		Description: "Build basic notes (title, subject and topic list) from syllabus text without calling the AI model. Useful as an instant preview or when the model is unavailable. Optionally attaches YouTube videos and a Wikipedia summary per topic.",
		InputSchema: inputschema,
	}
}

func NotesOutlineToolHandler(ctx context.Context, req *mcp.CallToolRequest, query NotesOutlineQuery, pipeline *operations.Pipeline, log logger.Logger) (*mcp.CallToolResult, *NotesOutlineResponse, error) {
	log.Info("notes-outline tool called")

	result, err := pipeline.OutlineNotes(ctx, operations.OutlineRequest{
		Input: models.SyllabusInput{
			RawText:  query.RawText,
			URL:      query.URL,
			Filename: query.Filename,
		},
		Title:            query.Title,
		IncludeVideos:    query.IncludeVideos,
		IncludeSummaries: query.IncludeSummaries,
		Save:             query.Save,
	})
	if err != nil {
		log.Error("notes-outline tool failed: %v", err)
		return nil, nil, err
	}

	response := &NotesOutlineResponse{
		NoteID:    result.NoteID,
		Notes:     result.Document,
		Videos:    result.Videos,
		Summaries: result.Summaries,
	}
	if result.NoteID != "" {
		response.ResourcePaths = storage.CalculateResourcePaths(result.NoteID, result.Document)
	}
	return nil, response, nil
}
