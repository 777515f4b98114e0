package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/llm"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/notes"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/storage"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

type NotesGenerateQuery struct {
	RawText          string   `json:"raw_text,omitempty"`          // Syllabus text
	ImageData        string   `json:"image_data,omitempty"`        // Syllabus photo as a data URI or bare base64
	PDFData          []byte   `json:"pdf_data,omitempty"`          // Syllabus PDF
	URL              string   `json:"url,omitempty"`               // URL of a PDF, image, HTML or text syllabus
	Filename         string   `json:"filename,omitempty"`          // Original file name, used for the title
	Topics           []string `json:"topics,omitempty"`            // Topic list, used when no syllabus source is given
	Subject          string   `json:"subject,omitempty"`           // Overrides the detected subject
	Title            string   `json:"title,omitempty"`             // Overrides the title derived from the file name
	IncludeVideos    bool     `json:"include_videos,omitempty"`    // Attach YouTube videos per chapter (or topic)
	IncludeSummaries bool     `json:"include_summaries,omitempty"` // Attach a Wikipedia summary per chapter (or topic)
	Save             bool     `json:"save,omitempty"`              // Save the notes to the library
}

type NotesGenerateResponse struct {
	NoteID        string                         `json:"note_id,omitempty"`
	ResourcePaths []string                       `json:"resource_paths,omitempty"`
	Title         string                         `json:"title"`
	Subject       string                         `json:"subject"`
	ModuleCount   int                            `json:"module_count"`
	ChapterCount  int                            `json:"chapter_count"`
	Degraded      bool                           `json:"degraded"`
	Reason        string                         `json:"reason,omitempty"`
	Notes         models.NotesDocument           `json:"notes"`
	Videos        map[string][]models.Video      `json:"videos,omitempty"`
	Summaries     map[string]models.TopicSummary `json:"summaries,omitempty"`
}

func NotesGenerateTool() *mcp.Tool {
	inputschema, err := jsonschema.For[NotesGenerateQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "notes-generate",
		Description: "Generate structured study notes (modules, chapters, key points, formulas, examples, tables, applications) from a syllabus given as text, an image, a PDF or a URL, or from a list of topics. When the model reply cannot be decoded a minimal fallback document is returned with degraded=true. Optionally attaches YouTube videos and a Wikipedia summary per chapter and saves the notes to the library.",
		InputSchema: inputschema,
	}
}

func NotesGenerateToolHandler(ctx context.Context, req *mcp.CallToolRequest, query NotesGenerateQuery, pipeline *operations.Pipeline, log logger.Logger) (*mcp.CallToolResult, *NotesGenerateResponse, error) {
	log.Info("notes-generate tool called")

	result, err := pipeline.GenerateNotes(ctx, operations.GenerateRequest{
		Input: models.SyllabusInput{
			RawText:   query.RawText,
			ImageData: query.ImageData,
			PDFData:   query.PDFData,
			URL:       query.URL,
			Filename:  query.Filename,
		},
		Topics:           query.Topics,
		Subject:          query.Subject,
		Title:            query.Title,
		IncludeVideos:    query.IncludeVideos,
		IncludeSummaries: query.IncludeSummaries,
		Save:             query.Save,
	})
	if err != nil {
		log.Error("notes-generate tool failed: %v", err)
		return nil, nil, userFacing(err)
	}

	modules, chapters := notes.Counts(result.Document)
	response := &NotesGenerateResponse{
		NoteID:       result.NoteID,
		Title:        result.Document.Title,
		Subject:      result.Document.Subject,
		ModuleCount:  modules,
		ChapterCount: chapters,
		Degraded:     result.Degraded,
		Reason:       result.Reason,
		Notes:        result.Document,
		Videos:       result.Videos,
		Summaries:    result.Summaries,
	}
	if result.NoteID != "" {
		response.ResourcePaths = storage.CalculateResourcePaths(result.NoteID, result.Document)
	}

	return nil, response, nil
}

// userFacing prefixes generation failures with the message shown to end users.
func userFacing(err error) error {
	var genErr *llm.GenerationError
	if errors.As(err, &genErr) {
		return fmt.Errorf("%s (%w)", genErr.UserMessage(), err)
	}
	return err
}
