package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

type TopicsExtractQuery struct {
	RawText  string `json:"raw_text,omitempty"` // Syllabus text
	URL      string `json:"url,omitempty"`      // URL of a text or HTML syllabus
	Filename string `json:"filename,omitempty"` // Original file name, used for subject detection
}

type TopicsExtractResponse struct {
	Subject string   `json:"subject"`
	Topics  []string `json:"topics"`
}

func TopicsExtractTool() *mcp.Tool {
	inputschema, err := jsonschema.For[TopicsExtractQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "topics-extract",
		Description: "Detect the subject and up to 15 topics of a syllabus using fast local heuristics (numbered or bulleted lines, chapter/unit/module headings, capitalised titles). No AI call is made. Always returns at least one topic.",
		InputSchema: inputschema,
	}
}

func TopicsExtractToolHandler(ctx context.Context, req *mcp.CallToolRequest, query TopicsExtractQuery, pipeline *operations.Pipeline, log logger.Logger) (*mcp.CallToolResult, *TopicsExtractResponse, error) {
	log.Info("topics-extract tool called")

	extracted, _, err := pipeline.ExtractTopics(ctx, models.SyllabusInput{
		RawText:  query.RawText,
		URL:      query.URL,
		Filename: query.Filename,
	})
	if err != nil {
		log.Error("Failed to extract topics: %v", err)
		return nil, nil, err
	}

	log.Info("Extracted %d topics for subject %s", len(extracted.Topics), extracted.Subject)
	return nil, &TopicsExtractResponse{Subject: extracted.Subject, Topics: extracted.Topics}, nil
}
