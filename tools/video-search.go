package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

type VideoSearchQuery struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"` // Defaults to 8
}

type VideoSearchResponse struct {
	Videos []models.Video `json:"videos"`
	Count  int            `json:"count"`
}

func VideoSearchTool() *mcp.Tool {
	inputschema, err := jsonschema.For[VideoSearchQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "video-search",
		Description: "Search YouTube for educational videos on a topic. Results in Malayalam are listed first, then English, then Hindi; duplicates are removed. Requires YOUTUBE_API_KEY.",
		InputSchema: inputschema,
	}
}

func VideoSearchToolHandler(ctx context.Context, req *mcp.CallToolRequest, query VideoSearchQuery, pipeline *operations.Pipeline, log logger.Logger) (*mcp.CallToolResult, *VideoSearchResponse, error) {
	log.Info("video-search tool called with query: %s", query.Query)

	found, err := pipeline.SearchVideos(ctx, query.Query, query.MaxResults)
	if err != nil {
		log.Error("video-search tool failed: %v", err)
		return nil, nil, err
	}
	if found == nil {
		found = []models.Video{}
	}

	log.Info("Found %d videos", len(found))
	return nil, &VideoSearchResponse{Videos: found, Count: len(found)}, nil
}
