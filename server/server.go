package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/config"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/llm"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/operations"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/prompts"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/storage"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/videos"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/wiki"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/resources"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/tools"
)

func CreateServer(cfg *config.Config, log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "syllabus-notes-mcp", Version: "v0.0.1"}, nil)

	store, err := initializeStorage(cfg.Storage.DBPath, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}

	pipeline, err := newPipeline(cfg, store, log)
	if err != nil {
		log.Fatal("Failed to initialize notes pipeline: %v", err)
	}

	notesResourceHandler := resources.NewNotesResourceHandler(store, cfg.Owner)
	syncResources := func(ctx context.Context) {
		if err := notesResourceHandler.Sync(ctx, server); err != nil {
			log.Warn("Failed to refresh notes resource list: %v", err)
		}
	}
	syncResources(context.Background())

	// Register tools with the pipeline and logger dependencies
	mcp.AddTool(server, tools.TopicsExtractTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.TopicsExtractQuery) (*mcp.CallToolResult, *tools.TopicsExtractResponse, error) {
		return tools.TopicsExtractToolHandler(ctx, req, query, pipeline, log)
	})

	mcp.AddTool(server, tools.NotesGenerateTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.NotesGenerateQuery) (*mcp.CallToolResult, *tools.NotesGenerateResponse, error) {
		result, response, err := tools.NotesGenerateToolHandler(ctx, req, query, pipeline, log)
		syncResources(ctx)
		return result, response, err
	})

	mcp.AddTool(server, tools.NotesOutlineTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.NotesOutlineQuery) (*mcp.CallToolResult, *tools.NotesOutlineResponse, error) {
		result, response, err := tools.NotesOutlineToolHandler(ctx, req, query, pipeline, log)
		syncResources(ctx)
		return result, response, err
	})

	mcp.AddTool(server, tools.NotesListTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.NotesListQuery) (*mcp.CallToolResult, *tools.NotesListResponse, error) {
		return tools.NotesListToolHandler(ctx, req, query, pipeline, log)
	})

	mcp.AddTool(server, tools.NotesUpdateTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.NotesUpdateQuery) (*mcp.CallToolResult, *tools.NotesUpdateResponse, error) {
		result, response, err := tools.NotesUpdateToolHandler(ctx, req, query, pipeline, log)
		syncResources(ctx)
		return result, response, err
	})

	mcp.AddTool(server, tools.NotesDeleteTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.NotesDeleteQuery) (*mcp.CallToolResult, *tools.NotesDeleteResponse, error) {
		result, response, err := tools.NotesDeleteToolHandler(ctx, req, query, pipeline, log)
		syncResources(ctx)
		return result, response, err
	})

	mcp.AddTool(server, tools.VideoSearchTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.VideoSearchQuery) (*mcp.CallToolResult, *tools.VideoSearchResponse, error) {
		return tools.VideoSearchToolHandler(ctx, req, query, pipeline, log)
	})

	// Template for a saved note
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "notes://{noteId}",
		Name:        "notes",
		Description: "A saved notes document with its title, subject and counts",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return notesResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for all modules
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "notes://{noteId}/modules",
		Name:        "notes-modules",
		Description: "All modules of a saved note",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return notesResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for individual module
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "notes://{noteId}/modules/{moduleIndex}",
		Name:        "notes-module",
		Description: "A specific module of a saved note (0-indexed)",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return notesResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for individual chapter
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "notes://{noteId}/modules/{moduleIndex}/chapters/{chapterIndex}",
		Name:        "notes-chapter",
		Description: "A specific chapter of a module (0-indexed) with its videos",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return notesResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for chapter videos
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "notes://{noteId}/videos",
		Name:        "notes-videos",
		Description: "YouTube videos saved with a note, keyed by chapter name",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return notesResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	return server
}

// newPipeline wires the generation client, prompt builder, topic summaries
// and optional YouTube searcher from cfg
func newPipeline(cfg *config.Config, store storage.Store, log logger.Logger) (*operations.Pipeline, error) {
	builder, err := prompts.NewBuilder(cfg.Prompt.Version, prompts.Style{
		Detail:   cfg.Prompt.Detail,
		Language: cfg.Prompt.Language,
	}, cfg.Prompt.MaxSourceChars)
	if err != nil {
		return nil, err
	}

	if cfg.Gateway.APIKey == "" {
		log.Warn("No AI gateway API key configured; notes-generate will fail until one is set")
	}
	client := llm.NewClient(llm.ClientConfig{
		APIKey:           cfg.Gateway.APIKey,
		BaseURL:          cfg.Gateway.BaseURL,
		Model:            cfg.Gateway.Model,
		Timeout:          cfg.Gateway.Timeout,
		StructuredOutput: cfg.Gateway.StructuredOutput,
	}, log)

	retry := llm.DefaultRetryPolicy
	retry.MaxRetries = cfg.Gateway.MaxRetries

	pipeline := &operations.Pipeline{
		Generator: client,
		Builder:   builder,
		Store:     store,
		Options: operations.Options{
			Owner:            cfg.Owner,
			MaxPDFPages:      cfg.MaxPDFPages,
			Retry:            retry,
			VideoConcurrency: cfg.Videos.Concurrency,
			VideoMaxResults:  cfg.Videos.MaxResults,
			VideosPerChapter: cfg.Videos.PerChapter,

			SummaryConcurrency: cfg.Summaries.Concurrency,
		},
		Summaries: wiki.NewClient(wiki.Config{
			BaseURL:           cfg.Summaries.BaseURL,
			Timeout:           cfg.Summaries.Timeout,
			RequestsPerSecond: cfg.Summaries.RequestsPerSecond,
		}),
		Log: log,
	}

	yt, err := videos.NewYouTube(context.Background(), videos.Config{
		APIKey:            cfg.Videos.APIKey,
		RegionCode:        cfg.Videos.RegionCode,
		RequestsPerSecond: cfg.Videos.RequestsPerSecond,
	}, log)
	switch {
	case errors.Is(err, videos.ErrNotConfigured):
		log.Info("YOUTUBE_API_KEY not set; video search is disabled")
	case err != nil:
		return nil, err
	default:
		pipeline.Videos = yt
	}

	return pipeline, nil
}

// initializeStorage creates and initializes the storage backend
func initializeStorage(dbPath string, log logger.Logger) (storage.Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	log.Info("Initializing SQLite database at: %s", dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}

	return store, nil
}
