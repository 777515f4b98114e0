package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/config"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/server"
)

func main() {
	// Initialize logger with default configuration
	log, err := logger.NewLogger(logger.LogConfig{})
	if err != nil {
		panic(err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	log.Info("Starting syllabus-notes-mcp server (model %s)", cfg.Gateway.Model)

	srv := server.CreateServer(cfg, log)
	if err := srv.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal("Server failed: %v", err)
	}
}
