// Package llm talks to the OpenAI-compatible gateway that generates notes.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/prompts"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// Generator produces a raw model reply for a request.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
}

// ClientConfig holds the static settings of a Client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// StructuredOutput sends the notes schema as response_format. Not every
	// gateway model honours it, so it is opt-in.
	StructuredOutput bool
}

// Client issues one chat completion per Generate call. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	cfg    ClientConfig
	client openai.Client
	log    logger.Logger
}

var _ Generator = (*Client)(nil)

// NewClient builds a client. A missing API key is not an error here; it is
// reported as ConfigurationError by Generate so callers see one error type.
func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{
		cfg:    cfg,
		client: openai.NewClient(opts...),
		log:    log,
	}
}

// Generate sends req as a system + user message pair and returns the text of
// the first choice. Every failure is a *GenerationError.
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", newError(ConfigurationError, 0, "no API key configured for the AI gateway", nil)
	}
	if c.cfg.Model == "" {
		return "", newError(ConfigurationError, 0, "no model configured for the AI gateway", nil)
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemInstruction),
			userMessage(req),
		},
	}
	if c.cfg.StructuredOutput {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "syllabus_notes",
					Schema: prompts.NotesSchema(),
				},
			},
		}
	}

	c.log.Debug("Requesting notes from %s (model %s, contract %s, %d attachments)",
		c.cfg.BaseURL, c.cfg.Model, req.ContractVersion, len(req.Attachments))

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", newError(UpstreamError, 0, "response contained no choices", nil)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", newError(UpstreamError, 0, "response contained no content", nil)
	}

	c.log.Debug("Received %d bytes of model output", len(content))
	return content, nil
}

func userMessage(req models.GenerationRequest) openai.ChatCompletionMessageParamUnion {
	if len(req.Attachments) == 0 {
		return openai.UserMessage(req.UserPrompt)
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.UserPrompt),
	}
	for _, att := range req.Attachments {
		switch att.Kind {
		case models.AttachmentFile:
			parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
				FileData: openai.String(att.DataURI),
				Filename: openai.String(att.Filename),
			}))
		default:
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: att.DataURI,
			}))
		}
	}
	return openai.UserMessage(parts)
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		kind := kindForStatus(apiErr.StatusCode)
		return newError(kind, apiErr.StatusCode, "gateway returned an error status", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(UpstreamError, 0, "request timed out", err)
	}
	return newError(UpstreamError, 0, "request failed", err)
}
