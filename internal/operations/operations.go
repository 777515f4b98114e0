package operations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/decode"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/documents"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/llm"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/notes"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/prompts"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/storage"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/topics"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/videos"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/wiki"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// ErrNoText is returned by operations that need syllabus text but were given
// only an image or a PDF.
var ErrNoText = errors.New("this operation needs syllabus text: provide raw_text or a text/HTML url")

// Options are the static settings of a Pipeline.
type Options struct {
	Owner            string
	MaxPDFPages      int
	Retry            llm.RetryPolicy
	VideosPerChapter int
	VideoConcurrency int
	VideoMaxResults  int

	SummaryConcurrency int
}

// Pipeline runs the notes operations. Store, Videos and Summaries are
// optional; without them saving and the matching enrichment are unavailable.
type Pipeline struct {
	Generator llm.Generator
	Builder   *prompts.Builder
	Store     storage.Store
	Videos    videos.Searcher
	Summaries wiki.Summarizer
	Options   Options
	Log       logger.Logger
}

// GenerateRequest describes one generation call. Topics, when set without an
// Input source, selects the enhance path: notes are generated from a topic list
// rather than a syllabus.
type GenerateRequest struct {
	Input         models.SyllabusInput
	Topics        []string
	Subject       string
	Title            string
	IncludeVideos    bool
	IncludeSummaries bool
	Save             bool
}

// GenerateResult is the outcome of GenerateNotes.
type GenerateResult struct {
	NoteID    string
	Document  models.NotesDocument
	Degraded  bool
	Reason    string
	Videos    videos.ChapterVideos
	Summaries map[string]models.TopicSummary
	Extracted *models.ExtractedTopics
}

// GenerateNotes turns a syllabus into a structured notes document.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - req: The syllabus source (or topic list) and what to do with the result
//
// Returns:
//   - result: The document, whether it is the fallback document, any chapter
//     videos and the saved note id when req.Save is set
//   - error: A *llm.GenerationError when the model call fails, or an input,
//     build or storage error. A reply that cannot be decoded is not an error.
func (p *Pipeline) GenerateNotes(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	result := &GenerateResult{}

	var (
		build    prompts.BuildInput
		filename = req.Input.Filename
	)
	if len(req.Topics) > 0 && !hasSource(req.Input) {
		build = prompts.BuildInput{Subject: orDefault(req.Subject, topics.DefaultSubject), Topics: req.Topics}
	} else {
		prepared, err := documents.Load(ctx, req.Input, p.Options.MaxPDFPages, p.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to load syllabus: %w", err)
		}
		filename = prepared.Filename
		build = prompts.BuildInput{Subject: req.Subject, RawText: prepared.Text, Attachments: prepared.Attachments}

		if prepared.Text != "" {
			extracted := topics.Extract(prepared.Text, filename)
			result.Extracted = &extracted
			build.Subject = orDefault(req.Subject, extracted.Subject)
			build.Topics = extracted.Topics
			p.Log.Info("Extracted %d topics (subject %s) from %s", len(extracted.Topics), extracted.Subject, orDefault(filename, "raw text"))
		}
	}

	genReq, err := p.Builder.Build(build)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	reply, err := llm.GenerateWithRetry(ctx, p.Generator, genReq, p.Options.Retry, p.Log)
	if err != nil {
		p.Log.Error("Notes generation failed: %v", err)
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = notes.TitleFromFilename(filename, build.Subject)
	}
	decoded := decode.Decode(reply, title)
	if decoded.Degraded {
		p.Log.Warn("Model reply could not be decoded, using fallback document: %s", decoded.Reason)
	}
	result.Document = decoded.Document
	result.Degraded = decoded.Degraded
	result.Reason = decoded.Reason

	if req.IncludeVideos {
		result.Videos = p.enrich(ctx, result.Document)
	}
	if req.IncludeSummaries {
		result.Summaries = p.summarize(ctx, result.Document)
	}

	if req.Save {
		noteID, err := p.save(ctx, result.Document, result.Videos)
		if err != nil {
			return nil, err
		}
		result.NoteID = noteID
	}

	modules, chapters := notes.Counts(result.Document)
	p.Log.Info("Generated notes %q: %d modules, %d chapters (degraded=%t)", title, modules, chapters, result.Degraded)
	return result, nil
}

// OutlineRequest describes one outline call.
type OutlineRequest struct {
	Input            models.SyllabusInput
	Title            string
	IncludeVideos    bool
	IncludeSummaries bool
	Save             bool
}

// OutlineResult is the outcome of OutlineNotes.
type OutlineResult struct {
	NoteID    string
	Document  models.NotesDocument
	Videos    videos.ChapterVideos
	Summaries map[string]models.TopicSummary
}

// OutlineNotes builds a topics-only document from syllabus text without a
// model call, optionally enriching each topic and saving it.
func (p *Pipeline) OutlineNotes(ctx context.Context, req OutlineRequest) (*OutlineResult, error) {
	extracted, filename, err := p.ExtractTopics(ctx, req.Input)
	if err != nil {
		return nil, err
	}
	title := req.Title
	if title == "" {
		title = notes.TitleFromFilename(filename, extracted.Subject)
	}

	result := &OutlineResult{Document: notes.Outline(title, extracted)}
	if req.IncludeVideos {
		result.Videos = p.enrich(ctx, result.Document)
	}
	if req.IncludeSummaries {
		result.Summaries = p.summarize(ctx, result.Document)
	}
	if req.Save {
		noteID, err := p.save(ctx, result.Document, result.Videos)
		if err != nil {
			return nil, err
		}
		result.NoteID = noteID
	}
	return result, nil
}

// ExtractTopics loads input and runs the topic extractor on its text. It also
// returns the filename the input resolved to.
func (p *Pipeline) ExtractTopics(ctx context.Context, input models.SyllabusInput) (models.ExtractedTopics, string, error) {
	prepared, err := documents.Load(ctx, input, p.Options.MaxPDFPages, p.Log)
	if err != nil {
		return models.ExtractedTopics{}, "", fmt.Errorf("failed to load syllabus: %w", err)
	}
	if strings.TrimSpace(prepared.Text) == "" {
		return models.ExtractedTopics{}, "", ErrNoText
	}
	return topics.Extract(prepared.Text, prepared.Filename), prepared.Filename, nil
}

// UpdateNotes replaces the content of a saved note with doc after checking
// the document invariants.
func (p *Pipeline) UpdateNotes(ctx context.Context, noteID string, doc models.NotesDocument) error {
	if p.Store == nil {
		return errors.New("no notes store configured")
	}
	if err := notes.Validate(doc); err != nil {
		return fmt.Errorf("invalid notes document: %w", err)
	}
	if err := p.Store.UpdateNote(ctx, noteID, notes.Normalize(doc)); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// SearchVideos returns videos for a free-text query. A maxResults of zero
// selects Options.VideoMaxResults.
func (p *Pipeline) SearchVideos(ctx context.Context, query string, maxResults int) ([]models.Video, error) {
	if p.Videos == nil {
		return nil, videos.ErrNotConfigured
	}
	if maxResults <= 0 {
		maxResults = p.Options.VideoMaxResults
	}
	return p.Videos.Search(ctx, query, maxResults)
}

func (p *Pipeline) enrich(ctx context.Context, doc models.NotesDocument) videos.ChapterVideos {
	if p.Videos == nil {
		p.Log.Warn("Video enrichment requested but no YouTube API key is configured")
		return nil
	}
	keys := notes.EnrichmentKeys(doc)
	if len(keys) == 0 {
		return nil
	}
	return videos.EnrichChapters(ctx, p.Videos, keys, videos.EnrichOptions{
		PerChapter:  p.Options.VideosPerChapter,
		Concurrency: p.Options.VideoConcurrency,
	}, p.Log)
}

func (p *Pipeline) summarize(ctx context.Context, doc models.NotesDocument) map[string]models.TopicSummary {
	if p.Summaries == nil {
		p.Log.Warn("Topic summaries requested but no summary source is configured")
		return nil
	}
	keys := notes.EnrichmentKeys(doc)
	if len(keys) == 0 {
		return nil
	}
	return wiki.EnrichTopics(ctx, p.Summaries, keys, p.Options.SummaryConcurrency, p.Log)
}

func (p *Pipeline) save(ctx context.Context, doc models.NotesDocument, found videos.ChapterVideos) (string, error) {
	if p.Store == nil {
		return "", errors.New("no notes store configured")
	}
	noteID, err := p.Store.SaveNote(ctx, p.Options.Owner, doc)
	if err != nil {
		return "", fmt.Errorf("failed to save note: %w", err)
	}
	if len(found) > 0 {
		if err := p.Store.SetChapterVideos(ctx, noteID, found); err != nil {
			return "", fmt.Errorf("failed to save chapter videos: %w", err)
		}
	}
	p.Log.Info("Saved note %s for %s", noteID, p.Options.Owner)
	return noteID, nil
}

func hasSource(in models.SyllabusInput) bool {
	return strings.TrimSpace(in.RawText) != "" || strings.TrimSpace(in.ImageData) != "" ||
		len(in.PDFData) > 0 || strings.TrimSpace(in.URL) != ""
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
