// Package videos finds illustrative YouTube videos for chapters of a notes
// document.
package videos

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

const (
	DefaultMaxResults = 8
	maxPerQuery       = 10
)

var (
	ErrNotConfigured = errors.New("YouTube API key not configured")
	ErrEmptyQuery    = errors.New("query is required")
)

// Searcher returns videos for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.Video, error)
}

// Config configures a YouTube searcher.
type Config struct {
	APIKey            string
	Endpoint          string // overrides the API base URL, used by tests
	RegionCode        string
	RequestsPerSecond float64
}

// YouTube searches the YouTube Data API. Calls from all goroutines share one
// rate limiter.
type YouTube struct {
	svc        *youtube.Service
	limiter    *rate.Limiter
	regionCode string
	log        logger.Logger
}

var _ Searcher = (*YouTube)(nil)

// NewYouTube returns ErrNotConfigured when cfg has no API key.
func NewYouTube(ctx context.Context, cfg Config, log logger.Logger) (*YouTube, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &YouTube{
		svc:        svc,
		limiter:    rate.NewLimiter(limit, 1),
		regionCode: cfg.RegionCode,
		log:        log,
	}, nil
}

type languageQuery struct {
	suffix string
	lang   string
}

var languageQueries = []languageQuery{
	{"Malayalam", LangMalayalam},
	{"English", LangEnglish},
	{"Hindi", LangHindi},
}

// Search runs one query per supported language in parallel and merges the
// results. A failed language query is skipped; Search fails only if all do.
func (y *YouTube) Search(ctx context.Context, query string, maxResults int) ([]models.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	perQuery := min(maxPerQuery, maxResults)

	batches := make([][]*youtube.SearchResult, len(languageQueries))
	var (
		mu       sync.Mutex
		failures []error
	)

	var g errgroup.Group
	for i, lq := range languageQueries {
		g.Go(func() error {
			items, err := y.searchOne(ctx, query+" "+lq.suffix, lq.lang, perQuery)
			if err != nil {
				y.log.Warn("YouTube search %q (%s) failed: %v", query, lq.lang, err)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			batches[i] = items
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == len(languageQueries) {
		return nil, fmt.Errorf("failed to search YouTube: %w", errors.Join(failures...))
	}

	var all []*youtube.SearchResult
	for _, b := range batches {
		all = append(all, b...)
	}
	return Merge(all, maxResults), nil
}

func (y *YouTube) searchOne(ctx context.Context, q, lang string, maxResults int) ([]*youtube.SearchResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	call := y.svc.Search.List([]string{"snippet"}).
		Q(q).
		Type("video").
		Order("relevance").
		SafeSearch("moderate").
		RelevanceLanguage(lang).
		MaxResults(int64(maxResults))
	if y.regionCode != "" {
		call = call.RegionCode(y.regionCode)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

type rankedVideo struct {
	video models.Video
	lang  string
}

// Merge normalises raw search results: items without a video id or in an
// unsupported language are dropped, duplicates keep their first occurrence, and
// the rest is ordered Malayalam, English, Hindi and capped at maxResults.
func Merge(items []*youtube.SearchResult, maxResults int) []models.Video {
	seen := make(map[string]bool)
	var ranked []rankedVideo
	for _, item := range items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		id := item.Id.VideoId

		var title, description string
		if item.Snippet != nil {
			title = item.Snippet.Title
			description = item.Snippet.Description
		}
		lang := DetectLanguage(title + " " + description)
		if lang == "" || seen[id] {
			continue
		}
		seen[id] = true

		ranked = append(ranked, rankedVideo{
			lang: lang,
			video: models.Video{
				ID:          id,
				Title:       title,
				Description: description,
				Thumbnail:   thumbnail(item.Snippet),
				URL:         "https://www.youtube.com/watch?v=" + id,
			},
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return priority[ranked[i].lang] < priority[ranked[j].lang]
	})
	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	videos := make([]models.Video, len(ranked))
	for i, r := range ranked {
		videos[i] = r.video
	}
	return videos
}

func thumbnail(s *youtube.SearchResultSnippet) string {
	if s == nil || s.Thumbnails == nil {
		return ""
	}
	if s.Thumbnails.Medium != nil && s.Thumbnails.Medium.Url != "" {
		return s.Thumbnails.Medium.Url
	}
	if s.Thumbnails.Default != nil {
		return s.Thumbnails.Default.Url
	}
	return ""
}
