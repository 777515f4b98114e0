// Package wiki fetches short Wikipedia summaries ("quick info") for topics.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

const (
	DefaultBaseURL = "https://en.wikipedia.org/api/rest_v1"
	userAgent      = "syllabus-notes-mcp/0.0.1"
	maxBodySize    = 1 << 20
)

// ErrNoSummary is returned when Wikipedia has no page or no extract for a topic.
var ErrNoSummary = errors.New("no summary available")

// Summarizer returns a short summary for a topic.
type Summarizer interface {
	Summary(ctx context.Context, topic string) (models.TopicSummary, error)
}

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client calls the Wikipedia REST summary endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Summarizer = (*Client)(nil)

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

type pageSummary struct {
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Summary fetches the page summary for topic. A missing page or an empty
// extract is ErrNoSummary.
func (c *Client) Summary(ctx context.Context, topic string) (models.TopicSummary, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return models.TopicSummary{}, ErrNoSummary
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return models.TopicSummary{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/page/summary/"+url.PathEscape(topic), nil)
	if err != nil {
		return models.TopicSummary{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.TopicSummary{}, fmt.Errorf("failed to fetch summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.TopicSummary{}, fmt.Errorf("%w: %s", ErrNoSummary, topic)
	}
	if resp.StatusCode != http.StatusOK {
		return models.TopicSummary{}, fmt.Errorf("failed to fetch summary: status %d", resp.StatusCode)
	}

	var page pageSummary
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&page); err != nil {
		return models.TopicSummary{}, fmt.Errorf("failed to decode summary: %w", err)
	}
	if strings.TrimSpace(page.Extract) == "" {
		return models.TopicSummary{}, fmt.Errorf("%w: %s", ErrNoSummary, topic)
	}

	link := page.ContentURLs.Desktop.Page
	if link == "" {
		link = "https://en.wikipedia.org/wiki/" + url.PathEscape(topic)
	}
	return models.TopicSummary{Topic: topic, Extract: page.Extract, URL: link}, nil
}

// EnrichTopics fetches a summary for each topic concurrently. Topics without a
// summary, or whose lookup fails, are left out.
func EnrichTopics(ctx context.Context, s Summarizer, topics []string, concurrency int, log logger.Logger) map[string]models.TopicSummary {
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu     sync.Mutex
		result = make(map[string]models.TopicSummary, len(topics))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, topic := range topics {
		g.Go(func() error {
			summary, err := s.Summary(gctx, topic)
			if err != nil {
				if !errors.Is(err, ErrNoSummary) {
					log.Warn("Skipping summary for %q: %v", topic, err)
				}
				return nil
			}
			mu.Lock()
			result[topic] = summary
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	log.Info("Found summaries for %d of %d topics", len(result), len(topics))
	return result
}
