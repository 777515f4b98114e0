package videos

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// ChapterVideos maps a chapter name to its videos.
type ChapterVideos map[string][]models.Video

// EnrichOptions bounds chapter enrichment.
type EnrichOptions struct {
	PerChapter  int
	Concurrency int
}

// EnrichChapters looks up videos for each chapter name concurrently. A failed
// or empty lookup leaves the chapter out of the result; it never fails the
// whole enrichment.
func EnrichChapters(ctx context.Context, s Searcher, chapters []string, opts EnrichOptions, log logger.Logger) ChapterVideos {
	if opts.PerChapter <= 0 {
		opts.PerChapter = 3
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	var (
		mu     sync.Mutex
		result = make(ChapterVideos, len(chapters))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, name := range chapters {
		g.Go(func() error {
			found, err := s.Search(gctx, name, opts.PerChapter)
			if err != nil {
				log.Warn("Skipping videos for chapter %q: %v", name, err)
				return nil
			}
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			result[name] = found
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	log.Info("Found videos for %d of %d chapters", len(result), len(chapters))
	return result
}
