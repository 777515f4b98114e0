package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// fakeWikipedia serves page summaries for the titles in pages; any other title is a 404.
func fakeWikipedia(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("requests should carry a User-Agent")
		}
		title := strings.TrimPrefix(r.URL.Path, "/page/summary/")
		if title == "Broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		extract, ok := pages[title]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body := map[string]any{"extract": extract}
		if extract != "" {
			body["content_urls"] = map[string]any{"desktop": map[string]string{"page": "https://en.wikipedia.org/wiki/" + title}}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Summary(t *testing.T) {
	srv := fakeWikipedia(t, map[string]string{
		"Newton's laws of motion": "Newton's laws of motion are three physical laws.",
		"Stub":                    "",
	})
	c := NewClient(Config{BaseURL: srv.URL})
	ctx := context.Background()

	got, err := c.Summary(ctx, " Newton's laws of motion ")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if got.Topic != "Newton's laws of motion" || !strings.HasPrefix(got.Extract, "Newton's laws") {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.URL != "https://en.wikipedia.org/wiki/Newton's laws of motion" {
		t.Errorf("URL = %q", got.URL)
	}

	tests := []struct {
		name  string
		topic string
		want  error
	}{
		{"missing page", "Nonexistent", ErrNoSummary},
		{"empty extract", "Stub", ErrNoSummary},
		{"blank topic", "  ", ErrNoSummary},
		{"server error", "Broken", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Summary(ctx, tt.topic)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

type stubSummarizer struct{}

func (stubSummarizer) Summary(ctx context.Context, topic string) (models.TopicSummary, error) {
	switch topic {
	case "Obscure":
		return models.TopicSummary{}, ErrNoSummary
	case "Flaky":
		return models.TopicSummary{}, errors.New("connection reset")
	}
	return models.TopicSummary{Topic: topic, Extract: topic + " is a topic."}, nil
}

func TestEnrichTopics(t *testing.T) {
	got := EnrichTopics(context.Background(), stubSummarizer{}, []string{"Optics", "Obscure", "Flaky", "Waves"}, 2, logger.NewNoOpLogger())

	if len(got) != 2 {
		t.Fatalf("expected summaries for 2 topics, got %v", got)
	}
	for _, topic := range []string{"Optics", "Waves"} {
		if got[topic].Extract != topic+" is a topic." {
			t.Errorf("missing summary for %s: %+v", topic, got[topic])
		}
	}
}
