package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// fakeGateway serves /chat/completions with a fixed status and body and
// records the last request body it received.
type fakeGateway struct {
	status int
	body   string
	calls  atomic.Int32
	last   atomic.Value // map[string]any
}

func (f *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	raw, _ := io.ReadAll(r.Body)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	f.last.Store(decoded)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

func newTestClient(t *testing.T, gw http.Handler, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		APIKey:  apiKey,
		BaseURL: srv.URL + "/",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, logger.NewNoOpLogger())
}

func testRequest() models.GenerationRequest {
	return models.GenerationRequest{
		ContractVersion:   "v2",
		SystemInstruction: "system",
		UserPrompt:        "user",
	}
}

func successBody(content string) string {
	b, _ := json.Marshal(content)
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"test-model",` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(b) + `}}]}`
}

func TestGenerate_Success(t *testing.T) {
	gw := &fakeGateway{status: http.StatusOK, body: successBody("```json\n{}\n```")}
	client := newTestClient(t, gw, "test-key")

	got, err := client.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "```json\n{}\n```" {
		t.Errorf("Generate = %q", got)
	}

	sent, _ := gw.last.Load().(map[string]any)
	if sent["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", sent["model"])
	}
	messages, _ := sent["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected a system and a user message, got %d", len(messages))
	}
	if m, _ := messages[0].(map[string]any); m["role"] != "system" {
		t.Errorf("first message role = %v, want system", m["role"])
	}
	if _, ok := sent["response_format"]; ok {
		t.Error("response_format should not be sent unless structured output is enabled")
	}
}

func TestGenerate_MultimodalUserMessage(t *testing.T) {
	gw := &fakeGateway{status: http.StatusOK, body: successBody("ok")}
	client := newTestClient(t, gw, "test-key")

	req := testRequest()
	req.Attachments = []models.Attachment{{Kind: models.AttachmentImage, DataURI: "data:image/png;base64,AAAA"}}

	if _, err := client.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	sent, _ := gw.last.Load().(map[string]any)
	messages, _ := sent["messages"].([]any)
	user, _ := messages[1].(map[string]any)
	parts, ok := user["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("expected text and image parts, got %v", user["content"])
	}
	image, _ := parts[1].(map[string]any)
	if image["type"] != "image_url" {
		t.Errorf("second part type = %v, want image_url", image["type"])
	}
}

func TestGenerate_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{"rate limited", http.StatusTooManyRequests, RateLimited},
		{"quota exhausted", http.StatusPaymentRequired, QuotaExhausted},
		{"server error", http.StatusInternalServerError, UpstreamError},
		{"bad request", http.StatusBadRequest, UpstreamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{status: tt.status, body: `{"error":{"message":"nope","type":"error"}}`}
			client := newTestClient(t, gw, "test-key")

			_, err := client.Generate(context.Background(), testRequest())

			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected *GenerationError, got %T: %v", err, err)
			}
			if genErr.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", genErr.Kind, tt.want)
			}
			if genErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", genErr.StatusCode, tt.status)
			}
			if gw.calls.Load() != 1 {
				t.Errorf("expected exactly one call, got %d", gw.calls.Load())
			}
		})
	}
}

func TestGenerate_MissingContent(t *testing.T) {
	bodies := map[string]string{
		"empty content": successBody("   "),
		"no choices":    `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, &fakeGateway{status: http.StatusOK, body: body}, "test-key")
			_, err := client.Generate(context.Background(), testRequest())
			if kind, ok := KindOf(err); !ok || kind != UpstreamError {
				t.Errorf("expected UpstreamError, got %v", err)
			}
		})
	}
}

func TestGenerate_MissingKeyFailsBeforeNetwork(t *testing.T) {
	gw := &fakeGateway{status: http.StatusOK, body: successBody("ok")}
	client := newTestClient(t, gw, "")

	_, err := client.Generate(context.Background(), testRequest())
	if kind, ok := KindOf(err); !ok || kind != ConfigurationError {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if gw.calls.Load() != 0 {
		t.Errorf("no request should be sent without a key, got %d", gw.calls.Load())
	}
}

func TestGenerate_TimeoutIsUpstreamError(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(slow)
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/",
		Model:   "test-model",
		Timeout: 50 * time.Millisecond,
	}, logger.NewNoOpLogger())

	_, err := client.Generate(context.Background(), testRequest())
	if kind, ok := KindOf(err); !ok || kind != UpstreamError {
		t.Errorf("expected UpstreamError on timeout, got %v", err)
	}
}

func TestGenerationError_UserMessages(t *testing.T) {
	rate := &GenerationError{Kind: RateLimited, StatusCode: 429}
	if rate.UserMessage() != "Rate limit exceeded. Please try again in a moment." {
		t.Errorf("unexpected rate limit message: %q", rate.UserMessage())
	}
	if rate.Retryable() {
		t.Error("RateLimited must not be retried automatically")
	}

	quota := &GenerationError{Kind: QuotaExhausted, StatusCode: 402}
	if quota.Retryable() {
		t.Error("QuotaExhausted must not be retriable")
	}

	upstream := &GenerationError{Kind: UpstreamError, Err: io.ErrUnexpectedEOF}
	if !upstream.Retryable() {
		t.Error("UpstreamError should be retriable")
	}
	if !errors.Is(upstream, io.ErrUnexpectedEOF) {
		t.Error("GenerationError should unwrap its cause")
	}
}
