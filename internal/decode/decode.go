// Package decode turns a raw model reply into a NotesDocument. Decoding never
// fails: a reply that cannot be parsed or does not satisfy the notes schema is
// replaced by a minimal fallback document.
package decode

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/notes"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/prompts"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

const (
	FallbackSubject      = "General Studies"
	FallbackModule       = "Extracted Topics"
	FallbackChapter      = "AI Analysis"
	FallbackKeyPoint     = "See detailed content in PDF"
	FallbackApplications = "Multiple topics identified from syllabus"

	fallbackDescriptionChars = 200
)

var fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)```")

var (
	resolveOnce sync.Once
	resolved    *jsonschema.Resolved
	resolveErr  error
)

func notesSchema() (*jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		resolved, resolveErr = prompts.NotesSchema().Resolve(nil)
	})
	return resolved, resolveErr
}

// Result is the outcome of Decode. Degraded is set when Document is the
// fallback; Reason then says why.
type Result struct {
	Document models.NotesDocument
	Degraded bool
	Reason   string
}

// Decode extracts, parses and validates raw. title is supplied by the caller
// and never read from the reply.
func Decode(raw, title string) Result {
	payload := ExtractPayload(raw)

	var instance any
	if err := json.Unmarshal([]byte(payload), &instance); err != nil {
		return fallback(raw, title, fmt.Sprintf("reply is not valid JSON: %v", err))
	}
	instance = dropNulls(instance)

	schema, err := notesSchema()
	if err != nil {
		return fallback(raw, title, fmt.Sprintf("notes schema unavailable: %v", err))
	}
	if err := schema.Validate(instance); err != nil {
		return fallback(raw, title, fmt.Sprintf("reply does not match the notes schema: %v", err))
	}

	cleaned, err := json.Marshal(instance)
	if err != nil {
		return fallback(raw, title, fmt.Sprintf("failed to re-encode reply: %v", err))
	}
	var doc models.NotesDocument
	if err := json.Unmarshal(cleaned, &doc); err != nil {
		return fallback(raw, title, fmt.Sprintf("failed to decode notes: %v", err))
	}
	doc.Title = title

	if err := notes.Validate(doc); err != nil {
		return fallback(raw, title, err.Error())
	}

	return Result{Document: notes.Normalize(doc)}
}

// ExtractPayload returns the interior of the first ```json fenced block in raw,
// or raw itself when there is none.
func ExtractPayload(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// Fallback builds the minimal one-module, one-chapter document used when a reply
// cannot be decoded.
func Fallback(raw, title string) models.NotesDocument {
	description := raw
	if runes := []rune(raw); len(runes) > fallbackDescriptionChars {
		description = string(runes[:fallbackDescriptionChars])
	}
	return notes.Normalize(models.NotesDocument{
		Title:   title,
		Subject: FallbackSubject,
		Modules: []models.Module{{
			Name: FallbackModule,
			Chapters: []models.Chapter{{
				Name:         FallbackChapter,
				Description:  description,
				KeyPoints:    []string{FallbackKeyPoint},
				Applications: FallbackApplications,
			}},
		}},
	})
}

func fallback(raw, title, reason string) Result {
	return Result{Document: Fallback(raw, title), Degraded: true, Reason: reason}
}

// dropNulls removes null object members so that an explicit null is treated the
// same as an absent optional field.
func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if child == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = dropNulls(child)
		}
		return t
	default:
		return v
	}
}
