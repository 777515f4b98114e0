// Package prompts builds generation requests from syllabus content and the
// versioned notes output contract.
package prompts

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

const truncationMarker = "\n[... syllabus truncated ...]"

// Style holds the directives a contract is parameterised with.
type Style struct {
	Detail   string // "concise", "standard" or "exhaustive"
	Language string
}

// BuildInput is the content a request is built from. RawText takes precedence
// over Topics; Attachments are sent as multimodal parts of the user message.
type BuildInput struct {
	Subject     string
	Topics      []string
	RawText     string
	Attachments []models.Attachment
}

// Builder builds requests against one contract version.
type Builder struct {
	contract       Contract
	style          Style
	maxSourceChars int
}

// NewBuilder returns a builder for the given contract version. An empty version
// selects CurrentVersion; an unknown one is an error.
func NewBuilder(version string, style Style, maxSourceChars int) (*Builder, error) {
	if version == "" {
		version = CurrentVersion
	}
	contract, ok := LookupContract(version)
	if !ok {
		return nil, fmt.Errorf("unknown prompt contract version: %s", version)
	}
	return &Builder{contract: contract, style: style, maxSourceChars: maxSourceChars}, nil
}

// Build constructs the request for in. It performs no I/O.
func (b *Builder) Build(in BuildInput) (models.GenerationRequest, error) {
	var user string
	switch {
	case strings.TrimSpace(in.RawText) != "":
		user = fmt.Sprintf("Create enriched, exam-ready notes from the following syllabus text. Keep accuracy high, no hallucinations.\n\nSubject: %s\n\nSyllabus text:\n%s",
			orDefault(in.Subject, "Unknown"), b.truncate(in.RawText))
	case len(in.Topics) > 0:
		user = fmt.Sprintf("Create enriched, exam-ready notes for the subject using these topics. Keep accuracy high, no hallucinations.\n\nSubject: %s\n\nTopics:\n- %s",
			orDefault(in.Subject, "General Studies"), strings.Join(in.Topics, "\n- "))
	case len(in.Attachments) > 0:
		user = "Analyze this syllabus and extract all modules, chapters, and topics with detailed educational content."
		if in.Subject != "" {
			user += "\n\nSubject: " + in.Subject
		}
	default:
		return models.GenerationRequest{}, errors.New("no syllabus content to build a request from")
	}

	attachments := make([]models.Attachment, len(in.Attachments))
	copy(attachments, in.Attachments)

	return models.GenerationRequest{
		ContractVersion:   b.contract.Version,
		SystemInstruction: b.systemInstruction(),
		UserPrompt:        user,
		Attachments:       attachments,
	}, nil
}

func (b *Builder) systemInstruction() string {
	return strings.NewReplacer(
		"{{detail}}", orDefault(b.style.Detail, "standard"),
		"{{language}}", orDefault(b.style.Language, "English"),
	).Replace(b.contract.System)
}

func (b *Builder) truncate(text string) string {
	if b.maxSourceChars <= 0 || utf8.RuneCountInString(text) <= b.maxSourceChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:b.maxSourceChars]) + truncationMarker
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
