package models

import "time"

// NotesDocument is the structured study-notes tree produced for one syllabus.
// Either Modules or Topics is populated; Topics-only documents come from outline mode.
type NotesDocument struct {
	Title   string   `json:"title"`
	Subject string   `json:"subject"`
	Modules []Module `json:"modules,omitempty"`
	Topics  []string `json:"topics,omitempty"`
}

type Module struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Chapters    []Chapter `json:"chapters"`
}

type Chapter struct {
	Name                  string   `json:"name"`
	Description           string   `json:"description,omitempty"`
	Definition            string   `json:"definition,omitempty"`
	KeyPoints             []string `json:"keyPoints,omitempty"`
	Applications          string   `json:"applications,omitempty"`
	Formulas              []string `json:"formulas,omitempty"`
	Tables                []Table  `json:"tables,omitempty"`
	ImportantConcepts     []string `json:"importantConcepts,omitempty"`
	CommonMistakes        []string `json:"commonMistakes,omitempty"`
	StudyTips             []string `json:"studyTips,omitempty"`
	PreviousYearQuestions []string `json:"previousYearQuestions,omitempty"`
	RelatedTopics         []string `json:"relatedTopics,omitempty"`
	IsImportant           bool     `json:"isImportant,omitempty"`
}

type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ExtractedTopics is the heuristic (subject, topics) pair derived from syllabus text.
type ExtractedTopics struct {
	Subject string   `json:"subject"`
	Topics  []string `json:"topics"`
}

// SyllabusInput carries one syllabus source. Exactly one of RawText, ImageData,
// PDFData or URL is expected to be set.
type SyllabusInput struct {
	RawText   string `json:"raw_text,omitempty"`
	ImageData string `json:"image_data,omitempty"` // base64 or data URI
	PDFData   []byte `json:"pdf_data,omitempty"`
	URL       string `json:"url,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// Attachment kinds.
const (
	AttachmentImage = "image"
	AttachmentFile  = "file"
)

// Attachment is a multimodal part sent alongside the user prompt.
type Attachment struct {
	Kind     string `json:"kind"` // AttachmentImage or AttachmentFile
	DataURI  string `json:"data_uri"`
	Filename string `json:"filename,omitempty"`
}

// GenerationRequest is the immutable system/user message pair sent to the model.
type GenerationRequest struct {
	ContractVersion   string       `json:"contract_version"`
	SystemInstruction string       `json:"system_instruction"`
	UserPrompt        string       `json:"user_prompt"`
	Attachments       []Attachment `json:"attachments,omitempty"`
}

// SavedNote is a persisted notes document.
type SavedNote struct {
	ID        string        `json:"id"`
	Owner     string        `json:"owner"`
	Title     string        `json:"title"`
	Subject   string        `json:"subject"`
	Content   NotesDocument `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NoteInfo contains basic information about a stored note
type NoteInfo struct {
	NoteID       string    `json:"note_id"`
	Title        string    `json:"title"`
	Subject      string    `json:"subject"`
	ModuleCount  int       `json:"module_count"`
	ChapterCount int       `json:"chapter_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Video is one illustrative video returned by the video-enrichment capability.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
}

// TopicSummary is a short encyclopedia extract for one chapter or topic.
type TopicSummary struct {
	Topic   string `json:"topic"`
	Extract string `json:"extract"`
	URL     string `json:"url"`
}
