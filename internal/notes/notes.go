// Package notes holds the invariants of NotesDocument and the helpers that
// construct, normalise and summarise documents.
package notes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

var (
	ErrNoContent    = errors.New("notes document has neither modules nor topics")
	ErrEmptyModule  = errors.New("module has no chapters")
	ErrUnnamed      = errors.New("chapter has no name")
	ErrNoSubject    = errors.New("notes document has no subject")
	ErrBadReference = errors.New("module or chapter index out of range")
)

// Validate checks the structural invariants every document handed to a caller
// must satisfy.
func Validate(doc models.NotesDocument) error {
	if strings.TrimSpace(doc.Subject) == "" {
		return ErrNoSubject
	}
	if len(doc.Modules) == 0 && len(doc.Topics) == 0 {
		return ErrNoContent
	}
	for i, m := range doc.Modules {
		if len(m.Chapters) == 0 {
			return fmt.Errorf("modules[%d] %q: %w", i, m.Name, ErrEmptyModule)
		}
		for j, c := range m.Chapters {
			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("modules[%d].chapters[%d]: %w", i, j, ErrUnnamed)
			}
		}
	}
	return nil
}

// Normalize returns doc with every absent optional sequence replaced by an
// empty one, so consumers never have to distinguish nil from empty. Values and
// order are untouched.
func Normalize(doc models.NotesDocument) models.NotesDocument {
	doc.Topics = orEmpty(doc.Topics)
	if doc.Modules == nil {
		doc.Modules = []models.Module{}
	}
	for i := range doc.Modules {
		m := &doc.Modules[i]
		if m.Chapters == nil {
			m.Chapters = []models.Chapter{}
		}
		for j := range m.Chapters {
			c := &m.Chapters[j]
			c.KeyPoints = orEmpty(c.KeyPoints)
			c.Formulas = orEmpty(c.Formulas)
			c.ImportantConcepts = orEmpty(c.ImportantConcepts)
			c.CommonMistakes = orEmpty(c.CommonMistakes)
			c.StudyTips = orEmpty(c.StudyTips)
			c.PreviousYearQuestions = orEmpty(c.PreviousYearQuestions)
			c.RelatedTopics = orEmpty(c.RelatedTopics)
			if c.Tables == nil {
				c.Tables = []models.Table{}
			}
			for k := range c.Tables {
				t := &c.Tables[k]
				t.Headers = orEmpty(t.Headers)
				if t.Rows == nil {
					t.Rows = [][]string{}
				}
			}
		}
	}
	return doc
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Outline builds a topics-only document without calling the model.
func Outline(title string, extracted models.ExtractedTopics) models.NotesDocument {
	topics := make([]string, len(extracted.Topics))
	copy(topics, extracted.Topics)
	return models.NotesDocument{
		Title:   title,
		Subject: extracted.Subject,
		Modules: []models.Module{},
		Topics:  topics,
	}
}

// Counts returns the number of modules and chapters in doc.
func Counts(doc models.NotesDocument) (modules, chapters int) {
	for _, m := range doc.Modules {
		chapters += len(m.Chapters)
	}
	return len(doc.Modules), chapters
}

// ChapterNames lists chapter names in document order, without duplicates.
func ChapterNames(doc models.NotesDocument) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range doc.Modules {
		for _, c := range m.Chapters {
			if c.Name == "" || seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}

// EnrichmentKeys names the sections of doc that get per-section enrichment:
// its chapter names, or its topics for a document without chapters.
func EnrichmentKeys(doc models.NotesDocument) []string {
	if names := ChapterNames(doc); len(names) > 0 {
		return names
	}
	seen := make(map[string]bool)
	var keys []string
	for _, t := range doc.Topics {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		keys = append(keys, t)
	}
	return keys
}

// ModuleAt returns the module at index i.
func ModuleAt(doc models.NotesDocument, i int) (models.Module, error) {
	if i < 0 || i >= len(doc.Modules) {
		return models.Module{}, fmt.Errorf("module %d: %w", i, ErrBadReference)
	}
	return doc.Modules[i], nil
}

// ChapterAt returns chapter j of module i.
func ChapterAt(doc models.NotesDocument, i, j int) (models.Chapter, error) {
	m, err := ModuleAt(doc, i)
	if err != nil {
		return models.Chapter{}, err
	}
	if j < 0 || j >= len(m.Chapters) {
		return models.Chapter{}, fmt.Errorf("module %d chapter %d: %w", i, j, ErrBadReference)
	}
	return m.Chapters[j], nil
}

// TitleFromFilename derives a document title from a source filename, falling
// back to the subject.
func TitleFromFilename(filename, subject string) string {
	name := strings.TrimSpace(filename)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	if name == "" {
		if subject == "" {
			return "Study Notes"
		}
		return subject + " Notes"
	}
	return name
}
