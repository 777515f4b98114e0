package storage

import (
	"context"
	"errors"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// ErrNotFound is returned when a note id does not exist.
var ErrNotFound = errors.New("note not found")

// Store defines the interface for the saved-notes library
type Store interface {
	// SaveNote stores a new notes document for owner and returns its id
	SaveNote(ctx context.Context, owner string, doc models.NotesDocument) (string, error)

	// UpdateNote replaces the content of an existing note and bumps its updated_at
	UpdateNote(ctx context.Context, noteID string, doc models.NotesDocument) error

	// GetNote retrieves a note by id
	GetNote(ctx context.Context, noteID string) (*models.SavedNote, error)

	// ListNotes returns the notes of owner, most recently updated first
	ListNotes(ctx context.Context, owner string) ([]models.NoteInfo, error)

	// DeleteNote removes a note and its videos
	DeleteNote(ctx context.Context, noteID string) error

	// SetChapterVideos replaces the videos stored for a note, keyed by chapter name
	SetChapterVideos(ctx context.Context, noteID string, videos map[string][]models.Video) error

	// GetChapterVideos returns the videos stored for a note, keyed by chapter name
	GetChapterVideos(ctx context.Context, noteID string) (map[string][]models.Video, error)

	// Close closes the database connection
	Close() error
}
