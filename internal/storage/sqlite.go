package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/notes"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// timeLayout is fixed-width so that stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saved_notes (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		title TEXT NOT NULL,
		subject TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chapter_videos (
		note_id TEXT NOT NULL,
		chapter_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		video_id TEXT NOT NULL,
		title TEXT,
		description TEXT,
		thumbnail TEXT,
		url TEXT,
		PRIMARY KEY (note_id, chapter_name, position),
		FOREIGN KEY (note_id) REFERENCES saved_notes(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_saved_notes_owner_updated ON saved_notes(owner, updated_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// SaveNote stores a new notes document for owner and returns its id
func (s *SQLiteStore) SaveNote(ctx context.Context, owner string, doc models.NotesDocument) (string, error) {
	content, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal notes: %w", err)
	}

	noteID := uuid.NewString()
	ts := s.timestamp()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_notes (id, owner, title, subject, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, noteID, owner, doc.Title, doc.Subject, string(content), ts, ts)
	if err != nil {
		return "", fmt.Errorf("failed to insert note: %w", err)
	}

	return noteID, nil
}

// UpdateNote replaces the content of an existing note and bumps its updated_at
func (s *SQLiteStore) UpdateNote(ctx context.Context, noteID string, doc models.NotesDocument) error {
	content, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal notes: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE saved_notes SET title = ?, subject = ?, content = ?, updated_at = ?
		WHERE id = ?
	`, doc.Title, doc.Subject, string(content), s.timestamp(), noteID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return expectOneRow(result, noteID)
}

// GetNote retrieves a note by id
func (s *SQLiteStore) GetNote(ctx context.Context, noteID string) (*models.SavedNote, error) {
	var (
		note    models.SavedNote
		content string
		created string
		updated string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner, title, subject, content, created_at, updated_at
		FROM saved_notes WHERE id = ?
	`, noteID).Scan(&note.ID, &note.Owner, &note.Title, &note.Subject, &content, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, noteID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if err := json.Unmarshal([]byte(content), &note.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notes: %w", err)
	}
	if note.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if note.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &note, nil
}

// ListNotes returns the notes of owner, most recently updated first
func (s *SQLiteStore) ListNotes(ctx context.Context, owner string) ([]models.NoteInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, subject, content, updated_at
		FROM saved_notes
		WHERE owner = ?
		ORDER BY updated_at DESC, id
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	infos := []models.NoteInfo{}
	for rows.Next() {
		var (
			info    models.NoteInfo
			content string
			updated string
		)
		if err := rows.Scan(&info.NoteID, &info.Title, &info.Subject, &content, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}

		var doc models.NotesDocument
		if err := json.Unmarshal([]byte(content), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notes %s: %w", info.NoteID, err)
		}
		info.ModuleCount, info.ChapterCount = notes.Counts(doc)
		if info.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return infos, nil
}

// DeleteNote removes a note and its videos
func (s *SQLiteStore) DeleteNote(ctx context.Context, noteID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chapter_videos WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("failed to delete videos: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM saved_notes WHERE id = ?`, noteID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if err := expectOneRow(result, noteID); err != nil {
		return err
	}

	return tx.Commit()
}

// SetChapterVideos replaces the videos stored for a note, keyed by chapter name
func (s *SQLiteStore) SetChapterVideos(ctx context.Context, noteID string, videos map[string][]models.Video) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM saved_notes WHERE id = ?`, noteID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, noteID)
	}
	if err != nil {
		return fmt.Errorf("failed to check note: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chapter_videos WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("failed to clear videos: %w", err)
	}
	for chapter, list := range videos {
		for i, v := range list {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO chapter_videos (note_id, chapter_name, position, video_id, title, description, thumbnail, url)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, noteID, chapter, i, v.ID, v.Title, v.Description, v.Thumbnail, v.URL)
			if err != nil {
				return fmt.Errorf("failed to insert video %s for %q: %w", v.ID, chapter, err)
			}
		}
	}

	return tx.Commit()
}

// GetChapterVideos returns the videos stored for a note, keyed by chapter name
func (s *SQLiteStore) GetChapterVideos(ctx context.Context, noteID string) (map[string][]models.Video, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chapter_name, video_id, title, description, thumbnail, url
		FROM chapter_videos
		WHERE note_id = ?
		ORDER BY chapter_name, position
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := make(map[string][]models.Video)
	for rows.Next() {
		var chapter string
		var v models.Video
		if err := rows.Scan(&chapter, &v.ID, &v.Title, &v.Description, &v.Thumbnail, &v.URL); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos[chapter] = append(videos[chapter], v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func expectOneRow(result sql.Result, noteID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, noteID)
	}
	return nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
