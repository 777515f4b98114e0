package storage

import (
	"fmt"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// CalculateResourcePaths generates the resource URIs available for a saved note.
func CalculateResourcePaths(noteID string, doc models.NotesDocument) []string {
	resourcePaths := []string{fmt.Sprintf("notes://%s", noteID)}

	if len(doc.Modules) > 0 {
		resourcePaths = append(resourcePaths,
			fmt.Sprintf("notes://%s/modules/{moduleIndex}", noteID),
			fmt.Sprintf("notes://%s/modules/{moduleIndex}/chapters/{chapterIndex}", noteID),
			fmt.Sprintf("notes://%s/videos", noteID),
		)
	}

	return resourcePaths
}
