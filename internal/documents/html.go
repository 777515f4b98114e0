package documents

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// PreprocessHTML converts an HTML syllabus page to Markdown, dropping scripts,
// styles and markup so the prompt carries only the readable text.
func PreprocessHTML(html []byte) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(string(html))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
