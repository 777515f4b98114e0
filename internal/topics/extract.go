// Package topics derives a best-effort subject and topic list from raw syllabus text.
package topics

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

const (
	DefaultSubject = "General Studies"

	maxTopics          = 15
	maxFallbackLines   = 10
	minLineLength      = 5
	maxLineLength      = 100
	minMeaningfulChars = 10
)

// GenericTopics is emitted when nothing usable can be found in the text.
var GenericTopics = []string{
	"Introduction and Fundamentals",
	"Core Concepts and Terminology",
	"Key Principles and Theories",
	"Methods and Techniques",
	"Practical Applications",
	"Advanced Topics",
	"Review and Summary",
}

// topicRule is one entry of the per-line pattern cascade. The first rule whose
// pattern matches a line decides the topic; group 1 of the pattern (if present)
// is the extracted remainder, otherwise the whole line is used.
type topicRule struct {
	name    string
	pattern *regexp.Regexp
}

var topicRules = []topicRule{
	{
		name:    "enumerated",
		pattern: regexp.MustCompile(`^(?:\d+[.)]|-|•)\s*(.+)$`),
	},
	{
		name:    "heading",
		pattern: regexp.MustCompile(`(?i)^(?:chapter|unit|topic|module|section|lesson)\b\s*\d*\s*:?\s*(.+)$`),
	},
	{
		name:    "capitalised",
		pattern: regexp.MustCompile(`^[A-Z][A-Za-z0-9 ,&'()/-]*[A-Za-z0-9)]$`),
	},
}

// Extract returns the subject and topics found in text. It never fails: when no
// topic line matches it falls back to the first meaningful lines, and then to
// GenericTopics.
func Extract(text, filename string) models.ExtractedTopics {
	lines := splitLines(text)

	result := models.ExtractedTopics{
		Subject: DetectSubject(filename + text),
		Topics:  matchTopics(lines),
	}

	if len(result.Topics) == 0 {
		result.Topics = meaningfulLines(lines)
	}
	if len(result.Topics) == 0 {
		result.Topics = append([]string(nil), GenericTopics...)
	}
	return result
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func matchTopics(lines []string) []string {
	seen := make(map[string]bool)
	var found []string

	for _, line := range lines {
		if len(found) >= maxTopics {
			break
		}
		n := utf8.RuneCountInString(line)
		if n < minLineLength || n > maxLineLength {
			continue
		}

		topic, ok := applyRules(line)
		if !ok || seen[topic] {
			continue
		}
		seen[topic] = true
		found = append(found, topic)
	}
	return found
}

func applyRules(line string) (string, bool) {
	for _, rule := range topicRules {
		m := rule.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		topic := line
		if len(m) > 1 {
			topic = strings.TrimSpace(m[1])
		}
		if !hasLetter(topic) {
			return "", false
		}
		return topic, true
	}
	return "", false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func meaningfulLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if len(out) >= maxFallbackLines {
			break
		}
		n := utf8.RuneCountInString(line)
		if n < minMeaningfulChars || n > maxLineLength {
			continue
		}
		if strings.Contains(line, "@") || strings.Contains(line, "http") {
			continue
		}
		out = append(out, line)
	}
	return out
}
