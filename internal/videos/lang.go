package videos

import (
	"strings"
	"unicode"
)

// Language tags used for query focus and result ordering.
const (
	LangMalayalam = "ml"
	LangEnglish   = "en"
	LangHindi     = "hi"
)

var malayalam = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0D00, Hi: 0x0D7F, Stride: 1}}}
var devanagari = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}}}

// priority orders results: Malayalam first, then English, then Hindi.
var priority = map[string]int{LangMalayalam: 0, LangEnglish: 1, LangHindi: 2}

// DetectLanguage classifies a video's title and description. It returns "" for
// text that is in none of the supported languages; such videos are dropped.
func DetectLanguage(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	if containsRange(text, malayalam) || strings.Contains(lower, "malayalam") || strings.Contains(text, "മലയാളം") {
		return LangMalayalam
	}
	if containsRange(text, devanagari) || strings.Contains(lower, "hindi") || strings.Contains(text, "हिंदी") {
		return LangHindi
	}
	if plainText(text) {
		return LangEnglish
	}
	return ""
}

func containsRange(s string, table *unicode.RangeTable) bool {
	for _, r := range s {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

// plainText reports whether s holds only letters, digits, punctuation and spaces.
func plainText(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsPunct(r) || unicode.In(r, unicode.Zs) {
			continue
		}
		return false
	}
	return true
}
