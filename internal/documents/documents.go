// Package documents loads syllabus sources (text, images, PDFs and web pages)
// and turns them into prompt text and multimodal attachments.
package documents

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Document types returned by DetectDocumentType.
const (
	TypePDF     = "pdf"
	TypePNG     = "png"
	TypeJPEG    = "jpeg"
	TypeWebP    = "webp"
	TypeGIF     = "gif"
	TypeHTML    = "html"
	TypeMD      = "md"
	TypeText    = "txt"
	TypeDOCX    = "docx"
	TypeZIP     = "zip"
	TypeUnknown = "unknown"
)

// maxDownloadBytes bounds what GetFromURL will read.
const maxDownloadBytes = 20 << 20

var httpClient = &http.Client{Timeout: 60 * time.Second}

// DetectDocumentType determines the type of document from the raw data
// by checking magic bytes/headers
func DetectDocumentType(data []byte) string {
	if len(data) == 0 {
		return TypeUnknown
	}

	if len(data) < 4 {
		if isLikelyText(data) {
			return TypeText
		}
		return TypeUnknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return TypePDF
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return TypePNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return TypeJPEG
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return TypeWebP
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return TypeGIF
	}

	trimmed := bytes.TrimSpace(data)
	lower := bytes.ToLower(trimmed[:min(len(trimmed), 15)])
	if bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html")) {
		return TypeHTML
	}

	// DOCX: ZIP file starting with PK containing a word/ directory
	if data[0] == 0x50 && data[1] == 0x4B && (data[2] == 0x03 || data[2] == 0x05 || data[2] == 0x07) {
		if bytes.Contains(data[:min(len(data), 1024)], []byte("word/")) {
			return TypeDOCX
		}
		return TypeZIP
	}

	if isLikelyText(data) {
		head := data[:min(len(data), 1024)]
		if bytes.Contains(head, []byte("# ")) || bytes.Contains(head, []byte("## ")) || bytes.Contains(head, []byte("```")) {
			return TypeMD
		}
		return TypeText
	}

	return TypeUnknown
}

// IsImage reports whether docType is an image type accepted as a syllabus.
func IsImage(docType string) bool {
	switch docType {
	case TypePNG, TypeJPEG, TypeWebP, TypeGIF:
		return true
	}
	return false
}

// isLikelyText checks if the data is likely plain text (no binary content).
// Bytes of multi-byte UTF-8 sequences count as printable so syllabi in
// Malayalam or Hindi are recognised.
func isLikelyText(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sample := data[:min(len(data), 512)]
	if bytes.Contains(sample, []byte{0}) {
		return false
	}

	printable := 0
	for _, b := range sample {
		if (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' || b >= 0x80 {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.9
}

func mimeType(docType string) string {
	switch docType {
	case TypePDF:
		return "application/pdf"
	case TypePNG:
		return "image/png"
	case TypeJPEG:
		return "image/jpeg"
	case TypeWebP:
		return "image/webp"
	case TypeGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// DataURI encodes data as a base64 data URI of the given document type.
func DataURI(docType string, data []byte) string {
	return "data:" + mimeType(docType) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// NormalizeImage accepts an image as a data URI or bare base64 and returns a
// data URI with a detected image MIME type.
func NormalizeImage(image string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return "", fmt.Errorf("empty image data")
	}
	if strings.HasPrefix(image, "data:") {
		if !strings.HasPrefix(image, "data:image/") || !strings.Contains(image, ";base64,") {
			return "", fmt.Errorf("unsupported data URI: expected a base64 image")
		}
		return image, nil
	}

	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}
	docType := DetectDocumentType(data)
	if !IsImage(docType) {
		return "", fmt.Errorf("unsupported image type: %s", docType)
	}
	return DataURI(docType, data), nil
}

// GetFromURL fetches document data from a URL
func GetFromURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("document at %s exceeds %d bytes", url, maxDownloadBytes)
	}
	return data, nil
}
