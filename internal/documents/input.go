package documents

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/logger"
	"github.com/Epistemic-Technology/syllabus-notes-mcp/models"
)

// ErrNoInput is returned when a SyllabusInput carries no source at all.
var ErrNoInput = errors.New("no syllabus provided: set raw_text, image_data, pdf_data or url")

// Prepared is a syllabus ready for topic extraction and request building.
type Prepared struct {
	Text        string
	Attachments []models.Attachment
	Filename    string
	PageCount   int // pages in the original PDF, 0 for other inputs
}

// Load resolves input to prompt text and attachments. Raw text wins over the
// other sources; a URL is fetched and handled by its detected type.
func Load(ctx context.Context, input models.SyllabusInput, maxPDFPages int, log logger.Logger) (Prepared, error) {
	switch {
	case strings.TrimSpace(input.RawText) != "":
		return Prepared{Text: input.RawText, Filename: input.Filename}, nil

	case strings.TrimSpace(input.ImageData) != "":
		uri, err := NormalizeImage(input.ImageData)
		if err != nil {
			return Prepared{}, err
		}
		return Prepared{
			Filename:    input.Filename,
			Attachments: []models.Attachment{imageAttachment(uri, input.Filename)},
		}, nil

	case len(input.PDFData) > 0:
		return loadPDF(input.PDFData, orFilename(input.Filename, "syllabus.pdf"), maxPDFPages, log)

	case strings.TrimSpace(input.URL) != "":
		log.Info("Fetching syllabus from %s", input.URL)
		data, err := GetFromURL(ctx, input.URL)
		if err != nil {
			return Prepared{}, err
		}
		filename := orFilename(input.Filename, path.Base(input.URL))
		return loadBytes(data, filename, maxPDFPages, log)
	}

	return Prepared{}, ErrNoInput
}

func loadBytes(data []byte, filename string, maxPDFPages int, log logger.Logger) (Prepared, error) {
	docType := DetectDocumentType(data)
	log.Debug("Detected syllabus type %s for %s (%d bytes)", docType, filename, len(data))

	switch {
	case docType == TypePDF:
		return loadPDF(data, filename, maxPDFPages, log)
	case IsImage(docType):
		return Prepared{
			Filename:    filename,
			Attachments: []models.Attachment{imageAttachment(DataURI(docType, data), filename)},
		}, nil
	case docType == TypeHTML:
		text, err := PreprocessHTML(data)
		if err != nil {
			return Prepared{}, err
		}
		return Prepared{Text: text, Filename: filename}, nil
	case docType == TypeText || docType == TypeMD:
		return Prepared{Text: string(data), Filename: filename}, nil
	default:
		return Prepared{}, fmt.Errorf("unsupported syllabus type: %s", docType)
	}
}

func loadPDF(data []byte, filename string, maxPages int, log logger.Logger) (Prepared, error) {
	trimmed, pageCount, err := TrimPDF(data, maxPages)
	if err != nil {
		return Prepared{}, err
	}
	if maxPages > 0 && pageCount > maxPages {
		log.Warn("PDF %s has %d pages, sending the first %d", filename, pageCount, maxPages)
	}
	return Prepared{
		Filename:  filename,
		PageCount: pageCount,
		Attachments: []models.Attachment{{
			Kind:     models.AttachmentFile,
			DataURI:  DataURI(TypePDF, trimmed),
			Filename: filename,
		}},
	}, nil
}

func imageAttachment(uri, filename string) models.Attachment {
	return models.Attachment{Kind: models.AttachmentImage, DataURI: uri, Filename: filename}
}

func orFilename(name, def string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return def
	}
	return name
}
