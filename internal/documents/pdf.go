package documents

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// TrimPDF validates a PDF and keeps at most maxPages leading pages. It returns
// the resulting document and the page count of the original.
func TrimPDF(data []byte, maxPages int) ([]byte, int, error) {
	conf := model.NewDefaultConfiguration()
	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfContext.PageCount
	if pageCount == 0 {
		return nil, 0, fmt.Errorf("PDF has no pages")
	}
	if maxPages <= 0 || pageCount <= maxPages {
		return data, pageCount, nil
	}

	var out bytes.Buffer
	selected := []string{fmt.Sprintf("1-%d", maxPages)}
	if err := api.Trim(bytes.NewReader(data), &out, selected, conf); err != nil {
		return nil, pageCount, fmt.Errorf("failed to trim PDF to %d pages: %w", maxPages, err)
	}
	return out.Bytes(), pageCount, nil
}
