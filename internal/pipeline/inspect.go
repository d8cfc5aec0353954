package pipeline

import (
	"bytes"

	pdf "github.com/ledongthuc/pdf"

	"harristax/internal"
	"harristax/internal/extract"
	"harristax/internal/normalize"
)

// InspectPDF summarizes a downloaded statement: page count plus the
// document text run through the line splitter, so statement fields are
// queryable without reopening the file. Pages that fail text extraction
// are skipped rather than failing the summary.
func InspectPDF(blob []byte) (*internal.PDFSummary, error) {
	reader, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, err
	}

	summary := &internal.PDFSummary{Pages: reader.NumPage()}
	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, extract.SplitTextLines(text)...)
	}
	if len(lines) > 0 {
		block := normalize.SplitLines(lines)
		summary.Text = &block
	}
	return summary, nil
}
