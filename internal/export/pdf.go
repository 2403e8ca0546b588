// Package export renders notes as downloadable documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"auranotes/internal/notes"
)

// NotePDF renders a note as a PDF byte stream: title heading, category and
// creation lines, then the full content body. Page overflow is handled by
// the document library.
func NotePDF(n *notes.Note) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(n.Title), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr("Category: "+n.Category), "", "L", false)
	pdf.MultiCell(0, 6, tr("Created: "+n.CreatedAt.Format("2006-01-02 15:04")), "", "L", false)
	pdf.Ln(4)

	pdf.MultiCell(0, 6, tr(n.Content), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
