package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// extractText picks the extraction path by declared content type. Paths
// that cannot produce meaningful text degrade to a filename-derived
// placeholder instead of failing; only OCR errors surface, because the
// caller turns those into the degraded analysis.
func (a *Analyzer) extractText(ctx context.Context, content []byte, contentType, filename string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		text, err := a.ocr.RecognizeText(ctx, content, a.languages)
		if err != nil {
			return "", fmt.Errorf("ocr: %w", err)
		}
		return strings.TrimSpace(text), nil

	case contentType == "application/pdf":
		if text := pdfText(content); text != "" {
			return text, nil
		}
		return fmt.Sprintf("PDF: %s", filename), nil

	case contentType == xlsxContentType:
		if text := spreadsheetText(content); text != "" {
			return text, nil
		}
		return fmt.Sprintf("Archivo: %s", filename), nil

	default:
		if utf8.Valid(content) {
			return strings.TrimSpace(string(content)), nil
		}
		return fmt.Sprintf("Archivo: %s", filename), nil
	}
}

func pdfText(content []byte) string {
	doc, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}
	var builder strings.Builder
	for page := 1; page <= doc.NumPage(); page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return ""
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return strings.TrimSpace(builder.String())
}

func spreadsheetText(content []byte) string {
	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return ""
	}
	defer book.Close()

	var builder strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			builder.WriteString(strings.Join(row, " "))
			builder.WriteString("\n")
		}
	}
	return strings.TrimSpace(builder.String())
}
