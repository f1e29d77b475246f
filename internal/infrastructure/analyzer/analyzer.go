// Package analyzer implements the heuristic document classification
// pipeline: text extraction (OCR for images, best-effort decoding
// otherwise), ordered keyword classification, metadata and tag
// extraction, and confidence scoring. It is rule-based on purpose;
// there is no trained model behind it.
package analyzer

import (
	"context"
	"log/slog"

	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/core/ports"
)

type Analyzer struct {
	ocr       ports.OCREngine
	rules     *RuleSet
	languages string
}

// New builds an analyzer with the given OCR engine and rule table.
// languages is the OCR recognition profile, e.g. "spa+eng".
func New(ocr ports.OCREngine, rules *RuleSet, languages string) *Analyzer {
	if languages == "" {
		languages = "spa+eng"
	}
	return &Analyzer{ocr: ocr, rules: rules, languages: languages}
}

// Analyze never fails: any extraction failure collapses into the
// documented degraded result so ingestion can still file the document.
func (a *Analyzer) Analyze(ctx context.Context, content []byte, contentType, filename string) domain.Analysis {
	text, err := a.extractText(ctx, content, contentType, filename)
	if err != nil {
		slog.Warn("text_extraction_failed", "filename", filename, "content_type", contentType, "error", err)
		return domain.DegradedAnalysis()
	}

	category := a.rules.Classify(text, filename)

	return domain.Analysis{
		SuggestedCategory: category,
		Confidence:        a.rules.Confidence(text, category),
		ExtractedText:     text,
		Tags:              a.rules.Tags(text, category),
		Metadata:          extractMetadata(text),
		ExpiryDate:        extractExpiryDate(text),
		DocumentNumber:    extractDocumentNumber(text),
		Organization:      extractOrganization(text),
	}
}
