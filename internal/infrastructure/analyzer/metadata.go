package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`),
	regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`S/\.\s*\d+[,.]?\d*`),
	regexp.MustCompile(`\$\s*\d+[,.]?\d*`),
	regexp.MustCompile(`\d+[,.]?\d*\s*USD`),
}

// Document-number shapes, least specific last so F001-2024 is captured
// before the bare digit run swallows it.
var documentNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Z]{1,3}-\d{4,}`),
	regexp.MustCompile(`[A-Z]{1,3}\d{4,}`),
	regexp.MustCompile(`\d{4,}`),
}

// extractMetadata runs the independent regex passes over the text and
// stores each pass's deduplicated hits under its own key.
func extractMetadata(text string) map[string][]string {
	metadata := make(map[string][]string)

	if dates := collectMatches(text, datePatterns); len(dates) > 0 {
		metadata["fechas_encontradas"] = dates
	}
	if amounts := collectMatches(text, amountPatterns); len(amounts) > 0 {
		metadata["montos"] = amounts
	}
	if numbers := collectMatches(text, documentNumberPatterns); len(numbers) > 0 {
		metadata["numeros_documento"] = numbers
	}
	return metadata
}

func collectMatches(text string, patterns []*regexp.Regexp) []string {
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllString(text, -1) {
			seen[match] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	matches := make([]string, 0, len(seen))
	for match := range seen {
		matches = append(matches, match)
	}
	sort.Strings(matches)
	return matches
}

var expiryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)venc[ei]miento[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
	regexp.MustCompile(`(?i)expir[ae][:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
	regexp.MustCompile(`(?i)validez[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
	regexp.MustCompile(`(?i)vigencia[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
}

var documentNumberLabeledPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)número[:\s]*([A-Z]{1,3}-?\d{4,})`),
	regexp.MustCompile(`(?i)código[:\s]*([A-Z]{1,3}-?\d{4,})`),
	regexp.MustCompile(`(?i)referencia[:\s]*([A-Z]{1,3}-?\d{4,})`),
	regexp.MustCompile(`(?i)id[:\s]*([A-Z]{1,3}-?\d{4,})`),
	// Series numbers like "F001-2024" often follow "No." instead of a
	// label the shapes above know; accept the bare serial last.
	regexp.MustCompile(`\b([A-Z]{1,3}\d{2,}-\d{2,})\b`),
	regexp.MustCompile(`\b([A-Z]{1,3}-\d{4,})\b`),
}

var organizationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)empresa[:\s]*([A-ZÁÉÍÓÚÑ][a-záéíóúñ\s]+)`),
	regexp.MustCompile(`(?i)compañía[:\s]*([A-ZÁÉÍÓÚÑ][a-záéíóúñ\s]+)`),
	regexp.MustCompile(`(?i)institución[:\s]*([A-ZÁÉÍÓÚÑ][a-záéíóúñ\s]+)`),
	regexp.MustCompile(`(?i)organización[:\s]*([A-ZÁÉÍÓÚÑ][a-záéíóúñ\s]+)`),
}

// firstSubmatch walks the ordered labeled patterns and returns the first
// capture group hit; empty when nothing matches.
func firstSubmatch(text string, patterns []*regexp.Regexp) string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractExpiryDate(text string) string {
	return firstSubmatch(text, expiryPatterns)
}

func extractDocumentNumber(text string) string {
	return firstSubmatch(text, documentNumberLabeledPatterns)
}

func extractOrganization(text string) string {
	return firstSubmatch(text, organizationPatterns)
}
