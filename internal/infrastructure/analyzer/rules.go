package analyzer

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// CategoryRule couples a category with its match keywords (first match
// wins across the ordered table), the broader keyword list used for
// confidence scoring, and the tags the category contributes.
type CategoryRule struct {
	Name            string   `yaml:"name"`
	Keywords        []string `yaml:"keywords"`
	ScoringKeywords []string `yaml:"scoring_keywords"`
	Tags            []string `yaml:"tags"`
}

type SituationalTag struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

// RuleSet is the ordered classification table. It is a slice, not a
// map: table order is the documented tie-break.
type RuleSet struct {
	Categories      []CategoryRule   `yaml:"categories"`
	SituationalTags []SituationalTag `yaml:"situational_tags"`
}

// LoadRules parses a YAML rule table. Passing nil loads the embedded
// default table.
func LoadRules(raw []byte) (*RuleSet, error) {
	if raw == nil {
		raw = defaultRules
	}
	var rules RuleSet
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse classification rules: %w", err)
	}
	if len(rules.Categories) == 0 {
		return nil, fmt.Errorf("classification rules define no categories")
	}
	return &rules, nil
}

// Classify scans the table in order and returns the first category with
// a keyword hit in the text or the filename. With no hit it falls back
// to extension-based classification.
func (r *RuleSet) Classify(text, filename string) string {
	textLower := strings.ToLower(text)
	nameLower := strings.ToLower(filename)

	for _, category := range r.Categories {
		for _, keyword := range category.Keywords {
			if strings.Contains(textLower, keyword) || strings.Contains(nameLower, keyword) {
				return category.Name
			}
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "Documento PDF"
	case ".jpg", ".jpeg", ".png":
		return "Imagen"
	default:
		return "General"
	}
}

// Tags builds the tag set: the lowercased category seeds it, situational
// keywords and category tags extend it, capped at 10 unique entries.
func (r *RuleSet) Tags(text, category string) []string {
	textLower := strings.ToLower(text)

	tags := make([]string, 0, 10)
	seen := make(map[string]bool)
	add := func(tag string) {
		if len(tags) >= 10 || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	add(strings.ToLower(category))

	for _, situational := range r.SituationalTags {
		for _, keyword := range situational.Keywords {
			if strings.Contains(textLower, keyword) {
				add(situational.Tag)
				break
			}
		}
	}

	for _, rule := range r.Categories {
		if rule.Name == category {
			for _, tag := range rule.Tags {
				add(tag)
			}
			break
		}
	}

	return tags
}

// Confidence scores the classification: 70% weight on the fraction of
// the category's scoring keywords present in the text, 30% on text
// length normalized to 1000 runes, clamped to [0,1]. Empty text always
// scores the 0.1 floor.
func (r *RuleSet) Confidence(text, category string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0.1
	}

	var keywords []string
	for _, rule := range r.Categories {
		if rule.Name == category {
			keywords = rule.ScoringKeywords
			break
		}
	}

	keywordScore := 0.0
	if len(keywords) > 0 {
		textLower := strings.ToLower(text)
		matches := 0
		for _, keyword := range keywords {
			if strings.Contains(textLower, keyword) {
				matches++
			}
		}
		keywordScore = float64(matches) / float64(len(keywords))
	}

	lengthScore := float64(len(text)) / 1000.0
	if lengthScore > 1.0 {
		lengthScore = 1.0
	}

	confidence := keywordScore*0.7 + lengthScore*0.3
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
