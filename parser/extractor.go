package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"airbnb-cleaner/config"
	"airbnb-cleaner/models"
)

var (
	dateLikePattern      = regexp.MustCompile(`\d{1,2}[/\-]\d{1,2}|\w+ \d{1,2}`)
	leadingSymbolPattern = regexp.MustCompile(`^[\d\$€£@#%]`)
	nameShapePattern     = regexp.MustCompile(`^[A-Za-z\s'\-\.\x{00C0}-\x{00FF}\x{0100}-\x{017F}\x{4E00}-\x{9FFF}]+$`)

	// " HMX4K2QZ $1,234" style confirmation code runs
	confirmationCodePattern = regexp.MustCompile(`\s+[A-Z0-9]{6,}\s*\$?[\d,\.]*`)
	trailingPricePattern    = regexp.MustCompile(`\s*\$[\d,\.]+.*$`)
)

const (
	minGuestCount = 1
	maxGuestCount = 20
)

// Fields are the values the extractor could find in a block
type Fields struct {
	GuestName    string
	PropertyName string
	GuestCount   int
}

// FieldExtractor classifies the lines of a reservation card
type FieldExtractor struct {
	engine        config.EngineConfig
	vocab         config.Vocabulary
	countPatterns []*regexp.Regexp
}

// NewFieldExtractor creates a FieldExtractor. Units that do not compile as a pattern are skipped.
func NewFieldExtractor(engine config.EngineConfig, vocab config.Vocabulary) *FieldExtractor {
	fe := &FieldExtractor{engine: engine, vocab: vocab}
	for _, unit := range vocab.GuestCountUnits {
		re, err := regexp.Compile(`(\d+)\s*` + unit)
		if err != nil {
			continue
		}
		fe.countPatterns = append(fe.countPatterns, re)
	}
	return fe
}

// Extract finds all fields of a block. The only failure is a missing guest name.
func (fe *FieldExtractor) Extract(lines models.TextBlock) (Fields, error) {
	name, err := fe.GuestName(lines)
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		GuestName:    name,
		PropertyName: fe.PropertyName(lines),
		GuestCount:   fe.GuestCount(lines),
	}, nil
}

// GuestName returns the first line near the top of the block that looks like a person's name
func (fe *FieldExtractor) GuestName(lines models.TextBlock) (string, error) {
	for i, line := range lines {
		if i >= fe.engine.GuestNameScanLines {
			break
		}
		if fe.isGuestName(line) {
			return line, nil
		}
	}

	for i, line := range lines {
		if i >= fe.engine.GuestNameFallbackLines {
			break
		}
		if isFallbackName(line, fe.vocab.GuestNameFallbackExclusions) {
			return line, nil
		}
	}

	return "", fmt.Errorf("%w: checked %d lines", models.ErrNoGuestName, min(len(lines), fe.engine.GuestNameFallbackLines))
}

func (fe *FieldExtractor) isGuestName(line string) bool {
	length := utf8.RuneCountInString(line)
	if length < 2 || length > 50 {
		return false
	}

	if containsAny(strings.ToLower(line), fe.vocab.GuestNameExclusions) {
		return false
	}

	if dateLikePattern.MatchString(line) {
		return false
	}

	if leadingSymbolPattern.MatchString(line) {
		return false
	}

	return nameShapePattern.MatchString(line)
}

func isFallbackName(line string, exclusions []string) bool {
	length := utf8.RuneCountInString(line)
	if length < 3 || length > 40 {
		return false
	}
	if !nameShapePattern.MatchString(line) {
		return false
	}
	return !containsAny(strings.ToLower(line), exclusions)
}

// PropertyName returns the cleaned listing title of the block, or models.DefaultPropertyName
func (fe *FieldExtractor) PropertyName(lines models.TextBlock) string {
	limit := len(lines)
	if fe.engine.PropertyScanLines > 0 && fe.engine.PropertyScanLines < limit {
		limit = fe.engine.PropertyScanLines
	}

	for _, line := range lines[:limit] {
		if fe.IsPropertyName(line) {
			return CleanPropertyName(line)
		}
	}

	// second pass over the mid-card window, skipping lines the first pass already saw
	start := max(fe.engine.PropertyWindowStart, limit)
	end := min(fe.engine.PropertyWindowEnd, len(lines))
	for i := start; i < end; i++ {
		if fe.IsPropertyName(lines[i]) {
			return CleanPropertyName(lines[i])
		}
	}

	return models.DefaultPropertyName
}

// IsPropertyName reports whether a line looks like a listing title
func (fe *FieldExtractor) IsPropertyName(line string) bool {
	length := utf8.RuneCountInString(line)
	if length < 3 || length > 100 {
		return false
	}

	lower := strings.ToLower(line)
	if !containsAny(lower, fe.vocab.PropertyKeywords) {
		return false
	}
	return !containsAny(lower, fe.vocab.PropertyStatusTokens)
}

// CleanPropertyName strips trailing dots, confirmation codes and prices from a title line
func CleanPropertyName(name string) string {
	cleaned := strings.TrimRight(name, ".")
	cleaned = confirmationCodePattern.ReplaceAllString(cleaned, "")
	cleaned = trailingPricePattern.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// GuestCount returns the first plausible "N adults" style count, defaulting to 1
func (fe *FieldExtractor) GuestCount(lines models.TextBlock) int {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, re := range fe.countPatterns {
			match := re.FindStringSubmatch(lower)
			if match == nil {
				continue
			}
			count, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			if count >= minGuestCount && count <= maxGuestCount {
				return count
			}
		}
	}
	return minGuestCount
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(s, token) {
			return true
		}
	}
	return false
}
