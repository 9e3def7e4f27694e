package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const minListingRowLength = 20

// Parser extracts reservation cards and listing rows from hosting page HTML
type Parser struct {
	selectors      []string
	minBlockLength int
}

// NewParser creates a new Parser instance
func NewParser(selectors []string, minBlockLength int) *Parser {
	return &Parser{selectors: selectors, minBlockLength: minBlockLength}
}

// ExtractReservationBlocks returns the visible text of every element that looks like a reservation card.
// Each text node becomes one line; identical and short texts are dropped.
func (p *Parser) ExtractReservationBlocks(htmlContent string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var texts []string
	for _, selector := range p.selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			texts = append(texts, strings.Join(visibleLines(s), "\n"))
		})
	}

	return UniqueBlocks(texts, p.minBlockLength), nil
}

// UniqueBlocks trims texts and keeps the first copy of each one longer than minLength runes
func UniqueBlocks(texts []string, minLength int) []string {
	var blocks []string
	seen := make(map[string]bool)

	for _, text := range texts {
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) <= minLength || seen[text] {
			continue
		}
		seen[text] = true
		blocks = append(blocks, text)
	}

	return blocks
}

// ExtractListingRows returns the text of each row of the listings table, header excluded
func (p *Parser) ExtractListingRows(htmlContent string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rows []string
	doc.Find("tr").Each(func(i int, s *goquery.Selection) {
		if i == 0 {
			return
		}
		text := strings.Join(visibleLines(s), "\n")
		if utf8.RuneCountInString(text) < minListingRowLength {
			return
		}
		rows = append(rows, text)
	})

	return rows, nil
}

// visibleLines collects the trimmed text nodes under s in document order
func visibleLines(s *goquery.Selection) []string {
	var lines []string
	s.Contents().Each(func(i int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			if line := normalizeWhitespace(c.Text()); line != "" {
				lines = append(lines, line)
			}
		case "script", "style", "noscript", "#comment":
		default:
			lines = append(lines, visibleLines(c)...)
		}
	})
	return lines
}

// normalizeWhitespace replaces various unicode whitespace characters with regular spaces
func normalizeWhitespace(text string) string {
	normalized := strings.Builder{}
	for _, r := range text {
		if unicode.IsSpace(r) {
			normalized.WriteRune(' ')
		} else {
			normalized.WriteRune(r)
		}
	}
	// Collapse multiple spaces into one
	return strings.Join(strings.Fields(normalized.String()), " ")
}
