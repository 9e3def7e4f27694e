package parser

import (
	"strings"
	"unicode/utf8"

	"airbnb-cleaner/models"
)

// Listing statuses as shown in the listings table
const (
	StatusListed         = models.ListingStatusListed
	StatusUnlisted       = "Unlisted"
	StatusActionRequired = "Action Required"
	StatusDraft          = "Draft"
)

var titleIndicators = []string{
	"bed", "bedroom", "apartment", "house", "villa", "room", "studio",
	"penthouse", "loft", "pad", "home", "place", "dream", "view",
	"pool", "bamboo", "zen", "yoga", "beach", "jungle", "rice",
	"castle", "tower", "getaway", "haven", "barn", "central",
}

// words that are a listing type rather than a nickname
var nicknameSkipWords = []string{"home", "apartment", "house", "villa", "room", "studio", "entire"}

// location lines sit where a missing nickname would be
var nicknameLocationWords = []string{"tegallalang", "seoul", "bali", "ubud", "payangan", "hongdae", "kecamatan"}

// ListingRowParser turns listings table rows into nickname table entries
type ListingRowParser struct {
	geoIndicators []string
}

// NewListingRowParser creates a ListingRowParser that skips rows mentioning any geo indicator
func NewListingRowParser(geoIndicators []string) *ListingRowParser {
	return &ListingRowParser{geoIndicators: geoIndicators}
}

// ParseRows parses every row and keeps the listed ones with a title and a nickname
func (lp *ListingRowParser) ParseRows(rows []string) []models.Listing {
	var listings []models.Listing
	for _, row := range rows {
		listing, ok := lp.ParseRow(row)
		if !ok || !listing.IsListed() {
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}

// ParseRow reads the title from the first line, the nickname from the second and the status from
// anywhere in the row. ok is false for excluded locations and rows missing a title or nickname.
func (lp *ListingRowParser) ParseRow(rowText string) (models.Listing, bool) {
	lower := strings.ToLower(rowText)
	if containsAny(lower, lp.geoIndicators) {
		return models.Listing{}, false
	}

	listing := models.Listing{Status: rowStatus(lower)}

	var lines []string
	for _, line := range strings.Split(rowText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 || !looksLikeTitle(lines[0]) || !looksLikeNickname(lines[1]) {
		return listing, false
	}

	listing.AirbnbName = lines[0]
	listing.InternalName = lines[1]
	return listing, true
}

func rowStatus(lower string) string {
	switch {
	case strings.Contains(lower, "listed") && !strings.Contains(lower, "unlisted"):
		return StatusListed
	case strings.Contains(lower, "unlisted"):
		return StatusUnlisted
	case strings.Contains(lower, "action required"):
		return StatusActionRequired
	case strings.Contains(lower, "draft"):
		return StatusDraft
	default:
		return StatusListed
	}
}

func looksLikeTitle(text string) bool {
	length := utf8.RuneCountInString(text)
	if length < 10 || length > 100 {
		return false
	}
	return containsAny(strings.ToLower(text), titleIndicators) || len(strings.Fields(text)) > 2
}

func looksLikeNickname(text string) bool {
	length := utf8.RuneCountInString(text)
	if length < 1 || length > 40 {
		return false
	}

	lower := strings.ToLower(text)
	for _, word := range nicknameSkipWords {
		if lower == word {
			return false
		}
	}
	return !containsAny(lower, nicknameLocationWords)
}
