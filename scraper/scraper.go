package scraper

import (
	"context"
	"errors"
	"strings"
)

// ErrNotLoggedIn means the browser profile has no valid hosting session
var ErrNotLoggedIn = errors.New("not logged in to the hosting dashboard")

// Scraper collects reservation cards and listing rows from the hosting dashboard
type Scraper interface {
	// ReservationBlocks returns the text of each reservation card, one line per visible line
	ReservationBlocks(ctx context.Context) ([]string, error)
	// ListingRows returns the text of each row of the listings table
	ListingRows(ctx context.Context) ([]string, error)
}

var _ Scraper = (*RodScraper)(nil)

// isLoggedIn reports whether a page URL is still on the hosting dashboard after navigation
func isLoggedIn(currentURL string) bool {
	lower := strings.ToLower(currentURL)
	return strings.Contains(lower, "hosting") && !strings.Contains(lower, "login")
}
