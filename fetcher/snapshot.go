package fetcher

import (
	"context"
	"errors"

	"airbnb-cleaner/parser"
)

// ErrNoListingsSnapshot is returned when no listings page was given
var ErrNoListingsSnapshot = errors.New("no listings snapshot configured")

// SnapshotSource reads reservation cards and listing rows from saved pages instead of a live browser
type SnapshotSource struct {
	fetcher         *CollyFetcher
	parser          *parser.Parser
	reservationsURL string
	listingsURL     string
}

// NewSnapshotSource creates a source over a reservations page and an optional listings page
func NewSnapshotSource(fetcher *CollyFetcher, p *parser.Parser, reservationsURL, listingsURL string) *SnapshotSource {
	return &SnapshotSource{
		fetcher:         fetcher,
		parser:          p,
		reservationsURL: reservationsURL,
		listingsURL:     listingsURL,
	}
}

// ReservationBlocks fetches the reservations snapshot and extracts its cards
func (s *SnapshotSource) ReservationBlocks(ctx context.Context) ([]string, error) {
	html, err := s.fetcher.Fetch(ctx, s.reservationsURL)
	if err != nil {
		return nil, err
	}
	return s.parser.ExtractReservationBlocks(html)
}

// ListingRows fetches the listings snapshot and extracts its table rows
func (s *SnapshotSource) ListingRows(ctx context.Context) ([]string, error) {
	if s.listingsURL == "" {
		return nil, ErrNoListingsSnapshot
	}
	html, err := s.fetcher.Fetch(ctx, s.listingsURL)
	if err != nil {
		return nil, err
	}
	return s.parser.ExtractListingRows(html)
}
