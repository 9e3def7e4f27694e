package models

import (
	"strings"
	"time"
)

// DefaultPropertyName is used when no line of a block looks like a property title
const DefaultPropertyName = "Property"

// StayType tells whether a reservation matters for its check-in or its check-out
type StayType string

const (
	StayCheckIn  StayType = "checkin"
	StayCheckOut StayType = "checkout"
)

// TextBlock is the ordered list of non-empty, trimmed lines of one scraped reservation card
type TextBlock []string

// NewTextBlock splits raw card text into a TextBlock
func NewTextBlock(raw string) TextBlock {
	var lines TextBlock
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Reservation represents a parsed reservation card
type Reservation struct {
	GuestName        string
	PropertyName     string
	GuestCount       int
	CheckIn          *time.Time
	CheckOut         *time.Time
	Type             StayType
	PropertyNickname string
	RawText          string // First 500 bytes of the card, kept for debugging
}

// Nights returns the stay length, or 0 when one side of the stay is unknown
func (r Reservation) Nights() int {
	if r.CheckIn == nil || r.CheckOut == nil {
		return 0
	}
	return int(r.CheckOut.Sub(*r.CheckIn).Hours() / 24)
}

// BlockRejection records why a block did not produce a reservation
type BlockRejection struct {
	Index   int    // Position of the block in the input batch
	Reason  string // Rejection message, starts with the sentinel text
	Preview string // First line of the block
}

// Schedule is the result of processing one batch of blocks against a reference date
type Schedule struct {
	Reference time.Time
	Checkouts []Reservation
	Checkins  []Reservation
	Rejected  []BlockRejection
}

// IsEmpty reports whether nothing happens on the reference date
func (s Schedule) IsEmpty() bool {
	return len(s.Checkouts) == 0 && len(s.Checkins) == 0
}
