package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"airbnb-cleaner/models"
)

const (
	fileTimestamp  = "20060102_150405"
	dateLayout     = "2006-01-02"
	debugRawBlocks = 5
)

// DebugReport is the JSON dump written next to each message
type DebugReport struct {
	RunID          string                  `json:"run_id,omitempty"`
	Timestamp      string                  `json:"timestamp"`
	Today          string                  `json:"today"`
	Tomorrow       string                  `json:"tomorrow"`
	TotalBlocks    int                     `json:"total_raw_reservations"`
	TotalCheckouts int                     `json:"total_checkouts"`
	TotalCheckins  int                     `json:"total_checkins"`
	RawBlocks      []string                `json:"raw_reservation_texts"`
	Checkouts      []DebugReservation      `json:"checkouts"`
	Checkins       []DebugReservation      `json:"checkins"`
	Rejected       []models.BlockRejection `json:"rejected"`
}

// DebugReservation is the JSON form of an accepted reservation
type DebugReservation struct {
	GuestName        string `json:"guest_name"`
	PropertyName     string `json:"property_name"`
	PropertyNickname string `json:"property_nickname"`
	GuestCount       int    `json:"guest_count"`
	CheckIn          string `json:"checkin_date,omitempty"`
	CheckOut         string `json:"checkout_date,omitempty"`
	Type             string `json:"type"`
	RawText          string `json:"raw_text"`
}

// NewDebugReport summarizes one run
func NewDebugReport(runID string, schedule models.Schedule, raws []string, now time.Time) DebugReport {
	today := schedule.Reference.AddDate(0, 0, -1)
	keep := raws
	if len(keep) > debugRawBlocks {
		keep = keep[:debugRawBlocks]
	}

	return DebugReport{
		RunID:          runID,
		Timestamp:      now.Format(time.RFC3339),
		Today:          today.Format(dateLayout),
		Tomorrow:       schedule.Reference.Format(dateLayout),
		TotalBlocks:    len(raws),
		TotalCheckouts: len(schedule.Checkouts),
		TotalCheckins:  len(schedule.Checkins),
		RawBlocks:      append([]string{}, keep...),
		Checkouts:      debugReservations(schedule.Checkouts),
		Checkins:       debugReservations(schedule.Checkins),
		Rejected:       schedule.Rejected,
	}
}

func debugReservations(reservations []models.Reservation) []DebugReservation {
	out := make([]DebugReservation, 0, len(reservations))
	for _, r := range reservations {
		d := DebugReservation{
			GuestName:        r.GuestName,
			PropertyName:     r.PropertyName,
			PropertyNickname: r.PropertyNickname,
			GuestCount:       r.GuestCount,
			Type:             string(r.Type),
			RawText:          r.RawText,
		}
		if r.CheckIn != nil {
			d.CheckIn = r.CheckIn.Format(dateLayout)
		}
		if r.CheckOut != nil {
			d.CheckOut = r.CheckOut.Format(dateLayout)
		}
		out = append(out, d)
	}
	return out
}

// SaveMessage writes the cleaner message with a dated header and returns the file path
func SaveMessage(dir string, reference time.Time, text string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pesan Cleaner Bali - %s\n", reference.Format("02 January 2006")))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	sb.WriteString(text)
	sb.WriteString(fmt.Sprintf("\n\nGenerated: %s\n", now.Format("2006-01-02 15:04:05")))

	path := filepath.Join(dir, fmt.Sprintf("cleaner_message_%s.txt", now.Format(fileTimestamp)))
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write message file: %w", err)
	}
	return path, nil
}

// SaveDebug writes the debug report as indented JSON and returns the file path
func SaveDebug(dir string, report DebugReport, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal debug report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("debug_tomorrow_%s.json", now.Format(fileTimestamp)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write debug file: %w", err)
	}
	return path, nil
}
