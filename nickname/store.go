package nickname

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"airbnb-cleaner/models"
)

const filePrefix = "property_nicknames_"

// ErrNoNicknameFile is returned when a directory holds no nickname export
var ErrNoNicknameFile = errors.New("no property nickname file found")

// LoadJSON reads a nickname export: a list of {airbnb_name, internal_name, status} records
func LoadJSON(path string) ([]models.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read nickname file: %w", err)
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to parse nickname file %s: %w", filepath.Base(path), err)
	}

	// exports written before statuses were recorded only contain listed properties
	for i := range listings {
		if listings[i].Status == "" {
			listings[i].Status = models.ListingStatusListed
		}
	}
	return listings, nil
}

// LatestFile returns the newest property_nicknames_<timestamp>.json in dir
func LatestFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.json"))
	if err != nil {
		return "", fmt.Errorf("failed to list nickname files: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoNicknameFile, dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// LoadLatest loads the newest nickname export in dir
func LoadLatest(dir string) ([]models.Listing, string, error) {
	path, err := LatestFile(dir)
	if err != nil {
		return nil, "", err
	}
	listings, err := LoadJSON(path)
	if err != nil {
		return nil, path, err
	}
	return listings, path, nil
}

// SaveJSON writes listings as property_nicknames_<timestamp>.json plus a readable .txt table.
// It returns the JSON path.
func SaveJSON(dir string, listings []models.Listing, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create nickname directory: %w", err)
	}

	base := filepath.Join(dir, filePrefix+now.Format("20060102_150405"))

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal nicknames: %w", err)
	}
	jsonPath := base + ".json"
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write nickname file: %w", err)
	}

	if err := os.WriteFile(base+".txt", []byte(FormatTable(listings)), 0644); err != nil {
		return jsonPath, fmt.Errorf("failed to write nickname table: %w", err)
	}

	return jsonPath, nil
}

// FormatTable renders listings as a fixed-width two column table
func FormatTable(listings []models.Listing) string {
	var b strings.Builder
	b.WriteString("AIRBNB PROPERTY NICKNAMES\n")
	b.WriteString(strings.Repeat("=", 80) + "\n\n")
	fmt.Fprintf(&b, "%-50s | %-25s\n", "Airbnb Name", "Internal Name")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, l := range listings {
		fmt.Fprintf(&b, "%-50s | %-25s\n", truncateRunes(l.AirbnbName, 49), truncateRunes(l.InternalName, 24))
	}
	return b.String()
}
