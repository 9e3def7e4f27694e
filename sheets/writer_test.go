package sheets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"airbnb-cleaner/models"
)

func date(d int) *time.Time {
	t := time.Date(2025, 8, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"edit link", "https://docs.google.com/spreadsheets/d/abc123/edit", "abc123"},
		{"sharing link", "https://docs.google.com/spreadsheets/d/abc123/edit?usp=sharing", "abc123"},
		{"query only", "https://docs.google.com/spreadsheets/d/abc123?x=1", "abc123"},
		{"not a sheet", "https://example.com/sheet", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSpreadsheetID(tt.url); got != tt.expected {
				t.Errorf("ExtractSpreadsheetID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Tomorrow_2025-08-07", "Tomorrow_2025-08-07"},
		{"a/b\\c?d*e[f]", "a_b_c_d_e_f_"},
		{"   ", "Sheet1"},
	}

	for _, tt := range tests {
		if got := sanitizeSheetName(tt.input); got != tt.expected {
			t.Errorf("sanitizeSheetName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestScheduleSheetName(t *testing.T) {
	if got := ScheduleSheetName(*date(7)); got != "Tomorrow_2025-08-07" {
		t.Errorf("ScheduleSheetName() = %q", got)
	}
}

func TestScheduleRows(t *testing.T) {
	schedule := models.Schedule{
		Reference: *date(7),
		Checkins: []models.Reservation{
			{GuestName: "Jane Doe", PropertyName: "2 Bed Bamboo Dream Villa", PropertyNickname: "Serene", GuestCount: 2, CheckIn: date(7), CheckOut: date(9), Type: models.StayCheckIn},
		},
		Checkouts: []models.Reservation{
			{GuestName: "Mara Lin", PropertyName: "Rice Paddy View Loft", PropertyNickname: "Loft", GuestCount: 3, CheckIn: date(3), CheckOut: date(7), Type: models.StayCheckOut},
		},
	}
	generated := time.Date(2025, 8, 6, 18, 0, 0, 0, time.UTC)

	rows := ScheduleRows(schedule, generated)
	if len(rows) != 4 {
		t.Fatalf("ScheduleRows() returned %d rows, want 4", len(rows))
	}
	if rows[0][1] != "2025-08-07" || rows[0][3] != "2025-08-06 18:00:00" {
		t.Errorf("metadata row = %v", rows[0])
	}
	if rows[2][1] != "Loft" || rows[2][0] != "checkout" {
		t.Errorf("checkouts should come first, got %v", rows[2])
	}
	if rows[3][5] != "2025-08-07" || rows[3][6] != "2025-08-09" || rows[3][7] != 2 {
		t.Errorf("check-in row = %v", rows[3])
	}
}

func TestScheduleRowsEmpty(t *testing.T) {
	rows := ScheduleRows(models.Schedule{Reference: *date(7)}, time.Now())
	if len(rows) != 3 || rows[2][0] != "No check-ins or check-outs" {
		t.Errorf("ScheduleRows() = %v", rows)
	}
}

func TestNicknameRows(t *testing.T) {
	rows := NicknameRows([]models.Listing{
		{AirbnbName: "Rice Paddy View Loft", InternalName: "Loft", Status: models.ListingStatusListed},
	})
	if len(rows) != 2 || rows[1][1] != "Loft" {
		t.Errorf("NicknameRows() = %v", rows)
	}
}

func TestReadCredentials(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "sa.json")
	wrongType := filepath.Join(dir, "user.json")
	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(valid, []byte(`{"type":"service_account","project_id":"p"}`), 0644)
	os.WriteFile(wrongType, []byte(`{"type":"authorized_user"}`), 0644)
	os.WriteFile(broken, []byte(`{"type":`), 0644)

	tests := []struct {
		name    string
		path    string
		env     string
		wantErr bool
	}{
		{"service account file", valid, "", false},
		{"wrong credential type", wrongType, "", true},
		{"broken json", broken, "", true},
		{"missing file", filepath.Join(dir, "nope.json"), "", true},
		{"from environment", "", ` {"type":"service_account"} `, false},
		{"empty environment", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_SHEETS_CREDENTIALS", tt.env)
			_, err := readCredentials(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("readCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
