package dates

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		yearless bool
		expected []time.Time
	}{
		{"abbreviated month with comma", "Aug 7, 2025", false, []time.Time{day(2025, 8, 7)}},
		{"full month without comma", "August 7 2025", false, []time.Time{day(2025, 8, 7)}},
		{"lowercase month", "sep 30, 2025", false, []time.Time{day(2025, 9, 30)}},
		{"range on one line", "Aug 7, 2025 - Aug 9, 2025", false, []time.Time{day(2025, 8, 7), day(2025, 8, 9)}},
		{"numeric month first", "08/09/2025", false, []time.Time{day(2025, 8, 9)}},
		{"numeric invalid month", "13/01/2025", false, nil},
		{"invalid day", "Feb 30, 2025", false, nil},
		{"unknown month word", "Villa 12, 2025", false, nil},
		{"duplicate within line", "Aug 7, 2025 or 08/07/2025", false, []time.Time{day(2025, 8, 7)}},
		{"yearless ignored when disabled", "Aug 7", false, nil},
		{"yearless uses default year", "Aug 7", true, []time.Time{day(2030, 8, 7)}},
		{"yearless skips times", "Aug 7:30", true, nil},
		{"yearless skips long numbers", "Aug 123", true, nil},
		{"yearless and full date merge", "Aug 7, 2030", true, []time.Time{day(2030, 8, 7)}},
		{"no dates", "2 Bed Bamboo Dream Villa", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line, tt.yearless, 2030)
			if len(got) != len(tt.expected) {
				t.Fatalf("ParseLine(%q) = %v, want %v", tt.line, got, tt.expected)
			}
			for i := range got {
				if !got[i].Equal(tt.expected[i]) {
					t.Errorf("ParseLine(%q)[%d] = %v, want %v", tt.line, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	input := []time.Time{
		day(2025, 8, 9),
		day(2025, 8, 7),
		day(2025, 8, 9),
		time.Date(2025, 8, 7, 15, 30, 0, 0, time.UTC),
		day(2025, 7, 30),
	}

	got := Normalize(input)
	want := []time.Time{day(2025, 7, 30), day(2025, 8, 7), day(2025, 8, 9)}

	if len(got) != len(want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			t.Errorf("Normalize()[%d] = %v, want %v", i, got[i], want[i])
		}
		if i > 0 && !got[i-1].Before(got[i]) {
			t.Errorf("Normalize() not strictly ascending at %d: %v", i, got)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		from, to time.Time
		expected int
	}{
		{"same day", day(2025, 8, 7), day(2025, 8, 7), 0},
		{"two nights", day(2025, 8, 7), day(2025, 8, 9), 2},
		{"across months", day(2025, 8, 30), day(2025, 9, 2), 3},
		{"backwards", day(2025, 8, 9), day(2025, 8, 7), -2},
		{"ignores clock time", time.Date(2025, 8, 7, 23, 0, 0, 0, time.UTC), day(2025, 8, 8), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.from, tt.to); got != tt.expected {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.expected)
			}
		})
	}
}
