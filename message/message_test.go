package message

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"airbnb-cleaner/models"
)

func day(m time.Month, d int) *time.Time {
	t := time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleSchedule() models.Schedule {
	return models.Schedule{
		Reference: *day(8, 7),
		Checkouts: []models.Reservation{
			{GuestName: "Mara Lin", PropertyName: "Rice Paddy View Loft", PropertyNickname: "Loft", GuestCount: 3, CheckIn: day(8, 3), CheckOut: day(8, 7), Type: models.StayCheckOut},
			{GuestName: "Ana Ruiz", PropertyName: "Serene Dream Bamboo Villa Bali", PropertyNickname: "Serene", GuestCount: 2, CheckIn: day(8, 1), CheckOut: day(8, 7), Type: models.StayCheckOut},
		},
		Checkins: []models.Reservation{
			{GuestName: "Jane Doe", PropertyName: "2 Bed Bamboo Dream Villa", PropertyNickname: "Serene", GuestCount: 2, CheckIn: day(8, 7), CheckOut: day(8, 9), Type: models.StayCheckIn},
		},
	}
}

var generated = time.Date(2025, 8, 6, 18, 0, 0, 0, time.UTC)

func TestDayMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"single digit day", *day(8, 7), "7Aug"},
		{"double digit day", *day(12, 25), "25Dec"},
		{"first of month", *day(1, 1), "1Jan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayMonth(tt.input); got != tt.expected {
				t.Errorf("DayMonth() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStayRange(t *testing.T) {
	tests := []struct {
		name     string
		res      models.Reservation
		expected string
	}{
		{"both dates", models.Reservation{CheckIn: day(8, 7), CheckOut: day(8, 9)}, "7Aug-9Aug"},
		{"check-in only", models.Reservation{CheckIn: day(8, 7)}, "7Aug"},
		{"no dates", models.Reservation{}, "TBC"},
		{"check-out only", models.Reservation{CheckOut: day(8, 9)}, "TBC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StayRange(tt.res); got != tt.expected {
				t.Errorf("StayRange() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRenderIndonesian(t *testing.T) {
	r, err := NewRenderer(StyleIndonesian, "")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	got, err := r.Render(sampleSchedule(), generated)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "Out: Loft, Serene\nIn: Serene, 2 orang, 7Aug-9Aug"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderIndonesianPartial(t *testing.T) {
	r, err := NewRenderer("", "")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	onlyIn := sampleSchedule()
	onlyIn.Checkouts = nil
	got, err := r.Render(onlyIn, generated)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "In: Serene, 2 orang, 7Aug-9Aug" {
		t.Errorf("Render() check-ins only = %q", got)
	}

	onlyOut := sampleSchedule()
	onlyOut.Checkins = nil
	got, err = r.Render(onlyOut, generated)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "Out: Loft, Serene" {
		t.Errorf("Render() checkouts only = %q", got)
	}
}

func TestRenderIndonesianEmpty(t *testing.T) {
	r, err := NewRenderer(StyleIndonesian, "")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	got, err := r.Render(models.Schedule{Reference: *day(8, 7)}, generated)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "Besok tidak ada checkout atau checkin di Bali (7Aug)"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderEnglish(t *testing.T) {
	r, err := NewRenderer(StyleEnglish, "")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	got, err := r.Render(sampleSchedule(), generated)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"Cleaning Schedule - August 07, 2025",
		"TOMORROW'S CHECKOUTS:\n• Rice Paddy View Loft\n  Guest: Mara Lin\n  People: 3\n  Stay: Aug 03 to Aug 07 (4 nights)\n",
		"TOMORROW'S CHECK-INS:\n• 2 Bed Bamboo Dream Villa\n  Guest: Jane Doe\n  People: 2\n  Stay: Aug 07 to Aug 09 (2 nights)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "Generated: 2025-08-06 18:00:00") {
		t.Errorf("Render() footer missing:\n%s", got)
	}
	if strings.Contains(got, "No check-ins") {
		t.Errorf("Render() printed the empty notice for a busy day")
	}
}

func TestRenderEnglishEmpty(t *testing.T) {
	r, err := NewRenderer(StyleEnglish, "")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	got, err := r.Render(models.Schedule{Reference: *day(8, 7)}, generated)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, "No check-ins or check-outs scheduled for tomorrow.") {
		t.Errorf("Render() = %q", got)
	}
	if strings.Contains(got, "CHECKOUTS") {
		t.Errorf("Render() printed a checkout section for an empty day")
	}
}

func TestRenderCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	content := "{{dayMonth .Reference}}: {{len .Checkouts}} out / {{len .Checkins}} in{{range .Checkins}} [{{stayRange .}}]{{end}}"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRenderer(StyleEnglish, path)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	got, err := r.Render(sampleSchedule(), generated)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "7Aug: 2 out / 1 in [7Aug-9Aug]" {
		t.Errorf("Render() = %q", got)
	}
}

func TestNewRendererErrors(t *testing.T) {
	tests := []struct {
		name     string
		style    string
		template string
	}{
		{"unknown style", "klingon", ""},
		{"missing template file", StyleIndonesian, filepath.Join(t.TempDir(), "nope.tmpl")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRenderer(tt.style, tt.template); err == nil {
				t.Error("NewRenderer() expected error, got nil")
			}
		})
	}

	bad := filepath.Join(t.TempDir(), "bad.tmpl")
	if err := os.WriteFile(bad, []byte("{{if .Empty}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRenderer("", bad); err == nil {
		t.Error("NewRenderer() expected parse error, got nil")
	}
}
