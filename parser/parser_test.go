package parser

import (
	"strings"
	"testing"

	"airbnb-cleaner/config"
)

const reservationsPage = `<html><body>
<div data-testid="reservation-card-1">
  <div>Jane Doe</div>
  <div>2 Bed Bamboo Dream Villa</div>
  <div><span>Aug 7, 2025</span> <span>Aug 9, 2025</span></div>
  <div>2 adults</div>
  <script>window.tracking = true;</script>
</div>
<div role="listitem">
  <div>Jane Doe</div>
  <div>2 Bed Bamboo Dream Villa</div>
  <div><span>Aug 7, 2025</span> <span>Aug 9, 2025</span></div>
  <div>2 adults</div>
</div>
<div class="reservation-row"><p>Short text</p></div>
<div data-testid="booking-2">
  <p>Mara&nbsp;&nbsp;Lin</p>
  <p>Rice Paddy View Loft</p>
  <p>Aug 5, 2025 – Aug 7, 2025</p>
  <p>1 adult</p>
</div>
</body></html>`

func TestExtractReservationBlocks(t *testing.T) {
	cfg := config.GetDefaultConfig()
	p := NewParser(cfg.Scraper.BlockSelectors, cfg.Scraper.MinBlockLength)

	blocks, err := p.ExtractReservationBlocks(reservationsPage)
	if err != nil {
		t.Fatalf("ExtractReservationBlocks() error = %v", err)
	}

	if len(blocks) != 2 {
		t.Fatalf("ExtractReservationBlocks() returned %d blocks, want 2: %q", len(blocks), blocks)
	}

	wantFirst := "Jane Doe\n2 Bed Bamboo Dream Villa\nAug 7, 2025\nAug 9, 2025\n2 adults"
	if blocks[0] != wantFirst {
		t.Errorf("blocks[0] = %q, want %q", blocks[0], wantFirst)
	}

	if !strings.HasPrefix(blocks[1], "Mara Lin\n") {
		t.Errorf("blocks[1] = %q, want normalized first line %q", blocks[1], "Mara Lin")
	}
	if strings.Contains(blocks[0], "tracking") {
		t.Errorf("blocks[0] contains script text: %q", blocks[0])
	}
}

func TestExtractListingRows(t *testing.T) {
	page := `<table>
<tr><th>Listing</th><th>Location</th><th>Status</th></tr>
<tr><td><div>2 Bed Bamboo Dream Villa</div><div>2bed</div></td><td>Ubud, Bali</td><td>Listed</td></tr>
<tr><td>tiny</td></tr>
<tr><td><div>Tranquil Japanese Terrace</div><div>Japanese</div></td><td>Payangan</td><td>Unlisted</td></tr>
</table>`

	p := NewParser(nil, 50)
	rows, err := p.ExtractListingRows(page)
	if err != nil {
		t.Fatalf("ExtractListingRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ExtractListingRows() returned %d rows, want 2: %q", len(rows), rows)
	}
	if !strings.HasPrefix(rows[0], "2 Bed Bamboo Dream Villa\n2bed\n") {
		t.Errorf("rows[0] = %q", rows[0])
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"regular spaces", "Jane  Doe", "Jane Doe"},
		{"non-breaking space", "Jane\u00A0Doe", "Jane Doe"},
		{"mixed whitespace", " Jane\t\nDoe ", "Jane Doe"},
		{"already normalized", "Jane Doe", "Jane Doe"},
		{"only whitespace", " \n\t", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeWhitespace(tt.input)
			if got != tt.expected {
				t.Errorf("normalizeWhitespace() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUniqueBlocks(t *testing.T) {
	long := "Jane Doe\n2 Bed Bamboo Dream Villa\nAug 7, 2025\nAug 9, 2025"
	texts := []string{long, "  " + long + "\n", "short card", "", "Mara Lin\nRice Paddy View Loft\nAug 3, 2025\nAug 7, 2025"}

	got := UniqueBlocks(texts, 20)
	if len(got) != 2 {
		t.Fatalf("UniqueBlocks() returned %d blocks, want 2: %q", len(got), got)
	}
	if got[0] != long {
		t.Errorf("UniqueBlocks()[0] = %q, want %q", got[0], long)
	}
}
