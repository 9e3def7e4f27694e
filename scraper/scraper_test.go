package scraper

import "testing"

func TestIsLoggedIn(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"hosting dashboard", "https://www.airbnb.com/hosting", true},
		{"reservations", "https://www.airbnb.com/hosting/reservations", true},
		{"login redirect", "https://www.airbnb.com/login?redirect_url=%2Fhosting", false},
		{"home page", "https://www.airbnb.com/", false},
		{"uppercase", "https://www.airbnb.com/HOSTING", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLoggedIn(tt.url); got != tt.expected {
				t.Errorf("isLoggedIn(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestConnectBrowserKillsOnFailure(t *testing.T) {
	killed := 0
	browser, err := connectBrowser("ws://127.0.0.1:1", func() { killed++ })
	if err == nil {
		browser.Close()
		t.Fatal("connectBrowser() expected error for a closed port")
	}
	if killed != 1 {
		t.Errorf("kill called %d times, want 1", killed)
	}
}
