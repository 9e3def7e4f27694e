package config

// Vocabulary holds the word lists used by the heuristics. Lists are matched case-insensitively
// as substrings unless noted otherwise.
type Vocabulary struct {
	GuestNameExclusions         []string `yaml:"guest_name_exclusions"`
	GuestNameFallbackExclusions []string `yaml:"guest_name_fallback_exclusions"`
	PropertyKeywords            []string `yaml:"property_keywords"`
	PropertyStatusTokens        []string `yaml:"property_status_tokens"`
	DateNoiseTokens             []string `yaml:"date_noise_tokens"`
	GuestCountUnits             []string `yaml:"guest_count_units"` // regexp fragments following the number
	CheckoutKeywords            []string `yaml:"checkout_keywords"`
	NicknameDomainWords         []string `yaml:"nickname_domain_words"` // whole tokens
	NicknameHintWords           []string `yaml:"nickname_hint_words"`
	ListingGeoIndicators        []string `yaml:"listing_geo_indicators"`
}

// DefaultVocabulary returns the word lists tuned for Bali hosting pages
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		GuestNameExclusions: []string{
			"confirmed", "pending", "cancelled", "status", "check", "guest", "adult",
			"night", "total", "booking", "reservation", "review", "listing", "property",
			"apartment", "house", "room", "actions", "details", "contact", "message",
			"upcoming", "current", "past", "today", "tomorrow", "currently", "hosting",
			"trip", "change", "requested", "booked", "checkout", "payout", "confirmation",
			"code", "guests", "checkin",
		},
		GuestNameFallbackExclusions: []string{
			"status", "confirmed", "pending", "cancelled", "guest", "adult",
			"booking", "reservation", "check", "night", "total", "actions",
		},
		PropertyKeywords: []string{
			"apartment", "house", "room", "studio", "villa", "condo", "place", "home",
			"loft", "suite", "flat", "unit", "bedroom", "bed", "bath", "penthouse",
			"cottage", "cabin", "bungalow", "townhouse", "duplex", "newly", "built",
			"private", "rice", "paddy", "pool", "view", "dream", "serene", "bamboo",
			"buddha", "jungle", "getaway", "peace", "coconuts", "secret", "bali",
			"tranquil", "japanese", "terrace",
		},
		PropertyStatusTokens: []string{
			"confirmed", "pending", "cancelled", "guest", "adult", "total", "actions", "review", "details",
		},
		DateNoiseTokens: []string{
			"status", "guests", "check-in", "checkout", "booked", "listing",
			"confirmation", "total", "actions", "review",
		},
		GuestCountUnits:  []string{"adults?", "guests?", "people"},
		CheckoutKeywords: []string{"checkout", "check-out"},
		NicknameDomainWords: []string{
			"bed", "bath", "serene", "dream", "bamboo", "buddha", "jungle", "japanese",
			"rice", "terrace", "villa", "newly", "built", "private", "paddy", "paradise",
			"secret", "bali", "getaway", "tranquil",
		},
		NicknameHintWords: []string{
			"bed", "bath", "villa", "dream", "bamboo", "buddha", "rice", "paddy",
		},
		ListingGeoIndicators: []string{"seoul", "hongdae"},
	}
}
