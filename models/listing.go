package models

// ListingStatusListed is the only status whose listings take part in nickname resolution
const ListingStatusListed = "Listed"

// Listing represents one row of the host's listings table
type Listing struct {
	AirbnbName   string `json:"airbnb_name"`   // Full public listing title
	InternalName string `json:"internal_name"` // Short nickname used by the cleaning team
	Status       string `json:"status"`        // Listed, Unlisted, Action Required, Draft
}

// IsListed reports whether the listing is currently published
func (l Listing) IsListed() bool {
	return l.Status == ListingStatusListed
}
