package filter

import (
	"strings"
)

// Filter recognizes properties in an excluded location
type Filter struct {
	indicators []string
}

// NewFilter creates a new Filter instance from case-insensitive location indicators
func NewFilter(geoExclusions []string) *Filter {
	indicators := make([]string, 0, len(geoExclusions))
	for _, ind := range geoExclusions {
		if ind = strings.ToLower(strings.TrimSpace(ind)); ind != "" {
			indicators = append(indicators, ind)
		}
	}
	return &Filter{indicators: indicators}
}

// Excludes reports whether a property name mentions an excluded location, and which one
func (f *Filter) Excludes(propertyName string) (string, bool) {
	if propertyName == "" {
		return "", false
	}

	lower := strings.ToLower(propertyName)
	for _, ind := range f.indicators {
		if strings.Contains(lower, ind) {
			return ind, true
		}
	}
	return "", false
}
