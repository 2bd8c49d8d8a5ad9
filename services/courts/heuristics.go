package courts

import (
	"fmt"
	"math"
	"strings"

	"github.com/playmatch/api/repos/maps"
)

const earthRadiusMiles = 3958.8

var (
	indoorKeywords = []string{
		"gym", "fitness", "club", "center", "centre", "indoor",
		"recreation", "athletic", "sportsplex", "complex",
	}
	outdoorKeywords = []string{
		"park", "public", "outdoor", "municipal", "playground",
		"recreation area", "community park",
	}
)

// distance is the great-circle distance between two points in miles.
func distance(from, to maps.LatLng) float64 {
	dLat := radians(to.Lat - from.Lat)
	dLng := radians(to.Lng - from.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(from.Lat))*math.Cos(radians(to.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func distanceText(miles float64) string {
	return fmt.Sprintf("%.1f miles", miles)
}

func hasType(types []string, want ...string) bool {
	for _, t := range types {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// estimateCourtCount guesses the number of courts from the place type.
func estimateCourtCount(types []string) int {
	switch {
	case hasType(types, "stadium"):
		return 8
	case hasType(types, "park"):
		return 4
	default:
		return 2
	}
}

// isIndoor looks for indoor words first, then outdoor words, then the place
// types. Unknown venues count as outdoor.
func isIndoor(place maps.Place, details *maps.PlaceDetails) bool {
	name := strings.ToLower(place.Name)
	vicinity := strings.ToLower(place.Vicinity)
	if containsAny(name, indoorKeywords) || containsAny(vicinity, indoorKeywords) {
		return true
	}
	if containsAny(name, outdoorKeywords) || containsAny(vicinity, outdoorKeywords) {
		return false
	}

	types := place.Types
	if details != nil && len(details.Types) > 0 {
		types = details.Types
	}
	if hasType(types, "gym", "health") {
		return true
	}
	return false
}

// priceInfo classifies a venue as a free public court, a membership venue or
// unknown.
func priceInfo(place maps.Place) (free bool, info string) {
	name := strings.ToLower(place.Name)
	vicinity := strings.ToLower(place.Vicinity)

	if hasType(place.Types, "park", "city_hall") ||
		strings.Contains(name, "public") ||
		strings.Contains(name, "community") ||
		strings.Contains(vicinity, "park") {
		return true, ""
	}
	if hasType(place.Types, "gym", "health") ||
		containsAny(name, []string{"club", "fitness", "center"}) {
		return false, "Membership/Fee Required"
	}
	return false, "Call for rates"
}
