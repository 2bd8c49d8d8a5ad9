package maps

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// Place is one result of a nearby search.
type Place struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Rating   float64  `json:"rating"`
	Types    []string `json:"types"`
	URL      string   `json:"url"`
	Photos   []Photo  `json:"photos"`
	Geometry struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

type nearbyResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Results      []Place `json:"results"`
}

// PlaceDetails holds the detail fields requested for a court.
type PlaceDetails struct {
	FormattedPhoneNumber string   `json:"formatted_phone_number"`
	Types                []string `json:"types"`
	PriceLevel           *int     `json:"price_level"`
	URL                  string   `json:"url"`
	Photos               []Photo  `json:"photos"`
	OpeningHours         *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
}

type detailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
	Result       PlaceDetails `json:"result"`
}

// NearbyRequest is a Places nearby search around Location.
type NearbyRequest struct {
	Location LatLng
	Radius   int
	Keyword  string
	Type     string
}
