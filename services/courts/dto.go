package courts

import "github.com/playmatch/api/repos/store"

type NearbyQuery struct {
	Lat   *float64    `form:"lat"`
	Lng   *float64    `form:"lng"`
	Zip   string      `form:"zip"`
	Sport store.Sport `form:"sport" binding:"required,sport"`
}

type GeocodeQuery struct {
	Zip string `form:"zip" binding:"required,zipcode"`
}

type GeocodeResponse struct {
	Zip string  `json:"zip"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Court struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Location       string      `json:"location"`
	Type           store.Sport `json:"type"`
	Distance       float64     `json:"distance"`
	DistanceText   string      `json:"distanceText"`
	Rating         float64     `json:"rating"`
	NumberOfCourts int         `json:"numberOfCourts"`
	PhotoReference string      `json:"photoReference,omitempty"`
	URL            string      `json:"url"`
	OpeningHours   []string    `json:"openingHours"`
	PhoneNumber    string      `json:"phoneNumber,omitempty"`
	IsIndoor       bool        `json:"isIndoor"`
	IsFree         bool        `json:"isFree"`
	PriceInfo      string      `json:"priceInfo,omitempty"`
}
