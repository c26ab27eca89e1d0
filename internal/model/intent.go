package model

// QueryIntent holds structured signals derived from the free-text
// query. Absent fields are left empty; absence is not an error.
type QueryIntent struct {
	PlaceType        string    `json:"place_type,omitempty"`
	Price            PriceTier `json:"price,omitempty"`
	Mood             string    `json:"mood,omitempty"`
	LocationSpecific bool      `json:"location_specific"`
	TimeSpecific     bool      `json:"time_specific"`
}
