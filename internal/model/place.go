// Package model defines the canonical data types shared across the
// recommendation pipeline: normalized places, query intent, scored
// candidates, and persisted recommendation records.
package model

// Source identifies the external provider a candidate came from.
type Source string

// Known candidate sources.
const (
	SourceGoogleMaps Source = "google_maps"
	SourceReddit     Source = "reddit"
)

// PriceTier is an ordered price classification.
type PriceTier string

// Price tiers, cheapest first.
const (
	PriceFree     PriceTier = "free"
	PriceCheap    PriceTier = "$"
	PriceModerate PriceTier = "$$"
	PricePricey   PriceTier = "$$$"
	PriceLuxury   PriceTier = "$$$$"
)

// priceOrder maps tiers to their ordinal position.
var priceOrder = map[PriceTier]int{
	PriceFree:     0,
	PriceCheap:    1,
	PriceModerate: 2,
	PricePricey:   3,
	PriceLuxury:   4,
}

// Valid reports whether t is one of the known price tiers.
func (t PriceTier) Valid() bool {
	_, ok := priceOrder[t]
	return ok
}

// Ordinal returns the tier's position in the price ordering, or -1 for
// an unknown tier.
func (t PriceTier) Ordinal() int {
	n, ok := priceOrder[t]
	if !ok {
		return -1
	}
	return n
}

// Categories form the bounded vocabulary a normalized place may carry.
const (
	CategoryRestaurant    = "restaurant"
	CategoryCafe          = "cafe"
	CategoryBar           = "bar"
	CategoryShop          = "shop"
	CategoryEntertainment = "entertainment"
	CategoryOutdoor       = "outdoor"
	CategoryFitness       = "fitness"
	CategoryLocalPlace    = "local_place"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point is within latitude [-90,90] and
// longitude [-180,180].
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Provenance records where a normalized place came from.
type Provenance struct {
	Source    Source `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
}

// NormalizedPlace is the canonical, source-agnostic place record
// produced by the normalizer. It is immutable after creation and lives
// only for the duration of one query unless explicitly promoted to the
// store.
type NormalizedPlace struct {
	// ID is provider-scoped and stable, suitable for de-duplication.
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Description string       `json:"description,omitempty"`
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	// Rating is in [0,5] when non-nil.
	Rating     *float64   `json:"rating,omitempty"`
	Price      PriceTier  `json:"price,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Provenance Provenance `json:"provenance"`
	// Popularity is a raw vote/review count when the source exposes one.
	Popularity int `json:"popularity,omitempty"`
}

// Validate checks the invariants a normalized place must satisfy.
func (p *NormalizedPlace) Validate() error {
	if p.Name == "" {
		return errMissing("name")
	}
	if p.Category == "" {
		return errMissing("category")
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return errRange("rating", *p.Rating)
	}
	if p.Price != "" && !p.Price.Valid() {
		return errRange("price", string(p.Price))
	}
	if p.Coordinates != nil && !p.Coordinates.Valid() {
		return errRange("coordinates", *p.Coordinates)
	}
	return nil
}
