package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceTierOrdering(t *testing.T) {
	assert.True(t, PriceFree.Ordinal() < PriceCheap.Ordinal())
	assert.True(t, PriceCheap.Ordinal() < PriceModerate.Ordinal())
	assert.True(t, PriceModerate.Ordinal() < PricePricey.Ordinal())
	assert.True(t, PricePricey.Ordinal() < PriceLuxury.Ordinal())

	assert.True(t, PriceModerate.Valid())
	assert.False(t, PriceTier("$$$$$").Valid())
	assert.Equal(t, -1, PriceTier("cheapish").Ordinal())
}

func TestCoordinatesValid(t *testing.T) {
	tests := []struct {
		name   string
		coords Coordinates
		want   bool
	}{
		{name: "origin", coords: Coordinates{}, want: true},
		{name: "austin", coords: Coordinates{Latitude: 30.2672, Longitude: -97.7431}, want: true},
		{name: "poles", coords: Coordinates{Latitude: 90, Longitude: 180}, want: true},
		{name: "latitude high", coords: Coordinates{Latitude: 90.1}, want: false},
		{name: "longitude low", coords: Coordinates{Longitude: -180.5}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coords.Valid())
		})
	}
}

func TestNormalizedPlaceValidate(t *testing.T) {
	good := func() NormalizedPlace {
		r := 4.5
		return NormalizedPlace{
			ID:         "google_maps:x",
			Name:       "Franklin Barbecue",
			Category:   CategoryRestaurant,
			Rating:     &r,
			Price:      PricePricey,
			Provenance: Provenance{Source: SourceGoogleMaps},
		}
	}

	p := good()
	require.NoError(t, p.Validate())

	p = good()
	p.Name = ""
	assert.Error(t, p.Validate())

	p = good()
	p.Category = ""
	assert.Error(t, p.Validate())

	p = good()
	bad := 5.5
	p.Rating = &bad
	assert.Error(t, p.Validate())

	p = good()
	p.Price = PriceTier("moderate-ish")
	assert.Error(t, p.Validate())

	p = good()
	p.Coordinates = &Coordinates{Latitude: 120}
	assert.Error(t, p.Validate())
}

func TestRecommendRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RecommendRequest
		wantErr bool
	}{
		{name: "minimal", req: RecommendRequest{Query: "tacos"}},
		{name: "full", req: RecommendRequest{Query: "tacos", Location: &Coordinates{Latitude: 30, Longitude: -97}, Limit: 5}},
		{name: "empty query", req: RecommendRequest{Query: ""}, wantErr: true},
		{name: "whitespace query", req: RecommendRequest{Query: "  \t "}, wantErr: true},
		{name: "query too long", req: RecommendRequest{Query: strings.Repeat("x", MaxQueryLength+1)}, wantErr: true},
		{name: "query at limit", req: RecommendRequest{Query: strings.Repeat("x", MaxQueryLength)}},
		{name: "bad location", req: RecommendRequest{Query: "tacos", Location: &Coordinates{Latitude: 91}}, wantErr: true},
		{name: "negative limit", req: RecommendRequest{Query: "tacos", Limit: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidFeedback(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		assert.True(t, ValidFeedback(rating))
	}
	assert.False(t, ValidFeedback(0))
	assert.False(t, ValidFeedback(6))
	assert.False(t, ValidFeedback(-3))
}
