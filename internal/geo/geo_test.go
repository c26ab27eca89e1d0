package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/placescout/placescout/internal/model"
)

func TestHaversineKM(t *testing.T) {
	austin := model.Coordinates{Latitude: 30.2672, Longitude: -97.7431}
	dallas := model.Coordinates{Latitude: 32.7767, Longitude: -96.7970}

	assert.InDelta(t, 290, HaversineKM(austin, dallas), 10, "Austin-Dallas should be ~290km")

	// Same point should be 0.
	assert.InDelta(t, 0, HaversineKM(austin, austin), 0.001)

	// Symmetric.
	assert.InDelta(t, HaversineKM(austin, dallas), HaversineKM(dallas, austin), 0.001)
}

func TestWithinRadiusKM(t *testing.T) {
	center := model.Coordinates{Latitude: 12.9716, Longitude: 77.5946} // Bangalore
	cubbon := model.Coordinates{Latitude: 12.9763, Longitude: 77.5929} // ~0.7km away

	assert.True(t, WithinRadiusKM(center, cubbon, 5))
	assert.False(t, WithinRadiusKM(center, cubbon, 0.1))
}
