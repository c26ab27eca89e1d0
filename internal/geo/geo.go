// Package geo provides pure spatial helpers for place candidates.
package geo

import (
	"math"

	"github.com/placescout/placescout/internal/model"
)

// earthRadiusKM is the mean Earth radius.
const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between two points in
// kilometers.
func HaversineKM(a, b model.Coordinates) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadiusKM reports whether b lies within radiusKM of a.
func WithinRadiusKM(a, b model.Coordinates, radiusKM float64) bool {
	return HaversineKM(a, b) <= radiusKM
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
