package geo

import "math"

// earthRadiusM models Earth as a sphere. Good enough at urban scales;
// not geodetically exact.
const earthRadiusM = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DistanceM returns the great-circle (haversine) distance between two
// points in meters.
func DistanceM(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

// ShouldSample decides whether a new position is worth persisting as a
// history sample. The first fix for a device is always sampled; after
// that a sample is kept only when the device moved at least minDistanceM
// from its previous position.
func ShouldSample(prev *Point, next Point, minDistanceM float64) bool {
	if prev == nil {
		return true
	}
	return DistanceM(*prev, next) >= minDistanceM
}
