package utils

import (
	"github.com/golang/geo/s2"
)

type DistanceUnit string

const (
	Miles      DistanceUnit = "miles"
	Kilometers DistanceUnit = "km"
)

const (
	earthRadiusMiles = 3956.0
	earthRadiusKm    = 6371.0
)

// Distance returns the great-circle distance between two points given in
// degrees.
func Distance(lat1, lng1, lat2, lng2 float64, unit DistanceUnit) float64 {
	angle := s2.LatLngFromDegrees(lat1, lng1).Distance(s2.LatLngFromDegrees(lat2, lng2))
	if unit == Kilometers {
		return angle.Radians() * earthRadiusKm
	}
	return angle.Radians() * earthRadiusMiles
}
