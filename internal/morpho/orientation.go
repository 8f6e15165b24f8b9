package morpho

import (
	"math"

	"github.com/chrissnell/automorph/internal/profile"
	"github.com/soniakeys/unit"
)

// Orientation returns the seaward bearing of the profile from the heel to
// the shoreline (or the seaward end without one), in degrees [0, 360).
//
// This reproduces the published Automorph bearings, which feed longitude
// into the latitude terms of the forward azimuth and vice versa, and take
// the coordinates as radians without converting from degrees. Values are
// therefore only comparable with other Automorph output.
func Orientation(p *profile.Profile, shoreline *Shoreline, heel Marker) float64 {
	seaward := 0
	if shoreline != nil {
		seaward = shoreline.Index
	}

	latA, lonA := unit.Angle(p.Lon[heel.Index]), unit.Angle(p.Lat[heel.Index])
	latB, lonB := unit.Angle(p.Lon[seaward]), unit.Angle(p.Lat[seaward])
	dl := lonB - lonA

	sinA, cosA := latA.Sincos()
	sinB, cosB := latB.Sincos()
	east := cosB * dl.Sin()
	north := cosA*sinB - sinA*cosB*dl.Cos()

	bearing := unit.PMod(unit.Angle(math.Atan2(east, north)).Deg(), 360)
	if bearing >= 360 {
		// PMod can round up to the modulus for tiny negative angles
		bearing = 0
	}
	return bearing
}
