package aprs

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// LatLng builds a position from decimal degrees
func LatLng(lat, lon float64) s2.LatLng {
	return s2.LatLng{Lat: s1.Angle(lat) * s1.Degree, Lng: s1.Angle(lon) * s1.Degree}
}

// FormatLatitude renders a latitude as DDMM.MMN or DDMM.MMS.
// Values beyond the poles are clamped.
func FormatLatitude(deg float64) string {
	deg = math.Max(-90, math.Min(90, deg))
	hemi := 'N'
	if deg < 0 {
		hemi = 'S'
	}
	d, m := degMin(math.Abs(deg))
	return fmt.Sprintf("%02d%s%c", d, m, hemi)
}

// FormatLongitude renders a longitude as DDDMM.MME or DDDMM.MMW.
// Values beyond the antimeridian are clamped.
func FormatLongitude(deg float64) string {
	deg = math.Max(-180, math.Min(180, deg))
	hemi := 'E'
	if deg < 0 {
		hemi = 'W'
	}
	d, m := degMin(math.Abs(deg))
	return fmt.Sprintf("%03d%s%c", d, m, hemi)
}

// FormatPosition renders the fixed-width uncompressed position,
// latitude then symbol table then longitude
func FormatPosition(pos s2.LatLng, symbolTable byte) string {
	return FormatLatitude(pos.Lat.Degrees()) + string(symbolTable) + FormatLongitude(pos.Lng.Degrees())
}

// degMin splits non-negative degrees into whole degrees and a MM.MM minute string
func degMin(deg float64) (int, string) {
	d := int(deg)
	m := fmt.Sprintf("%05.2f", (deg-float64(d))*60)
	// 59.996 and up rounds to 60.00
	if m[0] == '6' {
		m = "00.00"
		d++
	}
	return d, m
}
