package openair

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const metersPerNauticalMile = 1852.0

// Matches "45:30:00 N", "45:30:00.5N", "005:20 E" and "45:30.5 N"
var coordPattern = regexp.MustCompile(`(\d{1,3}):(\d{1,2}(?:\.\d+)?)(?::(\d{1,2}(?:\.\d+)?))?\s*([NSEWnsew])`)

// parseCoordinate reads an OpenAir "lat lon" pair into an orb point (lon, lat).
func parseCoordinate(s string) (orb.Point, error) {
	matches := coordPattern.FindAllStringSubmatch(s, -1)
	if len(matches) != 2 {
		return orb.Point{}, fmt.Errorf("invalid coordinate %q", strings.TrimSpace(s))
	}

	var lat, lon float64
	var haveLat, haveLon bool
	for _, m := range matches {
		value, err := sexagesimal(m[1], m[2], m[3])
		if err != nil {
			return orb.Point{}, fmt.Errorf("invalid coordinate %q: %w", strings.TrimSpace(s), err)
		}
		switch strings.ToUpper(m[4]) {
		case "N":
			lat, haveLat = value, true
		case "S":
			lat, haveLat = -value, true
		case "E":
			lon, haveLon = value, true
		case "W":
			lon, haveLon = -value, true
		}
	}
	if !haveLat || !haveLon {
		return orb.Point{}, fmt.Errorf("invalid coordinate %q: need one latitude and one longitude", strings.TrimSpace(s))
	}
	if lat > 90 || lat < -90 || lon > 180 || lon < -180 {
		return orb.Point{}, fmt.Errorf("coordinate out of range %q", strings.TrimSpace(s))
	}
	return orb.Point{lon, lat}, nil
}

func sexagesimal(deg, min, sec string) (float64, error) {
	d, err := strconv.ParseFloat(deg, 64)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseFloat(min, 64)
	if err != nil {
		return 0, err
	}
	var s float64
	if sec != "" {
		if s, err = strconv.ParseFloat(sec, 64); err != nil {
			return 0, err
		}
	}
	if m >= 60 || s >= 60 {
		return 0, fmt.Errorf("minutes and seconds must be below 60")
	}
	return d + m/60 + s/3600, nil
}

// arcPoints walks from startBearing to endBearing around center. Bearings are
// in degrees, radius in nautical miles. Both endpoints are included.
func arcPoints(center orb.Point, radiusNM, startBearing, endBearing float64, clockwise bool, step float64) []orb.Point {
	start := normalizeBearing(startBearing)
	end := normalizeBearing(endBearing)
	if clockwise && end <= start {
		end += 360
	}
	if !clockwise && end >= start {
		end -= 360
	}

	sweep := math.Abs(end - start)
	n := int(math.Ceil(sweep / step))
	if n < 1 {
		n = 1
	}
	delta := (end - start) / float64(n)

	meters := radiusNM * metersPerNauticalMile
	points := make([]orb.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		points = append(points, geo.PointAtBearingAndDistance(center, start+delta*float64(i), meters))
	}
	return points
}

// circlePoints returns an open ring approximating a circle; the caller closes it.
func circlePoints(center orb.Point, radiusNM, step float64) []orb.Point {
	n := int(math.Ceil(360 / step))
	meters := radiusNM * metersPerNauticalMile
	points := make([]orb.Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, geo.PointAtBearingAndDistance(center, float64(i)*360/float64(n), meters))
	}
	return points
}

func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// arcBetween draws an arc from start to end around center using the distance
// from center to start as radius. The exact end point closes the arc.
func arcBetween(center, start, end orb.Point, clockwise bool, step float64) []orb.Point {
	radiusNM := geo.Distance(center, start) / metersPerNauticalMile
	points := arcPoints(center, radiusNM, geo.Bearing(center, start), geo.Bearing(center, end), clockwise, step)
	points[0] = start
	points[len(points)-1] = end
	return points
}
