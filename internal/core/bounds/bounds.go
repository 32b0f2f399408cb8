// Package bounds contains the viewport arithmetic behind fetch scheduling.
// This is part of the Functional Core - no I/O, only pure functions.
package bounds

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Box is a geographic bounding box in degrees.
type Box struct {
	South float64
	West  float64
	North float64
	East  float64
}

// FromBound converts an orb bound (X = lon, Y = lat) to a Box.
func FromBound(b orb.Bound) Box {
	return Box{South: b.Min.Lat(), West: b.Min.Lon(), North: b.Max.Lat(), East: b.Max.Lon()}
}

// Bound converts the box to an orb bound.
func (b Box) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// LatSpan is the north-south extent in degrees.
func (b Box) LatSpan() float64 { return b.North - b.South }

// LonSpan is the east-west extent in degrees.
func (b Box) LonSpan() float64 { return b.East - b.West }

// Center returns the midpoint of the box.
func (b Box) Center() orb.Point {
	return b.Bound().Center()
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b Box) Contains(lat, lon float64) bool {
	return b.Bound().Contains(orb.Point{lon, lat})
}

// Expand grows every side by factor times the span on that axis.
// Expand(0.25) adds a quarter of the height above and below, and a quarter
// of the width on each side.
func (b Box) Expand(factor float64) Box {
	dLat := b.LatSpan() * factor
	dLon := b.LonSpan() * factor
	return Box{
		South: b.South - dLat,
		West:  b.West - dLon,
		North: b.North + dLat,
		East:  b.East + dLon,
	}
}

// Validate checks that the box is ordered and within WGS84 ranges.
func (b Box) Validate() error {
	if b.South > b.North {
		return fmt.Errorf("south %.6f is north of north %.6f", b.South, b.North)
	}
	if b.West > b.East {
		return fmt.Errorf("west %.6f is east of east %.6f", b.West, b.East)
	}
	if b.South < -90 || b.North > 90 {
		return fmt.Errorf("latitude out of range: %.6f..%.6f", b.South, b.North)
	}
	if b.West < -180 || b.East > 180 {
		return fmt.Errorf("longitude out of range: %.6f..%.6f", b.West, b.East)
	}
	return nil
}

// String renders the box in Overpass order: south,west,north,east.
func (b Box) String() string {
	return fmt.Sprintf("%s,%s,%s,%s", ftoa(b.South), ftoa(b.West), ftoa(b.North), ftoa(b.East))
}

// Parse reads a "south,west,north,east" string.
func Parse(s string) (Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Box{}, fmt.Errorf("bounds must be south,west,north,east (got %q)", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Box{}, fmt.Errorf("invalid bounds component %q: %w", p, err)
		}
		vals[i] = v
	}
	box := Box{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}
	if err := box.Validate(); err != nil {
		return Box{}, err
	}
	return box, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Thresholds tune when a viewport change justifies a new point fetch.
type Thresholds struct {
	// CenterShiftRatio is the fraction of the previous span the center must move on either axis.
	CenterShiftRatio float64
	// ZoomRatio is the growth/shrink factor on either axis (or in area) that counts as a zoom.
	ZoomRatio float64
}

// DefaultThresholds returns the empirically chosen 25% shift and 3x zoom thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{CenterShiftRatio: 0.25, ZoomRatio: 3}
}

// SignificantChange reports whether next differs enough from prev to refetch.
// A nil prev always counts as significant.
func SignificantChange(prev *Box, next Box, th Thresholds) bool {
	if prev == nil {
		return true
	}

	latSpan, lonSpan := prev.LatSpan(), prev.LonSpan()
	if latSpan <= 0 || lonSpan <= 0 {
		return true
	}

	pc, nc := prev.Center(), next.Center()
	if math.Abs(nc.Lat()-pc.Lat()) > latSpan*th.CenterShiftRatio {
		return true
	}
	if math.Abs(nc.Lon()-pc.Lon()) > lonSpan*th.CenterShiftRatio {
		return true
	}

	latRatio := symmetricRatio(next.LatSpan(), latSpan)
	lonRatio := symmetricRatio(next.LonSpan(), lonSpan)
	areaRatio := symmetricRatio(next.LatSpan()*next.LonSpan(), latSpan*lonSpan)

	return latRatio > th.ZoomRatio || lonRatio > th.ZoomRatio || areaRatio > th.ZoomRatio
}

// symmetricRatio returns max(a/b, b/a); a degenerate value counts as infinitely different.
func symmetricRatio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return math.Inf(1)
	}
	if a > b {
		return a / b
	}
	return b / a
}

// AreaThresholds tune the more tolerant hysteresis of the orchard fetch.
type AreaThresholds struct {
	// PanDegrees is the summed edge drift on one axis that counts as a pan.
	PanDegrees float64
	// LogSize is the absolute natural-log size ratio that counts as a zoom.
	LogSize float64
}

// DefaultAreaThresholds returns ~2.2km of drift and a 1.5 log-size tolerance.
func DefaultAreaThresholds() AreaThresholds {
	return AreaThresholds{PanDegrees: 0.02, LogSize: 1.5}
}

// SignificantAreaChange reports whether the expanded orchard box moved enough to refetch.
func SignificantAreaChange(prev *Box, next Box, th AreaThresholds) bool {
	if prev == nil {
		return true
	}

	latDiff := math.Abs(next.North-prev.North) + math.Abs(next.South-prev.South)
	lonDiff := math.Abs(next.East-prev.East) + math.Abs(next.West-prev.West)
	if latDiff > th.PanDegrees || lonDiff > th.PanDegrees {
		return true
	}

	prevSize := prev.LatSpan() * prev.LonSpan()
	nextSize := next.LatSpan() * next.LonSpan()
	if prevSize <= 0 || nextSize <= 0 {
		return true
	}
	return math.Abs(math.Log(nextSize/prevSize)) > th.LogSize
}
