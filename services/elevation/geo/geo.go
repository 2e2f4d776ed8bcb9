// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package geo provides the small amount of spherical geometry the
// elevation pass needs: great-circle distance, polyline length, and
// even resampling of a road segment's shape.
package geo

import "math"

// earthRadiusMeters is the mean earth radius used for haversine distance.
const earthRadiusMeters = 6371000.0

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	deltaPhi := toRadians(b.Lat - a.Lat)
	deltaLambda := toRadians(b.Lon - a.Lon)

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// PolylineLength returns the summed segment length of pts in meters.
func PolylineLength(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// interpolate returns the point a fraction t of the way from a to b.
// Linear interpolation in lat/lon is accurate enough at posting-interval
// scale (tens of meters).
func interpolate(a, b Point, t float64) Point {
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lon: a.Lon + (b.Lon-a.Lon)*t,
	}
}

// Resample returns points spaced evenly every interval meters along the
// polyline. The first and last shape points are always included; the
// final spacing may be shorter than interval.
//
// Inputs:
//
//	pts - Shape polyline. Must have at least two points.
//	interval - Target spacing in meters. Must be positive.
//
// Outputs:
//
//	[]Point - Resampled polyline. Nil if pts has fewer than two points.
func Resample(pts []Point, interval float64) []Point {
	if len(pts) < 2 || interval <= 0 {
		return nil
	}

	resampled := []Point{pts[0]}
	remaining := interval
	current := pts[0]

	for i := 1; i < len(pts); i++ {
		next := pts[i]
		segment := Distance(current, next)
		for segment >= remaining && segment > 0 {
			t := remaining / segment
			current = interpolate(current, next, t)
			resampled = append(resampled, current)
			segment = Distance(current, next)
			remaining = interval
		}
		remaining -= segment
		current = next
	}

	// Close out with the exact segment end.
	last := pts[len(pts)-1]
	tail := resampled[len(resampled)-1]
	if tail.Lat != last.Lat || tail.Lon != last.Lon {
		resampled = append(resampled, last)
	}
	return resampled
}
