// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sample provides terrain height lookup along road geometry.
//
// The production source reads SRTM ".hgt" rasters (one-degree cells,
// 1201x1201 big-endian int16 posts, named by their south-west corner)
// from a local directory. Missing rasters and data voids yield the
// grade.NoDataValue sentinel rather than an error.
package sample

import (
	"errors"
	"fmt"
	"os"

	"github.com/AleutianAI/relief/services/elevation/geo"
)

// Service returns terrain heights for an ordered sequence of points.
//
// Implementations must return exactly one height per input point, using
// grade.NoDataValue for points without terrain coverage, and must be
// safe for concurrent use.
type Service interface {
	Heights(pts []geo.Point) []float64
}

// ErrMissingDataDir indicates the configured elevation directory does
// not exist.
var ErrMissingDataDir = errors.New("elevation data directory does not exist")

// Exists reports whether dir is an existing directory.
func Exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// StaticSource is a Service backed by a height function. Used by tests
// and local tooling that needs deterministic terrain.
type StaticSource struct {
	// HeightAt returns the height for a point. A nil function means a
	// uniform zero-height terrain.
	HeightAt func(p geo.Point) float64
}

// Heights implements Service.
func (s *StaticSource) Heights(pts []geo.Point) []float64 {
	heights := make([]float64, len(pts))
	if s.HeightAt == nil {
		return heights
	}
	for i, p := range pts {
		heights[i] = s.HeightAt(p)
	}
	return heights
}

// cellName returns the SRTM raster file name covering p, derived from
// the cell's south-west corner, e.g. "N47E008.hgt".
func cellName(p geo.Point) string {
	lat := floorInt(p.Lat)
	lon := floorInt(p.Lon)

	ns, n := "N", lat
	if lat < 0 {
		ns, n = "S", -lat
	}
	ew, e := "E", lon
	if lon < 0 {
		ew, e = "W", -lon
	}
	return fmt.Sprintf("%s%02d%s%03d.hgt", ns, n, ew, e)
}

func floorInt(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}
