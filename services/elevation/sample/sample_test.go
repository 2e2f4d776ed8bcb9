// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sample

import (
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/relief/services/elevation/geo"
	"github.com/AleutianAI/relief/services/elevation/grade"
)

// writeRaster creates a minimal hgt raster where every post is height h,
// except post (0,0) which is a void.
func writeRaster(t *testing.T, dir, name string, h int16) {
	t.Helper()
	b := make([]byte, srtmRows*srtmRows*2)
	for i := 0; i < srtmRows*srtmRows; i++ {
		binary.BigEndian.PutUint16(b[i*2:], uint16(h))
	}
	void := int16(srtmVoid)
	binary.BigEndian.PutUint16(b[0:], uint16(void))
	if err := os.WriteFile(filepath.Join(dir, name), b, 0644); err != nil {
		t.Fatalf("write raster: %v", err)
	}
}

func TestCellName(t *testing.T) {
	cases := []struct {
		p    geo.Point
		want string
	}{
		{geo.Point{Lat: 47.37, Lon: 8.54}, "N47E008.hgt"},
		{geo.Point{Lat: -33.9, Lon: 18.4}, "S34E018.hgt"},
		{geo.Point{Lat: 40.7, Lon: -74.0}, "N40W074.hgt"},
		{geo.Point{Lat: -13.5, Lon: -72.5}, "S14W073.hgt"},
	}
	for _, tc := range cases {
		if got := cellName(tc.p); got != tc.want {
			t.Errorf("cellName(%v) = %q, want %q", tc.p, got, tc.want)
		}
	}
}

func TestSRTMSource(t *testing.T) {
	t.Run("rejects missing directory", func(t *testing.T) {
		if _, err := NewSRTMSource("/does/not/exist", nil); err == nil {
			t.Fatal("expected error for missing directory")
		}
	})

	t.Run("samples heights from a raster", func(t *testing.T) {
		dir := t.TempDir()
		writeRaster(t, dir, "N47E008.hgt", 523)

		src, err := NewSRTMSource(dir, slog.Default())
		if err != nil {
			t.Fatalf("NewSRTMSource: %v", err)
		}

		heights := src.Heights([]geo.Point{
			{Lat: 47.5, Lon: 8.5},
			{Lat: 47.2, Lon: 8.9},
		})
		if len(heights) != 2 {
			t.Fatalf("got %d heights, want 2", len(heights))
		}
		for i, h := range heights {
			if h != 523 {
				t.Errorf("heights[%d] = %v, want 523", i, h)
			}
		}
	})

	t.Run("missing raster yields no data", func(t *testing.T) {
		dir := t.TempDir()
		src, err := NewSRTMSource(dir, nil)
		if err != nil {
			t.Fatalf("NewSRTMSource: %v", err)
		}

		heights := src.Heights([]geo.Point{{Lat: 10.5, Lon: 10.5}})
		if heights[0] != grade.NoDataValue {
			t.Errorf("height = %v, want no-data sentinel", heights[0])
		}
	})

	t.Run("void post yields no data", func(t *testing.T) {
		dir := t.TempDir()
		writeRaster(t, dir, "N47E008.hgt", 523)

		src, err := NewSRTMSource(dir, nil)
		if err != nil {
			t.Fatalf("NewSRTMSource: %v", err)
		}

		// Post (0,0) is the NW corner of the cell.
		heights := src.Heights([]geo.Point{{Lat: 47.9999, Lon: 8.0001}})
		if heights[0] != grade.NoDataValue {
			t.Errorf("height = %v, want no-data sentinel", heights[0])
		}
	})
}

func TestStaticSource(t *testing.T) {
	src := &StaticSource{HeightAt: func(p geo.Point) float64 {
		return p.Lat * 10
	}}
	heights := src.Heights([]geo.Point{{Lat: 1}, {Lat: 2}})
	if heights[0] != 10 || heights[1] != 20 {
		t.Errorf("heights = %v, want [10 20]", heights)
	}

	empty := &StaticSource{}
	if h := empty.Heights([]geo.Point{{}})[0]; h != 0 {
		t.Errorf("nil HeightAt should yield 0, got %v", h)
	}
}
