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
	"container/list"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/AleutianAI/relief/services/elevation/geo"
	"github.com/AleutianAI/relief/services/elevation/grade"
)

const (
	// srtmRows is the post count per raster side. SRTM3 cells are
	// 1201x1201; the last row/column overlaps the neighboring cell.
	srtmRows = 1201

	// srtmVoid is the raw int16 void marker inside a raster.
	srtmVoid = -32768

	// maxCachedRasters bounds the per-source raster cache. A raster is
	// ~2.8 MiB, so the cache stays under 50 MiB.
	maxCachedRasters = 16
)

// SRTMSource is a Service reading SRTM ".hgt" rasters from a directory.
//
// Loaded rasters are kept in a small LRU cache. Missing raster files
// are remembered so ocean tiles do not hit the filesystem repeatedly.
//
// Thread Safety: safe for concurrent use.
type SRTMSource struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	rasters map[string][]byte
	lru     *list.List
	missing map[string]bool
}

// NewSRTMSource creates a source over an existing raster directory.
// Returns ErrMissingDataDir if dir is absent.
func NewSRTMSource(dir string, logger *slog.Logger) (*SRTMSource, error) {
	if !Exists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrMissingDataDir, dir)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SRTMSource{
		dir:     dir,
		logger:  logger,
		rasters: make(map[string][]byte),
		lru:     list.New(),
		missing: make(map[string]bool),
	}, nil
}

// Heights implements Service using nearest-post lookup.
func (s *SRTMSource) Heights(pts []geo.Point) []float64 {
	heights := make([]float64, len(pts))
	for i, p := range pts {
		heights[i] = s.height(p)
	}
	return heights
}

func (s *SRTMSource) height(p geo.Point) float64 {
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return grade.NoDataValue
	}

	name := cellName(p)
	raster := s.raster(name)
	if raster == nil {
		return grade.NoDataValue
	}

	// Rasters are named by the SW corner but stored north-first.
	latSW := float64(floorInt(p.Lat))
	lonSW := float64(floorInt(p.Lon))
	row := int(math.Round((latSW + 1 - p.Lat) * (srtmRows - 1)))
	col := int(math.Round((p.Lon - lonSW) * (srtmRows - 1)))
	if row < 0 {
		row = 0
	}
	if row >= srtmRows {
		row = srtmRows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= srtmRows {
		col = srtmRows - 1
	}

	off := (row*srtmRows + col) * 2
	v := int16(uint16(raster[off])<<8 | uint16(raster[off+1]))
	if v == srtmVoid {
		return grade.NoDataValue
	}
	return float64(v)
}

// raster returns the raster bytes for name, loading and caching on
// demand. Returns nil when the raster file is absent or unreadable.
func (s *SRTMSource) raster(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.rasters[name]; ok {
		for e := s.lru.Front(); e != nil; e = e.Next() {
			if e.Value.(string) == name {
				s.lru.MoveToFront(e)
				break
			}
		}
		return b
	}
	if s.missing[name] {
		return nil
	}

	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil || len(b) < srtmRows*srtmRows*2 {
		if err == nil {
			s.logger.Warn("short srtm raster",
				slog.String("raster", name),
				slog.Int("bytes", len(b)),
			)
		}
		s.missing[name] = true
		return nil
	}

	for s.lru.Len() >= maxCachedRasters {
		oldest := s.lru.Back()
		s.lru.Remove(oldest)
		delete(s.rasters, oldest.Value.(string))
	}
	s.rasters[name] = b
	s.lru.PushFront(name)

	s.logger.Debug("loaded srtm raster", slog.String("raster", name))
	return b
}
