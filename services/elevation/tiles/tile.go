// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tiles stores the serialized road-network graph as geographic
// tiles in an embedded BadgerDB, and provides the bounded per-worker
// reading cache used by the elevation pass.
package tiles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/relief/services/elevation/geo"
)

// NoElevationData is the mean-elevation value stored when the terrain
// service had no coverage for an edge.
const NoElevationData = 32768.0

// ID identifies one rectangular geographic tile at a hierarchy level.
// The level occupies the top byte, the tile index the remaining bits.
type ID uint64

const indexMask = (uint64(1) << 56) - 1

// NewID builds an ID from a hierarchy level and tile index.
func NewID(level uint8, index uint64) ID {
	return ID(uint64(level)<<56 | index&indexMask)
}

// Level returns the tile's hierarchy level.
func (id ID) Level() uint8 { return uint8(uint64(id) >> 56) }

// Index returns the tile's index within its level.
func (id ID) Index() uint64 { return uint64(id) & indexMask }

func (id ID) String() string {
	return fmt.Sprintf("%d/%d", id.Level(), id.Index())
}

// ParseID parses the "level/index" form produced by String.
func ParseID(s string) (ID, error) {
	sep := strings.IndexByte(s, '/')
	if sep <= 0 || sep == len(s)-1 {
		return 0, fmt.Errorf("invalid tile id %q, want level/index", s)
	}
	level, err := strconv.ParseUint(s[:sep], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid tile level in %q: %w", s, err)
	}
	index, err := strconv.ParseUint(s[sep+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tile index in %q: %w", s, err)
	}
	if index > indexMask {
		return 0, fmt.Errorf("tile index out of range in %q", s)
	}
	return NewID(uint8(level), index), nil
}

// DirectedEdge is one travel direction over a road segment within a
// tile. The two directions over the same segment share an
// EdgeInfoOffset into the tile's edge-info records.
type DirectedEdge struct {
	EdgeInfoOffset uint32
	LengthMeters   float64

	// Forward is set when this record follows the shape's point order.
	Forward bool
	Tunnel  bool
	Bridge  bool
	Ferry   bool

	// WeightedGrade is the routing-cost bucket (0-15 in normal terrain).
	WeightedGrade int
	MaxUpSlope    float64
	MaxDownSlope  float64
}

// EdgeInfo holds the per-physical-segment data shared by both directed
// records: the shape geometry and the mean elevation along it.
type EdgeInfo struct {
	Shape         []geo.Point
	MeanElevation float64
}

// Tile is one geographic cell's slice of the road network.
type Tile struct {
	ID           ID
	HasElevation bool
	Edges        []DirectedEdge
	Infos        map[uint32]*EdgeInfo
}

// NewTile creates an empty tile with mean elevations defaulted to the
// no-data sentinel as edge infos are added.
func NewTile(id ID) *Tile {
	return &Tile{
		ID:    id,
		Infos: make(map[uint32]*EdgeInfo),
	}
}

// AddEdge appends a directed edge and registers its shape under offset
// if not already present.
func (t *Tile) AddEdge(e DirectedEdge, shape []geo.Point) {
	t.Edges = append(t.Edges, e)
	if _, ok := t.Infos[e.EdgeInfoOffset]; !ok {
		t.Infos[e.EdgeInfoOffset] = &EdgeInfo{
			Shape:         shape,
			MeanElevation: NoElevationData,
		}
	}
}

// estimatedBytes approximates the decoded in-memory size of a tile for
// the reader's memory budget. Exact accounting is not needed; the
// estimate only has to grow with the tile.
func (t *Tile) estimatedBytes() int64 {
	size := int64(64)
	size += int64(len(t.Edges)) * 64
	for _, info := range t.Infos {
		size += 48 + int64(len(info.Shape))*16
	}
	return size
}
