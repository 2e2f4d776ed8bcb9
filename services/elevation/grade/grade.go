// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package grade computes slope statistics for a road segment from an
// ordered series of terrain heights sampled along its shape.
//
// The weighted grade summarizes a segment's elevation profile in a
// single steepness metric, emphasizing the steeper portions so that a
// road with one hard climb is not averaged away by its flat remainder.
// The metric is mapped to an integer bucket for routing-cost use.
package grade

import "math"

const (
	// NoDataValue marks a height sample with no terrain coverage.
	// Matches the SRTM void sentinel.
	NoDataValue = -32768.0

	// FlatBucket is the bucket a zero weighted grade maps to.
	FlatBucket = 6

	// MinimumInterval is the shortest edge length, in meters, for which
	// a grade is computed. Below it the height difference is within
	// terrain-data noise, so grades are forced flat.
	MinimumInterval = 10.0

	// Weighted grades outside this range are clamped before bucketing.
	minWeightedGrade = -10.0
	maxWeightedGrade = 15.0
)

// Attributes bundles the per-physical-edge results shared by the two
// directed records (one per travel direction) over one road segment.
type Attributes struct {
	ForwardBucket  int
	ReverseBucket  int
	ForwardMaxUp   float64
	ForwardMaxDown float64
	ReverseMaxUp   float64
	ReverseMaxDown float64

	// MeanElevation is the average sampled height in meters, or
	// NoDataValue when the terrain service had no coverage.
	MeanElevation float64
}

// Flat returns the attributes of an edge whose sampling was skipped
// entirely (tunnels and ferry segments).
func Flat() Attributes {
	return Attributes{
		ForwardBucket: FlatBucket,
		ReverseBucket: FlatBucket,
		MeanElevation: NoDataValue,
	}
}

// Weighted computes slope statistics over heights sampled every interval
// meters along a segment, traversed in slice order.
//
// Inputs:
//
//	heights - Sampled heights in meters. Entries equal to NoDataValue
//	          are treated as missing; pairs touching a missing sample
//	          contribute no slope.
//	interval - Sampling spacing in meters. Must be positive.
//
// Outputs:
//
//	weighted - Steepness-weighted mean grade in percent, clamped to
//	           [-10, 15]. Zero when no valid sample pair exists.
//	maxUp - Largest uphill grade in percent (>= 0).
//	maxDown - Largest downhill grade in percent (<= 0).
//	mean - Mean of the valid heights, or NoDataValue if none.
func Weighted(heights []float64, interval float64) (weighted, maxUp, maxDown, mean float64) {
	if interval <= 0 {
		return 0, 0, 0, NoDataValue
	}

	var heightSum float64
	var valid int
	for _, h := range heights {
		if h == NoDataValue {
			continue
		}
		heightSum += h
		valid++
	}
	if valid == 0 {
		return 0, 0, 0, NoDataValue
	}
	mean = heightSum / float64(valid)

	var weightedSum, weightSum float64
	for i := 1; i < len(heights); i++ {
		h0, h1 := heights[i-1], heights[i]
		if h0 == NoDataValue || h1 == NoDataValue {
			continue
		}
		slope := (h1 - h0) / interval * 100.0

		// Steeper postings get more weight so short hard climbs
		// are not averaged away.
		weight := 1.0 + math.Abs(slope)
		weightedSum += slope * weight
		weightSum += weight

		if slope > maxUp {
			maxUp = slope
		}
		if slope < maxDown {
			maxDown = slope
		}
	}
	if weightSum > 0 {
		weighted = weightedSum / weightSum
	}
	weighted = math.Max(minWeightedGrade, math.Min(maxWeightedGrade, weighted))
	return weighted, maxUp, maxDown, mean
}

// Bucket maps a weighted grade to its integer routing-cost bucket.
// The formula is bucket = floor(grade*0.6 + 6.5) via truncation; grades
// in roughly [-10, 15] land in [0, 15]. No clamping is applied.
func Bucket(weighted float64) int {
	return int(weighted*0.6 + 6.5)
}

// Estimate computes the attribute bundle for one physical edge from its
// forward-order height series.
//
// Below MinimumInterval the grades are forced flat but the computed
// mean elevation is kept. Otherwise the reverse direction is obtained
// by rerunning the weighted-grade computation on the reversed height
// series with the same interval; it is not the negation of the forward
// result, because the steepness weighting is direction-sensitive.
func Estimate(heights []float64, interval, length float64) Attributes {
	forward, fwdUp, fwdDown, mean := Weighted(heights, interval)

	if length < MinimumInterval {
		return Attributes{
			ForwardBucket: FlatBucket,
			ReverseBucket: FlatBucket,
			MeanElevation: mean,
		}
	}

	reversed := make([]float64, len(heights))
	for i, h := range heights {
		reversed[len(heights)-1-i] = h
	}
	reverse, revUp, revDown, _ := Weighted(reversed, interval)

	return Attributes{
		ForwardBucket:  Bucket(forward),
		ReverseBucket:  Bucket(reverse),
		ForwardMaxUp:   fwdUp,
		ForwardMaxDown: fwdDown,
		ReverseMaxUp:   revUp,
		ReverseMaxDown: revDown,
		MeanElevation:  mean,
	}
}
