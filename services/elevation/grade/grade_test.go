// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucket(t *testing.T) {
	cases := []struct {
		grade float64
		want  int
	}{
		{0, 6},    // flat
		{15, 15},  // steepest expected uphill
		{-10, 0},  // 0.5 truncates to 0
		{5, 9},    // 3 + 6.5 = 9.5
		{-5, 3},   // -3 + 6.5 = 3.5
		{2.5, 8},  // 1.5 + 6.5 = 8
		{-2.5, 5}, // -1.5 + 6.5 = 5
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Bucket(tc.grade), "Bucket(%v)", tc.grade)
	}
}

func TestWeighted(t *testing.T) {
	t.Run("flat profile", func(t *testing.T) {
		heights := []float64{500, 500, 500, 500}
		w, up, down, mean := Weighted(heights, 60)
		assert.Zero(t, w)
		assert.Zero(t, up)
		assert.Zero(t, down)
		assert.Equal(t, 500.0, mean)
	})

	t.Run("strictly uphill", func(t *testing.T) {
		heights := []float64{100, 106, 112, 118} // 10% at 60 m spacing
		w, up, down, mean := Weighted(heights, 60)
		assert.InDelta(t, 10.0, w, 1e-9)
		assert.InDelta(t, 10.0, up, 1e-9)
		assert.Zero(t, down)
		assert.Equal(t, 109.0, mean)
	})

	t.Run("strictly downhill", func(t *testing.T) {
		heights := []float64{118, 112, 106, 100}
		w, up, down, _ := Weighted(heights, 60)
		assert.InDelta(t, -10.0, w, 1e-9)
		assert.Zero(t, up)
		assert.InDelta(t, -10.0, down, 1e-9)
	})

	t.Run("steep section dominates the weighting", func(t *testing.T) {
		// Mostly flat with one 20% posting. A plain average over the
		// five postings would be 4%; the weighted grade must be higher.
		heights := []float64{100, 100, 100, 112, 112, 112}
		w, up, _, _ := Weighted(heights, 60)
		assert.Greater(t, w, 4.0)
		assert.InDelta(t, 20.0, up, 1e-9)
	})

	t.Run("no data samples are skipped", func(t *testing.T) {
		heights := []float64{100, NoDataValue, 112, 118}
		w, up, _, mean := Weighted(heights, 60)
		// Only the 112->118 pair is valid.
		assert.InDelta(t, 10.0, w, 1e-9)
		assert.InDelta(t, 10.0, up, 1e-9)
		assert.InDelta(t, (100.0+112.0+118.0)/3.0, mean, 1e-9)
	})

	t.Run("all no data", func(t *testing.T) {
		heights := []float64{NoDataValue, NoDataValue}
		w, up, down, mean := Weighted(heights, 60)
		assert.Zero(t, w)
		assert.Zero(t, up)
		assert.Zero(t, down)
		assert.Equal(t, NoDataValue, mean)
	})

	t.Run("clamps to the valid range", func(t *testing.T) {
		w, _, _, _ := Weighted([]float64{0, 30}, 60) // 50% grade
		assert.Equal(t, 15.0, w)
		w, _, _, _ = Weighted([]float64{30, 0}, 60)
		assert.Equal(t, -10.0, w)
	})
}

func TestEstimate(t *testing.T) {
	t.Run("short edge keeps mean but flattens grades", func(t *testing.T) {
		attrs := Estimate([]float64{200, 204}, 8, 8)
		assert.Equal(t, FlatBucket, attrs.ForwardBucket)
		assert.Equal(t, FlatBucket, attrs.ReverseBucket)
		assert.Zero(t, attrs.ForwardMaxUp)
		assert.Zero(t, attrs.ReverseMaxDown)
		assert.Equal(t, 202.0, attrs.MeanElevation)
	})

	t.Run("uphill edge is downhill in reverse", func(t *testing.T) {
		heights := []float64{100, 105, 111, 118, 126}
		attrs := Estimate(heights, 60, 240)
		assert.Greater(t, attrs.ForwardBucket, FlatBucket)
		assert.Less(t, attrs.ReverseBucket, FlatBucket)
		assert.Greater(t, attrs.ForwardMaxUp, 0.0)
		assert.Zero(t, attrs.ForwardMaxDown)
		assert.Less(t, attrs.ReverseMaxDown, 0.0)
		assert.Zero(t, attrs.ReverseMaxUp)
	})

	t.Run("reverse equals rerunning on reversed heights", func(t *testing.T) {
		heights := []float64{300, 290, 295, 310, 305}
		attrs := Estimate(heights, 60, 240)

		reversed := []float64{305, 310, 295, 290, 300}
		w, up, down, _ := Weighted(reversed, 60)
		assert.Equal(t, Bucket(w), attrs.ReverseBucket)
		assert.Equal(t, up, attrs.ReverseMaxUp)
		assert.Equal(t, down, attrs.ReverseMaxDown)
	})

	t.Run("flat helper", func(t *testing.T) {
		attrs := Flat()
		assert.Equal(t, FlatBucket, attrs.ForwardBucket)
		assert.Equal(t, FlatBucket, attrs.ReverseBucket)
		assert.Equal(t, NoDataValue, attrs.MeanElevation)
	})
}
