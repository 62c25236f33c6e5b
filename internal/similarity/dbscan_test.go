package similarity

import (
	"math"
	"testing"
)

func TestDBSCANTwoClustersAndNoise(t *testing.T) {
	points := [][]float64{
		{0, 0},
		{0.1, 0},
		{0.2, 0.1},
		{10, 10},
		{10.1, 10},
		{50, 50}, // isolated
	}

	labels := dbscan(points, 0.5, 2)

	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Errorf("first cluster split: %v", labels)
	}
	if labels[3] != labels[4] {
		t.Errorf("second cluster split: %v", labels)
	}
	if labels[0] == labels[3] {
		t.Errorf("distinct clusters merged: %v", labels)
	}
	if labels[5] != noiseLabel {
		t.Errorf("isolated point labeled %d, want noise", labels[5])
	}
}

func TestDBSCANAllNoise(t *testing.T) {
	points := [][]float64{{0, 0}, {10, 0}, {0, 10}}
	for _, label := range dbscan(points, 0.5, 2) {
		if label != noiseLabel {
			t.Errorf("sparse points clustered: label %d", label)
		}
	}
}

func TestDBSCANMinPointsCountsSelf(t *testing.T) {
	// Two coincident points with minPoints=2: each sees itself plus the
	// other, so both are core points of one cluster.
	labels := dbscan([][]float64{{1, 1}, {1, 1}}, 0.5, 2)
	if labels[0] != 0 || labels[1] != 0 {
		t.Errorf("coincident pair not clustered: %v", labels)
	}
}

func TestDBSCANEmpty(t *testing.T) {
	if labels := dbscan(nil, 0.5, 2); len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
}

func TestStandardize(t *testing.T) {
	points := [][]float64{
		{1, 100, 7},
		{2, 200, 7},
		{3, 300, 7},
	}

	scaled := standardize(points)

	for k := 0; k < 2; k++ {
		mean := 0.0
		for _, p := range scaled {
			mean += p[k]
		}
		if math.Abs(mean) > 1e-9 {
			t.Errorf("column %d mean = %v, want 0", k, mean/3)
		}

		variance := 0.0
		for _, p := range scaled {
			variance += p[k] * p[k]
		}
		if math.Abs(variance/3-1) > 1e-9 {
			t.Errorf("column %d variance = %v, want 1", k, variance/3)
		}
	}

	// Constant column collapses to zero rather than dividing by zero.
	for i, p := range scaled {
		if p[2] != 0 {
			t.Errorf("constant column row %d = %v, want 0", i, p[2])
		}
	}
}

func TestStandardizeEmpty(t *testing.T) {
	if scaled := standardize(nil); scaled != nil {
		t.Errorf("expected nil, got %v", scaled)
	}
}
