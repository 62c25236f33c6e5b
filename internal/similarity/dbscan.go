package similarity

import "math"

// noiseLabel marks points that belong to no cluster.
const noiseLabel = -1

// dbscan assigns a cluster label to every point using density-based
// clustering over Euclidean distance. Points in no dense region get
// noiseLabel. minPoints counts the point itself, matching the usual
// definition of a core point.
func dbscan(points [][]float64, eps float64, minPoints int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = noiseLabel
	}
	visited := make([]bool, len(points))

	cluster := 0
	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPoints {
			continue
		}

		labels[i] = cluster
		expandCluster(points, labels, visited, neighbors, cluster, eps, minPoints)
		cluster++
	}
	return labels
}

// expandCluster grows a cluster from a core point's neighborhood,
// absorbing density-reachable points.
func expandCluster(points [][]float64, labels []int, visited []bool, seeds []int, cluster int, eps float64, minPoints int) {
	for i := 0; i < len(seeds); i++ {
		p := seeds[i]
		if labels[p] == noiseLabel {
			labels[p] = cluster
		}
		if visited[p] {
			continue
		}
		visited[p] = true

		neighbors := regionQuery(points, p, eps)
		if len(neighbors) >= minPoints {
			seeds = append(seeds, neighbors...)
		}
	}
}

// regionQuery returns the indices of all points within eps of point i,
// including i itself.
func regionQuery(points [][]float64, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if euclidean(points[i], points[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for k := range a {
		d := a[k] - b[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// standardize scales each feature column to zero mean and unit variance in
// place of a copy. Columns with zero variance collapse to zero, so constant
// features never separate points.
func standardize(points [][]float64) [][]float64 {
	if len(points) == 0 {
		return nil
	}
	dims := len(points[0])
	means := make([]float64, dims)
	for _, p := range points {
		for k, v := range p {
			means[k] += v
		}
	}
	for k := range means {
		means[k] /= float64(len(points))
	}

	stddevs := make([]float64, dims)
	for _, p := range points {
		for k, v := range p {
			d := v - means[k]
			stddevs[k] += d * d
		}
	}
	for k := range stddevs {
		stddevs[k] = math.Sqrt(stddevs[k] / float64(len(points)))
	}

	scaled := make([][]float64, len(points))
	for i, p := range points {
		scaled[i] = make([]float64, dims)
		for k, v := range p {
			if stddevs[k] == 0 {
				continue
			}
			scaled[i][k] = (v - means[k]) / stddevs[k]
		}
	}
	return scaled
}
