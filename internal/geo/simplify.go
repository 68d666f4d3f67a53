package geo

// SimplifyRoute reduces a location history to a coarse path suitable for
// downstream routing calls. Consecutive points closer than minDistanceM
// are discarded (the first and last point are always kept); if the result
// still has more than maxPoints entries it is stride-sampled down while
// retaining the final point. The result is deterministic for identical
// input.
func SimplifyRoute(points []Point, minDistanceM float64, maxPoints int) []Point {
	if len(points) <= 2 {
		return append([]Point(nil), points...)
	}

	filtered := make([]Point, 0, len(points))
	filtered = append(filtered, points[0])
	for i := 1; i < len(points)-1; i++ {
		if DistanceM(filtered[len(filtered)-1], points[i]) >= minDistanceM {
			filtered = append(filtered, points[i])
		}
	}
	filtered = append(filtered, points[len(points)-1])

	if maxPoints <= 0 || len(filtered) <= maxPoints {
		return filtered
	}

	// Uniform stride over all but the last point, which is always kept.
	stride := float64(len(filtered)-1) / float64(maxPoints-1)
	sampled := make([]Point, 0, maxPoints)
	for i := 0; i < maxPoints-1; i++ {
		sampled = append(sampled, filtered[int(float64(i)*stride)])
	}
	sampled = append(sampled, filtered[len(filtered)-1])

	return sampled
}
