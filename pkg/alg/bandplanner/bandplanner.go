// Package bandplanner chooses the LSH band width (rows per band) that best
// approximates a target Jaccard similarity threshold for a given MinHash
// signature width.
//
// Locality-sensitive hashing under the banding technique co-buckets two
// items with probability 1 - (1 - j^r)^b, where j is their Jaccard
// similarity, r is rows-per-band, and b = floor(W/r) is the band count.
// That S-curve's 50%-probability point sits near t = (1/b)^(1/r); Plan
// searches the small space r in [1, W] for the r that makes b = W/r track
// b = (1/t)^r as closely as possible.
package bandplanner

import "math"

// Plan returns the rows-per-band r in [1, width] that minimizes
// |width - r*(1/threshold)^r|, matching the original
// get_bandwidth(n, threshold) construction this package replaces. If
// threshold is 0, Plan returns 1 without searching (1/0^r is undefined).
func Plan(width int, threshold float64) int {
	if width <= 0 {
		return 0
	}

	if threshold <= 0 {
		return 1
	}

	best := width
	minErr := math.Inf(1)

	for r := 1; r <= width; r++ {
		b := 1.0 / math.Pow(threshold, float64(r))

		err := math.Abs(float64(width) - b*float64(r))
		if err < minErr {
			minErr = err
			best = r
		}
	}

	return best
}

// Objective returns the value Plan minimizes, |width - r*(1/threshold)^r|,
// for a candidate rows-per-band r. Exposed so callers and tests can compare
// candidate values directly, since multiple r can tie on the minimum.
func Objective(width int, threshold float64, r int) float64 {
	if threshold <= 0 {
		return math.Inf(1)
	}

	b := 1.0 / math.Pow(threshold, float64(r))

	return math.Abs(float64(width) - b*float64(r))
}

// BandCount returns floor(width/r), the number of complete bands a
// signature of the given width splits into under rows-per-band r. Any
// trailing width % r components are discarded.
func BandCount(width, r int) int {
	if r <= 0 {
		return 0
	}

	return width / r
}

// CoBucketProbability returns the probability that two items with Jaccard
// similarity j share at least one band, given b bands of r rows each:
// 1 - (1 - j^r)^b. Used by tests validating the LSH co-bucketing S-curve.
func CoBucketProbability(j float64, r, b int) float64 {
	return 1 - math.Pow(1-math.Pow(j, float64(r)), float64(b))
}
