// Package lift scores a clustering's quality via Area-Under-Lift (AUL): how
// well cluster size predicts concentration of a binary ground-truth label,
// compared against the rectangle a perfect or a random assignment would
// trace.
//
// A lift curve plots cumulative predicted mass (x) against cumulative
// actual-positive mass (y) after sorting clusters by descending size. AUL is
// the area under that curve, normalized by the area of its bounding
// rectangle: 1.0 for a clustering where every positive lands in the largest
// clusters, 0.5 for one uncorrelated with size, and 0 when there is nothing
// to score.
package lift

import (
	"errors"
	"sort"
)

// DefaultThreshold is the cluster-size threshold used by Score when the
// caller has no reason to pick another: clusters of size 1 are by
// definition homogeneous, so only clusters larger than 1 are penalized for
// assumed homogeneity.
const DefaultThreshold = 1

// ErrLengthMismatch is returned when paired count slices differ in length.
var ErrLengthMismatch = errors.New("lift: countsTrue and countsPred must have equal length")

// ScoreGroup aggregates every cluster of the same predicted size
// (PredScore) together, recording the true-positive count of each such
// cluster in TrueScores. Grouping by tied predicted size lets AUL treat
// equally-ranked clusters symmetrically instead of depending on their
// arbitrary relative order within the tie.
type ScoreGroup struct {
	PredScore  int
	TrueScores []int
}

// Result is the outcome of scoring a clustering.
type Result struct {
	// AUL is the normalized area under the lift curve, in [0, 1].
	AUL float64

	// Warning is non-nil when the input is internally inconsistent: the
	// total true-positive count exceeds the total predicted count. The
	// score is still computed and returned; Warning flags it as suspect.
	Warning error
}

// Warning describes an inconsistency detected while scoring: more positives
// were found than the predicted total allows for.
type Warning struct {
	TotalTrue int
	TotalAny  int
}

func (w *Warning) Error() string {
	return "lift: total positives found exceeds total predicted count"
}

// Curve holds normalized (x, y) plot coordinates of a lift curve: x is
// cumulative predicted mass and y is cumulative actual-positive mass, both
// scaled to [0, 1]. It lets callers render the curve without this package
// depending on a plotting library.
type Curve struct {
	X []float64
	Y []float64
}

// FromCounts builds score groups from parallel arrays of true-positive and
// predicted counts, one pair per cluster, sorted by descending predicted
// count and grouped to merge ties. Returns ErrLengthMismatch if the slices
// differ in length.
func FromCounts(countsTrue, countsPred []int) ([]ScoreGroup, error) {
	if len(countsTrue) != len(countsPred) {
		return nil, ErrLengthMismatch
	}

	type pair struct {
		pred int
		true int
	}

	pairs := make([]pair, len(countsPred))
	for i := range pairs {
		pairs[i] = pair{pred: countsPred[i], true: countsTrue[i]}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].pred > pairs[j].pred
	})

	groups := make([]ScoreGroup, 0, len(pairs))

	for _, p := range pairs {
		if n := len(groups); n > 0 && groups[n-1].PredScore == p.pred {
			groups[n-1].TrueScores = append(groups[n-1].TrueScores, p.true)
			continue
		}

		groups = append(groups, ScoreGroup{PredScore: p.pred, TrueScores: []int{p.true}})
	}

	return groups, nil
}

// FromClusters builds score groups directly from clusters of class-coded
// points: each cluster's predicted count is its size, and its true-positive
// count is the number of members isPositive reports true for. Empty
// clusters are skipped.
func FromClusters[T any](clusters [][]T, isPositive func(T) bool) ([]ScoreGroup, error) {
	countsTrue := make([]int, 0, len(clusters))
	countsPred := make([]int, 0, len(clusters))

	for _, cluster := range clusters {
		if len(cluster) == 0 {
			continue
		}

		countsPred = append(countsPred, len(cluster))

		positives := 0

		for _, v := range cluster {
			if isPositive(v) {
				positives++
			}
		}

		countsTrue = append(countsTrue, positives)
	}

	return FromCounts(countsTrue, countsPred)
}

// Score computes the AUL score for the given groups using the geometric
// (closed-form) method, which is algebraically equivalent to, but far
// cheaper than, reconstructing the curve point by point. Clusters of
// predicted size greater than threshold are assumed to contribute their
// full predicted width as their expected homogeneous height; clusters at or
// below threshold contribute their actual true-positive count instead,
// since a threshold-or-smaller cluster is by construction homogeneous.
func Score(groups []ScoreGroup, threshold int) Result {
	var (
		totalAny        int
		totalTrue       int
		assumedVertical int
		aul             float64
	)

	for _, g := range groups {
		n := len(g.TrueScores)

		groupHeight := sumInts(g.TrueScores)
		totalTrue += groupHeight

		groupWidth := g.PredScore * n
		totalAny += groupWidth

		heightIncr := groupHeight
		if g.PredScore > threshold {
			heightIncr = groupWidth
		}

		assumedVertical += heightIncr

		aul += float64(totalTrue)*float64(groupWidth) -
			float64((n-1)*g.PredScore*groupHeight)/2.0
	}

	result := Result{}

	if totalTrue > totalAny {
		result.Warning = &Warning{TotalTrue: totalTrue, TotalAny: totalAny}
	}

	rectArea := assumedVertical * totalAny
	if rectArea == 0 {
		result.AUL = 0
	} else {
		result.AUL = aul / float64(rectArea)
	}

	return result
}

// ScoreWithCurve computes the same AUL score as Score but additionally
// reconstructs the normalized lift curve point by point, for callers that
// want to render or export it. It is more expensive than Score: O(number of
// clusters) extra work and allocation instead of O(number of groups).
func ScoreWithCurve(groups []ScoreGroup, threshold int) (Result, Curve) {
	var (
		totalAny        int
		totalTrue       int
		assumedVertical int
		aul             float64
		binHeight       float64
		binRightEdge    float64
	)

	var xs, ys []float64

	for _, g := range groups {
		n := len(g.TrueScores)

		groupHeight := sumInts(g.TrueScores)
		totalTrue += groupHeight

		groupWidth := g.PredScore * n
		totalAny += groupWidth

		heightIncr := groupHeight
		if g.PredScore > threshold {
			heightIncr = groupWidth
		}

		assumedVertical += heightIncr

		avgTrueScore := float64(groupHeight) / float64(n)

		for range g.TrueScores {
			binHeight += avgTrueScore
			aul += binHeight * float64(g.PredScore)

			xs = append(xs, binRightEdge)
			binRightEdge += float64(g.PredScore)
			xs = append(xs, binRightEdge)

			ys = append(ys, binHeight)
			ys = append(ys, binHeight)
		}
	}

	result := Result{}

	if totalTrue > totalAny {
		result.Warning = &Warning{TotalTrue: totalTrue, TotalAny: totalAny}
	}

	rectArea := assumedVertical * totalAny
	if rectArea == 0 {
		result.AUL = 0
	} else {
		result.AUL = aul / float64(rectArea)
	}

	curve := Curve{X: xs, Y: ys}

	if totalAny > 0 {
		for i := range curve.X {
			curve.X[i] /= float64(totalAny)
		}
	}

	if assumedVertical > 0 {
		for i := range curve.Y {
			curve.Y[i] /= float64(assumedVertical)
		}
	}

	return result, curve
}

func sumInts(vs []int) int {
	total := 0
	for _, v := range vs {
		total += v
	}

	return total
}
