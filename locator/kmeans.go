package locator

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"
)

// termCriteria bounds Lloyd iterations of single k-means attempt.
type termCriteria struct {
	maxIter int
	// Stop once every centroid moved less than epsilon (in sample units)
	epsilon float64
}

type clustering struct {
	centers []r2.Vec
	labels  []int
	// Sum of squared distances from samples to their centers
	compactness float64
}

// kmeans runs k-means clustering up to attempts times and keeps the most compact result.
// Caller must guarantee len(samples) >= k and k >= 1.
func kmeans(samples []r2.Vec, k int, criteria termCriteria, attempts int, rnd *rand.Rand) clustering {
	best := clustering{compactness: math.Inf(1)}
	for attempt := 0; attempt < attempts; attempt++ {
		centers := seedPlusPlus(samples, k, rnd)
		current := lloyd(samples, centers, criteria)
		if current.compactness < best.compactness {
			best = current
		}
	}
	return best
}

// seedPlusPlus picks initial centers with k-means++: each next center is drawn with probability
// proportional to squared distance to the nearest center chosen so far.
func seedPlusPlus(samples []r2.Vec, k int, rnd *rand.Rand) []r2.Vec {
	centers := make([]r2.Vec, 0, k)
	centers = append(centers, samples[rnd.IntN(len(samples))])
	weights := make([]float64, len(samples))
	for i := range samples {
		weights[i] = math.Inf(1)
	}
	for len(centers) < k {
		last := centers[len(centers)-1]
		total := 0.0
		for i, sample := range samples {
			d := r2.Norm2(r2.Sub(sample, last))
			if d < weights[i] {
				weights[i] = d
			}
			total += weights[i]
		}
		// Every sample coincides with some center: any pick is as good as another
		if total == 0 {
			centers = append(centers, samples[rnd.IntN(len(samples))])
			continue
		}
		picker := distuv.NewCategorical(weights, rand.NewPCG(rnd.Uint64(), rnd.Uint64()))
		centers = append(centers, samples[int(picker.Rand())])
	}
	return centers
}

// lloyd refines centers in place until criteria are met.
func lloyd(samples []r2.Vec, centers []r2.Vec, criteria termCriteria) clustering {
	labels := make([]int, len(samples))
	sums := make([]r2.Vec, len(centers))
	counts := make([]int, len(centers))
	for iter := 0; iter < criteria.maxIter; iter++ {
		label(samples, centers, labels)
		for j := range sums {
			sums[j] = r2.Vec{}
			counts[j] = 0
		}
		for i, sample := range samples {
			sums[labels[i]] = r2.Add(sums[labels[i]], sample)
			counts[labels[i]]++
		}
		maxShift := 0.0
		for j := range centers {
			// Empty cluster keeps its previous center
			if counts[j] == 0 {
				continue
			}
			updated := r2.Scale(1.0/float64(counts[j]), sums[j])
			shift := r2.Norm(r2.Sub(updated, centers[j]))
			if shift > maxShift {
				maxShift = shift
			}
			centers[j] = updated
		}
		if maxShift < criteria.epsilon {
			break
		}
	}
	compactness := label(samples, centers, labels)
	return clustering{
		centers:     centers,
		labels:      labels,
		compactness: compactness,
	}
}

// label assigns each sample to its nearest center and returns total squared distance.
func label(samples []r2.Vec, centers []r2.Vec, labels []int) float64 {
	total := 0.0
	for i, sample := range samples {
		bestIdx := 0
		bestDist := math.Inf(1)
		for j, center := range centers {
			d := r2.Norm2(r2.Sub(sample, center))
			if d < bestDist {
				bestDist = d
				bestIdx = j
			}
		}
		labels[i] = bestIdx
		total += bestDist
	}
	return total
}
