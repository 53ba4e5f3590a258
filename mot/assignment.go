package mot

import (
	"github.com/LdDl/jugglefx/geom"
	"github.com/pkg/errors"
)

// NoMatch marks current point which does not continue any previous point
const NoMatch = -1

// AssignmentSolver matches points of the current frame to points of the previous frame.
// Result has the same length as current: result[i] is index in previous which current[i] continues, or NoMatch.
// Every previous index appears in result at most once.
type AssignmentSolver interface {
	Assign(previous, current []geom.Point) []int
}

// MatchingAlgorithm is for algorithm type for matching current points to previous ones
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres) for optimal assignment
	MatchingAlgorithmHungarian MatchingAlgorithm = iota
	// MatchingAlgorithmGreedy uses a greedy algorithm for faster but potentially suboptimal assignment
	MatchingAlgorithmGreedy
)

// NewSolver creates solver for given algorithm. Unknown algorithms fall back to greedy matching
func NewSolver(algorithm MatchingAlgorithm, maxDistance float64) AssignmentSolver {
	switch algorithm {
	case MatchingAlgorithmHungarian:
		return HungarianSolver{MaxDistance: maxDistance}
	case MatchingAlgorithmGreedy:
		return GreedySolver{MaxDistance: maxDistance}
	default:
		return GreedySolver{MaxDistance: maxDistance}
	}
}

// ParseMatchingAlgorithm maps configuration name ("hungarian" or "greedy") to MatchingAlgorithm
func ParseMatchingAlgorithm(name string) (MatchingAlgorithm, error) {
	switch name {
	case "hungarian":
		return MatchingAlgorithmHungarian, nil
	case "greedy":
		return MatchingAlgorithmGreedy, nil
	default:
		return MatchingAlgorithmGreedy, errors.Errorf("unknown matching algorithm '%s'", name)
	}
}

func noMatches(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = NoMatch
	}
	return result
}

// gated reports whether squared distance passes the gate. Non-positive maxDistance disables the gate
func gated(squaredDistance, maxDistance float64) bool {
	if maxDistance <= 0 {
		return true
	}
	return squaredDistance <= maxDistance*maxDistance
}

// GreedySolver repeatedly takes the closest still available pair.
// Fast, but may be suboptimal when trajectories cross.
type GreedySolver struct {
	// Maximum distance between matched points. Non-positive value disables the gate
	MaxDistance float64
}

// Assign implements AssignmentSolver
func (solver GreedySolver) Assign(previous, current []geom.Point) []int {
	result := noMatches(len(current))
	if len(previous) == 0 || len(current) == 0 {
		return result
	}
	priorityQueue := make(candidateHeap, 0, len(previous)*len(current))
	for i, cur := range current {
		for j, prev := range previous {
			d := geom.SquaredDistance(cur, prev)
			if !gated(d, solver.MaxDistance) {
				continue
			}
			priorityQueue.Push(candidate{cur: i, prev: j, distance: d})
		}
	}
	// We need to prevent double use of previous points
	reserved := make([]bool, len(previous))
	for priorityQueue.Len() > 0 {
		popped := priorityQueue.Pop()
		if result[popped.cur] != NoMatch || reserved[popped.prev] {
			continue
		}
		result[popped.cur] = popped.prev
		reserved[popped.prev] = true
	}
	return result
}

// HungarianSolver finds assignment which maximizes number of matches inside the gate and,
// among those, minimizes total squared displacement.
type HungarianSolver struct {
	// Maximum distance between matched points. Non-positive value disables the gate
	MaxDistance float64
}

// Assign implements AssignmentSolver
func (solver HungarianSolver) Assign(previous, current []geom.Point) []int {
	if len(current) == 0 || len(previous) == 0 {
		return noMatches(len(current))
	}
	cost := make([][]float64, len(current))
	allowed := make([][]bool, len(current))
	for i, cur := range current {
		cost[i] = make([]float64, len(previous))
		allowed[i] = make([]bool, len(previous))
		for j, prev := range previous {
			d := geom.SquaredDistance(cur, prev)
			cost[i][j] = d
			allowed[i][j] = gated(d, solver.MaxDistance)
		}
	}
	return minCostAssignment(cost, allowed)
}
