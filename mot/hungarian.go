package mot

import (
	"math"

	"github.com/LdDl/jugglefx/geom"
)

// minCostAssignment solves rectangular assignment problem for n×m cost matrix with Kuhn-Munkres
// algorithm (Jonker-Volgenant variant with potentials). Costs must be non-negative.
//
// Returns result[i] = column assigned to row i, or NoMatch. Pairs with allowed[i][j] == false are never returned.
// Among all assignments the one with the largest number of allowed pairs wins, ties are broken by the smallest total cost.
func minCostAssignment(cost [][]float64, allowed [][]bool) []int {
	n := len(cost)
	if n == 0 {
		return []int{}
	}
	m := len(cost[0])
	if m == 0 {
		return noMatches(n)
	}

	// Forbidden and padding cells cost more than any sum of allowed cells,
	// so trading one forbidden cell for an allowed one always lowers total cost
	dim := geom.MaxInt(n, m)
	maxCost := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if allowed[i][j] && cost[i][j] > maxCost {
				maxCost = cost[i][j]
			}
		}
	}
	forbidden := float64(dim)*maxCost + 1.0

	c := make([][]float64, dim)
	for i := 0; i < dim; i++ {
		c[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			if i < n && j < m && allowed[i][j] {
				c[i][j] = cost[i][j]
			} else {
				c[i][j] = forbidden
			}
		}
	}

	// 1-indexed internally: index 0 is the virtual column
	const inf = math.MaxFloat64 / 2
	u := make([]float64, dim+1) // Row potentials
	v := make([]float64, dim+1) // Column potentials
	p := make([]int, dim+1)     // p[j] = row assigned to column j
	way := make([]int, dim+1)   // way[j] = previous column in augmenting path
	minv := make([]float64, dim+1)
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0
		for j := 1; j <= dim; j++ {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := c[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			if j1 < 0 {
				break
			}
			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		// Augment along the path
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	result := noMatches(n)
	for j := 1; j <= dim; j++ {
		row, col := p[j]-1, j-1
		if row < 0 || row >= n || col >= m || !allowed[row][col] {
			continue
		}
		result[row] = col
	}
	return result
}
