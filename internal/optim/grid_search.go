package optim

import (
	"math"
)

// Objective scores one parameter combination; lower is better.
type Objective func(params map[string]float64) float64

// GridSearch exhaustively evaluates an objective over the cartesian
// product of per-parameter value ranges.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search returns the best parameter combination and its objective
// value. Combinations scoring NaN or Inf are skipped.
func (g *GridSearch) Search(objective Objective) (map[string]float64, float64) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(0, make(map[string]float64), objective, &best, &bestParams)

	return bestParams, best
}

func (g *GridSearch) searchRecursive(
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) {
	if depth == len(g.paramNames) {
		val := objective(current)
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.searchRecursive(depth+1, current, objective, best, bestParams)
	}
	delete(current, paramName)
}

// Span returns n evenly spaced values across [lo, hi] inclusive.
func Span(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
