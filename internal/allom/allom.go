// Package allom estimates the tree-growth model's allometric
// parameters from census data. The height-diameter curve is the
// asymptotic form H(d) = h_max * (1 - exp(-a*d/h_max)); the fit is a
// plain least-squares grid search, coarse pass then local refinement.
package allom

import (
	"errors"
	"fmt"
	"math"

	"github.com/ecodyn/vedata/internal/optim"
	"github.com/ecodyn/vedata/internal/table"
)

var (
	// ErrTooFewObservations indicates fewer than three (dbh, height) pairs.
	ErrTooFewObservations = errors.New("allom: need at least three observations")

	// ErrBadObservation indicates a non-positive dbh or height.
	ErrBadObservation = errors.New("allom: observations must be positive")
)

// Params holds one fitted height-diameter curve.
type Params struct {
	HMax float64 // asymptotic maximum height, m
	A    float64 // initial slope of the height-diameter curve
	N    int     // observations used
	SSE  float64 // residual sum of squares at the optimum
}

// Height evaluates the curve at a stem diameter (m).
func (p Params) Height(dbh float64) float64 {
	return Height(dbh, p.HMax, p.A)
}

// Height evaluates H(d) = h_max * (1 - exp(-a*d/h_max)).
func Height(dbh, hMax, a float64) float64 {
	return hMax * (1 - math.Exp(-a*dbh/hMax))
}

// Fit estimates (h_max, a) from paired stem diameters (m) and heights
// (m). A coarse grid over plausible tropical-forest values is refined
// with a second, local search around the coarse optimum.
func Fit(dbh, height []float64) (Params, error) {
	if len(dbh) != len(height) {
		return Params{}, fmt.Errorf("allom: %d diameters but %d heights", len(dbh), len(height))
	}
	if len(dbh) < 3 {
		return Params{}, ErrTooFewObservations
	}
	var maxH float64
	for i := range dbh {
		if dbh[i] <= 0 || height[i] <= 0 {
			return Params{}, fmt.Errorf("%w: row %d (dbh %v, height %v)", ErrBadObservation, i, dbh[i], height[i])
		}
		maxH = math.Max(maxH, height[i])
	}

	sse := func(p map[string]float64) float64 {
		var s float64
		for i := range dbh {
			r := height[i] - Height(dbh[i], p["h_max"], p["a"])
			s += r * r
		}
		return s
	}

	// h_max cannot sit below the tallest observed tree.
	coarse := optim.NewGridSearch(
		[]string{"h_max", "a"},
		[][]float64{optim.Span(maxH, maxH*2.5, 31), optim.Span(10, 200, 39)},
	)
	best, _ := coarse.Search(sse)
	if best == nil {
		return Params{}, ErrTooFewObservations
	}

	hSpan := (maxH*2.5 - maxH) / 30
	aSpan := (200.0 - 10.0) / 38
	fine := optim.NewGridSearch(
		[]string{"h_max", "a"},
		[][]float64{
			optim.Span(math.Max(maxH, best["h_max"]-hSpan), best["h_max"]+hSpan, 21),
			optim.Span(math.Max(1, best["a"]-aSpan), best["a"]+aSpan, 21),
		},
	)
	refined, minSSE := fine.Search(sse)

	return Params{HMax: refined["h_max"], A: refined["a"], N: len(dbh), SSE: minSSE}, nil
}

// FitByGroup fits the curve separately for each group label (normally
// the plant functional type) and renders the derived parameter table
// with the column schema downstream steps read: pft, h_max, a, rho_s,
// sla, n, sse. The optional woodDensity and sla trait vectors, when
// non-nil, must match the census length and are averaged per group;
// when nil the columns are emitted as NaN.
func FitByGroup(groups []string, dbh, height, woodDensity, sla []float64) (*table.Table, error) {
	if len(groups) != len(dbh) || len(dbh) != len(height) {
		return nil, fmt.Errorf("allom: column lengths disagree: %d %d %d", len(groups), len(dbh), len(height))
	}
	if woodDensity != nil && len(woodDensity) != len(groups) {
		return nil, fmt.Errorf("allom: wood density column length %d does not match census length %d", len(woodDensity), len(groups))
	}
	if sla != nil && len(sla) != len(groups) {
		return nil, fmt.Errorf("allom: sla column length %d does not match census length %d", len(sla), len(groups))
	}

	order := make([]string, 0)
	byGroup := make(map[string][2][]float64)
	for i, gr := range groups {
		pair, ok := byGroup[gr]
		if !ok {
			order = append(order, gr)
		}
		pair[0] = append(pair[0], dbh[i])
		pair[1] = append(pair[1], height[i])
		byGroup[gr] = pair
	}

	out := table.New([]string{"pft", "h_max", "a", "rho_s", "sla", "n", "sse"})
	for _, gr := range order {
		pair := byGroup[gr]
		p, err := Fit(pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("allom: group %q: %w", gr, err)
		}
		err = out.Append([]string{
			gr,
			table.FormatFloat(p.HMax),
			table.FormatFloat(p.A),
			table.FormatFloat(groupMean(groups, woodDensity, gr)),
			table.FormatFloat(groupMean(groups, sla, gr)),
			fmt.Sprintf("%d", p.N),
			table.FormatFloat(p.SSE),
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// groupMean averages a trait vector over the rows carrying one group
// label. A nil vector yields NaN so the column still appears.
func groupMean(groups []string, vals []float64, gr string) float64 {
	if vals == nil {
		return math.NaN()
	}
	var sum float64
	var n int
	for i, g := range groups {
		if g == gr && !math.IsNaN(vals[i]) {
			sum += vals[i]
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
