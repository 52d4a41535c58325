// Package cohort generates the plant community initialisation data:
// the per-hectare cohort distribution table tiled across every grid
// cell, plus the constant subcanopy and radiation fields.
package cohort

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ctessum/sparse"

	"github.com/ecodyn/vedata/internal/grid"
	"github.com/ecodyn/vedata/internal/ncfile"
	"github.com/ecodyn/vedata/internal/pft"
	"github.com/ecodyn/vedata/internal/table"
)

// ErrEmptyDistribution indicates a cohort table with no rows.
var ErrEmptyDistribution = errors.New("cohort: empty cohort distribution table")

// Columns the cohort distribution table must carry.
const (
	ColN   = "plant_cohorts_n"
	ColPFT = "plant_cohorts_pft"
	ColDBH = "plant_cohorts_dbh"
)

// Params are the constants used for the fields the census does not
// cover. The defaults match the values used for the example site.
type Params struct {
	SubcanopyBiomass float64   // kg m-2
	SeedbankBiomass  float64   // kg m-2
	Shortwave        float64   // W m-2, constant downward shortwave fill
	Months           int       // length of the time axis
	Start            time.Time // first month
}

// DefaultParams returns the example-site constants.
func DefaultParams() Params {
	return Params{
		SubcanopyBiomass: 0.07,
		SeedbankBiomass:  0.07,
		Shortwave:        2040,
		Months:           12,
		Start:            time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// timeEpoch anchors the emitted time coordinate.
var timeEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// BuildDataset tiles the per-hectare cohort distribution across every
// cell of the grid and assembles the full plant initialisation dataset:
// cohort configuration on cohort_index, subcanopy biomass per cell, and
// downward shortwave radiation on (cell_id, time_index).
func BuildDataset(cohorts *table.Table, g *grid.Grid, p Params) (*ncfile.Dataset, error) {
	perCell := cohorts.Len()
	if perCell == 0 {
		return nil, ErrEmptyDistribution
	}
	if p.Months <= 0 {
		return nil, fmt.Errorf("cohort: time axis needs at least one month, got %d", p.Months)
	}

	n, err := cohorts.Float64Column(ColN)
	if err != nil {
		return nil, err
	}
	dbh, err := cohorts.Float64Column(ColDBH)
	if err != nil {
		return nil, err
	}
	pftCodes, err := pftColumn(cohorts)
	if err != nil {
		return nil, err
	}

	nCells := g.NCells()
	nCohorts := nCells * perCell

	d := ncfile.NewDataset()
	if err := d.AddDim("cohort_index", nCohorts); err != nil {
		return nil, err
	}
	if err := d.AddDim("cell_id", nCells); err != nil {
		return nil, err
	}
	if err := d.AddDim("time_index", p.Months); err != nil {
		return nil, err
	}

	// Tile the table down the cohort axis and repeat cell ids so each
	// cell carries an identical community.
	if err := d.AddIntVariable(ColN, []string{"cohort_index"}, "", tile(n, nCells)); err != nil {
		return nil, err
	}
	if err := d.AddIntVariable(ColPFT, []string{"cohort_index"}, "", tile(pftCodes.Elements, nCells)); err != nil {
		return nil, err
	}
	if err := d.AddVariable(ColDBH, []string{"cohort_index"}, "m", tile(dbh, nCells)); err != nil {
		return nil, err
	}

	cellIDs := sparse.ZerosDense(nCohorts)
	for i := range cellIDs.Elements {
		cellIDs.Elements[i] = float64(i / perCell)
	}
	if err := d.AddIntVariable("plant_cohorts_cell_id", []string{"cohort_index"}, "", cellIDs); err != nil {
		return nil, err
	}

	if err := d.FillVariable("subcanopy_vegetation_biomass", []string{"cell_id"}, "kg m-2", p.SubcanopyBiomass); err != nil {
		return nil, err
	}
	if err := d.FillVariable("subcanopy_seedbank_biomass", []string{"cell_id"}, "kg m-2", p.SeedbankBiomass); err != nil {
		return nil, err
	}
	if err := d.FillVariable("downward_shortwave_radiation", []string{"cell_id", "time_index"}, "W m-2", p.Shortwave); err != nil {
		return nil, err
	}

	times := sparse.ZerosDense(p.Months)
	for i := range times.Elements {
		times.Elements[i] = p.Start.AddDate(0, i, 0).Sub(timeEpoch).Hours() / 24
	}
	if err := d.AddVariable("time", []string{"time_index"}, "days since 2000-01-01", times); err != nil {
		return nil, err
	}

	if err := d.SetDescription(ColPFT, "plant functional type code, indexing "+pftNames()); err != nil {
		return nil, err
	}
	d.SetAttr("title", "plant community initialisation data")

	return d, nil
}

// pftColumn reads the PFT column, accepting either integer codes or
// category names.
func pftColumn(cohorts *table.Table) (*sparse.DenseArray, error) {
	raw, err := cohorts.StringColumn(ColPFT)
	if err != nil {
		return nil, err
	}
	out := sparse.ZerosDense(len(raw))
	for i, s := range raw {
		if code, err := strconv.Atoi(s); err == nil {
			if code < 0 || code >= len(pft.All) {
				return nil, fmt.Errorf("cohort: row %d: pft code %d out of range", i, code)
			}
			out.Elements[i] = float64(code)
			continue
		}
		idx := pft.Index(pft.PFT(s))
		if idx < 0 {
			return nil, fmt.Errorf("cohort: row %d: unknown pft %q", i, s)
		}
		out.Elements[i] = float64(idx)
	}
	return out, nil
}

func tile(vals []float64, times int) *sparse.DenseArray {
	out := sparse.ZerosDense(len(vals) * times)
	for t := 0; t < times; t++ {
		copy(out.Elements[t*len(vals):], vals)
	}
	return out
}

func pftNames() string {
	s := ""
	for i, p := range pft.All {
		if i > 0 {
			s += ", "
		}
		s += string(p)
	}
	return s
}
