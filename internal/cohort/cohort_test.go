package cohort

import (
	"errors"
	"strings"
	"testing"

	"github.com/ecodyn/vedata/internal/grid"
	"github.com/ecodyn/vedata/internal/table"
)

func testGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(32650, 494300, 521300, 3, 3, 90)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func testCohorts(t *testing.T) *table.Table {
	t.Helper()
	in := strings.Join([]string{
		"plant_cohorts_n,plant_cohorts_pft,plant_cohorts_dbh",
		"12,emergent,0.5",
		"40,overstory,0.2",
		"150,pioneer,0.05",
		"80,2,0.1",
	}, "\n")
	tab, err := table.ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	return tab
}

func TestBuildDataset(t *testing.T) {
	g := testGrid(t)
	cohorts := testCohorts(t)

	d, err := BuildDataset(cohorts, g, DefaultParams())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("validation failed: %v", err)
	}

	// declared extents equal source table row counts times cells
	if got := d.DimLength("cohort_index"); got != g.NCells()*cohorts.Len() {
		t.Errorf("cohort_index extent %d, expected %d", got, g.NCells()*cohorts.Len())
	}
	if got := d.DimLength("cell_id"); got != g.NCells() {
		t.Errorf("cell_id extent %d, expected %d", got, g.NCells())
	}
	if got := d.DimLength("time_index"); got != DefaultParams().Months {
		t.Errorf("time_index extent %d, expected %d", got, DefaultParams().Months)
	}

	// cell ids repeat per cohort block
	ids, err := d.Variable("plant_cohorts_cell_id")
	if err != nil {
		t.Fatal(err)
	}
	perCell := cohorts.Len()
	for i, e := range ids.Data.Elements {
		if int(e) != i/perCell {
			t.Fatalf("cohort %d: cell id %v, expected %d", i, e, i/perCell)
		}
	}

	// the community tiles identically across cells
	dbh, err := d.Variable("plant_cohorts_dbh")
	if err != nil {
		t.Fatal(err)
	}
	for i := perCell; i < len(dbh.Data.Elements); i++ {
		if dbh.Data.Elements[i] != dbh.Data.Elements[i%perCell] {
			t.Fatalf("cohort %d: dbh not tiled", i)
		}
	}

	// pft names and codes both resolve to codes
	pfts, err := d.Variable("plant_cohorts_pft")
	if err != nil {
		t.Fatal(err)
	}
	if pfts.Data.Elements[0] != 0 || pfts.Data.Elements[3] != 2 {
		t.Errorf("pft codes wrong: %v %v", pfts.Data.Elements[0], pfts.Data.Elements[3])
	}

	// shortwave fill on (cell_id, time_index)
	sw, err := d.Variable("downward_shortwave_radiation")
	if err != nil {
		t.Fatal(err)
	}
	if len(sw.Data.Elements) != g.NCells()*DefaultParams().Months {
		t.Errorf("shortwave has %d elements", len(sw.Data.Elements))
	}
	for _, e := range sw.Data.Elements {
		if e != 2040 {
			t.Fatal("shortwave fill wrong")
		}
	}

	// monthly time axis is strictly increasing
	times, err := d.Variable("time")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(times.Data.Elements); i++ {
		if times.Data.Elements[i] <= times.Data.Elements[i-1] {
			t.Fatal("time axis not increasing")
		}
	}
}

func TestBuildDatasetEmpty(t *testing.T) {
	g := testGrid(t)
	empty := table.New([]string{ColN, ColPFT, ColDBH})

	if _, err := BuildDataset(empty, g, DefaultParams()); !errors.Is(err, ErrEmptyDistribution) {
		t.Errorf("expected ErrEmptyDistribution, got %v", err)
	}
}

func TestBuildDatasetUnknownPFT(t *testing.T) {
	g := testGrid(t)
	tab := table.New([]string{ColN, ColPFT, ColDBH})
	if err := tab.Append([]string{"5", "liana", "0.1"}); err != nil {
		t.Fatal(err)
	}

	if _, err := BuildDataset(tab, g, DefaultParams()); err == nil {
		t.Error("expected error for unknown pft name")
	}
}
