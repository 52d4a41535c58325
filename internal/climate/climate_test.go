package climate

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/sparse"

	"github.com/ecodyn/vedata/internal/grid"
	"github.com/ecodyn/vedata/internal/ncfile"
)

// syntheticERA5 builds a small coarse dataset covering the Maliau grid.
func syntheticERA5(t *testing.T) *ncfile.Dataset {
	t.Helper()

	lat := []float64{4.5, 4.7, 4.9}
	lon := []float64{116.8, 117.0, 117.2}
	nt := 2

	d := ncfile.NewDataset()
	for _, dim := range []struct {
		name string
		n    int
	}{{"time", nt}, {"latitude", len(lat)}, {"longitude", len(lon)}} {
		if err := d.AddDim(dim.name, dim.n); err != nil {
			t.Fatal(err)
		}
	}

	addCoord := func(name string, vals []float64) {
		a := sparse.ZerosDense(len(vals))
		copy(a.Elements, vals)
		if err := d.AddVariable(name, []string{name}, "degrees", a); err != nil {
			t.Fatal(err)
		}
	}
	addCoord("latitude", lat)
	addCoord("longitude", lon)

	fill := func(name string, base float64, u string) {
		a := sparse.ZerosDense(nt, len(lat), len(lon))
		for i := range a.Elements {
			a.Elements[i] = base + float64(i%3)*0.1
		}
		if err := d.AddVariable(name, []string{"time", "latitude", "longitude"}, u, a); err != nil {
			t.Fatal(err)
		}
	}
	fill("t2m", 298.15, "K")
	fill("d2m", 295.15, "K")
	fill("tp", 0.004, "m")
	fill("sp", 98000, "Pa")
	fill("ssrd", 2592000*200, "J m-2")
	fill("u10", 1.5, "m s-1")

	return d
}

func TestProcess(t *testing.T) {
	g, err := grid.New(32650, 494300, 521300, 4, 5, 90)
	if err != nil {
		t.Fatal(err)
	}

	out, err := Process(syntheticERA5(t), g, DefaultCO2)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("output invalid: %v", err)
	}

	if out.DimLength("x") != g.Nx || out.DimLength("y") != g.Ny {
		t.Errorf("output grid extents wrong: x=%d y=%d", out.DimLength("x"), out.DimLength("y"))
	}
	if out.DimLength("time_index") != 2 {
		t.Errorf("time_index extent %d", out.DimLength("time_index"))
	}

	temp, err := out.Variable("air_temperature_ref")
	if err != nil {
		t.Fatal(err)
	}
	if temp.Units != "degC" {
		t.Errorf("temperature units %q", temp.Units)
	}
	// 298.15 K is 25 C; the synthetic field varies by at most 0.2
	for _, e := range temp.Data.Elements {
		if e < 24.9 || e > 25.3 {
			t.Fatalf("temperature %v out of expected band", e)
		}
	}

	rh, err := out.Variable("relative_humidity_ref")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range rh.Data.Elements {
		if e < 0 || e > 100 {
			t.Fatalf("relative humidity %v outside [0, 100]", e)
		}
	}
	// dewpoint 3 degrees under air temperature is roughly 83% RH
	if rh.Data.Elements[0] < 75 || rh.Data.Elements[0] > 90 {
		t.Errorf("relative humidity %v implausible for 3 deg dewpoint depression", rh.Data.Elements[0])
	}

	co2, err := out.Variable("atmospheric_co2_ref")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range co2.Data.Elements {
		if e != DefaultCO2 {
			t.Fatal("co2 field not constant")
		}
	}

	mat, err := out.Variable("mean_annual_temperature")
	if err != nil {
		t.Fatal(err)
	}
	if len(mat.Data.Shape) != 2 {
		t.Errorf("mean annual temperature should be 2-D, got %v", mat.Data.Shape)
	}

	press, err := out.Variable("atmospheric_pressure_ref")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(press.Data.Elements[0]-98) > 0.1 {
		t.Errorf("pressure %v kPa, expected ~98", press.Data.Elements[0])
	}

	precip, err := out.Variable("precipitation")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(precip.Data.Elements[0]-120) > 10 {
		t.Errorf("precipitation %v mm, expected ~120", precip.Data.Elements[0])
	}
}

func TestProcessMissingVariable(t *testing.T) {
	g, err := grid.New(32650, 494300, 521300, 2, 2, 90)
	if err != nil {
		t.Fatal(err)
	}

	d := ncfile.NewDataset()
	if err := d.AddDim("latitude", 2); err != nil {
		t.Fatal(err)
	}
	if err := d.AddDim("longitude", 2); err != nil {
		t.Fatal(err)
	}
	a := sparse.ZerosDense(2)
	if err := d.AddVariable("latitude", []string{"latitude"}, "", a); err != nil {
		t.Fatal(err)
	}
	b := sparse.ZerosDense(2)
	if err := d.AddVariable("longitude", []string{"longitude"}, "", b); err != nil {
		t.Fatal(err)
	}

	if _, err := Process(d, g, DefaultCO2); !errors.Is(err, ErrMissingVariable) {
		t.Errorf("expected ErrMissingVariable, got %v", err)
	}
}

func TestNearestIndices(t *testing.T) {
	src := []float64{4.9, 4.7, 4.5} // descending, as ERA5 latitude often is
	idx := nearestIndices(src, []float64{4.51, 4.72, 4.95})
	want := []int{2, 1, 0}
	for i := range idx {
		if idx[i] != want[i] {
			t.Errorf("target %d: index %d, expected %d", i, idx[i], want[i])
		}
	}
}
