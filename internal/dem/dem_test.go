package dem

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/sparse"

	"github.com/ecodyn/vedata/internal/grid"
)

// flatSource builds a source raster with a linear east-west gradient.
func flatSource(t *testing.T, nodataAt int) *Source {
	t.Helper()
	ny, nx := 10, 10
	data := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			data.Set(100+float64(i)*10, j, i)
		}
	}
	if nodataAt >= 0 {
		data.Elements[nodataAt] = -9999
	}
	return &Source{Xo: 494315, Yo: 521315, Res: 30, Nodata: -9999, Data: data}
}

func targetGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(32650, 494300, 521300, 3, 3, 90)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestResampleGradient(t *testing.T) {
	src := flatSource(t, -1)
	g := targetGrid(t)

	out, err := Resample(src, g)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}

	if out.Shape[0] != g.Ny || out.Shape[1] != g.Nx {
		t.Fatalf("output shape %v", out.Shape)
	}
	// gradient preserved: columns increase eastward
	for j := 0; j < g.Ny; j++ {
		for i := 1; i < g.Nx; i++ {
			if out.Get(j, i) <= out.Get(j, i-1) {
				t.Fatalf("column %d not increasing along gradient", i)
			}
		}
	}
	// values stay within the source range
	for _, e := range out.Elements {
		if e < 100 || e > 190 {
			t.Fatalf("value %v outside the source range", e)
		}
	}
}

func TestResampleMasksNodata(t *testing.T) {
	src := flatSource(t, 0)
	g := targetGrid(t)

	out, err := Resample(src, g)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	for _, e := range out.Elements {
		if math.IsNaN(e) {
			t.Fatal("output contains NaN after nearest fill")
		}
		if e == -9999 {
			t.Fatal("nodata leaked into output")
		}
	}
}

func TestResampleKeepsNegativeTerrain(t *testing.T) {
	// Coastal terrain below sea level is valid; only the declared
	// nodata value is masked.
	src := flatSource(t, -1)
	for i := range src.Data.Elements {
		src.Data.Elements[i] = -5
	}
	g := targetGrid(t)

	out, err := Resample(src, g)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	for _, e := range out.Elements {
		if math.Abs(e+5) > 1e-9 {
			t.Fatalf("below-sea-level terrain altered: %v", e)
		}
	}
}

func TestResampleAllNodata(t *testing.T) {
	src := flatSource(t, -1)
	for i := range src.Data.Elements {
		src.Data.Elements[i] = src.Nodata
	}
	if _, err := Resample(src, targetGrid(t)); !errors.Is(err, ErrNoValidCells) {
		t.Errorf("expected ErrNoValidCells, got %v", err)
	}
}

func TestBuildDataset(t *testing.T) {
	g := targetGrid(t)
	elev := sparse.ZerosDense(g.Ny, g.Nx)
	for i := range elev.Elements {
		elev.Elements[i] = float64(i)
	}

	d, err := BuildDataset(elev, g)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}

	if d.DimLength("points") != g.NCells() {
		t.Errorf("points extent %d, expected %d", d.DimLength("points"), g.NCells())
	}
	e, err := d.Variable("elevation")
	if err != nil {
		t.Fatal(err)
	}
	if e.Data.Elements[4] != 4 {
		t.Errorf("flattening out of order: %v", e.Data.Elements)
	}
	x, err := d.Variable("x")
	if err != nil {
		t.Fatal(err)
	}
	if x.Data.Elements[0] != 494345 {
		t.Errorf("first point easting %v", x.Data.Elements[0])
	}
}
