// Package dem resamples a digital elevation model onto the site grid
// and emits the flat (points, x, y, elevation) dataset the hydrology
// inputs use.
package dem

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/ecodyn/vedata/internal/grid"
	"github.com/ecodyn/vedata/internal/ncfile"
)

var (
	// ErrNoValidCells indicates a DEM with no valid elevation at all.
	ErrNoValidCells = errors.New("dem: source has no valid cells")

	// ErrBadSource indicates a malformed source raster.
	ErrBadSource = errors.New("dem: bad source raster")
)

// Source is a gridded DEM in the same projected CRS as the target grid.
// Data is (ny, nx) with row 0 at the southern edge; coordinates give
// the cell-centre position of column i as Xo + i*Res.
type Source struct {
	Xo, Yo float64 // centre of the south-west cell
	Res    float64 // source cell size, m
	Nodata float64 // declared placeholder for missing data
	Data   *sparse.DenseArray
}

// Resample produces one elevation value per target grid cell by
// bilinear interpolation of the source raster. Nodata cells are masked
// before interpolation using the declared nodata value, never a blanket
// "negatives are invalid" rule; genuine below-sea-level terrain
// survives. Any target cell left without valid neighbours is filled
// from the nearest valid cell, so the output is gap free.
func Resample(src *Source, g *grid.Grid) (*sparse.DenseArray, error) {
	if src.Data == nil || len(src.Data.Shape) != 2 {
		return nil, fmt.Errorf("%w: data must be 2-D", ErrBadSource)
	}
	if src.Res <= 0 {
		return nil, fmt.Errorf("%w: resolution %v", ErrBadSource, src.Res)
	}

	ny, nx := src.Data.Shape[0], src.Data.Shape[1]
	masked := sparse.ZerosDense(ny, nx)
	anyValid := false
	for i, e := range src.Data.Elements {
		if e == src.Nodata {
			masked.Elements[i] = math.NaN()
		} else {
			masked.Elements[i] = e
			anyValid = true
		}
	}
	if !anyValid {
		return nil, ErrNoValidCells
	}

	out := sparse.ZerosDense(g.Ny, g.Nx)
	xc, yc := g.XCentres(), g.YCentres()
	for j, y := range yc {
		for i, x := range xc {
			out.Set(bilinear(masked, src, x, y), j, i)
		}
	}

	fillNearest(out)
	return out, nil
}

// bilinear interpolates the masked raster at a projected point,
// ignoring NaN corners by renormalising the remaining weights. Returns
// NaN when all four corners are missing or the point falls outside the
// raster.
func bilinear(a *sparse.DenseArray, src *Source, x, y float64) float64 {
	ny, nx := a.Shape[0], a.Shape[1]

	fx := (x - src.Xo) / src.Res
	fy := (y - src.Yo) / src.Res
	i0 := int(math.Floor(fx))
	j0 := int(math.Floor(fy))

	var wsum, vsum float64
	for dj := 0; dj <= 1; dj++ {
		for di := 0; di <= 1; di++ {
			i, j := i0+di, j0+dj
			if i < 0 || i >= nx || j < 0 || j >= ny {
				continue
			}
			v := a.Get(j, i)
			if math.IsNaN(v) {
				continue
			}
			w := (1 - math.Abs(fx-float64(i))) * (1 - math.Abs(fy-float64(j)))
			if w <= 0 {
				continue
			}
			wsum += w
			vsum += w * v
		}
	}
	if wsum == 0 {
		return math.NaN()
	}
	return vsum / wsum
}

// fillNearest replaces every NaN cell with the value of the nearest
// valid cell (Euclidean distance over cell indices).
func fillNearest(a *sparse.DenseArray) {
	ny, nx := a.Shape[0], a.Shape[1]

	type cell struct{ j, i int }
	var valid []cell
	var missing []cell
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if math.IsNaN(a.Get(j, i)) {
				missing = append(missing, cell{j, i})
			} else {
				valid = append(valid, cell{j, i})
			}
		}
	}
	if len(valid) == 0 || len(missing) == 0 {
		return
	}

	for _, m := range missing {
		best := valid[0]
		bestD := math.Inf(1)
		for _, v := range valid {
			dj, di := float64(m.j-v.j), float64(m.i-v.i)
			if d := dj*dj + di*di; d < bestD {
				best, bestD = v, d
			}
		}
		a.Set(a.Get(best.j, best.i), m.j, m.i)
	}
}

// BuildDataset flattens the resampled elevation into the (points, x, y,
// elevation) layout.
func BuildDataset(elev *sparse.DenseArray, g *grid.Grid) (*ncfile.Dataset, error) {
	n := g.NCells()
	d := ncfile.NewDataset()
	if err := d.AddDim("points", n); err != nil {
		return nil, err
	}

	xs := sparse.ZerosDense(n)
	ys := sparse.ZerosDense(n)
	es := sparse.ZerosDense(n)
	xc, yc := g.XCentres(), g.YCentres()
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			k := j*g.Nx + i
			xs.Elements[k] = xc[i]
			ys.Elements[k] = yc[j]
			es.Elements[k] = elev.Get(j, i)
		}
	}

	if err := d.AddVariable("x", []string{"points"}, "m", xs); err != nil {
		return nil, err
	}
	if err := d.AddVariable("y", []string{"points"}, "m", ys); err != nil {
		return nil, err
	}
	if err := d.AddVariable("elevation", []string{"points"}, "m", es); err != nil {
		return nil, err
	}
	d.SetAttr("title", "elevation resampled to the site grid")
	return d, nil
}
