// Package grid defines the square simulation grid a site runs on and the
// TOML site definition file the other preparation steps read.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
)

var (
	// ErrBadDimensions indicates non-positive cell counts or resolution.
	ErrBadDimensions = errors.New("grid: cell counts and resolution must be positive")

	// ErrUnsupportedCRS indicates an EPSG code with no known proj4 definition.
	ErrUnsupportedCRS = errors.New("grid: unsupported EPSG code")

	// ErrCellOutOfRange indicates a cell id outside [0, nx*ny).
	ErrCellOutOfRange = errors.New("grid: cell id out of range")
)

// Grid is a square grid in a projected coordinate reference system.
// Cell ids run row-major from the lower-left corner.
type Grid struct {
	EPSG int     // projected CRS, e.g. 32650 for UTM 50N
	Xoff float64 // lower-left corner easting
	Yoff float64 // lower-left corner northing
	Nx   int
	Ny   int
	Res  float64 // cell edge length in metres
}

// New validates and returns a grid definition.
func New(epsg int, xoff, yoff float64, nx, ny int, res float64) (*Grid, error) {
	if nx <= 0 || ny <= 0 || res <= 0 {
		return nil, ErrBadDimensions
	}
	if _, err := proj4ForEPSG(epsg); err != nil {
		return nil, err
	}
	return &Grid{EPSG: epsg, Xoff: xoff, Yoff: yoff, Nx: nx, Ny: ny, Res: res}, nil
}

// NCells returns the total number of cells.
func (g *Grid) NCells() int { return g.Nx * g.Ny }

// CellArea returns the area of one cell in square metres.
func (g *Grid) CellArea() float64 { return g.Res * g.Res }

// MaxX returns the upper-right corner easting.
func (g *Grid) MaxX() float64 { return g.Xoff + float64(g.Nx)*g.Res }

// MaxY returns the upper-right corner northing.
func (g *Grid) MaxY() float64 { return g.Yoff + float64(g.Ny)*g.Res }

// XCentres returns the easting of each column centre.
func (g *Grid) XCentres() []float64 {
	out := make([]float64, g.Nx)
	for i := range out {
		out[i] = g.Xoff + g.Res/2 + float64(i)*g.Res
	}
	return out
}

// YCentres returns the northing of each row centre.
func (g *Grid) YCentres() []float64 {
	out := make([]float64, g.Ny)
	for i := range out {
		out[i] = g.Yoff + g.Res/2 + float64(i)*g.Res
	}
	return out
}

// XBounds returns the nx+1 column edge eastings.
func (g *Grid) XBounds() []float64 {
	out := make([]float64, g.Nx+1)
	for i := range out {
		out[i] = g.Xoff + float64(i)*g.Res
	}
	return out
}

// YBounds returns the ny+1 row edge northings.
func (g *Grid) YBounds() []float64 {
	out := make([]float64, g.Ny+1)
	for i := range out {
		out[i] = g.Yoff + float64(i)*g.Res
	}
	return out
}

// CellIDs returns the flat, row-major cell ids.
func (g *Grid) CellIDs() []int {
	out := make([]int, g.NCells())
	for i := range out {
		out[i] = i
	}
	return out
}

// CellCentre returns the projected centre of a cell id.
func (g *Grid) CellCentre(id int) (x, y float64, err error) {
	if id < 0 || id >= g.NCells() {
		return 0, 0, fmt.Errorf("%w: %d", ErrCellOutOfRange, id)
	}
	col := id % g.Nx
	row := id / g.Nx
	return g.Xoff + g.Res/2 + float64(col)*g.Res,
		g.Yoff + g.Res/2 + float64(row)*g.Res, nil
}

// Bounds is a rectangular extent.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// ProjectedBounds returns the grid extent in the grid's own CRS.
func (g *Grid) ProjectedBounds() Bounds {
	return Bounds{MinX: g.Xoff, MinY: g.Yoff, MaxX: g.MaxX(), MaxY: g.MaxY()}
}

// WGS84Bounds reprojects the grid corners to longitude/latitude. The
// returned bounds are the envelope of the reprojected corner points,
// which is what a latlong data download bounding box needs.
func (g *Grid) WGS84Bounds() (Bounds, error) {
	t, err := g.toWGS84()
	if err != nil {
		return Bounds{}, err
	}

	corners := [][2]float64{
		{g.Xoff, g.Yoff},
		{g.MaxX(), g.Yoff},
		{g.Xoff, g.MaxY()},
		{g.MaxX(), g.MaxY()},
	}

	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, c := range corners {
		lon, lat, err := t(c[0], c[1])
		if err != nil {
			return Bounds{}, fmt.Errorf("grid: reprojecting corner: %w", err)
		}
		b.MinX = math.Min(b.MinX, lon)
		b.MaxX = math.Max(b.MaxX, lon)
		b.MinY = math.Min(b.MinY, lat)
		b.MaxY = math.Max(b.MaxY, lat)
	}
	return b, nil
}

// CentreLatLon reprojects every cell-centre to WGS84, returning
// per-column longitudes and per-row latitudes taken along the grid edges.
// At site scale the graticule distortion across the grid is far below
// the cell size, so one longitude per column and one latitude per row is
// sufficient for interpolation lookups.
func (g *Grid) CentreLatLon() (lon []float64, lat []float64, err error) {
	t, err := g.toWGS84()
	if err != nil {
		return nil, nil, err
	}

	xc, yc := g.XCentres(), g.YCentres()
	lon = make([]float64, g.Nx)
	lat = make([]float64, g.Ny)
	for i, x := range xc {
		lon[i], _, err = t(x, yc[0])
		if err != nil {
			return nil, nil, err
		}
	}
	for j, y := range yc {
		_, lat[j], err = t(xc[0], y)
		if err != nil {
			return nil, nil, err
		}
	}
	return lon, lat, nil
}

func (g *Grid) toWGS84() (proj.Transformer, error) {
	p4, err := proj4ForEPSG(g.EPSG)
	if err != nil {
		return nil, err
	}
	src, err := proj.Parse(p4)
	if err != nil {
		return nil, fmt.Errorf("grid: parsing source CRS: %w", err)
	}
	dst, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
	if err != nil {
		return nil, fmt.Errorf("grid: parsing WGS84: %w", err)
	}
	return src.NewTransform(dst)
}

// proj4ForEPSG covers the codes the site definitions use: WGS84 and the
// WGS84 UTM zones (326xx north, 327xx south).
func proj4ForEPSG(epsg int) (string, error) {
	switch {
	case epsg == 4326:
		return "+proj=longlat +datum=WGS84 +no_defs", nil
	case epsg >= 32601 && epsg <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", epsg-32600), nil
	case epsg >= 32701 && epsg <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", epsg-32700), nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnsupportedCRS, epsg)
}
