package grid

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Definition is the on-disk TOML site definition. The flat keys describe
// the grid for the data preparation steps; the nested core.grid block is
// the fragment the simulation's own configuration ingests directly.
type Definition struct {
	EPSGCode     int        `toml:"epsg_code"`
	LLX          float64    `toml:"ll_x"`
	LLY          float64    `toml:"ll_y"`
	URX          float64    `toml:"ur_x"`
	URY          float64    `toml:"ur_y"`
	Bounds       [4]float64 `toml:"bounds"`
	// WGS84Bounds is lat-first (lat_min, lon_min, lat_max, lon_max),
	// the EPSG:4326 authority axis order existing site files use.
	WGS84Bounds [4]float64 `toml:"wgs84_bounds"`
	CellNx       int        `toml:"cell_nx"`
	CellNy       int        `toml:"cell_ny"`
	CellXCentres []float64  `toml:"cell_x_centres"`
	CellYCentres []float64  `toml:"cell_y_centres"`
	CellXBounds  []float64  `toml:"cell_x_bounds"`
	CellYBounds  []float64  `toml:"cell_y_bounds"`
	Res          float64    `toml:"res"`
	Core         Core       `toml:"core"`
}

// Core holds the simulation configuration fragment.
type Core struct {
	Grid CoreGrid `toml:"grid"`
}

// CoreGrid mirrors the simulation's core.grid settings. The offsets are
// the centre of the lower-left cell.
type CoreGrid struct {
	CellArea float64 `toml:"cell_area"`
	CellNx   int     `toml:"cell_nx"`
	CellNy   int     `toml:"cell_ny"`
	GridType string  `toml:"grid_type"`
	Xoff     float64 `toml:"xoff"`
	Yoff     float64 `toml:"yoff"`
}

// Definition derives the full site definition, including the WGS84
// bounding box for latlong data downloads.
func (g *Grid) Definition() (*Definition, error) {
	wgs, err := g.WGS84Bounds()
	if err != nil {
		return nil, err
	}
	pb := g.ProjectedBounds()

	return &Definition{
		EPSGCode:     g.EPSG,
		LLX:          g.Xoff,
		LLY:          g.Yoff,
		URX:          g.MaxX(),
		URY:          g.MaxY(),
		Bounds:       [4]float64{pb.MinX, pb.MinY, pb.MaxX, pb.MaxY},
		WGS84Bounds:  [4]float64{wgs.MinY, wgs.MinX, wgs.MaxY, wgs.MaxX},
		CellNx:       g.Nx,
		CellNy:       g.Ny,
		CellXCentres: g.XCentres(),
		CellYCentres: g.YCentres(),
		CellXBounds:  g.XBounds(),
		CellYBounds:  g.YBounds(),
		Res:          g.Res,
		Core: Core{Grid: CoreGrid{
			CellArea: g.CellArea(),
			CellNx:   g.Nx,
			CellNy:   g.Ny,
			GridType: "square",
			Xoff:     g.Xoff + g.Res/2,
			Yoff:     g.Yoff + g.Res/2,
		}},
	}, nil
}

// Grid reconstructs the grid from a loaded definition.
func (d *Definition) Grid() (*Grid, error) {
	return New(d.EPSGCode, d.LLX, d.LLY, d.CellNx, d.CellNy, d.Res)
}

// SaveTOML writes the site definition file.
func SaveTOML(path string, d *Definition) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(d); err != nil {
		f.Close()
		return fmt.Errorf("grid: encoding %s: %w", path, err)
	}
	return f.Close()
}

// LoadTOML reads a site definition file.
func LoadTOML(path string) (*Definition, error) {
	var d Definition
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return nil, fmt.Errorf("grid: decoding %s: %w", path, err)
	}
	return &d, nil
}
