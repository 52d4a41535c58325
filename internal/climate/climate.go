// Package climate turns a coarse ERA5-Land monthly dataset into the
// climate driver inputs the simulation reads: units converted, derived
// variables added, variables renamed to the simulation's conventions
// and the data regridded onto the site grid.
package climate

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/ecodyn/vedata/internal/grid"
	"github.com/ecodyn/vedata/internal/ncfile"
	"github.com/ecodyn/vedata/internal/units"
)

var (
	// ErrMissingVariable indicates an input lacking one of the ERA5
	// variables the preparation needs.
	ErrMissingVariable = errors.New("climate: missing input variable")

	// ErrBadAxes indicates input coordinate axes that are not 1-D or
	// disagree with the data shape.
	ErrBadAxes = errors.New("climate: bad coordinate axes")
)

// The ERA5-Land source variables consumed.
var sourceVars = []string{"t2m", "d2m", "tp", "sp", "ssrd", "u10"}

// DefaultCO2 is the constant atmospheric CO2 concentration added as a
// required driver field, in ppm.
const DefaultCO2 = 400.0

// Process prepares the climate driver dataset. The input must carry
// t2m, d2m, tp, sp, ssrd and u10 on (time, latitude, longitude) with
// 1-D latitude and longitude coordinate variables. The output is on
// (time_index, y, x) with x/y coordinates from the site grid.
func Process(in *ncfile.Dataset, g *grid.Grid, co2ppm float64) (*ncfile.Dataset, error) {
	src, err := loadSource(in)
	if err != nil {
		return nil, err
	}

	// Unit conversions. Temperatures to Celsius first; relative
	// humidity needs both air and dewpoint temperature in Celsius.
	t2m := units.KelvinToCelsius.ApplyArray(src.vars["t2m"])
	d2m := units.KelvinToCelsius.ApplyArray(src.vars["d2m"])
	rh := relativeHumidity(t2m, d2m)
	precip := units.MetrePerDayToMillimetrePerMonth.ApplyArray(src.vars["tp"])
	pressure := units.PascalToKilopascal.ApplyArray(src.vars["sp"])
	shortwave := units.JoulePerM2ToWattPerM2.ApplyArray(src.vars["ssrd"])
	wind := src.vars["u10"]

	out := map[string]*field{
		"air_temperature_ref":          {data: t2m, units: "degC"},
		"relative_humidity_ref":        {data: rh, units: "%"},
		"precipitation":                {data: precip, units: "mm"},
		"atmospheric_pressure_ref":     {data: pressure, units: "kPa"},
		"downward_shortwave_radiation": {data: shortwave, units: "W m-2"},
		"wind_speed_ref":               {data: wind, units: "m s-1"},
		"atmospheric_co2_ref":          {data: constantLike(t2m, co2ppm), units: "ppm"},
	}
	mat := timeMean(t2m)

	// Regrid everything onto the site grid with nearest-neighbour
	// lookup of the cell-centre latitude/longitude.
	lon, lat, err := g.CentreLatLon()
	if err != nil {
		return nil, err
	}
	xIdx := nearestIndices(src.lon, lon)
	yIdx := nearestIndices(src.lat, lat)

	nt := t2m.Shape[0]
	d := ncfile.NewDataset()
	if err := d.AddDim("time_index", nt); err != nil {
		return nil, err
	}
	if err := d.AddDim("y", g.Ny); err != nil {
		return nil, err
	}
	if err := d.AddDim("x", g.Nx); err != nil {
		return nil, err
	}

	for _, name := range []string{
		"air_temperature_ref", "relative_humidity_ref", "precipitation",
		"atmospheric_pressure_ref", "downward_shortwave_radiation",
		"wind_speed_ref", "atmospheric_co2_ref",
	} {
		f := out[name]
		regridded := regrid3(f.data, yIdx, xIdx)
		if err := d.AddVariable(name, []string{"time_index", "y", "x"}, f.units, regridded); err != nil {
			return nil, err
		}
	}
	if err := d.AddVariable("mean_annual_temperature", []string{"y", "x"}, "degC", regrid2(mat, yIdx, xIdx)); err != nil {
		return nil, err
	}

	// Coordinate variables from the site grid.
	if err := d.AddVariable("x", []string{"x"}, "m", fromSlice(g.XCentres())); err != nil {
		return nil, err
	}
	if err := d.AddVariable("y", []string{"y"}, "m", fromSlice(g.YCentres())); err != nil {
		return nil, err
	}
	if err := d.AddVariable("latitude", []string{"y"}, "degrees_north", fromSlice(lat)); err != nil {
		return nil, err
	}
	if err := d.AddVariable("longitude", []string{"x"}, "degrees_east", fromSlice(lon)); err != nil {
		return nil, err
	}

	d.SetAttr("title", "climate driver data regridded to the site grid")
	return d, nil
}

type field struct {
	data  *sparse.DenseArray
	units string
}

type source struct {
	lat  []float64
	lon  []float64
	vars map[string]*sparse.DenseArray
}

func loadSource(in *ncfile.Dataset) (*source, error) {
	latVar, err := in.Variable("latitude")
	if err != nil {
		return nil, fmt.Errorf("%w: latitude", ErrBadAxes)
	}
	lonVar, err := in.Variable("longitude")
	if err != nil {
		return nil, fmt.Errorf("%w: longitude", ErrBadAxes)
	}
	if len(latVar.Data.Shape) != 1 || len(lonVar.Data.Shape) != 1 {
		return nil, fmt.Errorf("%w: coordinates must be 1-D", ErrBadAxes)
	}

	s := &source{
		lat:  latVar.Data.Elements,
		lon:  lonVar.Data.Elements,
		vars: make(map[string]*sparse.DenseArray, len(sourceVars)),
	}
	for _, name := range sourceVars {
		v, err := in.Variable(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingVariable, name)
		}
		sh := v.Data.Shape
		if len(sh) != 3 || sh[1] != len(s.lat) || sh[2] != len(s.lon) {
			return nil, fmt.Errorf("%w: %s has shape %v", ErrBadAxes, name, sh)
		}
		s.vars[name] = v.Data
	}
	return s, nil
}

// relativeHumidity derives RH (%) from air and dewpoint temperature in
// Celsius using the Magnus formula.
func relativeHumidity(tC, dC *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(tC.Shape...)
	for i := range out.Elements {
		t := tC.Elements[i]
		dw := dC.Elements[i]
		out.Elements[i] = 100 * math.Exp(17.625*dw/(243.04+dw)) / math.Exp(17.625*t/(243.04+t))
	}
	return out
}

func constantLike(a *sparse.DenseArray, v float64) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape...)
	for i := range out.Elements {
		out.Elements[i] = v
	}
	return out
}

// timeMean collapses (time, lat, lon) to (lat, lon) by averaging over
// the time axis.
func timeMean(a *sparse.DenseArray) *sparse.DenseArray {
	nt, ny, nx := a.Shape[0], a.Shape[1], a.Shape[2]
	out := sparse.ZerosDense(ny, nx)
	for t := 0; t < nt; t++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				out.Elements[j*nx+i] += a.Get(t, j, i)
			}
		}
	}
	for i := range out.Elements {
		out.Elements[i] /= float64(nt)
	}
	return out
}

// nearestIndices maps each target coordinate to the index of the
// nearest source coordinate. Source axes may run in either direction.
func nearestIndices(src, targets []float64) []int {
	out := make([]int, len(targets))
	for i, tv := range targets {
		best := 0
		bestDist := math.Abs(src[0] - tv)
		for j := 1; j < len(src); j++ {
			if d := math.Abs(src[j] - tv); d < bestDist {
				best, bestDist = j, d
			}
		}
		out[i] = best
	}
	return out
}

func regrid3(a *sparse.DenseArray, yIdx, xIdx []int) *sparse.DenseArray {
	nt := a.Shape[0]
	out := sparse.ZerosDense(nt, len(yIdx), len(xIdx))
	for t := 0; t < nt; t++ {
		for j, sj := range yIdx {
			for i, si := range xIdx {
				out.Set(a.Get(t, sj, si), t, j, i)
			}
		}
	}
	return out
}

func regrid2(a *sparse.DenseArray, yIdx, xIdx []int) *sparse.DenseArray {
	out := sparse.ZerosDense(len(yIdx), len(xIdx))
	for j, sj := range yIdx {
		for i, si := range xIdx {
			out.Set(a.Get(sj, si), j, i)
		}
	}
	return out
}

func fromSlice(vals []float64) *sparse.DenseArray {
	out := sparse.ZerosDense(len(vals))
	copy(out.Elements, vals)
	return out
}
