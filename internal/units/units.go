package units

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// SecondsPerMonth is the accumulation period used when converting
// monthly-mean radiation from J m-2 to W m-2 (30-day month).
const SecondsPerMonth = 2592000.0

// DaysPerMonth scales mean daily accumulated precipitation to a monthly
// total (30-day month).
const DaysPerMonth = 30.0

// Conversion is an affine unit conversion y = x*Scale + Offset between a
// source and target unit.
type Conversion struct {
	Name   string
	From   string
	To     string
	Scale  float64
	Offset float64
}

// Standard conversions used when preparing climate driver data.
var (
	KelvinToCelsius = Conversion{
		Name: "kelvin_to_celsius", From: "K", To: "degC",
		Scale: 1, Offset: -273.15,
	}
	PascalToKilopascal = Conversion{
		Name: "pascal_to_kilopascal", From: "Pa", To: "kPa",
		Scale: 1e-3,
	}
	// ERA5-Land total precipitation is mean daily accumulation in
	// metres; the target is a monthly total in millimetres.
	MetrePerDayToMillimetrePerMonth = Conversion{
		Name: "metre_per_day_to_millimetre_per_month", From: "m", To: "mm",
		Scale: 1000 * DaysPerMonth,
	}
	JoulePerM2ToWattPerM2 = Conversion{
		Name: "joule_per_m2_to_watt_per_m2", From: "J m-2", To: "W m-2",
		Scale: 1 / SecondsPerMonth,
	}
	GramToKilogram = Conversion{
		Name: "gram_to_kilogram", From: "g", To: "kg",
		Scale: 1e-3,
	}
)

// Apply converts a single value from the source unit to the target unit.
func (c Conversion) Apply(v float64) float64 {
	return v*c.Scale + c.Offset
}

// Invert converts a value in the target unit back to the source unit.
func (c Conversion) Invert(v float64) float64 {
	return (v - c.Offset) / c.Scale
}

// Inverse returns the conversion running in the opposite direction.
func (c Conversion) Inverse() Conversion {
	return Conversion{
		Name:   c.Name + "_inverse",
		From:   c.To,
		To:     c.From,
		Scale:  1 / c.Scale,
		Offset: -c.Offset / c.Scale,
	}
}

// ApplyArray converts every element of a, returning a new array of the
// same shape. a is not modified.
func (c Conversion) ApplyArray(a *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape...)
	for i, v := range a.Elements {
		out.Elements[i] = c.Apply(v)
	}
	return out
}

// Check verifies that the units attribute of a variable matches the
// source unit of the conversion about to be applied.
func (c Conversion) Check(units string) error {
	if units != c.From {
		return fmt.Errorf("units: %s expects %q, variable has %q", c.Name, c.From, units)
	}
	return nil
}
