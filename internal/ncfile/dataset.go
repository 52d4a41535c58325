package ncfile

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Dim is a named dimension with a fixed extent.
type Dim struct {
	Name   string
	Length int
}

// Variable is a labelled array defined over an ordered list of declared
// dimensions, tagged with units metadata.
type Variable struct {
	Name        string
	Dims        []string
	Units       string
	Description string
	Data        *sparse.DenseArray

	// Int marks variables holding integer quantities (counts,
	// identifiers); they are emitted as int32 rather than float64.
	Int bool
}

// Dataset is an in-memory self-describing array file: ordered
// dimensions, ordered variables and global attributes.
type Dataset struct {
	dims     []Dim
	dimIndex map[string]int
	vars     []*Variable
	varIndex map[string]int
	attrs    map[string]string
	attrKeys []string
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		dimIndex: make(map[string]int),
		varIndex: make(map[string]int),
		attrs:    make(map[string]string),
	}
}

// AddDim declares a dimension.
func (d *Dataset) AddDim(name string, length int) error {
	if _, ok := d.dimIndex[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateDimension, name)
	}
	if length <= 0 {
		return fmt.Errorf("%w: %q has extent %d", ErrBadExtent, name, length)
	}
	d.dimIndex[name] = len(d.dims)
	d.dims = append(d.dims, Dim{Name: name, Length: length})
	return nil
}

// DimLength returns the declared extent of a dimension, or -1 if the
// dimension is not declared.
func (d *Dataset) DimLength(name string) int {
	i, ok := d.dimIndex[name]
	if !ok {
		return -1
	}
	return d.dims[i].Length
}

// Dims returns the declared dimensions in order.
func (d *Dataset) Dims() []Dim { return d.dims }

// Variables returns the declared variables in order.
func (d *Dataset) Variables() []*Variable { return d.vars }

// Variable looks up a variable by name.
func (d *Dataset) Variable(name string) (*Variable, error) {
	i, ok := d.varIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return d.vars[i], nil
}

// HasVariable reports whether a variable is declared.
func (d *Dataset) HasVariable(name string) bool {
	_, ok := d.varIndex[name]
	return ok
}

// AddVariable declares a float variable over the given dimensions. The
// data shape must already agree with the declared extents; mismatches
// are reported here rather than at write time so the caller aborts
// before any file is touched.
func (d *Dataset) AddVariable(name string, dims []string, units string, data *sparse.DenseArray) error {
	return d.add(&Variable{Name: name, Dims: dims, Units: units, Data: data})
}

// AddIntVariable declares an integer-valued variable (counts, ids).
func (d *Dataset) AddIntVariable(name string, dims []string, units string, data *sparse.DenseArray) error {
	return d.add(&Variable{Name: name, Dims: dims, Units: units, Data: data, Int: true})
}

func (d *Dataset) add(v *Variable) error {
	if _, ok := d.varIndex[v.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateVariable, v.Name)
	}
	if err := d.checkShape(v); err != nil {
		return err
	}
	d.varIndex[v.Name] = len(d.vars)
	d.vars = append(d.vars, v)
	return nil
}

// FillVariable declares a float variable whose every element is a
// caller-supplied constant. This is how missing (dimension, category)
// combinations are represented: filled explicitly, never inferred.
func (d *Dataset) FillVariable(name string, dims []string, units string, fill float64) error {
	shape := make([]int, len(dims))
	for i, dim := range dims {
		n := d.DimLength(dim)
		if n < 0 {
			return fmt.Errorf("%w: %q in variable %q", ErrUnknownDimension, dim, name)
		}
		shape[i] = n
	}
	data := sparse.ZerosDense(shape...)
	for i := range data.Elements {
		data.Elements[i] = fill
	}
	return d.AddVariable(name, dims, units, data)
}

// SetDescription attaches a description attribute to a variable.
func (d *Dataset) SetDescription(name, description string) error {
	v, err := d.Variable(name)
	if err != nil {
		return err
	}
	v.Description = description
	return nil
}

// SetAttr sets a global string attribute.
func (d *Dataset) SetAttr(key, value string) {
	if _, ok := d.attrs[key]; !ok {
		d.attrKeys = append(d.attrKeys, key)
	}
	d.attrs[key] = value
}

// Attr returns a global attribute value, or "".
func (d *Dataset) Attr(key string) string { return d.attrs[key] }

func (d *Dataset) checkShape(v *Variable) error {
	if v.Data == nil {
		return fmt.Errorf("%w: variable %q has no data", ErrShapeMismatch, v.Name)
	}
	if len(v.Dims) != len(v.Data.Shape) {
		return fmt.Errorf("%w: variable %q declares %d dimensions but data has %d",
			ErrShapeMismatch, v.Name, len(v.Dims), len(v.Data.Shape))
	}
	for i, dim := range v.Dims {
		n := d.DimLength(dim)
		if n < 0 {
			return fmt.Errorf("%w: %q in variable %q", ErrUnknownDimension, dim, v.Name)
		}
		if v.Data.Shape[i] != n {
			return fmt.Errorf("%w: variable %q axis %d (%q) has extent %d, declared %d",
				ErrShapeMismatch, v.Name, i, dim, v.Data.Shape[i], n)
		}
	}
	return nil
}

// Validate re-checks every (dimension, variable) pairing for agreement
// in declared order and extent.
func (d *Dataset) Validate() error {
	if len(d.vars) == 0 {
		return ErrNoVariables
	}
	for _, v := range d.vars {
		if err := d.checkShape(v); err != nil {
			return err
		}
	}
	return nil
}
