package ncfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Write validates the dataset and emits it as a NetCDF file. The data
// is written to a temporary file in the target directory and renamed
// into place, so a failed write retains no partial file.
func Write(path string, d *Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := writeTo(tmp, d); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("ncfile: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func writeTo(f *os.File, d *Dataset) error {
	names := make([]string, len(d.dims))
	lengths := make([]int, len(d.dims))
	for i, dim := range d.dims {
		names[i] = dim.Name
		lengths[i] = dim.Length
	}

	h := cdf.NewHeader(names, lengths)
	for _, k := range d.attrKeys {
		h.AddAttribute("", k, d.attrs[k])
	}
	for _, v := range d.vars {
		if v.Int {
			h.AddVariable(v.Name, v.Dims, []int32{0})
		} else {
			h.AddVariable(v.Name, v.Dims, []float64{0})
		}
		h.AddAttribute(v.Name, "units", v.Units)
		if v.Description != "" {
			h.AddAttribute(v.Name, "description", v.Description)
		}
	}
	h.Define()
	for _, err := range h.Check() {
		if err != nil {
			return err
		}
	}

	ff, err := cdf.Create(f, h)
	if err != nil {
		return err
	}
	for _, v := range d.vars {
		if err := writeVar(ff, v); err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
	}
	return cdf.UpdateNumRecs(f)
}

func writeVar(ff *cdf.File, v *Variable) error {
	end := ff.Header.Lengths(v.Name)
	start := make([]int, len(end))
	w := ff.Writer(v.Name, start, end)

	var err error
	if v.Int {
		buf := make([]int32, len(v.Data.Elements))
		for i, e := range v.Data.Elements {
			buf[i] = int32(e)
		}
		_, err = w.Write(buf)
	} else {
		buf := make([]float64, len(v.Data.Elements))
		copy(buf, v.Data.Elements)
		_, err = w.Write(buf)
	}
	return err
}

// Read loads a NetCDF file back into a Dataset. Dimension declaration
// order follows first appearance across the file's variables. Only
// classic NetCDF-3 files are accepted; netCDF-4/HDF5 files need
// converting first.
func Read(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("ncfile: opening %s: %w", path, err)
	}

	d := NewDataset()
	for _, name := range ff.Header.Variables() {
		dims := ff.Header.Dimensions(name)
		lengths := ff.Header.Lengths(name)
		for i, dim := range dims {
			if d.DimLength(dim) < 0 {
				if err := d.AddDim(dim, lengths[i]); err != nil {
					return nil, err
				}
			}
		}

		data, isInt, err := readVar(ff, name, lengths)
		if err != nil {
			return nil, fmt.Errorf("ncfile: reading %s from %s: %w", name, path, err)
		}

		v := &Variable{Name: name, Dims: dims, Data: data, Int: isInt}
		if u, ok := ff.Header.GetAttribute(name, "units").(string); ok {
			v.Units = u
		}
		if desc, ok := ff.Header.GetAttribute(name, "description").(string); ok {
			v.Description = desc
		}
		if err := d.add(v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ReadVariable loads a single variable from a NetCDF file.
func ReadVariable(path, name string) (*Variable, error) {
	d, err := Read(path)
	if err != nil {
		return nil, err
	}
	return d.Variable(name)
}

func readVar(ff *cdf.File, name string, lengths []int) (*sparse.DenseArray, bool, error) {
	n := 1
	for _, l := range lengths {
		n *= l
	}

	r := ff.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, false, err
	}

	data := sparse.ZerosDense(lengths...)
	isInt := false
	switch b := buf.(type) {
	case []float64:
		copy(data.Elements, b)
	case []float32:
		for i, e := range b {
			data.Elements[i] = float64(e)
		}
	case []int32:
		isInt = true
		for i, e := range b {
			data.Elements[i] = float64(e)
		}
	case []int16:
		isInt = true
		for i, e := range b {
			data.Elements[i] = float64(e)
		}
	case []int8:
		isInt = true
		for i, e := range b {
			data.Elements[i] = float64(e)
		}
	default:
		return nil, false, fmt.Errorf("unsupported value type %T", buf)
	}
	return data, isInt, nil
}
