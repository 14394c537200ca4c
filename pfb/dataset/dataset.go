// Package dataset exposes PFB grids as labeled multi-dimensional arrays, and
// resolves JSON manifests that describe many files as one logical dataset.
package dataset

import (
	"errors"
	"fmt"

	"github.com/hydroframe/go-native-pfb/internal"
	"github.com/hydroframe/go-native-pfb/pfb/api"
	"github.com/hydroframe/go-native-pfb/pfb/util"
)

var (
	ErrNotFound    = errors.New("variable not found")
	ErrInvalidName = errors.New("invalid variable name")
)

// DataArray is one labeled variable: a dense array plus per-axis coordinate
// values derived from the grid origin and spacing.
type DataArray struct {
	Name   string
	Dims   []string
	Coords map[string][]float64
	Attrs  map[string]any
	Values *api.Array
}

// Shape returns the array's shape.
func (da *DataArray) Shape() []int {
	return da.Values.Shape
}

// Dataset is an ordered collection of named DataArrays sharing one grid.
type Dataset struct {
	Attrs map[string]any

	vars *util.OrderedMap
}

func NewDataset() *Dataset {
	vars, err := util.NewOrderedMap(nil, nil)
	if err != nil {
		panic(err)
	}
	return &Dataset{Attrs: map[string]any{}, vars: vars}
}

// ListVariables lists the variable names in declaration order.
func (ds *Dataset) ListVariables() []string {
	return ds.vars.Keys()
}

// GetVariable returns the named variable or an error if not found.
func (ds *Dataset) GetVariable(name string) (*DataArray, error) {
	v, has := ds.vars.Get(name)
	if !has {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return v.(*DataArray), nil
}

// AddVariable adds the variable, rejecting names that are not usable.
func (ds *Dataset) AddVariable(da *DataArray) error {
	if !internal.IsValidVariableName(da.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, da.Name)
	}
	ds.vars.Add(da.Name, da)
	return nil
}

// coords builds per-axis coordinate values, origin + i*spacing along each
// spatial dimension. Axis lengths come from the array shape, not the header,
// since stacked arrays span more than one file's extent. The time axis gets
// plain step indices.
func coords(h *api.GridHeader, dims []string, shape []int) map[string][]float64 {
	axis := func(n int, origin, spacing float64) []float64 {
		c := make([]float64, n)
		for i := range c {
			c[i] = origin + float64(i)*spacing
		}
		return c
	}
	out := make(map[string][]float64)
	for i, d := range dims {
		switch d {
		case "x":
			out["x"] = axis(shape[i], h.X, h.DX)
		case "y":
			out["y"] = axis(shape[i], h.Y, h.DY)
		case "z":
			out["z"] = axis(shape[i], h.Z, h.DZ)
		case "time":
			out["time"] = axis(shape[i], 0, 1)
		}
	}
	return out
}
