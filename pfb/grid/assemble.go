// Package grid reconstructs logical arrays from subgrid records and splits
// them back apart for writing.
package grid

import (
	"errors"
	"fmt"

	"github.com/hydroframe/go-native-pfb/pfb/api"
)

var (
	ErrCoverage      = errors.New("subgrids do not exactly tile the declared extent")
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Assemble reconstructs one file's logical array from its subgrid records.
//
// Modes:
//   - full:  dense (nz, ny, nx) when verticalFirst, else (nx, ny, nz). Every
//     cell must be covered by exactly one subgrid.
//   - flat:  the full traversal flattened to one dimension.
//   - tiled: leading axis of length n_subgrids (file storage order) followed
//     by the per-subgrid local shape, which must be uniform. The leading axis
//     is kept even when there is a single subgrid.
func Assemble(subgrids []*api.Subgrid, h *api.GridHeader, mode api.Mode, verticalFirst bool) (*api.Array, error) {
	switch mode {
	case api.ModeFull:
		return assembleFull(subgrids, h, verticalFirst)
	case api.ModeFlat:
		arr, err := assembleFull(subgrids, h, verticalFirst)
		if err != nil {
			return nil, err
		}
		return &api.Array{
			Shape: []int{h.Cells()},
			Dims:  []string{"cell"},
			Data:  arr.Data,
		}, nil
	case api.ModeTiled:
		return assembleTiled(subgrids, h, verticalFirst)
	default:
		return nil, fmt.Errorf("%w: mode %q", api.ErrUnsupportedMode, mode)
	}
}

func fullAxes(h *api.GridHeader, verticalFirst bool) ([]int, []string) {
	if verticalFirst {
		return []int{h.NZ, h.NY, h.NX}, []string{"z", "y", "x"}
	}
	return []int{h.NX, h.NY, h.NZ}, []string{"x", "y", "z"}
}

func assembleFull(subgrids []*api.Subgrid, h *api.GridHeader, verticalFirst bool) (*api.Array, error) {
	shape, dims := fullAxes(h, verticalFirst)
	arr := api.NewArray(shape, dims)

	cells := h.Cells()
	visited := make([]uint64, (cells+63)/64)
	placed := 0

	for n, sg := range subgrids {
		if len(sg.Data) != sg.Cells() {
			return nil, fmt.Errorf("%w: subgrid %d carries %d values for extent (%d,%d,%d)",
				ErrShapeMismatch, n, len(sg.Data), sg.NX, sg.NY, sg.NZ)
		}
		if sg.IX < 0 || sg.IY < 0 || sg.IZ < 0 ||
			sg.IX+sg.NX > h.NX || sg.IY+sg.NY > h.NY || sg.IZ+sg.NZ > h.NZ {
			return nil, fmt.Errorf("%w: subgrid %d at (%d,%d,%d)+(%d,%d,%d) exceeds extent (%d,%d,%d)",
				ErrCoverage, n, sg.IX, sg.IY, sg.IZ, sg.NX, sg.NY, sg.NZ, h.NX, h.NY, h.NZ)
		}
		// Payload order is x fastest, then y, then z.
		p := 0
		for k := 0; k < sg.NZ; k++ {
			for j := 0; j < sg.NY; j++ {
				for i := 0; i < sg.NX; i++ {
					gx, gy, gz := sg.IX+i, sg.IY+j, sg.IZ+k
					var idx int
					if verticalFirst {
						idx = (gz*h.NY+gy)*h.NX + gx
					} else {
						idx = (gx*h.NY+gy)*h.NZ + gz
					}
					if visited[idx/64]&(1<<(idx%64)) != 0 {
						return nil, fmt.Errorf("%w: cell (%d,%d,%d) covered more than once (subgrid %d)",
							ErrCoverage, gx, gy, gz, n)
					}
					visited[idx/64] |= 1 << (idx % 64)
					arr.Data[idx] = sg.Data[p]
					p++
					placed++
				}
			}
		}
	}
	if placed != cells {
		return nil, fmt.Errorf("%w: covered %d of %d cells", ErrCoverage, placed, cells)
	}
	return arr, nil
}

func assembleTiled(subgrids []*api.Subgrid, h *api.GridHeader, verticalFirst bool) (*api.Array, error) {
	if len(subgrids) == 0 {
		return nil, fmt.Errorf("%w: no subgrids", ErrCoverage)
	}
	first := subgrids[0]
	for n, sg := range subgrids[1:] {
		if sg.NX != first.NX || sg.NY != first.NY || sg.NZ != first.NZ {
			return nil, fmt.Errorf("%w: subgrid %d is (%d,%d,%d), subgrid 0 is (%d,%d,%d)",
				ErrShapeMismatch, n+1, sg.NX, sg.NY, sg.NZ, first.NX, first.NY, first.NZ)
		}
	}

	var shape []int
	var dims []string
	if verticalFirst {
		shape = []int{len(subgrids), first.NZ, first.NY, first.NX}
		dims = []string{"subgrid", "z", "y", "x"}
	} else {
		shape = []int{len(subgrids), first.NX, first.NY, first.NZ}
		dims = []string{"subgrid", "x", "y", "z"}
	}
	arr := api.NewArray(shape, dims)

	tileLen := first.Cells()
	for n, sg := range subgrids {
		if len(sg.Data) != tileLen {
			return nil, fmt.Errorf("%w: subgrid %d carries %d values for extent (%d,%d,%d)",
				ErrShapeMismatch, n, len(sg.Data), sg.NX, sg.NY, sg.NZ)
		}
		dst := arr.Data[n*tileLen : (n+1)*tileLen]
		if verticalFirst {
			// Payload order already matches (z, y, x).
			copy(dst, sg.Data)
			continue
		}
		p := 0
		for k := 0; k < sg.NZ; k++ {
			for j := 0; j < sg.NY; j++ {
				for i := 0; i < sg.NX; i++ {
					dst[(i*sg.NY+j)*sg.NZ+k] = sg.Data[p]
					p++
				}
			}
		}
	}
	return arr, nil
}

// ReadFile decodes every subgrid of one file with the given codec and
// assembles them. The file handle is released on all paths.
func ReadFile(codec api.Codec, path string, mode api.Mode, verticalFirst bool) (*api.Array, *api.GridHeader, error) {
	r, err := codec.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	h := r.Header()
	subgrids := make([]*api.Subgrid, h.NumSubgrids)
	for i := 0; i < h.NumSubgrids; i++ {
		sg, err := r.ReadSubgrid(i)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		subgrids[i] = sg
	}
	arr, err := Assemble(subgrids, h, mode, verticalFirst)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return arr, h, nil
}
