package grid

import (
	"fmt"

	"github.com/hydroframe/go-native-pfb/pfb/api"
)

// Partition builds the subgrid skeletons for the header's p*q*r layout:
// offsets and extents only, payloads left nil. Cells split evenly along each
// axis, with the remainder going to the leading subgrids. Subgrid index order
// is x fastest, then y, then z, matching payload traversal order.
func Partition(h *api.GridHeader) ([]*api.Subgrid, error) {
	if h.P <= 0 || h.Q <= 0 || h.R <= 0 {
		return nil, fmt.Errorf("%w: partition (%d,%d,%d)", ErrShapeMismatch, h.P, h.Q, h.R)
	}
	if h.P*h.Q*h.R != h.NumSubgrids {
		return nil, fmt.Errorf("%w: partition (%d,%d,%d) does not yield %d subgrids",
			ErrShapeMismatch, h.P, h.Q, h.R, h.NumSubgrids)
	}
	if h.P > h.NX || h.Q > h.NY || h.R > h.NZ {
		return nil, fmt.Errorf("%w: partition (%d,%d,%d) finer than extent (%d,%d,%d)",
			ErrShapeMismatch, h.P, h.Q, h.R, h.NX, h.NY, h.NZ)
	}

	xOff, xLen := axisSplit(h.NX, h.P)
	yOff, yLen := axisSplit(h.NY, h.Q)
	zOff, zLen := axisSplit(h.NZ, h.R)

	subs := make([]*api.Subgrid, 0, h.NumSubgrids)
	for k := 0; k < h.R; k++ {
		for j := 0; j < h.Q; j++ {
			for i := 0; i < h.P; i++ {
				subs = append(subs, &api.Subgrid{
					IX: xOff[i], IY: yOff[j], IZ: zOff[k],
					NX: xLen[i], NY: yLen[j], NZ: zLen[k],
				})
			}
		}
	}
	return subs, nil
}

func axisSplit(n, parts int) (offsets, lengths []int) {
	offsets = make([]int, parts)
	lengths = make([]int, parts)
	base := n / parts
	rem := n % parts
	off := 0
	for i := 0; i < parts; i++ {
		lengths[i] = base
		if i < rem {
			lengths[i]++
		}
		offsets[i] = off
		off += lengths[i]
	}
	return offsets, lengths
}

// Scatter is the inverse of Assemble: it splits an array of the given mode's
// shape into the header's subgrid payloads, so that assembling the result
// reproduces the input exactly.
func Scatter(data *api.Array, h *api.GridHeader, mode api.Mode, verticalFirst bool) ([]*api.Subgrid, error) {
	subs, err := Partition(h)
	if err != nil {
		return nil, err
	}

	switch mode {
	case api.ModeFull, api.ModeFlat:
		flat := data.Data
		if mode == api.ModeFull {
			shape, _ := fullAxes(h, verticalFirst)
			if !api.ShapeEquals(data.Shape, shape) {
				return nil, fmt.Errorf("%w: data shape %v, mode %q wants %v",
					ErrShapeMismatch, data.Shape, mode, shape)
			}
		} else if data.Rank() != 1 || data.Len() != h.Cells() {
			return nil, fmt.Errorf("%w: data shape %v, mode flat wants [%d]",
				ErrShapeMismatch, data.Shape, h.Cells())
		}
		if len(flat) != h.Cells() {
			return nil, fmt.Errorf("%w: %d values for extent (%d,%d,%d)",
				ErrShapeMismatch, len(flat), h.NX, h.NY, h.NZ)
		}
		for _, sg := range subs {
			sg.Data = make([]float64, sg.Cells())
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
						sg.Data[p] = flat[idx]
						p++
					}
				}
			}
		}
		return subs, nil

	case api.ModeTiled:
		first := subs[0]
		for _, sg := range subs[1:] {
			if sg.NX != first.NX || sg.NY != first.NY || sg.NZ != first.NZ {
				return nil, fmt.Errorf("%w: partition (%d,%d,%d) of extent (%d,%d,%d) is not uniform, tiled mode needs uniform tiles",
					ErrShapeMismatch, h.P, h.Q, h.R, h.NX, h.NY, h.NZ)
			}
		}
		var want []int
		if verticalFirst {
			want = []int{h.NumSubgrids, first.NZ, first.NY, first.NX}
		} else {
			want = []int{h.NumSubgrids, first.NX, first.NY, first.NZ}
		}
		if !api.ShapeEquals(data.Shape, want) {
			return nil, fmt.Errorf("%w: data shape %v, mode tiled wants %v",
				ErrShapeMismatch, data.Shape, want)
		}
		tileLen := first.Cells()
		for n, sg := range subs {
			sg.Data = make([]float64, tileLen)
			src := data.Data[n*tileLen : (n+1)*tileLen]
			if verticalFirst {
				copy(sg.Data, src)
				continue
			}
			p := 0
			for k := 0; k < sg.NZ; k++ {
				for j := 0; j < sg.NY; j++ {
					for i := 0; i < sg.NX; i++ {
						sg.Data[p] = src[(i*sg.NY+j)*sg.NZ+k]
						p++
					}
				}
			}
		}
		return subs, nil

	default:
		return nil, fmt.Errorf("%w: mode %q", api.ErrUnsupportedMode, mode)
	}
}

// WriteFile scatters the array and emits one file through the codec.
func WriteFile(codec api.Codec, path string, h *api.GridHeader, data *api.Array, mode api.Mode, verticalFirst bool) error {
	subs, err := Scatter(data, h, mode, verticalFirst)
	if err != nil {
		return err
	}
	w, err := codec.Create(path, h)
	if err != nil {
		return err
	}
	for _, sg := range subs {
		if err := w.WriteSubgrid(sg); err != nil {
			w.Close()
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return w.Close()
}
