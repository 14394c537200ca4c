package grid

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/hydroframe/go-native-pfb/pfb/api"
)

// Stack assembles each file independently and concatenates the results along
// the outer axis. The caller's file order defines index order along that
// axis; files are decoded concurrently but results are placed by input index.
//
// outerAxis z concatenates along the vertical axis; time is the same physical
// concatenation but the combined axis is labeled "time" instead, marking the
// slices as independent time steps rather than stacked levels.
func Stack(codec api.Codec, paths []string, mode api.Mode, verticalFirst bool, outerAxis api.OuterAxis) (*api.Array, *api.GridHeader, error) {
	switch outerAxis {
	case api.OuterZ, api.OuterTime:
	default:
		return nil, nil, fmt.Errorf("%w: outer axis %q", api.ErrUnsupportedMode, outerAxis)
	}
	switch mode {
	case api.ModeFull, api.ModeFlat, api.ModeTiled:
	default:
		return nil, nil, fmt.Errorf("%w: mode %q", api.ErrUnsupportedMode, mode)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("%w: no files to stack", ErrShapeMismatch)
	}

	arrays := make([]*api.Array, len(paths))
	headers := make([]*api.GridHeader, len(paths))
	errs := make([]error, len(paths))

	workers := runtime.NumCPU()
	if workers > len(paths) {
		workers = len(paths)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range paths {
		i := i
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			arrays[i], headers[i], errs[i] = ReadFile(codec, paths[i], mode, verticalFirst)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	axis := concatAxis(arrays[0], mode, verticalFirst)
	for i, arr := range arrays[1:] {
		if err := tailShapeEquals(arrays[0], arr, axis); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", paths[i+1], err)
		}
	}

	out := concat(arrays, axis)
	if outerAxis == api.OuterTime {
		out.Dims[axis] = "time"
	}
	return out, headers[0], nil
}

// concatAxis is the vertical axis for full mode and the leading axis for
// flat and tiled results.
func concatAxis(a *api.Array, mode api.Mode, verticalFirst bool) int {
	if mode == api.ModeFull && !verticalFirst {
		return a.Rank() - 1
	}
	return 0
}

func tailShapeEquals(a, b *api.Array, axis int) error {
	if a.Rank() != b.Rank() {
		return fmt.Errorf("%w: rank %d vs %d", ErrShapeMismatch, b.Rank(), a.Rank())
	}
	for i := range a.Shape {
		if i == axis {
			continue
		}
		if a.Shape[i] != b.Shape[i] {
			return fmt.Errorf("%w: axis %q is %d, expected %d",
				ErrShapeMismatch, a.Dims[i], b.Shape[i], a.Shape[i])
		}
	}
	return nil
}

func concat(arrays []*api.Array, axis int) *api.Array {
	first := arrays[0]
	outShape := append([]int(nil), first.Shape...)
	outShape[axis] = 0
	for _, arr := range arrays {
		outShape[axis] += arr.Shape[axis]
	}
	out := api.NewArray(outShape, first.Dims)

	pre := 1
	for i := 0; i < axis; i++ {
		pre *= first.Shape[i]
	}
	inner := 1
	for i := axis + 1; i < len(first.Shape); i++ {
		inner *= first.Shape[i]
	}

	dst := 0
	for o := 0; o < pre; o++ {
		for _, arr := range arrays {
			blk := arr.Shape[axis] * inner
			copy(out.Data[dst:dst+blk], arr.Data[o*blk:(o+1)*blk])
			dst += blk
		}
	}
	return out
}
