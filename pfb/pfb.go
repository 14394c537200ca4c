// Package pfb reads and writes ParFlow binary (.pfb) grid files.
//
// A .pfb file stores one rectilinear grid partitioned into rectangular
// subgrids, each potentially written by a different compute process.
// DataService reassembles them into dense arrays, stacks many files along a
// z or time axis, and exposes labeled datasets through the bound adapter.
package pfb

import (
	"fmt"

	"github.com/hydroframe/go-native-pfb/pfb/api"
	"github.com/hydroframe/go-native-pfb/pfb/dataset"
	"github.com/hydroframe/go-native-pfb/pfb/grid"
)

// DataService is the single entry surface for PFB access. It is stateless
// apart from the backend choice and configuration fixed at construction, so
// concurrent reads on one instance are safe.
type DataService struct {
	backend          Backend
	verticalFirst    bool
	defaultOuterAxis api.OuterAxis
}

// Option configures a DataService.
type Option func(*DataService)

// WithVerticalFirst controls axis order of full, flat and stacked results:
// (nz, ny, nx) when true, (nx, ny, nz) when false. Default true.
func WithVerticalFirst(verticalFirst bool) Option {
	return func(s *DataService) {
		s.verticalFirst = verticalFirst
	}
}

// WithDefaultOuterAxis sets the stacking axis used when ReadStack is called
// without one. Default OuterZ.
func WithDefaultOuterAxis(outer api.OuterAxis) Option {
	return func(s *DataService) {
		s.defaultOuterAxis = outer
	}
}

// WithBackend injects a specific backend instead of resolving one.
func WithBackend(b Backend) Option {
	return func(s *DataService) {
		s.backend = b
	}
}

// NewDataService resolves a backend once and returns a ready service.
func NewDataService(opts ...Option) *DataService {
	s := &DataService{
		verticalFirst:    true,
		defaultOuterAxis: api.OuterZ,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend.Codec == nil {
		s.backend = ResolveBackend()
	}
	return s
}

// ImplementationType reports which backend pair was resolved.
func (s *DataService) ImplementationType() string {
	return string(s.backend.Implementation)
}

// Backend returns the resolved backend pair.
func (s *DataService) Backend() Backend {
	return s.backend
}

// ReadDataset reads a .pfb file, or a JSON manifest referencing many, into a
// labeled dataset. When hdr is non-nil it is populated with the header of the
// (first) underlying file; every documented key is present, nil marking a
// value the codec could not supply.
func (s *DataService) ReadDataset(path string, hdr api.HeaderMap) (*dataset.Dataset, error) {
	ds, h, err := s.backend.Adapter.OpenDataset(path)
	if err != nil {
		return nil, err
	}
	populate(hdr, h)
	return ds, nil
}

// ReadDataArray reads a single .pfb file into one labeled array named after
// the file's base name.
func (s *DataService) ReadDataArray(path string) (*dataset.DataArray, error) {
	return s.backend.Adapter.OpenDataArray(path)
}

// ReadArray reads one .pfb file into a dense array of the given mode's shape.
// When hdr is non-nil it is populated as in ReadDataset.
func (s *DataService) ReadArray(path string, hdr api.HeaderMap, mode api.Mode) (*api.Array, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	arr, h, err := grid.ReadFile(s.backend.Codec, path, mode, s.verticalFirst)
	if err != nil {
		return nil, err
	}
	populate(hdr, h)
	return arr, nil
}

// ReadStack reads an ordered list of .pfb files and concatenates them along
// the outer axis. The caller's file order is authoritative. An empty outer
// axis selects the configured default. When hdr is non-nil it is populated
// from the first file.
func (s *DataService) ReadStack(paths []string, hdr api.HeaderMap, mode api.Mode, outer api.OuterAxis) (*api.Array, error) {
	if outer == "" {
		outer = s.defaultOuterAxis
	}
	arr, h, err := grid.Stack(s.backend.Codec, paths, mode, s.verticalFirst, outer)
	if err != nil {
		return nil, err
	}
	populate(hdr, h)
	return arr, nil
}

// ReadHeader decodes and returns one file's grid header.
func (s *DataService) ReadHeader(path string) (*api.GridHeader, error) {
	r, err := s.backend.Codec.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Header(), nil
}

// WriteArray writes the array as one .pfb file partitioned per the header's
// p, q, r layout. Reading the file back with the same mode and axis order
// reproduces the input exactly.
func (s *DataService) WriteArray(path string, h *api.GridHeader, data *api.Array, mode api.Mode) error {
	if err := checkMode(mode); err != nil {
		return err
	}
	return grid.WriteFile(s.backend.Codec, path, h, data, mode, s.verticalFirst)
}

// WriteDistributed writes one single-subgrid .pfb file per partition, named
// <path>.dist.<i> in subgrid index order. Each file stands alone: its header
// describes the partition as its own grid, with the origin shifted by the
// partition offset. The written paths are returned in index order.
func (s *DataService) WriteDistributed(path string, h *api.GridHeader, data *api.Array, mode api.Mode) ([]string, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	subs, err := grid.Scatter(data, h, mode, s.verticalFirst)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(subs))
	for i, sg := range subs {
		part := *h
		part.X += float64(sg.IX) * h.DX
		part.Y += float64(sg.IY) * h.DY
		part.Z += float64(sg.IZ) * h.DZ
		part.NX, part.NY, part.NZ = sg.NX, sg.NY, sg.NZ
		part.P, part.Q, part.R = 1, 1, 1
		part.NumSubgrids = 1

		local := *sg
		local.IX, local.IY, local.IZ = 0, 0, 0

		name := fmt.Sprintf("%s.dist.%d", path, i)
		w, err := s.backend.Codec.Create(name, &part)
		if err != nil {
			return paths, err
		}
		if err := w.WriteSubgrid(&local); err != nil {
			w.Close()
			return paths, fmt.Errorf("%s: %w", name, err)
		}
		if err := w.Close(); err != nil {
			return paths, err
		}
		paths = append(paths, name)
	}
	return paths, nil
}

func checkMode(mode api.Mode) error {
	switch mode {
	case api.ModeFull, api.ModeFlat, api.ModeTiled:
		return nil
	}
	return fmt.Errorf("%w: mode %q", api.ErrUnsupportedMode, mode)
}

func populate(hdr api.HeaderMap, h *api.GridHeader) {
	if hdr == nil {
		return
	}
	for _, k := range api.HeaderKeys {
		if _, has := hdr[k]; !has {
			hdr[k] = nil
		}
	}
	if h != nil {
		hdr.Populate(h)
	}
}
