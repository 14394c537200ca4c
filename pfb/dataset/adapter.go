package dataset

import (
	"path/filepath"
	"strings"

	"github.com/hydroframe/go-native-pfb/pfb/api"
	"github.com/hydroframe/go-native-pfb/pfb/grid"
)

// Adapter turns files (or manifests of files) into labeled datasets. There is
// one adapter per codec implementation; both must behave identically.
type Adapter interface {
	// Name identifies the implementation for diagnostics.
	Name() string

	// OpenDataset reads a single PFB file, or a JSON manifest referencing
	// many, into a labeled dataset. The returned header describes the first
	// underlying file.
	OpenDataset(path string) (*Dataset, *api.GridHeader, error)

	// OpenDataArray reads a single PFB file into one labeled array named
	// after the file's base name.
	OpenDataArray(path string) (*DataArray, error)
}

type codecAdapter struct {
	name  string
	codec api.Codec
}

// NewAdapter binds an adapter to a codec implementation.
func NewAdapter(name string, codec api.Codec) Adapter {
	return &codecAdapter{name: name, codec: codec}
}

func (a *codecAdapter) Name() string {
	return a.name
}

// Labeled reads are always vertical-first: dims are (z, y, x), with time or
// stacked z leading for multi-file variables.
func (a *codecAdapter) OpenDataArray(path string) (*DataArray, error) {
	arr, h, err := grid.ReadFile(a.codec, path, api.ModeFull, true)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &DataArray{
		Name:   name,
		Dims:   arr.Dims,
		Coords: coords(h, arr.Dims, arr.Shape),
		Attrs:  map[string]any{},
		Values: arr,
	}, nil
}

func (a *codecAdapter) OpenDataset(path string) (*Dataset, *api.GridHeader, error) {
	if isManifest(path) {
		m, err := LoadManifest(path)
		if err != nil {
			return nil, nil, err
		}
		return a.openManifest(m)
	}

	da, err := a.OpenDataArray(path)
	if err != nil {
		return nil, nil, err
	}
	h, err := readHeader(a.codec, path)
	if err != nil {
		return nil, nil, err
	}
	ds := NewDataset()
	if err := ds.AddVariable(da); err != nil {
		return nil, nil, err
	}
	return ds, h, nil
}

func (a *codecAdapter) openManifest(m *Manifest) (*Dataset, *api.GridHeader, error) {
	ds := NewDataset()
	ds.Attrs = m.Attrs
	if ds.Attrs == nil {
		ds.Attrs = map[string]any{}
	}

	var first *api.GridHeader
	for _, mv := range m.Variables {
		arr, h, err := a.readVariable(mv)
		if err != nil {
			return nil, nil, err
		}
		if first == nil {
			first = h
		}
		da := &DataArray{
			Name:   mv.Name,
			Dims:   arr.Dims,
			Coords: coords(h, arr.Dims, arr.Shape),
			Attrs:  map[string]any{},
			Values: arr,
		}
		if err := ds.AddVariable(da); err != nil {
			return nil, nil, err
		}
	}
	return ds, first, nil
}

func (a *codecAdapter) readVariable(mv ManifestVariable) (*api.Array, *api.GridHeader, error) {
	if len(mv.Files) == 1 {
		return grid.ReadFile(a.codec, mv.Files[0], api.ModeFull, true)
	}
	outer := api.OuterZ
	if mv.TimeVarying {
		outer = api.OuterTime
	}
	return grid.Stack(a.codec, mv.Files, api.ModeFull, true, outer)
}

func readHeader(codec api.Codec, path string) (*api.GridHeader, error) {
	r, err := codec.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Header(), nil
}

func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".pfmetadata":
		return true
	}
	return false
}
