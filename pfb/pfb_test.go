package pfb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydroframe/go-native-pfb/pfb/api"
)

// vanGenuchtenHeader mirrors the common single-process layout: one subgrid
// covering a 10x10x8 grid.
func vanGenuchtenHeader() *api.GridHeader {
	return &api.GridHeader{
		NX: 10, NY: 10, NZ: 8,
		DX: 1, DY: 1, DZ: 0.5,
		P: 1, Q: 1, R: 1, NumSubgrids: 1,
	}
}

func writeFull(t *testing.T, svc *DataService, path string, h *api.GridHeader, base float64) *api.Array {
	t.Helper()
	arr := api.NewArray([]int{h.NZ, h.NY, h.NX}, []string{"z", "y", "x"})
	for i := range arr.Data {
		arr.Data[i] = base + float64(i)
	}
	require.NoError(t, svc.WriteArray(path, h, arr, api.ModeFull))
	return arr
}

func TestReadArrayFull(t *testing.T) {
	svc := NewDataService()
	path := filepath.Join(t.TempDir(), "van-genuchten-alpha.pfb")
	writeFull(t, svc, path, vanGenuchtenHeader(), 0)

	hdr := api.HeaderMap{}
	arr, err := svc.ReadArray(path, hdr, api.ModeFull)
	require.NoError(t, err)

	assert.Equal(t, []int{8, 10, 10}, arr.Shape)
	assert.Equal(t, []string{"z", "y", "x"}, arr.Dims)

	for _, k := range api.HeaderKeys {
		assert.Contains(t, hdr, k)
	}
	assert.Equal(t, 10, hdr["nx"])
	assert.Equal(t, 10, hdr["ny"])
	assert.Equal(t, 8, hdr["nz"])
	assert.Equal(t, 1, hdr["p"])
	assert.Equal(t, 1, hdr["q"])
	assert.Equal(t, 1, hdr["r"])
	assert.Equal(t, 1, hdr["n_subgrids"])
	assert.Equal(t, 0.5, hdr["dz"])
}

func TestReadArrayFlatAndTiled(t *testing.T) {
	svc := NewDataService()
	h := vanGenuchtenHeader()
	path := filepath.Join(t.TempDir(), "grid.pfb")
	writeFull(t, svc, path, h, 0)

	flat, err := svc.ReadArray(path, nil, api.ModeFlat)
	require.NoError(t, err)
	assert.Equal(t, []int{h.NX * h.NY * h.NZ}, flat.Shape)

	tiled, err := svc.ReadArray(path, nil, api.ModeTiled)
	require.NoError(t, err)
	require.Equal(t, 4, tiled.Rank())
	assert.Equal(t, h.NumSubgrids, tiled.Shape[0], "leading axis stays even for one subgrid")
}

func TestReadArrayUnknownMode(t *testing.T) {
	svc := NewDataService()
	_, err := svc.ReadArray("whatever.pfb", nil, api.Mode("sparse"))
	require.ErrorIs(t, err, api.ErrUnsupportedMode)
}

func TestReadHeader(t *testing.T) {
	svc := NewDataService()
	path := filepath.Join(t.TempDir(), "grid.pfb")
	writeFull(t, svc, path, vanGenuchtenHeader(), 0)

	h, err := svc.ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, 10, h.NX)
	assert.Equal(t, 8, h.NZ)
	assert.Equal(t, 1, h.NumSubgrids)
	assert.Equal(t, h.P*h.Q*h.R, h.NumSubgrids)
}

func TestRoundTripEveryMode(t *testing.T) {
	for _, verticalFirst := range []bool{true, false} {
		svc := NewDataService(WithVerticalFirst(verticalFirst))
		// Uniform partition so tiled mode round-trips too.
		h := &api.GridHeader{
			NX: 6, NY: 4, NZ: 4, DX: 1, DY: 1, DZ: 1,
			P: 2, Q: 2, R: 1, NumSubgrids: 4,
		}
		dir := t.TempDir()

		for _, mode := range []api.Mode{api.ModeFull, api.ModeFlat, api.ModeTiled} {
			seed := filepath.Join(dir, "seed_"+string(mode)+".pfb")
			writeFull(t, NewDataService(), seed, h, 7)
			in, err := svc.ReadArray(seed, nil, mode)
			require.NoError(t, err, mode)

			out := filepath.Join(dir, "out_"+string(mode)+".pfb")
			require.NoError(t, svc.WriteArray(out, h, in, mode), mode)

			back, err := svc.ReadArray(out, nil, mode)
			require.NoError(t, err, mode)
			assert.Equal(t, in.Shape, back.Shape, mode)
			assert.Equal(t, in.Data, back.Data, mode)
		}
	}
}

func TestReadStack(t *testing.T) {
	svc := NewDataService()
	dir := t.TempDir()
	h := vanGenuchtenHeader()
	names := []string{"alpha", "n", "sr", "ssat"}
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, "van-genuchten-"+n+".pfb")
		writeFull(t, svc, paths[i], h, float64(i*100))
	}

	hdr := api.NewHeaderMap()
	arr, err := svc.ReadStack(paths, hdr, api.ModeFull, "")
	require.NoError(t, err)
	assert.Equal(t, []int{32, 10, 10}, arr.Shape)
	assert.Equal(t, "z", arr.Dims[0])
	assert.Equal(t, 10, hdr["nx"])

	// File order defines outer index order.
	for i := range paths {
		assert.Equal(t, float64(i*100), arr.Data[i*800])
	}

	timed, err := svc.ReadStack(paths, nil, api.ModeFull, api.OuterTime)
	require.NoError(t, err)
	assert.Equal(t, []int{32, 10, 10}, timed.Shape)
	assert.Equal(t, "time", timed.Dims[0])
}

func TestReadStackDefaultOuterAxis(t *testing.T) {
	dir := t.TempDir()
	h := vanGenuchtenHeader()
	paths := []string{filepath.Join(dir, "a.pfb"), filepath.Join(dir, "b.pfb")}
	for _, p := range paths {
		writeFull(t, NewDataService(), p, h, 0)
	}

	svc := NewDataService(WithDefaultOuterAxis(api.OuterTime))
	arr, err := svc.ReadStack(paths, nil, api.ModeFull, "")
	require.NoError(t, err)
	assert.Equal(t, "time", arr.Dims[0])

	_, err = svc.ReadStack(paths, nil, api.ModeFull, api.OuterAxis("depth"))
	require.ErrorIs(t, err, api.ErrUnsupportedMode)
}

func TestWriteDistributed(t *testing.T) {
	svc := NewDataService()
	dir := t.TempDir()
	h := &api.GridHeader{
		NX: 10, NY: 10, NZ: 8, DX: 2, DY: 2, DZ: 1,
		P: 2, Q: 2, R: 1, NumSubgrids: 4,
	}
	seed := filepath.Join(dir, "seed.pfb")
	writeFull(t, svc, seed, h, 0)
	in, err := svc.ReadArray(seed, nil, api.ModeFull)
	require.NoError(t, err)

	base := filepath.Join(dir, "press.pfb")
	paths, err := svc.WriteDistributed(base, h, in, api.ModeFull)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, base+".dist.0", paths[0])

	// Each partition file stands alone as its own grid.
	first, err := svc.ReadArray(paths[0], nil, api.ModeFull)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 5, 5}, first.Shape)
	v, err := in.At(0, 0, 0)
	require.NoError(t, err)
	got, err := first.At(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// The second partition starts at x offset 5; its origin shifts with it.
	ph, err := svc.ReadHeader(paths[1])
	require.NoError(t, err)
	assert.Equal(t, float64(5)*h.DX, ph.X)
	assert.Equal(t, 1, ph.NumSubgrids)
}

func TestImplementationTypeReported(t *testing.T) {
	svc := NewDataService()
	impl := svc.ImplementationType()
	assert.Contains(t, []string{"accelerated", "portable"}, impl)
	assert.Equal(t, impl, string(svc.Backend().Implementation))
}

func TestReadDataArrayNameFromFile(t *testing.T) {
	svc := NewDataService()
	path := filepath.Join(t.TempDir(), "van-genuchten-alpha.pfb")
	writeFull(t, svc, path, vanGenuchtenHeader(), 0)

	da, err := svc.ReadDataArray(path)
	require.NoError(t, err)
	assert.Equal(t, "van-genuchten-alpha", da.Name)
	assert.Equal(t, []string{"z", "y", "x"}, da.Dims)
	assert.Len(t, da.Coords["x"], 10)
	assert.Len(t, da.Coords["z"], 8)
}

func TestReadDatasetSingleFile(t *testing.T) {
	svc := NewDataService()
	path := filepath.Join(t.TempDir(), "press.pfb")
	writeFull(t, svc, path, vanGenuchtenHeader(), 0)

	hdr := api.HeaderMap{}
	ds, err := svc.ReadDataset(path, hdr)
	require.NoError(t, err)
	assert.Equal(t, []string{"press"}, ds.ListVariables())
	assert.Equal(t, 8, hdr["nz"])

	da, err := ds.GetVariable("press")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 10, 10}, da.Shape())
}
