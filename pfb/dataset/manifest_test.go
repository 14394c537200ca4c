package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydroframe/go-native-pfb/pfb/api"
	"github.com/hydroframe/go-native-pfb/pfb/grid"
	"github.com/hydroframe/go-native-pfb/pfb/portable"
)

func writeGrid(t *testing.T, path string, base float64) {
	t.Helper()
	h := &api.GridHeader{
		X: 100, Y: 200, Z: 0,
		NX: 10, NY: 10, NZ: 8, DX: 1, DY: 1, DZ: 0.5,
		P: 1, Q: 1, R: 1, NumSubgrids: 1,
	}
	arr := api.NewArray([]int{h.NZ, h.NY, h.NX}, []string{"z", "y", "x"})
	for i := range arr.Data {
		arr.Data[i] = base + float64(i)
	}
	require.NoError(t, grid.WriteFile(portable.NewCodec(), path, h, arr, api.ModeFull, true))
}

func writeManifest(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	writeManifest(t, path, `{
		"name": "run42",
		"attributes": {"model": "richards"},
		"variables": [
			{"name": "alpha", "files": ["alpha.pfb"]},
			{"name": "pressure", "files": ["press.0.pfb", "press.1.pfb"], "time-varying": true}
		]
	}`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "run42", m.Name)
	require.Len(t, m.Variables, 2)
	assert.True(t, m.Variables[1].TimeVarying)
	// Relative paths resolve against the manifest directory.
	assert.Equal(t, filepath.Join(dir, "alpha.pfb"), m.Variables[0].Files[0])
}

func TestLoadManifestRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()

	noVars := filepath.Join(dir, "novars.json")
	writeManifest(t, noVars, `{"name": "run"}`)
	_, err := LoadManifest(noVars)
	require.Error(t, err)

	noName := filepath.Join(dir, "unnamed.json")
	writeManifest(t, noName, `{"variables": [{"name": "v", "files": ["a.pfb"]}]}`)
	_, err = LoadManifest(noName)
	require.Error(t, err)

	notJSON := filepath.Join(dir, "bad.json")
	writeManifest(t, notJSON, `{`)
	_, err = LoadManifest(notJSON)
	require.Error(t, err)
}

func TestAdapterOpenManifestDataset(t *testing.T) {
	dir := t.TempDir()
	writeGrid(t, filepath.Join(dir, "alpha.pfb"), 0)
	writeGrid(t, filepath.Join(dir, "press.0.pfb"), 100)
	writeGrid(t, filepath.Join(dir, "press.1.pfb"), 200)

	path := filepath.Join(dir, "run.json")
	writeManifest(t, path, `{
		"name": "run42",
		"attributes": {"model": "richards"},
		"variables": [
			{"name": "alpha", "files": ["alpha.pfb"]},
			{"name": "pressure", "files": ["press.0.pfb", "press.1.pfb"], "time-varying": true}
		]
	}`)

	a := NewAdapter("portable", portable.NewCodec())
	ds, h, err := a.OpenDataset(path)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 10, h.NX)
	assert.Equal(t, "richards", ds.Attrs["model"])
	assert.Equal(t, []string{"alpha", "pressure"}, ds.ListVariables())

	alpha, err := ds.GetVariable("alpha")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 10, 10}, alpha.Shape())
	assert.Equal(t, []string{"z", "y", "x"}, alpha.Dims)
	require.Len(t, alpha.Coords["x"], 10)
	assert.Equal(t, 100.0, alpha.Coords["x"][0])
	assert.Equal(t, 101.0, alpha.Coords["x"][1])

	// Time-varying variables stack along a time axis.
	press, err := ds.GetVariable("pressure")
	require.NoError(t, err)
	assert.Equal(t, []int{16, 10, 10}, press.Shape())
	assert.Equal(t, "time", press.Dims[0])
	assert.Len(t, press.Coords["time"], 16)
	assert.Equal(t, 100.0, press.Values.Data[0])
	assert.Equal(t, 200.0, press.Values.Data[800])

	_, err = ds.GetVariable("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdapterOpenSingleFileDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saturation.pfb")
	writeGrid(t, path, 0)

	a := NewAdapter("portable", portable.NewCodec())
	ds, h, err := a.OpenDataset(path)
	require.NoError(t, err)
	assert.Equal(t, 1, h.NumSubgrids)
	assert.Equal(t, []string{"saturation"}, ds.ListVariables())

	da, err := a.OpenDataArray(path)
	require.NoError(t, err)
	assert.Equal(t, "saturation", da.Name)
}
