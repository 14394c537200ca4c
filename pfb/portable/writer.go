package portable

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/batchatco/go-thrower"

	"github.com/hydroframe/go-native-pfb/pfb/api"
	"github.com/hydroframe/go-native-pfb/pfb/util"
)

var (
	ErrSubgridCount = errors.New("subgrid record count does not match header")
	ErrBadSubgrid   = errors.New("subgrid payload does not match its extent")
)

type writer struct {
	fname   string
	file    *os.File
	bf      *bufio.Writer
	header  api.GridHeader
	written int
}

// Create opens a PFB file for writing and emits the file header. Subgrid
// records follow in the order WriteSubgrid is called; Close fails unless
// exactly NumSubgrids records were written.
func (c *Codec) Create(path string, h *api.GridHeader) (api.SubgridWriter, error) {
	if h.NX <= 0 || h.NY <= 0 || h.NZ <= 0 || h.NumSubgrids <= 0 {
		return nil, fmt.Errorf("%w: extent (%d,%d,%d), %d subgrids",
			api.ErrDecode, h.NX, h.NY, h.NZ, h.NumSubgrids)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &writer{fname: path, file: file, bf: bufio.NewWriter(file), header: *h}
	if err := w.writeHeader(); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *writer) writeHeader() (err error) {
	defer thrower.RecoverError(&err)
	h := &w.header
	util.WriteFloat64(w.bf, h.X)
	util.WriteFloat64(w.bf, h.Y)
	util.WriteFloat64(w.bf, h.Z)
	util.WriteInt32(w.bf, int32(h.NX))
	util.WriteInt32(w.bf, int32(h.NY))
	util.WriteInt32(w.bf, int32(h.NZ))
	util.WriteFloat64(w.bf, h.DX)
	util.WriteFloat64(w.bf, h.DY)
	util.WriteFloat64(w.bf, h.DZ)
	util.WriteInt32(w.bf, int32(h.NumSubgrids))
	return nil
}

func (w *writer) WriteSubgrid(s *api.Subgrid) (err error) {
	defer thrower.RecoverError(&err)
	if w.written >= w.header.NumSubgrids {
		return fmt.Errorf("%w: extra record after %d: %s",
			ErrSubgridCount, w.written, w.fname)
	}
	if len(s.Data) != s.Cells() {
		return fmt.Errorf("%w: %d values for extent (%d,%d,%d): %s",
			ErrBadSubgrid, len(s.Data), s.NX, s.NY, s.NZ, w.fname)
	}
	util.WriteInt32(w.bf, int32(s.IX))
	util.WriteInt32(w.bf, int32(s.IY))
	util.WriteInt32(w.bf, int32(s.IZ))
	util.WriteInt32(w.bf, int32(s.NX))
	util.WriteInt32(w.bf, int32(s.NY))
	util.WriteInt32(w.bf, int32(s.NZ))
	util.WriteInt32(w.bf, int32(s.RX))
	util.WriteInt32(w.bf, int32(s.RY))
	util.WriteInt32(w.bf, int32(s.RZ))
	util.MustWrite(w.bf, s.Data)
	w.written++
	return nil
}

func (w *writer) Close() error {
	if w.file == nil {
		return nil
	}
	defer func() {
		w.file.Close()
		w.file = nil
	}()
	if w.written != w.header.NumSubgrids {
		return fmt.Errorf("%w: wrote %d of %d: %s",
			ErrSubgridCount, w.written, w.header.NumSubgrids, w.fname)
	}
	if err := w.bf.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}
