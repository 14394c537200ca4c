// Package portable implements the PFB codec with buffered reads and writes
// that work on any platform.
package portable

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/batchatco/go-thrower"

	"github.com/hydroframe/go-native-pfb/internal"
	"github.com/hydroframe/go-native-pfb/pfb/api"
	"github.com/hydroframe/go-native-pfb/pfb/util"
)

const (
	fileHeaderSize    = 64 // x y z f64, nx ny nz i32, dx dy dz f64, n_subgrids i32
	subgridHeaderSize = 36 // ix iy iz, nx ny nz, rx ry rz, all i32
)

var (
	logger = internal.NewLogger()
)

func fail(message string, err error) {
	logger.Error(message)
	thrower.Throw(err)
}

func assert(condition bool, message string, err error) {
	if condition {
		return
	}
	fail(message, err)
}

// Codec is the portable implementation of api.Codec.
type Codec struct{}

// NewCodec returns the portable codec. It has no runtime requirements and
// never fails to resolve.
func NewCodec() *Codec {
	return &Codec{}
}

func (c *Codec) Name() string {
	return "portable"
}

// subEntry locates one subgrid record within the file.
type subEntry struct {
	sub     api.Subgrid // header fields only, Data left nil
	dataOff int64
}

type reader struct {
	fname  string
	file   *os.File
	size   int64
	header api.GridHeader
	subs   []subEntry
}

// Open opens a PFB file and indexes its subgrid records.
func (c *Codec) Open(path string) (api.SubgridReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	r := &reader{fname: path, file: file, size: fi.Size()}
	if err := r.readIndex(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

func (r *reader) readIndex() (err error) {
	defer thrower.RecoverError(&err)

	assert(r.size >= fileHeaderSize,
		fmt.Sprint("file too short for header: ", r.fname),
		api.ErrDecode)

	bf := io.NewSectionReader(r.file, 0, fileHeaderSize)
	h := &r.header
	h.X = util.ReadFloat64(bf)
	h.Y = util.ReadFloat64(bf)
	h.Z = util.ReadFloat64(bf)
	h.NX = int(util.ReadInt32(bf))
	h.NY = int(util.ReadInt32(bf))
	h.NZ = int(util.ReadInt32(bf))
	h.DX = util.ReadFloat64(bf)
	h.DY = util.ReadFloat64(bf)
	h.DZ = util.ReadFloat64(bf)
	h.NumSubgrids = int(util.ReadInt32(bf))

	assert(h.NX > 0 && h.NY > 0 && h.NZ > 0,
		fmt.Sprintf("non-positive extent (%d,%d,%d): %s", h.NX, h.NY, h.NZ, r.fname),
		api.ErrDecode)
	assert(h.NumSubgrids > 0,
		fmt.Sprint("non-positive subgrid count: ", r.fname),
		api.ErrDecode)

	r.subs = make([]subEntry, h.NumSubgrids)
	off := int64(fileHeaderSize)
	var buf [subgridHeaderSize]byte
	for i := 0; i < h.NumSubgrids; i++ {
		assert(off+subgridHeaderSize <= r.size,
			fmt.Sprintf("truncated subgrid header %d: %s", i, r.fname),
			api.ErrDecode)
		_, rerr := r.file.ReadAt(buf[:], off)
		thrower.ThrowIfError(rerr)

		sub := api.Subgrid{
			IX: int(util.Int32At(buf[:], 0)),
			IY: int(util.Int32At(buf[:], 4)),
			IZ: int(util.Int32At(buf[:], 8)),
			NX: int(util.Int32At(buf[:], 12)),
			NY: int(util.Int32At(buf[:], 16)),
			NZ: int(util.Int32At(buf[:], 20)),
			RX: int(util.Int32At(buf[:], 24)),
			RY: int(util.Int32At(buf[:], 28)),
			RZ: int(util.Int32At(buf[:], 32)),
		}
		assert(sub.NX > 0 && sub.NY > 0 && sub.NZ > 0,
			fmt.Sprintf("non-positive subgrid extent in record %d: %s", i, r.fname),
			api.ErrDecode)

		dataOff := off + subgridHeaderSize
		// Bound the cell count by division; the product of crafted
		// extents can overflow int64.
		maxCells := (r.size - dataOff) / 8
		planeCells := int64(sub.NX) * int64(sub.NY)
		assert(planeCells <= maxCells/int64(sub.NZ),
			fmt.Sprintf("truncated subgrid payload %d: %s", i, r.fname),
			api.ErrDecode)
		dataLen := planeCells * int64(sub.NZ) * 8

		r.subs[i] = subEntry{sub: sub, dataOff: dataOff}
		off = dataOff + dataLen
	}
	recoverPartition(h, subsOf(r.subs))
	return nil
}

func subsOf(entries []subEntry) []*api.Subgrid {
	subs := make([]*api.Subgrid, len(entries))
	for i := range entries {
		subs[i] = &entries[i].sub
	}
	return subs
}

// recoverPartition fills in p, q and r, which the file does not store, from
// the distinct subgrid offsets along each axis.
func recoverPartition(h *api.GridHeader, subs []*api.Subgrid) {
	xs := map[int]bool{}
	ys := map[int]bool{}
	zs := map[int]bool{}
	for _, s := range subs {
		xs[s.IX] = true
		ys[s.IY] = true
		zs[s.IZ] = true
	}
	h.P, h.Q, h.R = len(xs), len(ys), len(zs)
}

func (r *reader) Header() *api.GridHeader {
	h := r.header
	return &h
}

func (r *reader) ReadSubgrid(i int) (sg *api.Subgrid, err error) {
	defer thrower.RecoverError(&err)
	assert(i >= 0 && i < len(r.subs),
		fmt.Sprintf("subgrid index %d out of range [0,%d): %s", i, len(r.subs), r.fname),
		api.ErrDecode)

	entry := r.subs[i]
	sub := entry.sub
	sub.Data = make([]float64, sub.Cells())
	bf := io.NewSectionReader(r.file, entry.dataOff, int64(len(sub.Data))*8)
	rerr := binary.Read(bf, binary.BigEndian, sub.Data)
	thrower.ThrowIfError(rerr)
	return &sub, nil
}

func (r *reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
