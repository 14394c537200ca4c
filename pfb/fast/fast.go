// Package fast implements the PFB codec by mapping the whole file into memory
// and decoding records directly out of the mapping. It is the accelerated
// counterpart of the portable codec and is only available where mmap is;
// callers resolve it through Probe and fall back to portable when it fails.
package fast

import (
	"errors"
	"fmt"
	"os"

	"github.com/hydroframe/go-native-pfb/internal"
	"github.com/hydroframe/go-native-pfb/pfb/api"
	"github.com/hydroframe/go-native-pfb/pfb/portable"
	"github.com/hydroframe/go-native-pfb/pfb/util"
)

const (
	fileHeaderSize    = 64
	subgridHeaderSize = 36
)

var (
	ErrNotSupported = errors.New("mmap not supported on this platform")

	logger = internal.NewLogger()
)

// Codec is the accelerated implementation of api.Codec.
type Codec struct{}

// Probe verifies the platform supports the accelerated codec and returns it.
// A non-nil error means the caller must fall back to the portable codec.
func Probe() (*Codec, error) {
	if err := probeMmap(); err != nil {
		logger.Infof("accelerated codec unavailable: %v", err)
		return nil, err
	}
	return &Codec{}, nil
}

func (c *Codec) Name() string {
	return "accelerated"
}

type subEntry struct {
	sub     api.Subgrid // header fields only, Data left nil
	dataOff int
}

type reader struct {
	fname  string
	data   []byte
	header api.GridHeader
	subs   []subEntry
}

// Open maps the file and indexes its subgrid records.
func (c *Codec) Open(path string) (api.SubgridReader, error) {
	data, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	r := &reader{fname: path, data: data}
	if err := r.readIndex(); err != nil {
		unmapFile(data)
		return nil, err
	}
	return r, nil
}

// Create has nothing to gain from mmap, since the file grows as records are
// appended. It shares the portable write path, which satisfies the same
// contract.
func (c *Codec) Create(path string, h *api.GridHeader) (api.SubgridWriter, error) {
	return portable.NewCodec().Create(path, h)
}

func (r *reader) readIndex() error {
	if len(r.data) < fileHeaderSize {
		return fmt.Errorf("%w: file too short for header: %s", api.ErrDecode, r.fname)
	}
	b := r.data
	h := &r.header
	h.X = util.Float64At(b, 0)
	h.Y = util.Float64At(b, 8)
	h.Z = util.Float64At(b, 16)
	h.NX = int(util.Int32At(b, 24))
	h.NY = int(util.Int32At(b, 28))
	h.NZ = int(util.Int32At(b, 32))
	h.DX = util.Float64At(b, 36)
	h.DY = util.Float64At(b, 44)
	h.DZ = util.Float64At(b, 52)
	h.NumSubgrids = int(util.Int32At(b, 60))

	if h.NX <= 0 || h.NY <= 0 || h.NZ <= 0 {
		return fmt.Errorf("%w: non-positive extent (%d,%d,%d): %s",
			api.ErrDecode, h.NX, h.NY, h.NZ, r.fname)
	}
	if h.NumSubgrids <= 0 {
		return fmt.Errorf("%w: non-positive subgrid count: %s", api.ErrDecode, r.fname)
	}

	r.subs = make([]subEntry, h.NumSubgrids)
	off := fileHeaderSize
	xs := map[int]bool{}
	ys := map[int]bool{}
	zs := map[int]bool{}
	for i := 0; i < h.NumSubgrids; i++ {
		if off+subgridHeaderSize > len(b) {
			return fmt.Errorf("%w: truncated subgrid header %d: %s", api.ErrDecode, i, r.fname)
		}
		sub := api.Subgrid{
			IX: int(util.Int32At(b, off)),
			IY: int(util.Int32At(b, off+4)),
			IZ: int(util.Int32At(b, off+8)),
			NX: int(util.Int32At(b, off+12)),
			NY: int(util.Int32At(b, off+16)),
			NZ: int(util.Int32At(b, off+20)),
			RX: int(util.Int32At(b, off+24)),
			RY: int(util.Int32At(b, off+28)),
			RZ: int(util.Int32At(b, off+32)),
		}
		if sub.NX <= 0 || sub.NY <= 0 || sub.NZ <= 0 {
			return fmt.Errorf("%w: non-positive subgrid extent in record %d: %s",
				api.ErrDecode, i, r.fname)
		}
		dataOff := off + subgridHeaderSize
		// Bound the cell count by division; the product of crafted
		// extents can overflow.
		maxCells := int64(len(b)-dataOff) / 8
		planeCells := int64(sub.NX) * int64(sub.NY)
		if planeCells > maxCells/int64(sub.NZ) {
			return fmt.Errorf("%w: truncated subgrid payload %d: %s", api.ErrDecode, i, r.fname)
		}
		dataLen := int(planeCells) * sub.NZ * 8
		r.subs[i] = subEntry{sub: sub, dataOff: dataOff}
		off = dataOff + dataLen
		xs[sub.IX] = true
		ys[sub.IY] = true
		zs[sub.IZ] = true
	}
	h.P, h.Q, h.R = len(xs), len(ys), len(zs)
	return nil
}

func (r *reader) Header() *api.GridHeader {
	h := r.header
	return &h
}

func (r *reader) ReadSubgrid(i int) (*api.Subgrid, error) {
	if r.data == nil {
		return nil, os.ErrClosed
	}
	if i < 0 || i >= len(r.subs) {
		return nil, fmt.Errorf("%w: subgrid index %d out of range [0,%d): %s",
			api.ErrDecode, i, len(r.subs), r.fname)
	}
	entry := r.subs[i]
	sub := entry.sub
	sub.Data = make([]float64, sub.Cells())
	for j := range sub.Data {
		sub.Data[j] = util.Float64At(r.data, entry.dataOff+j*8)
	}
	return &sub, nil
}

func (r *reader) Close() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	return unmapFile(data)
}
