// Package api is common to the different implementations of the PFB codec
// (portable or accelerated).
package api

import (
	"errors"
)

// Mode selects the shape of an assembled read result.
type Mode string

const (
	// ModeFull returns the dense grid, (nz, ny, nx) when vertical-first.
	ModeFull Mode = "full"
	// ModeFlat returns the dense grid flattened to one dimension.
	ModeFlat Mode = "flat"
	// ModeTiled returns one slab per subgrid, leading axis n_subgrids.
	ModeTiled Mode = "tiled"
)

// OuterAxis names the axis along which multiple files are concatenated.
type OuterAxis string

const (
	// OuterZ stacks files along the vertical (spatial) axis.
	OuterZ OuterAxis = "z"
	// OuterTime stacks files as independent time slices.
	OuterTime OuterAxis = "time"
)

var (
	ErrUnsupportedMode = errors.New("unsupported mode or outer axis")
	ErrDecode          = errors.New("malformed pfb file")
)

// GridHeader is the metadata for one file's logical grid.
//
// Extent equals the sum of the subgrid local extents along each axis of the
// partition; subgrids tile the extent with no gaps or overlaps.
type GridHeader struct {
	X, Y, Z     float64 // physical origin
	NX, NY, NZ  int     // cells along each axis
	DX, DY, DZ  float64 // cell sizes
	P, Q, R     int     // partitions along each axis, P*Q*R == NumSubgrids
	NumSubgrids int
}

// Cells returns the total cell count of the grid.
func (h *GridHeader) Cells() int {
	return h.NX * h.NY * h.NZ
}

// HeaderKeys is the full set of keys a populated HeaderMap carries.
var HeaderKeys = []string{
	"x", "y", "z", "nx", "ny", "nz", "dx", "dy", "dz", "p", "q", "r", "n_subgrids",
}

// HeaderMap is the flat mapping form of GridHeader. A nil value marks a field
// the codec could not supply; the key itself is never omitted.
type HeaderMap map[string]any

// NewHeaderMap returns a HeaderMap with every documented key present and
// marked unknown.
func NewHeaderMap() HeaderMap {
	m := make(HeaderMap, len(HeaderKeys))
	for _, k := range HeaderKeys {
		m[k] = nil
	}
	return m
}

// Populate fills the mapping from the decoded header.
func (m HeaderMap) Populate(h *GridHeader) {
	m["x"], m["y"], m["z"] = h.X, h.Y, h.Z
	m["nx"], m["ny"], m["nz"] = h.NX, h.NY, h.NZ
	m["dx"], m["dy"], m["dz"] = h.DX, h.DY, h.DZ
	m["p"], m["q"], m["r"] = h.P, h.Q, h.R
	m["n_subgrids"] = h.NumSubgrids
}

// Subgrid is one partition's data. It is read into a transient buffer by the
// codec and consumed immediately by the assembler.
type Subgrid struct {
	IX, IY, IZ int // offset of the subgrid within the full extent, in cells
	NX, NY, NZ int // local extent
	RX, RY, RZ int // refinement levels, carried through unused

	// Data holds NX*NY*NZ values, x varying fastest, then y, then z.
	Data []float64
}

// Cells returns the subgrid's cell count.
func (s *Subgrid) Cells() int {
	return s.NX * s.NY * s.NZ
}

// SubgridReader decodes one file's header and subgrid records.
type SubgridReader interface {
	// Header returns the decoded grid header, with the partition counts
	// recovered from the subgrid offsets.
	Header() *GridHeader

	// ReadSubgrid decodes the i'th subgrid record, in file storage order.
	ReadSubgrid(i int) (*Subgrid, error)

	// Close releases the underlying file. Safe to call more than once.
	Close() error
}

// SubgridWriter emits one file's header and subgrid records.
type SubgridWriter interface {
	// WriteSubgrid appends the next subgrid record. Records must be written
	// in ascending subgrid index order and must match the header's
	// NumSubgrids count exactly by Close time.
	WriteSubgrid(s *Subgrid) error

	// Close flushes and closes the file.
	Close() error
}

// Codec is one interchangeable implementation of the PFB binary format.
// All implementations must produce identical headers and payloads for
// identical input files; only performance may differ.
type Codec interface {
	// Name identifies the implementation for diagnostics.
	Name() string

	// Open opens a PFB file for reading.
	Open(path string) (SubgridReader, error)

	// Create opens a PFB file for writing with the given header.
	Create(path string, h *GridHeader) (SubgridWriter, error)
}
