package util

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/batchatco/go-thrower"
)

// PFB files are big-endian regardless of host order.

// MustRead wraps binary.Read with BigEndian and throws an error if it fails.
func MustRead(r io.Reader, data any) {
	err := binary.Read(r, binary.BigEndian, data)
	thrower.ThrowIfError(err)
}

// MustWrite wraps binary.Write with BigEndian and throws an error if it fails.
func MustWrite(w io.Writer, data any) {
	err := binary.Write(w, binary.BigEndian, data)
	thrower.ThrowIfError(err)
}

// ReadInt32 reads one big-endian int32 and throws on failure.
func ReadInt32(r io.Reader) int32 {
	var v int32
	MustRead(r, &v)
	return v
}

// ReadFloat64 reads one big-endian float64 and throws on failure.
func ReadFloat64(r io.Reader) float64 {
	var v float64
	MustRead(r, &v)
	return v
}

// WriteInt32 writes one big-endian int32 and throws on failure.
func WriteInt32(w io.Writer, v int32) {
	MustWrite(w, v)
}

// WriteFloat64 writes one big-endian float64 and throws on failure.
func WriteFloat64(w io.Writer, v float64) {
	MustWrite(w, v)
}

// Float64At decodes a big-endian float64 from b at byte offset off.
func Float64At(b []byte, off int) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b[off : off+8]))
}

// Int32At decodes a big-endian int32 from b at byte offset off.
func Int32At(b []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(b[off : off+4]))
}
