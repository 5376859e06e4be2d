package mesh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Packed buffer file errors.
var (
	ErrInvalidPackedMagic       = errors.New("invalid packed mesh magic: expected 'OMSH'")
	ErrUnsupportedPackedVersion = errors.New("unsupported packed mesh version")
	ErrTruncatedPackedData      = errors.New("truncated packed mesh data")
	ErrInvalidPackedCounts      = errors.New("invalid packed mesh counts")
	ErrPackedIndexOutOfRange    = errors.New("packed index out of range of vertex buffers")
)

const (
	packedMagic   = "OMSH"
	packedVersion = 1
)

// packedHeader is the fixed-size prefix of a packed mesh file.
type packedHeader struct {
	Magic       [4]byte
	Version     uint8
	PositionDim uint8
	NormalDim   uint8
	TexCoordDim uint8
	IndexWidth  uint8
	_           [3]byte
	VertexCount uint32
	IndexCount  uint32
}

// Packed is a mesh read back from a packed buffer file.
type Packed struct {
	positions *AttributeStore
	normals   *AttributeStore
	texCoords *AttributeStore
	width     IndexWidth
	indices   []uint32
}

// Positions returns the position buffer.
func (p *Packed) Positions() *AttributeStore { return p.positions }

// Normals returns the normal buffer, or nil if the file had none.
func (p *Packed) Normals() *AttributeStore { return p.normals }

// TexCoords returns the texcoord buffer, or nil if the file had none.
func (p *Packed) TexCoords() *AttributeStore { return p.texCoords }

// IndexWidth returns the width the indices were stored at.
func (p *Packed) IndexWidth() IndexWidth { return p.width }

// IndexCount returns the number of indices, a multiple of 3.
func (p *Packed) IndexCount() int { return len(p.indices) }

// IndexAt returns index i widened to uint32.
func (p *Packed) IndexAt(i int) uint32 { return p.indices[i] }

// VertexCount returns the number of vertices in each buffer.
func (p *Packed) VertexCount() int { return p.positions.Len() }

func storeDim(s *AttributeStore) uint8 {
	if s == nil {
		return 0
	}
	return uint8(s.Dim())
}

// WriteBinary writes m as little-endian flat arrays behind a small header.
// Indices are stored at the mesh's own width.
func WriteBinary(w io.Writer, m Mesh) error {
	bw := bufio.NewWriter(w)

	h := packedHeader{
		Version:     packedVersion,
		PositionDim: storeDim(m.Positions()),
		NormalDim:   storeDim(m.Normals()),
		TexCoordDim: storeDim(m.TexCoords()),
		IndexWidth:  uint8(m.IndexWidth()),
		VertexCount: uint32(m.VertexCount()),
		IndexCount:  uint32(m.IndexCount()),
	}
	copy(h.Magic[:], packedMagic)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range []*AttributeStore{m.Positions(), m.Normals(), m.TexCoords()} {
		if s == nil {
			continue
		}
		if err := binary.Write(bw, binary.LittleEndian, s.Values()); err != nil {
			return fmt.Errorf("writing attributes: %w", err)
		}
	}

	if err := writeIndices(bw, m); err != nil {
		return fmt.Errorf("writing indices: %w", err)
	}
	return bw.Flush()
}

func writeIndices(w io.Writer, m Mesh) error {
	n := m.IndexCount()
	switch m.IndexWidth() {
	case Width8:
		buf := make([]uint8, n)
		for i := range buf {
			buf[i] = uint8(m.IndexAt(i))
		}
		return binary.Write(w, binary.LittleEndian, buf)
	case Width16:
		buf := make([]uint16, n)
		for i := range buf {
			buf[i] = uint16(m.IndexAt(i))
		}
		return binary.Write(w, binary.LittleEndian, buf)
	case Width32:
		buf := make([]uint32, n)
		for i := range buf {
			buf[i] = m.IndexAt(i)
		}
		return binary.Write(w, binary.LittleEndian, buf)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidWidth, m.IndexWidth())
	}
}

// ReadBinary reads a file produced by WriteBinary. Counts in the header are
// checked against the remaining input when its size is known, and every
// index must name a vertex in the buffers.
func ReadBinary(r io.Reader) (*Packed, error) {
	avail, sized := remaining(r)
	br := bufio.NewReader(r)

	var h packedHeader
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, packedReadError("header", err)
	}
	if string(h.Magic[:]) != packedMagic {
		return nil, ErrInvalidPackedMagic
	}
	if h.Version != packedVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPackedVersion, h.Version)
	}

	opts := Options{
		PositionDim: Dimension(h.PositionDim),
		NormalDim:   Dimension(h.NormalDim),
		TexCoordDim: Dimension(h.TexCoordDim),
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	width := IndexWidth(h.IndexWidth)
	if !width.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	if h.IndexCount%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrInvalidPackedCounts, h.IndexCount)
	}

	floats := uint64(h.PositionDim) + uint64(h.NormalDim) + uint64(h.TexCoordDim)
	need := uint64(h.VertexCount)*floats*4 + uint64(h.IndexCount)*uint64(width/8)
	if sized && need > uint64(avail-packedHeaderSize) {
		return nil, fmt.Errorf("%w: header needs %d payload bytes, %d present",
			ErrTruncatedPackedData, need, avail-packedHeaderSize)
	}

	b := newBuffers(opts)
	p := &Packed{positions: b.positions, normals: b.normals, texCoords: b.texCoords, width: width}
	for _, s := range []*AttributeStore{p.positions, p.normals, p.texCoords} {
		if s == nil {
			continue
		}
		values, err := readChunked[float32](br, int(h.VertexCount)*int(s.dim))
		if err != nil {
			return nil, packedReadError("attributes", err)
		}
		s.values = values
	}

	indices, err := readIndices(br, width, int(h.IndexCount))
	if err != nil {
		return nil, packedReadError("indices", err)
	}
	for i, v := range indices {
		if v >= h.VertexCount {
			return nil, fmt.Errorf("%w: index %d at position %d, %d vertices",
				ErrPackedIndexOutOfRange, v, i, h.VertexCount)
		}
	}
	p.indices = indices
	return p, nil
}

// packedHeaderSize is the encoded size of packedHeader.
const packedHeaderSize = 20

// remaining reports how many bytes r still holds, when that can be known
// without consuming it.
func remaining(r io.Reader) (int64, bool) {
	switch v := r.(type) {
	case interface{ Len() int }:
		return int64(v.Len()), true
	case io.Seeker:
		cur, err := v.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, false
		}
		end, err := v.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, false
		}
		if _, err := v.Seek(cur, io.SeekStart); err != nil {
			return 0, false
		}
		return end - cur, true
	}
	return 0, false
}

func packedReadError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncatedPackedData, what)
	}
	return fmt.Errorf("reading %s: %w", what, err)
}

// packedChunk bounds how many values are decoded per read.
const packedChunk = 1 << 14

// readChunked decodes n little-endian values, growing the result only as
// data arrives.
func readChunked[T uint8 | uint16 | uint32 | float32](r io.Reader, n int) ([]T, error) {
	out := make([]T, 0, min(n, packedChunk))
	buf := make([]T, min(n, packedChunk))
	for len(out) < n {
		chunk := buf[:min(n-len(out), len(buf))]
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func readIndices(r io.Reader, width IndexWidth, n int) ([]uint32, error) {
	switch width {
	case Width8:
		return widen(readChunked[uint8](r, n))
	case Width16:
		return widen(readChunked[uint16](r, n))
	default:
		return readChunked[uint32](r, n)
	}
}

func widen[T uint8 | uint16](buf []T, err error) ([]uint32, error) {
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(buf))
	for i, v := range buf {
		out[i] = uint32(v)
	}
	return out, nil
}
