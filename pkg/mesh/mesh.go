// Package mesh turns OBJ geometry into deduplicated vertex buffers and an
// index buffer for indexed triangle rendering.
package mesh

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/pkg/formats"
)

// Load errors.
var (
	ErrInvalidDimension = errors.New("invalid stream dimension")
	ErrIndexOverflow    = errors.New("vertex index does not fit index type")
	ErrIndexOutOfRange  = errors.New("corner index out of range")
	ErrInvalidWidth     = errors.New("unsupported index width")
)

// Index is the set of integer types an index buffer can hold.
type Index interface {
	~uint8 | ~uint16 | ~uint32
}

// IndexWidth is the bit width of an index type.
type IndexWidth uint8

// Supported index widths.
const (
	Width8  IndexWidth = 8
	Width16 IndexWidth = 16
	Width32 IndexWidth = 32
)

// Valid reports whether w is a supported width.
func (w IndexWidth) Valid() bool {
	return w == Width8 || w == Width16 || w == Width32
}

// Max returns the largest index value representable at width w.
func (w IndexWidth) Max() uint64 {
	return 1<<uint(w) - 1
}

func widthOf[I Index]() IndexWidth {
	var zero I
	return IndexWidth(unsafe.Sizeof(zero) * 8)
}

// Options configures which streams a load produces.
type Options struct {
	PositionDim Dimension // required, 1..3
	TexCoordDim Dimension // DimNone disables texcoord output
	NormalDim   Dimension // DimNone or Dim3
	Logger      *zap.Logger
}

// DefaultOptions returns 3D positions with normals and 2D texcoords.
func DefaultOptions() Options {
	return Options{
		PositionDim: Dim3,
		TexCoordDim: Dim2,
		NormalDim:   Dim3,
	}
}

// Validate checks the stream dimensions.
func (o Options) Validate() error {
	if !o.PositionDim.Valid() {
		return fmt.Errorf("%w: position %d", ErrInvalidDimension, o.PositionDim)
	}
	if o.TexCoordDim != DimNone && !o.TexCoordDim.Valid() {
		return fmt.Errorf("%w: texcoord %d", ErrInvalidDimension, o.TexCoordDim)
	}
	if o.NormalDim != DimNone && o.NormalDim != Dim3 {
		return fmt.Errorf("%w: normal %d", ErrInvalidDimension, o.NormalDim)
	}
	return nil
}

// Mesh is the width-independent view of loaded buffers.
type Mesh interface {
	Positions() *AttributeStore
	Normals() *AttributeStore
	TexCoords() *AttributeStore
	IndexWidth() IndexWidth
	IndexCount() int
	IndexAt(i int) uint32
	VertexCount() int
}

// Loader is a Mesh that can be (re)loaded from OBJ data.
type Loader interface {
	Mesh
	Load(r io.Reader) ([]Warning, error)
	LoadBytes(data []byte) ([]Warning, error)
	LoadFile(path string) ([]Warning, error)
	Stats() Stats
}

// NewLoader returns a Data of the index type matching width.
func NewLoader(width IndexWidth, opts Options) (Loader, error) {
	switch width {
	case Width8:
		return newLoader[uint8](opts)
	case Width16:
		return newLoader[uint16](opts)
	case Width32:
		return newLoader[uint32](opts)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
}

func newLoader[I Index](opts Options) (Loader, error) {
	d, err := New[I](opts)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Stats summarizes the last successful load.
type Stats struct {
	Corners   int // triangle corners emitted
	Triangles int
	Vertices  int // distinct vertices after deduplication
	Positions int // raw position records accepted
	Normals   int
	TexCoords int
	Warnings  int
}

// ReuseRatio returns corners per distinct vertex.
func (s Stats) ReuseRatio() float64 {
	if s.Vertices == 0 {
		return 0
	}
	return float64(s.Corners) / float64(s.Vertices)
}

// Data holds the compacted output of a load.
type Data[I Index] struct {
	opts      Options
	log       *zap.Logger
	positions *AttributeStore
	normals   *AttributeStore
	texCoords *AttributeStore
	indices   []I
	stats     Stats
}

// New creates an empty Data for the given options.
func New[I Index](opts Options) (*Data[I], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	d := &Data[I]{opts: opts, log: log}
	d.publish(newBuffers(opts), nil, Stats{})
	return d, nil
}

// Positions returns the compacted position buffer.
func (d *Data[I]) Positions() *AttributeStore { return d.positions }

// Normals returns the compacted normal buffer, or nil if not requested.
func (d *Data[I]) Normals() *AttributeStore { return d.normals }

// TexCoords returns the compacted texcoord buffer, or nil if not requested.
func (d *Data[I]) TexCoords() *AttributeStore { return d.texCoords }

// Indices returns the index buffer. Its length is a multiple of 3.
func (d *Data[I]) Indices() []I { return d.indices }

// IndexWidth returns the bit width of I.
func (d *Data[I]) IndexWidth() IndexWidth { return widthOf[I]() }

// IndexCount returns len(Indices()).
func (d *Data[I]) IndexCount() int { return len(d.indices) }

// IndexAt returns index i widened to uint32.
func (d *Data[I]) IndexAt(i int) uint32 { return uint32(d.indices[i]) }

// VertexCount returns the number of distinct vertices.
func (d *Data[I]) VertexCount() int { return d.positions.Len() }

// Stats returns statistics about the last successful load.
func (d *Data[I]) Stats() Stats { return d.stats }

// LoadFile reads and loads an OBJ file from disk.
func (d *Data[I]) LoadFile(path string) ([]Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d.LoadBytes(data)
}

// Load reads r to the end before processing any record.
func (d *Data[I]) Load(r io.Reader) ([]Warning, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return d.LoadBytes(buf.Bytes())
}

// LoadBytes parses an in-memory OBJ file and replaces the buffers of d.
// On error d is left unchanged.
func (d *Data[I]) LoadBytes(data []byte) ([]Warning, error) {
	acc := newAccumulator(d.opts)
	acc.consume(formats.OBJRecords(data))
	if acc.err != nil {
		return acc.warnings, acc.err
	}

	out, indices, err := compact[I](d.opts, acc)
	if err != nil {
		return acc.warnings, err
	}

	stats := Stats{
		Corners:   len(indices),
		Triangles: len(indices) / 3,
		Vertices:  out.positions.Len(),
		Positions: acc.positions.Len(),
		Warnings:  len(acc.warnings),
	}
	if acc.normals != nil {
		stats.Normals = acc.normals.Len()
	}
	if acc.texCoords != nil {
		stats.TexCoords = acc.texCoords.Len()
	}
	d.publish(out, indices, stats)

	d.log.Debug("obj loaded",
		zap.Int("corners", stats.Corners),
		zap.Int("vertices", stats.Vertices),
		zap.Int("warnings", stats.Warnings),
		zap.Uint8("index_width", uint8(d.IndexWidth())))
	return acc.warnings, nil
}

func (d *Data[I]) publish(b buffers, indices []I, stats Stats) {
	d.positions = b.positions
	d.normals = b.normals
	d.texCoords = b.texCoords
	d.indices = indices
	d.stats = stats
}

// buffers groups the per-kind stores of one load.
type buffers struct {
	positions *AttributeStore
	normals   *AttributeStore
	texCoords *AttributeStore
}

func newBuffers(opts Options) buffers {
	b := buffers{positions: NewAttributeStore(opts.PositionDim)}
	if opts.NormalDim != DimNone {
		b.normals = NewAttributeStore(opts.NormalDim)
	}
	if opts.TexCoordDim != DimNone {
		b.texCoords = NewAttributeStore(opts.TexCoordDim)
	}
	return b
}
