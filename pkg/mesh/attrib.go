package mesh

import "fmt"

// Dimension is the number of float32 components per logical element.
type Dimension uint8

// Supported dimensions. DimNone disables an optional stream.
const (
	DimNone Dimension = 0
	Dim1    Dimension = 1
	Dim2    Dimension = 2
	Dim3    Dimension = 3
)

// Valid reports whether d can size an attribute store.
func (d Dimension) Valid() bool {
	return d >= Dim1 && d <= Dim3
}

// AttributeStore is a flat float32 buffer with a fixed stride.
// Element i occupies values[i*dim : i*dim+dim].
type AttributeStore struct {
	dim    Dimension
	values []float32
}

// NewAttributeStore creates an empty store. It panics on an invalid dimension.
func NewAttributeStore(dim Dimension) *AttributeStore {
	if !dim.Valid() {
		panic(fmt.Sprintf("mesh: invalid attribute dimension %d", dim))
	}
	return &AttributeStore{dim: dim}
}

// Dim returns the component count per element.
func (s *AttributeStore) Dim() Dimension {
	return s.dim
}

// Len returns the number of logical elements.
func (s *AttributeStore) Len() int {
	return len(s.values) / int(s.dim)
}

// Values returns the underlying flat buffer.
func (s *AttributeStore) Values() []float32 {
	return s.values
}

// Push appends one element. len(v) must equal Dim.
func (s *AttributeStore) Push(v ...float32) {
	s.checkArity(len(v))
	s.values = append(s.values, v...)
}

// Get returns a copy of element i.
func (s *AttributeStore) Get(i int) []float32 {
	d := int(s.dim)
	out := make([]float32, d)
	copy(out, s.values[i*d:i*d+d])
	return out
}

// Set overwrites element i in place. len(v) must equal Dim.
func (s *AttributeStore) Set(i int, v []float32) {
	s.checkArity(len(v))
	d := int(s.dim)
	copy(s.values[i*d:i*d+d], v)
}

// ResizeTo grows or shrinks the store to exactly n elements.
// New slots are zero.
func (s *AttributeStore) ResizeTo(n int) {
	size := n * int(s.dim)
	if size <= cap(s.values) {
		old := len(s.values)
		s.values = s.values[:size]
		if size > old {
			clear(s.values[old:])
		}
		return
	}
	grown := make([]float32, size)
	copy(grown, s.values)
	s.values = grown
}

func (s *AttributeStore) checkArity(n int) {
	if n != int(s.dim) {
		panic(fmt.Sprintf("mesh: element arity %d does not match dimension %d", n, s.dim))
	}
}
