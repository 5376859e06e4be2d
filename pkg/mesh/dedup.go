package mesh

import (
	"fmt"
	"math"
)

// vertexKey is the identity of one output vertex. Components are stored
// as IEEE-754 bit patterns so equality is exact and total: -0 and +0 are
// distinct and NaNs compare by payload. Unused components stay zero.
type vertexKey struct {
	position    [3]uint32
	normal      [3]uint32
	texCoord    [3]uint32
	hasNormal   bool
	hasTexCoord bool
}

func packBits(dst *[3]uint32, v []float32) {
	for i, f := range v {
		dst[i] = math.Float32bits(f)
	}
}

func unpackBits(src [3]uint32, dim Dimension) []float32 {
	out := make([]float32, dim)
	for i := range out {
		out[i] = math.Float32frombits(src[i])
	}
	return out
}

// keyOf builds the identity of c from the raw streams. Streams that were
// not requested, or indices absent from the corner, are left out.
func (a *accumulator) keyOf(c corner) vertexKey {
	var k vertexKey
	packBits(&k.position, a.positions.Get(c.position))
	if a.normals != nil && c.normal != absent {
		packBits(&k.normal, a.normals.Get(c.normal))
		k.hasNormal = true
	}
	if a.texCoords != nil && c.texCoord != absent {
		packBits(&k.texCoord, a.texCoords.Get(c.texCoord))
		k.hasTexCoord = true
	}
	return k
}

// compact assigns each distinct vertex identity a dense index in
// first-seen order and scatters the identities into fresh stores.
func compact[I Index](opts Options, a *accumulator) (buffers, []I, error) {
	limit := widthOf[I]().Max()

	seen := make(map[vertexKey]uint32)
	var order []vertexKey
	indices := make([]I, 0, len(a.corners))

	for _, c := range a.corners {
		key := a.keyOf(c)
		idx, ok := seen[key]
		if !ok {
			if uint64(len(order)) > limit {
				return buffers{}, nil, fmt.Errorf("%w: vertex %d exceeds %d-bit index",
					ErrIndexOverflow, len(order), widthOf[I]())
			}
			idx = uint32(len(order))
			seen[key] = idx
			order = append(order, key)
		}
		indices = append(indices, I(idx))
	}

	out := newBuffers(opts)
	out.positions.ResizeTo(len(order))
	if out.normals != nil {
		out.normals.ResizeTo(len(order))
	}
	if out.texCoords != nil {
		out.texCoords.ResizeTo(len(order))
	}

	for i, key := range order {
		out.positions.Set(i, unpackBits(key.position, opts.PositionDim))
		if key.hasNormal {
			out.normals.Set(i, unpackBits(key.normal, opts.NormalDim))
		}
		if key.hasTexCoord {
			out.texCoords.Set(i, unpackBits(key.texCoord, opts.TexCoordDim))
		}
	}
	return out, indices, nil
}
