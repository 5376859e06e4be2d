package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box. Unused axes of 1D and 2D
// positions are zero.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Size returns Max - Min.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func toVec3(v []float32) mgl32.Vec3 {
	var out mgl32.Vec3
	copy(out[:], v)
	return out
}

// ComputeBounds returns the bounds of every element in s. The second
// result is false when s is empty.
func ComputeBounds(s *AttributeStore) (Bounds, bool) {
	if s == nil || s.Len() == 0 {
		return Bounds{}, false
	}
	first := toVec3(s.Get(0))
	b := Bounds{Min: first, Max: first}
	for i := 1; i < s.Len(); i++ {
		p := toVec3(s.Get(i))
		for j := 0; j < 3; j++ {
			b.Min[j] = min(b.Min[j], p[j])
			b.Max[j] = max(b.Max[j], p[j])
		}
	}
	return b, true
}

// NormalizeCenter scales s uniformly so its largest extent is 1 and moves
// its center to the origin, leaving every component in [-0.5, 0.5].
func NormalizeCenter(s *AttributeStore) {
	b, ok := ComputeBounds(s)
	if !ok {
		return
	}
	size := b.Size()
	extent := max(size.X(), size.Y(), size.Z())
	if extent == 0 {
		return
	}
	center := b.Center()
	dim := int(s.Dim())
	for i := 0; i < s.Len(); i++ {
		p := toVec3(s.Get(i)).Sub(center).Mul(1 / extent)
		s.Set(i, p[:dim])
	}
}

// FlipV replaces the second texcoord component with 1 - v. Stores with
// fewer than two components are left unchanged.
func FlipV(s *AttributeStore) {
	if s == nil || s.Dim() < Dim2 {
		return
	}
	for i := 0; i < s.Len(); i++ {
		uv := s.Get(i)
		uv[1] = 1 - uv[1]
		s.Set(i, uv)
	}
}
