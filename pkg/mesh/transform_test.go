package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestComputeBounds(t *testing.T) {
	s := NewAttributeStore(Dim3)
	s.Push(1, -2, 3)
	s.Push(-1, 4, 0)
	s.Push(0, 0, 5)

	b, ok := ComputeBounds(s)
	if !ok {
		t.Fatal("expected bounds for non-empty store")
	}
	if !b.Min.ApproxEqual(mgl32.Vec3{-1, -2, 0}) {
		t.Errorf("unexpected min %v", b.Min)
	}
	if !b.Max.ApproxEqual(mgl32.Vec3{1, 4, 5}) {
		t.Errorf("unexpected max %v", b.Max)
	}
	if !b.Center().ApproxEqual(mgl32.Vec3{0, 1, 2.5}) {
		t.Errorf("unexpected center %v", b.Center())
	}

	if _, ok := ComputeBounds(NewAttributeStore(Dim3)); ok {
		t.Error("expected no bounds for empty store")
	}
}

func TestNormalizeCenter(t *testing.T) {
	s := NewAttributeStore(Dim2)
	s.Push(10, 10)
	s.Push(14, 12)

	NormalizeCenter(s)

	want := [][]float32{{-0.5, -0.25}, {0.5, 0.25}}
	for i, w := range want {
		got := s.Get(i)
		if !mgl32.FloatEqual(got[0], w[0]) || !mgl32.FloatEqual(got[1], w[1]) {
			t.Errorf("element %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestNormalizeCenter_Degenerate(t *testing.T) {
	s := NewAttributeStore(Dim3)
	s.Push(3, 3, 3)
	NormalizeCenter(s)
	if got := s.Get(0); got[0] != 3 {
		t.Errorf("expected single point to be left unchanged, got %v", got)
	}
}

func TestFlipV(t *testing.T) {
	s := NewAttributeStore(Dim2)
	s.Push(0.25, 0.25)
	s.Push(1, 0)

	FlipV(s)

	if got := s.Get(0); got[0] != 0.25 || got[1] != 0.75 {
		t.Errorf("unexpected element 0: %v", got)
	}
	if got := s.Get(1); got[1] != 1 {
		t.Errorf("unexpected element 1: %v", got)
	}

	one := NewAttributeStore(Dim1)
	one.Push(0.3)
	FlipV(one)
	if one.Get(0)[0] != 0.3 {
		t.Error("expected 1D texcoords to be left unchanged")
	}
}
