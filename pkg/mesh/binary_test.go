package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestWriteReadBinary(t *testing.T) {
	tests := []struct {
		name  string
		width IndexWidth
		opts  Options
	}{
		{"8-bit positions and texcoords", Width8, Options{PositionDim: Dim3, TexCoordDim: Dim2}},
		{"16-bit all streams", Width16, DefaultOptions()},
		{"32-bit 2D positions", Width32, Options{PositionDim: Dim2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLoader(tt.width, tt.opts)
			if err != nil {
				t.Fatalf("NewLoader failed: %v", err)
			}
			src := squareOBJ
			if tt.opts.PositionDim == Dim2 {
				src = "v 0 0\nv 1 0\nv 1 1\nv 0 1\nf 1 2 3 4\n"
			}
			if _, err := l.LoadBytes([]byte(src)); err != nil {
				t.Fatalf("LoadBytes failed: %v", err)
			}

			var buf bytes.Buffer
			if err := WriteBinary(&buf, l); err != nil {
				t.Fatalf("WriteBinary failed: %v", err)
			}

			p, err := ReadBinary(&buf)
			if err != nil {
				t.Fatalf("ReadBinary failed: %v", err)
			}
			if p.IndexWidth() != tt.width {
				t.Errorf("expected width %d, got %d", tt.width, p.IndexWidth())
			}
			if p.VertexCount() != l.VertexCount() || p.IndexCount() != l.IndexCount() {
				t.Fatalf("counts differ: %d/%d vs %d/%d",
					p.VertexCount(), p.IndexCount(), l.VertexCount(), l.IndexCount())
			}
			for i := 0; i < l.IndexCount(); i++ {
				if p.IndexAt(i) != l.IndexAt(i) {
					t.Errorf("index %d: expected %d, got %d", i, l.IndexAt(i), p.IndexAt(i))
				}
			}
			if !floatsEqual(p.Positions().Values(), l.Positions().Values()) {
				t.Error("positions differ after round trip")
			}
			if (p.Normals() == nil) != (l.Normals() == nil) || (p.TexCoords() == nil) != (l.TexCoords() == nil) {
				t.Error("optional stream presence differs after round trip")
			}
		})
	}
}

func floatsEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReadBinary_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedPackedData},
		{"bad magic", append([]byte("XXXX"), make([]byte, 16)...), ErrInvalidPackedMagic},
		{"bad version", append([]byte("OMSH\x09"), make([]byte, 15)...), ErrUnsupportedPackedVersion},
		{"vertex count beyond payload", packedFile(t, 1<<25, Width32, nil, nil), ErrTruncatedPackedData},
		{"index count beyond payload", packedFile(t, 1, Width32, []float32{0, 0, 0}, nil, 3<<28), ErrTruncatedPackedData},
		{"partial triangle", packedFile(t, 1, Width8, []float32{0, 0, 0}, []byte{0, 0}), ErrInvalidPackedCounts},
		{"index past vertices", packedFile(t, 1, Width8, []float32{0, 0, 0}, []byte{0, 9, 200}), ErrPackedIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBinary(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// packedFile builds a positions-only packed file by hand. The optional
// count overrides the header index count.
func packedFile(t *testing.T, vertices uint32, width IndexWidth, positions []float32, indices []byte, count ...uint32) []byte {
	t.Helper()
	h := packedHeader{
		Version:     packedVersion,
		PositionDim: uint8(Dim3),
		IndexWidth:  uint8(width),
		VertexCount: vertices,
		IndexCount:  uint32(len(indices)),
	}
	copy(h.Magic[:], packedMagic)
	if len(count) > 0 {
		h.IndexCount = count[0]
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		t.Fatalf("writing header: %v", err)
	}
	if len(positions) > 0 {
		if err := binary.Write(&buf, binary.LittleEndian, positions); err != nil {
			t.Fatalf("writing positions: %v", err)
		}
	}
	buf.Write(indices)
	return buf.Bytes()
}

func TestReadBinary_UnsizedStream(t *testing.T) {
	// io.MultiReader hides the input length, so counts are only caught by
	// running out of data.
	data := packedFile(t, 1<<25, Width32, nil, nil)
	_, err := ReadBinary(io.MultiReader(bytes.NewReader(data)))
	if !errors.Is(err, ErrTruncatedPackedData) {
		t.Errorf("expected ErrTruncatedPackedData, got %v", err)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestReadBinary_ReadError(t *testing.T) {
	errDisk := errors.New("disk on fire")
	_, err := ReadBinary(failingReader{errDisk})
	if !errors.Is(err, errDisk) {
		t.Errorf("expected wrapped read error, got %v", err)
	}
	if errors.Is(err, ErrTruncatedPackedData) {
		t.Errorf("read failure reported as truncation: %v", err)
	}
}

func TestReadBinary_Truncated(t *testing.T) {
	l, _ := NewLoader(Width16, Options{PositionDim: Dim3, TexCoordDim: Dim2})
	if _, err := l.LoadBytes([]byte(squareOBJ)); err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteBinary(&buf, l); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}

	data := buf.Bytes()[:buf.Len()-3]
	if _, err := ReadBinary(bytes.NewReader(data)); !errors.Is(err, ErrTruncatedPackedData) {
		t.Errorf("expected ErrTruncatedPackedData, got %v", err)
	}
}
