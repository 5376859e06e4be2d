package mesh

import (
	"fmt"
	"iter"

	"github.com/Faultbox/objmesh/pkg/formats"
)

const absent = -1

// corner holds resolved 0-based stream indices. absent marks a missing
// optional index.
type corner struct {
	position int
	texCoord int
	normal   int
}

// accumulator gathers the raw streams and triangulated corners of one load.
type accumulator struct {
	positions *AttributeStore
	normals   *AttributeStore // nil when not requested
	texCoords *AttributeStore // nil when not requested
	corners   []corner
	warnings  []Warning
	err       error
}

func newAccumulator(opts Options) *accumulator {
	b := newBuffers(opts)
	return &accumulator{
		positions: b.positions,
		normals:   b.normals,
		texCoords: b.texCoords,
	}
}

// consume processes records in file order and stops at the first error.
func (a *accumulator) consume(records iter.Seq[formats.OBJRecord]) {
	for rec := range records {
		switch rec.Kind {
		case formats.OBJPosition:
			a.push(a.positions, rec)
		case formats.OBJNormal:
			if a.normals != nil {
				a.push(a.normals, rec)
			}
		case formats.OBJTexCoord:
			if a.texCoords != nil {
				a.push(a.texCoords, rec)
			}
		case formats.OBJFace:
			a.err = a.face(rec)
		case formats.OBJMalformed:
			a.warn(rec.Line, WarnMalformed, rec.Err.Error())
		default:
			a.warn(rec.Line, WarnUnknownKeyword, fmt.Sprintf("ignoring %q", rec.Keyword))
		}
		if a.err != nil {
			return
		}
	}
}

func (a *accumulator) warn(line int, kind WarningKind, msg string) {
	a.warnings = append(a.warnings, Warning{Line: line, Kind: kind, Message: msg})
}

func (a *accumulator) push(s *AttributeStore, rec formats.OBJRecord) {
	if len(rec.Values) != int(s.Dim()) {
		a.warn(rec.Line, WarnArityMismatch,
			fmt.Sprintf("%s has %d components, want %d", rec.Keyword, len(rec.Values), s.Dim()))
		return
	}
	s.Push(rec.Values...)
}

// face resolves the corners of a triangle or quad. A quad (c0,c1,c2,c3)
// becomes (c0,c1,c2) and (c2,c3,c0).
func (a *accumulator) face(rec formats.OBJRecord) error {
	n := len(rec.Corners)
	if n > 4 {
		a.warn(rec.Line, WarnUnsupportedPolygon, fmt.Sprintf("face has %d corners, at most 4 supported", n))
		return nil
	}

	var resolved [4]corner
	for i, c := range rec.Corners {
		r, err := a.resolve(c)
		if err != nil {
			return fmt.Errorf("line %d, corner %d: %w", rec.Line, i+1, err)
		}
		resolved[i] = r
	}

	a.corners = append(a.corners, resolved[0], resolved[1], resolved[2])
	if n == 4 {
		a.corners = append(a.corners, resolved[2], resolved[3], resolved[0])
	}
	return nil
}

func (a *accumulator) resolve(c formats.OBJCorner) (corner, error) {
	out := corner{texCoord: absent, normal: absent}

	var err error
	if out.position, err = resolveIndex("position", c.Position, a.positions.Len()); err != nil {
		return corner{}, err
	}
	if a.texCoords != nil && c.TexCoord != 0 {
		if out.texCoord, err = resolveIndex("texcoord", c.TexCoord, a.texCoords.Len()); err != nil {
			return corner{}, err
		}
	}
	if a.normals != nil && c.Normal != 0 {
		if out.normal, err = resolveIndex("normal", c.Normal, a.normals.Len()); err != nil {
			return corner{}, err
		}
	}
	return out, nil
}

// resolveIndex converts a 1-based or negative index against the current
// stream length.
func resolveIndex(stream string, idx, length int) (int, error) {
	var r int
	if idx < 0 {
		r = length + idx
	} else {
		r = idx - 1
	}
	if r < 0 || r >= length {
		return 0, fmt.Errorf("%w: %s %d with %d defined", ErrIndexOutOfRange, stream, idx, length)
	}
	return r, nil
}
