// Package formats provides line-level readers for text mesh formats.
// OBJ (Wavefront object) tokenizer producing typed geometry records.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// OBJ tokenizer errors.
var (
	ErrInvalidOBJNumber = errors.New("invalid OBJ number")
	ErrInvalidOBJIndex  = errors.New("invalid OBJ index")
	ErrShortOBJFace     = errors.New("OBJ face needs at least 3 corners")
	ErrEmptyOBJRecord   = errors.New("OBJ record has no values")
)

// OBJRecordKind identifies the class of a tokenized line.
type OBJRecordKind uint8

// Record kinds.
const (
	OBJPosition  OBJRecordKind = iota // v x y [z [w]]
	OBJTexCoord                       // vt u [v [w]]
	OBJNormal                         // vn x y z
	OBJFace                           // f a b c [d ...]
	OBJUnknown                        // any other keyword
	OBJMalformed                      // recognized keyword, unparsable payload
)

// String returns a human-readable record kind name.
func (k OBJRecordKind) String() string {
	switch k {
	case OBJPosition:
		return "Position"
	case OBJTexCoord:
		return "TexCoord"
	case OBJNormal:
		return "Normal"
	case OBJFace:
		return "Face"
	case OBJUnknown:
		return "Unknown"
	case OBJMalformed:
		return "Malformed"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// OBJCorner is one face corner as written in the file.
// Indices are 1-based when positive and relative to the end of the
// stream when negative. Zero means the index is absent.
type OBJCorner struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJRecord is a single typed line from an OBJ file.
type OBJRecord struct {
	Kind    OBJRecordKind
	Line    int         // 1-based source line
	Keyword string      // leading token
	Values  []float32   // Position, TexCoord, Normal components
	Corners []OBJCorner // Face corners
	Err     error       // set for OBJMalformed
}

// OBJRecords lazily tokenizes an in-memory OBJ file. Blank lines and
// comments produce no record.
func OBJRecords(data []byte) iter.Seq[OBJRecord] {
	return func(yield func(OBJRecord) bool) {
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" || text[0] == '#' {
				continue
			}
			if !yield(parseOBJLine(line, text)) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(OBJRecord{Kind: OBJMalformed, Line: line + 1, Err: err})
		}
	}
}

// parseOBJLine expects text to be trimmed and non-empty.
func parseOBJLine(line int, text string) OBJRecord {
	fields := strings.Fields(text)
	rec := OBJRecord{Line: line, Keyword: fields[0]}
	args := fields[1:]

	switch rec.Keyword {
	case "v":
		rec.Kind = OBJPosition
	case "vt":
		rec.Kind = OBJTexCoord
	case "vn":
		rec.Kind = OBJNormal
	case "f":
		corners, err := parseCorners(args)
		if err != nil {
			return malformed(rec, err)
		}
		rec.Kind = OBJFace
		rec.Corners = corners
		return rec
	default:
		rec.Kind = OBJUnknown
		return rec
	}

	values, err := parseFloats(args)
	if err != nil {
		return malformed(rec, err)
	}
	rec.Values = values
	return rec
}

func malformed(rec OBJRecord, err error) OBJRecord {
	rec.Kind = OBJMalformed
	rec.Err = fmt.Errorf("line %d (%s): %w", rec.Line, rec.Keyword, err)
	return rec
}

func parseFloats(args []string) ([]float32, error) {
	if len(args) == 0 {
		return nil, ErrEmptyOBJRecord
	}
	values := make([]float32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOBJNumber, a)
		}
		values[i] = float32(f)
	}
	return values, nil
}

func parseCorners(args []string) ([]OBJCorner, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%w, got %d", ErrShortOBJFace, len(args))
	}
	corners := make([]OBJCorner, len(args))
	for i, a := range args {
		c, err := parseCorner(a)
		if err != nil {
			return nil, err
		}
		corners[i] = c
	}
	return corners, nil
}

// parseCorner accepts p, p/t, p//n and p/t/n.
func parseCorner(s string) (OBJCorner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return OBJCorner{}, fmt.Errorf("%w: %q", ErrInvalidOBJIndex, s)
	}

	var c OBJCorner
	var err error
	if c.Position, err = parseIndex(parts[0], true); err != nil {
		return OBJCorner{}, err
	}
	if len(parts) > 1 {
		if c.TexCoord, err = parseIndex(parts[1], false); err != nil {
			return OBJCorner{}, err
		}
	}
	if len(parts) > 2 {
		if c.Normal, err = parseIndex(parts[2], false); err != nil {
			return OBJCorner{}, err
		}
	}
	return c, nil
}

func parseIndex(s string, required bool) (int, error) {
	if s == "" {
		if required {
			return 0, fmt.Errorf("%w: missing position index", ErrInvalidOBJIndex)
		}
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOBJIndex, s)
	}
	return int(v), nil
}
