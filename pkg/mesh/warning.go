package mesh

import "fmt"

// WarningKind classifies a dropped record.
type WarningKind uint8

// Warning kinds.
const (
	WarnUnknownKeyword     WarningKind = iota // keyword not handled by the loader
	WarnMalformed                             // tokenizer could not parse the line
	WarnArityMismatch                         // component count differs from the configured dimension
	WarnUnsupportedPolygon                    // face with more than 4 corners
)

// String returns a short name for the kind.
func (k WarningKind) String() string {
	switch k {
	case WarnUnknownKeyword:
		return "unknown-keyword"
	case WarnMalformed:
		return "malformed"
	case WarnArityMismatch:
		return "arity-mismatch"
	case WarnUnsupportedPolygon:
		return "unsupported-polygon"
	default:
		return fmt.Sprintf("warning(%d)", k)
	}
}

// Warning reports a record that was ignored during a load.
type Warning struct {
	Line    int
	Kind    WarningKind
	Message string
}

// String formats the warning as "line N: kind: message".
func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Message)
}
