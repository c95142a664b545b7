// Package srcloc decodes the line-mark records a preprocessor leaves in the
// token stream ahead of an external parser, turning them into the
// (file, line, column) triples CodeLocation carries. It mirrors
// wasm/internal/readpos's role in the teacher project: a small stateful
// helper an upstream reader consults while it walks its own input, not a
// parser in its own right.
package srcloc

import "encoding/base64"

// markerPrefixLen is the number of leading bytes a line-mark's encoded
// path carries ahead of the base64 payload (an emitter-specific tag this
// package strips rather than interprets).
const markerPrefixLen = 3

// Tracker turns a sequence of line marks and parser line numbers into
// decoded source locations. Nested marks reset both the path and the
// offset (last-wins), which is the behavior original_source's
// ast_builder.visitLine_mark exhibits by unconditionally overwriting its
// two fields on every mark.
type Tracker struct {
	path   string
	offset int
}

// NewTracker returns a Tracker whose locations are relative to
// initialPath until the first line mark is observed.
func NewTracker(initialPath string) *Tracker {
	return &Tracker{path: initialPath}
}

// Mark records a line-mark record encountered at parserLine with the given
// base64-encoded (and prefixed) file path and the target line number the
// mark claims for that position.
func (t *Tracker) Mark(parserLine int, encodedPath string, targetLine int) error {
	path, err := decodePath(encodedPath)
	if err != nil {
		return err
	}
	t.path = path
	t.offset = parserLine - targetLine + 1
	return nil
}

// Resolve converts a raw parser line/column pair into a decoded location
// under the most recent mark (or the initial path, with a zero offset, if
// no mark has been seen yet).
func (t *Tracker) Resolve(parserLine, column int) Location {
	return Location{File: t.path, Line: parserLine - t.offset, Column: column}
}

// Location is the decoded (file, line, column) triple; callers typically
// convert it to ast.CodeLocation at their boundary to avoid this package
// depending on ast.
type Location struct {
	File   string
	Line   int
	Column int
}

func decodePath(encoded string) (string, error) {
	if len(encoded) < markerPrefixLen {
		return "", errShortMarker
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded[markerPrefixLen:])
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
