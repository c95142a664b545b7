// Package ast defines the tagged-variant program tree consumed by the
// lower and template packages. Values here are produced by an external
// parser; this package only declares their shape.
package ast

import "fmt"

// CodeLocation identifies a source position an instruction or label came
// from. The zero value denotes a synthetic location, used for lines the
// lowerer itself inserts (break/continue branches) that have no source
// counterpart.
type CodeLocation struct {
	File   string
	Line   int
	Column int
}

// Zero reports whether loc is the synthetic (no source) location.
func (loc CodeLocation) Zero() bool {
	return loc == CodeLocation{}
}

func (loc CodeLocation) String() string {
	if loc.Zero() {
		return "<synthetic>"
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}
