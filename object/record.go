// Package object builds the relocatable object module: it drives template
// evaluation and section lowering, resolves varying-length segments
// against the label-visibility rules of original_source/cocas/assembler.py
// (absolute sections see every absolute label up to and including their
// own, in ascending-address order; relocatable sections see the complete
// absolute label set and nothing from other relocatables), and emits one
// ObjectSectionRecord per section.
package object

import "github.com/cocasm/casm/ast"

// HighRelocation is a high-half relocation: the two bytes at Offset hold
// the upper HighBits of an address local to this module, shifted right
// by HighBits once the section's link-time base is added.
type HighRelocation struct {
	Offset   int
	HighBits int
}

// ExternalLow and ExternalHigh are analogous to the low/high relocation
// split, but name a symbol this module does not define.
type ExternalLow struct {
	Name   string
	Offset int
}

type ExternalHigh struct {
	Name     string
	Offset   int
	HighBits int
}

// ObjectSectionRecord is one lowered, fully resolved section: its final
// bytes plus the bookkeeping a linker needs to relocate or bind it.
type ObjectSectionRecord struct {
	Address       int64
	Name          string
	Data          []byte
	RelLow        []int
	RelHigh       []HighRelocation
	Ents          map[string]int64
	ExtLow        []ExternalLow
	ExtHigh       []ExternalHigh
	CodeLocations map[int64]ast.CodeLocation
}

// ObjectModule is the complete output of Assemble: every absolute section
// (address-bound, in ascending address order) and every relocatable section
// (unordered, link-time base TBD).
type ObjectModule struct {
	Asects []ObjectSectionRecord
	Rsects []ObjectSectionRecord
}
