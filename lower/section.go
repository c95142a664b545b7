package lower

import (
	"github.com/cocasm/casm/ast"
	"github.com/cocasm/casm/target"
)

// Section wraps a lowered CodeBlock with the name/address identity the
// object-building stage needs to distinguish an absolute section (placed
// at a fixed address, name conventionally "$abs") from a relocatable one
// (named by the programmer, placed at address 0 until linked).
type Section struct {
	*CodeBlock
	name string
}

func (s *Section) Name() string   { return s.name }
func (s *Section) Address() int64 { return s.CodeBlock.Address }

// NewAbsoluteSection lowers an AbsoluteSection node. Its name is always
// "$abs": absolute sections are identified by address, not by name, and
// several may coexist in one module.
func NewAbsoluteSection(sn ast.AbsoluteSection, ti target.Instructions) (*Section, error) {
	cb, err := NewCodeBlock(int64(sn.Address), sn.Lines, ti)
	if err != nil {
		return nil, err
	}
	return &Section{CodeBlock: cb, name: "$abs"}, nil
}

// NewRelocatableSection lowers a RelocatableSection node at address 0; its
// final address is decided by a later linking stage outside this spec's
// scope.
func NewRelocatableSection(sn ast.RelocatableSection, ti target.Instructions) (*Section, error) {
	cb, err := NewCodeBlock(0, sn.Lines, ti)
	if err != nil {
		return nil, err
	}
	return &Section{CodeBlock: cb, name: sn.Name}, nil
}
