// Package template computes field offsets for record templates. A
// template section never emits bytes: it is purely a size/offset
// computation over the target's data-defining directives, consulted later
// by instructions that reference `template.field`.
package template

import (
	"fmt"

	"github.com/cocasm/casm/ast"
	"github.com/cocasm/casm/target"
)

// Template is the evaluated field-offset table for one template section.
// Fields["_"] holds the template's total size.
type Template struct {
	Name   string
	Fields map[string]int64
}

// Evaluate walks a template section's lines and computes its field
// offsets. It never invokes Fill on the segments a directive produces —
// only their Size is needed.
func Evaluate(sn ast.TemplateSection, ti target.Instructions) (*Template, error) {
	fields := make(map[string]int64)
	directives := ti.AssemblyDirectives()
	temp := make(target.TempStorage)

	var size int64
	for _, line := range sn.Lines {
		switch l := line.(type) {
		case ast.LabelDecl:
			if l.External {
				return nil, &Error{Location: l.Location, Template: sn.Name,
					Message: fmt.Sprintf("external label %q not allowed in a template", l.Name)}
			}
			if l.Entry {
				return nil, &Error{Location: l.Location, Template: sn.Name,
					Message: fmt.Sprintf("entry label %q not allowed in a template", l.Name)}
			}
			if _, exists := fields[l.Name]; exists {
				return nil, &Error{Location: l.Location, Template: sn.Name,
					Message: fmt.Sprintf("duplicate label %q declaration", l.Name)}
			}
			fields[l.Name] = size

		case ast.Instruction:
			if !directives[l.Mnemonic] {
				return nil, &Error{Location: l.Location, Template: sn.Name,
					Message: fmt.Sprintf("mnemonic %q is not an assembly directive", l.Mnemonic)}
			}
			segs, err := ti.AssembleInstruction(l, temp)
			if err != nil {
				return nil, &Error{Location: l.Location, Template: sn.Name, Message: err.Error()}
			}
			for _, seg := range segs {
				size += int64(seg.Size())
			}

		default:
			return nil, &Error{Template: sn.Name,
				Message: fmt.Sprintf("only labels and directives are allowed in a template, got %T", line)}
		}
	}

	fields["_"] = size
	return &Template{Name: sn.Name, Fields: fields}, nil
}
