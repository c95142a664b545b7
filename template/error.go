package template

import "github.com/cocasm/casm/ast"

// Error reports a violation of a template section's restricted grammar:
// a duplicate label, an entry/external label (neither is allowed in a
// template), or a mnemonic outside the target's assembly directives.
type Error struct {
	Location ast.CodeLocation
	Template string
	Message  string
}

func (e *Error) Error() string {
	return "template " + e.Template + ": " + e.Message
}
