package lower

import "github.com/cocasm/casm/ast"

// LabelError reports a malformed label declaration: a duplicate name
// across labels/entries/externals, a label marked both entry and
// external, or a user label starting with the reserved "$" prefix.
type LabelError struct {
	Location ast.CodeLocation
	Name     string
	Message  string
}

func (e *LabelError) Error() string {
	return "label " + e.Name + ": " + e.Message
}

// ControlFlowError reports a break/continue outside any enclosing loop,
// or a compound condition whose conjunction placement is invalid (a
// non-final condition missing "and"/"or", or a final condition carrying
// one).
type ControlFlowError struct {
	Location ast.CodeLocation
	Message  string
}

func (e *ControlFlowError) Error() string {
	return "control flow: " + e.Message
}

// FinishError wraps a target's Instructions.Finish failure, bound to the
// location of the last line in the CodeBlock where it was raised (the
// synthetic line has no location of its own).
type FinishError struct {
	Location ast.CodeLocation
	Err      error
}

func (e *FinishError) Error() string {
	return "unfinished instruction state at " + e.Location.String() + ": " + e.Err.Error()
}

func (e *FinishError) Unwrap() error { return e.Err }
