package lower

import (
	"fmt"

	"github.com/cocasm/casm/ast"
	"github.com/cocasm/casm/target"
)

// validateConjunctions enforces spec §4.3's compound-condition grammar:
// every condition but the last must carry "and" or "or"; the last must
// carry none.
func validateConjunctions(conds []ast.Condition) error {
	for i, cond := range conds {
		last := i == len(conds)-1
		if last && cond.Conjunction != ast.Unconditioned {
			return &ControlFlowError{Message: "final condition of a compound if must not carry a conjunction"}
		}
		if !last && cond.Conjunction == ast.Unconditioned {
			return &ControlFlowError{Message: `non-final condition must carry "and" or "or"`}
		}
	}
	return nil
}

// assembleConditional lowers if/elif/else per spec §4.3. Synthetic label
// names $<nonce>_<seq>_or{k}, $<nonce>_<seq>_then, $<nonce>_<seq>_else and
// $<nonce>_<seq>_finally (see nonceLabel) are minted once per conditional
// and shared by every condition in it; the finally label is only defined
// when there is an else branch.
func (cb *CodeBlock) assembleConditional(l ast.Conditional) error {
	if err := validateConjunctions(l.Conditions); err != nil {
		return err
	}

	orLabel := cb.nonceLabel("or")
	thenLabel := cb.nonceLabel("then")
	elseLabel := cb.nonceLabel("else")
	finallyLabel := cb.nonceLabel("finally")

	nextOr := 0
	nextOrLabel := fmt.Sprintf("%s%d", orLabel, nextOr)
	for _, cond := range l.Conditions {
		if err := cb.assembleLines(cond.Lines); err != nil {
			return err
		}
		switch cond.Conjunction {
		case ast.Unconditioned:
			if err := cb.appendBranch(l.CondLocation, cond.BranchMnemonic, elseLabel, true); err != nil {
				return err
			}
		case ast.Or:
			if err := cb.appendBranch(l.CondLocation, cond.BranchMnemonic, thenLabel, false); err != nil {
				return err
			}
			cb.appendLabel(nextOrLabel)
			nextOr++
			nextOrLabel = fmt.Sprintf("%s%d", orLabel, nextOr)
		case ast.And:
			if err := cb.appendBranch(l.CondLocation, cond.BranchMnemonic, nextOrLabel, true); err != nil {
				return err
			}
		}
	}

	cb.appendLabel(nextOrLabel)
	cb.appendLabel(thenLabel)
	if err := cb.assembleLines(l.ThenLines); err != nil {
		return err
	}

	if len(l.ElseLines) > 0 {
		if err := cb.appendBranch(l.CondLocation, target.AnythingMnemonic, finallyLabel, false); err != nil {
			return err
		}
		cb.appendLabel(elseLabel)
		if err := cb.assembleLines(l.ElseLines); err != nil {
			return err
		}
		cb.appendLabel(finallyLabel)
	} else {
		cb.appendLabel(elseLabel)
	}
	return nil
}

// assembleWhileLoop lowers spec §4.3's WhileLoop: condition re-checked
// before every iteration.
func (cb *CodeBlock) assembleWhileLoop(l ast.WhileLoop) error {
	condLabel := cb.nonceLabel("cond")
	finallyLabel := cb.nonceLabel("finally")

	cb.loopStack = append(cb.loopStack, loopFrame{condLabel: condLabel, finallyLabel: finallyLabel})
	defer cb.popLoop()

	cb.appendLabel(condLabel)
	if err := cb.assembleLines(l.ConditionLines); err != nil {
		return err
	}
	if err := cb.appendBranch(l.MnemLocation, l.BranchMnemonic, finallyLabel, true); err != nil {
		return err
	}
	if err := cb.assembleLines(l.Lines); err != nil {
		return err
	}
	if err := cb.appendBranch(l.MnemLocation, target.AnythingMnemonic, condLabel, false); err != nil {
		return err
	}
	cb.appendLabel(finallyLabel)
	return nil
}

// assembleUntilLoop lowers spec §4.3's UntilLoop: body runs once
// unconditionally, then repeats while the (inverted) condition holds.
func (cb *CodeBlock) assembleUntilLoop(l ast.UntilLoop) error {
	loopBodyLabel := cb.nonceLabel("loop_body")
	condLabel := cb.nonceLabel("cond")
	finallyLabel := cb.nonceLabel("finally")

	cb.loopStack = append(cb.loopStack, loopFrame{condLabel: condLabel, finallyLabel: finallyLabel})
	defer cb.popLoop()

	cb.appendLabel(loopBodyLabel)
	if err := cb.assembleLines(l.Lines); err != nil {
		return err
	}
	cb.appendLabel(condLabel)
	if err := cb.appendBranch(l.MnemLocation, l.BranchMnemonic, loopBodyLabel, true); err != nil {
		return err
	}
	cb.appendLabel(finallyLabel)
	return nil
}

func (cb *CodeBlock) popLoop() {
	cb.loopStack = cb.loopStack[:len(cb.loopStack)-1]
}

// assembleSaveRestore wraps the body with target-supplied save/restore
// pseudo-instructions. Neither pseudo-instruction has a source location:
// they are synthesized by the lowerer, not written by the programmer.
func (cb *CodeBlock) assembleSaveRestore(l ast.SaveRestore) error {
	save := ast.Instruction{Mnemonic: target.SaveMnemonic, Args: []ast.Argument{l.SavedReg}}
	if err := cb.assembleInstruction(save); err != nil {
		return err
	}
	if err := cb.assembleLines(l.Lines); err != nil {
		return err
	}
	restore := ast.Instruction{Mnemonic: target.RestoreMnemonic, Args: []ast.Argument{l.RestoredReg}}
	return cb.assembleInstruction(restore)
}

func (cb *CodeBlock) assembleBreak() error {
	if len(cb.loopStack) == 0 {
		return &ControlFlowError{Message: `"break" not allowed outside of a loop`}
	}
	frame := cb.loopStack[len(cb.loopStack)-1]
	return cb.appendBranch(ast.CodeLocation{}, target.AnythingMnemonic, frame.finallyLabel, false)
}

func (cb *CodeBlock) assembleContinue() error {
	if len(cb.loopStack) == 0 {
		return &ControlFlowError{Message: `"continue" not allowed outside of a loop`}
	}
	frame := cb.loopStack[len(cb.loopStack)-1]
	return cb.appendBranch(ast.CodeLocation{}, target.AnythingMnemonic, frame.condLabel, false)
}
