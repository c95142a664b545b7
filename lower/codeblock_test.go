package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cocasm/casm/ast"
	"github.com/cocasm/casm/segment"
	"github.com/cocasm/casm/target"
)

// fakeTarget is a minimal one-byte-per-instruction target used to exercise
// the lowerer without depending on any concrete instruction set. Every
// ordinary instruction is one opcode byte; every branch is two bytes: a
// condition byte (0 for unconditional, 1 for "flag", 0x81 for its
// inverse) followed by a one-byte placeholder patched once the target
// label resolves, which these tests never need to resolve since they
// only inspect the lowered Segments/Labels, not filled bytes.
type fakeTarget struct{}

func (fakeTarget) AssemblyDirectives() map[string]bool { return map[string]bool{"dc": true, "ds": true} }

func (fakeTarget) AssembleInstruction(instr ast.Instruction, _ target.TempStorage) ([]segment.CodeSegment, error) {
	return []segment.CodeSegment{segment.NewLiteral([]byte{0xAA})}, nil
}

func (fakeTarget) MakeBranchInstruction(loc ast.CodeLocation, mnemonic string, targetLabel string, inverse bool) ([]segment.CodeSegment, error) {
	cond := byte(0)
	switch {
	case mnemonic == target.AnythingMnemonic:
		cond = 0
	case inverse:
		cond = 0x81
	default:
		cond = 1
	}
	label := targetLabel
	return []segment.CodeSegment{
		segment.NewLiteral([]byte{cond}),
		segment.NewDeferred(1, func(sink segment.Sink, _ segment.Section, labels segment.Labels, _ segment.TemplateFields) error {
			addr, ok := labels[label]
			if !ok {
				addr = 0
			}
			sink.AppendBytes([]byte{byte(addr)})
			return nil
		}),
	}, nil
}

func (fakeTarget) Finish(target.TempStorage) error { return nil }

func instr(mnemonic string) ast.Instruction {
	return ast.Instruction{Mnemonic: mnemonic}
}

func cond(mnemonic string, conj ast.Conjunction, lines ...ast.Line) ast.Condition {
	return ast.Condition{Lines: lines, BranchMnemonic: mnemonic, Conjunction: conj}
}

func TestSimpleIfWithoutElse(t *testing.T) {
	lines := []ast.Line{
		ast.Conditional{
			Conditions: []ast.Condition{cond("flag", ast.Unconditioned, instr("cmp"))},
			ThenLines:  []ast.Line{instr("body")},
		},
	}
	cb, err := NewCodeBlock(0, lines, fakeTarget{})
	require.NoError(t, err)
	// cmp(1) + branch(2) + body(1) = 4 bytes; or0/then land at 3, and else
	// lands at 4, right after the body, since there is no else body to skip.
	require.Equal(t, int64(4), cb.Size)
	require.Len(t, cb.Labels, 3) // or0, then, else all present
}

func TestIfElse(t *testing.T) {
	lines := []ast.Line{
		ast.Conditional{
			Conditions: []ast.Condition{cond("flag", ast.Unconditioned, instr("cmp"))},
			ThenLines:  []ast.Line{instr("thenbody")},
			ElseLines:  []ast.Line{instr("elsebody")},
		},
	}
	cb, err := NewCodeBlock(0, lines, fakeTarget{})
	require.NoError(t, err)
	// cmp(1) + branch-to-else(2) + thenbody(1) + branch-to-finally(2) + elsebody(1) = 7
	require.Equal(t, int64(7), cb.Size)
}

func TestCompoundOrCondition(t *testing.T) {
	lines := []ast.Line{
		ast.Conditional{
			Conditions: []ast.Condition{
				cond("flagA", ast.Or, instr("a")),
				cond("flagB", ast.Unconditioned, instr("b")),
			},
			ThenLines: []ast.Line{instr("body")},
		},
	}
	_, err := NewCodeBlock(0, lines, fakeTarget{})
	require.NoError(t, err)
}

func TestCompoundConditionRejectsMisplacedConjunction(t *testing.T) {
	lines := []ast.Line{
		ast.Conditional{
			Conditions: []ast.Condition{
				cond("flagA", ast.Unconditioned, instr("a")),
				cond("flagB", ast.Unconditioned, instr("b")),
			},
			ThenLines: []ast.Line{instr("body")},
		},
	}
	_, err := NewCodeBlock(0, lines, fakeTarget{})
	require.Error(t, err)
	var cfe *ControlFlowError
	require.ErrorAs(t, err, &cfe)
}

func TestWhileLoopLowering(t *testing.T) {
	lines := []ast.Line{
		ast.WhileLoop{
			ConditionLines: []ast.Line{instr("check")},
			BranchMnemonic: "flag",
			Lines:          []ast.Line{instr("body")},
		},
	}
	cb, err := NewCodeBlock(0, lines, fakeTarget{})
	require.NoError(t, err)
	// check(1) + branch-to-finally(2) + body(1) + branch-to-cond(2) = 6
	require.Equal(t, int64(6), cb.Size)
	require.Len(t, cb.Labels, 2) // cond, finally
}

func TestUntilLoopLowering(t *testing.T) {
	lines := []ast.Line{
		ast.UntilLoop{
			Lines:          []ast.Line{instr("body")},
			BranchMnemonic: "flag",
		},
	}
	cb, err := NewCodeBlock(0, lines, fakeTarget{})
	require.NoError(t, err)
	// body(1) + branch-to-loopbody(2) = 3
	require.Equal(t, int64(3), cb.Size)
}

func TestBreakAndContinueInsideWhileLoop(t *testing.T) {
	lines := []ast.Line{
		ast.WhileLoop{
			ConditionLines: []ast.Line{instr("check")},
			BranchMnemonic: "flag",
			Lines: []ast.Line{
				ast.Break{},
				ast.Continue{},
			},
		},
	}
	_, err := NewCodeBlock(0, lines, fakeTarget{})
	require.NoError(t, err)
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	lines := []ast.Line{ast.Break{}}
	_, err := NewCodeBlock(0, lines, fakeTarget{})
	require.Error(t, err)
	var cfe *ControlFlowError
	require.ErrorAs(t, err, &cfe)
}

func TestContinueOutsideLoopIsAnError(t *testing.T) {
	lines := []ast.Line{ast.Continue{}}
	_, err := NewCodeBlock(0, lines, fakeTarget{})
	require.Error(t, err)
	var cfe *ControlFlowError
	require.ErrorAs(t, err, &cfe)
}

func TestSaveRestoreLowersToThreeInstructions(t *testing.T) {
	lines := []ast.Line{
		ast.SaveRestore{
			SavedReg: ast.Register{Index: 1},
			Lines:    []ast.Line{instr("body")},
		},
	}
	cb, err := NewCodeBlock(0, lines, fakeTarget{})
	require.NoError(t, err)
	require.Equal(t, int64(3), cb.Size)
}

func TestLabelDeclarationErrors(t *testing.T) {
	t.Run("entry and external", func(t *testing.T) {
		lines := []ast.Line{ast.LabelDecl{Name: "x", Entry: true, External: true}}
		_, err := NewCodeBlock(0, lines, fakeTarget{})
		require.Error(t, err)
		var le *LabelError
		require.ErrorAs(t, err, &le)
	})

	t.Run("duplicate", func(t *testing.T) {
		lines := []ast.Line{
			ast.LabelDecl{Name: "x"},
			ast.LabelDecl{Name: "x"},
		}
		_, err := NewCodeBlock(0, lines, fakeTarget{})
		require.Error(t, err)
	})

	t.Run("reserved dollar prefix", func(t *testing.T) {
		lines := []ast.Line{ast.LabelDecl{Name: "$reserved"}}
		_, err := NewCodeBlock(0, lines, fakeTarget{})
		require.Error(t, err)
	})

	t.Run("external label is recorded in Exts", func(t *testing.T) {
		lines := []ast.Line{ast.LabelDecl{Name: "ext", External: true}}
		cb, err := NewCodeBlock(0, lines, fakeTarget{})
		require.NoError(t, err)
		require.True(t, cb.Exts["ext"])
	})
}

func TestNonceLabelsAreUniqueAcrossIdenticalOffsets(t *testing.T) {
	// The inner conditional sits at the start of the outer one's condition
	// lines, so both mint their labels at offset 0.
	inner := ast.Conditional{
		Conditions: []ast.Condition{cond("flag", ast.Unconditioned)},
		ThenLines:  []ast.Line{},
	}
	lines := []ast.Line{
		ast.Conditional{
			Conditions: []ast.Condition{cond("flag", ast.Unconditioned, inner)},
			ThenLines:  []ast.Line{},
		},
	}
	cb, err := NewCodeBlock(0, lines, fakeTarget{})
	require.NoError(t, err)
	require.Len(t, cb.Labels, 6)
}
