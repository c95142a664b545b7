// Package lower implements the CodeBlock lowering engine: the conversion
// of structured lines (if/while/until/save-restore/break/continue) into a
// linear sequence of code segments, synthetic labels, and conditional
// branches. It is the Go counterpart of original_source/cocas/code_block.py.
package lower

import (
	"fmt"
	"strings"

	"github.com/cocasm/casm/ast"
	"github.com/cocasm/casm/segment"
	"github.com/cocasm/casm/target"
)

// loopFrame is one entry of a CodeBlock's loop stack: the labels break and
// continue target while lowering the loop's body.
type loopFrame struct {
	condLabel    string
	finallyLabel string
}

// LabelMark records a label's position as "right before segment index
// SegmentIndex" rather than as a fixed byte offset. Segments minted
// during lowering carry their upper-bound size (see segment.Varying);
// once the object package shrinks them during resolution, a label's true
// offset is whatever the running total is when SegmentIndex is reached,
// not the address recorded here in Labels. Labels/cb.Size during
// lowering use the upper-bound sizes purely to decide things lowering
// itself must decide immediately, such as branch polarity; they are not
// the final answer for byte addresses.
type LabelMark struct {
	Name         string
	SegmentIndex int
}

// LocationMark is CodeLocations' analogue of LabelMark: the source
// location attached to whatever instruction becomes segment index
// SegmentIndex.
type LocationMark struct {
	SegmentIndex int
	Location     ast.CodeLocation
}

// CodeBlock is the lowering state for one section (or, during recursive
// lowering, one nested structured construct's line list). Address and
// Size give the upper-bound byte position of the next segment to be
// appended, valid during lowering; Labels mirrors that upper bound.
// LabelOrder and LocationOrder are what a resolution pass replays to
// recover final, post-shrink addresses.
type CodeBlock struct {
	Address       int64
	Size          int64
	Segments      []segment.CodeSegment
	Labels        map[string]int64
	Ents          map[string]bool
	Exts          map[string]bool
	LabelOrder    []LabelMark
	LocationOrder []LocationMark

	target    target.Instructions
	temp      target.TempStorage
	loopStack []loopFrame
	nonceSeq  int
}

// NewCodeBlock lowers lines into a CodeBlock rooted at address, using ti
// to encode instructions and branches. It returns an error on the first
// violation encountered (the block is not independently recoverable).
func NewCodeBlock(address int64, lines []ast.Line, ti target.Instructions) (*CodeBlock, error) {
	cb := &CodeBlock{
		Address: address,
		Labels:  make(map[string]int64),
		Ents:    make(map[string]bool),
		Exts:    make(map[string]bool),
		target:  ti,
		temp:    make(target.TempStorage),
	}
	if err := cb.assembleLines(lines); err != nil {
		return nil, err
	}
	if err := ti.Finish(cb.temp); err != nil {
		return nil, &FinishError{Location: lastLineLocation(lines), Err: err}
	}
	return cb, nil
}

func lastLineLocation(lines []ast.Line) ast.CodeLocation {
	if len(lines) == 0 {
		return ast.CodeLocation{}
	}
	if loc, ok := lineLocation(lines[len(lines)-1]); ok {
		return loc
	}
	return ast.CodeLocation{}
}

// lineLocation returns the source location attached to a line, for the
// variants that carry one. Structured constructs carry a location used
// for their own synthesized branch instructions (CondLocation,
// MnemLocation) rather than a location describing "this line" as a whole,
// so only ast.Instruction and ast.LabelDecl contribute to LocationOrder.
func lineLocation(line ast.Line) (ast.CodeLocation, bool) {
	switch l := line.(type) {
	case ast.Instruction:
		return l.Location, true
	case ast.LabelDecl:
		return l.Location, true
	default:
		return ast.CodeLocation{}, false
	}
}

func (cb *CodeBlock) appendLabel(name string) {
	cb.Labels[name] = cb.Address + cb.Size
	cb.LabelOrder = append(cb.LabelOrder, LabelMark{Name: name, SegmentIndex: len(cb.Segments)})
}

func (cb *CodeBlock) appendSegments(segs []segment.CodeSegment) {
	for _, seg := range segs {
		cb.Segments = append(cb.Segments, seg)
		cb.Size += int64(seg.Size())
	}
}

func (cb *CodeBlock) appendBranch(loc ast.CodeLocation, mnemonic, label string, inverse bool) error {
	segs, err := cb.target.MakeBranchInstruction(loc, mnemonic, label, inverse)
	if err != nil {
		return err
	}
	cb.appendSegments(segs)
	return nil
}

// nonceLabel mints a synthetic label name unique for the lifetime of this
// CodeBlock: the spec's nonce (current address+size) combined with a
// monotonic counter, so two constructs that start at the same offset
// (e.g. nested empty ones) never collide.
func (cb *CodeBlock) nonceLabel(suffix string) string {
	cb.nonceSeq++
	return fmt.Sprintf("$%d_%d_%s", cb.Address+cb.Size, cb.nonceSeq, suffix)
}

func (cb *CodeBlock) assembleLines(lines []ast.Line) error {
	for _, line := range lines {
		if loc, ok := lineLocation(line); ok {
			cb.LocationOrder = append(cb.LocationOrder, LocationMark{SegmentIndex: len(cb.Segments), Location: loc})
		}
		var err error
		switch l := line.(type) {
		case ast.LabelDecl:
			err = cb.assembleLabelDecl(l)
		case ast.Instruction:
			err = cb.assembleInstruction(l)
		case ast.Conditional:
			err = cb.assembleConditional(l)
		case ast.WhileLoop:
			err = cb.assembleWhileLoop(l)
		case ast.UntilLoop:
			err = cb.assembleUntilLoop(l)
		case ast.SaveRestore:
			err = cb.assembleSaveRestore(l)
		case ast.Break:
			err = cb.assembleBreak()
		case ast.Continue:
			err = cb.assembleContinue()
		default:
			err = fmt.Errorf("lower: unhandled line type %T", line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (cb *CodeBlock) assembleLabelDecl(l ast.LabelDecl) error {
	if l.Entry && l.External {
		return &LabelError{Location: l.Location, Name: l.Name,
			Message: "cannot be both external and entry"}
	}
	if _, ok := cb.Labels[l.Name]; ok {
		return &LabelError{Location: l.Location, Name: l.Name, Message: "duplicate declaration"}
	}
	if cb.Ents[l.Name] || cb.Exts[l.Name] {
		return &LabelError{Location: l.Location, Name: l.Name, Message: "duplicate declaration"}
	}
	if !l.External && strings.HasPrefix(l.Name, "$") {
		return &LabelError{Location: l.Location, Name: l.Name,
			Message: "user labels must not start with '$'"}
	}

	if l.External {
		cb.Exts[l.Name] = true
		return nil
	}
	cb.appendLabel(l.Name)
	if l.Entry {
		cb.Ents[l.Name] = true
	}
	return nil
}

func (cb *CodeBlock) assembleInstruction(l ast.Instruction) error {
	segs, err := cb.target.AssembleInstruction(l, cb.temp)
	if err != nil {
		return err
	}
	cb.appendSegments(segs)
	return nil
}
