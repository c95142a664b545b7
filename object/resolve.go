package object

import (
	"strings"

	"github.com/cocasm/casm/ast"
	"github.com/cocasm/casm/lower"
	"github.com/cocasm/casm/segment"
)

// gatherLocalLabels copies a section's label-to-address map, dropping the
// synthetic "$..." labels structured lowering mints for its own branch
// targets: those never need to be visible outside the section that
// created them (original_source/cocas/assembler.py's gather_local_labels
// applies the same filter for the same reason).
func gatherLocalLabels(cb *lower.CodeBlock) segment.Labels {
	out := make(segment.Labels, len(cb.Labels))
	for name, addr := range cb.Labels {
		if strings.HasPrefix(name, "$") {
			continue
		}
		out[name] = addr
	}
	return out
}

// resolveVaryingLengths performs the single required pass over a
// section's segments: it recomputes each segment's address from the
// running total of (possibly already-shrunk) sizes, invokes
// UpdateVaryingLength on every segment.Varying as it is reached, and
// replays LabelOrder/LocationOrder against that running total so labels
// and source locations land on their true final addresses rather than
// the upper-bound ones lowering originally recorded.
//
// external holds every label this section is allowed to see (the
// accumulated absolute set for an absolute section, or the complete
// absolute set for a relocatable one); it is not mutated. The returned
// label map additionally contains this section's own labels at their
// resolved addresses, the combination an ObjectSectionRecord's Ents is
// drawn from.
func resolveVaryingLengths(sec *lower.Section, external segment.Labels, templates segment.TemplateFields) (segment.Labels, map[int64]ast.CodeLocation, error) {
	cb := sec.CodeBlock
	working := make(segment.Labels, len(external)+len(cb.Labels))
	for name, addr := range external {
		working[name] = addr
	}
	for name, addr := range cb.Labels {
		working[name] = addr
	}

	marks := cb.LabelOrder
	markIdx := 0
	locs := cb.LocationOrder
	locIdx := 0
	finalLocations := make(map[int64]ast.CodeLocation, len(locs))

	pos := cb.Address
	for segIdx, seg := range cb.Segments {
		for markIdx < len(marks) && marks[markIdx].SegmentIndex == segIdx {
			working[marks[markIdx].Name] = pos
			markIdx++
		}
		for locIdx < len(locs) && locs[locIdx].SegmentIndex == segIdx {
			finalLocations[pos] = locs[locIdx].Location
			locIdx++
		}
		if v, ok := seg.(segment.Varying); ok {
			if err := v.UpdateVaryingLength(pos, sec, working, templates); err != nil {
				return nil, nil, &ResolutionError{Section: sec.Name(), Err: err}
			}
		}
		pos += int64(seg.Size())
	}
	for markIdx < len(marks) {
		working[marks[markIdx].Name] = pos
		markIdx++
	}
	for locIdx < len(locs) {
		finalLocations[pos] = locs[locIdx].Location
		locIdx++
	}

	return working, finalLocations, nil
}

// ResolutionError reports a Varying segment's UpdateVaryingLength failure
// during resolution, such as a size that grew in violation of
// segment.Varying's monotonic-size contract.
type ResolutionError struct {
	Section string
	Err     error
}

func (e *ResolutionError) Error() string {
	return "resolving section " + e.Section + ": " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error { return e.Err }
