// Package segment defines the unit of emission a CodeBlock lowerer and the
// object builder operate on: a CodeSegment contributes a known number of
// bytes (its Size) to a section, and later fills those bytes plus any
// relocation/external-reference bookkeeping once every label in the
// program is known.
//
// The teacher's analogue is exec/internal/compile's block/patchOffset
// machinery: code is emitted before every branch target is known, and a
// later pass patches addresses in. Here that "later pass" is split into
// two: Varying.UpdateVaryingLength (shrink before addresses are final)
// and Fill (write final bytes once they are).
package segment

// Sink receives the bytes and relocation bookkeeping a CodeSegment
// produces when filled. The object package's segmentSink implements it.
type Sink interface {
	AppendBytes(b []byte)
	AddLowReloc(offset int)
	AddHighReloc(offset int, high int)
	AddLowExternal(name string, offset int)
	AddHighExternal(name string, offset int, high int)
}

// Section is the read-only view of the section a segment belongs to that
// Fill/UpdateVaryingLength may consult (its base address and name; never
// its in-progress byte buffer, which does not exist until Fill runs).
type Section interface {
	Address() int64
	Name() string
}

// Labels maps a label name to its resolved address. It is assembled by the
// object package from local section labels, already-resolved absolute
// sections, and is passed down to every segment untouched.
type Labels map[string]int64

// TemplateFields maps a template name to its field-name-to-offset map,
// including the synthetic "_" field holding the template's total size.
type TemplateFields map[string]map[string]int64

// CodeSegment is one emitted unit: a literal run of bytes, an instruction,
// or a branch. Size is queried repeatedly during resolution; Fill runs
// exactly once, after resolution has converged.
type CodeSegment interface {
	// Size returns the segment's current byte length. For a Varying
	// segment this may change across calls to UpdateVaryingLength; for
	// every other segment it is constant for the segment's lifetime.
	Size() int

	// Fill appends exactly Size() bytes to sink and records any
	// relocation or external-reference contribution those bytes need.
	Fill(sink Sink, section Section, labels Labels, templates TemplateFields) error
}

// Varying is a CodeSegment whose size may depend on label values that are
// not yet known when it is first appended (e.g. a branch whose
// displacement decides between a short and a long encoding). Targets that
// provide Varying segments must make UpdateVaryingLength monotonically
// non-increasing in size across a section's single resolution pass (see
// object.resolveVaryingLengths); the core performs one pass only.
type Varying interface {
	CodeSegment

	// UpdateVaryingLength re-evaluates the segment's size now that pos
	// (the segment's address within its section) and labels are known.
	// It must not increase Size() beyond what it reported when first
	// constructed.
	UpdateVaryingLength(pos int64, section Section, labels Labels, templates TemplateFields) error
}
