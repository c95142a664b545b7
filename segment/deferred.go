package segment

import "fmt"

// FillFunc produces a fixed-size segment's bytes and relocation
// contributions once every label is known. It must append exactly the
// segment's declared size to sink.
type FillFunc func(sink Sink, section Section, labels Labels, templates TemplateFields) error

// Deferred is a CodeSegment whose size is fixed at construction but whose
// bytes depend on labels not yet known (a resolved branch target, a
// template field reference). This is the Go expression of the spec's
// "BranchPlaceholder" variant: fixed in size, deferred in content.
type Deferred struct {
	size int
	fill FillFunc
}

// NewDeferred returns a Deferred segment of the given size, filled by fn
// when the section is finalized.
func NewDeferred(size int, fn FillFunc) Deferred {
	return Deferred{size: size, fill: fn}
}

func (d Deferred) Size() int { return d.size }

func (d Deferred) Fill(sink Sink, section Section, labels Labels, templates TemplateFields) error {
	counting := &countingSink{Sink: sink}
	if err := d.fill(counting, section, labels, templates); err != nil {
		return err
	}
	if counting.n != d.size {
		return fmt.Errorf("segment/deferred: fill wrote %d bytes, declared size was %d", counting.n, d.size)
	}
	return nil
}

// countingSink wraps a Sink to verify a Deferred/Varying segment honored
// its declared size.
type countingSink struct {
	Sink
	n int
}

func (c *countingSink) AppendBytes(b []byte) {
	c.n += len(b)
	c.Sink.AppendBytes(b)
}
