package object

// segmentSink adapts one ObjectSectionRecord to the segment.Sink contract
// for a single segment's Fill call. Every offset a segment reports is
// relative to the bytes that segment itself is about to append; base
// rebases those into the record's absolute Data coordinates. A fresh
// segmentSink is handed to each segment so base always reflects the
// record's length at the moment that segment's Fill runs.
type segmentSink struct {
	rec  *ObjectSectionRecord
	base int
}

func (s *segmentSink) AppendBytes(b []byte) {
	s.rec.Data = append(s.rec.Data, b...)
}

func (s *segmentSink) AddLowReloc(offset int) {
	s.rec.RelLow = append(s.rec.RelLow, s.base+offset)
}

func (s *segmentSink) AddHighReloc(offset int, highBits int) {
	s.rec.RelHigh = append(s.rec.RelHigh, HighRelocation{Offset: s.base + offset, HighBits: highBits})
}

func (s *segmentSink) AddLowExternal(name string, offset int) {
	s.rec.ExtLow = append(s.rec.ExtLow, ExternalLow{Name: name, Offset: s.base + offset})
}

func (s *segmentSink) AddHighExternal(name string, offset int, highBits int) {
	s.rec.ExtHigh = append(s.rec.ExtHigh, ExternalHigh{Name: name, Offset: s.base + offset, HighBits: highBits})
}
