package segment

// Literal is a CodeSegment whose bytes are already fully known at
// construction time: no label in the program affects its content (plain
// data bytes, a zero-operand instruction, directive padding).
type Literal struct {
	Data []byte
}

// NewLiteral returns a Literal segment holding a copy of data.
func NewLiteral(data []byte) Literal {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Literal{Data: cp}
}

func (l Literal) Size() int { return len(l.Data) }

func (l Literal) Fill(sink Sink, _ Section, _ Labels, _ TemplateFields) error {
	sink.AppendBytes(l.Data)
	return nil
}
