package ast

// ProgramTree is the root of a parsed program: an ordered set of absolute
// sections, relocatable sections, and template sections.
type ProgramTree struct {
	AbsoluteSections    []AbsoluteSection
	RelocatableSections []RelocatableSection
	TemplateSections    []TemplateSection
}

// AbsoluteSection is bound to a fixed load address chosen by the source.
type AbsoluteSection struct {
	Address uint32
	Lines   []Line
}

// RelocatableSection has no fixed address; its base is assigned at link
// time, after this module's scope ends.
type RelocatableSection struct {
	Name  string
	Lines []Line
}

// TemplateSection declares a record layout. It contributes only field
// offsets (via the template package) and emits no bytes of its own.
type TemplateSection struct {
	Name  string
	Lines []Line
}
