package object

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/cocasm/casm/ast"
	"github.com/cocasm/casm/lower"
	"github.com/cocasm/casm/segment"
	"github.com/cocasm/casm/target"
	"github.com/cocasm/casm/template"
)

// Assemble runs the complete pipeline over a parsed program: template
// evaluation, then CodeBlock lowering and varying-length resolution for
// every absolute section (visited in ascending address order, each
// seeing every absolute label resolved before it) and every relocatable
// section (each seeing the complete absolute label set and no other
// relocatable section's labels), per
// original_source/cocas/assembler.py's assemble().
func Assemble(pn ast.ProgramTree, ti target.Instructions) (*ObjectModule, error) {
	templateFields, err := evaluateTemplates(pn.TemplateSections, ti)
	if err != nil {
		return nil, errors.Wrap(err, "evaluating templates")
	}

	absSections := make([]*lower.Section, len(pn.AbsoluteSections))
	for i, sn := range pn.AbsoluteSections {
		sec, err := lower.NewAbsoluteSection(sn, ti)
		if err != nil {
			return nil, errors.Wrapf(err, "absolute section at address %#x", sn.Address)
		}
		absSections[i] = sec
	}
	sort.SliceStable(absSections, func(i, j int) bool {
		return absSections[i].Address() < absSections[j].Address()
	})

	asectsLabels := segment.Labels{}
	asectRecords := make([]ObjectSectionRecord, 0, len(absSections))
	for _, sec := range absSections {
		rec, finalLabels, err := resolveAndBuild(sec, asectsLabels, templateFields)
		if err != nil {
			return nil, err
		}
		asectRecords = append(asectRecords, rec)
		for name := range gatherLocalLabels(sec.CodeBlock) {
			asectsLabels[name] = finalLabels[name]
		}
	}

	rsectRecords := make([]ObjectSectionRecord, 0, len(pn.RelocatableSections))
	for _, sn := range pn.RelocatableSections {
		sec, err := lower.NewRelocatableSection(sn, ti)
		if err != nil {
			return nil, errors.Wrapf(err, "relocatable section %q", sn.Name)
		}
		rec, _, err := resolveAndBuild(sec, asectsLabels, templateFields)
		if err != nil {
			return nil, errors.Wrapf(err, "relocatable section %q", sn.Name)
		}
		rsectRecords = append(rsectRecords, rec)
	}

	return &ObjectModule{Asects: asectRecords, Rsects: rsectRecords}, nil
}

func resolveAndBuild(sec *lower.Section, external segment.Labels, templateFields segment.TemplateFields) (ObjectSectionRecord, segment.Labels, error) {
	labels, finalLocations, err := resolveVaryingLengths(sec, external, templateFields)
	if err != nil {
		return ObjectSectionRecord{}, nil, err
	}
	rec := ObjectSectionRecord{
		Address:       sec.Address(),
		Name:          sec.Name(),
		Ents:          make(map[string]int64),
		CodeLocations: finalLocations,
	}
	for _, seg := range sec.CodeBlock.Segments {
		sink := &segmentSink{rec: &rec, base: len(rec.Data)}
		if err := seg.Fill(sink, sec, labels, templateFields); err != nil {
			return ObjectSectionRecord{}, nil, err
		}
	}
	for name := range sec.CodeBlock.Ents {
		rec.Ents[name] = labels[name]
	}
	return rec, labels, nil
}

func evaluateTemplates(sections []ast.TemplateSection, ti target.Instructions) (segment.TemplateFields, error) {
	fields := make(segment.TemplateFields, len(sections))
	for _, sn := range sections {
		tpl, err := template.Evaluate(sn, ti)
		if err != nil {
			return nil, err
		}
		fields[tpl.Name] = tpl.Fields
	}
	return fields, nil
}
