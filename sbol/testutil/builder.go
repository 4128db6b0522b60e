// Package testutil builds SBOL documents for tests without going through
// RDF/XML.
package testutil

import (
	"fmt"
	"strconv"

	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// DefaultPrefix is the URI prefix of generated entities.
const DefaultPrefix = "https://synbiohub.example.org/public/Eco1C1G1T1/"

// Builder assembles an SBOL document.
type Builder struct {
	prefix    string
	namespace string
	doc       *sbol.Document
	module    *sbol.ModuleDefinition
	seq       int
}

// Option configures a Builder.
type Option func(*Builder)

// WithPrefix sets the URI prefix of generated entities.
func WithPrefix(prefix string) Option {
	return func(b *Builder) { b.prefix = prefix }
}

// WithNamespace sets the namespace of annotations added with Annotate.
func WithNamespace(ns string) Option {
	return func(b *Builder) { b.namespace = ns }
}

// New returns a builder for an empty document.
func New(opts ...Option) *Builder {
	b := &Builder{
		prefix:    DefaultPrefix,
		namespace: cello.DefaultNamespace,
		doc:       sbol.NewDocument(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Document returns the built document.
func (b *Builder) Document() *sbol.Document {
	return b.doc
}

// URI returns the URI of a generated entity with the given display id.
func (b *Builder) URI(displayID string) string {
	return b.prefix + displayID + "/1"
}

func (b *Builder) identified(displayID string) sbol.Identified {
	return sbol.Identified{
		URI:                b.URI(displayID),
		PersistentIdentity: b.prefix + displayID,
		DisplayID:          displayID,
		Version:            "1",
	}
}

func (b *Builder) next(kind string) string {
	b.seq++
	return kind + strconv.Itoa(b.seq)
}

// CD is a component definition under construction.
type CD struct {
	b  *Builder
	cd *sbol.ComponentDefinition
}

// ComponentDefinition starts a DNA component definition and adds it to the
// document.
func (b *Builder) ComponentDefinition(displayID string) *CD {
	cd := &sbol.ComponentDefinition{
		Identified: b.identified(displayID),
		Types:      []string{sbolvocab.TypeDNARegion},
	}
	b.doc.AddComponentDefinition(cd)
	return &CD{b: b, cd: cd}
}

// Protein starts a protein component definition.
func (b *Builder) Protein(displayID string) *CD {
	c := b.ComponentDefinition(displayID)
	c.cd.Types = []string{sbolvocab.TypeProtein}
	return c
}

// Complex starts a complex component definition.
func (b *Builder) Complex(displayID string) *CD {
	c := b.ComponentDefinition(displayID)
	c.cd.Types = []string{sbolvocab.TypeComplex}
	return c
}

// SmallMolecule starts a small molecule component definition.
func (b *Builder) SmallMolecule(displayID string) *CD {
	c := b.ComponentDefinition(displayID)
	c.cd.Types = []string{sbolvocab.TypeSmallMolecule}
	return c
}

// Part adds a DNA part with one role and a sequence.
func (b *Builder) Part(displayID, role, elements string) string {
	return b.ComponentDefinition(displayID).Role(role).Sequence(elements).URI()
}

// URI returns the definition's URI.
func (c *CD) URI() string { return c.cd.URI }

// Get returns the definition.
func (c *CD) Get() *sbol.ComponentDefinition { return c.cd }

// Name sets dcterms:title.
func (c *CD) Name(name string) *CD {
	c.cd.Name = name
	return c
}

// Role appends a role.
func (c *CD) Role(role string) *CD {
	c.cd.Roles = append(c.cd.Roles, role)
	return c
}

// Sequence attaches a new IUPAC DNA sequence.
func (c *CD) Sequence(elements string) *CD {
	id := c.b.identified(c.cd.DisplayID + "_sequence")
	c.b.doc.AddSequence(&sbol.Sequence{
		Identified: id,
		Elements:   elements,
		Encoding:   sbolvocab.EncodingIUPACDNA,
	})
	c.cd.Sequences = append(c.cd.Sequences, id.URI)
	return c
}

// Annotate adds an annotation in the builder namespace.
func (c *CD) Annotate(name string, value any) *CD {
	c.cd.Annotate(sbol.QName{Namespace: c.b.namespace, LocalPart: name}, fmt.Sprint(value), false)
	return c
}

// AnnotateIn adds an annotation in an explicit namespace.
func (c *CD) AnnotateIn(namespace, name string, value any) *CD {
	c.cd.Annotate(sbol.QName{Namespace: namespace, LocalPart: name}, fmt.Sprint(value), false)
	return c
}

// Components adds sub-components for the given definitions, in order, each
// located by a range on the parent.
func (c *CD) Components(definitions ...string) *CD {
	pos := 1
	for _, def := range definitions {
		target := c.b.doc.ComponentDefinition(def)
		name := c.b.next("component")
		if target != nil {
			name = target.DisplayID + "_component"
		}
		comp := &sbol.Component{
			Identified: c.b.identifiedUnder(c.cd, name),
			Definition: def,
			Access:     sbolvocab.Namespace + "public",
		}
		c.cd.Components = append(c.cd.Components, comp)

		length := 10
		if target != nil && len(target.Sequences) > 0 {
			if s := c.b.doc.Sequence(target.Sequences[0]); s != nil && len(s.Elements) > 0 {
				length = len(s.Elements)
			}
		}
		c.cd.SequenceAnnotations = append(c.cd.SequenceAnnotations, &sbol.SequenceAnnotation{
			Identified: c.b.identifiedUnder(c.cd, name+"_annotation"),
			Component:  comp.URI,
			Locations: []*sbol.Location{{
				Identified: c.b.identifiedUnder(c.cd, name+"_range"),
				Kind:       sbol.LocationRange,
				Start:      pos,
				End:        pos + length - 1,
			}},
		})
		pos += length
	}
	return c
}

// Attach links an attachment to the definition.
func (c *CD) Attach(attachmentURI string) *CD {
	c.cd.Attachments = append(c.cd.Attachments, attachmentURI)
	return c
}

func (b *Builder) identifiedUnder(parent *sbol.ComponentDefinition, displayID string) sbol.Identified {
	return sbol.Identified{
		URI:                parent.PersistentIdentity + "/" + displayID + "/1",
		PersistentIdentity: parent.PersistentIdentity + "/" + displayID,
		DisplayID:          displayID,
		Version:            "1",
	}
}

// Attachment adds a JSON attachment whose source is source.
func (b *Builder) Attachment(displayID, source string) string {
	a := &sbol.Attachment{
		Identified: b.identified(displayID),
		Source:     source,
		Format:     sbolvocab.FormatJSON,
	}
	a.Name = displayID
	b.doc.AddAttachment(a)
	return a.URI
}

// Interaction is an interaction under construction.
type Interaction struct {
	b  *Builder
	in *sbol.Interaction
}

// Get returns the interaction.
func (i *Interaction) Get() *sbol.Interaction { return i.in }

// Annotate adds an annotation in the builder namespace.
func (i *Interaction) Annotate(name string, value any) *Interaction {
	i.in.Annotate(sbol.QName{Namespace: i.b.namespace, LocalPart: name}, fmt.Sprint(value), false)
	return i
}

// Participant adds a participation of definition under role.
func (i *Interaction) Participant(definition, role string) *Interaction {
	fc := i.b.functionalComponent(definition)
	i.in.Participations = append(i.in.Participations, &sbol.Participation{
		Identified:  i.b.identifiedInModule(i.in.DisplayID + "_" + i.b.next("participation")),
		Roles:       []string{role},
		Participant: fc.URI,
	})
	return i
}

// Interaction adds an interaction of the given type to the document's module.
func (b *Builder) Interaction(displayID, typ string) *Interaction {
	md := b.Module()
	in := &sbol.Interaction{
		Identified: b.identifiedInModule(displayID),
		Types:      []string{typ},
	}
	md.Interactions = append(md.Interactions, in)
	return &Interaction{b: b, in: in}
}

// Production adds a genetic production of product from template.
func (b *Builder) Production(template, product string) *Interaction {
	return b.Interaction(b.next("production"), sbolvocab.InteractionGeneticProduction).
		Participant(template, sbolvocab.ParticipantTemplate).
		Participant(product, sbolvocab.ParticipantProduct)
}

// Inhibition adds an inhibition of target by inhibitor.
func (b *Builder) Inhibition(inhibitor, target string) *Interaction {
	return b.Interaction(b.next("inhibition"), sbolvocab.InteractionInhibition).
		Participant(inhibitor, sbolvocab.ParticipantInhibitor).
		Participant(target, sbolvocab.ParticipantInhibited)
}

// Stimulation adds a stimulation of target by stimulator.
func (b *Builder) Stimulation(stimulator, target string) *Interaction {
	return b.Interaction(b.next("stimulation"), sbolvocab.InteractionStimulation).
		Participant(stimulator, sbolvocab.ParticipantStimulator).
		Participant(target, sbolvocab.ParticipantStimulated)
}

// Binding adds a non-covalent binding of reactants into product.
func (b *Builder) Binding(product string, reactants ...string) *Interaction {
	in := b.Interaction(b.next("binding"), sbolvocab.InteractionNonCovalentBinding)
	for _, r := range reactants {
		in.Participant(r, sbolvocab.ParticipantReactant)
	}
	return in.Participant(product, sbolvocab.ParticipantProduct)
}

// Module returns the document's module definition, creating it on first use.
func (b *Builder) Module() *sbol.ModuleDefinition {
	if b.module == nil {
		b.module = &sbol.ModuleDefinition{Identified: b.identified("circuit_module")}
		b.doc.AddModuleDefinition(b.module)
	}
	return b.module
}

func (b *Builder) identifiedInModule(displayID string) sbol.Identified {
	md := b.Module()
	return sbol.Identified{
		URI:                md.PersistentIdentity + "/" + displayID + "/1",
		PersistentIdentity: md.PersistentIdentity + "/" + displayID,
		DisplayID:          displayID,
		Version:            "1",
	}
}

func (b *Builder) functionalComponent(definition string) *sbol.FunctionalComponent {
	md := b.Module()
	for _, fc := range md.FunctionalComponents {
		if fc.Definition == definition {
			return fc
		}
	}
	name := sbol.SplitIRI(definition).LocalPart
	if cd := b.doc.ComponentDefinition(definition); cd != nil {
		name = cd.DisplayID
	}
	fc := &sbol.FunctionalComponent{
		Identified: b.identifiedInModule(name + "_fc"),
		Definition: definition,
		Access:     sbolvocab.Namespace + "public",
		Direction:  sbolvocab.Namespace + "none",
	}
	md.FunctionalComponents = append(md.FunctionalComponents, fc)
	return fc
}
