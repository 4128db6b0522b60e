package sbol

import (
	"slices"
	"strings"
)

// QName is a namespace-qualified property name.
type QName struct {
	Namespace string
	LocalPart string
}

// IRI returns the full IRI of the name.
func (q QName) IRI() string {
	return q.Namespace + q.LocalPart
}

// SplitIRI splits an IRI into namespace and local part at the last '#' or '/'.
func SplitIRI(iri string) QName {
	i := strings.LastIndexAny(iri, "#/")
	if i < 0 {
		return QName{LocalPart: iri}
	}
	return QName{Namespace: iri[:i+1], LocalPart: iri[i+1:]}
}

// Annotation is a non-SBOL property attached to an Identified entity.
type Annotation struct {
	Name  QName
	Value string
	// IsURI is set when Value is a resource reference rather than a literal.
	IsURI bool
}

// Identified holds the properties shared by every SBOL entity.
type Identified struct {
	URI                string
	PersistentIdentity string
	DisplayID          string
	Version            string
	Name               string
	Description        string
	WasDerivedFrom     []string
	Annotations        []Annotation
}

// Annotation returns the first annotation with the given qualified name.
func (i *Identified) Annotation(name QName) (Annotation, bool) {
	for _, a := range i.Annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// AnnotationsIn returns the annotations whose name is in namespace, in
// document order.
func (i *Identified) AnnotationsIn(namespace string) []Annotation {
	var out []Annotation
	for _, a := range i.Annotations {
		if a.Name.Namespace == namespace {
			out = append(out, a)
		}
	}
	return out
}

// Annotate appends an annotation.
func (i *Identified) Annotate(name QName, value string, isURI bool) {
	i.Annotations = append(i.Annotations, Annotation{Name: name, Value: value, IsURI: isURI})
}

// ComponentDefinition describes a biological part or device.
type ComponentDefinition struct {
	Identified
	Types               []string
	Roles               []string
	Sequences           []string
	Components          []*Component
	SequenceAnnotations []*SequenceAnnotation
	SequenceConstraints []*SequenceConstraint
	Attachments         []string
}

// HasRole reports whether role is among the definition's roles.
func (cd *ComponentDefinition) HasRole(role string) bool {
	return slices.Contains(cd.Roles, role)
}

// HasType reports whether typ is among the definition's types.
func (cd *ComponentDefinition) HasType(typ string) bool {
	return slices.Contains(cd.Types, typ)
}

// Component looks up a sub-component by URI.
func (cd *ComponentDefinition) Component(uri string) *Component {
	for _, c := range cd.Components {
		if c.URI == uri {
			return c
		}
	}
	return nil
}

// Component is an instance of a ComponentDefinition inside another one.
type Component struct {
	Identified
	Definition string
	Access     string
	Roles      []string
}

// SequenceAnnotation locates a sub-component or feature on the parent sequence.
type SequenceAnnotation struct {
	Identified
	Component string
	Locations []*Location
	Roles     []string
}

// LocationKind distinguishes the SBOL location classes.
type LocationKind int

const (
	LocationGeneric LocationKind = iota
	LocationRange
	LocationCut
)

// Location is a Range, Cut or GenericLocation.
type Location struct {
	Identified
	Kind        LocationKind
	Start       int
	End         int
	At          int
	Orientation string
}

// Position returns the start of a range or the cut position. Generic
// locations have no position.
func (l *Location) Position() (int, bool) {
	switch l.Kind {
	case LocationRange:
		return l.Start, true
	case LocationCut:
		return l.At, true
	default:
		return 0, false
	}
}

// SequenceConstraint relates two sub-components, typically with "precedes".
type SequenceConstraint struct {
	Identified
	Restriction string
	Subject     string
	Object      string
}

// Sequence holds the primary structure of a component definition.
type Sequence struct {
	Identified
	Elements string
	Encoding string
}

// ModuleDefinition groups functional components and their interactions.
type ModuleDefinition struct {
	Identified
	Roles                []string
	FunctionalComponents []*FunctionalComponent
	Interactions         []*Interaction
	Modules              []*Module
	Attachments          []string
}

// FunctionalComponent looks up a functional component by URI.
func (md *ModuleDefinition) FunctionalComponent(uri string) *FunctionalComponent {
	for _, fc := range md.FunctionalComponents {
		if fc.URI == uri {
			return fc
		}
	}
	return nil
}

// Module is an instance of a ModuleDefinition inside another one.
type Module struct {
	Identified
	Definition string
}

// FunctionalComponent is a component definition used within a module.
type FunctionalComponent struct {
	Identified
	Definition string
	Access     string
	Direction  string
}

// Interaction is a typed biochemical relationship between functional components.
type Interaction struct {
	Identified
	Types          []string
	Participations []*Participation
}

// HasType reports whether typ is among the interaction's types.
func (in *Interaction) HasType(typ string) bool {
	return slices.Contains(in.Types, typ)
}

// Participation binds a functional component to an interaction under roles.
type Participation struct {
	Identified
	Roles       []string
	Participant string
}

// HasRole reports whether role is among the participation's roles.
func (p *Participation) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// Attachment references an external file, such as gate characterization data.
type Attachment struct {
	Identified
	Source string
	Format string
	Size   int64
	Hash   string
}

// Collection groups top-level entities.
type Collection struct {
	Identified
	Members []string
}
