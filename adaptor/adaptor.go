// Package adaptor answers the namespace-scoped annotation and interaction
// graph queries the library builder needs from an SBOL document.
package adaptor

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// Adaptor queries SBOL documents for annotations in one namespace.
// It holds no state besides the namespace and is safe for concurrent use.
type Adaptor struct {
	namespace string
}

// New returns an adaptor for annotations in namespace. An empty namespace
// selects cello.DefaultNamespace.
func New(namespace string) *Adaptor {
	if namespace == "" {
		namespace = cello.DefaultNamespace
	}
	return &Adaptor{namespace: namespace}
}

// Namespace returns the annotation namespace.
func (a *Adaptor) Namespace() string {
	return a.namespace
}

// AnnotationString returns the value of annotation name. Absence is not an
// error.
func (a *Adaptor) AnnotationString(id *sbol.Identified, name string) (string, bool) {
	ann, ok := id.Annotation(sbol.QName{Namespace: a.namespace, LocalPart: name})
	if !ok {
		return "", false
	}
	return strings.TrimSpace(ann.Value), true
}

// AnnotationFloat parses annotation name as a float64. The bool reports
// presence; the error reports a present but non-numeric value.
func (a *Adaptor) AnnotationFloat(id *sbol.Identified, name string) (float64, bool, error) {
	s, ok := a.AnnotationString(id, name)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, fmt.Errorf("annotation %s=%q: %w", name, s, err)
	}
	return v, true, nil
}

// HasAnnotation reports whether annotation name is present.
func (a *Adaptor) HasAnnotation(id *sbol.Identified, name string) bool {
	_, ok := a.AnnotationString(id, name)
	return ok
}

// Annotations returns all annotations in the adaptor namespace.
func (a *Adaptor) Annotations(id *sbol.Identified) []sbol.Annotation {
	return id.AnnotationsIn(a.namespace)
}

// InteractionsByType returns the interactions of every root module
// definition whose types include typeIRI and in which cd participates.
func (a *Adaptor) InteractionsByType(doc *sbol.Document, cd *sbol.ComponentDefinition, typeIRI string) []*sbol.Interaction {
	return a.interactionsWithRole(doc, cd, typeIRI, "")
}

// interactionsWithRole is InteractionsByType restricted to participations of
// cd under role. An empty role matches any participation.
func (a *Adaptor) interactionsWithRole(doc *sbol.Document, cd *sbol.ComponentDefinition, typeIRI, role string) []*sbol.Interaction {
	var out []*sbol.Interaction
	for _, md := range doc.RootModuleDefinitions() {
		for _, in := range md.Interactions {
			if !in.HasType(typeIRI) {
				continue
			}
			for _, p := range in.Participations {
				if role != "" && !p.HasRole(role) {
					continue
				}
				def := doc.ParticipantDefinition(md, p)
				if def != nil && def.URI == cd.URI {
					out = append(out, in)
					break
				}
			}
		}
	}
	return uniqueByURI(out, func(in *sbol.Interaction) string { return in.URI })
}

// ParticipantsByRole returns the component definitions taking part in
// interaction under roleIRI.
func (a *Adaptor) ParticipantsByRole(doc *sbol.Document, interaction *sbol.Interaction, roleIRI string) []*sbol.ComponentDefinition {
	var out []*sbol.ComponentDefinition
	for _, md := range doc.RootModuleDefinitions() {
		if !slices.Contains(md.Interactions, interaction) {
			continue
		}
		for _, p := range interaction.Participations {
			if !p.HasRole(roleIRI) {
				continue
			}
			if def := doc.ParticipantDefinition(md, p); def != nil {
				out = append(out, def)
			}
		}
	}
	return uniqueByURI(out, func(cd *sbol.ComponentDefinition) string { return cd.URI })
}

// regulators returns the entities through which cd regulates: its genetic
// products, and every complex formed by binding of one of those products.
func (a *Adaptor) regulators(doc *sbol.Document, cd *sbol.ComponentDefinition) []*sbol.ComponentDefinition {
	var out []*sbol.ComponentDefinition
	for _, production := range a.InteractionsByType(doc, cd, sbolvocab.InteractionGeneticProduction) {
		for _, product := range a.ParticipantsByRole(doc, production, sbolvocab.ParticipantProduct) {
			if product.URI == cd.URI {
				continue
			}
			out = append(out, product)
			for _, binding := range a.interactionsWithRole(doc, product, sbolvocab.InteractionNonCovalentBinding, sbolvocab.ParticipantReactant) {
				out = append(out, a.ParticipantsByRole(doc, binding, sbolvocab.ParticipantProduct)...)
			}
		}
	}
	return uniqueByURI(out, func(cd *sbol.ComponentDefinition) string { return cd.URI })
}

// Regulations returns the stimulation and inhibition interactions in which
// a product of cd, or a complex formed from it, is the stimulator or
// inhibitor.
func (a *Adaptor) Regulations(doc *sbol.Document, cd *sbol.ComponentDefinition) []*sbol.Interaction {
	var out []*sbol.Interaction
	for _, reg := range a.regulators(doc, cd) {
		out = append(out, a.interactionsWithRole(doc, reg, sbolvocab.InteractionStimulation, sbolvocab.ParticipantStimulator)...)
		out = append(out, a.interactionsWithRole(doc, reg, sbolvocab.InteractionInhibition, sbolvocab.ParticipantInhibitor)...)
	}
	return uniqueByURI(out, func(in *sbol.Interaction) string { return in.URI })
}

// Regulated returns the stimulated and inhibited participants of the
// interactions found by Regulations.
func (a *Adaptor) Regulated(doc *sbol.Document, cd *sbol.ComponentDefinition) []*sbol.ComponentDefinition {
	var out []*sbol.ComponentDefinition
	for _, reg := range a.regulators(doc, cd) {
		for _, in := range a.interactionsWithRole(doc, reg, sbolvocab.InteractionStimulation, sbolvocab.ParticipantStimulator) {
			out = append(out, a.ParticipantsByRole(doc, in, sbolvocab.ParticipantStimulated)...)
		}
		for _, in := range a.interactionsWithRole(doc, reg, sbolvocab.InteractionInhibition, sbolvocab.ParticipantInhibitor) {
			out = append(out, a.ParticipantsByRole(doc, in, sbolvocab.ParticipantInhibited)...)
		}
	}
	return uniqueByURI(out, func(cd *sbol.ComponentDefinition) string { return cd.URI })
}

// uniqueByURI drops duplicates and orders the result by URI.
func uniqueByURI[T any](items []T, uri func(T) string) []T {
	slices.SortStableFunc(items, func(x, y T) int { return cmp.Compare(uri(x), uri(y)) })
	return slices.CompactFunc(items, func(x, y T) bool { return uri(x) == uri(y) })
}
