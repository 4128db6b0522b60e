package library

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cellocad/cello-webapp/adaptor"
	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// Gate is a logic gate: a regulator with its response function, expression
// cassettes and output promoter.
type Gate struct {
	Name      string
	Regulator string
	Group     string
	GateType  string
	System    string
	Color     string
	URI       string

	ResponseFunction *ResponseFunction
	GateParts        *GateParts

	// Objects are the gate's JSON attachments, verbatim.
	Objects []json.RawMessage
}

// Parts returns the cassette parts and the output promoter.
func (g *Gate) Parts() []*Part {
	return g.GateParts.Parts()
}

// NewGate builds a gate from a component definition carrying a group_name
// annotation. The single cassette formed by the sorted sub-components is
// mapped to every response function variable, and the output promoter is
// the one promoter regulated by the first CDS sub-component.
func NewGate(ctx context.Context, a *adaptor.Adaptor, doc *sbol.Document, cd *sbol.ComponentDefinition, fetch AttachmentFetcher) (*Gate, error) {
	return newGate(ctx, a, doc, cd, fetch, DefaultAttachmentConcurrency)
}

func newGate(ctx context.Context, a *adaptor.Adaptor, doc *sbol.Document, cd *sbol.ComponentDefinition, fetch AttachmentFetcher, limit int) (*Gate, error) {
	const op = "gate"

	group, ok := a.AnnotationString(&cd.Identified, cello.AnnotationGroupName)
	if !ok {
		return nil, newError(cd.URI, op, fmt.Errorf("%w: %s", ErrMissingAnnotation, cello.AnnotationGroupName))
	}
	g := &Gate{
		Name:  cd.DisplayID,
		Group: group,
		URI:   cd.URI,
	}
	g.Regulator, _ = a.AnnotationString(&cd.Identified, cello.AnnotationRegulator)
	g.GateType, _ = a.AnnotationString(&cd.Identified, cello.AnnotationGateType)
	g.System, _ = a.AnnotationString(&cd.Identified, cello.AnnotationSystem)
	g.Color, _ = a.AnnotationString(&cd.Identified, cello.AnnotationColor)

	rf, err := NewResponseFunction(a, cd)
	if err != nil {
		return nil, err
	}
	if len(rf.Variables) == 0 {
		return nil, newError(cd.URI, op, ErrNoVariables)
	}
	g.ResponseFunction = rf

	parts, err := componentParts(doc, cd)
	if err != nil {
		return nil, err
	}

	cds := firstCDS(doc, cd)
	if cds == nil {
		return nil, newError(cd.URI, op, ErrNoCDS)
	}
	promoter, err := regulatedPromoter(a, doc, cd, cds)
	if err != nil {
		return nil, err
	}

	gp := &GateParts{
		Cassettes: make(map[string]*CassetteParts, len(rf.Variables)),
		Promoter:  promoter,
	}
	for _, v := range rf.Variables {
		gp.Cassettes[v.Name] = &CassetteParts{Parts: parts}
	}
	g.GateParts = gp

	atts, err := jsonAttachments(doc, cd.URI, cd.Attachments)
	if err != nil {
		return nil, err
	}
	if g.Objects, err = fetchObjects(ctx, fetch, atts, limit); err != nil {
		return nil, err
	}
	return g, nil
}

// firstCDS returns the definition of the first sub-component, in sequence
// order, that has the CDS role.
func firstCDS(doc *sbol.Document, cd *sbol.ComponentDefinition) *sbol.ComponentDefinition {
	for _, c := range doc.SortedComponents(cd) {
		def := doc.ComponentDefinition(c.Definition)
		if def != nil && def.HasRole(sbolvocab.RoleCDS) {
			return def
		}
	}
	return nil
}

// regulatedPromoter resolves the single target regulated by regulator.
func regulatedPromoter(a *adaptor.Adaptor, doc *sbol.Document, owner, regulator *sbol.ComponentDefinition) (*Part, error) {
	targets := a.Regulated(doc, regulator)
	if len(targets) != 1 {
		return nil, newError(owner.URI, "regulated promoter", exactlyOne("regulated promoters", len(targets)))
	}
	return NewPart(doc, targets[0])
}
