package library

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// partTypes maps Sequence Ontology roles to UCF part types.
var partTypes = []struct {
	role string
	typ  string
}{
	{sbolvocab.RolePromoter, cello.PartPromoter},
	{sbolvocab.RoleCDS, cello.PartCDS},
	{sbolvocab.RoleRBS, cello.PartRBS},
	{sbolvocab.RoleTerminator, cello.PartTerminator},
	{sbolvocab.RoleRibozyme, cello.PartRibozyme},
	{sbolvocab.RoleScar, cello.PartScar},
}

// Part is a single DNA part.
type Part struct {
	Name     string
	Type     string
	Sequence string
	URI      string
}

// PartKey is the structural identity of a Part.
type PartKey struct {
	Name     string
	Type     string
	Sequence string
	URI      string
}

// Key returns the structural identity used for deduplication.
func (p *Part) Key() PartKey {
	return PartKey{Name: p.Name, Type: p.Type, Sequence: p.Sequence, URI: p.URI}
}

// NewPart builds a part from a component definition. The type comes from the
// first recognised role; the backbone display id always yields "backbone".
// Unrecognised roles leave the type empty. A definition without a sequence
// in doc is an error.
func NewPart(doc *sbol.Document, cd *sbol.ComponentDefinition) (*Part, error) {
	p := &Part{
		Name: cd.DisplayID,
		Type: PartType(cd),
		URI:  cd.URI,
	}
	for _, uri := range cd.Sequences {
		if s := doc.Sequence(uri); s != nil {
			p.Sequence = s.Elements
			return p, nil
		}
	}
	return nil, newError(cd.URI, "part", ErrNoSequence)
}

// PartType returns the UCF part type of a component definition.
func PartType(cd *sbol.ComponentDefinition) string {
	if cd.DisplayID == cello.BackboneDisplayID {
		return cello.PartBackbone
	}
	for _, pt := range partTypes {
		if cd.HasRole(pt.role) {
			return pt.typ
		}
	}
	return ""
}

// CassetteParts is the ordered list of parts of one expression cassette.
type CassetteParts struct {
	Parts []*Part
}

// GateParts maps response function variables to expression cassettes and
// carries the gate's output promoter.
type GateParts struct {
	Cassettes map[string]*CassetteParts
	Promoter  *Part
}

// Variables returns the mapped variable names in order.
func (gp *GateParts) Variables() []string {
	out := make([]string, 0, len(gp.Cassettes))
	for v := range gp.Cassettes {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Parts returns every cassette part followed by the promoter.
func (gp *GateParts) Parts() []*Part {
	var out []*Part
	for _, v := range gp.Variables() {
		out = append(out, gp.Cassettes[v].Parts...)
	}
	if gp.Promoter != nil {
		out = append(out, gp.Promoter)
	}
	return out
}

// componentParts builds the parts of cd's sub-components in sequence order.
func componentParts(doc *sbol.Document, cd *sbol.ComponentDefinition) ([]*Part, error) {
	var parts []*Part
	for _, c := range doc.SortedComponents(cd) {
		def := doc.ComponentDefinition(c.Definition)
		if def == nil {
			return nil, newError(cd.URI, "component", fmt.Errorf("%w: %s", ErrMissingDefinition, c.Definition))
		}
		p, err := NewPart(doc, def)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// UniqueParts merges parts, keeping the first of every structural key, and
// orders the result by name, type and URI.
func UniqueParts(parts ...[]*Part) []*Part {
	seen := make(map[PartKey]bool)
	var out []*Part
	for _, group := range parts {
		for _, p := range group {
			if p == nil || seen[p.Key()] {
				continue
			}
			seen[p.Key()] = true
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, comparePart)
	return out
}

func comparePart(a, b *Part) int {
	return cmp.Or(
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Type, b.Type),
		cmp.Compare(a.URI, b.URI),
		cmp.Compare(a.Sequence, b.Sequence),
	)
}
