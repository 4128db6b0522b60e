package sbol

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/knakk/rdf"

	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// ErrEmptyDocument is returned when the input holds no triples.
var ErrEmptyDocument = errors.New("sbol: empty document")

// Decode reads an RDF/XML serialized SBOL document.
func Decode(r io.Reader) (*Document, error) {
	dec := rdf.NewTripleDecoder(r, rdf.RDFXML)
	var triples []rdf.Triple
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sbol: decode rdf/xml: %w", err)
		}
		triples = append(triples, t)
	}
	if len(triples) == 0 {
		return nil, ErrEmptyDocument
	}
	return FromTriples(triples)
}

// property is one predicate/object pair of a resource.
type property struct {
	pred  string
	value string
	iri   bool
}

// resource collects the triples sharing a subject, in document order.
type resource struct {
	uri   string
	types []string
	props []property
}

func (r *resource) is(class string) bool {
	return slices.Contains(r.types, class)
}

func (r *resource) values(pred string) []string {
	var out []string
	for _, p := range r.props {
		if p.pred == pred {
			out = append(out, p.value)
		}
	}
	return out
}

func (r *resource) value(pred string) string {
	for _, p := range r.props {
		if p.pred == pred {
			return p.value
		}
	}
	return ""
}

func (r *resource) intValue(pred string) (int64, error) {
	v := r.value(pred)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sbol: %s of %s: %w", SplitIRI(pred).LocalPart, r.uri, err)
	}
	return n, nil
}

// graph indexes resources by subject.
type graph struct {
	resources map[string]*resource
	order     []string
}

func (g *graph) get(uri string) *resource {
	return g.resources[uri]
}

// FromTriples maps RDF triples onto the SBOL object model. Unknown classes
// are ignored; references to missing child resources are dropped.
func FromTriples(triples []rdf.Triple) (*Document, error) {
	g := &graph{resources: make(map[string]*resource)}
	for _, t := range triples {
		subj := t.Subj.String()
		r, ok := g.resources[subj]
		if !ok {
			r = &resource{uri: subj}
			g.resources[subj] = r
			g.order = append(g.order, subj)
		}
		pred := t.Pred.String()
		obj := t.Obj.String()
		if pred == sbolvocab.RDFType {
			r.types = append(r.types, obj)
			continue
		}
		r.props = append(r.props, property{
			pred:  pred,
			value: obj,
			iri:   t.Obj.Type() != rdf.TermLiteral,
		})
	}

	doc := NewDocument()
	for _, uri := range g.order {
		r := g.resources[uri]
		switch {
		case r.is(sbolvocab.ClassComponentDefinition):
			cd, err := g.componentDefinition(r)
			if err != nil {
				return nil, err
			}
			doc.AddComponentDefinition(cd)
		case r.is(sbolvocab.ClassSequence):
			doc.AddSequence(&Sequence{
				Identified: identified(r),
				Elements:   strings.TrimSpace(r.value(sbolvocab.PropElements)),
				Encoding:   r.value(sbolvocab.PropEncoding),
			})
		case r.is(sbolvocab.ClassModuleDefinition):
			doc.AddModuleDefinition(g.moduleDefinition(r))
		case r.is(sbolvocab.ClassAttachment):
			size, err := r.intValue(sbolvocab.PropSize)
			if err != nil {
				return nil, err
			}
			doc.AddAttachment(&Attachment{
				Identified: identified(r),
				Source:     r.value(sbolvocab.PropSource),
				Format:     r.value(sbolvocab.PropFormat),
				Size:       size,
				Hash:       r.value(sbolvocab.PropHash),
			})
		case r.is(sbolvocab.ClassCollection):
			doc.AddCollection(&Collection{
				Identified: identified(r),
				Members:    r.values(sbolvocab.PropMember),
			})
		}
	}
	return doc, nil
}

func (g *graph) componentDefinition(r *resource) (*ComponentDefinition, error) {
	cd := &ComponentDefinition{
		Identified:  identified(r),
		Types:       r.values(sbolvocab.PropType),
		Roles:       r.values(sbolvocab.PropRole),
		Sequences:   r.values(sbolvocab.PropSequence),
		Attachments: r.values(sbolvocab.PropAttachment),
	}
	for _, uri := range r.values(sbolvocab.PropComponent) {
		c := g.get(uri)
		if c == nil {
			continue
		}
		cd.Components = append(cd.Components, &Component{
			Identified: identified(c),
			Definition: c.value(sbolvocab.PropDefinition),
			Access:     c.value(sbolvocab.PropAccess),
			Roles:      c.values(sbolvocab.PropRole),
		})
	}
	for _, uri := range r.values(sbolvocab.PropSequenceAnnotation) {
		sa := g.get(uri)
		if sa == nil {
			continue
		}
		ann := &SequenceAnnotation{
			Identified: identified(sa),
			Component:  sa.value(sbolvocab.PropComponent),
			Roles:      sa.values(sbolvocab.PropRole),
		}
		for _, locURI := range sa.values(sbolvocab.PropLocation) {
			loc := g.get(locURI)
			if loc == nil {
				continue
			}
			l, err := location(loc)
			if err != nil {
				return nil, err
			}
			ann.Locations = append(ann.Locations, l)
		}
		cd.SequenceAnnotations = append(cd.SequenceAnnotations, ann)
	}
	for _, uri := range r.values(sbolvocab.PropSequenceConstraint) {
		sc := g.get(uri)
		if sc == nil {
			continue
		}
		cd.SequenceConstraints = append(cd.SequenceConstraints, &SequenceConstraint{
			Identified:  identified(sc),
			Restriction: sc.value(sbolvocab.PropRestriction),
			Subject:     sc.value(sbolvocab.PropSubject),
			Object:      sc.value(sbolvocab.PropObject),
		})
	}
	return cd, nil
}

func location(r *resource) (*Location, error) {
	l := &Location{
		Identified:  identified(r),
		Orientation: r.value(sbolvocab.PropOrientation),
	}
	switch {
	case r.is(sbolvocab.ClassRange):
		l.Kind = LocationRange
		start, err := r.intValue(sbolvocab.PropStart)
		if err != nil {
			return nil, err
		}
		end, err := r.intValue(sbolvocab.PropEnd)
		if err != nil {
			return nil, err
		}
		l.Start, l.End = int(start), int(end)
	case r.is(sbolvocab.ClassCut):
		l.Kind = LocationCut
		at, err := r.intValue(sbolvocab.PropAt)
		if err != nil {
			return nil, err
		}
		l.At = int(at)
	default:
		l.Kind = LocationGeneric
	}
	return l, nil
}

func (g *graph) moduleDefinition(r *resource) *ModuleDefinition {
	md := &ModuleDefinition{
		Identified:  identified(r),
		Roles:       r.values(sbolvocab.PropRole),
		Attachments: r.values(sbolvocab.PropAttachment),
	}
	for _, uri := range r.values(sbolvocab.PropFunctionalComponent) {
		fc := g.get(uri)
		if fc == nil {
			continue
		}
		md.FunctionalComponents = append(md.FunctionalComponents, &FunctionalComponent{
			Identified: identified(fc),
			Definition: fc.value(sbolvocab.PropDefinition),
			Access:     fc.value(sbolvocab.PropAccess),
			Direction:  fc.value(sbolvocab.PropDirection),
		})
	}
	for _, uri := range r.values(sbolvocab.PropModule) {
		m := g.get(uri)
		if m == nil {
			continue
		}
		md.Modules = append(md.Modules, &Module{
			Identified: identified(m),
			Definition: m.value(sbolvocab.PropDefinition),
		})
	}
	for _, uri := range r.values(sbolvocab.PropInteraction) {
		ir := g.get(uri)
		if ir == nil {
			continue
		}
		in := &Interaction{
			Identified: identified(ir),
			Types:      ir.values(sbolvocab.PropType),
		}
		for _, pURI := range ir.values(sbolvocab.PropParticipation) {
			pr := g.get(pURI)
			if pr == nil {
				continue
			}
			in.Participations = append(in.Participations, &Participation{
				Identified:  identified(pr),
				Roles:       pr.values(sbolvocab.PropRole),
				Participant: pr.value(sbolvocab.PropParticipant),
			})
		}
		md.Interactions = append(md.Interactions, in)
	}
	return md
}

// identified fills the shared properties and keeps every non-SBOL property
// as an annotation.
func identified(r *resource) Identified {
	id := Identified{URI: r.uri}
	for _, p := range r.props {
		switch p.pred {
		case sbolvocab.PropDisplayID:
			id.DisplayID = p.value
		case sbolvocab.PropPersistentIdentity:
			id.PersistentIdentity = p.value
		case sbolvocab.PropVersion:
			id.Version = p.value
		case sbolvocab.DcTitle:
			id.Name = p.value
		case sbolvocab.DcDescription:
			id.Description = p.value
		case sbolvocab.ProvWasDerivedFrom:
			id.WasDerivedFrom = append(id.WasDerivedFrom, p.value)
		default:
			if strings.HasPrefix(p.pred, sbolvocab.Namespace) {
				continue
			}
			id.Annotate(SplitIRI(p.pred), p.value, p.iri)
		}
	}
	return id
}
