package export

import (
	"net/url"

	"github.com/cellocad/cello-webapp/library"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
)

// DefaultLibraryBase is the IRI prefix for library entities that have no URI of their own.
const DefaultLibraryBase = "urn:cello:"

// LibraryExporter renders a Library as RDF.
type LibraryExporter struct {
	base string
}

// NewLibraryExporter creates an exporter minting IRIs under base. An empty
// base uses DefaultLibraryBase.
func NewLibraryExporter(base string) *LibraryExporter {
	if base == "" {
		base = DefaultLibraryBase
	}
	return &LibraryExporter{base: base}
}

// Export serializes lib in format.
func (x *LibraryExporter) Export(lib *library.Library, format Format) (string, error) {
	return x.Exporter(lib).Export(format)
}

// Exporter returns an RDFExporter loaded with the entities of lib.
func (x *LibraryExporter) Exporter(lib *library.Library) *RDFExporter {
	e := NewRDFExporter()

	root := Entity{IRI: x.base + "library", Types: []string{cello.ClassLibrary}}

	for _, g := range lib.Gates {
		iri := x.iri("gate", g.Name, g.URI)
		root.Triples = append(root.Triples, Triple{cello.LibraryMember, IRI(iri)})
		gate, variables := x.gate(iri, g)
		e.AddEntity(gate)
		for _, v := range variables {
			e.AddEntity(v)
		}
	}
	for _, s := range lib.InputSensors {
		iri := x.iri("input_sensor", s.Name, s.URI)
		root.Triples = append(root.Triples, Triple{cello.LibraryMember, IRI(iri)})
		e.AddEntity(x.sensor(iri, s))
	}
	for _, r := range lib.OutputReporters {
		iri := x.iri("output_reporter", r.Name, r.URI)
		root.Triples = append(root.Triples, Triple{cello.LibraryMember, IRI(iri)})
		e.AddEntity(x.reporter(iri, r))
	}
	for _, p := range lib.Parts {
		iri := x.partIRI(p)
		root.Triples = append(root.Triples, Triple{cello.LibraryMember, IRI(iri)})
		e.AddEntity(x.part(iri, p))
	}

	e.entities = append([]Entity{root}, e.entities...)
	return e
}

func (x *LibraryExporter) iri(kind, name, uri string) string {
	if uri != "" {
		return uri
	}
	return x.base + kind + "/" + url.PathEscape(name)
}

func (x *LibraryExporter) partIRI(p *library.Part) string {
	return x.iri("part", p.Name, p.URI)
}

func addString(triples []Triple, predicate, value string) []Triple {
	if value == "" {
		return triples
	}
	return append(triples, Triple{predicate, value})
}

func (x *LibraryExporter) gate(iri string, g *library.Gate) (Entity, []Entity) {
	entity := Entity{IRI: iri, Types: []string{cello.ClassGate}}
	t := entity.Triples
	t = addString(t, cello.GateRegulator, g.Regulator)
	t = addString(t, cello.GateGroup, g.Group)
	t = addString(t, cello.GateType, g.GateType)
	t = addString(t, cello.GateSystem, g.System)
	t = addString(t, cello.GateColor, g.Color)

	var variables []Entity
	if rf := g.ResponseFunction; rf != nil {
		t = addString(t, cello.FunctionEquation, rf.Equation)
		for _, p := range rf.Parameters {
			if pred, ok := cello.ParameterPredicates[p.Name]; ok {
				t = append(t, Triple{pred, p.Value})
			}
		}
		for _, v := range rf.Variables {
			viri := iri + "/variable/" + url.PathEscape(v.Name)
			t = append(t, Triple{cello.FunctionVariable, IRI(viri)})
			variables = append(variables, Entity{
				IRI:   viri,
				Types: []string{cello.ClassVariable},
				Triples: []Triple{
					{cello.PartName, v.Name},
					{cello.VariableOffThreshold, v.OffThreshold},
					{cello.VariableOnThreshold, v.OnThreshold},
				},
			})
		}
	}

	if gp := g.GateParts; gp != nil {
		seen := make(map[string]bool)
		for _, v := range gp.Variables() {
			for _, p := range gp.Cassettes[v].Parts {
				piri := x.partIRI(p)
				if !seen[piri] {
					seen[piri] = true
					t = append(t, Triple{cello.GatePart, IRI(piri)})
				}
			}
		}
		if gp.Promoter != nil {
			t = append(t, Triple{cello.GatePromoter, IRI(x.partIRI(gp.Promoter))})
		}
	}

	entity.Triples = t
	return entity, variables
}

func (x *LibraryExporter) sensor(iri string, s *library.InputSensor) Entity {
	entity := Entity{IRI: iri, Types: []string{cello.ClassInputSensor}}
	for _, p := range s.Parts {
		entity.Triples = append(entity.Triples, Triple{cello.DevicePart, IRI(x.partIRI(p))})
	}
	if s.Promoter != nil {
		entity.Triples = append(entity.Triples, Triple{cello.GatePromoter, IRI(x.partIRI(s.Promoter))})
	}
	entity.Triples = append(entity.Triples,
		Triple{cello.SensorLow, s.SignalLow},
		Triple{cello.SensorHigh, s.SignalHigh})
	return entity
}

func (x *LibraryExporter) reporter(iri string, r *library.OutputReporter) Entity {
	entity := Entity{IRI: iri, Types: []string{cello.ClassOutputReporter}}
	for _, p := range r.Parts {
		entity.Triples = append(entity.Triples, Triple{cello.DevicePart, IRI(x.partIRI(p))})
	}
	return entity
}

func (x *LibraryExporter) part(iri string, p *library.Part) Entity {
	t := []Triple{{cello.PartName, p.Name}}
	t = addString(t, cello.PartType, p.Type)
	t = addString(t, cello.PartSequence, p.Sequence)
	if p.URI != "" {
		t = append(t, Triple{cello.PartSource, IRI(p.URI)})
	}
	return Entity{IRI: iri, Types: []string{cello.ClassPart}, Triples: t}
}
