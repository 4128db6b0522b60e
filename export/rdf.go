// Package export renders built libraries as RDF (Turtle, N-Triples or JSON-LD).
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cellocad/cello-webapp/vocabulary/cello"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

const xsdNamespace = "http://www.w3.org/2001/XMLSchema#"

// IRI marks a triple object as a resource reference rather than a literal.
type IRI string

// Triple is a predicate-object pair of an entity. Predicate is either a
// registered dotted predicate or a full IRI.
type Triple struct {
	Predicate string
	Object    any
}

// Entity is an exportable subject with its types and triples.
type Entity struct {
	IRI     string
	Types   []string
	Triples []Triple
}

// RDFExporter collects entities and serializes them.
type RDFExporter struct {
	entities []Entity
	prefixes map[string]string
}

// NewRDFExporter creates an exporter with the default prefixes.
func NewRDFExporter() *RDFExporter {
	return &RDFExporter{
		entities: make([]Entity, 0),
		prefixes: defaultPrefixes(),
	}
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":   sbolvocab.RDFNamespace,
		"xsd":   xsdNamespace,
		"dc":    sbolvocab.DcTermsNamespace,
		"prov":  sbolvocab.ProvNamespace,
		"sbol":  sbolvocab.Namespace,
		"cello": cello.DefaultNamespace,
	}
}

// SetPrefix adds or replaces a namespace prefix.
func (e *RDFExporter) SetPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// AddEntity adds an entity to be exported.
func (e *RDFExporter) AddEntity(entity Entity) {
	e.entities = append(e.entities, entity)
}

// Len returns the number of collected entities.
func (e *RDFExporter) Len() int {
	return len(e.entities)
}

// Export serializes all entities to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return e.toJSONLD()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// toTurtle serializes to Turtle format.
func (e *RDFExporter) toTurtle() string {
	w := NewTurtleWriter(e.prefixes)
	w.WritePrefixes()

	for _, entity := range e.entities {
		w.WriteSubject(entity.IRI)
		total := len(entity.Types) + len(entity.Triples)
		n := 0
		for _, t := range entity.Types {
			n++
			w.WriteType(t, n == total)
		}
		for _, triple := range entity.Triples {
			n++
			w.WritePredicate(cello.PredicateIRI(triple.Predicate), triple.Object, n == total)
		}
		if total == 0 {
			w.WriteType(sbolvocab.RDFNamespace+"Resource", true)
		}
		w.WriteBlank()
	}

	return w.String()
}

// toNTriples serializes to N-Triples format.
func (e *RDFExporter) toNTriples() string {
	w := NewNTriplesWriter()

	for _, entity := range e.entities {
		for _, t := range entity.Types {
			w.WriteTypeTriple(entity.IRI, t)
		}
		for _, triple := range entity.Triples {
			w.WriteTriple(entity.IRI, cello.PredicateIRI(triple.Predicate), triple.Object)
		}
	}

	return w.String()
}

// toJSONLD serializes to JSON-LD format. Repeated predicates become arrays.
func (e *RDFExporter) toJSONLD() (string, error) {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)

	for _, entity := range e.entities {
		props := make(map[string]any)
		for _, triple := range entity.Triples {
			key := cello.PredicateIRI(triple.Predicate)
			val := formatObjectJSONLD(triple.Object)
			switch existing := props[key].(type) {
			case nil:
				props[key] = val
			case []any:
				props[key] = append(existing, val)
			default:
				props[key] = []any{existing, val}
			}
		}
		w.AddNode(entity.IRI, entity.Types, props)
	}

	return w.String()
}

// formatObject formats an object value for Turtle output.
func formatObject(obj any) string {
	switch v := obj.(type) {
	case IRI:
		return fmt.Sprintf("<%s>", string(v))
	case string:
		return fmt.Sprintf("\"%s\"", escapeString(v))
	case int, int32, int64:
		return fmt.Sprintf("\"%d\"^^xsd:integer", v)
	case float32, float64:
		return fmt.Sprintf("\"%s\"^^xsd:double", formatFloat(v))
	case bool:
		return fmt.Sprintf("\"%t\"^^xsd:boolean", v)
	default:
		return fmt.Sprintf("\"%s\"", escapeString(fmt.Sprint(v)))
	}
}

// formatObjectNTriples formats an object value for N-Triples output.
func formatObjectNTriples(obj any) string {
	switch v := obj.(type) {
	case IRI:
		return fmt.Sprintf("<%s>", string(v))
	case string:
		return fmt.Sprintf("\"%s\"", escapeString(v))
	case int, int32, int64:
		return fmt.Sprintf("\"%d\"^^<%sinteger>", v, xsdNamespace)
	case float32, float64:
		return fmt.Sprintf("\"%s\"^^<%sdouble>", formatFloat(v), xsdNamespace)
	case bool:
		return fmt.Sprintf("\"%t\"^^<%sboolean>", v, xsdNamespace)
	default:
		return fmt.Sprintf("\"%s\"", escapeString(fmt.Sprint(v)))
	}
}

// formatObjectJSONLD converts an object value to its JSON-LD representation.
func formatObjectJSONLD(obj any) any {
	switch v := obj.(type) {
	case IRI:
		return map[string]string{"@id": string(v)}
	case string, int, int32, int64, float32, float64, bool:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat renders a float in the shortest form that round-trips.
func formatFloat(v any) string {
	s := fmt.Sprintf("%v", v)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
