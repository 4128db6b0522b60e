// Package cello provides the Cello vocabulary: annotation names read from
// SBOL documents, the collection and field names of the UCF (User Constraints
// File) library format, and dotted predicates for RDF export.
//
// # Annotations
//
// Cello attaches its gate metadata to SBOL component definitions and
// interactions as annotations in its own namespace (DefaultNamespace). The
// namespace is configurable; the constants here are local names only:
//
//	group_name, regulator, gate_type, system, color_hexcode, equation,
//	n, K, ymax, ymin, <variable>_off_threshold, <variable>_on_threshold
//
// # UCF
//
// A UCF document is a flat JSON array. Every element carries a "collection"
// discriminator (gates, response_functions, gate_parts, input_sensors,
// output_reporters, parts, plus pass-through sections such as header).
//
// # Predicates
//
// Predicates follow the three-level dotted notation of the semstreams
// vocabulary registry and are registered in init() with IRIs in the Cello
// namespace so that an exported library can be read by RDF tooling:
//
//	meta := vocabulary.GetPredicateMetadata(cello.GateRegulator)
//	// meta.StandardIRI == "http://cellocad.org/Terms/cello#regulator"
package cello
