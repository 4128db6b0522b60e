// Package library reconstructs a Cello technology library from an SBOL
// document.
//
// A Builder classifies every root component definition once (Classify) and
// builds a Gate, InputSensor, OutputReporter or bare Part from it. Gates are
// recognised by a group_name annotation, sensors and reporters by their
// gate_type, and the plasmid backbone by its display id. Everything else is
// skipped. The parts of all built entities are merged into one deduplicated
// collection, and the JSON attachments named in cello.LibrarySections are
// fetched and kept verbatim.
//
// The result serializes to the compiler's UCF dialect: a flat JSON array of
// objects tagged with a "collection" field.
//
// Building is all-or-nothing. Any structural problem in the document or any
// failed attachment fetch aborts the build with a *LibraryError.
package library
