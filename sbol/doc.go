// Package sbol provides the SBOL 2 document model consumed by the library
// builder.
//
// Documents are decoded from RDF/XML with Decode, or assembled in memory with
// the Add methods. The model covers the subset of SBOL 2 the builder walks:
// component definitions with their sub-components, sequences, module
// definitions with interactions and participations, attachments and
// collections. Every Identified entity keeps its non-SBOL properties as
// Annotations so namespace-scoped lookups (for example Cello annotations)
// work without knowing the namespace at decode time.
//
// A Document is not safe for concurrent mutation; once built it is treated as
// an immutable snapshot and may be read from multiple goroutines.
package sbol
