// Package sbol provides the IRIs of the Synthetic Biology Open Language (SBOL 2)
// data model and of the ontologies SBOL documents use to type their entities.
//
// # Namespaces
//
//   - SBOL 2 core: http://sbols.org/v2#
//   - Sequence Ontology (component roles): http://identifiers.org/so/SO:nnnnnnn
//   - Systems Biology Ontology (interaction types, participation roles):
//     http://identifiers.org/biomodels.sbo/SBO:nnnnnnn
//   - EDAM (attachment formats): http://identifiers.org/edam/format_nnnn
//
// # Usage
//
//	import vocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
//
//	if cd.HasRole(vocab.RoleCDS) {
//	    // coding sequence
//	}
//
// The constants are plain strings so they compare directly against the IRIs
// carried by a decoded document.
package sbol
