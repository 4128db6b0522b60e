package cello

// Collection discriminators of UCF objects.
const (
	CollectionGates             = "gates"
	CollectionResponseFunctions = "response_functions"
	CollectionGateParts         = "gate_parts"
	CollectionInputSensors      = "input_sensors"
	CollectionOutputReporters   = "output_reporters"
	CollectionParts             = "parts"
)

// Library-level sections passed through verbatim from document attachments,
// in the order they are written.
const (
	CollectionHeader           = "header"
	CollectionMeasurementStd   = "measurement_std"
	CollectionLogicConstraints = "logic_constraints"
	CollectionEugeneRules      = "eugene_rules"
	CollectionGeneticLocations = "genetic_locations"
)

// LibrarySections is the allow-list of top-level attachment names.
var LibrarySections = []string{
	CollectionHeader,
	CollectionMeasurementStd,
	CollectionLogicConstraints,
	CollectionEugeneRules,
	CollectionGeneticLocations,
}

// UCF field names looked up without decoding an object.
const (
	FieldCollection = "collection"
	FieldGateName   = "gate_name"
)

// Part types derived from Sequence Ontology roles.
const (
	PartPromoter   = "promoter"
	PartCDS        = "cds"
	PartRBS        = "rbs"
	PartTerminator = "terminator"
	PartRibozyme   = "ribozyme"
	PartScar       = "scar"
	PartBackbone   = "backbone"
)
