package cello

import (
	"strings"

	"github.com/c360studio/semstreams/vocabulary"

	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// Class IRIs of exported library entities.
const (
	ClassLibrary        = DefaultNamespace + "Library"
	ClassGate           = DefaultNamespace + "Gate"
	ClassInputSensor    = DefaultNamespace + "InputSensor"
	ClassOutputReporter = DefaultNamespace + "OutputReporter"
	ClassPart           = DefaultNamespace + "Part"
	ClassVariable       = DefaultNamespace + "Variable"
)

// Gate predicates.
const (
	// GateRegulator is the regulator (repressor/activator) name.
	GateRegulator = "cello.gate.regulator"

	// GateGroup is the group name; gates sharing a group are mutually exclusive in a circuit.
	GateGroup = "cello.gate.group"

	// GateType is the logic type.
	// Values: NOR, NOT, AND, OR, ...
	GateType = "cello.gate.type"

	// GateSystem is the regulator family, e.g. TetR.
	GateSystem = "cello.gate.system"

	// GateColor is the display color as a hex string without leading #.
	GateColor = "cello.gate.color"

	// GatePromoter links a gate or input sensor to its output promoter part.
	GatePromoter = "cello.gate.promoter"

	// GatePart links a gate to a part of its expression cassette.
	GatePart = "cello.gate.part"
)

// Response function predicates.
const (
	FunctionEquation     = "cello.function.equation"
	FunctionYMax         = "cello.function.ymax"
	FunctionYMin         = "cello.function.ymin"
	FunctionK            = "cello.function.k"
	FunctionN            = "cello.function.n"
	FunctionVariable     = "cello.function.variable"
	VariableOffThreshold = "cello.variable.offthreshold"
	VariableOnThreshold  = "cello.variable.onthreshold"
)

// Part, sensor and reporter predicates.
const (
	PartName      = "cello.part.name"
	PartType      = "cello.part.type"
	PartSequence  = "cello.part.sequence"
	PartSource    = "cello.part.source"
	SensorLow     = "cello.sensor.low"
	SensorHigh    = "cello.sensor.high"
	DevicePart    = "cello.device.part"
	LibraryMember = "cello.library.member"
)

// ParameterPredicates maps response function parameter names to predicates.
var ParameterPredicates = map[string]string{
	ParameterYMax: FunctionYMax,
	ParameterYMin: FunctionYMin,
	ParameterK:    FunctionK,
	ParameterN:    FunctionN,
}

func init() {
	vocabulary.Register(GateRegulator,
		vocabulary.WithDescription("Regulator expressed by the gate"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DefaultNamespace+AnnotationRegulator))

	vocabulary.Register(GateGroup,
		vocabulary.WithDescription("Gate group; at most one gate per group in a circuit"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DefaultNamespace+AnnotationGroupName))

	vocabulary.Register(GateType,
		vocabulary.WithDescription("Logic type of the gate: NOR, NOT, AND, OR"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DefaultNamespace+AnnotationGateType))

	vocabulary.Register(GateSystem,
		vocabulary.WithDescription("Regulator family of the gate"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DefaultNamespace+AnnotationSystem))

	vocabulary.Register(GateColor,
		vocabulary.WithDescription("Display color as a hex code"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DefaultNamespace+AnnotationColor))

	vocabulary.Register(GatePromoter,
		vocabulary.WithDescription("Output promoter regulated by the gate or sensor"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(DefaultNamespace+"promoter"))

	vocabulary.Register(GatePart,
		vocabulary.WithDescription("Part of the gate expression cassette"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(sbolvocab.PropComponent))

	vocabulary.Register(FunctionEquation,
		vocabulary.WithDescription("Symbolic response function equation"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DefaultNamespace+AnnotationEquation))

	vocabulary.Register(FunctionYMax,
		vocabulary.WithDescription("Maximum output of the response function"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(DefaultNamespace+ParameterYMax))

	vocabulary.Register(FunctionYMin,
		vocabulary.WithDescription("Minimum output of the response function"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(DefaultNamespace+ParameterYMin))

	vocabulary.Register(FunctionK,
		vocabulary.WithDescription("Hill function threshold constant"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(DefaultNamespace+ParameterK))

	vocabulary.Register(FunctionN,
		vocabulary.WithDescription("Hill coefficient"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(DefaultNamespace+ParameterN))

	vocabulary.Register(FunctionVariable,
		vocabulary.WithDescription("Input variable of the response function"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(DefaultNamespace+"variable"))

	vocabulary.Register(VariableOffThreshold,
		vocabulary.WithDescription("Input level below which the variable is off"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(DefaultNamespace+"off_threshold"))

	vocabulary.Register(VariableOnThreshold,
		vocabulary.WithDescription("Input level above which the variable is on"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(DefaultNamespace+"on_threshold"))

	vocabulary.Register(PartName,
		vocabulary.WithDescription("Part name (SBOL display id)"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(sbolvocab.PropDisplayID))

	vocabulary.Register(PartType,
		vocabulary.WithDescription("Part type: promoter, cds, rbs, terminator, ribozyme, scar, backbone"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(sbolvocab.PropRole))

	vocabulary.Register(PartSequence,
		vocabulary.WithDescription("DNA sequence of the part"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(sbolvocab.PropElements))

	vocabulary.Register(PartSource,
		vocabulary.WithDescription("URI of the SBOL component definition the part was built from"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(sbolvocab.PropPersistentIdentity))

	vocabulary.Register(SensorLow,
		vocabulary.WithDescription("Output promoter activity in the absence of signal"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(DefaultNamespace+"signal_low"))

	vocabulary.Register(SensorHigh,
		vocabulary.WithDescription("Output promoter activity in the presence of signal"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(DefaultNamespace+"signal_high"))

	vocabulary.Register(DevicePart,
		vocabulary.WithDescription("Part of an input sensor or output reporter"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(sbolvocab.PropComponent))

	vocabulary.Register(LibraryMember,
		vocabulary.WithDescription("Entity contained in the library"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(sbolvocab.PropMember))
}

// PredicateIRI returns the RDF IRI of a dotted predicate. Full IRIs pass
// through unchanged; unregistered predicates fall back to the Cello namespace.
func PredicateIRI(predicate string) string {
	if meta := vocabulary.GetPredicateMetadata(predicate); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	if strings.HasPrefix(predicate, "http://") || strings.HasPrefix(predicate, "https://") {
		return predicate
	}
	return DefaultNamespace + strings.ReplaceAll(predicate, ".", "_")
}
