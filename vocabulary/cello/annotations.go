package cello

import "strings"

// DefaultNamespace is the namespace of Cello annotations on SBOL entities.
const DefaultNamespace = "http://cellocad.org/Terms/cello#"

// Annotation local names on gate, sensor and reporter component definitions.
const (
	AnnotationGroupName = "group_name"
	AnnotationRegulator = "regulator"
	AnnotationGateType  = "gate_type"
	AnnotationSystem    = "system"
	AnnotationColor     = "color_hexcode"
	AnnotationEquation  = "equation"
)

// Response function parameter names. They are annotation local names as well.
const (
	ParameterN    = "n"
	ParameterK    = "K"
	ParameterYMax = "ymax"
	ParameterYMin = "ymin"
)

// Parameters lists the response function parameters in serialization order.
var Parameters = []string{ParameterYMax, ParameterYMin, ParameterK, ParameterN}

// Threshold suffixes of response function variable annotations.
const (
	SuffixOffThreshold = "_off_threshold"
	SuffixOnThreshold  = "_on_threshold"
)

// Gate types that route a component definition away from gate assembly.
const (
	GateTypeInputSensor    = "input_sensor"
	GateTypeOutputReporter = "output_reporter"
)

// BackboneDisplayID marks the plasmid backbone part.
const BackboneDisplayID = "backbone"

// ThresholdVariable reports the variable name encoded in a threshold
// annotation local name, e.g. "x_off_threshold" -> "x".
func ThresholdVariable(localName string) (string, bool) {
	if !strings.HasSuffix(localName, SuffixOffThreshold) && !strings.HasSuffix(localName, SuffixOnThreshold) {
		return "", false
	}
	name, _, _ := strings.Cut(localName, "_")
	if name == "" {
		return "", false
	}
	return name, true
}
