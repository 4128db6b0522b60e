package library

import (
	"github.com/cellocad/cello-webapp/adaptor"
	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
)

// Kind is the library entity a root component definition becomes.
type Kind int

const (
	KindSkip Kind = iota
	KindGate
	KindInputSensor
	KindOutputReporter
	KindPart
)

func (k Kind) String() string {
	switch k {
	case KindGate:
		return "gate"
	case KindInputSensor:
		return "input_sensor"
	case KindOutputReporter:
		return "output_reporter"
	case KindPart:
		return "part"
	default:
		return "skip"
	}
}

// Classify decides what cd becomes. A group_name annotation makes a gate;
// otherwise gate_type selects a sensor or reporter, and the backbone display
// id a bare part. Anything else is skipped.
func Classify(a *adaptor.Adaptor, cd *sbol.ComponentDefinition) Kind {
	if a.HasAnnotation(&cd.Identified, cello.AnnotationGroupName) {
		return KindGate
	}
	switch gt, _ := a.AnnotationString(&cd.Identified, cello.AnnotationGateType); gt {
	case cello.GateTypeInputSensor:
		return KindInputSensor
	case cello.GateTypeOutputReporter:
		return KindOutputReporter
	}
	if cd.DisplayID == cello.BackboneDisplayID {
		return KindPart
	}
	return KindSkip
}
