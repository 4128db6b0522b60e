package library

import (
	"fmt"

	"github.com/cellocad/cello-webapp/adaptor"
	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
)

// InputSensor is a sensor device whose output promoter responds to an
// external signal.
type InputSensor struct {
	Name       string
	Parts      []*Part
	Promoter   *Part
	SignalLow  float64
	SignalHigh float64
	URI        string
}

// AllParts returns the sensor parts followed by its output promoter.
func (s *InputSensor) AllParts() []*Part {
	out := append([]*Part(nil), s.Parts...)
	if s.Promoter != nil {
		out = append(out, s.Promoter)
	}
	return out
}

// NewInputSensor builds an input sensor. The regulator is the first CDS
// sub-component, or the sensor definition itself when it has none. The
// regulator must take part in exactly one regulation, whose ymin and ymax
// annotations are the low and high signal levels, and regulate exactly one
// promoter.
func NewInputSensor(a *adaptor.Adaptor, doc *sbol.Document, cd *sbol.ComponentDefinition) (*InputSensor, error) {
	const op = "input sensor"

	parts, err := componentParts(doc, cd)
	if err != nil {
		return nil, err
	}

	regulator := firstCDS(doc, cd)
	if regulator == nil {
		regulator = cd
	}

	regs := a.Regulations(doc, regulator)
	if len(regs) != 1 {
		return nil, newError(cd.URI, op, exactlyOne("regulations", len(regs)))
	}
	low, err := signalLevel(a, regs[0], cd, cello.ParameterYMin)
	if err != nil {
		return nil, newError(cd.URI, op, err)
	}
	high, err := signalLevel(a, regs[0], cd, cello.ParameterYMax)
	if err != nil {
		return nil, newError(cd.URI, op, err)
	}

	promoter, err := regulatedPromoter(a, doc, cd, regulator)
	if err != nil {
		return nil, err
	}

	return &InputSensor{
		Name:       cd.DisplayID,
		Parts:      parts,
		Promoter:   promoter,
		SignalLow:  low,
		SignalHigh: high,
		URI:        cd.URI,
	}, nil
}

// signalLevel reads a level from the regulation interaction, falling back to
// the sensor definition.
func signalLevel(a *adaptor.Adaptor, reg *sbol.Interaction, cd *sbol.ComponentDefinition, name string) (float64, error) {
	for _, id := range []*sbol.Identified{&reg.Identified, &cd.Identified} {
		v, ok, err := a.AnnotationFloat(id, name)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidAnnotation, err)
		}
		if ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingAnnotation, name)
}

// OutputReporter is a reporter device, e.g. a fluorescent protein cassette.
type OutputReporter struct {
	Name  string
	Parts []*Part
	URI   string
}

// NewOutputReporter builds an output reporter from its sorted sub-components.
func NewOutputReporter(doc *sbol.Document, cd *sbol.ComponentDefinition) (*OutputReporter, error) {
	parts, err := componentParts(doc, cd)
	if err != nil {
		return nil, err
	}
	return &OutputReporter{
		Name:  cd.DisplayID,
		Parts: parts,
		URI:   cd.URI,
	}, nil
}
