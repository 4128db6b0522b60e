package library

import (
	"fmt"
	"slices"

	"github.com/cellocad/cello-webapp/adaptor"
	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
)

// ResponseFunctionVariable is one input of a response function with its
// activity thresholds.
type ResponseFunctionVariable struct {
	Name         string
	OffThreshold float64
	OnThreshold  float64
}

// ResponseFunctionParameter is one Hill function coefficient.
type ResponseFunctionParameter struct {
	Name  string
	Value float64
}

// ResponseFunction is a gate's transfer function.
type ResponseFunction struct {
	Equation   string
	Variables  []ResponseFunctionVariable
	Parameters []ResponseFunctionParameter
}

// Parameter returns the parameter with name.
func (rf *ResponseFunction) Parameter(name string) (ResponseFunctionParameter, bool) {
	for _, p := range rf.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ResponseFunctionParameter{}, false
}

// NewResponseFunction extracts the response function annotations of cd.
// Every variable needs both thresholds and all of n, K, ymax and ymin must
// be present and numeric.
func NewResponseFunction(a *adaptor.Adaptor, cd *sbol.ComponentDefinition) (*ResponseFunction, error) {
	const op = "response function"

	equation, ok := a.AnnotationString(&cd.Identified, cello.AnnotationEquation)
	if !ok {
		return nil, newError(cd.URI, op, fmt.Errorf("%w: %s", ErrMissingAnnotation, cello.AnnotationEquation))
	}

	var names []string
	for _, ann := range a.Annotations(&cd.Identified) {
		if name, ok := cello.ThresholdVariable(ann.Name.LocalPart); ok && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	rf := &ResponseFunction{Equation: equation}
	for _, name := range names {
		off, err := threshold(a, cd, name+cello.SuffixOffThreshold)
		if err != nil {
			return nil, newError(cd.URI, op, err)
		}
		on, err := threshold(a, cd, name+cello.SuffixOnThreshold)
		if err != nil {
			return nil, newError(cd.URI, op, err)
		}
		rf.Variables = append(rf.Variables, ResponseFunctionVariable{Name: name, OffThreshold: off, OnThreshold: on})
	}

	for _, name := range cello.Parameters {
		v, ok, err := a.AnnotationFloat(&cd.Identified, name)
		if err != nil {
			return nil, newError(cd.URI, op, fmt.Errorf("%w: %w", ErrInvalidAnnotation, err))
		}
		if !ok {
			return nil, newError(cd.URI, op, fmt.Errorf("%w: %s", ErrMissingAnnotation, name))
		}
		rf.Parameters = append(rf.Parameters, ResponseFunctionParameter{Name: name, Value: v})
	}
	return rf, nil
}

func threshold(a *adaptor.Adaptor, cd *sbol.ComponentDefinition, name string) (float64, error) {
	v, ok, err := a.AnnotationFloat(&cd.Identified, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAnnotation, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrIncompleteVariable, name)
	}
	return v, nil
}
