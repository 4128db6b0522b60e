package library

import (
	"cmp"
	"encoding/json"
	"slices"
)

// Library is a technology library: gates, sensors, reporters, the parts they
// use and the free-standing JSON sections.
type Library struct {
	Gates           []*Gate
	InputSensors    []*InputSensor
	OutputReporters []*OutputReporter
	Parts           []*Part

	// Objects are library-level sections (header, measurement_std, ...).
	Objects []json.RawMessage
}

// Gate returns the gate with name, or nil.
func (l *Library) Gate(name string) *Gate {
	for _, g := range l.Gates {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// InputSensor returns the input sensor with name, or nil.
func (l *Library) InputSensor(name string) *InputSensor {
	for _, s := range l.InputSensors {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// OutputReporter returns the output reporter with name, or nil.
func (l *Library) OutputReporter(name string) *OutputReporter {
	for _, r := range l.OutputReporters {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Part returns the first part with name, or nil.
func (l *Library) Part(name string) *Part {
	for _, p := range l.Parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Stats summarises entity counts.
type Stats struct {
	Gates           int `json:"gates"`
	InputSensors    int `json:"input_sensors"`
	OutputReporters int `json:"output_reporters"`
	Parts           int `json:"parts"`
	Objects         int `json:"objects"`
}

// Stats returns entity counts.
func (l *Library) Stats() Stats {
	return Stats{
		Gates:           len(l.Gates),
		InputSensors:    len(l.InputSensors),
		OutputReporters: len(l.OutputReporters),
		Parts:           len(l.Parts),
		Objects:         len(l.Objects),
	}
}

// newLibrary orders the entities by name and merges the parts of every
// gate, sensor, reporter and standalone part into one deduplicated set.
func newLibrary(gates []*Gate, sensors []*InputSensor, reporters []*OutputReporter, standalone []*Part, objects []json.RawMessage) *Library {
	slices.SortFunc(gates, func(a, b *Gate) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(sensors, func(a, b *InputSensor) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(reporters, func(a, b *OutputReporter) int { return cmp.Compare(a.Name, b.Name) })

	groups := [][]*Part{standalone}
	for _, g := range gates {
		groups = append(groups, g.Parts())
	}
	for _, s := range sensors {
		groups = append(groups, s.AllParts())
	}
	for _, r := range reporters {
		groups = append(groups, r.Parts)
	}

	return &Library{
		Gates:           gates,
		InputSensors:    sensors,
		OutputReporters: reporters,
		Parts:           UniqueParts(groups...),
		Objects:         objects,
	}
}
