package library

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/cellocad/cello-webapp/vocabulary/cello"
)

type ucfGate struct {
	Collection string `json:"collection"`
	Regulator  string `json:"regulator"`
	GroupName  string `json:"group_name"`
	GateName   string `json:"gate_name"`
	GateType   string `json:"gate_type"`
	System     string `json:"system"`
	Color      string `json:"color_hexcode"`
	URI        string `json:"uri,omitempty"`
}

type ucfVariable struct {
	Name         string  `json:"name"`
	OffThreshold float64 `json:"off_threshold"`
	OnThreshold  float64 `json:"on_threshold"`
}

type ucfParameter struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type ucfResponseFunction struct {
	Collection string         `json:"collection"`
	GateName   string         `json:"gate_name"`
	Equation   string         `json:"equation"`
	Variables  []ucfVariable  `json:"variables"`
	Parameters []ucfParameter `json:"parameters"`
}

type ucfCassette struct {
	MapsToVariable string   `json:"maps_to_variable"`
	CassetteParts  []string `json:"cassette_parts"`
}

type ucfGateParts struct {
	Collection          string        `json:"collection"`
	GateName            string        `json:"gate_name"`
	ExpressionCassettes []ucfCassette `json:"expression_cassettes"`
	Promoter            string        `json:"promoter"`
}

type ucfInputSensor struct {
	Collection string   `json:"collection"`
	Name       string   `json:"name"`
	Promoter   string   `json:"promoter"`
	Parts      []string `json:"parts"`
	SignalLow  float64  `json:"signal_low"`
	SignalHigh float64  `json:"signal_high"`
	URI        string   `json:"uri,omitempty"`
}

type ucfOutputReporter struct {
	Collection string   `json:"collection"`
	Name       string   `json:"name"`
	Parts      []string `json:"parts"`
	URI        string   `json:"uri,omitempty"`
}

type ucfPart struct {
	Collection  string `json:"collection"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	DNASequence string `json:"dnasequence"`
	URI         string `json:"uri,omitempty"`
}

func partNames(parts []*Part) []string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.Name)
	}
	return names
}

// UCF returns the library as a list of UCF objects: library sections, then
// for every gate its gates, response_functions and gate_parts objects and
// attachments, then input_sensors, output_reporters and parts.
func (l *Library) UCF() ([]json.RawMessage, error) {
	var out []json.RawMessage
	add := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out = append(out, data)
		return nil
	}

	out = append(out, l.Objects...)

	for _, g := range l.Gates {
		if err := add(ucfGate{
			Collection: cello.CollectionGates,
			Regulator:  g.Regulator,
			GroupName:  g.Group,
			GateName:   g.Name,
			GateType:   g.GateType,
			System:     g.System,
			Color:      g.Color,
			URI:        g.URI,
		}); err != nil {
			return nil, err
		}

		rf := ucfResponseFunction{
			Collection: cello.CollectionResponseFunctions,
			GateName:   g.Name,
			Equation:   g.ResponseFunction.Equation,
			Variables:  []ucfVariable{},
			Parameters: []ucfParameter{},
		}
		for _, v := range g.ResponseFunction.Variables {
			rf.Variables = append(rf.Variables, ucfVariable(v))
		}
		for _, p := range g.ResponseFunction.Parameters {
			rf.Parameters = append(rf.Parameters, ucfParameter(p))
		}
		if err := add(rf); err != nil {
			return nil, err
		}

		gp := ucfGateParts{
			Collection:          cello.CollectionGateParts,
			GateName:            g.Name,
			ExpressionCassettes: []ucfCassette{},
		}
		for _, v := range g.GateParts.Variables() {
			gp.ExpressionCassettes = append(gp.ExpressionCassettes, ucfCassette{
				MapsToVariable: v,
				CassetteParts:  partNames(g.GateParts.Cassettes[v].Parts),
			})
		}
		if g.GateParts.Promoter != nil {
			gp.Promoter = g.GateParts.Promoter.Name
		}
		if err := add(gp); err != nil {
			return nil, err
		}

		out = append(out, g.Objects...)
	}

	for _, s := range l.InputSensors {
		obj := ucfInputSensor{
			Collection: cello.CollectionInputSensors,
			Name:       s.Name,
			Parts:      partNames(s.Parts),
			SignalLow:  s.SignalLow,
			SignalHigh: s.SignalHigh,
			URI:        s.URI,
		}
		if s.Promoter != nil {
			obj.Promoter = s.Promoter.Name
		}
		if err := add(obj); err != nil {
			return nil, err
		}
	}

	for _, r := range l.OutputReporters {
		if err := add(ucfOutputReporter{
			Collection: cello.CollectionOutputReporters,
			Name:       r.Name,
			Parts:      partNames(r.Parts),
			URI:        r.URI,
		}); err != nil {
			return nil, err
		}
	}

	for _, p := range l.Parts {
		if err := add(ucfPart{
			Collection:  cello.CollectionParts,
			Type:        p.Type,
			Name:        p.Name,
			DNASequence: p.Sequence,
			URI:         p.URI,
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MarshalJSON encodes the library as a UCF array.
func (l *Library) MarshalJSON() ([]byte, error) {
	objs, err := l.UCF()
	if err != nil {
		return nil, err
	}
	if objs == nil {
		objs = []json.RawMessage{}
	}
	return json.Marshal(objs)
}

// MarshalIndent encodes the library as an indented UCF array, the layout of
// library files written to disk.
func (l *Library) MarshalIndent() ([]byte, error) {
	objs, err := l.UCF()
	if err != nil {
		return nil, err
	}
	if objs == nil {
		objs = []json.RawMessage{}
	}
	return json.MarshalIndent(objs, "", "  ")
}

// ParseUCF reconstructs a library from a UCF array. Gate entries are joined
// by gate_name and part references resolved by part name. Objects of other
// collections carrying the gate_name of a known gate become that gate's
// objects; the rest are library objects.
func ParseUCF(data []byte) (*Library, error) {
	const op = "parse ucf"

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newError("", op, err)
	}

	var (
		gates     []ucfGate
		sensors   []ucfInputSensor
		reporters []ucfOutputReporter
		others    []json.RawMessage
		functions = make(map[string]ucfResponseFunction)
		gateParts = make(map[string]ucfGateParts)
		parts     []*Part
		byName    = make(map[string]*Part)
	)

	decode := func(obj json.RawMessage, v any) error {
		if err := json.Unmarshal(obj, v); err != nil {
			return newError("", op, err)
		}
		return nil
	}

	for _, obj := range raw {
		switch gjson.GetBytes(obj, cello.FieldCollection).String() {
		case cello.CollectionGates:
			var g ucfGate
			if err := decode(obj, &g); err != nil {
				return nil, err
			}
			gates = append(gates, g)
		case cello.CollectionResponseFunctions:
			var rf ucfResponseFunction
			if err := decode(obj, &rf); err != nil {
				return nil, err
			}
			functions[rf.GateName] = rf
		case cello.CollectionGateParts:
			var gp ucfGateParts
			if err := decode(obj, &gp); err != nil {
				return nil, err
			}
			gateParts[gp.GateName] = gp
		case cello.CollectionInputSensors:
			var s ucfInputSensor
			if err := decode(obj, &s); err != nil {
				return nil, err
			}
			sensors = append(sensors, s)
		case cello.CollectionOutputReporters:
			var r ucfOutputReporter
			if err := decode(obj, &r); err != nil {
				return nil, err
			}
			reporters = append(reporters, r)
		case cello.CollectionParts:
			var p ucfPart
			if err := decode(obj, &p); err != nil {
				return nil, err
			}
			part := &Part{Name: p.Name, Type: p.Type, Sequence: p.DNASequence, URI: p.URI}
			parts = append(parts, part)
			if _, ok := byName[part.Name]; !ok {
				byName[part.Name] = part
			}
		default:
			others = append(others, obj)
		}
	}

	resolve := func(owner string, names []string) ([]*Part, error) {
		out := make([]*Part, 0, len(names))
		for _, n := range names {
			p, ok := byName[n]
			if !ok {
				return nil, newError(owner, op, fmt.Errorf("%w: part %q", ErrMissingDefinition, n))
			}
			out = append(out, p)
		}
		return out, nil
	}
	promoter := func(owner, name string) (*Part, error) {
		if name == "" {
			return nil, nil
		}
		ps, err := resolve(owner, []string{name})
		if err != nil {
			return nil, err
		}
		return ps[0], nil
	}

	var lib Library
	gateIndex := make(map[string]*Gate)
	for _, u := range gates {
		g := &Gate{
			Name:      u.GateName,
			Regulator: u.Regulator,
			Group:     u.GroupName,
			GateType:  u.GateType,
			System:    u.System,
			Color:     u.Color,
			URI:       u.URI,
		}

		rf, ok := functions[u.GateName]
		if !ok {
			return nil, newError(u.GateName, op, fmt.Errorf("%w: response function", ErrMissingDefinition))
		}
		g.ResponseFunction = &ResponseFunction{Equation: rf.Equation}
		for _, v := range rf.Variables {
			g.ResponseFunction.Variables = append(g.ResponseFunction.Variables, ResponseFunctionVariable(v))
		}
		for _, name := range cello.Parameters {
			found := false
			for _, p := range rf.Parameters {
				if p.Name == name {
					g.ResponseFunction.Parameters = append(g.ResponseFunction.Parameters, ResponseFunctionParameter(p))
					found = true
					break
				}
			}
			if !found {
				return nil, newError(u.GateName, op, fmt.Errorf("%w: %s", ErrMissingAnnotation, name))
			}
		}

		gp, ok := gateParts[u.GateName]
		if !ok {
			return nil, newError(u.GateName, op, fmt.Errorf("%w: gate parts", ErrMissingDefinition))
		}
		g.GateParts = &GateParts{Cassettes: make(map[string]*CassetteParts, len(gp.ExpressionCassettes))}
		for _, c := range gp.ExpressionCassettes {
			ps, err := resolve(u.GateName, c.CassetteParts)
			if err != nil {
				return nil, err
			}
			g.GateParts.Cassettes[c.MapsToVariable] = &CassetteParts{Parts: ps}
		}
		p, err := promoter(u.GateName, gp.Promoter)
		if err != nil {
			return nil, err
		}
		g.GateParts.Promoter = p

		lib.Gates = append(lib.Gates, g)
		gateIndex[g.Name] = g
	}

	for _, u := range sensors {
		ps, err := resolve(u.Name, u.Parts)
		if err != nil {
			return nil, err
		}
		p, err := promoter(u.Name, u.Promoter)
		if err != nil {
			return nil, err
		}
		lib.InputSensors = append(lib.InputSensors, &InputSensor{
			Name:       u.Name,
			Parts:      ps,
			Promoter:   p,
			SignalLow:  u.SignalLow,
			SignalHigh: u.SignalHigh,
			URI:        u.URI,
		})
	}

	for _, u := range reporters {
		ps, err := resolve(u.Name, u.Parts)
		if err != nil {
			return nil, err
		}
		lib.OutputReporters = append(lib.OutputReporters, &OutputReporter{Name: u.Name, Parts: ps, URI: u.URI})
	}

	for _, obj := range others {
		if g, ok := gateIndex[gjson.GetBytes(obj, cello.FieldGateName).String()]; ok {
			g.Objects = append(g.Objects, obj)
			continue
		}
		lib.Objects = append(lib.Objects, obj)
	}

	return newLibrary(lib.Gates, lib.InputSensors, lib.OutputReporters, parts, lib.Objects), nil
}
