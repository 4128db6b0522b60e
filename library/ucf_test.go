package library

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/cellocad/cello-webapp/vocabulary/cello"
)

func buildFixtureLibrary(t *testing.T) *Library {
	t.Helper()
	doc, fetch := libraryFixture(t)
	lib, err := NewBuilder(newAdaptor(), fetch).Build(context.Background(), doc)
	require.NoError(t, err)
	return lib
}

func TestUCFOrder(t *testing.T) {
	lib := buildFixtureLibrary(t)
	objs, err := lib.UCF()
	require.NoError(t, err)

	var order []string
	for _, obj := range objs {
		order = append(order, gjson.GetBytes(obj, "collection").String())
	}
	want := []string{
		"header", "measurement_std",
		"gates", "response_functions", "gate_parts", "gate_cytometry",
		"input_sensors", "output_reporters",
	}
	for range 8 {
		want = append(want, "parts")
	}
	assert.Equal(t, want, order)
}

func TestUCFObjects(t *testing.T) {
	lib := buildFixtureLibrary(t)
	objs, err := lib.UCF()
	require.NoError(t, err)

	find := func(collection string) string {
		for _, obj := range objs {
			if gjson.GetBytes(obj, "collection").String() == collection {
				return string(obj)
			}
		}
		t.Fatalf("no %s object", collection)
		return ""
	}

	gate := find("gates")
	assert.Equal(t, "A1_AmtR", gjson.Get(gate, "gate_name").String())
	assert.Equal(t, "AmtR", gjson.Get(gate, "regulator").String())
	assert.Equal(t, "AmtR", gjson.Get(gate, "group_name").String())
	assert.Equal(t, "NOR", gjson.Get(gate, "gate_type").String())
	assert.Equal(t, "TetR", gjson.Get(gate, "system").String())
	assert.Equal(t, "3BA9E0", gjson.Get(gate, "color_hexcode").String())

	rf := find("response_functions")
	assert.Equal(t, "A1_AmtR", gjson.Get(rf, "gate_name").String())
	assert.Equal(t, "ymin+(ymax-ymin)/(1.0+(x/K)^n)", gjson.Get(rf, "equation").String())
	assert.Equal(t, `["ymax","ymin","K","n"]`, gjson.Get(rf, "parameters.#.name").Raw)
	assert.InDelta(t, 1.6, gjson.Get(rf, "parameters.3.value").Float(), 1e-12)
	assert.Equal(t, "x", gjson.Get(rf, "variables.0.name").String())
	assert.InDelta(t, 0.01, gjson.Get(rf, "variables.0.off_threshold").Float(), 1e-12)
	assert.InDelta(t, 3.0, gjson.Get(rf, "variables.0.on_threshold").Float(), 1e-12)

	gp := find("gate_parts")
	assert.Equal(t, "pAmtR", gjson.Get(gp, "promoter").String())
	assert.Equal(t, "x", gjson.Get(gp, "expression_cassettes.0.maps_to_variable").String())
	assert.Equal(t, `["A1","AmtR","L3S2P55"]`, gjson.Get(gp, "expression_cassettes.0.cassette_parts").Raw)

	sensor := find("input_sensors")
	assert.Equal(t, "LacI_sensor", gjson.Get(sensor, "name").String())
	assert.Equal(t, "pTac", gjson.Get(sensor, "promoter").String())
	assert.Equal(t, `["LacI"]`, gjson.Get(sensor, "parts").Raw)
	assert.InDelta(t, 0.0034, gjson.Get(sensor, "signal_low").Float(), 1e-12)
	assert.InDelta(t, 2.8, gjson.Get(sensor, "signal_high").Float(), 1e-12)

	reporter := find("output_reporters")
	assert.Equal(t, `["YFP","L3S2P55"]`, gjson.Get(reporter, "parts").Raw)

	part := find("parts")
	assert.Equal(t, "A1", gjson.Get(part, "name").String())
	assert.Equal(t, "rbs", gjson.Get(part, "type").String())
	assert.Equal(t, "AAAGAGGAGAAA", gjson.Get(part, "dnasequence").String())
	assert.True(t, gjson.Get(part, "uri").Exists())
}

func TestParseUCFRoundTrip(t *testing.T) {
	lib := buildFixtureLibrary(t)
	data, err := lib.MarshalIndent()
	require.NoError(t, err)

	parsed, err := ParseUCF(data)
	require.NoError(t, err)
	assert.Equal(t, lib.Stats(), parsed.Stats())

	again, err := json.Marshal(parsed)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))

	g := parsed.Gate("A1_AmtR")
	require.NotNil(t, g)
	assert.Equal(t, "pAmtR", g.GateParts.Promoter.Name)
	assert.Same(t, parsed.Part("pAmtR"), g.GateParts.Promoter)
	assert.Len(t, g.Objects, 1)
	assert.NotNil(t, parsed.InputSensor("LacI_sensor"))
	assert.NotNil(t, parsed.OutputReporter("YFP_reporter"))
	assert.Nil(t, parsed.Gate("missing"))
}

func TestParseUCFErrors(t *testing.T) {
	tests := []struct {
		name string
		ucf  string
		want error
	}{
		{
			name: "not an array",
			ucf:  `{"collection":"gates"}`,
		},
		{
			name: "missing response function",
			ucf:  `[{"collection":"gates","gate_name":"G"},{"collection":"gate_parts","gate_name":"G","expression_cassettes":[],"promoter":""}]`,
			want: ErrMissingDefinition,
		},
		{
			name: "missing parameter",
			ucf: `[{"collection":"gates","gate_name":"G"},
				{"collection":"response_functions","gate_name":"G","equation":"x","variables":[],
				 "parameters":[{"name":"ymax","value":1},{"name":"ymin","value":0},{"name":"K","value":1}]},
				{"collection":"gate_parts","gate_name":"G","expression_cassettes":[],"promoter":""}]`,
			want: ErrMissingAnnotation,
		},
		{
			name: "unknown part",
			ucf:  `[{"collection":"output_reporters","name":"R","parts":["nope"]}]`,
			want: ErrMissingDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUCF([]byte(tt.ucf))
			require.Error(t, err)
			assert.True(t, IsLibraryError(err))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestParseUCFUnknownCollections(t *testing.T) {
	lib, err := ParseUCF([]byte(`[
		{"collection":"header","version":"Eco1C1G1T1"},
		{"collection":"motif_library","gate_name":"not-a-gate"},
		{"collection":"parts","type":"promoter","name":"pTac","dnasequence":"AACG"}
	]`))
	require.NoError(t, err)
	assert.Len(t, lib.Objects, 2)
	require.Len(t, lib.Parts, 1)
	assert.Equal(t, "pTac", lib.Parts[0].Name)
	assert.Empty(t, lib.Parts[0].URI)
}

func TestUCFFieldNamesMatchTags(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeOf(ucfGate{}),
		reflect.TypeOf(ucfResponseFunction{}),
		reflect.TypeOf(ucfGateParts{}),
	} {
		collection, ok := typ.FieldByName("Collection")
		require.True(t, ok, typ.Name())
		assert.Equal(t, cello.FieldCollection, collection.Tag.Get("json"), typ.Name())

		gateName, ok := typ.FieldByName("GateName")
		require.True(t, ok, typ.Name())
		assert.Equal(t, cello.FieldGateName, gateName.Tag.Get("json"), typ.Name())
	}
}
