package export_test

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellocad/cello-webapp/export"
	"github.com/cellocad/cello-webapp/library"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
)

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

func loadLibrary(t *testing.T) *library.Library {
	t.Helper()
	data, err := os.ReadFile("testdata/library.UCF.json")
	require.NoError(t, err)
	lib, err := library.ParseUCF(data)
	require.NoError(t, err)
	return lib
}

func TestLibraryExporter(t *testing.T) {
	lib := loadLibrary(t)
	out, err := export.NewLibraryExporter("").Export(lib, export.FormatNTriples)
	require.NoError(t, err)

	triples := decodeNTriples(t, out)

	types := make(map[string]string)
	props := make(map[string]map[string][]string)
	for _, tr := range triples {
		s, p, o := tr.Subj.String(), tr.Pred.String(), tr.Obj.String()
		if p == rdfType {
			types[s] = o
			continue
		}
		if props[s] == nil {
			props[s] = make(map[string][]string)
		}
		props[s][p] = append(props[s][p], o)
	}

	const gateIRI = "https://synbiohub.example.org/public/Eco1C1G1T1/A1_AmtR_gate/1"

	t.Run("library root", func(t *testing.T) {
		assert.Equal(t, cello.ClassLibrary, types["urn:cello:library"])
		// One gate, one sensor, one reporter, seven parts.
		assert.Len(t, props["urn:cello:library"][cello.PredicateIRI(cello.LibraryMember)], 10)
	})

	t.Run("gate", func(t *testing.T) {
		assert.Equal(t, cello.ClassGate, types[gateIRI])
		gate := props[gateIRI]
		assert.Equal(t, []string{"AmtR"}, gate[cello.PredicateIRI(cello.GateRegulator)])
		assert.Equal(t, []string{"NOR"}, gate[cello.PredicateIRI(cello.GateType)])
		assert.Equal(t, []string{"1.6"}, gate[cello.PredicateIRI(cello.FunctionN)])
		assert.Equal(t, []string{"urn:cello:part/pAmtR"}, gate[cello.PredicateIRI(cello.GatePromoter)])
		assert.ElementsMatch(t, []string{
			"urn:cello:part/A1",
			"https://synbiohub.example.org/public/Eco1C1G1T1/AmtR/1",
			"urn:cello:part/L3S2P55",
		}, gate[cello.PredicateIRI(cello.GatePart)])
	})

	t.Run("variable", func(t *testing.T) {
		viri := gateIRI + "/variable/x"
		assert.Equal(t, cello.ClassVariable, types[viri])
		assert.Equal(t, []string{"0.01"}, props[viri][cello.PredicateIRI(cello.VariableOffThreshold)])
		on := props[viri][cello.PredicateIRI(cello.VariableOnThreshold)]
		require.Len(t, on, 1)
		v, err := strconv.ParseFloat(on[0], 64)
		require.NoError(t, err)
		assert.Equal(t, 3.0, v)
	})

	t.Run("sensor", func(t *testing.T) {
		iri := "urn:cello:input_sensor/LacI_sensor"
		assert.Equal(t, cello.ClassInputSensor, types[iri])
		assert.Equal(t, []string{"urn:cello:part/pTac"}, props[iri][cello.PredicateIRI(cello.GatePromoter)])
		assert.Equal(t, []string{"0.0034"}, props[iri][cello.PredicateIRI(cello.SensorLow)])
	})

	t.Run("part", func(t *testing.T) {
		iri := "https://synbiohub.example.org/public/Eco1C1G1T1/AmtR/1"
		assert.Equal(t, cello.ClassPart, types[iri])
		assert.Equal(t, []string{"cds"}, props[iri][cello.PredicateIRI(cello.PartType)])
		assert.Equal(t, []string{iri}, props[iri][cello.PredicateIRI(cello.PartSource)])
	})
}

func TestLibraryExporterFormats(t *testing.T) {
	lib := loadLibrary(t)
	x := export.NewLibraryExporter("https://cello.example.org/lib/")

	for format := range export.FormatRegistry {
		t.Run(string(format), func(t *testing.T) {
			out, err := x.Export(lib, format)
			require.NoError(t, err)
			assert.Contains(t, out, "https://cello.example.org/lib/part/pTac")
		})
	}
}
