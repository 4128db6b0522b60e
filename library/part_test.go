package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellocad/cello-webapp/sbol/testutil"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

func TestNewPartType(t *testing.T) {
	tests := []struct {
		name      string
		displayID string
		role      string
		want      string
	}{
		{"promoter", "pTac", sbolvocab.RolePromoter, "promoter"},
		{"cds", "AmtR", sbolvocab.RoleCDS, "cds"},
		{"rbs", "A1", sbolvocab.RoleRBS, "rbs"},
		{"terminator", "L3S2P55", sbolvocab.RoleTerminator, "terminator"},
		{"ribozyme", "RiboJ10", sbolvocab.RoleRibozyme, "ribozyme"},
		{"scar", "S1", sbolvocab.RoleScar, "scar"},
		{"backbone overrides role", "backbone", sbolvocab.RolePromoter, "backbone"},
		{"backbone without known role", "backbone", sbolvocab.RoleEngineeredRegion, "backbone"},
		{"unknown role", "region", sbolvocab.RoleEngineeredRegion, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.New()
			uri := b.Part(tt.displayID, tt.role, "ACGT")
			doc := b.Document()

			p, err := NewPart(doc, doc.ComponentDefinition(uri))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Type)
			assert.Equal(t, tt.displayID, p.Name)
			assert.Equal(t, uri, p.URI)
			assert.Equal(t, "ACGT", p.Sequence)
		})
	}
}

func TestNewPartNoSequence(t *testing.T) {
	b := testutil.New()
	cd := b.ComponentDefinition("pEmpty").Role(sbolvocab.RolePromoter).Get()

	_, err := NewPart(b.Document(), cd)
	require.Error(t, err)
	assert.True(t, IsLibraryError(err))
	assert.ErrorIs(t, err, ErrNoSequence)

	// A dangling sequence reference is no better.
	cd.Sequences = []string{"https://example.org/missing/1"}
	_, err = NewPart(b.Document(), cd)
	assert.ErrorIs(t, err, ErrNoSequence)
}

func TestUniqueParts(t *testing.T) {
	ter := &Part{Name: "L3S2P55", Type: "terminator", Sequence: "CTCG", URI: "u:ter"}
	terCopy := &Part{Name: "L3S2P55", Type: "terminator", Sequence: "CTCG", URI: "u:ter"}
	terOtherURI := &Part{Name: "L3S2P55", Type: "terminator", Sequence: "CTCG", URI: "u:ter2"}
	pTac := &Part{Name: "pTac", Type: "promoter", Sequence: "AACG", URI: "u:ptac"}
	amtR := &Part{Name: "AmtR", Type: "cds", Sequence: "ATGG", URI: "u:amtr"}

	got := UniqueParts([]*Part{pTac, ter}, []*Part{terCopy, amtR, nil}, []*Part{terOtherURI})

	var names []string
	for _, p := range got {
		names = append(names, p.Name+"@"+p.URI)
	}
	assert.Equal(t, []string{"AmtR@u:amtr", "L3S2P55@u:ter", "L3S2P55@u:ter2", "pTac@u:ptac"}, names)
	assert.Same(t, ter, got[1], "first occurrence wins")
}

func TestGatePartsVariables(t *testing.T) {
	p := &Part{Name: "p"}
	gp := &GateParts{
		Cassettes: map[string]*CassetteParts{
			"y": {Parts: []*Part{{Name: "b"}}},
			"x": {Parts: []*Part{{Name: "a"}}},
		},
		Promoter: p,
	}
	assert.Equal(t, []string{"x", "y"}, gp.Variables())

	var names []string
	for _, part := range gp.Parts() {
		names = append(names, part.Name)
	}
	assert.Equal(t, []string{"a", "b", "p"}, names)
}
