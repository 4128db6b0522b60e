package adaptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/sbol/testutil"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

func interactionURIs(items []*sbol.Interaction) []string {
	out := make([]string, 0, len(items))
	for _, in := range items {
		out = append(out, in.URI)
	}
	return out
}

func definitionURIs(items []*sbol.ComponentDefinition) []string {
	out := make([]string, 0, len(items))
	for _, cd := range items {
		out = append(out, cd.URI)
	}
	return out
}

func TestNewDefaultNamespace(t *testing.T) {
	assert.Equal(t, cello.DefaultNamespace, New("").Namespace())
	assert.Equal(t, "http://example.org/terms#", New("http://example.org/terms#").Namespace())
}

func TestAnnotations(t *testing.T) {
	b := testutil.New()
	cd := b.ComponentDefinition("gate").
		Annotate("group_name", " AmtR ").
		Annotate("ymax", "3.8").
		Annotate("n", "not-a-number").
		AnnotateIn("http://other.org/terms#", "regulator", "TetR").
		Get()

	a := New(cello.DefaultNamespace)

	t.Run("string", func(t *testing.T) {
		v, ok := a.AnnotationString(&cd.Identified, "group_name")
		require.True(t, ok)
		assert.Equal(t, "AmtR", v)

		_, ok = a.AnnotationString(&cd.Identified, "regulator")
		assert.False(t, ok, "annotation in another namespace must not match")
		assert.False(t, a.HasAnnotation(&cd.Identified, "regulator"))
		assert.True(t, a.HasAnnotation(&cd.Identified, "ymax"))
	})

	t.Run("float", func(t *testing.T) {
		v, ok, err := a.AnnotationFloat(&cd.Identified, "ymax")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.InDelta(t, 3.8, v, 1e-12)

		_, ok, err = a.AnnotationFloat(&cd.Identified, "ymin")
		assert.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = a.AnnotationFloat(&cd.Identified, "n")
		assert.True(t, ok)
		assert.Error(t, err)
	})

	t.Run("injected namespace", func(t *testing.T) {
		other := New("http://other.org/terms#")
		v, ok := other.AnnotationString(&cd.Identified, "regulator")
		require.True(t, ok)
		assert.Equal(t, "TetR", v)
		assert.Len(t, other.Annotations(&cd.Identified), 1)
		assert.Len(t, a.Annotations(&cd.Identified), 3)
	})
}

// regulationFixture wires AmtR_cds -> AmtR protein and returns the builder
// plus the URIs of the CDS, the protein and two promoters.
func regulationFixture(t *testing.T) (*testutil.Builder, string, string, string, string) {
	t.Helper()
	b := testutil.New()
	cds := b.Part("AmtR", sbolvocab.RoleCDS, "ATGGCA")
	protein := b.Protein("AmtR_protein").URI()
	pAmtR := b.Part("pAmtR", sbolvocab.RolePromoter, "GATTCG")
	pOther := b.Part("pOther", sbolvocab.RolePromoter, "GGGCCC")
	b.Production(cds, protein)
	return b, cds, protein, pAmtR, pOther
}

func TestInteractionsByType(t *testing.T) {
	b, cds, protein, pAmtR, _ := regulationFixture(t)
	inh := b.Inhibition(protein, pAmtR).Get()
	doc := b.Document()
	a := New("")

	got := a.InteractionsByType(doc, doc.ComponentDefinition(protein), sbolvocab.InteractionInhibition)
	assert.Equal(t, []string{inh.URI}, interactionURIs(got))

	got = a.InteractionsByType(doc, doc.ComponentDefinition(cds), sbolvocab.InteractionInhibition)
	assert.Empty(t, got)

	got = a.InteractionsByType(doc, doc.ComponentDefinition(cds), sbolvocab.InteractionGeneticProduction)
	assert.Len(t, got, 1)
}

func TestParticipantsByRole(t *testing.T) {
	b, _, protein, pAmtR, _ := regulationFixture(t)
	inh := b.Inhibition(protein, pAmtR).Get()
	doc := b.Document()
	a := New("")

	assert.Equal(t, []string{protein}, definitionURIs(a.ParticipantsByRole(doc, inh, sbolvocab.ParticipantInhibitor)))
	assert.Equal(t, []string{pAmtR}, definitionURIs(a.ParticipantsByRole(doc, inh, sbolvocab.ParticipantInhibited)))
	assert.Empty(t, a.ParticipantsByRole(doc, inh, sbolvocab.ParticipantStimulator))
}

func TestRegulationsDirect(t *testing.T) {
	b, cds, protein, pAmtR, _ := regulationFixture(t)
	stim := b.Stimulation(protein, pAmtR).Get()
	doc := b.Document()
	a := New("")

	regs := a.Regulations(doc, doc.ComponentDefinition(cds))
	assert.Equal(t, []string{stim.URI}, interactionURIs(regs))

	targets := a.Regulated(doc, doc.ComponentDefinition(cds))
	assert.Equal(t, []string{pAmtR}, definitionURIs(targets))
}

func TestRegulationsThroughComplex(t *testing.T) {
	b, cds, protein, pAmtR, _ := regulationFixture(t)
	inducer := b.SmallMolecule("IPTG").URI()
	cplx := b.Complex("LacI_IPTG").URI()
	b.Binding(cplx, protein, inducer)
	stim := b.Stimulation(cplx, pAmtR).Get()
	doc := b.Document()
	a := New("")

	regs := a.Regulations(doc, doc.ComponentDefinition(cds))
	assert.Equal(t, []string{stim.URI}, interactionURIs(regs))

	targets := a.Regulated(doc, doc.ComponentDefinition(cds))
	assert.Equal(t, []string{pAmtR}, definitionURIs(targets))
}

func TestRegulatedIgnoresWrongRoles(t *testing.T) {
	b, cds, protein, pAmtR, _ := regulationFixture(t)
	// The protein is the target here, not the regulator.
	b.Inhibition(pAmtR, protein)
	doc := b.Document()
	a := New("")

	assert.Empty(t, a.Regulations(doc, doc.ComponentDefinition(cds)))
	assert.Empty(t, a.Regulated(doc, doc.ComponentDefinition(cds)))
}

func TestRegulatedDeduplicatesAndOrders(t *testing.T) {
	b, cds, protein, pAmtR, pOther := regulationFixture(t)
	b.Inhibition(protein, pOther)
	b.Inhibition(protein, pAmtR)
	b.Inhibition(protein, pAmtR)
	doc := b.Document()
	a := New("")

	regs := a.Regulations(doc, doc.ComponentDefinition(cds))
	assert.Len(t, regs, 3)
	assert.IsIncreasing(t, interactionURIs(regs))

	targets := a.Regulated(doc, doc.ComponentDefinition(cds))
	assert.Equal(t, []string{pAmtR, pOther}, definitionURIs(targets))
}

func TestNoProduction(t *testing.T) {
	b := testutil.New()
	cds := b.Part("orphan", sbolvocab.RoleCDS, "ATG")
	doc := b.Document()
	a := New("")

	assert.Empty(t, a.Regulations(doc, doc.ComponentDefinition(cds)))
	assert.Empty(t, a.Regulated(doc, doc.ComponentDefinition(cds)))
}
