package library

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/cellocad/cello-webapp/adaptor"
	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/sbol/testutil"
	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

type annotation struct {
	name  string
	value string
}

var gateAnnotations = []annotation{
	{"group_name", "AmtR"},
	{"regulator", "AmtR"},
	{"gate_type", "NOR"},
	{"system", "TetR"},
	{"color_hexcode", "3BA9E0"},
	{"equation", "ymin+(ymax-ymin)/(1.0+(x/K)^n)"},
	{"ymax", "3.8"},
	{"ymin", "0.06"},
	{"K", "0.07"},
	{"n", "1.6"},
	{"x_off_threshold", "0.01"},
	{"x_on_threshold", "3.0"},
}

// annotate applies anns to c, leaving out the names in skip.
func annotate(c *testutil.CD, anns []annotation, skip ...string) *testutil.CD {
	for _, a := range anns {
		if slices.Contains(skip, a.name) {
			continue
		}
		c.Annotate(a.name, a.value)
	}
	return c
}

// gateFixture is a document with one AmtR NOR gate whose CDS inhibits pAmtR
// directly.
type gateFixture struct {
	b       *testutil.Builder
	gate    string
	rbs     string
	cds     string
	ter     string
	protein string
	pAmtR   string
}

func newGateFixture(t *testing.T, skip ...string) *gateFixture {
	t.Helper()
	b := testutil.New()
	f := &gateFixture{b: b}
	f.rbs = b.Part("A1", sbolvocab.RoleRBS, "AAAGAGGAGAAA")
	f.cds = b.Part("AmtR", sbolvocab.RoleCDS, "ATGGCAGGCGCAGTTGGTCGTCCGCGG")
	f.ter = b.Part("L3S2P55", sbolvocab.RoleTerminator, "CTCGGTACCAAAGACGAACAATAAGACGCTGAAAAGCGTCTTTTTTCGTTTTGGTCC")
	f.pAmtR = b.Part("pAmtR", sbolvocab.RolePromoter, "GATTCGTTACCAATTGACAGTTTCTATCGATCTATAGATAATGCTAGC")
	f.protein = b.Protein("AmtR_protein").URI()
	b.Production(f.cds, f.protein)
	b.Inhibition(f.protein, f.pAmtR)

	f.gate = annotate(b.ComponentDefinition("A1_AmtR"), gateAnnotations, skip...).
		Components(f.rbs, f.cds, f.ter).
		URI()
	return f
}

func (f *gateFixture) doc() *sbol.Document { return f.b.Document() }

func (f *gateFixture) cd(uri string) *sbol.ComponentDefinition {
	return f.b.Document().ComponentDefinition(uri)
}

// addSensor adds a LacI input sensor repressing pTac, with signal levels on
// the regulation.
func addSensor(b *testutil.Builder) (sensor, pTac string) {
	lacI := b.Part("LacI", sbolvocab.RoleCDS, "ATGAAACCAGTAACGTTATACGATGTCGCAGAG")
	protein := b.Protein("LacI_protein").URI()
	pTac = b.Part("pTac", sbolvocab.RolePromoter, "AACGATCGTTGGCTGTGTTGACAATTAATCATCGGCTCG")
	b.Production(lacI, protein)
	b.Inhibition(protein, pTac).Annotate("ymin", "0.0034").Annotate("ymax", "2.8")
	sensor = b.ComponentDefinition("LacI_sensor").
		Annotate("gate_type", "input_sensor").
		Components(lacI).
		URI()
	return sensor, pTac
}

// addReporter adds a YFP output reporter that shares the L3S2P55 terminator.
func addReporter(b *testutil.Builder, ter string) string {
	yfp := b.Part("YFP", sbolvocab.RoleCDS, "ATGGTGAGCAAGGGCGAGGAGCTGTTCACCG")
	return b.ComponentDefinition("YFP_reporter").
		Annotate("gate_type", "output_reporter").
		Components(yfp, ter).
		URI()
}

// fakeFetcher serves attachment content by source URL.
type fakeFetcher struct {
	mu      sync.Mutex
	content map[string]string
	fail    map[string]error
	calls   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{content: make(map[string]string), fail: make(map[string]error)}
}

func (f *fakeFetcher) FetchAttachment(_ context.Context, att *sbol.Attachment) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, att.Source)
	if err := f.fail[att.Source]; err != nil {
		return nil, err
	}
	c, ok := f.content[att.Source]
	if !ok {
		return nil, fmt.Errorf("no content for %s", att.Source)
	}
	return []byte(c), nil
}

// libraryFixture is a document with a gate, a sensor, a reporter, a
// backbone, an unannotated definition and two library sections.
func libraryFixture(t *testing.T) (*sbol.Document, *fakeFetcher) {
	t.Helper()
	f := newGateFixture(t)
	b := f.b
	addSensor(b)
	addReporter(b, f.ter)
	b.Part("backbone", sbolvocab.RoleEngineeredRegion, "GGCGCGCCAAGCTT")
	b.ComponentDefinition("unrelated").Role(sbolvocab.RoleEngineeredRegion)

	fetch := newFakeFetcher()

	cyto := b.Attachment("A1_AmtR_cytometry", "https://files.example.org/A1_AmtR_cytometry")
	b.Document().ComponentDefinition(f.gate).Attachments = []string{cyto}
	fetch.content["https://files.example.org/A1_AmtR_cytometry"] =
		`[{"collection":"gate_cytometry","gate_name":"A1_AmtR","cytometry_data":[]}]`

	b.Attachment("measurement_std.json", "https://files.example.org/measurement_std")
	fetch.content["https://files.example.org/measurement_std"] =
		`[{"collection":"measurement_std","signal_carrier_units":"RPU"}]`
	b.Attachment("header", "https://files.example.org/header")
	fetch.content["https://files.example.org/header"] =
		`{"collection":"header","description":"AmtR test library","version":"Eco1C1G1T1"}`
	b.Attachment("notes", "https://files.example.org/notes")

	return b.Document(), fetch
}

func newAdaptor() *adaptor.Adaptor { return adaptor.New("") }
