package project

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUCF = `[{"collection":"header","version":"Eco1C1G1T1"},{"collection":"parts","type":"promoter","name":"pTac","dnasequence":"AACG"}]`

func TestLibraryRefValidate(t *testing.T) {
	tests := []struct {
		name  string
		ref   LibraryRef
		valid bool
	}{
		{"local", LibraryRef{Kind: LibraryLocal, TargetData: "Eco1C1G1T1.UCF.json"}, true},
		{"local without ucf", LibraryRef{Kind: LibraryLocal}, false},
		{"synbiohub", LibraryRef{Kind: LibrarySynBioHub, Collection: "https://synbiohub.org/public/Eco1C1G1T1/Eco1C1G1T1_collection/1"}, true},
		{"synbiohub without collection", LibraryRef{Kind: LibrarySynBioHub}, false},
		{"unknown kind", LibraryRef{Kind: "ftp"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ref.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSpecification)
			}
		})
	}
}

func TestSpecify(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	require.NoError(t, m.Create(ctx, "alice", "toggle"))
	dir, err := m.Dir("alice", "toggle")
	require.NoError(t, err)

	spec := &Specification{
		Verilog: "module toggle(input a, output y); assign y = ~a; endmodule",
		Options: json.RawMessage(`{"assignment":"SimulatedAnnealing"}`),
		Library: LibraryRef{Kind: LibraryLocal, TargetData: "Eco1C1G1T1.UCF.json", Input: "Eco1C1G1T1.input.json"},
	}

	record, err := m.Specify(ctx, "alice", "toggle", spec, &LibraryFiles{
		UCF:   []byte(testUCF),
		Input: []byte(`[]`),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{VerilogFile, OptionsFile, DefaultLibraryFile, InputFile}, record.Files)

	verilog, err := os.ReadFile(filepath.Join(dir, VerilogFile))
	require.NoError(t, err)
	assert.Equal(t, spec.Verilog, string(verilog))

	ucf, err := os.ReadFile(filepath.Join(dir, DefaultLibraryFile))
	require.NoError(t, err)
	assert.JSONEq(t, testUCF, string(ucf))

	stored, err := m.Specification("alice", "toggle")
	require.NoError(t, err)
	assert.Equal(t, spec.Library, stored.Library)

	t.Run("respecify drops stale files", func(t *testing.T) {
		spec.Library = LibraryRef{Kind: LibrarySynBioHub, Collection: "Eco1C1G1T1"}
		spec.Options = nil
		_, err := m.Specify(ctx, "alice", "toggle", spec, &LibraryFiles{UCF: []byte(testUCF)})
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(dir, InputFile))
		assert.True(t, os.IsNotExist(err))

		options, err := os.ReadFile(filepath.Join(dir, OptionsFile))
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(options))
	})

	t.Run("no temp files left", func(t *testing.T) {
		files, err := m.Files("alice", "toggle")
		require.NoError(t, err)
		for _, f := range files {
			assert.NotEqual(t, ".tmp", filepath.Ext(f.Name), f.Name)
		}
	})
}

func TestSpecifyInvalid(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	require.NoError(t, m.Create(ctx, "alice", "toggle"))

	lib := &LibraryFiles{UCF: []byte(testUCF)}
	ref := LibraryRef{Kind: LibraryLocal, TargetData: "Eco1C1G1T1.UCF.json"}

	tests := []struct {
		name string
		spec *Specification
		lib  *LibraryFiles
	}{
		{"empty verilog", &Specification{Verilog: "  ", Library: ref}, lib},
		{"options not an object", &Specification{Verilog: "module m(); endmodule", Options: json.RawMessage(`[1]`), Library: ref}, lib},
		{"empty library", &Specification{Verilog: "module m(); endmodule", Library: ref}, &LibraryFiles{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Specify(ctx, "alice", "toggle", tc.spec, tc.lib)
			assert.ErrorIs(t, err, ErrInvalidSpecification)
		})
	}

	_, err := m.Specify(ctx, "alice", "missing", &Specification{Verilog: "module m(); endmodule", Library: ref}, lib)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
