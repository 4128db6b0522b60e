package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Library kinds of a LibraryRef.
const (
	LibraryLocal     = "local"
	LibrarySynBioHub = "synbiohub"
)

// ErrInvalidSpecification is returned for specify requests that cannot be written.
var ErrInvalidSpecification = errors.New("invalid specification")

// LibraryRef points at the library a project is specified with: either local
// target-data files or a SynBioHub collection.
type LibraryRef struct {
	Kind string `json:"kind"`

	// Local target data, as catalog file names.
	TargetData string `json:"target_data,omitempty"`
	Input      string `json:"input,omitempty"`
	Output     string `json:"output,omitempty"`

	// SynBioHub registry and collection. An empty registry uses the configured default.
	Registry   string `json:"registry,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// Validate checks that the reference names what its kind needs.
func (r LibraryRef) Validate() error {
	switch r.Kind {
	case LibraryLocal:
		if r.TargetData == "" {
			return fmt.Errorf("%w: local library requires target_data", ErrInvalidSpecification)
		}
	case LibrarySynBioHub:
		if r.Collection == "" {
			return fmt.Errorf("%w: synbiohub library requires collection", ErrInvalidSpecification)
		}
	default:
		return fmt.Errorf("%w: unknown library kind %q", ErrInvalidSpecification, r.Kind)
	}
	return nil
}

// Specification is the design a project is compiled from.
type Specification struct {
	Verilog string          `json:"verilog"`
	Options json.RawMessage `json:"options,omitempty"`
	Library LibraryRef      `json:"library"`
}

// Validate checks the specification before anything is written.
func (s *Specification) Validate() error {
	if strings.TrimSpace(s.Verilog) == "" {
		return fmt.Errorf("%w: verilog is required", ErrInvalidSpecification)
	}
	if len(s.Options) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(s.Options, &obj); err != nil {
			return fmt.Errorf("%w: options must be a JSON object", ErrInvalidSpecification)
		}
	}
	return s.Library.Validate()
}

// LibraryFiles are the resolved library contents written into a project.
// Input and Output are optional.
type LibraryFiles struct {
	UCF    []byte
	Input  []byte
	Output []byte
}

// Record is the content of specification.json.
type Record struct {
	Library     LibraryRef `json:"library"`
	Files       []string   `json:"files"`
	SpecifiedAt time.Time  `json:"specified_at"`
}

// Specify writes the design files of a project, replacing any previous ones.
func (m *Manager) Specify(ctx context.Context, owner, name string, spec *Specification, lib *LibraryFiles) (*Record, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if lib == nil || len(lib.UCF) == 0 {
		return nil, fmt.Errorf("%w: library is empty", ErrInvalidSpecification)
	}

	dir, err := m.existingDir(owner, name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := m.lock(owner, name)
	lock.Lock()
	defer lock.Unlock()

	options := spec.Options
	if len(options) == 0 {
		options = json.RawMessage("{}")
	}

	files := []struct {
		name string
		data []byte
	}{
		{VerilogFile, []byte(spec.Verilog)},
		{OptionsFile, options},
		{m.libraryFile, lib.UCF},
		{InputFile, lib.Input},
		{OutputFile, lib.Output},
	}

	record := &Record{
		Library:     spec.Library,
		SpecifiedAt: time.Now().UTC(),
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if len(f.data) == 0 {
			// Drop stale files from an earlier specification.
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("remove %s: %w", f.name, err)
			}
			continue
		}
		if err := writeFile(path, f.data); err != nil {
			return nil, err
		}
		record.Files = append(record.Files, f.name)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal specification: %w", err)
	}
	if err := writeFile(filepath.Join(dir, SpecificationFile), data); err != nil {
		return nil, err
	}

	m.logger.Info("Project specified",
		"owner", owner,
		"project", name,
		"library", spec.Library.Kind,
		"files", len(record.Files))
	return record, nil
}

// Specification loads the specification.json record of a project.
func (m *Manager) Specification(owner, name string) (*Record, error) {
	data, err := m.ReadFile(owner, name, SpecificationFile)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal specification: %w", err)
	}
	return &r, nil
}
