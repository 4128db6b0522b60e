package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/cellocad/cello-webapp/library"
	"github.com/cellocad/cello-webapp/targetdata"
)

// BuildFunc builds a library from a SynBioHub collection.
type BuildFunc func(ctx context.Context, registry, collection string) (*library.Library, error)

// Resolver turns a LibraryRef into the files written by Specify.
type Resolver struct {
	catalog *targetdata.Catalog
	build   BuildFunc
}

// NewResolver creates a Resolver. Either argument may be nil, in which case
// the corresponding library kind is unavailable.
func NewResolver(catalog *targetdata.Catalog, build BuildFunc) *Resolver {
	return &Resolver{catalog: catalog, build: build}
}

// Resolve returns the library files and parsed library for ref. The library
// is nil when local target data does not use the builder's UCF layout.
func (r *Resolver) Resolve(ctx context.Context, ref LibraryRef) (*LibraryFiles, *library.Library, error) {
	if err := ref.Validate(); err != nil {
		return nil, nil, err
	}

	switch ref.Kind {
	case LibraryLocal:
		return r.resolveLocal(ref)
	default:
		return r.resolveSynBioHub(ctx, ref)
	}
}

func (r *Resolver) resolveLocal(ref LibraryRef) (*LibraryFiles, *library.Library, error) {
	if r.catalog == nil {
		return nil, nil, fmt.Errorf("%w: local target data is not configured", ErrInvalidSpecification)
	}

	files := &LibraryFiles{}
	for _, f := range []struct {
		name string
		kind targetdata.Kind
		dst  *[]byte
	}{
		{ref.TargetData, targetdata.KindUCF, &files.UCF},
		{ref.Input, targetdata.KindInput, &files.Input},
		{ref.Output, targetdata.KindOutput, &files.Output},
	} {
		if f.name == "" {
			continue
		}
		entry, err := r.catalog.Lookup(f.name)
		if err != nil {
			return nil, nil, err
		}
		if entry.Kind != f.kind {
			return nil, nil, fmt.Errorf("%w: %s is not %s target data", ErrInvalidSpecification, f.name, f.kind)
		}
		data, err := r.catalog.Read(f.name)
		if err != nil {
			return nil, nil, fmt.Errorf("read target data: %w", err)
		}
		*f.dst = data
	}

	// Target data in the compiler's native dialect is handed over as is;
	// only a file that is not a UCF array is rejected.
	lib, err := library.ParseUCF(files.UCF)
	if err != nil {
		if !gjson.ValidBytes(files.UCF) || !gjson.ParseBytes(files.UCF).IsArray() {
			return nil, nil, err
		}
		lib = nil
	}
	return files, lib, nil
}

func (r *Resolver) resolveSynBioHub(ctx context.Context, ref LibraryRef) (*LibraryFiles, *library.Library, error) {
	if r.build == nil {
		return nil, nil, fmt.Errorf("%w: synbiohub libraries are not configured", ErrInvalidSpecification)
	}

	lib, err := r.build(ctx, ref.Registry, ref.Collection)
	if err != nil {
		return nil, nil, err
	}
	data, err := lib.MarshalIndent()
	if err != nil {
		return nil, nil, fmt.Errorf("encode library: %w", err)
	}
	return &LibraryFiles{UCF: data}, lib, nil
}

// IsUnresolvable reports whether err means the library itself could not be
// produced, as opposed to a bad request.
func IsUnresolvable(err error) bool {
	return err != nil && !errors.Is(err, ErrInvalidSpecification) &&
		!errors.Is(err, targetdata.ErrNotFound) &&
		!errors.Is(err, context.Canceled)
}
