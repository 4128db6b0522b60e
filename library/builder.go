package library

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/cellocad/cello-webapp/adaptor"
	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/vocabulary/cello"
)

// Builder turns an SBOL document into a Library.
type Builder struct {
	adaptor     *adaptor.Adaptor
	fetcher     AttachmentFetcher
	concurrency int
	sections    []string
	logger      *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithConcurrency bounds parallel attachment fetches.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithSections replaces the allow-list of library-level attachment names.
func WithSections(names ...string) Option {
	return func(b *Builder) {
		b.sections = slices.Clone(names)
	}
}

// NewBuilder creates a builder. The fetcher resolves gate and library
// attachments and may be nil for documents without attachments.
func NewBuilder(a *adaptor.Adaptor, fetcher AttachmentFetcher, opts ...Option) *Builder {
	if a == nil {
		a = adaptor.New("")
	}
	b := &Builder{
		adaptor:     a,
		fetcher:     fetcher,
		concurrency: DefaultAttachmentConcurrency,
		sections:    cello.LibrarySections,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build classifies every root component definition of doc and assembles
// the library. The first failure aborts the build; no partial library is
// returned.
func (b *Builder) Build(ctx context.Context, doc *sbol.Document) (*Library, error) {
	var (
		gates     []*Gate
		sensors   []*InputSensor
		reporters []*OutputReporter
		parts     []*Part
	)

	for _, cd := range doc.RootComponentDefinitions() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		kind := Classify(b.adaptor, cd)
		switch kind {
		case KindGate:
			g, err := newGate(ctx, b.adaptor, doc, cd, b.fetcher, b.concurrency)
			if err != nil {
				return nil, err
			}
			gates = append(gates, g)
		case KindInputSensor:
			s, err := NewInputSensor(b.adaptor, doc, cd)
			if err != nil {
				return nil, err
			}
			sensors = append(sensors, s)
		case KindOutputReporter:
			r, err := NewOutputReporter(doc, cd)
			if err != nil {
				return nil, err
			}
			reporters = append(reporters, r)
		case KindPart:
			p, err := NewPart(doc, cd)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		default:
			b.logger.Debug("Skipping component definition", "uri", cd.URI)
		}
	}

	objects, err := b.sectionObjects(ctx, doc)
	if err != nil {
		return nil, err
	}

	lib := newLibrary(gates, sensors, reporters, parts, objects)
	b.logger.Info("Built library",
		"gates", len(lib.Gates),
		"input_sensors", len(lib.InputSensors),
		"output_reporters", len(lib.OutputReporters),
		"parts", len(lib.Parts),
		"objects", len(lib.Objects))
	return lib, nil
}

// sectionObjects fetches the document attachments whose name is in the
// section allow-list, in allow-list order.
func (b *Builder) sectionObjects(ctx context.Context, doc *sbol.Document) ([]json.RawMessage, error) {
	rank := make(map[string]int, len(b.sections))
	for i, name := range b.sections {
		rank[name] = i
	}

	var atts []*sbol.Attachment
	for _, att := range doc.Attachments() {
		if _, ok := rank[AttachmentName(att)]; ok {
			atts = append(atts, att)
		}
	}
	slices.SortStableFunc(atts, func(x, y *sbol.Attachment) int {
		return cmp.Compare(rank[AttachmentName(x)], rank[AttachmentName(y)])
	})
	return fetchObjects(ctx, b.fetcher, atts, b.concurrency)
}

// DocumentSource loads the SBOL document of a collection.
type DocumentSource interface {
	FetchDocument(ctx context.Context, collection string) (*sbol.Document, error)
}

// BuildFrom fetches the document of collection from src and builds it.
// Fetch failures are reported as *LibraryError.
func (b *Builder) BuildFrom(ctx context.Context, src DocumentSource, collection string) (*Library, error) {
	doc, err := src.FetchDocument(ctx, collection)
	if err != nil {
		return nil, newError(collection, "fetch document", err)
	}
	return b.Build(ctx, doc)
}
