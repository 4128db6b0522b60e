package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cellocad/cello-webapp/adaptor"
	"github.com/cellocad/cello-webapp/config"
	"github.com/cellocad/cello-webapp/export"
	"github.com/cellocad/cello-webapp/library"
	"github.com/cellocad/cello-webapp/sbol"
	"github.com/cellocad/cello-webapp/synbiohub"
)

// buildOptions are the flags of build-library.
type buildOptions struct {
	registry   string
	collection string
	sbolFile   string
	out        string
	format     string
}

func buildLibraryCmd(flags *globalFlags) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build-library",
		Short: "Build a gate library from a SynBioHub collection or an SBOL file",
		Long: `Build a gate library and write it as UCF JSON or RDF.

The library is read either from a SynBioHub collection (--collection, on
--registry or the configured default registry) or from a local SBOL
RDF/XML file (--sbol-file). Attachments of a local file are downloaded
from the registry.`,
		Example: `  cello build-library --collection /public/Eco1C1G1T1/Eco1C1G1T1_collection/1 --out Eco1C1G1T1.UCF.json
  cello build-library --sbol-file library.xml --format turtle`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runBuildLibrary(cmd.Context(), cfg, flags.logger, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.registry, "registry", "", "Registry URL (default: registry.url from config)")
	cmd.Flags().StringVar(&opts.collection, "collection", "", "Collection URI or path on the registry")
	cmd.Flags().StringVar(&opts.sbolFile, "sbol-file", "", "Local SBOL RDF/XML file")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "ucf", "Output format (ucf, turtle, ntriples, jsonld)")
	cmd.MarkFlagsMutuallyExclusive("collection", "sbol-file")
	cmd.MarkFlagsOneRequired("collection", "sbol-file")

	return cmd
}

func runBuildLibrary(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts *buildOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}

	var format export.Format
	if !strings.EqualFold(opts.format, "ucf") {
		f, err := export.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		format = f
	}

	builder := newLibraryBuilder(cfg, logger, nil)

	var lib *library.Library
	switch {
	case opts.collection != "":
		built, err := builder.Build(ctx, opts.registry, opts.collection)
		if err != nil {
			return fmt.Errorf("build library: %w", err)
		}
		lib = built
	case opts.sbolFile != "":
		built, err := buildFromFile(ctx, cfg, logger, builder, opts)
		if err != nil {
			return err
		}
		lib = built
	default:
		return errors.New("one of --collection or --sbol-file is required")
	}

	var data []byte
	if format == "" {
		encoded, err := lib.MarshalIndent()
		if err != nil {
			return fmt.Errorf("encode library: %w", err)
		}
		data = encoded
	} else {
		encoded, err := export.NewLibraryExporter(export.DefaultLibraryBase).Export(lib, format)
		if err != nil {
			return fmt.Errorf("export library: %w", err)
		}
		data = []byte(encoded)
	}

	stats := lib.Stats()
	logger.Info("Library built",
		"gates", stats.Gates,
		"input_sensors", stats.InputSensors,
		"output_reporters", stats.OutputReporters,
		"parts", stats.Parts)

	if opts.out == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.out, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	return nil
}

func buildFromFile(ctx context.Context, cfg *config.Config, logger *slog.Logger, builder *synbiohub.LibraryBuilder, opts *buildOptions) (*library.Library, error) {
	f, err := os.Open(opts.sbolFile)
	if err != nil {
		return nil, fmt.Errorf("open SBOL file: %w", err)
	}
	defer f.Close()

	doc, err := sbol.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", opts.sbolFile, err)
	}

	// Attachments are downloaded from the registry.
	client, err := builder.Client(opts.registry)
	if err != nil {
		return nil, err
	}

	b := library.NewBuilder(adaptor.New(cfg.Library.Namespace), client,
		library.WithLogger(logger),
		library.WithConcurrency(cfg.Registry.AttachmentConcurrency))
	lib, err := b.Build(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("build library: %w", err)
	}
	return lib, nil
}
