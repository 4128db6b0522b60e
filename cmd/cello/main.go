// Package main provides the cello binary entry point.
// Cello serves the web backend of the genetic circuit design automation
// tool: accounts, projects, SynBioHub library building and compiler runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cellocad/cello-webapp/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "cello"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logger     *slog.Logger
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Cello web backend",
		Long: `Cello is the web backend of the Cello genetic circuit design tool.

It provides:
- User accounts and per-user projects
- Gate libraries built from SynBioHub collections or local target data
- Compiler runs over specified projects
- RDF export of project libraries`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			flags.logger = newLogger(flags.logLevel)
			slog.SetDefault(flags.logger)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(flags))
	cmd.AddCommand(buildLibraryCmd(flags))
	cmd.AddCommand(configCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads an explicit config file, or the layered user and
// project configuration when none is given.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	loader := config.NewLoader(f.logger)
	if f.configPath != "" {
		return loader.LoadFile(f.configPath)
	}
	return loader.Load()
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.ValidateServe(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return serve(cmd.Context(), cfg, flags.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	printBanner()

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}

	// Setup signal handling
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := app.Start(signalCtx); err != nil {
		app.Shutdown(cfg.Server.ShutdownTimeout)
		return err
	}

	logger.Info("Cello ready", "version", Version, "addr", app.Addr())

	// Block until shutdown signal or server failure
	select {
	case <-signalCtx.Done():
		logger.Info("Received shutdown signal")
	case err := <-app.Errors():
		logger.Error("HTTP server failed", "error", err)
		app.Shutdown(cfg.Server.ShutdownTimeout)
		return err
	}

	app.Shutdown(cfg.Server.ShutdownTimeout)
	return nil
}

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default user config if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.NewLoader(flags.logger).EnsureUserConfig()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.Secret != "" {
				cfg.Auth.Secret = "********"
			}
			if cfg.Registry.Token != "" {
				cfg.Registry.Token = "********"
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	return cmd
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║               Cello v" + Version + "                    ║")
	fmt.Println("║      Genetic Circuit Design Automation        ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
}
