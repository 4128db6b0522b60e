package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCompilerTimeout bounds a compiler run when none is configured.
const DefaultCompilerTimeout = 10 * time.Minute

// DefaultCompilerArgs are the argument templates passed to the compiler.
var DefaultCompilerArgs = []string{
	"-inputNetlist", "{verilog}",
	"-userConstraintsFile", "{ucf}",
	"-inputSensorFile", "{input}",
	"-outputDeviceFile", "{output}",
	"-options", "{options}",
	"-outputDir", "{outdir}",
}

var (
	// ErrNotSpecified is returned when running a project that has no design files.
	ErrNotSpecified = errors.New("project is not specified")

	// ErrCompilerTimeout is returned when the compiler exceeds its timeout.
	ErrCompilerTimeout = errors.New("compiler timed out")
)

// CompilerConfig configures the compiler subprocess.
type CompilerConfig struct {
	Executable string
	Args       []string
	Timeout    time.Duration
}

// RunResult describes one finished compiler run. A non-zero ExitCode is a
// failed design, not an error of Run.
type RunResult struct {
	RunID     string        `json:"run_id"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration"`
	LogFile   string        `json:"log_file"`
	OutputDir string        `json:"output_dir"`
}

// Succeeded reports whether the compiler exited cleanly.
func (r *RunResult) Succeeded() bool {
	return r.ExitCode == 0
}

// Compiler runs the external compiler over a project directory.
type Compiler struct {
	cfg         CompilerConfig
	libraryFile string
	logger      *slog.Logger
}

// NewCompiler creates a Compiler. libraryFile is the project's library file
// name; an empty value uses DefaultLibraryFile.
func NewCompiler(cfg CompilerConfig, libraryFile string, logger *slog.Logger) *Compiler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCompilerTimeout
	}
	if len(cfg.Args) == 0 {
		cfg.Args = DefaultCompilerArgs
	}
	if libraryFile == "" {
		libraryFile = DefaultLibraryFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{cfg: cfg, libraryFile: libraryFile, logger: logger}
}

// Args expands the argument templates for a project directory. Input and
// output fall back to the library file, which carries the input_sensors and
// output_reporters collections when no separate files were written.
func (c *Compiler) Args(dir string) []string {
	ucf := filepath.Join(dir, c.libraryFile)
	orLibrary := func(name string) string {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			return ucf
		}
		return path
	}

	r := strings.NewReplacer(
		"{verilog}", filepath.Join(dir, VerilogFile),
		"{ucf}", ucf,
		"{input}", orLibrary(InputFile),
		"{output}", orLibrary(OutputFile),
		"{options}", filepath.Join(dir, OptionsFile),
		"{outdir}", filepath.Join(dir, OutputDir),
	)

	args := make([]string, len(c.cfg.Args))
	for i, a := range c.cfg.Args {
		args[i] = r.Replace(a)
	}
	return args
}

// Run executes the compiler in dir with combined output written to log.log.
func (c *Compiler) Run(ctx context.Context, dir string) (*RunResult, error) {
	for _, required := range []string{VerilogFile, c.libraryFile} {
		if _, err := os.Stat(filepath.Join(dir, required)); err != nil {
			return nil, fmt.Errorf("%w: missing %s", ErrNotSpecified, required)
		}
	}

	result := &RunResult{
		RunID:     uuid.New().String(),
		LogFile:   LogFile,
		OutputDir: OutputDir,
	}

	outDir := filepath.Join(dir, OutputDir)
	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clear output directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(dir, LogFile))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	defer logFile.Close()

	cmdCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, c.cfg.Executable, c.Args(dir)...)
	cmd.Dir = dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	c.logger.Info("Compiler started", "dir", dir, "run_id", result.RunID, "executable", c.cfg.Executable)

	start := time.Now()
	runErr := cmd.Run()
	result.Duration = time.Since(start)

	if runErr != nil {
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			result.ExitCode = -1
			return result, fmt.Errorf("%w after %s", ErrCompilerTimeout, c.cfg.Timeout)
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("start compiler: %w", runErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	c.logger.Info("Compiler finished",
		"dir", dir,
		"run_id", result.RunID,
		"exit_code", result.ExitCode,
		"duration", result.Duration)
	return result, nil
}

// Execute runs c over a project while holding the project lock, so a run
// never sees a half-written specification.
func (m *Manager) Execute(ctx context.Context, owner, name string, c *Compiler) (*RunResult, error) {
	dir, err := m.existingDir(owner, name)
	if err != nil {
		return nil, err
	}

	lock := m.lock(owner, name)
	lock.Lock()
	defer lock.Unlock()

	return c.Run(ctx, dir)
}
