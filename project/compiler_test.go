package project

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specifiedProject(t *testing.T, withInput bool) (*Manager, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("compiler tests use /bin/sh")
	}

	ctx := context.Background()
	m := newTestManager(t)
	require.NoError(t, m.Create(ctx, "alice", "toggle"))

	lib := &LibraryFiles{UCF: []byte(testUCF)}
	if withInput {
		lib.Input = []byte(`[]`)
	}
	_, err := m.Specify(ctx, "alice", "toggle", &Specification{
		Verilog: "module toggle(); endmodule",
		Library: LibraryRef{Kind: LibraryLocal, TargetData: "Eco1C1G1T1.UCF.json"},
	}, lib)
	require.NoError(t, err)

	dir, err := m.Dir("alice", "toggle")
	require.NoError(t, err)
	return m, dir
}

func TestCompilerArgs(t *testing.T) {
	_, dir := specifiedProject(t, true)

	c := NewCompiler(CompilerConfig{Executable: "cello"}, "", nil)
	args := c.Args(dir)
	require.Len(t, args, len(DefaultCompilerArgs))

	assert.Equal(t, filepath.Join(dir, VerilogFile), args[1])
	assert.Equal(t, filepath.Join(dir, DefaultLibraryFile), args[3])
	assert.Equal(t, filepath.Join(dir, InputFile), args[5])
	// No output.json was written, so the library file stands in.
	assert.Equal(t, filepath.Join(dir, DefaultLibraryFile), args[7])
	assert.Equal(t, filepath.Join(dir, OptionsFile), args[9])
	assert.Equal(t, filepath.Join(dir, OutputDir), args[11])

	custom := NewCompiler(CompilerConfig{Executable: "cello", Args: []string{"--in={verilog}", "--lib", "{ucf}"}}, "lib.json", nil)
	assert.Equal(t, []string{"--in=" + filepath.Join(dir, VerilogFile), "--lib", filepath.Join(dir, "lib.json")}, custom.Args(dir))
}

func TestCompilerRun(t *testing.T) {
	m, dir := specifiedProject(t, false)
	ctx := context.Background()

	c := NewCompiler(CompilerConfig{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo compiling $(basename {verilog}); echo result > {outdir}/result.txt; echo warn >&2"},
	}, "", nil)

	result, err := m.Execute(ctx, "alice", "toggle", c)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, LogFile, result.LogFile)

	log, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(log), "compiling verilog.v")
	assert.Contains(t, string(log), "warn")

	out, err := m.ReadFile("alice", "toggle", "output/result.txt")
	require.NoError(t, err)
	assert.Equal(t, "result", strings.TrimSpace(string(out)))
}

func TestCompilerRunFailure(t *testing.T) {
	m, _ := specifiedProject(t, false)

	c := NewCompiler(CompilerConfig{Executable: "/bin/sh", Args: []string{"-c", "echo no gates fit; exit 3"}}, "", nil)
	result, err := m.Execute(context.Background(), "alice", "toggle", c)
	require.NoError(t, err)
	assert.False(t, result.Succeeded())
	assert.Equal(t, 3, result.ExitCode)
}

func TestCompilerRunTimeout(t *testing.T) {
	m, _ := specifiedProject(t, false)

	c := NewCompiler(CompilerConfig{
		Executable: "/bin/sh",
		Args:       []string{"-c", "sleep 10"},
		Timeout:    100 * time.Millisecond,
	}, "", nil)

	result, err := m.Execute(context.Background(), "alice", "toggle", c)
	assert.ErrorIs(t, err, ErrCompilerTimeout)
	require.NotNil(t, result)
	assert.Equal(t, -1, result.ExitCode)
}

func TestCompilerRunErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not specified", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.Create(ctx, "alice", "empty"))
		c := NewCompiler(CompilerConfig{Executable: "/bin/sh"}, "", nil)
		_, err := m.Execute(ctx, "alice", "empty", c)
		assert.ErrorIs(t, err, ErrNotSpecified)
	})

	t.Run("missing executable", func(t *testing.T) {
		m, _ := specifiedProject(t, false)
		c := NewCompiler(CompilerConfig{Executable: "/nonexistent/cello"}, "", nil)
		_, err := m.Execute(ctx, "alice", "toggle", c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start compiler")
	})

	t.Run("missing project", func(t *testing.T) {
		m := newTestManager(t)
		c := NewCompiler(CompilerConfig{Executable: "/bin/sh"}, "", nil)
		_, err := m.Execute(ctx, "alice", "ghost", c)
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}
