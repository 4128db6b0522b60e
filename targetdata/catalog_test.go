package targetdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func names(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func TestCatalogScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Eco1C1G1T1.UCF.json", "[]")
	writeFile(t, dir, "Eco1C1G1T1.input.json", "[]")
	writeFile(t, dir, "Eco1C1G1T1.output.json", "[]")
	writeFile(t, dir, "yeast/SC1C1G1T1.UCF.json", "[]")
	writeFile(t, dir, "README.md", "# target data")
	writeFile(t, dir, "notes.json", "{}")

	c, err := NewCatalog(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Eco1C1G1T1.UCF.json",
		"Eco1C1G1T1.input.json",
		"Eco1C1G1T1.output.json",
		"yeast/SC1C1G1T1.UCF.json",
	}, names(c.List()))

	assert.Equal(t, []string{"Eco1C1G1T1.UCF.json", "yeast/SC1C1G1T1.UCF.json"}, names(c.ListKind(KindUCF)))
	assert.Equal(t, []string{"Eco1C1G1T1.input.json"}, names(c.ListKind(KindInput)))

	f, err := c.Lookup("yeast/SC1C1G1T1.UCF.json")
	require.NoError(t, err)
	assert.Equal(t, "SC1C1G1T1", f.Chip)
	assert.Equal(t, KindUCF, f.Kind)
	assert.Equal(t, int64(2), f.Size)
}

func TestCatalogPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Eco1C1G1T1.UCF.json", `[{"collection":"header"}]`)
	writeFile(t, dir, "secret.txt", "nope")

	c, err := NewCatalog(dir)
	require.NoError(t, err)

	path, err := c.Path("Eco1C1G1T1.UCF.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Root(), "Eco1C1G1T1.UCF.json"), path)

	data, err := c.Read("Eco1C1G1T1.UCF.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"collection":"header"}]`, string(data))

	for _, name := range []string{"secret.txt", "../Eco1C1G1T1.UCF.json", "/etc/passwd", "missing.UCF.json"} {
		_, err := c.Path(name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
}

func TestCatalogMissingDir(t *testing.T) {
	c, err := NewCatalog(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, c.List())
}

func TestCatalogRefresh(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(dir)
	require.NoError(t, err)
	assert.Empty(t, c.List())

	writeFile(t, dir, "Eco1C1G1T1.UCF.json", "[]")
	require.NoError(t, c.Refresh())
	assert.Len(t, c.List(), 1)

	require.NoError(t, os.Remove(filepath.Join(dir, "Eco1C1G1T1.UCF.json")))
	require.NoError(t, c.Refresh())
	assert.Empty(t, c.List())
}

func TestCatalogWatch(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(dir, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, dir, "Eco1C1G1T1.UCF.json", "[]")
	assert.Eventually(t, func() bool {
		_, err := c.Lookup("Eco1C1G1T1.UCF.json")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	writeFile(t, dir, "nested/Bth1C1G1T1.output.json", "[]")
	assert.Eventually(t, func() bool {
		return len(c.ListKind(KindOutput)) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
