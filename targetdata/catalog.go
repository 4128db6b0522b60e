// Package targetdata discovers the local target-data files (UCF, input and
// output JSON) a project can be specified with.
package targetdata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound is returned for file names the catalog does not know.
var ErrNotFound = errors.New("target data file not found")

// Kind is the role of a target-data file.
type Kind string

// File kinds, keyed by file-name suffix.
const (
	KindUCF    Kind = "ucf"
	KindInput  Kind = "input"
	KindOutput Kind = "output"
)

var patterns = []struct {
	glob   string
	suffix string
	kind   Kind
}{
	{"**/*.UCF.json", ".UCF.json", KindUCF},
	{"**/*.input.json", ".input.json", KindInput},
	{"**/*.output.json", ".output.json", KindOutput},
}

// File is one discovered target-data file.
type File struct {
	// Name is the slash-separated path relative to the catalog root.
	Name string `json:"name"`

	// Chip is the file name without directory and kind suffix, e.g. "Eco1C1G1T1".
	Chip string `json:"chip"`

	Kind    Kind      `json:"kind"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Catalog indexes target-data files below a root directory.
type Catalog struct {
	root     string
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.RWMutex
	files map[string]File
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDebounce sets how long Watch waits for further changes before rescanning.
func WithDebounce(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// NewCatalog creates a catalog rooted at dir and performs the first scan.
// A missing directory yields an empty catalog.
func NewCatalog(dir string, opts ...Option) (*Catalog, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve target data dir: %w", err)
	}

	c := &Catalog{
		root:     root,
		logger:   slog.Default(),
		debounce: 250 * time.Millisecond,
		files:    make(map[string]File),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Root returns the absolute catalog directory.
func (c *Catalog) Root() string {
	return c.root
}

// Refresh rescans the root directory.
func (c *Catalog) Refresh() error {
	files := make(map[string]File)

	if _, err := os.Stat(c.root); errors.Is(err, fs.ErrNotExist) {
		c.swap(files)
		return nil
	}

	fsys := os.DirFS(c.root)
	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, p.glob, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("glob error: %w", err)
		}
		for _, name := range matches {
			info, err := fs.Stat(fsys, name)
			if err != nil {
				continue
			}
			files[name] = File{
				Name:    name,
				Chip:    strings.TrimSuffix(filepath.Base(name), p.suffix),
				Kind:    p.kind,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			}
		}
	}

	c.swap(files)
	c.logger.Debug("Target data scanned", "dir", c.root, "files", len(files))
	return nil
}

func (c *Catalog) swap(files map[string]File) {
	c.mu.Lock()
	c.files = files
	c.mu.Unlock()
}

// List returns all files sorted by name.
func (c *Catalog) List() []File {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]File, 0, len(c.files))
	for _, f := range c.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListKind returns the files of one kind sorted by name.
func (c *Catalog) ListKind(kind Kind) []File {
	var out []File
	for _, f := range c.List() {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Lookup returns the file registered under name.
func (c *Catalog) Lookup(name string) (File, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.files[filepath.ToSlash(name)]
	if !ok {
		return File{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, nil
}

// Path returns the absolute path of a catalogued file. Only names produced by
// a scan resolve, so arbitrary paths cannot escape the root.
func (c *Catalog) Path(name string) (string, error) {
	f, err := c.Lookup(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.root, filepath.FromSlash(f.Name)), nil
}

// Read returns the contents of a catalogued file.
func (c *Catalog) Read(name string) ([]byte, error) {
	path, err := c.Path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
