// Package project manages project directories on disk: the files a project is
// specified with and the compiler runs that consume them.
package project

import (
	"context"
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

	"github.com/cellocad/cello-webapp/storage"
)

// Project file names.
const (
	VerilogFile        = "verilog.v"
	OptionsFile        = "options.json"
	DefaultLibraryFile = "library.UCF.json"
	InputFile          = "input.json"
	OutputFile         = "output.json"
	SpecificationFile  = "specification.json"
	LogFile            = "log.log"
	OutputDir          = "output"
)

// Sentinel errors for project operations.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidPath     = errors.New("invalid file path")
)

// FileInfo describes one file of a project directory.
type FileInfo struct {
	// Name is the slash-separated path relative to the project directory.
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Manager owns the project tree <root>/<owner>/<project>/.
type Manager struct {
	root        string
	libraryFile string
	logger      *slog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLibraryFile sets the file name the library is written to.
func WithLibraryFile(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.libraryFile = name
		}
	}
}

// WithManagerLogger sets the logger.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager rooted at root, creating the directory if needed.
func NewManager(root string, opts ...ManagerOption) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve projects root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create projects root: %w", err)
	}

	m := &Manager{
		root:        abs,
		libraryFile: DefaultLibraryFile,
		logger:      slog.Default(),
		locks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// LibraryFile returns the file name the library is written to.
func (m *Manager) LibraryFile() string {
	return m.libraryFile
}

// lock returns the mutex guarding one project directory.
func (m *Manager) lock(owner, name string) *sync.Mutex {
	key := owner + "/" + name
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	if m.locks[key] == nil {
		m.locks[key] = &sync.Mutex{}
	}
	return m.locks[key]
}

// Dir returns the directory of a project without checking that it exists.
func (m *Manager) Dir(owner, name string) (string, error) {
	if err := storage.ValidateName(owner); err != nil {
		return "", err
	}
	if err := storage.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(m.root, owner, name), nil
}

// existingDir returns the directory of a project that must exist.
func (m *Manager) existingDir(owner, name string) (string, error) {
	dir, err := m.Dir(owner, name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	return dir, nil
}

// Create makes an empty project directory.
func (m *Manager) Create(ctx context.Context, owner, name string) error {
	dir, err := m.Dir(owner, name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := m.lock(owner, name)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return fmt.Errorf("failed to create owner directory: %w", err)
	}
	// os.Mkdir fails if the directory exists, so concurrent creates cannot both succeed.
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrProjectExists, name)
		}
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	m.logger.Debug("Project directory created", "owner", owner, "project", name)
	return nil
}

// Delete removes a project directory and everything in it.
func (m *Manager) Delete(ctx context.Context, owner, name string) error {
	dir, err := m.existingDir(owner, name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := m.lock(owner, name)
	lock.Lock()
	defer lock.Unlock()

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove project directory: %w", err)
	}
	return nil
}

// Files lists the regular files of a project, sorted by name.
func (m *Manager) Files(owner, name string) ([]FileInfo, error) {
	dir, err := m.existingDir(owner, name)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Name:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// FilePath resolves file inside a project directory. Paths that would leave
// the directory are rejected.
func (m *Manager) FilePath(owner, name, file string) (string, error) {
	dir, err := m.existingDir(owner, name)
	if err != nil {
		return "", err
	}

	clean := filepath.Clean(filepath.FromSlash(file))
	if file == "" || filepath.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, file)
	}
	return filepath.Join(dir, clean), nil
}

// ReadFile returns the contents of a file in a project directory.
func (m *Manager) ReadFile(owner, name, file string) ([]byte, error) {
	path, err := m.FilePath(owner, name, file)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, file)
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, file)
	}
	return os.ReadFile(path)
}

// writeFile writes data atomically via a temp file and rename.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
