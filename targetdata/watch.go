package targetdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch rescans the catalog whenever files below the root change. It blocks
// until ctx is canceled.
func (c *Catalog) Watch(ctx context.Context) error {
	if err := os.MkdirAll(c.root, 0755); err != nil {
		return fmt.Errorf("create target data dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := c.addWatchesRecursive(w, c.root); err != nil {
		return err
	}
	// Pick up anything created between the first scan and the watch.
	if err := c.Refresh(); err != nil {
		c.logger.Warn("Target data rescan failed", "error", err)
	}

	c.logger.Info("Target data watcher started", "dir", c.root)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := c.addWatchesRecursive(w, event.Name); err != nil {
						c.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			dirty = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if !dirty {
				continue
			}
			dirty = false
			if err := c.Refresh(); err != nil {
				c.logger.Warn("Target data rescan failed", "error", err)
			}
		}
	}
}

func (c *Catalog) addWatchesRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if path != c.root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}

		if err := w.Add(path); err != nil {
			c.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}
