// Package filesystem reads OCR protocol text files from a local inbox
// directory and reports files that appear in it.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/protokoll/internal/logger"
	"github.com/custodia-labs/protokoll/internal/normalisers/plaintext"
)

// DefaultSettle is how long a file must stay unchanged before it is reported.
const DefaultSettle = 750 * time.Millisecond

// Connector reads protocol text files from a single directory.
// Subdirectories and hidden files are ignored.
type Connector struct {
	rootPath string
	ext      string
	settle   time.Duration
	log      logger.Scoped
}

// Option configures a Connector.
type Option func(*Connector)

// WithExtension sets the file extension to pick up (default ".txt").
func WithExtension(ext string) Option {
	return func(c *Connector) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.ext = strings.ToLower(ext)
	}
}

// WithSettle sets the quiet period after the last write before a file is reported.
func WithSettle(d time.Duration) Option {
	return func(c *Connector) {
		c.settle = d
	}
}

// New creates a connector for rootPath.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{
		rootPath: rootPath,
		ext:      ".txt",
		settle:   DefaultSettle,
		log:      logger.For("inbox"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RootPath returns the watched directory.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root path is an existing directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("inbox %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("inbox %s is not a directory", c.rootPath)
	}
	return nil
}

// List returns the matching files currently in the directory, sorted by name.
func (c *Connector) List() ([]string, error) {
	entries, err := os.ReadDir(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(c.rootPath, e.Name())
		if c.matches(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadProtocol returns the normalised text of an OCR protocol file.
func ReadProtocol(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return plaintext.Normalise(string(data)), nil
}

// Watch reports paths of matching files that were created or written,
// once they have been quiet for the settle period. Both channels are
// closed when ctx is cancelled.
func (c *Connector) Watch(ctx context.Context) (<-chan string, <-chan error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(c.rootPath); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watching %s: %w", c.rootPath, err)
	}
	c.log.Info("watching %s for *%s files", c.rootPath, c.ext)

	paths := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)
		defer watcher.Close()

		pending := make(map[string]time.Time)
		ticker := time.NewTicker(max(c.settle/2, 10*time.Millisecond))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if path, ok := c.handleFsEvent(event); ok {
					pending[path] = time.Now()
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
					c.log.Warn("watch error dropped: %v", err)
				}

			case now := <-ticker.C:
				for _, path := range settled(pending, now, c.settle) {
					select {
					case paths <- path:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return paths, errs, nil
}

// settled removes and returns the paths last touched at least d before now.
func settled(pending map[string]time.Time, now time.Time, d time.Duration) []string {
	var ready []string
	for path, touched := range pending {
		if now.Sub(touched) >= d {
			ready = append(ready, path)
			delete(pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// handleFsEvent returns the path of a created or written matching file.
func (c *Connector) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !c.matches(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// matches checks the file name only, so an inbox below a hidden directory
// still works.
func (c *Connector) matches(path string) bool {
	if isHidden(filepath.Base(path)) {
		return false
	}
	return strings.EqualFold(filepath.Ext(path), c.ext)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
