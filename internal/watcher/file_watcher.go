// Package watcher re-runs shader analysis when files change on disk.
package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"shadertune/internal/config"
)

// DefaultDelay is how long the watcher waits for a burst of writes to settle.
const DefaultDelay = 500 * time.Millisecond

type FileWatcher struct {
	watcher     *fsnotify.Watcher
	config      *config.Config
	logger      *slog.Logger
	watchedDirs map[string]bool
	debouncer   *debouncer
}

type FileChangeEvent struct {
	Path      string
	Operation string
	Timestamp time.Time
}

// FileChangeHandler receives the shaders changed since the last flush,
// sorted by path.
type FileChangeHandler func([]string) error

func NewFileWatcher(cfg *config.Config, logger *slog.Logger) (*FileWatcher, error) {
	return newFileWatcher(cfg, logger, DefaultDelay)
}

func newFileWatcher(cfg *config.Config, logger *slog.Logger, delay time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileWatcher{
		watcher:     watcher,
		config:      cfg,
		logger:      logger,
		watchedDirs: make(map[string]bool),
		debouncer:   newDebouncer(delay, logger),
	}, nil
}

// Watch registers paths (directories are walked; a file watches its
// directory) and dispatches debounced changes to handler until Close.
func (fw *FileWatcher) Watch(paths []string, handler FileChangeHandler) error {
	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", path, err)
		}
	}
	go fw.eventLoop(handler)
	return nil
}

func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fw.addDir(filepath.Dir(path))
	}

	return filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if walkPath != path && fw.shouldSkipDir(walkPath) {
			return filepath.SkipDir
		}
		return fw.addDir(walkPath)
	})
}

func (fw *FileWatcher) addDir(dir string) error {
	if fw.watchedDirs[dir] {
		return nil
	}
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	fw.watchedDirs[dir] = true
	fw.logger.Debug("watching directory", "dir", dir)
	return nil
}

func (fw *FileWatcher) eventLoop(handler FileChangeHandler) {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event, handler)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event, handler FileChangeHandler) {
	if !fw.shouldWatchFile(event.Name) {
		return
	}
	fw.debouncer.add(FileChangeEvent{
		Path:      event.Name,
		Operation: eventOpToString(event.Op),
		Timestamp: time.Now(),
	}, handler)
}

// shouldWatchFile filters events down to shader sources, dropping editor
// swap files and excluded paths.
func (fw *FileWatcher) shouldWatchFile(path string) bool {
	filename := filepath.Base(path)
	if strings.HasPrefix(filename, ".") || strings.HasSuffix(filename, "~") {
		return false
	}
	if !fw.config.IsShaderFile(path) {
		return false
	}
	return !fw.config.IsExcluded(path)
}

func (fw *FileWatcher) shouldSkipDir(path string) bool {
	defaultExclusions := []string{".vscode", ".idea", "build", "dist", "tmp", "temp"}
	if slices.Contains(defaultExclusions, filepath.Base(path)) {
		return true
	}
	return fw.config.IsExcluded(filepath.Base(path))
}

func eventOpToString(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "CREATE"
	case op.Has(fsnotify.Write):
		return "WRITE"
	case op.Has(fsnotify.Remove):
		return "REMOVE"
	case op.Has(fsnotify.Rename):
		return "RENAME"
	case op.Has(fsnotify.Chmod):
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

func (fw *FileWatcher) Close() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

// WatchedPaths returns the watched directories in sorted order.
func (fw *FileWatcher) WatchedPaths() []string {
	paths := lo.Keys(fw.watchedDirs)
	slices.Sort(paths)
	return paths
}
