package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/reviewer"
)

const watchDebounce = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <path>...",
	Short: "Re-analyze SQL files whenever they change",
	Long: `Watch SQL files, or directories of .sql files, and print a fresh
analysis each time one of them is written. Press Ctrl+C to stop.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	r, err := s.reviewer()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer func() { _ = watcher.Close() }()

	w := &sqlWatcher{
		reviewer: r,
		out:      cmd.OutOrStdout(),
		format:   s.settings.Output,
		logger:   s.logger,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}
	for _, path := range args {
		files, err := w.add(watcher, path)
		if err != nil {
			return err
		}
		for _, file := range files {
			w.analyze(file)
		}
	}

	s.logger.Info("Watching for changes", "paths", args)
	return w.loop(cmd.Context(), watcher)
}

// sqlWatcher analyzes .sql files as fsnotify reports writes to them.
type sqlWatcher struct {
	reviewer *reviewer.Reviewer
	out      io.Writer
	format   string
	logger   logger.Interface

	// files are watched individually, dirs for every .sql file inside.
	files map[string]bool
	dirs  map[string]bool

	// mu serializes output of debounced analyses.
	mu sync.Mutex
}

// add watches path and returns the .sql files found under it.
func (w *sqlWatcher) add(watcher *fsnotify.Watcher, path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to watch %s", path)
	}
	if !info.IsDir() {
		// Editors often replace files on save, so watch the parent directory.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return nil, errors.Wrapf(err, "failed to watch %s", path)
		}
		w.files[filepath.Clean(path)] = true
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != path && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			w.dirs[filepath.Clean(p)] = true
			return watcher.Add(p)
		}
		if isSQLFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to watch %s", path)
	}
	return files, nil
}

func (w *sqlWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) error {
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.accept(event.Name) {
				continue
			}

			name := event.Name
			if t, ok := timers[name]; ok {
				t.Stop()
			}
			timers[name] = time.AfterFunc(watchDebounce, func() {
				w.logger.Debug("Change detected", "file", name)
				w.analyze(name)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logger.Error(err))
		}
	}
}

func (w *sqlWatcher) analyze(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sql, err := readSQL(nil, file)
	if err != nil {
		w.logger.Warn("Skipping file", "file", file, logger.Error(err))
		return
	}
	result := w.reviewer.Analyze(sql)
	if err := outputAnalysis(w.out, w.format, file, result); err != nil {
		w.logger.Error("Failed to write analysis", "file", file, logger.Error(err))
		return
	}
	_, _ = fmt.Fprintln(w.out)
}

func (w *sqlWatcher) accept(name string) bool {
	name = filepath.Clean(name)
	return w.files[name] || (isSQLFile(name) && w.dirs[filepath.Dir(name)])
}

func isSQLFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}
