package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
)

// watch re-runs the checks whenever a suite file under args is written,
// until ctx is done.
func watch(ctx context.Context, cmd *cobra.Command, args []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return exitWith(ExitUsageError, fmt.Errorf("failed to create file watcher: %w", err))
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	addDir := func(dir string) {
		if watchedDirs[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			return
		}
		watchedDirs[dir] = true
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			addDir(filepath.Dir(arg))
			continue
		}
		_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				addDir(path)
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Runs are serialized; events during a run only rearm the timer.
	var mu sync.Mutex
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !suite.IsSuiteFile(event.Name) {
				continue
			}

			logger.Debug("suite changed", zap.String("file", event.Name))
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s", name)
				rerun()
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
