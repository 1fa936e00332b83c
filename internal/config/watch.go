package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config at path whenever it is written, created or renamed
// into place, and passes the result to fn. It blocks until ctx is cancelled.
// The parent directory is watched so editors that replace the file atomically
// are picked up.
func Watch(ctx context.Context, path string, fn func(FileConfig, error)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			// Best-effort watcher close.
			_ = cerr
		}
	}()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if _, err := os.Stat(target); err != nil {
				// Renamed away; the replacement shows up as a Create.
				continue
			}
			fn(LoadConfig(target))
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(FileConfig{}, fmt.Errorf("config watcher: %w", werr))
		}
	}
}
