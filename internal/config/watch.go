package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the config file at path and calls onChange with the freshly
// loaded configuration whenever the file is written. It returns immediately
// and stops when ctx is done. The persisted resolver-settings record is not
// affected; only daemon configuration reloads.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}

	logger.Info("watching config file for changes", slog.String("path", path))

	go func() {
		defer watcher.Close()

		// Editors often emit bursts of write events; debounce them.
		var pending <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					pending = time.After(250 * time.Millisecond)
				}

			case <-pending:
				pending = nil
				cfg, err := Load(path)
				if err != nil {
					logger.Error("config reload failed",
						slog.String("path", path),
						slog.String("error", err.Error()))
					continue
				}
				logger.Info("config reloaded", slog.String("path", path))
				onChange(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("config watch error", slog.String("error", err.Error()))
			}
		}
	}()

	return nil
}
