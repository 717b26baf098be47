package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mantonx/cinelog/internal/logger"
)

// WatchFile reloads the configuration whenever the config file changes on disk.
// Returns a stop function that closes the underlying watcher.
func (cm *ConfigManager) WatchFile(configPath string) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory rather than the file itself: editors replace files
	// on save, which would break a direct file watch.
	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	target := filepath.Clean(configPath)

	go func() {
		var lastReload time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				// Debounce bursts of write events from a single save
				if time.Since(lastReload) < 500*time.Millisecond {
					continue
				}
				lastReload = time.Now()

				if err := cm.LoadConfig(configPath); err != nil {
					logger.Error("Failed to reload configuration", []logger.Field{
						logger.String("path", configPath),
						logger.String("error", err.Error()),
					})
					continue
				}
				logger.Info("Configuration reloaded from %s", configPath)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error: %v", err)
			}
		}
	}()

	return watcher.Close, nil
}
