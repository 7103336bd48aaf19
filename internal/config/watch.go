package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 200 * time.Millisecond

// Watch reloads path whenever it changes and hands each valid config to
// onChange. Invalid files are logged and skipped. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func(*Config)) error {
	if log == nil {
		log = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
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
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			cfg, err := Load(abs)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				log.Warn("config reload skipped", zap.String("path", abs), zap.Error(err))
				continue
			}
			log.Debug("config reloaded", zap.String("path", abs))
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watch error", zap.Error(err))
		}
	}
}
