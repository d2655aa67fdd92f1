package main

import (
	"Volumetrics/internal/logger"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// configWatcher reloads the config file whenever it changes on disk and hands the
// result to the render thread through Updates.
type configWatcher struct {
	path      string
	watcher   *fsnotify.Watcher
	updates   chan Config
	done      chan struct{}
	closeOnce sync.Once
}

func newConfigWatcher(path string) (*configWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	// editors often save by rename, so watch the directory and filter by name
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	cw := &configWatcher{
		path:    abs,
		watcher: watcher,
		updates: make(chan Config, 1),
		done:    make(chan struct{}),
	}
	go cw.run()
	logger.Log.Info("Watching config", zap.String("path", abs))
	return cw, nil
}

// Updates delivers the newest successfully parsed config
func (cw *configWatcher) Updates() <-chan Config {
	return cw.updates
}

func (cw *configWatcher) Close() error {
	var err error
	cw.closeOnce.Do(func() {
		close(cw.done)
		err = cw.watcher.Close()
	})
	return err
}

func (cw *configWatcher) run() {
	for {
		select {
		case <-cw.done:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			config, err := loadConfig(cw.path)
			if err != nil {
				// a half-written file fails to parse; the next write event retries
				logger.Log.Warn("Config reload failed", zap.String("path", cw.path), zap.Error(err))
				continue
			}
			cw.publish(config)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Config watcher error", zap.Error(err))
		}
	}
}

// publish keeps only the newest pending config. run is the only sender.
func (cw *configWatcher) publish(config Config) {
	select {
	case <-cw.updates:
	default:
	}
	cw.updates <- config
}
