package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the event bursts editors produce on save.
const debounceWindow = 200 * time.Millisecond

// Watcher reloads the config file on change and hands each valid new
// configuration to a callback. Invalid edits are logged and skipped, so
// the process keeps its last good configuration.
type Watcher struct {
	path     string
	fw       *fsnotify.Watcher
	onChange func(*Config)
	log      *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Watch starts watching path. The parent directory is watched rather than
// the file itself because editors typically replace the file on save.
func Watch(path string, onChange func(*Config), log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		fw:       fw,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fw.Close()
	})
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config_watch_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config_reload_rejected",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		return
	}
	w.log.Info("config_reloaded", slog.String("path", w.path))
	w.onChange(cfg)
}
