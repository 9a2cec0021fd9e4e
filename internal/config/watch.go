package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zeusync/ccd/internal/core/observability/log"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk. Valid configs
// arrive on Updates; load and watch failures arrive on Errors. A burst of
// writes produces a single reload once the file has been quiet for a moment.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  log.Log

	Updates chan Config
	Errors  chan error

	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches the directory holding path so that editors replacing the
// file atomically are still noticed.
func NewWatcher(path string, logger log.Log) (*Watcher, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		path:    abs,
		logger:  logger.Named("config"),
		Updates: make(chan Config, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching; Updates and Errors are closed afterwards.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Updates)
	defer close(w.Errors)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config reload failed", log.String("path", w.path), log.Error(err))
		w.sendError(err)
		return
	}
	w.logger.Info("config reloaded", log.String("path", w.path))

	// keep only the newest config if the consumer lags behind
	select {
	case <-w.Updates:
	default:
	}
	select {
	case w.Updates <- cfg:
	case <-w.closeCh:
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.Errors <- err:
	default:
		w.logger.Warn("dropping config watch error", log.Error(err))
	}
}
