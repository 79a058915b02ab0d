package storage

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events a single save produces.
const watchDebounce = 150 * time.Millisecond

// Watcher reports external edits of one file.
type Watcher struct {
	w        *fsnotify.Watcher
	name     string
	onChange func()

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// Watch calls onChange after path is created, written or replaced. The parent
// directory is watched so editors that rename over the file are seen too.
// onChange runs on the watcher's goroutine.
func Watch(path string, onChange func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	watcher := &Watcher{
		w:        w,
		name:     filepath.Clean(path),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go watcher.loop()
	return watcher, nil
}

func (watcher *Watcher) loop() {
	defer close(watcher.done)
	for {
		select {
		case ev, ok := <-watcher.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != watcher.name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			watcher.schedule()
		case err, ok := <-watcher.w.Errors:
			if !ok {
				return
			}
			log.Printf("storage: watch error: %v", err)
		}
	}
}

func (watcher *Watcher) schedule() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.timer != nil {
		watcher.timer.Stop()
	}
	watcher.timer = time.AfterFunc(watchDebounce, watcher.onChange)
}

// Close stops watching.
func (watcher *Watcher) Close() error {
	err := watcher.w.Close()
	<-watcher.done
	watcher.mu.Lock()
	if watcher.timer != nil {
		watcher.timer.Stop()
	}
	watcher.mu.Unlock()
	return err
}
