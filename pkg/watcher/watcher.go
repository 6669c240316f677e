// Package watcher reloads files when they change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/miropolcevpro/paver-ar-web/internal/logging"
)

// FileWatcher watches files for changes and triggers callbacks. It watches
// the parent directories so editors that save by rename are seen too.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	mu        sync.Mutex
	callbacks map[string]func(string)
	dirs      map[string]int
	debounce  time.Duration
	timers    map[string]*time.Timer
	done      chan struct{}
	closeOnce sync.Once
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:   watcher,
		callbacks: make(map[string]func(string)),
		dirs:      make(map[string]int),
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}, nil
}

// Watch registers callback for files. It is called with the absolute path
// once per burst of changes.
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		if _, ok := fw.callbacks[absPath]; !ok {
			dir := filepath.Dir(absPath)
			if fw.dirs[dir] == 0 {
				if err := fw.watcher.Add(dir); err != nil {
					return fmt.Errorf("failed to watch %s: %w", dir, err)
				}
			}
			fw.dirs[dir]++
		}
		fw.callbacks[absPath] = callback
	}

	return nil
}

// Start begins watching for file changes until ctx is done or the watcher
// is closed.
func (fw *FileWatcher) Start(ctx context.Context) {
	log := logging.For("watcher")
	go func() {
		for {
			select {
			case <-ctx.Done():
				fw.Close()
				return
			case <-fw.done:
				return
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					fw.handleFileChange(event.Name)
				}
			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				log.Warn("watcher error", "error", err)
			}
		}
	}()
}

// handleFileChange handles a file change event with debouncing
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	callback, exists := fw.callbacks[filePath]
	if !exists {
		return
	}

	if timer, exists := fw.timers[filePath]; exists {
		timer.Stop()
	}
	fw.timers[filePath] = time.AfterFunc(fw.debounce, func() {
		logging.For("watcher").Debug("file changed", "path", filePath)
		callback(filePath)
	})
}

// Close stops the watcher and pending callbacks.
func (fw *FileWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		close(fw.done)
		fw.mu.Lock()
		for _, t := range fw.timers {
			t.Stop()
		}
		fw.mu.Unlock()
		err = fw.watcher.Close()
	})
	return err
}

// RemoveAll removes all watched files
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for dir := range fw.dirs {
		if err := fw.watcher.Remove(dir); err != nil {
			return err
		}
	}
	for _, t := range fw.timers {
		t.Stop()
	}

	fw.callbacks = make(map[string]func(string))
	fw.dirs = make(map[string]int)
	fw.timers = make(map[string]*time.Timer)
	return nil
}
