// Package watcher re-triggers analysis when conversation logs change.
// It backs the CLI's watch mode; the prediction engine itself stays a
// one-shot batch computation.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

// Event is a change notification for a conversation log file.
type Event struct {
	Path      string
	Operation string
}

// FileWatcher watches a directory tree for JSONL changes and delivers
// debounced change events.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	events   chan Event
	debounce time.Duration
}

// New creates a watcher over the given root directories.
func New(paths []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:  watcher,
		events:   make(chan Event, 100),
		debounce: 500 * time.Millisecond,
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go fw.processEvents()
	return fw, nil
}

// Events returns the change notification channel.
func (fw *FileWatcher) Events() <-chan Event {
	return fw.events
}

// Close stops the watcher.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

// addPath recursively registers directories under the root.
func (fw *FileWatcher) addPath(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := fw.watcher.Add(p); err != nil {
				util.LogDebugf("Failed to watch %s: %v", p, err)
			}
		}
		return nil
	})
}

func (fw *FileWatcher) processEvents() {
	var last time.Time
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				close(fw.events)
				return
			}
			if !strings.HasSuffix(strings.ToLower(event.Name), ".jsonl") {
				// New project directories need watching too.
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						fw.addPath(event.Name)
					}
				}
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(last) < fw.debounce {
				continue
			}
			last = time.Now()
			fw.events <- Event{Path: event.Name, Operation: event.Op.String()}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				close(fw.events)
				return
			}
			util.LogWarnf("File watcher error: %v", err)
		}
	}
}
