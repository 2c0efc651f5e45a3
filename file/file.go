package file

import (
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/fsnotify/fsnotify"
	logger "github.com/sirupsen/logrus"
)

type FileEvent struct {
	Filepath    string
	FileCreated bool
}

// SearchDir walks dir recursively and returns the paths accepted by filter.
func SearchDir(dir string, filter func(filepath string) bool) ([]string, error) {
	var (
		entries []os.DirEntry
		err     error
	)
	result := make([]string, 0, 256)
	if entries, err = os.ReadDir(dir); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			var filepaths []string
			if filepaths, err = SearchDir(path, filter); err != nil {
				return nil, err
			}
			result = append(result, filepaths...)
		} else if filter(path) {
			result = append(result, path)
		}
	}
	return result, nil
}

// Watcher reports file writes and creations under the watched directories.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching dir and its subdirectories. handler runs on the watcher
// goroutine; new subdirectories are added as they appear.
func Watch(dir string, handler func(FileEvent)) (*Watcher, error) {
	var (
		watcher *fsnotify.Watcher
		err     error
	)
	if watcher, err = fsnotify.NewWatcher(); err != nil {
		return nil, err
	}
	w := &Watcher{watcher: watcher, done: make(chan struct{})}
	if err = w.addRecursive(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	go w.loop(handler)
	return w, nil
}

// Add watches another directory.
func (w *Watcher) Add(dir string) error {
	return w.watcher.Add(dir)
}

func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop(handler func(FileEvent)) {
	defer close(w.done)
	defer func() {
		if err := recover(); err != nil {
			logger.Errorf("file watcher panic: %v, stack: %s", err, string(debug.Stack()))
		}
	}()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err = w.addRecursive(event.Name); err != nil {
						logger.Errorf("watch %s error: %s", event.Name, err)
					}
					continue
				}
				logger.Infof("file created %s", event.Name)
				handler(FileEvent{Filepath: event.Name, FileCreated: true})
			} else if event.Op&fsnotify.Write == fsnotify.Write {
				logger.Infof("file modified %s", event.Name)
				handler(FileEvent{Filepath: event.Name, FileCreated: false})
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Errorf("watch error: %s", err)
		}
	}
}
