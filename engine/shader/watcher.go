package shader

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/fsnotify/fsnotify"
)

// watcher is the implementation of Watcher.
type watcher struct {
	fs      *fsnotify.Watcher
	files   map[string]struct{}
	changed chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// Watcher reports edits to a fixed set of shader files. It watches the parent directories,
// since most editors save by writing a new file and renaming it over the old one.
type Watcher interface {
	// Changed delivers the cleaned path of each watched file that was written or replaced.
	// Sends never block; a change arriving while the channel is full is dropped.
	//
	// Returns:
	//   - <-chan string: the change channel, closed by Close
	Changed() <-chan string

	// Close stops watching and closes the change channel.
	//
	// Returns:
	//   - error: an error from the underlying watcher
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher starts watching paths.
//
// Parameters:
//   - paths: the shader files to watch
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the underlying watcher could not be created or a directory added
func NewWatcher(paths ...string) (Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader: failed to create watcher: %w", err)
	}

	w := &watcher{
		fs:      fs,
		files:   make(map[string]struct{}, len(paths)),
		changed: make(chan string, 16),
		done:    make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("shader: failed to resolve %q: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("shader: failed to watch %q: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer w.wg.Done()
	defer close(w.changed)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := w.files[abs]; !ok {
				continue
			}
			select {
			case w.changed <- abs:
			default:
				common.Logger().Warn("shader change dropped, reload queue full", "path", abs)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			common.Logger().Error("shader watcher error", "error", err)
		}
	}
}

func (w *watcher) Changed() <-chan string {
	return w.changed
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
