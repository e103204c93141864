package cli

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/docblock/internal/utils"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reports batches of changed files below a set of directories.
// Events for the same file inside the debounce window are coalesced.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	log      *utils.DiagnosticSystem
}

func NewWatcher(dirs []string, debounce time.Duration, log *utils.DiagnosticSystem) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{fs: fw, debounce: debounce, log: log}, nil
}

// Run calls onChange with each batch of changed paths until ctx is done.
// The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && w.addDir(event.Name) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			w.log.Debug("%s %s", event.Op, event.Name)
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)

		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for path := range pending {
				batch = append(batch, path)
			}
			sort.Strings(batch)
			pending = make(map[string]bool)
			onChange(batch)
		}
	}
}

// addDir starts watching a directory created below a watched one.
func (w *Watcher) addDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules" || name == "testdata" {
		return true
	}
	if err := w.fs.Add(path); err != nil {
		w.log.Warn("failed to watch %s: %v", path, err)
	}
	return true
}
