package lint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dyluth/lore/internal/config"
)

// DebounceInterval is how long the tree must stay quiet after the last
// change before the callback fires. Editors write files in bursts.
const DebounceInterval = 300 * time.Millisecond

// Watcher re-runs a callback whenever content files under the configured
// level directories change.
type Watcher struct {
	cfg      *config.Config
	fw       *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher creates a watcher that invokes onChange after changes settle.
func NewWatcher(cfg *config.Config, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		cfg:      cfg,
		fw:       fw,
		debounce: DebounceInterval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start registers the content directories and begins watching in a
// goroutine. It is non-blocking; call Stop to shut down.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fw.Add(w.cfg.Root); err != nil {
		return err
	}

	// fsnotify does not recurse, so register each level and lesson
	// directory. New lesson directories are picked up from create events.
	for _, level := range w.cfg.LevelDirs() {
		levelDir := filepath.Join(w.cfg.Root, string(level))
		if err := w.fw.Add(levelDir); err != nil {
			continue // level directory may not exist yet
		}
		entries, err := os.ReadDir(levelDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				_ = w.fw.Add(filepath.Join(levelDir, entry.Name()))
			}
		}
	}

	go w.run(ctx)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	_ = w.fw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var dirty bool
	var last time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				dirty = true
				last = time.Now()
			}

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}

		case <-ticker.C:
			if dirty && time.Since(last) >= w.debounce {
				dirty = false
				w.onChange()
			}
		}
	}
}

// relevant filters events down to the files lint cares about and keeps the
// watch list growing as lesson directories appear.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.fw.Add(event.Name)
			return true
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	return strings.HasSuffix(base, ".md") || strings.HasSuffix(base, ".yml")
}
